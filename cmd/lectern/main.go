package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/snarg/lectern/internal/api"
	"github.com/snarg/lectern/internal/config"
	"github.com/snarg/lectern/internal/media"
	"github.com/snarg/lectern/internal/session"
	"github.com/snarg/lectern/internal/studypack"
	"github.com/snarg/lectern/internal/transcribe"
)

var version = "dev"

func main() {
	startTime := time.Now()

	var overrides config.Overrides
	flag.StringVar(&overrides.EnvFile, "env-file", "", "path to .env file (default .env)")
	flag.StringVar(&overrides.HTTPAddr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	flag.StringVar(&overrides.LogLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	flag.StringVar(&overrides.GeminiMode, "gemini-mode", "", "sdk or rest (overrides GEMINI_MODE)")
	flag.Parse()

	cfg, err := config.Load(overrides)
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Info().Str("version", version).Msg("lectern starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Audio tooling probes. Missing ffmpeg disables media uploads entirely;
	// missing sox only disables enhancement.
	if !media.CheckFFmpeg() {
		log.Warn().Msg("ffmpeg not found, media uploads will fail")
	}
	if cfg.EnhanceAudio && !media.CheckSox() {
		log.Warn().Msg("sox not found, audio enhancement disabled")
		cfg.EnhanceAudio = false
	}
	prep := &media.Preparer{TempDir: cfg.TempDir, Enhance: cfg.EnhanceAudio}

	// Transcription backends in preference order.
	backends := []transcribe.Backend{
		transcribe.NewWhisperCLI(cfg.WhisperCommand, cfg.WhisperModelPath, cfg.Language, cfg.TempDir),
		transcribe.NewAssemblyAIClient(cfg.AssemblyAIKey, cfg.Language, cfg.TempDir, cfg.TranscribeTimeout),
		transcribe.NewWebSpeechClient(cfg.WebSpeechURL, cfg.Language, cfg.TempDir, cfg.TranscribeTimeout),
	}
	selLog := log.With().Str("component", "transcribe").Logger()
	selector := transcribe.NewSelector(backends, selLog)

	// Study-material requester
	genLog := log.With().Str("component", "studypack").Logger()
	var requester studypack.Requester
	switch cfg.GeminiMode {
	case "rest":
		requester, err = studypack.NewRESTRequester(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GenerateTimeout, genLog)
	default:
		requester, err = studypack.NewGeminiRequester(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, genLog)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build study-package requester")
	}

	store := session.NewStore(log.With().Str("component", "session").Logger())

	httpLog := log.With().Str("component", "http").Logger()
	srv := api.NewServer(cfg, store, prep, selector, requester, version, startTime, httpLog)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	log.Info().Msg("lectern stopped")
}
