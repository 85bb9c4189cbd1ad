package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Generative model
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	// "sdk" uses the official genai client, "rest" calls the HTTP API directly.
	// Both implement the same contract; callers never see the difference.
	GeminiMode      string        `env:"GEMINI_MODE" envDefault:"sdk"`
	GenerateTimeout time.Duration `env:"GENERATE_TIMEOUT" envDefault:"2m"`

	// Transcription backends, in preference order: local whisper CLI,
	// AssemblyAI cloud API, keyless web speech endpoint.
	WhisperCommand    string        `env:"WHISPER_COMMAND" envDefault:"whisper-cli"`
	WhisperModelPath  string        `env:"WHISPER_MODEL_PATH"`
	AssemblyAIKey     string        `env:"ASSEMBLYAI_API_KEY"`
	WebSpeechURL      string        `env:"WEB_SPEECH_URL" envDefault:"https://www.google.com/speech-api/v2/recognize"`
	Language          string        `env:"TRANSCRIBE_LANGUAGE" envDefault:"en"`
	TranscribeTimeout time.Duration `env:"TRANSCRIBE_TIMEOUT" envDefault:"5m"`

	// Audio preparation (fixed-parameter enhancement, not adaptive)
	EnhanceAudio bool   `env:"ENHANCE_AUDIO" envDefault:"true"`
	TempDir      string `env:"TEMP_DIR"`

	HTTPAddr      string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout   time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout  time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10m"`
	IdleTimeout   time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	MaxUploadSize int64         `env:"MAX_UPLOAD_SIZE" envDefault:"536870912"` // 512 MiB

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile    string
	HTTPAddr   string
	LogLevel   string
	GeminiMode string
}

// Load reads configuration from .env file, environment variables, and CLI overrides.
// Priority: CLI flags > environment variables > .env file > struct defaults.
func Load(overrides Overrides) (*Config, error) {
	// Load .env file (silent if missing)
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if overrides.HTTPAddr != "" {
		cfg.HTTPAddr = overrides.HTTPAddr
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	if overrides.GeminiMode != "" {
		cfg.GeminiMode = overrides.GeminiMode
	}

	if cfg.GeminiMode != "sdk" && cfg.GeminiMode != "rest" {
		return nil, fmt.Errorf("invalid GEMINI_MODE %q: must be sdk or rest", cfg.GeminiMode)
	}

	return cfg, nil
}
