package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/snarg/lectern/internal/media"
	"github.com/snarg/lectern/internal/metrics"
	"github.com/snarg/lectern/internal/studypack"
	"github.com/snarg/lectern/internal/transcribe"
)

// TrackPreparer converts an uploaded file into a transcription-ready track.
type TrackPreparer interface {
	Prepare(ctx context.Context, inputPath string) (*media.Track, func(), error)
}

// Transcriber runs the backend preference chain over a prepared track.
type Transcriber interface {
	Transcribe(ctx context.Context, track *media.Track) (*transcribe.Result, error)
	Backends() []string
}

// LectureHandler runs the upload pipeline: prepare audio, transcribe,
// generate study materials, install them on the session.
type LectureHandler struct {
	prep              TrackPreparer
	transcriber       Transcriber
	requester         studypack.Requester
	transcribeTimeout time.Duration
	generateTimeout   time.Duration
	maxUpload         int64
	tempDir           string
	log               zerolog.Logger
}

func NewLectureHandler(prep TrackPreparer, tr Transcriber, req studypack.Requester,
	transcribeTimeout, generateTimeout time.Duration, maxUpload int64, tempDir string,
	log zerolog.Logger) *LectureHandler {
	return &LectureHandler{
		prep:              prep,
		transcriber:       tr,
		requester:         req,
		transcribeTimeout: transcribeTimeout,
		generateTimeout:   generateTimeout,
		maxUpload:         maxUpload,
		tempDir:           tempDir,
		log:               log.With().Str("handler", "lectures").Logger(),
	}
}

type transcriptInfo struct {
	Text     string `json:"text"`
	Backend  string `json:"backend"`
	Language string `json:"language,omitempty"`
}

type lectureResponse struct {
	Transcript transcriptInfo          `json:"transcript"`
	Package    *studypack.StudyPackage `json:"package,omitempty"`
	// Degraded marks a usable transcript whose study-package generation
	// returned unparseable output. Error carries the reason.
	Degraded bool   `json:"degraded,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Upload handles POST /api/v1/lectures. Accepts a multipart form with a
// "media" file field and runs the full pipeline. One pipeline per session at
// a time; concurrent uploads get a 409.
func (h *LectureHandler) Upload(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromRequest(r)
	if err := sess.Acquire(); err != nil {
		WriteError(w, http.StatusConflict, err.Error())
		return
	}
	defer sess.Release()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		WriteErrorDetail(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("media")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing media file field")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !media.SupportedExt(ext) {
		WriteError(w, http.StatusUnsupportedMediaType, "unsupported media type: "+ext)
		return
	}

	inputPath, err := h.saveUpload(file, ext)
	if err != nil {
		h.log.Error().Err(err).Msg("saving upload failed")
		WriteError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer os.Remove(inputPath)

	log := h.log.With().Str("username", sess.Username).Str("file", header.Filename).Logger()

	transcript, ok := h.transcribe(r.Context(), w, inputPath, log)
	if !ok {
		return
	}

	h.generate(r.Context(), w, sess, transcript, log)
}

// Transcript handles POST /api/v1/lectures/transcript: the caller supplies
// transcript text directly and skips the audio stages.
func (h *LectureHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromRequest(r)
	if err := sess.Acquire(); err != nil {
		WriteError(w, http.StatusConflict, err.Error())
		return
	}
	defer sess.Release()

	var req struct {
		Transcript string `json:"transcript"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	text := strings.TrimSpace(req.Transcript)
	if text == "" {
		WriteError(w, http.StatusBadRequest, "transcript is required")
		return
	}

	transcript := &transcribe.Result{Raw: text, Text: text, Backend: "manual"}
	log := h.log.With().Str("username", sess.Username).Str("source", "transcript").Logger()
	h.generate(r.Context(), w, sess, transcript, log)
}

func (h *LectureHandler) saveUpload(file io.Reader, ext string) (string, error) {
	tmp, err := os.CreateTemp(h.tempDir, "upload-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// transcribe runs the prepare and transcription stages. On failure it writes
// the error response and returns ok=false.
func (h *LectureHandler) transcribe(ctx context.Context, w http.ResponseWriter, inputPath string, log zerolog.Logger) (*transcribe.Result, bool) {
	ctx, cancel := context.WithTimeout(ctx, h.transcribeTimeout)
	defer cancel()

	track, cleanup, err := h.prep.Prepare(ctx, inputPath)
	if err != nil {
		log.Error().Err(err).Msg("audio preparation failed")
		if errors.Is(err, media.ErrDecode) {
			WriteError(w, http.StatusBadRequest, "could not decode audio: "+err.Error())
		} else {
			WriteError(w, http.StatusInternalServerError, "audio preparation failed")
		}
		return nil, false
	}
	defer cleanup()

	start := time.Now()
	transcript, err := h.transcriber.Transcribe(ctx, track)
	if err != nil {
		metrics.TranscriptionFailuresTotal.Inc()
		log.Error().Err(err).Msg("transcription failed")
		WriteError(w, http.StatusServiceUnavailable, err.Error())
		return nil, false
	}
	metrics.TranscriptionsTotal.WithLabelValues(transcript.Backend).Inc()
	metrics.TranscriptionDuration.Observe(time.Since(start).Seconds())
	log.Info().
		Str("backend", transcript.Backend).
		Int("chars", len(transcript.Text)).
		Dur("duration", time.Since(start)).
		Msg("transcription complete")
	return transcript, true
}

// generate runs the study-package stage and writes the response. A transport
// failure is a 502; an unparseable model response still returns the
// transcript, marked degraded.
func (h *LectureHandler) generate(ctx context.Context, w http.ResponseWriter, sess sessionTarget, transcript *transcribe.Result, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, h.generateTimeout)
	defer cancel()

	info := transcriptInfo{
		Text:     transcript.Text,
		Backend:  transcript.Backend,
		Language: transcript.Language,
	}

	pkg, err := h.requester.Generate(ctx, transcript.Text)
	if err != nil {
		switch {
		case errors.Is(err, studypack.ErrMalformed):
			metrics.GenerationsTotal.WithLabelValues("parse_error").Inc()
			log.Warn().Err(err).Msg("generation response unparseable")
			WriteJSON(w, http.StatusBadGateway, lectureResponse{
				Transcript: info,
				Degraded:   true,
				Error:      err.Error(),
			})
		default:
			metrics.GenerationsTotal.WithLabelValues("transport_error").Inc()
			log.Error().Err(err).Msg("generation failed")
			WriteError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	metrics.GenerationsTotal.WithLabelValues("ok").Inc()

	sess.SetMaterials(transcript, pkg)
	log.Info().
		Int("flashcards", len(pkg.Flashcards)).
		Int("quiz_questions", len(pkg.Quiz)).
		Msg("study package generated")

	WriteJSON(w, http.StatusOK, lectureResponse{Transcript: info, Package: pkg})
}

// sessionTarget is the slice of session.Session the pipeline needs.
type sessionTarget interface {
	SetMaterials(tr *transcribe.Result, pkg *studypack.StudyPackage)
}
