package transcribe

import (
	"context"

	"github.com/snarg/lectern/internal/media"
)

// Backend is the interface for speech-to-text implementations.
type Backend interface {
	// Transcribe converts a prepared 16 kHz mono track to text. An error or
	// empty text is a total failure; there is no partial result.
	Transcribe(ctx context.Context, track *media.Track) (*BackendResult, error)
	Name() string // "whisper", "assemblyai", "webspeech"
	// Available reports whether the backend's dependency is usable. Probed
	// once when the selector is built, never per call.
	Available() bool
}

// BackendResult is the common transcription output from any backend.
type BackendResult struct {
	Text     string
	Language string // detected language, empty if the backend doesn't report one
}

// Result is the selector output: the winning backend's text plus the cleaned
// form. Immutable once created.
type Result struct {
	Raw      string
	Text     string // cleaned; falls back to Raw if cleanup would erase it
	Backend  string
	Language string
}
