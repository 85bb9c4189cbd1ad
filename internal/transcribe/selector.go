package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/snarg/lectern/internal/media"
)

// ErrNoService means every backend failed or none was available. The selector
// never returns an empty transcript silently.
var ErrNoService = errors.New("no transcription service available")

// Selector tries backends strictly in preference order, advancing only on
// total failure (error or empty text). No backend is retried.
type Selector struct {
	backends []Backend
	log      zerolog.Logger
}

// NewSelector probes each backend once and keeps the available ones in the
// given preference order. The probe result is fixed for the process lifetime.
func NewSelector(backends []Backend, log zerolog.Logger) *Selector {
	available := make([]Backend, 0, len(backends))
	for _, b := range backends {
		if b.Available() {
			available = append(available, b)
			log.Info().Str("backend", b.Name()).Msg("transcription backend available")
		} else {
			log.Warn().Str("backend", b.Name()).Msg("transcription backend unavailable, skipping")
		}
	}
	return &Selector{backends: available, log: log}
}

// Backends returns the names of the available backends in preference order.
func (s *Selector) Backends() []string {
	names := make([]string, len(s.backends))
	for i, b := range s.backends {
		names[i] = b.Name()
	}
	return names
}

// Transcribe runs the track through the first backend that produces text,
// then applies the cleanup pass. Exhausting all backends is a terminal error
// for this request; the selector stays usable for the next one.
func (s *Selector) Transcribe(ctx context.Context, track *media.Track) (*Result, error) {
	if len(s.backends) == 0 {
		return nil, ErrNoService
	}

	var lastErr error
	for _, b := range s.backends {
		res, err := b.Transcribe(ctx, track)
		if err != nil {
			s.log.Warn().Err(err).Str("backend", b.Name()).Msg("backend failed, trying next")
			lastErr = err
			continue
		}
		raw := strings.TrimSpace(res.Text)
		if raw == "" {
			s.log.Warn().Str("backend", b.Name()).Msg("backend returned empty text, trying next")
			lastErr = fmt.Errorf("%s returned empty transcript", b.Name())
			continue
		}

		return &Result{
			Raw:      raw,
			Text:     Clean(raw),
			Backend:  b.Name(),
			Language: res.Language,
		}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoService, lastErr)
	}
	return nil, ErrNoService
}
