package media

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// TargetSampleRate is the sample rate every prepared track is resampled to.
// Fixed by the transcription backends; not configurable.
const TargetSampleRate = 16000

// ErrDecode marks unsupported or corrupt media. Fatal to the request; callers
// must not retry.
var ErrDecode = errors.New("media decode failed")

// Track is a normalized mono audio stream at TargetSampleRate, produced by
// Prepare and discarded after transcription.
type Track struct {
	SampleRate int
	Duration   float64 // seconds
	Samples    []int   // 16-bit PCM sample values
}

// LoadWAV decodes a WAV file into a Track. The file must already be mono at
// TargetSampleRate; Prepare guarantees this for its output.
func LoadWAV(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDecode, path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: read pcm: %v", ErrDecode, err)
	}
	if buf.Format == nil {
		return nil, fmt.Errorf("%w: missing wav format", ErrDecode)
	}
	if buf.Format.NumChannels != 1 {
		return nil, fmt.Errorf("%w: expected mono, got %d channels", ErrDecode, buf.Format.NumChannels)
	}
	if buf.Format.SampleRate != TargetSampleRate {
		return nil, fmt.Errorf("%w: expected %d Hz, got %d Hz", ErrDecode, TargetSampleRate, buf.Format.SampleRate)
	}

	return &Track{
		SampleRate: buf.Format.SampleRate,
		Duration:   float64(len(buf.Data)) / float64(buf.Format.SampleRate),
		Samples:    buf.Data,
	}, nil
}

// TempWAV reserves a uniquely named WAV path under dir (os.TempDir if empty).
// Requests run concurrently, so intermediate files must never share a path;
// the caller removes the file when done.
func TempWAV(dir, prefix string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, prefix+"-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp wav: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("create temp wav: %w", err)
	}
	return f.Name(), nil
}

// WriteWAV encodes the track as 16-bit PCM WAV at path. Backends that shell
// out or upload need a file, not an in-memory buffer.
func (t *Track) WriteWAV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, t.SampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: t.SampleRate},
		Data:   t.Samples,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("write wav: %w", err)
	}
	return enc.Close()
}
