package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	shellwords "github.com/mattn/go-shellwords"
	"github.com/snarg/lectern/internal/media"
)

// WhisperCLI runs a local whisper.cpp-style binary. Highest-preference
// backend: works offline, no key required.
type WhisperCLI struct {
	cmd       []string
	modelPath string
	language  string
	tempDir   string
	avail     *bool
}

// NewWhisperCLI parses the configured command line. An unparseable command
// just yields an unavailable backend, not a startup failure.
func NewWhisperCLI(command, modelPath, language, tempDir string) *WhisperCLI {
	w := &WhisperCLI{modelPath: modelPath, language: language, tempDir: tempDir}
	args, err := shellwords.Parse(command)
	if err == nil && len(args) > 0 {
		w.cmd = args
	}
	return w
}

// Name returns the backend name.
func (w *WhisperCLI) Name() string { return "whisper" }

// Available reports whether the binary is in PATH and the model file, if
// configured, exists. Cached after the first call.
func (w *WhisperCLI) Available() bool {
	if w.avail != nil {
		return *w.avail
	}
	avail := false
	if len(w.cmd) > 0 {
		if _, err := exec.LookPath(w.cmd[0]); err == nil {
			avail = true
		}
	}
	if avail && w.modelPath != "" {
		if _, err := os.Stat(w.modelPath); err != nil {
			avail = false
		}
	}
	w.avail = &avail
	return avail
}

// Transcribe writes the track to a temp WAV and runs the whisper binary over
// it, reading the transcript from stdout.
func (w *WhisperCLI) Transcribe(ctx context.Context, track *media.Track) (*BackendResult, error) {
	wavPath, err := media.TempWAV(w.tempDir, "lectern-whisper")
	if err != nil {
		return nil, err
	}
	defer os.Remove(wavPath)
	if err := track.WriteWAV(wavPath); err != nil {
		return nil, fmt.Errorf("write temp wav: %w", err)
	}

	args := append([]string{}, w.cmd[1:]...)
	if w.modelPath != "" {
		args = append(args, "-m", w.modelPath)
	}
	if w.language != "" {
		args = append(args, "-l", w.language)
	}
	args = append(args, "-nt", "-np", "-f", wavPath)

	cmd := exec.CommandContext(ctx, w.cmd[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("whisper command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return &BackendResult{
		Text:     strings.TrimSpace(stdout.String()),
		Language: w.language,
	}, nil
}
