package transcribe

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// writeStubWhisper creates an executable script that ignores its arguments
// and prints a fixed transcript, standing in for a local whisper binary.
func writeStubWhisper(t *testing.T, output string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "whisper-stub")
	script := "#!/bin/sh\nprintf '%s' \"" + output + "\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestWhisperCLITranscribe(t *testing.T) {
	stub := writeStubWhisper(t, "  local model transcript\n")

	w := NewWhisperCLI(stub, "", "en", t.TempDir())
	if !w.Available() {
		t.Fatal("Available() = false for existing stub binary")
	}

	res, err := w.Transcribe(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != "local model transcript" {
		t.Errorf("Text = %q, want trimmed stub output", res.Text)
	}
}

func TestWhisperCLIConcurrentTranscribes(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub script requires a POSIX shell")
	}
	// Stub echoes back the WAV path it was handed, pausing long enough for
	// the two calls to overlap. Each call must get its own file: a shared
	// path would be deleted by whichever call finishes first, while the
	// other is still reading it.
	path := filepath.Join(t.TempDir(), "whisper-stub")
	script := `#!/bin/sh
file=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-f" ]; then file="$a"; fi
  prev="$a"
done
sleep 0.2
if [ ! -f "$file" ]; then
  echo "input file gone: $file" >&2
  exit 1
fi
printf '%s' "$file"
`
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	tempDir := t.TempDir()
	w := NewWhisperCLI(path, "", "en", tempDir)

	type outcome struct {
		text string
		err  error
	}
	results := make(chan outcome, 2)
	for i := 0; i < 2; i++ {
		go func() {
			res, err := w.Transcribe(context.Background(), testTrack())
			if err != nil {
				results <- outcome{err: err}
				return
			}
			results <- outcome{text: res.Text}
		}()
	}

	a, b := <-results, <-results
	if a.err != nil || b.err != nil {
		t.Fatalf("concurrent Transcribe errors: %v, %v", a.err, b.err)
	}
	if a.text == b.text {
		t.Errorf("both calls used the same temp file %q", a.text)
	}
}

func TestWhisperCLIUnavailable(t *testing.T) {
	t.Run("missing_binary", func(t *testing.T) {
		w := NewWhisperCLI("definitely-not-a-real-binary-9d8f", "", "en", "")
		if w.Available() {
			t.Error("Available() = true for missing binary")
		}
	})

	t.Run("missing_model_file", func(t *testing.T) {
		stub := writeStubWhisper(t, "x")
		w := NewWhisperCLI(stub, filepath.Join(t.TempDir(), "no-model.bin"), "en", "")
		if w.Available() {
			t.Error("Available() = true for missing model file")
		}
	})

	t.Run("empty_command", func(t *testing.T) {
		w := NewWhisperCLI("", "", "en", "")
		if w.Available() {
			t.Error("Available() = true for empty command")
		}
	})
}

func TestWhisperCLIAvailabilityCached(t *testing.T) {
	stub := writeStubWhisper(t, "x")
	w := NewWhisperCLI(stub, "", "en", "")
	if !w.Available() {
		t.Fatal("Available() = false for existing stub")
	}
	// Removing the binary must not change the probed result: availability is
	// fixed for the process lifetime.
	os.Remove(stub)
	if !w.Available() {
		t.Error("Available() re-probed; want cached result")
	}
}

func TestWhisperCLICommandFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "whisper-fail")
	script := "#!/bin/sh\necho 'model load error' >&2\nexit 1\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	w := NewWhisperCLI(path, "", "en", t.TempDir())
	_, err := w.Transcribe(context.Background(), testTrack())
	if err == nil {
		t.Error("expected error from failing command")
	}
}
