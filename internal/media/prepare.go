package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Tool availability is probed once and cached for the process lifetime.
var (
	ffmpegAvailable *bool
	soxAvailable    *bool
)

// CheckFFmpeg checks if ffmpeg is in PATH. Call once at startup.
func CheckFFmpeg() bool {
	if ffmpegAvailable != nil {
		return *ffmpegAvailable
	}
	_, err := exec.LookPath("ffmpeg")
	avail := err == nil
	ffmpegAvailable = &avail
	return avail
}

// CheckSox checks if sox is in PATH. Call once at startup.
func CheckSox() bool {
	if soxAvailable != nil {
		return *soxAvailable
	}
	_, err := exec.LookPath("sox")
	avail := err == nil
	soxAvailable = &avail
	return avail
}

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".mkv": true, ".avi": true,
}

var audioExts = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true,
}

// SupportedExt reports whether the upload extension is an accepted container.
func SupportedExt(ext string) bool {
	ext = strings.ToLower(ext)
	return videoExts[ext] || audioExts[ext]
}

// Preparer converts an uploaded media file into a transcription-ready Track.
type Preparer struct {
	TempDir string
	Enhance bool
}

// Prepare extracts the audio track (demuxing video containers with ffmpeg),
// applies the fixed enhancement chain with sox, and decodes the result into a
// mono 16 kHz Track. Any failure here is fatal to the request.
//
// Enhancement parameters are configuration constants, not computed from the
// signal: dynamic-range compression (threshold -20 dB, ratio 4:1, attack 5 ms,
// release 50 ms), band-pass 80-8000 Hz, volume normalization.
func (p *Preparer) Prepare(ctx context.Context, inputPath string) (*Track, func(), error) {
	noop := func() {}

	ext := strings.ToLower(filepath.Ext(inputPath))
	if !SupportedExt(ext) {
		return nil, noop, fmt.Errorf("%w: unsupported container %q", ErrDecode, ext)
	}
	if !CheckFFmpeg() {
		return nil, noop, fmt.Errorf("%w: ffmpeg not found in PATH", ErrDecode)
	}

	var tmpFiles []string
	cleanup := func() {
		for _, f := range tmpFiles {
			os.Remove(f)
		}
	}

	// Demux + decode to intermediate WAV. For audio containers this is just a
	// codec conversion; for video it drops the video stream.
	rawPath, err := TempWAV(p.TempDir, "lectern-raw")
	if err != nil {
		return nil, noop, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	tmpFiles = append(tmpFiles, rawPath)
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		rawPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("%w: ffmpeg: %v: %s", ErrDecode, err, tail(out))
	}

	wavPath := rawPath
	if p.Enhance && CheckSox() {
		enhPath, err := TempWAV(p.TempDir, "lectern-enh")
		if err != nil {
			cleanup()
			return nil, noop, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		tmpFiles = append(tmpFiles, enhPath)
		cmd := exec.CommandContext(ctx, "sox",
			rawPath, enhPath,
			"compand", "0.005,0.05", "6:-70,-60,-20", "-5",
			"sinc", "80-8000",
			"norm",
			"rate", "16000",
			"channels", "1",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			cleanup()
			return nil, noop, fmt.Errorf("%w: sox: %v: %s", ErrDecode, err, tail(out))
		}
		wavPath = enhPath
	} else {
		// No enhancement: still must land on mono 16 kHz.
		convPath, err := TempWAV(p.TempDir, "lectern-conv")
		if err != nil {
			cleanup()
			return nil, noop, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		tmpFiles = append(tmpFiles, convPath)
		cmd := exec.CommandContext(ctx, "ffmpeg",
			"-y", "-i", rawPath,
			"-ac", "1",
			"-ar", "16000",
			convPath,
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			cleanup()
			return nil, noop, fmt.Errorf("%w: ffmpeg resample: %v: %s", ErrDecode, err, tail(out))
		}
		wavPath = convPath
	}

	track, err := LoadWAV(wavPath)
	if err != nil {
		cleanup()
		return nil, noop, err
	}
	return track, cleanup, nil
}

// tail returns the last part of command output for error messages.
func tail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > 400 {
		s = s[len(s)-400:]
	}
	return s
}
