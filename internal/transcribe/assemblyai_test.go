package transcribe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newAssemblyAIServer fakes the upload → create → poll flow. The transcript
// reports "processing" for pollsBeforeDone polls, then the final status.
func newAssemblyAIServer(t *testing.T, finalStatus, text, errMsg string, pollsBeforeDone int) *httptest.Server {
	t.Helper()
	polls := 0
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/upload":
			json.NewEncoder(w).Encode(map[string]string{"upload_url": srv.URL + "/stored/audio.wav"})
		case r.Method == http.MethodPost && r.URL.Path == "/transcript":
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if body["audio_url"] == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "tr_123", "status": "queued"})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/transcript/"):
			polls++
			status := finalStatus
			if polls <= pollsBeforeDone {
				status = "processing"
			}
			json.NewEncoder(w).Encode(map[string]string{
				"id":            "tr_123",
				"status":        status,
				"text":          text,
				"language_code": "en",
				"error":         errMsg,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return srv
}

func newTestAssemblyAI(t *testing.T, url string) *AssemblyAIClient {
	t.Helper()
	c := NewAssemblyAIClient("test-key", "en", t.TempDir(), 10*time.Second)
	c.baseURL = url
	return c
}

func TestAssemblyAITranscribe(t *testing.T) {
	srv := newAssemblyAIServer(t, "completed", "hello from the cloud", "", 0)
	defer srv.Close()

	c := newTestAssemblyAI(t, srv.URL)
	res, err := c.Transcribe(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != "hello from the cloud" {
		t.Errorf("Text = %q, want %q", res.Text, "hello from the cloud")
	}
	if res.Language != "en" {
		t.Errorf("Language = %q, want en", res.Language)
	}
}

func TestAssemblyAITranscriptError(t *testing.T) {
	srv := newAssemblyAIServer(t, "error", "", "audio unintelligible", 0)
	defer srv.Close()

	c := newTestAssemblyAI(t, srv.URL)
	_, err := c.Transcribe(context.Background(), testTrack())
	if err == nil || !strings.Contains(err.Error(), "audio unintelligible") {
		t.Errorf("err = %v, want transcript failure with service message", err)
	}
}

func TestAssemblyAIServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestAssemblyAI(t, srv.URL)
	_, err := c.Transcribe(context.Background(), testTrack())
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Errorf("err = %v, want status 500 error", err)
	}
}

func TestAssemblyAIAvailability(t *testing.T) {
	if (&AssemblyAIClient{apiKey: ""}).Available() {
		t.Error("Available() = true without API key")
	}
	if !(&AssemblyAIClient{apiKey: "k"}).Available() {
		t.Error("Available() = false with API key")
	}
}
