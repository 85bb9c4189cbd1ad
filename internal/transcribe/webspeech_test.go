package transcribe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWebSpeechTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "audio/l16") {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		// The real endpoint streams an empty result line before the final one.
		fmt.Fprintln(w, `{"result":[]}`)
		fmt.Fprintln(w, `{"result":[{"alternative":[{"transcript":"basic api text","confidence":0.87}],"final":true}],"result_index":0}`)
	}))
	defer srv.Close()

	c := NewWebSpeechClient(srv.URL, "en", t.TempDir(), 10*time.Second)
	res, err := c.Transcribe(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != "basic api text" {
		t.Errorf("Text = %q, want %q", res.Text, "basic api text")
	}
}

func TestWebSpeechQueryEncoding(t *testing.T) {
	var gotLang, gotClient string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.URL.Query().Get("lang")
		gotClient = r.URL.Query().Get("client")
		fmt.Fprintln(w, `{"result":[{"alternative":[{"transcript":"ok","confidence":0.9}],"final":true}]}`)
	}))
	defer srv.Close()

	// A language value with reserved characters must arrive intact instead
	// of being spliced into the query string.
	lang := "en&client=other"
	c := NewWebSpeechClient(srv.URL, lang, t.TempDir(), 10*time.Second)
	if _, err := c.Transcribe(context.Background(), testTrack()); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if gotLang != lang {
		t.Errorf("lang param = %q, want %q", gotLang, lang)
	}
	if gotClient != "chromium" {
		t.Errorf("client param = %q, want chromium", gotClient)
	}
}

func TestWebSpeechNoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"result":[]}`)
	}))
	defer srv.Close()

	c := NewWebSpeechClient(srv.URL, "en", t.TempDir(), 10*time.Second)
	_, err := c.Transcribe(context.Background(), testTrack())
	if err == nil {
		t.Error("expected error when service returns no recognition result")
	}
}

func TestWebSpeechServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream fault", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewWebSpeechClient(srv.URL, "en", t.TempDir(), 10*time.Second)
	_, err := c.Transcribe(context.Background(), testTrack())
	if err == nil || !strings.Contains(err.Error(), "status 502") {
		t.Errorf("err = %v, want status 502 error", err)
	}
}

func TestWebSpeechAvailability(t *testing.T) {
	if NewWebSpeechClient("", "en", "", time.Second).Available() {
		t.Error("Available() = true without URL")
	}
	if !NewWebSpeechClient("http://example.com", "en", "", time.Second).Available() {
		t.Error("Available() = false with URL")
	}
}
