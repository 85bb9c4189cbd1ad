package studypack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// newGenerateServer fakes the :generateContent endpoint, returning the given
// text as the single candidate part and counting requests.
func newGenerateServer(t *testing.T, text string, status int, requests *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests++
		if !strings.Contains(r.URL.Path, ":generateContent") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("key") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req generateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Contents) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if status != http.StatusOK {
			http.Error(w, `{"error":{"message":"quota exceeded"}}`, status)
			return
		}
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestRESTRequester(t *testing.T, url string) *RESTRequester {
	t.Helper()
	r, err := NewRESTRequester("test-key", "gemini-2.0-flash", 10*time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRESTRequester: %v", err)
	}
	r.baseURL = url
	return r
}

func TestRESTGenerate(t *testing.T) {
	requests := 0
	srv := newGenerateServer(t, "```json\n"+validJSON+"\n```", http.StatusOK, &requests)
	defer srv.Close()

	r := newTestRESTRequester(t, srv.URL)
	pkg, err := r.Generate(context.Background(), "photosynthesis lecture")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(pkg.Quiz) != 5 {
		t.Errorf("quiz length = %d, want 5", len(pkg.Quiz))
	}
	if requests != 1 {
		t.Errorf("requests = %d, want exactly 1", requests)
	}
}

func TestRESTGenerateTransportError(t *testing.T) {
	requests := 0
	srv := newGenerateServer(t, "", http.StatusTooManyRequests, &requests)
	defer srv.Close()

	r := newTestRESTRequester(t, srv.URL)
	_, err := r.Generate(context.Background(), "transcript")
	if !errors.Is(err, ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
	if requests != 1 {
		t.Errorf("requests = %d, want exactly 1 (no retry)", requests)
	}
}

func TestRESTGenerateMalformedResponse(t *testing.T) {
	requests := 0
	srv := newGenerateServer(t, "I am not JSON at all.", http.StatusOK, &requests)
	defer srv.Close()

	r := newTestRESTRequester(t, srv.URL)
	_, err := r.Generate(context.Background(), "transcript")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
	if requests != 1 {
		t.Errorf("requests = %d, want exactly 1 (no retry)", requests)
	}
}

func TestRESTGenerateUnreachable(t *testing.T) {
	r := newTestRESTRequester(t, "http://127.0.0.1:1")
	_, err := r.Generate(context.Background(), "transcript")
	if !errors.Is(err, ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
}

func TestNewRESTRequesterRequiresKey(t *testing.T) {
	_, err := NewRESTRequester("", "gemini-2.0-flash", time.Second, zerolog.Nop())
	if err == nil {
		t.Error("expected error without API key")
	}
}
