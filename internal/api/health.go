package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/snarg/lectern/internal/media"
)

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks"`
}

type HealthHandler struct {
	transcriber   Transcriber
	requesterMode string
	version       string
	startTime     time.Time
}

func NewHealthHandler(tr Transcriber, requesterMode, version string, startTime time.Time) *HealthHandler {
	return &HealthHandler{
		transcriber:   tr,
		requesterMode: requesterMode,
		version:       version,
		startTime:     startTime,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := "healthy"

	backends := h.transcriber.Backends()
	if len(backends) == 0 {
		checks["transcription"] = "no_backends"
		status = "degraded"
	} else {
		checks["transcription"] = "ok (" + strings.Join(backends, ",") + ")"
	}

	checks["generation"] = h.requesterMode

	if media.CheckFFmpeg() {
		checks["ffmpeg"] = "ok"
	} else {
		checks["ffmpeg"] = "missing"
		status = "degraded"
	}
	if media.CheckSox() {
		checks["sox"] = "ok"
	} else {
		checks["sox"] = "missing"
	}

	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        checks,
	})
}
