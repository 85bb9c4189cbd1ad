package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/snarg/lectern/internal/metrics"
	"github.com/snarg/lectern/internal/quiz"
	"github.com/snarg/lectern/internal/session"
)

// QuizHandler scores quiz submissions and resets attempts for retakes.
type QuizHandler struct {
	log zerolog.Logger
}

func NewQuizHandler(log zerolog.Logger) *QuizHandler {
	return &QuizHandler{log: log.With().Str("handler", "quiz").Logger()}
}

type submitRequest struct {
	// Selections holds one chosen option per question, in question order.
	Selections []string `json:"selections"`
}

type questionResult struct {
	Question string `json:"question"`
	Selected string `json:"selected"`
	Answer   string `json:"answer"`
	Correct  bool   `json:"correct"`
}

type submitResponse struct {
	Score   int              `json:"score"`
	Total   int              `json:"total"`
	Percent float64          `json:"percent"`
	Results []questionResult `json:"results"`
}

// Submit handles POST /api/v1/quiz/submit.
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromRequest(r)

	var req submitRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := sess.SubmitQuiz(req.Selections)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoQuiz):
			WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, quiz.ErrIncomplete):
			WriteError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, quiz.ErrScored):
			WriteError(w, http.StatusConflict, err.Error())
		default:
			WriteError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	metrics.QuizSubmissionsTotal.Inc()

	resp := submitResponse{
		Score:   res.Score,
		Total:   res.Total,
		Percent: res.Percent,
		Results: make([]questionResult, len(res.Questions)),
	}
	for i, q := range res.Questions {
		resp.Results[i] = questionResult{
			Question: q.Question,
			Selected: res.Selections[i],
			Answer:   q.Answer,
			Correct:  res.Selections[i] == q.Answer,
		}
	}

	h.log.Info().
		Str("username", sess.Username).
		Int("score", res.Score).
		Int("total", res.Total).
		Msg("quiz scored")
	WriteJSON(w, http.StatusOK, resp)
}

// Retake handles POST /api/v1/quiz/retake: same questions, cleared answers.
func (h *QuizHandler) Retake(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromRequest(r)
	if err := sess.Retake(); err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	state, _ := sess.QuizState()
	WriteJSON(w, http.StatusOK, map[string]string{"state": string(state)})
}
