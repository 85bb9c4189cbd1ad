package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/snarg/lectern/internal/session"
)

// AuthHandler handles account signup, login, and logout.
type AuthHandler struct {
	store *session.Store
	log   zerolog.Logger
}

func NewAuthHandler(store *session.Store, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		store: store,
		log:   log.With().Str("handler", "auth").Logger(),
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Signup handles POST /api/v1/auth/signup. A successful signup also logs the
// user in and returns a session token.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" {
		WriteError(w, http.StatusBadRequest, "username is required")
		return
	}

	sess, err := h.store.Signup(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrUserExists) {
			WriteError(w, http.StatusConflict, err.Error())
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.log.Info().Str("username", req.Username).Msg("account created")
	WriteJSON(w, http.StatusCreated, sessionResponse{Token: sess.Token, Username: sess.Username})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.store.Login(req.Username, req.Password)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, sessionResponse{Token: sess.Token, Username: sess.Username})
}

// Logout handles POST /api/v1/auth/logout. Requires a valid session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromRequest(r)
	h.store.Logout(sess.Token)
	w.WriteHeader(http.StatusNoContent)
}
