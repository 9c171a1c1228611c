package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizcraft-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

// writeError maps domain error kinds to status codes and user-safe
// messages. Internal diagnostics are logged, never returned, except the
// raw LLM payload which is echoed as a development convenience.
func writeError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	var activeSession *domain.ActiveSessionError
	var generation *domain.GenerationError

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": validation.Msg})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]any{"error": "Forbidden"})
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
	case errors.As(err, &activeSession):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":     "This quiz is already being hosted",
			"sessionId": activeSession.SessionID,
		})
	case errors.Is(err, domain.ErrSessionInactive),
		errors.Is(err, domain.ErrSessionNotStarted),
		errors.Is(err, domain.ErrSessionEnded),
		errors.Is(err, domain.ErrAttemptLimit):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
	case errors.As(err, &generation):
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": generation.Reason,
			"raw":   generation.Raw,
		})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Server error"})
	}
}
