package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/domain"
)

// HostHandler exposes the session lifecycle to quiz owners.
type HostHandler struct {
	hosting *app.HostingService
}

func NewHostHandler(hosting *app.HostingService) *HostHandler {
	return &HostHandler{hosting: hosting}
}

type hostPayload struct {
	QuizID      string     `json:"quizId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TimeLimit   *int       `json:"timeLimit"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
}

func (h *HostHandler) Host(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	var payload hostPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, domain.Validationf("invalid request body"))
		return
	}
	if payload.QuizID == "" {
		writeError(w, domain.Validationf("quizId is required"))
		return
	}

	session, err := h.hosting.Host(r.Context(), payload.QuizID, identity, app.HostOverrides{
		Title:       payload.Title,
		Description: payload.Description,
		TimeLimit:   payload.TimeLimit,
		StartTime:   payload.StartTime,
		EndTime:     payload.EndTime,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Quiz hosted successfully",
		"sessionId":  session.ID,
		"hostedQuiz": session,
	})
}

func (h *HostHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	session, err := h.hosting.GetActive(r.Context(), mux.Vars(r)["quizId"], identity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *HostHandler) Stop(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	if err := h.hosting.Stop(r.Context(), mux.Vars(r)["sessionId"], identity); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *HostHandler) Results(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	results, err := h.hosting.Results(r.Context(), mux.Vars(r)["sessionId"], identity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
