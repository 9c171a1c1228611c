package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/domain"
)

const anonymousName = "Anonymous"

// TakeHandler is the taker-facing surface: fetch an active session,
// check eligibility, submit answers.
type TakeHandler struct {
	views  app.TakeViewSource
	taking *app.TakingService
}

func NewTakeHandler(views app.TakeViewSource, taking *app.TakingService) *TakeHandler {
	return &TakeHandler{views: views, taking: taking}
}

func (h *TakeHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.views.GetView(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *TakeHandler) Check(w http.ResponseWriter, r *http.Request) {
	identity := takerIdentity(r, r.URL.Query().Get("name"))
	eligibility, err := h.taking.CheckEligibility(r.Context(), mux.Vars(r)["sessionId"], identity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eligibility)
}

type submitPayload struct {
	Answers map[string]domain.AnswerValue `json:"answers"`
	Name    string                        `json:"name"`
}

func (h *TakeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, domain.Validationf("invalid request body"))
		return
	}
	if payload.Answers == nil {
		writeError(w, domain.Validationf("answers are required"))
		return
	}

	identity := takerIdentity(r, payload.Name)
	attempt, err := h.taking.Submit(r.Context(), mux.Vars(r)["sessionId"], identity, payload.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"attemptId":    attempt.ID,
		"score":        attempt.Score,
		"correctCount": attempt.CorrectCount,
		"total":        attempt.Total,
		"details":      attempt.Details,
	})
}

// takerIdentity prefers the authenticated identity; anonymous takers are
// identified by display name only.
func takerIdentity(r *http.Request, name string) domain.Identity {
	if identity, ok := identityFrom(r.Context()); ok {
		return identity
	}
	if name == "" {
		name = anonymousName
	}
	return domain.Identity{Name: name}
}
