package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/domain"
)

// QuizHandler exposes authoring CRUD.
type QuizHandler struct {
	authoring *app.AuthoringService
}

func NewQuizHandler(authoring *app.AuthoringService) *QuizHandler {
	return &QuizHandler{authoring: authoring}
}

type quizDraftPayload struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Questions   *[]domain.Question `json:"questions"`
}

func (p quizDraftPayload) draft() app.QuizDraft {
	return app.QuizDraft{
		Title:       p.Title,
		Description: p.Description,
		Questions:   p.Questions,
	}
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	quizzes, err := h.authoring.List(r.Context(), identity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	quiz, err := h.authoring.Get(r.Context(), mux.Vars(r)["id"], identity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	var payload quizDraftPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, domain.Validationf("invalid request body"))
		return
	}
	quiz, err := h.authoring.Create(r.Context(), identity, payload.draft())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	var payload quizDraftPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, domain.Validationf("invalid request body"))
		return
	}
	quiz, err := h.authoring.Update(r.Context(), mux.Vars(r)["id"], identity, payload.draft())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	if err := h.authoring.Delete(r.Context(), mux.Vars(r)["id"], identity); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
