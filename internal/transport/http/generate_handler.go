package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/domain"
)

// maxUploadBytes caps uploaded source documents at 10 MB.
const maxUploadBytes = 10 << 20

// GenerateHandler exposes AI question generation from free text or an
// uploaded plain-text document.
type GenerateHandler struct {
	generator *app.GenerationService
}

func NewGenerateHandler(generator *app.GenerationService) *GenerateHandler {
	return &GenerateHandler{generator: generator}
}

type generatePayload struct {
	Source       string   `json:"source"`
	NumQuestions int      `json:"num_questions"`
	Difficulties []string `json:"difficulties"`
	Types        []string `json:"question_types"`
}

func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	req, err := parseGenerateRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	questions, err := h.generator.Generate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quiz": questions})
}

func parseGenerateRequest(r *http.Request) (app.GenerateRequest, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return parseMultipartGenerate(r)
	}

	var payload generatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return app.GenerateRequest{}, domain.Validationf("invalid request body")
	}
	return app.GenerateRequest{
		Source:       payload.Source,
		NumQuestions: payload.NumQuestions,
		Difficulties: payload.Difficulties,
		Types:        payload.Types,
	}, nil
}

func parseMultipartGenerate(r *http.Request) (app.GenerateRequest, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return app.GenerateRequest{}, domain.Validationf("invalid multipart form")
	}

	req := app.GenerateRequest{
		Source: r.FormValue("source"),
	}
	if raw := r.FormValue("num_questions"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			req.NumQuestions = n
		}
	}
	if raw := r.FormValue("difficulties"); raw != "" {
		req.Difficulties = splitCSV(raw)
	}
	if raw := r.FormValue("question_types"); raw != "" {
		req.Types = splitCSV(raw)
	}

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if readErr != nil {
			return app.GenerateRequest{}, domain.Validationf("failed to read upload")
		}
		req.FileName = header.Filename
		req.FileData = data
	}
	return req, nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
