package app

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"quizcraft-service/internal/domain"
)

// LLMClient abstracts the text-generation collaborator.
type LLMClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// GenerateRequest is the input for AI question generation: free text, or
// an uploaded plain-text document.
type GenerateRequest struct {
	Source       string
	NumQuestions int
	Difficulties []string
	Types        []string
	FileName     string
	FileData     []byte
}

// GenerationService turns source material into candidate questions via the
// LLM collaborator. The core performs no evaluation logic on the output
// beyond parsing and id assignment.
type GenerationService struct {
	llm LLMClient
}

func NewGenerationService(llm LLMClient) *GenerationService {
	return &GenerationService{llm: llm}
}

var textUploadExts = map[string]struct{}{
	".txt":      {},
	".md":       {},
	".markdown": {},
}

// Generate builds the prompt, calls the model and parses its JSON output.
// Every failure surfaces as *domain.GenerationError carrying the raw
// diagnostic payload.
func (s *GenerationService) Generate(ctx context.Context, req GenerateRequest) ([]domain.Question, error) {
	source := req.Source
	if len(req.FileData) > 0 {
		ext := strings.ToLower(filepath.Ext(req.FileName))
		if _, ok := textUploadExts[ext]; !ok {
			return nil, &domain.GenerationError{
				Reason: fmt.Sprintf("unsupported file type %q", ext),
				Raw:    req.FileName,
			}
		}
		source = string(req.FileData)
	}
	if strings.TrimSpace(source) == "" {
		return nil, domain.Validationf("source is required")
	}

	num := req.NumQuestions
	if num <= 0 {
		num = 5
	}
	difficulties := req.Difficulties
	if len(difficulties) == 0 {
		difficulties = []string{"Intermediate"}
	}
	types := req.Types
	if len(types) == 0 {
		types = []string{
			string(domain.SingleChoice),
			string(domain.MultiChoice),
			string(domain.TrueFalse),
			string(domain.ShortAnswer),
			string(domain.FreeText),
		}
	}

	raw, err := s.llm.GenerateContent(ctx, buildPrompt(source, num, difficulties, types))
	if err != nil {
		return nil, &domain.GenerationError{Reason: "generation request failed", Raw: err.Error()}
	}

	sanitized := stripCodeFences(raw)
	var generated []domain.Question
	if err := json.Unmarshal([]byte(sanitized), &generated); err != nil {
		return nil, &domain.GenerationError{Reason: "model returned unparsable JSON", Raw: sanitized}
	}

	for i := range generated {
		if generated[i].ID == "" {
			generated[i].ID = uuid.NewString()
		}
		if !generated[i].Type.Valid() {
			generated[i].Type = domain.FreeText
		}
	}
	return generated, nil
}

func buildPrompt(source string, num int, difficulties, types []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a JSON array of %d quiz questions about the following material:\n\n%s\n\n", num, source)
	fmt.Fprintf(&b, "Mix question difficulty across: %s.\n", strings.Join(difficulties, ", "))
	fmt.Fprintf(&b, "Each question must be an object with keys:\n")
	fmt.Fprintf(&b, "- type: one of %s\n", strings.Join(types, ", "))
	b.WriteString(`- text: question text
- options: array of strings (only for choice types)
- answer: string (or array of strings for multi_choice)

Use the following examples for reference:

{"type": "single_choice", "text": "What is the capital of France?", "options": ["Paris", "London", "Berlin", "Rome"], "answer": "Paris"}
{"type": "true_false", "text": "The Sun rises in the west.", "options": ["True", "False"], "answer": "False"}
{"type": "short_answer", "text": "Name the process by which plants make food.", "answer": "Photosynthesis"}
{"type": "free_text", "text": "Explain why the sky appears blue.", "answer": "Due to scattering of sunlight by the atmosphere."}

Return only JSON, no extra text or formatting.
`)
	return b.String()
}

// stripCodeFences removes markdown code fences models tend to wrap JSON in.
func stripCodeFences(raw string) string {
	out := strings.ReplaceAll(raw, "```json", "")
	out = strings.ReplaceAll(out, "```JSON", "")
	out = strings.ReplaceAll(out, "```", "")
	return strings.TrimSpace(out)
}
