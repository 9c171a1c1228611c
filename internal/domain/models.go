package domain

import "time"

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	MultiChoice  QuestionType = "multi_choice"
	TrueFalse    QuestionType = "true_false"
	ShortAnswer  QuestionType = "short_answer"
	FreeText     QuestionType = "free_text"
)

// Valid reports whether t is one of the enumerated types.
func (t QuestionType) Valid() bool {
	switch t {
	case SingleChoice, MultiChoice, TrueFalse, ShortAnswer, FreeText:
		return true
	}
	return false
}

// Choice reports whether the question presents a fixed option list.
func (t QuestionType) Choice() bool {
	return t == SingleChoice || t == MultiChoice || t == TrueFalse
}

// Multi reports whether the answer is a set of values.
func (t QuestionType) Multi() bool {
	return t == MultiChoice
}

// Scorable reports whether submissions of this type can be marked correct.
// Free-text answers are recorded but never auto-scored.
func (t QuestionType) Scorable() bool {
	return t != FreeText
}

// Identity is a resolved requester: authenticated users carry an ID,
// anonymous takers only a display name.
type Identity struct {
	ID   string
	Name string
}

// Anonymous reports whether the identity lacks an authenticated user ID.
func (i Identity) Anonymous() bool { return i.ID == "" }

// Question is an authored question including its answer key.
type Question struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Text        string       `json:"text"`
	Options     []string     `json:"options,omitempty"`
	Answer      AnswerValue  `json:"answer"`
	Explanation string       `json:"explanation,omitempty"`
}

// Quiz is the mutable authoring document. Only the owner may read it in
// full or change it; hosting never deletes it.
type Quiz struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// SnapshotQuestion is the answer-free copy of a question embedded in a
// session at host time. It must never carry the answer or explanation.
type SnapshotQuestion struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Options  []string     `json:"options"`
	Multiple bool         `json:"multiple"`
}

// Session is an immutable hosted instance of a quiz, identified by an
// opaque join code. The answer key lives in the source quiz; the optional
// frozen copy here is persisted but never serialized to clients.
type Session struct {
	ID          string                 `json:"sessionId"`
	QuizID      string                 `json:"quizId"`
	HostID      string                 `json:"hostId"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Questions   []SnapshotQuestion     `json:"questions"`
	AnswerKey   map[string]AnswerValue `json:"-"`
	TimeLimit   *int                   `json:"timeLimit"`
	StartTime   *time.Time             `json:"startTime"`
	EndTime     *time.Time             `json:"endTime"`
	Active      bool                   `json:"active"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// TakeView is the taker-facing projection of an active session.
type TakeView struct {
	SessionID string             `json:"sessionId"`
	Title     string             `json:"title"`
	Questions []SnapshotQuestion `json:"questions"`
	TimeLimit *int               `json:"timeLimit"`
	StartTime *time.Time         `json:"startTime"`
	EndTime   *time.Time         `json:"endTime"`
}

// AnswerDetail is the per-question outcome of a scored submission.
type AnswerDetail struct {
	QuestionID      string       `json:"questionId"`
	QuestionText    string       `json:"questionText"`
	Correct         bool         `json:"correct"`
	SubmittedAnswer *AnswerValue `json:"submittedAnswer"`
	CorrectAnswer   *AnswerValue `json:"correctAnswer"`
	Type            QuestionType `json:"type"`
}

// Attempt is one scored submission against a session. Attempts are
// append-only; the core never mutates or deletes them.
type Attempt struct {
	ID           string                 `json:"attemptId"`
	SessionID    string                 `json:"sessionId"`
	QuizID       string                 `json:"quizId"`
	UserID       string                 `json:"userId,omitempty"`
	Name         string                 `json:"name"`
	Answers      map[string]AnswerValue `json:"answers"`
	Score        int                    `json:"score"`
	Total        int                    `json:"total"`
	CorrectCount int                    `json:"correctCount"`
	Details      []AnswerDetail         `json:"details"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// Eligibility is the outcome of the attempt gate for one identity.
type Eligibility struct {
	Allowed      bool   `json:"allowed"`
	AttemptsMade int    `json:"attemptsMade,omitempty"`
	MaxAttempts  int    `json:"maxAttempts,omitempty"`
	Message      string `json:"message,omitempty"`
}

// SessionResult is one row of the owner-facing results projection.
type SessionResult struct {
	AttemptID   string    `json:"attemptId"`
	Name        string    `json:"name"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Percentage  float64   `json:"percentage"`
	SubmittedAt time.Time `json:"submittedAt"`
}
