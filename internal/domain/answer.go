package domain

import (
	"encoding/json"
	"fmt"
)

// AnswerValue holds an authored or submitted answer. On the wire it is
// either a single JSON string (single-answer types) or an array of strings
// (multi-choice).
type AnswerValue struct {
	Single string
	Set    []string
	IsSet  bool
}

// SingleAnswer wraps a single string answer.
func SingleAnswer(v string) AnswerValue {
	return AnswerValue{Single: v}
}

// SetAnswer wraps a set-of-strings answer.
func SetAnswer(vs ...string) AnswerValue {
	return AnswerValue{Set: vs, IsSet: true}
}

// Values returns the answer as a flat list: the set itself, or a
// one-element list for a non-empty single value.
func (a AnswerValue) Values() []string {
	if a.IsSet {
		return a.Set
	}
	if a.Single == "" {
		return nil
	}
	return []string{a.Single}
}

// IsZero reports whether the value carries no answer at all.
func (a AnswerValue) IsZero() bool {
	return !a.IsSet && a.Single == ""
}

func (a AnswerValue) MarshalJSON() ([]byte, error) {
	if a.IsSet {
		if a.Set == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Set)
	}
	return json.Marshal(a.Single)
}

func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = AnswerValue{}
		return nil
	}
	var set []string
	if err := json.Unmarshal(data, &set); err == nil {
		*a = AnswerValue{Set: set, IsSet: true}
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("answer must be a string or an array of strings")
	}
	*a = AnswerValue{Single: single}
	return nil
}
