package app

import (
	"sort"
	"strings"

	"quizcraft-service/internal/domain"
)

// evaluate scores a submission against the session snapshot. The snapshot
// fixes which questions count (mid-session quiz edits cannot change the
// total); the answer key decides what is correct. One point per question,
// no partial credit.
func evaluate(snapshot []domain.SnapshotQuestion, key map[string]domain.AnswerValue, answers map[string]domain.AnswerValue) ([]domain.AnswerDetail, int) {
	details := make([]domain.AnswerDetail, 0, len(snapshot))
	correctCount := 0

	for _, q := range snapshot {
		submitted, submittedOK := answers[q.ID]
		correct, keyOK := key[q.ID]

		isCorrect := false
		if q.Type.Scorable() && keyOK {
			if q.Type.Multi() {
				isCorrect = answerSetsEqual(correct, submitted)
			} else {
				isCorrect = singleAnswerMatches(correct, submitted, submittedOK)
			}
		}
		if isCorrect {
			correctCount++
		}

		detail := domain.AnswerDetail{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			Correct:      isCorrect,
			Type:         q.Type,
		}
		if submittedOK {
			sub := submitted
			detail.SubmittedAnswer = &sub
		}
		if keyOK {
			cor := correct
			detail.CorrectAnswer = &cor
		}
		details = append(details, detail)
	}
	return details, correctCount
}

// answerSetsEqual compares multi-choice answers as deduplicated sorted
// sets. A non-set submission counts as the empty set.
func answerSetsEqual(correct, submitted domain.AnswerValue) bool {
	correctVals := correct.Set
	if !correct.IsSet {
		correctVals = []string{correct.Single}
	}
	var submittedVals []string
	if submitted.IsSet {
		submittedVals = submitted.Set
	}

	a := normalizeSet(correctVals)
	b := normalizeSet(submittedVals)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// singleAnswerMatches compares single-answer types after trimming and
// case-folding. A missing or blank submission is never correct. A
// one-element set submission compares as its element.
func singleAnswerMatches(correct, submitted domain.AnswerValue, present bool) bool {
	if !present {
		return false
	}

	correctStr := correct.Single
	if correct.IsSet {
		if len(correct.Set) == 0 {
			return false
		}
		correctStr = correct.Set[0]
	}

	var sub string
	switch {
	case !submitted.IsSet:
		sub = submitted.Single
	case len(submitted.Set) == 1:
		sub = submitted.Set[0]
	default:
		return false
	}

	sub = strings.TrimSpace(sub)
	if sub == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(correctStr), sub)
}

func normalizeSet(vals []string) []string {
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
