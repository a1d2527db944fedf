package quiz

import (
	"strings"

	"github.com/abhisek/learnhub/internal/apperr"
)

// Grade builds the response list for a set of questions and the learner's
// selections (same order, same length) and returns the number correct.
func Grade(questions []Question, selected []string) ([]Response, int) {
	responses := make([]Response, len(questions))
	score := 0
	for i, q := range questions {
		var sel string
		if i < len(selected) {
			sel = selected[i]
		}
		ok := sel == q.Answer
		if ok {
			score++
		}
		responses[i] = Response{
			Question:  q.Question,
			Selected:  sel,
			Correct:   q.Answer,
			IsCorrect: ok,
		}
	}
	return responses, score
}

// Verify checks a submitted result against its own responses. Score and
// every IsCorrect flag are recomputed rather than trusted.
func Verify(r Result) error {
	const op = "quiz.Verify"

	if strings.TrimSpace(r.UserIdentity) == "" {
		return apperr.Errorf(apperr.Unauthorized, op, "missing user identity")
	}
	if strings.TrimSpace(r.Topic) == "" {
		return apperr.Errorf(apperr.InvalidShape, op, "topic is empty")
	}
	if r.Total <= 0 {
		return apperr.Errorf(apperr.InvalidShape, op, "total must be positive, got %d", r.Total)
	}
	if len(r.Responses) != r.Total {
		return apperr.Errorf(apperr.InvalidShape, op, "got %d responses for total %d", len(r.Responses), r.Total)
	}

	correct := 0
	for i, resp := range r.Responses {
		if strings.TrimSpace(resp.Question) == "" {
			return apperr.Errorf(apperr.InvalidShape, op, "response %d has no question", i)
		}
		if strings.TrimSpace(resp.Selected) == "" {
			return apperr.Errorf(apperr.InvalidShape, op, "response %d is unanswered", i)
		}
		if strings.TrimSpace(resp.Correct) == "" {
			return apperr.Errorf(apperr.InvalidShape, op, "response %d has no correct answer", i)
		}
		if want := resp.Selected == resp.Correct; resp.IsCorrect != want {
			return apperr.Errorf(apperr.InvalidShape, op, "response %d: isCorrect=%t but selected %s correct answer", i, resp.IsCorrect, matchWord(want))
		}
		if resp.IsCorrect {
			correct++
		}
	}
	if r.Score != correct {
		return apperr.Errorf(apperr.InvalidShape, op, "score %d does not match %d correct responses", r.Score, correct)
	}
	return nil
}

func matchWord(match bool) string {
	if match {
		return "matches"
	}
	return "does not match"
}
