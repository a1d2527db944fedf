package contentgen

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/abhisek/learnhub/internal/llm"
	"github.com/abhisek/learnhub/internal/quiz"
	"github.com/abhisek/learnhub/internal/store"
)

// TestQuizEndToEnd generates a quiz, answers it with three correct picks
// out of five and submits the result to a real store.
func TestQuizEndToEnd(t *testing.T) {
	st, err := store.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	mock := llm.NewMockProvider(llm.MockResponse{Text: "```json\n" + quizJSON(5) + "\n```"})
	gen := New(mock, DefaultConfig())
	svc := quiz.NewService(st.QuizResultRepo(), st.ActivityRepo())
	ctx := context.Background()

	a := quiz.NewAttempt("JavaScript basics")
	if err := a.Generate(ctx, gen, 0); err != nil {
		t.Fatalf("generate: %v", err)
	}
	qs := a.Questions()
	if len(qs) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(qs))
	}

	for i, q := range qs {
		pick := q.Answer
		if i >= 3 {
			pick = q.Options[0] // wrong on purpose
		}
		if err := a.Answer(i, pick); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}

	res, err := a.Submit("dev@example.com")
	if err != nil {
		t.Fatalf("submit attempt: %v", err)
	}
	id, err := svc.Submit(ctx, res)
	if err != nil {
		t.Fatalf("store result: %v", err)
	}

	stored, err := svc.Get(ctx, id)
	if err != nil || stored == nil {
		t.Fatalf("get stored result: %v", err)
	}
	if stored.Score != 3 || stored.Total != 5 || len(stored.Responses) != 5 {
		t.Fatalf("stored score=%d total=%d responses=%d", stored.Score, stored.Total, len(stored.Responses))
	}
	if stored.Topic != "JavaScript basics" || stored.UserIdentity != "dev@example.com" {
		t.Fatalf("stored %+v", stored)
	}
}
