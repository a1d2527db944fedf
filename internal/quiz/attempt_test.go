package quiz

import (
	"context"
	"errors"
	"testing"
)

type stubSource struct {
	questions []Question
	err       error
	calls     int
}

func (s *stubSource) GenerateQuiz(_ context.Context, _ string, count int) ([]Question, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if count < len(s.questions) {
		return s.questions[:count], nil
	}
	return s.questions, nil
}

func sampleQuestions() []Question {
	return []Question{
		{Question: "2+2?", Options: []string{"3", "4", "5", "6"}, Answer: "4"},
		{Question: "Capital of France?", Options: []string{"Paris", "Rome", "Oslo", "Bern"}, Answer: "Paris"},
		{Question: "Go keyword for constants?", Options: []string{"var", "const", "let", "def"}, Answer: "const"},
	}
}

func TestAttempt_HappyPath(t *testing.T) {
	a := NewAttempt("mixed")
	if a.State() != StateIdle {
		t.Fatalf("new attempt state = %s", a.State())
	}

	if err := a.Generate(context.Background(), &stubSource{questions: sampleQuestions()}, 3); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if a.State() != StateReady {
		t.Fatalf("state after generate = %s, want ready", a.State())
	}

	for i, sel := range []string{"4", "Rome", "const"} {
		if err := a.Answer(i, sel); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}
	if a.State() != StateAnswering || a.Remaining() != 0 {
		t.Fatalf("state = %s, remaining = %d", a.State(), a.Remaining())
	}

	res, err := a.Submit("ana@example.com")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 2 || res.Total != 3 || len(res.Responses) != 3 {
		t.Fatalf("unexpected result: score=%d total=%d responses=%d", res.Score, res.Total, len(res.Responses))
	}
	if res.Responses[1].IsCorrect || res.Responses[1].Correct != "Paris" {
		t.Fatalf("response 1 = %+v", res.Responses[1])
	}
	if err := Verify(res); err != nil {
		t.Fatalf("attempt built an unverifiable result: %v", err)
	}
	if a.State() != StateSubmitted {
		t.Fatalf("state after submit = %s", a.State())
	}
}

func TestAttempt_GenerationFailureReturnsToIdle(t *testing.T) {
	a := NewAttempt("go")
	boom := errors.New("model down")
	src := &stubSource{err: boom}

	if err := a.Generate(context.Background(), src, 5); !errors.Is(err, boom) {
		t.Fatalf("expected model error, got %v", err)
	}
	if a.State() != StateIdle || !errors.Is(a.Err(), boom) {
		t.Fatalf("state = %s, err = %v", a.State(), a.Err())
	}

	// Retry from idle succeeds.
	src.err = nil
	src.questions = sampleQuestions()
	if err := a.Generate(context.Background(), src, 5); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if a.Err() != nil {
		t.Fatalf("error should be cleared, got %v", a.Err())
	}
}

func TestAttempt_IllegalTransitions(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{questions: sampleQuestions()[:1]}

	t.Run("answer before generate", func(t *testing.T) {
		a := NewAttempt("go")
		if err := a.Answer(0, "4"); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("submit before answering everything", func(t *testing.T) {
		a := NewAttempt("go")
		if err := a.Generate(ctx, src, 1); err != nil {
			t.Fatal(err)
		}
		if _, err := a.Submit("u"); !errors.Is(err, ErrIncomplete) {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("generate twice", func(t *testing.T) {
		a := NewAttempt("go")
		if err := a.Generate(ctx, src, 1); err != nil {
			t.Fatal(err)
		}
		if err := a.Generate(ctx, src, 1); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("submitted is terminal", func(t *testing.T) {
		a := NewAttempt("go")
		if err := a.Generate(ctx, src, 1); err != nil {
			t.Fatal(err)
		}
		if err := a.Answer(0, "4"); err != nil {
			t.Fatal(err)
		}
		if _, err := a.Submit("u"); err != nil {
			t.Fatal(err)
		}
		if err := a.Answer(0, "3"); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("answer after submit: %v", err)
		}
		if _, err := a.Submit("u"); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("second submit: %v", err)
		}
	})

	t.Run("unknown option", func(t *testing.T) {
		a := NewAttempt("go")
		if err := a.Generate(ctx, src, 1); err != nil {
			t.Fatal(err)
		}
		if err := a.Answer(0, "42"); !errors.Is(err, ErrUnknownOption) {
			t.Fatalf("got %v", err)
		}
		if err := a.Answer(7, "4"); !errors.Is(err, ErrNoSuchQuestion) {
			t.Fatalf("got %v", err)
		}
	})
}
