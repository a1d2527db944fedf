package contentgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/abhisek/learnhub/internal/apperr"
	"github.com/abhisek/learnhub/internal/llm"
)

// quizJSON renders n valid questions; question i's answer is option B.
func quizJSON(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"question":"Question %d?","options":["A%d","B%d","C%d","D%d"],"answer":"B%d"}`, i+1, i, i, i, i, i)
	}
	return "[" + strings.Join(items, ",") + "]"
}

const courseJSON = `{
  "overview": "A practical introduction to Go.",
  "objectives": ["Write Go programs"],
  "skills": ["Go"],
  "curriculum": [{"moduleTitle": "Basics", "lessons": ["Hello"]}],
  "duration": "2 weeks",
  "targetAudience": "Beginners",
  "assessment": ["Quiz"]
}`

func TestGenerateQuiz(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Text: "Sure! Here you go:\n```json\n" + quizJSON(5) + "\n```",
	})
	g := New(mock, DefaultConfig())

	qs, err := g.GenerateQuiz(context.Background(), "  JavaScript basics ", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != DefaultQuestionCount {
		t.Fatalf("expected %d questions, got %d", DefaultQuestionCount, len(qs))
	}
	for i, q := range qs {
		if len(q.Options) != 4 {
			t.Errorf("question %d has %d options", i, len(q.Options))
		}
		if q.Answer != q.Options[1] {
			t.Errorf("question %d answer %q not the expected option", i, q.Answer)
		}
	}

	if !strings.Contains(mock.LastPrompt(), `about "JavaScript basics"`) {
		t.Errorf("prompt should carry the trimmed topic: %s", mock.LastPrompt())
	}
	req := mock.Calls[0]
	if req.MaxTokens != DefaultConfig().QuizMaxTokens || req.System == "" {
		t.Errorf("unexpected request: max_tokens=%d system=%q", req.MaxTokens, req.System)
	}
}

func TestGenerateQuiz_TrimsExtraQuestions(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: quizJSON(4)})
	g := New(mock, DefaultConfig())

	qs, err := g.GenerateQuiz(context.Background(), "Go", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 2 || qs[1].Question != "Question 2?" {
		t.Fatalf("expected the first 2 questions, got %+v", qs)
	}
}

func TestGenerateQuiz_Errors(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		count int
		resp  *llm.MockResponse
		want  apperr.Kind
	}{
		{
			name: "too few questions", topic: "Go", count: 5,
			resp: &llm.MockResponse{Text: quizJSON(3)},
			want: apperr.InvalidShape,
		},
		{
			name: "refusal", topic: "Go",
			resp: &llm.MockResponse{Text: "Sorry, I can't help with that."},
			want: apperr.PayloadNotFound,
		},
		{
			name: "answer outside options", topic: "Go", count: 1,
			resp: &llm.MockResponse{Text: `[{"question":"Q","options":["A","B","C","D"],"answer":"E"}]`},
			want: apperr.InvalidShape,
		},
		{
			name: "broken json", topic: "Go", count: 1,
			resp: &llm.MockResponse{Text: `[{"question": "Q", "options": ["A" "B"]}]`},
			want: apperr.MalformedPayload,
		},
		{
			name: "provider down", topic: "Go",
			resp: &llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("503")}},
			want: apperr.GenerationFailed,
		},
		{
			name: "empty text", topic: "Go",
			resp: &llm.MockResponse{Text: ""},
			want: apperr.GenerationFailed,
		},
		{
			name: "truncated", topic: "Go",
			resp: &llm.MockResponse{Text: quizJSON(5), StopReason: llm.StopMaxTokens},
			want: apperr.GenerationFailed,
		},
		{name: "blank topic", topic: "   ", want: apperr.InvalidInput},
		{name: "count too large", topic: "Go", count: MaxQuestionCount + 1, want: apperr.InvalidInput},
		{name: "negative count", topic: "Go", count: -2, want: apperr.InvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider()
			if tt.resp != nil {
				mock.AddResponse(*tt.resp)
			}
			g := New(mock, DefaultConfig())

			_, err := g.GenerateQuiz(context.Background(), tt.topic, tt.count)
			if got := apperr.KindOf(err); got != tt.want {
				t.Fatalf("kind = %s, want %s (err: %v)", got, tt.want, err)
			}
			if tt.resp == nil && mock.CallCount() != 0 {
				t.Fatalf("invalid input should not reach the model")
			}
		})
	}
}

func TestGenerateQuiz_KeepsProviderCause(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("slow down")}})
	g := New(mock, DefaultConfig())

	_, err := g.GenerateQuiz(context.Background(), "Go", 1)
	var rl *llm.ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected rate limit cause in chain, got %v", err)
	}
	if !errors.Is(err, apperr.ErrGenerationFailed) {
		t.Fatalf("expected GenerationFailed, got %v", err)
	}
}

func TestGenerateCourseContent(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "```json\n" + courseJSON + "\n```"})
	g := New(mock, DefaultConfig())

	c, err := g.GenerateCourseContent(context.Background(), "Go for beginners")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Overview != "A practical introduction to Go." || len(c.Curriculum) != 1 {
		t.Fatalf("unexpected content: %+v", c)
	}
	if len(c.TargetAudience) != 1 || c.TargetAudience[0] != "Beginners" {
		t.Fatalf("targetAudience = %q", c.TargetAudience)
	}
	if mock.Calls[0].MaxTokens != DefaultConfig().CourseMaxTokens {
		t.Errorf("max tokens = %d", mock.Calls[0].MaxTokens)
	}
}

func TestGenerateCourseContent_Errors(t *testing.T) {
	tests := []struct {
		name  string
		title string
		text  string
		want  apperr.Kind
	}{
		{"blank title", "", "", apperr.InvalidInput},
		{"prose", "Go", "I cannot do that.", apperr.PayloadNotFound},
		{"missing skills", "Go", `{"overview":"x","objectives":[]}`, apperr.InvalidShape},
		{"empty reply", "Go", "", apperr.GenerationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Text: tt.text})
			g := New(mock, DefaultConfig())

			_, err := g.GenerateCourseContent(context.Background(), tt.title)
			if got := apperr.KindOf(err); got != tt.want {
				t.Fatalf("kind = %s, want %s (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestNormalizeCount(t *testing.T) {
	tests := []struct {
		in      int
		want    int
		wantErr bool
	}{
		{0, 5, false},
		{1, 1, false},
		{10, 10, false},
		{11, 0, true},
		{-1, 0, true},
	}
	for _, tt := range tests {
		got, err := NormalizeCount(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("NormalizeCount(%d) = %d, %v", tt.in, got, err)
		}
	}
}
