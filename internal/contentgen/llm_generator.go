package contentgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/learnhub/internal/apperr"
	"github.com/abhisek/learnhub/internal/course"
	"github.com/abhisek/learnhub/internal/extract"
	"github.com/abhisek/learnhub/internal/llm"
	"github.com/abhisek/learnhub/internal/logging"
	"github.com/abhisek/learnhub/internal/payload"
	"github.com/abhisek/learnhub/internal/quiz"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

var _ Generator = (*LLMGenerator)(nil)

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// GenerateQuiz produces count questions about topic. Extra questions are
// dropped from the end; too few is InvalidShape.
func (g *LLMGenerator) GenerateQuiz(ctx context.Context, topic string, count int) ([]quiz.Question, error) {
	const op = "contentgen.GenerateQuiz"

	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, apperr.Errorf(apperr.InvalidInput, op, "topic is empty")
	}
	count, err := NormalizeCount(count)
	if err != nil {
		return nil, apperr.E(apperr.InvalidInput, op, err)
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeQuizGen)
	raw, err := g.generate(ctx, op, QuizPrompt(topic, count), g.config.QuizMaxTokens)
	if err != nil {
		return nil, err
	}

	candidate, err := extract.Extract(raw, extract.Array)
	if err != nil {
		return nil, err
	}
	questions, err := payload.ParseQuiz(candidate)
	if err != nil {
		return nil, err
	}

	if len(questions) < count {
		return nil, apperr.Errorf(apperr.InvalidShape, op, "asked for %d questions, model returned %d", count, len(questions))
	}
	if len(questions) > count {
		logging.WithContext(ctx).WithField("topic", topic).
			Debugf("model returned %d questions, keeping %d", len(questions), count)
		questions = questions[:count]
	}
	return questions, nil
}

// GenerateCourseContent produces a course outline for title.
func (g *LLMGenerator) GenerateCourseContent(ctx context.Context, title string) (*course.Content, error) {
	const op = "contentgen.GenerateCourseContent"

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Errorf(apperr.InvalidInput, op, "title is empty")
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeCourseGen)
	raw, err := g.generate(ctx, op, CoursePrompt(title), g.config.CourseMaxTokens)
	if err != nil {
		return nil, err
	}

	candidate, err := extract.Extract(raw, extract.Object)
	if err != nil {
		return nil, err
	}
	return payload.ParseCourseContent(candidate)
}

// generate runs one model call and returns its raw text. Every failure,
// including a truncated reply, is GenerationFailed.
func (g *LLMGenerator) generate(ctx context.Context, op, prompt string, maxTokens int) (string, error) {
	resp, err := g.provider.Generate(ctx, llm.UserPrompt(systemPrompt, prompt, maxTokens, g.config.Temperature))
	if err != nil {
		return "", apperr.E(apperr.GenerationFailed, op, err)
	}
	if resp.Truncated() {
		return "", apperr.E(apperr.GenerationFailed, op, &llm.ErrMaxTokensExceeded{Content: resp.Text})
	}
	return resp.Text, nil
}

// NormalizeCount applies the default question count and checks bounds.
func NormalizeCount(count int) (int, error) {
	if count == 0 {
		return DefaultQuestionCount, nil
	}
	if count < 1 || count > MaxQuestionCount {
		return 0, fmt.Errorf("question count %d out of range 1..%d", count, MaxQuestionCount)
	}
	return count, nil
}
