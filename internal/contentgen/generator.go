// Package contentgen turns model output into validated quizzes and course
// outlines: prompt, generate, extract, validate.
package contentgen

import (
	"context"

	"github.com/abhisek/learnhub/internal/course"
	"github.com/abhisek/learnhub/internal/quiz"
)

// Generator produces learning content using an LLM provider.
type Generator interface {
	// GenerateQuiz returns exactly count validated questions about topic.
	// A count of 0 selects DefaultQuestionCount.
	GenerateQuiz(ctx context.Context, topic string, count int) ([]quiz.Question, error)

	// GenerateCourseContent returns a validated outline for title.
	GenerateCourseContent(ctx context.Context, title string) (*course.Content, error)
}
