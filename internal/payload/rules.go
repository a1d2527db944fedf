package payload

import (
	"fmt"
	"slices"

	"github.com/abhisek/learnhub/internal/course"
	"github.com/abhisek/learnhub/internal/quiz"
)

// Violation describes the first semantic rule a payload broke.
type Violation struct {
	Rule    string
	Index   int // element index for array payloads, -1 otherwise
	Message string
}

func (v *Violation) Error() string {
	if v.Index >= 0 {
		return fmt.Sprintf("rule %q: item %d: %s", v.Rule, v.Index, v.Message)
	}
	return fmt.Sprintf("rule %q: %s", v.Rule, v.Message)
}

// QuestionRule checks one normalized question. Check returns "" when the
// question passes.
type QuestionRule interface {
	Name() string
	Check(q quiz.Question) string
}

// CourseRule checks normalized course content.
type CourseRule interface {
	Name() string
	Check(c *course.Content) string
}

// questionRules run in order; the first failure rejects the whole payload.
var questionRules = []QuestionRule{
	nonEmptyQuestion{},
	uniqueOptions{},
	answerInOptions{},
}

var courseRules = []CourseRule{
	nonEmptyCourseText{},
}

type nonEmptyQuestion struct{}

func (nonEmptyQuestion) Name() string { return "non-empty" }

func (nonEmptyQuestion) Check(q quiz.Question) string {
	if q.Question == "" {
		return "question is empty"
	}
	for i, o := range q.Options {
		if o == "" {
			return fmt.Sprintf("option %d is empty", i)
		}
	}
	if q.Answer == "" {
		return "answer is empty"
	}
	return ""
}

type uniqueOptions struct{}

func (uniqueOptions) Name() string { return "unique-options" }

func (uniqueOptions) Check(q quiz.Question) string {
	if len(q.Options) != quiz.OptionCount {
		return fmt.Sprintf("want %d options, got %d", quiz.OptionCount, len(q.Options))
	}
	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		if seen[o] {
			return fmt.Sprintf("option %q appears more than once", o)
		}
		seen[o] = true
	}
	return ""
}

type answerInOptions struct{}

func (answerInOptions) Name() string { return "answer-in-options" }

func (answerInOptions) Check(q quiz.Question) string {
	if !slices.Contains(q.Options, q.Answer) {
		return fmt.Sprintf("answer %q is not one of the options", q.Answer)
	}
	return ""
}

type nonEmptyCourseText struct{}

func (nonEmptyCourseText) Name() string { return "non-empty" }

func (nonEmptyCourseText) Check(c *course.Content) string {
	if c.Overview == "" {
		return "overview is empty"
	}
	lists := []struct {
		name  string
		items []string
	}{
		{"objectives", c.Objectives},
		{"skills", c.Skills},
	}
	for _, l := range lists {
		if slices.Contains(l.items, "") {
			return l.name + " contains an empty entry"
		}
	}
	for i, m := range c.Curriculum {
		if m.ModuleTitle == "" {
			return fmt.Sprintf("curriculum module %d has no title", i)
		}
	}
	return ""
}
