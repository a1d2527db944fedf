// Package payload parses and validates JSON payloads isolated from model
// output. Structure is checked against compiled JSON Schemas, then semantic
// rules run over the decoded values.
package payload

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/learnhub/internal/apperr"
	"github.com/abhisek/learnhub/internal/course"
	"github.com/abhisek/learnhub/internal/quiz"
)

// Kind selects which payload shape to validate.
type Kind int

const (
	KindQuiz Kind = iota + 1
	KindCourseContent
)

func (k Kind) String() string {
	switch k {
	case KindQuiz:
		return "quiz"
	case KindCourseContent:
		return "course-content"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Result is a validated payload. Exactly one of Quiz and Course is set,
// matching Kind.
type Result struct {
	Kind   Kind
	Quiz   []quiz.Question
	Course *course.Content
}

// Validate parses candidate as JSON and checks it against kind. A parse
// failure is MalformedPayload; any structural or semantic violation is
// InvalidShape.
func Validate(candidate string, kind Kind) (*Result, error) {
	const op = "payload.Validate"

	var doc any
	if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
		return nil, apperr.E(apperr.MalformedPayload, op, err)
	}

	sch, err := compiledSchema(kind)
	if err != nil {
		return nil, apperr.E(apperr.KindUnknown, op, err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, apperr.E(apperr.InvalidShape, op, fmt.Errorf("%s schema: %w", kind, err))
	}

	switch kind {
	case KindQuiz:
		qs, err := decodeQuiz(candidate)
		if err != nil {
			return nil, apperr.E(apperr.InvalidShape, op, err)
		}
		return &Result{Kind: kind, Quiz: qs}, nil
	case KindCourseContent:
		c, err := decodeCourse(candidate)
		if err != nil {
			return nil, apperr.E(apperr.InvalidShape, op, err)
		}
		return &Result{Kind: kind, Course: c}, nil
	}
	return nil, apperr.Errorf(apperr.KindUnknown, op, "unsupported payload kind %s", kind)
}

// ParseQuiz validates candidate as a quiz and returns its questions.
func ParseQuiz(candidate string) ([]quiz.Question, error) {
	res, err := Validate(candidate, KindQuiz)
	if err != nil {
		return nil, err
	}
	return res.Quiz, nil
}

// ParseCourseContent validates candidate as course content.
func ParseCourseContent(candidate string) (*course.Content, error) {
	res, err := Validate(candidate, KindCourseContent)
	if err != nil {
		return nil, err
	}
	return res.Course, nil
}

func decodeQuiz(candidate string) ([]quiz.Question, error) {
	var raw []quiz.Question
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return nil, fmt.Errorf("decode quiz: %w", err)
	}

	out := make([]quiz.Question, len(raw))
	for i, q := range raw {
		q = normalizeQuestion(q)
		for _, r := range questionRules {
			if msg := r.Check(q); msg != "" {
				return nil, &Violation{Rule: r.Name(), Index: i, Message: msg}
			}
		}
		out[i] = q
	}
	return out, nil
}

func normalizeQuestion(q quiz.Question) quiz.Question {
	opts := make([]string, len(q.Options))
	for i, o := range q.Options {
		opts[i] = strings.TrimSpace(o)
	}
	return quiz.Question{
		Question: strings.TrimSpace(q.Question),
		Options:  opts,
		Answer:   strings.TrimSpace(q.Answer),
	}
}

// courseOutput mirrors course.Content but accepts a bare string where a
// list is expected for the looser fields.
type courseOutput struct {
	Overview       string          `json:"overview"`
	Objectives     []string        `json:"objectives"`
	Skills         []string        `json:"skills"`
	Curriculum     []course.Module `json:"curriculum"`
	Duration       string          `json:"duration"`
	TargetAudience looseList       `json:"targetAudience"`
	Assessment     looseList       `json:"assessment"`
}

type looseList []string

func (l *looseList) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			*l = []string{s}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

func decodeCourse(candidate string) (*course.Content, error) {
	var raw courseOutput
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return nil, fmt.Errorf("decode course content: %w", err)
	}

	c := &course.Content{
		Overview:       strings.TrimSpace(raw.Overview),
		Objectives:     trimAll(raw.Objectives),
		Skills:         trimAll(raw.Skills),
		Curriculum:     make([]course.Module, 0, len(raw.Curriculum)),
		Duration:       strings.TrimSpace(raw.Duration),
		TargetAudience: trimAll(raw.TargetAudience),
		Assessment:     trimAll(raw.Assessment),
	}
	for _, m := range raw.Curriculum {
		c.Curriculum = append(c.Curriculum, course.Module{
			ModuleTitle: strings.TrimSpace(m.ModuleTitle),
			Lessons:     trimAll(m.Lessons),
		})
	}

	for _, r := range courseRules {
		if msg := r.Check(c); msg != "" {
			return nil, &Violation{Rule: r.Name(), Index: -1, Message: msg}
		}
	}
	return c, nil
}

// trimAll trims every entry and never returns nil.
func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
