package contentgen

import (
	"strings"
	"testing"
)

func TestQuizPrompt(t *testing.T) {
	p := QuizPrompt("JavaScript basics", 5)

	for _, want := range []string{
		`Generate 5 multiple-choice quiz questions about "JavaScript basics"`,
		"exactly 4 distinct options",
		"Return only the JSON array",
		`"answer": "Library"`,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestCoursePrompt(t *testing.T) {
	p := CoursePrompt(`Intro to "Go"`)

	if !strings.Contains(p, `titled "Intro to \"Go\""`) {
		t.Errorf("title should be quoted safely:\n%s", p)
	}
	for _, field := range []string{"overview", "objectives", "skills", "curriculum", "moduleTitle", "duration", "targetAudience", "assessment"} {
		if !strings.Contains(p, `"`+field+`"`) {
			t.Errorf("example missing field %q", field)
		}
	}
	if !strings.Contains(p, "no markdown") {
		t.Errorf("prompt should forbid markdown")
	}
}

func TestSystemPromptForbidsFences(t *testing.T) {
	if !strings.Contains(systemPrompt, "code fences") {
		t.Fatal("system prompt should forbid code fences")
	}
}
