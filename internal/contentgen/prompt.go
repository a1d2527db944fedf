package contentgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an instructional designer writing study material for an online learning platform.

Rules:
- Reply with a single raw JSON value and nothing else.
- Do not wrap the JSON in markdown code fences.
- Do not add explanations, greetings or notes before or after the JSON.
- Use plain strings. Do not nest extra objects beyond the requested shape.`

const quizExample = `[
  {
    "question": "What is React?",
    "options": ["Library", "Framework", "Tool", "Database"],
    "answer": "Library"
  }
]`

const courseExample = `{
  "overview": "Brief overview of the course...",
  "objectives": ["Learning objective 1", "Learning objective 2", "Learning objective 3"],
  "skills": ["Skill 1", "Skill 2", "Skill 3"],
  "curriculum": [
    {
      "moduleTitle": "Module 1 Title",
      "lessons": ["Lesson 1.1 Title", "Lesson 1.2 Title", "Lesson 1.3 Title"]
    },
    {
      "moduleTitle": "Module 2 Title",
      "lessons": ["Lesson 2.1 Title", "Lesson 2.2 Title"]
    }
  ],
  "duration": "Estimated total time to complete (e.g., '4 weeks', '10 hours')",
  "targetAudience": ["Audience type 1", "Audience type 2"],
  "assessment": ["Quiz after each module", "Capstone project", "Final exam"]
}`

// QuizPrompt builds the user message asking for count multiple-choice
// questions about topic.
func QuizPrompt(topic string, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate %d multiple-choice quiz questions about %q.\n", count, topic)
	b.WriteString("Each question must have exactly 4 distinct options and one correct answer.\n")
	b.WriteString("The answer must be copied exactly from one of the options.\n")
	b.WriteString("Return only the JSON array with no explanation or formatting, like this:\n")
	b.WriteString(quizExample)
	b.WriteString("\n")

	return b.String()
}

// CoursePrompt builds the user message asking for a course outline.
func CoursePrompt(title string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a detailed course content structure for a course titled %q.\n\n", title)
	b.WriteString("Respond ONLY with a raw JSON object in this format (no explanation, no markdown):\n\n")
	b.WriteString(courseExample)
	b.WriteString("\n")

	return b.String()
}
