package contentgen

const (
	// DefaultQuestionCount is used when a quiz request names no count.
	DefaultQuestionCount = 5

	// MaxQuestionCount bounds a single quiz request.
	MaxQuestionCount = 10
)

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// QuizMaxTokens is the token budget for a quiz response.
	QuizMaxTokens int

	// CourseMaxTokens is the token budget for a course outline.
	CourseMaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		QuizMaxTokens:   2048,
		CourseMaxTokens: 4096,
		Temperature:     0.7,
	}
}
