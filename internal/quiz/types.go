package quiz

import "time"

// OptionCount is the number of options every generated question carries.
const OptionCount = 4

// Question is a single multiple-choice question produced by the generation
// pipeline. Answer always equals one of Options.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Response records how the learner answered one question.
type Response struct {
	Question  string `json:"question"`
	Selected  string `json:"selected"`
	Correct   string `json:"correct"`
	IsCorrect bool   `json:"isCorrect"`
}

// Result is a submitted quiz outcome. Score and Total are derived from
// Responses and verified on submission.
type Result struct {
	ID           string     `json:"id,omitempty"`
	UserIdentity string     `json:"userIdentity"`
	Topic        string     `json:"topic"`
	Score        int        `json:"score"`
	Total        int        `json:"total"`
	Responses    []Response `json:"responses"`
	CreatedAt    time.Time  `json:"createdAt,omitzero"`
}
