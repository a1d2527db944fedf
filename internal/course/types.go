package course

import "time"

// Module is one section of a course curriculum.
type Module struct {
	ModuleTitle string   `json:"moduleTitle"`
	Lessons     []string `json:"lessons"`
}

// Content is a generated course outline. It is regenerated per request and
// never persisted. Optional parts are empty, never nil, once validated.
type Content struct {
	Overview       string   `json:"overview"`
	Objectives     []string `json:"objectives"`
	Skills         []string `json:"skills"`
	Curriculum     []Module `json:"curriculum"`
	Duration       string   `json:"duration"`
	TargetAudience []string `json:"targetAudience"`
	Assessment     []string `json:"assessment"`
}

// LessonCount returns the number of lessons across all modules.
func (c *Content) LessonCount() int {
	n := 0
	for _, m := range c.Curriculum {
		n += len(m.Lessons)
	}
	return n
}

// Progress is how far a learner is through one course.
type Progress struct {
	CourseID            string    `json:"courseId"`
	CompletedPercentage int       `json:"completedPercentage"`
	CompletedModules    []string  `json:"completedModules"`
	LastAccessed        time.Time `json:"lastAccessed"`
}
