package store

import (
	"context"
	"time"
)

// QueryOpts configures list queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // created_at >= From
	To    time.Time // created_at <= To
}

// QuizResponseRecord is one answered question inside a stored quiz result.
type QuizResponseRecord struct {
	Question  string `json:"question"`
	Selected  string `json:"selected"`
	Correct   string `json:"correct"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuizResultRecord is a persisted quiz outcome. Responses are stored as a
// single JSON document alongside the scalar fields.
type QuizResultRecord struct {
	ID           string
	UserIdentity string
	Topic        string
	Score        int
	Total        int
	Responses    []QuizResponseRecord
	CreatedAt    time.Time
}

// QuizResultRepo is the append-only store of submitted quiz results.
type QuizResultRepo interface {
	// SaveQuizResult inserts rec and returns its generated ID. The record's
	// ID and CreatedAt are assigned by the store.
	SaveQuizResult(ctx context.Context, rec QuizResultRecord) (string, error)

	// ListQuizResults returns a user's results, newest first.
	ListQuizResults(ctx context.Context, userIdentity string, opts QueryOpts) ([]QuizResultRecord, error)

	// GetQuizResult returns a single result, or nil if it does not exist.
	GetQuizResult(ctx context.Context, id string) (*QuizResultRecord, error)
}

// CourseProgressRecord tracks how far a user is through one course.
type CourseProgressRecord struct {
	UserIdentity        string
	CourseID            string
	CompletedPercentage int
	CompletedModules    []string
	LastAccessed        time.Time
}

// ProgressRepo stores one progress row per (user, course).
type ProgressRepo interface {
	// UpsertProgress creates or replaces the row for rec's user and course.
	UpsertProgress(ctx context.Context, rec CourseProgressRecord) error

	// ListProgress returns every course row for a user, most recently
	// accessed first.
	ListProgress(ctx context.Context, userIdentity string) ([]CourseProgressRecord, error)
}

// ActivityType names a kind of learner activity.
type ActivityType string

const (
	ActivityVideo  ActivityType = "video"
	ActivityQuiz   ActivityType = "quiz"
	ActivityLesson ActivityType = "lesson"
	ActivityChat   ActivityType = "chat"
	ActivityLogin  ActivityType = "login"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityVideo, ActivityQuiz, ActivityLesson, ActivityChat, ActivityLogin:
		return true
	}
	return false
}

// ActivityRecord is one entry in a user's activity log.
type ActivityRecord struct {
	ID           int64
	UserIdentity string
	Type         ActivityType
	Title        string
	CourseID     string
	Metadata     map[string]any
	CreatedAt    time.Time
}

// ActivityRepo is the append-only activity log.
type ActivityRepo interface {
	AppendActivity(ctx context.Context, rec ActivityRecord) error

	// RecentActivity returns up to limit entries for a user, newest first.
	RecentActivity(ctx context.Context, userIdentity string, limit int) ([]ActivityRecord, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
