package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// quizResultsColumns holds the columns for the "quiz_results" table.
	quizResultsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "user_identity", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString},
		{Name: "score", Type: field.TypeInt},
		{Name: "total", Type: field.TypeInt},
		{Name: "responses", Type: field.TypeJSON},
		{Name: "created_at", Type: field.TypeTime},
	}
	quizResultsTable = &schema.Table{
		Name:       "quiz_results",
		Columns:    quizResultsColumns,
		PrimaryKey: []*schema.Column{quizResultsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "quizresult_user_identity_created_at",
				Unique:  false,
				Columns: []*schema.Column{quizResultsColumns[1], quizResultsColumns[6]},
			},
		},
	}

	// courseProgressColumns holds the columns for the "course_progress" table.
	courseProgressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_identity", Type: field.TypeString},
		{Name: "course_id", Type: field.TypeString},
		{Name: "completed_percentage", Type: field.TypeInt, Default: 0},
		{Name: "completed_modules", Type: field.TypeJSON},
		{Name: "last_accessed", Type: field.TypeTime},
	}
	courseProgressTable = &schema.Table{
		Name:       "course_progress",
		Columns:    courseProgressColumns,
		PrimaryKey: []*schema.Column{courseProgressColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "courseprogress_user_identity_course_id",
				Unique:  true,
				Columns: []*schema.Column{courseProgressColumns[1], courseProgressColumns[2]},
			},
		},
	}

	// activityLogColumns holds the columns for the "activity_log" table.
	activityLogColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_identity", Type: field.TypeString},
		{Name: "type", Type: field.TypeEnum, Enums: []string{"video", "quiz", "lesson", "chat", "login"}},
		{Name: "title", Type: field.TypeString},
		{Name: "course_id", Type: field.TypeString, Nullable: true},
		{Name: "metadata", Type: field.TypeJSON, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	activityLogTable = &schema.Table{
		Name:       "activity_log",
		Columns:    activityLogColumns,
		PrimaryKey: []*schema.Column{activityLogColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "activitylog_user_identity_created_at",
				Unique:  false,
				Columns: []*schema.Column{activityLogColumns[1], activityLogColumns[6]},
			},
		},
	}

	// llmRequestsColumns holds the columns for the "llm_requests" table.
	llmRequestsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: 2147483647, Nullable: true},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Nullable: true},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	llmRequestsTable = &schema.Table{
		Name:       "llm_requests",
		Columns:    llmRequestsColumns,
		PrimaryKey: []*schema.Column{llmRequestsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmrequest_purpose",
				Unique:  false,
				Columns: []*schema.Column{llmRequestsColumns[3]},
			},
		},
	}

	// tables holds every table managed by the store.
	tables = []*schema.Table{
		quizResultsTable,
		courseProgressTable,
		activityLogTable,
		llmRequestsTable,
	}
)

// migrate creates missing tables, columns and indexes. It never drops
// anything.
func (s *Store) migrate(ctx context.Context) error {
	drv := entsql.OpenDB(s.dialect, s.db)
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
