package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/learnhub/internal/apperr"
)

type progressRepo struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

func (r *progressRepo) UpsertProgress(ctx context.Context, rec CourseProgressRecord) error {
	const op = "store.UpsertProgress"

	modules := rec.CompletedModules
	if modules == nil {
		modules = []string{}
	}
	modulesJSON, err := json.Marshal(modules)
	if err != nil {
		return apperr.E(apperr.StorageFailure, op, fmt.Errorf("marshal modules: %w", err))
	}

	accessed := rec.LastAccessed
	if accessed.IsZero() {
		accessed = r.now()
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(courseProgressTable.Name).
		Columns("user_identity", "course_id", "completed_percentage", "completed_modules", "last_accessed").
		Values(rec.UserIdentity, rec.CourseID, rec.CompletedPercentage, string(modulesJSON), accessed.UTC()).
		OnConflict(
			entsql.ConflictColumns("user_identity", "course_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return apperr.E(apperr.StorageFailure, op, fmt.Errorf("upsert course progress: %w", err))
	}
	return nil
}

func (r *progressRepo) ListProgress(ctx context.Context, userIdentity string) ([]CourseProgressRecord, error) {
	const op = "store.ListProgress"

	query, args := entsql.Dialect(r.dialect).
		Select("user_identity", "course_id", "completed_percentage", "completed_modules", "last_accessed").
		From(entsql.Table(courseProgressTable.Name)).
		Where(entsql.EQ("user_identity", userIdentity)).
		OrderBy(entsql.Desc("last_accessed")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.E(apperr.StorageFailure, op, fmt.Errorf("query course progress: %w", err))
	}
	defer rows.Close()

	var out []CourseProgressRecord
	for rows.Next() {
		var (
			rec     CourseProgressRecord
			modules []byte
		)
		if err := rows.Scan(&rec.UserIdentity, &rec.CourseID, &rec.CompletedPercentage, &modules, &rec.LastAccessed); err != nil {
			return nil, apperr.E(apperr.StorageFailure, op, fmt.Errorf("scan course progress: %w", err))
		}
		if err := json.Unmarshal(modules, &rec.CompletedModules); err != nil {
			return nil, apperr.E(apperr.StorageFailure, op, fmt.Errorf("decode modules: %w", err))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.E(apperr.StorageFailure, op, fmt.Errorf("iterate course progress: %w", err))
	}
	return out, nil
}
