package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/learnhub/internal/apperr"
)

var activityFields = []string{"id", "user_identity", "type", "title", "course_id", "metadata", "created_at"}

type activityRepo struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

func (r *activityRepo) AppendActivity(ctx context.Context, rec ActivityRecord) error {
	const op = "store.AppendActivity"

	if strings.TrimSpace(rec.UserIdentity) == "" {
		return apperr.Errorf(apperr.Unauthorized, op, "missing user identity")
	}
	if !rec.Type.Valid() {
		return apperr.Errorf(apperr.InvalidInput, op, "unknown activity type %q", rec.Type)
	}

	var courseID, metadata any
	if rec.CourseID != "" {
		courseID = rec.CourseID
	}
	if len(rec.Metadata) > 0 {
		b, err := json.Marshal(rec.Metadata)
		if err != nil {
			return apperr.E(apperr.StorageFailure, op, fmt.Errorf("marshal metadata: %w", err))
		}
		metadata = string(b)
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(activityLogTable.Name).
		Columns(activityFields[1:]...).
		Values(rec.UserIdentity, string(rec.Type), rec.Title, courseID, metadata, r.now().UTC()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return apperr.E(apperr.StorageFailure, op, fmt.Errorf("insert activity: %w", err))
	}
	return nil
}

func (r *activityRepo) RecentActivity(ctx context.Context, userIdentity string, limit int) ([]ActivityRecord, error) {
	const op = "store.RecentActivity"

	sel := entsql.Dialect(r.dialect).
		Select(activityFields...).
		From(entsql.Table(activityLogTable.Name)).
		Where(entsql.EQ("user_identity", userIdentity)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.E(apperr.StorageFailure, op, fmt.Errorf("query activity: %w", err))
	}
	defer rows.Close()

	var out []ActivityRecord
	for rows.Next() {
		var (
			rec      ActivityRecord
			typ      string
			courseID sql.NullString
			metadata []byte
		)
		if err := rows.Scan(&rec.ID, &rec.UserIdentity, &typ, &rec.Title, &courseID, &metadata, &rec.CreatedAt); err != nil {
			return nil, apperr.E(apperr.StorageFailure, op, fmt.Errorf("scan activity: %w", err))
		}
		rec.Type = ActivityType(typ)
		rec.CourseID = courseID.String
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
				return nil, apperr.E(apperr.StorageFailure, op, fmt.Errorf("decode metadata: %w", err))
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.E(apperr.StorageFailure, op, fmt.Errorf("iterate activity: %w", err))
	}
	return out, nil
}
