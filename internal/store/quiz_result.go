package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/learnhub/internal/apperr"
)

var quizResultFields = []string{"id", "user_identity", "topic", "score", "total", "responses", "created_at"}

// quizResultRepo implements QuizResultRepo with the ent SQL builder.
type quizResultRepo struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

func (r *quizResultRepo) SaveQuizResult(ctx context.Context, rec QuizResultRecord) (string, error) {
	const op = "store.SaveQuizResult"

	if strings.TrimSpace(rec.UserIdentity) == "" {
		return "", apperr.Errorf(apperr.Unauthorized, op, "missing user identity")
	}
	if rec.Total <= 0 || len(rec.Responses) != rec.Total {
		return "", apperr.Errorf(apperr.InvalidShape, op, "got %d responses for total %d", len(rec.Responses), rec.Total)
	}

	responses, err := json.Marshal(rec.Responses)
	if err != nil {
		return "", apperr.E(apperr.StorageFailure, op, fmt.Errorf("marshal responses: %w", err))
	}

	id := uuid.NewString()
	query, args := entsql.Dialect(r.dialect).
		Insert(quizResultsTable.Name).
		Columns(quizResultFields...).
		Values(id, rec.UserIdentity, rec.Topic, rec.Score, rec.Total, string(responses), r.now().UTC()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return "", apperr.E(apperr.StorageFailure, op, fmt.Errorf("insert quiz result: %w", err))
	}
	return id, nil
}

func (r *quizResultRepo) ListQuizResults(ctx context.Context, userIdentity string, opts QueryOpts) ([]QuizResultRecord, error) {
	const op = "store.ListQuizResults"

	preds := []*entsql.Predicate{entsql.EQ("user_identity", userIdentity)}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("created_at", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("created_at", opts.To.UTC()))
	}

	sel := entsql.Dialect(r.dialect).
		Select(quizResultFields...).
		From(entsql.Table(quizResultsTable.Name)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.E(apperr.StorageFailure, op, fmt.Errorf("query quiz results: %w", err))
	}
	defer rows.Close()

	var out []QuizResultRecord
	for rows.Next() {
		rec, err := scanQuizResult(rows)
		if err != nil {
			return nil, apperr.E(apperr.StorageFailure, op, err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.E(apperr.StorageFailure, op, fmt.Errorf("iterate quiz results: %w", err))
	}
	return out, nil
}

func (r *quizResultRepo) GetQuizResult(ctx context.Context, id string) (*QuizResultRecord, error) {
	const op = "store.GetQuizResult"

	query, args := entsql.Dialect(r.dialect).
		Select(quizResultFields...).
		From(entsql.Table(quizResultsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	rec, err := scanQuizResult(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.E(apperr.StorageFailure, op, err)
	}
	return rec, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuizResult(row rowScanner) (*QuizResultRecord, error) {
	var (
		rec       QuizResultRecord
		responses []byte
	)
	err := row.Scan(&rec.ID, &rec.UserIdentity, &rec.Topic, &rec.Score, &rec.Total, &responses, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan quiz result: %w", err)
	}
	if err := json.Unmarshal(responses, &rec.Responses); err != nil {
		return nil, fmt.Errorf("decode responses of %s: %w", rec.ID, err)
	}
	return &rec, nil
}
