package quiz

import (
	"context"
	"strings"

	"github.com/abhisek/learnhub/internal/apperr"
	"github.com/abhisek/learnhub/internal/logging"
	"github.com/abhisek/learnhub/internal/store"
)

// Service persists submitted quiz results.
type Service struct {
	results  store.QuizResultRepo
	activity store.ActivityRepo
}

// NewService creates a quiz Service. activity may be nil.
func NewService(results store.QuizResultRepo, activity store.ActivityRepo) *Service {
	return &Service{results: results, activity: activity}
}

// Submit verifies r, stores it and returns the stored ID. Score and
// correctness flags that disagree with the responses are rejected.
func (s *Service) Submit(ctx context.Context, r Result) (string, error) {
	r.Topic = strings.TrimSpace(r.Topic)
	if err := Verify(r); err != nil {
		return "", err
	}

	id, err := s.results.SaveQuizResult(ctx, toRecord(r))
	if err != nil {
		return "", err
	}

	logging.WithContext(ctx).WithField("quiz_id", id).WithField("score", r.Score).Info("quiz result stored")

	if s.activity != nil {
		err := s.activity.AppendActivity(ctx, store.ActivityRecord{
			UserIdentity: r.UserIdentity,
			Type:         store.ActivityQuiz,
			Title:        r.Topic,
			Metadata: map[string]any{
				"quizId": id,
				"score":  r.Score,
				"total":  r.Total,
			},
		})
		if err != nil {
			logging.WithContext(ctx).WithError(err).Warn("failed to record quiz activity")
		}
	}
	return id, nil
}

// History returns identity's results, newest first. limit <= 0 means all.
func (s *Service) History(ctx context.Context, identity string, limit int) ([]Result, error) {
	recs, err := s.results.ListQuizResults(ctx, identity, store.QueryOpts{Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]Result, len(recs))
	for i, rec := range recs {
		out[i] = fromRecord(rec)
	}
	return out, nil
}

// Get returns the stored result id when it belongs to identity. A result
// that does not exist or is owned by someone else is reported as nil.
func (s *Service) Get(ctx context.Context, identity, id string) (*Result, error) {
	if strings.TrimSpace(identity) == "" {
		return nil, apperr.Errorf(apperr.Unauthorized, "quiz.Get", "missing user identity")
	}
	rec, err := s.results.GetQuizResult(ctx, id)
	if err != nil || rec == nil || rec.UserIdentity != identity {
		return nil, err
	}
	r := fromRecord(*rec)
	return &r, nil
}

func toRecord(r Result) store.QuizResultRecord {
	rs := make([]store.QuizResponseRecord, len(r.Responses))
	for i, resp := range r.Responses {
		rs[i] = store.QuizResponseRecord(resp)
	}
	return store.QuizResultRecord{
		UserIdentity: r.UserIdentity,
		Topic:        r.Topic,
		Score:        r.Score,
		Total:        r.Total,
		Responses:    rs,
	}
}

func fromRecord(rec store.QuizResultRecord) Result {
	rs := make([]Response, len(rec.Responses))
	for i, resp := range rec.Responses {
		rs[i] = Response(resp)
	}
	return Result{
		ID:           rec.ID,
		UserIdentity: rec.UserIdentity,
		Topic:        rec.Topic,
		Score:        rec.Score,
		Total:        rec.Total,
		Responses:    rs,
		CreatedAt:    rec.CreatedAt,
	}
}
