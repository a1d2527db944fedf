package course

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/learnhub/internal/apperr"
	"github.com/abhisek/learnhub/internal/logging"
	"github.com/abhisek/learnhub/internal/store"
)

// Service records learner progress through courses.
type Service struct {
	progress store.ProgressRepo
	activity store.ActivityRepo
}

// NewService creates a course Service. activity may be nil.
func NewService(progress store.ProgressRepo, activity store.ActivityRepo) *Service {
	return &Service{progress: progress, activity: activity}
}

// UpdateProgress replaces identity's progress on courseID and logs a
// lesson activity entry. pct must be within 0..100.
func (s *Service) UpdateProgress(ctx context.Context, identity, courseID string, pct int, modules []string) (*Progress, error) {
	const op = "course.UpdateProgress"

	if strings.TrimSpace(identity) == "" {
		return nil, apperr.Errorf(apperr.Unauthorized, op, "missing user identity")
	}
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil, apperr.Errorf(apperr.InvalidInput, op, "course id is empty")
	}
	if pct < 0 || pct > 100 {
		return nil, apperr.Errorf(apperr.InvalidInput, op, "completed percentage %d out of range 0..100", pct)
	}
	if modules == nil {
		modules = []string{}
	}

	rec := store.CourseProgressRecord{
		UserIdentity:        identity,
		CourseID:            courseID,
		CompletedPercentage: pct,
		CompletedModules:    modules,
	}
	if err := s.progress.UpsertProgress(ctx, rec); err != nil {
		return nil, err
	}

	s.logActivity(ctx, identity, courseID, pct)

	rows, err := s.progress.ListProgress(ctx, identity)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r.CourseID == courseID {
			p := fromRecord(r)
			return &p, nil
		}
	}
	return nil, apperr.Errorf(apperr.StorageFailure, op, "progress for %q not found after upsert", courseID)
}

// List returns all of identity's course progress, most recent first.
func (s *Service) List(ctx context.Context, identity string) ([]Progress, error) {
	if strings.TrimSpace(identity) == "" {
		return nil, apperr.Errorf(apperr.Unauthorized, "course.List", "missing user identity")
	}
	rows, err := s.progress.ListProgress(ctx, identity)
	if err != nil {
		return nil, err
	}
	out := make([]Progress, len(rows))
	for i, r := range rows {
		out[i] = fromRecord(r)
	}
	return out, nil
}

// logActivity is best effort; a failed append never fails the update.
func (s *Service) logActivity(ctx context.Context, identity, courseID string, pct int) {
	if s.activity == nil {
		return
	}
	err := s.activity.AppendActivity(ctx, store.ActivityRecord{
		UserIdentity: identity,
		Type:         store.ActivityLesson,
		Title:        fmt.Sprintf("Progress on %s: %d%%", courseID, pct),
		CourseID:     courseID,
		Metadata:     map[string]any{"completedPercentage": pct},
	})
	if err != nil {
		logging.WithContext(ctx).WithError(err).Warn("failed to record lesson activity")
	}
}

func fromRecord(r store.CourseProgressRecord) Progress {
	modules := r.CompletedModules
	if modules == nil {
		modules = []string{}
	}
	return Progress{
		CourseID:            r.CourseID,
		CompletedPercentage: r.CompletedPercentage,
		CompletedModules:    modules,
		LastAccessed:        r.LastAccessed,
	}
}
