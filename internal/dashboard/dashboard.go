// Package dashboard assembles a learner's progress, recent activity and
// quiz statistics.
package dashboard

import (
	"context"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/learnhub/internal/apperr"
	"github.com/abhisek/learnhub/internal/store"
)

// RecentLimit is how many activity entries a dashboard shows.
const RecentLimit = 5

// Activity is one recent-activity row.
type Activity struct {
	Type  string    `json:"type"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

// Stats summarizes a learner's quiz history.
type Stats struct {
	QuizzesTaken        int `json:"quizzesTaken"`
	TotalCorrect        int `json:"totalCorrect"`
	TotalQuestions      int `json:"totalQuestions"`
	AveragePercent      int `json:"averagePercent"`
	BestPercent         int `json:"bestPercent"`
	CurrentStreak       int `json:"currentStreak"`
	NextStreakMilestone int `json:"nextStreakMilestone"`
}

// Dashboard is the payload of GET /api/dashboard.
type Dashboard struct {
	Progress       map[string]int `json:"progress"`
	RecentActivity []Activity     `json:"recentActivity"`
	Stats          Stats          `json:"stats"`
}

// Service builds dashboards from the store.
type Service struct {
	results  store.QuizResultRepo
	progress store.ProgressRepo
	activity store.ActivityRepo
	now      func() time.Time
}

// NewService creates a dashboard Service.
func NewService(results store.QuizResultRepo, progress store.ProgressRepo, activity store.ActivityRepo) *Service {
	return &Service{results: results, progress: progress, activity: activity, now: time.Now}
}

// Build reads the three dashboard sources concurrently.
func (s *Service) Build(ctx context.Context, identity string) (*Dashboard, error) {
	if strings.TrimSpace(identity) == "" {
		return nil, apperr.Errorf(apperr.Unauthorized, "dashboard.Build", "missing user identity")
	}

	var (
		results  []store.QuizResultRecord
		progress []store.CourseProgressRecord
		recent   []store.ActivityRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		results, err = s.results.ListQuizResults(gctx, identity, store.QueryOpts{})
		return err
	})
	g.Go(func() (err error) {
		progress, err = s.progress.ListProgress(gctx, identity)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.activity.RecentActivity(gctx, identity, RecentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &Dashboard{
		Progress:       make(map[string]int, len(progress)),
		RecentActivity: make([]Activity, 0, len(recent)),
		Stats:          Summarize(results, s.now()),
	}
	for _, p := range progress {
		d.Progress[p.CourseID] = p.CompletedPercentage
	}
	for _, a := range recent {
		d.RecentActivity = append(d.RecentActivity, Activity{
			Type:  string(a.Type),
			Title: a.Title,
			Date:  a.CreatedAt,
		})
	}
	return d, nil
}

// Summarize computes quiz statistics as of now.
func Summarize(results []store.QuizResultRecord, now time.Time) Stats {
	st := Stats{QuizzesTaken: len(results)}

	taken := make([]time.Time, 0, len(results))
	for _, r := range results {
		st.TotalCorrect += r.Score
		st.TotalQuestions += r.Total
		if r.Total > 0 {
			st.BestPercent = max(st.BestPercent, percent(r.Score, r.Total))
		}
		taken = append(taken, r.CreatedAt)
	}
	if st.TotalQuestions > 0 {
		st.AveragePercent = percent(st.TotalCorrect, st.TotalQuestions)
	}

	st.CurrentStreak = CurrentStreak(taken, now)
	st.NextStreakMilestone = NextStreakMilestone(st.CurrentStreak)
	return st
}

func percent(n, d int) int {
	return int(math.Round(float64(n) * 100 / float64(d)))
}
