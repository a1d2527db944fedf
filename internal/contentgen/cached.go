package contentgen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/abhisek/learnhub/internal/cache"
	"github.com/abhisek/learnhub/internal/course"
	"github.com/abhisek/learnhub/internal/logging"
	"github.com/abhisek/learnhub/internal/quiz"
)

// CachedGenerator serves course outlines from a cache keyed by the
// normalized title. Quizzes always go to the inner generator. Cache
// failures are logged and bypassed.
type CachedGenerator struct {
	inner Generator
	cache cache.Cache
	ttl   time.Duration
}

var _ Generator = (*CachedGenerator)(nil)

// WithCache wraps g with a course-content cache. A non-positive ttl or a
// nil cache returns g unchanged.
func WithCache(g Generator, c cache.Cache, ttl time.Duration) Generator {
	if ttl <= 0 || c == nil {
		return g
	}
	return &CachedGenerator{inner: g, cache: c, ttl: ttl}
}

func (c *CachedGenerator) GenerateQuiz(ctx context.Context, topic string, count int) ([]quiz.Question, error) {
	return c.inner.GenerateQuiz(ctx, topic, count)
}

func (c *CachedGenerator) GenerateCourseContent(ctx context.Context, title string) (*course.Content, error) {
	key := courseKey(title)
	log := logging.WithContext(ctx).WithField("cache_key", key)

	if key != "" {
		b, err := c.cache.Get(ctx, key)
		switch {
		case err == nil:
			var content course.Content
			if jerr := json.Unmarshal(b, &content); jerr == nil {
				log.Debug("course content cache hit")
				return &content, nil
			}
			log.Warn("discarding undecodable cached course content")
		case !errors.Is(err, cache.ErrMiss):
			log.WithError(err).Warn("course content cache read failed")
		}
	}

	content, err := c.inner.GenerateCourseContent(ctx, title)
	if err != nil || key == "" {
		return content, err
	}

	b, err := json.Marshal(content)
	if err == nil {
		err = c.cache.Set(ctx, key, b, c.ttl)
	}
	if err != nil {
		log.WithError(err).Warn("course content cache write failed")
	}
	return content, nil
}

// courseKey lower-cases title and collapses runs of whitespace.
func courseKey(title string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(title)), " ")
	if norm == "" {
		return ""
	}
	return "course:" + norm
}
