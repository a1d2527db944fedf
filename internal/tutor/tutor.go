// Package tutor answers free-form learner questions through the model.
package tutor

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/learnhub/internal/apperr"
	"github.com/abhisek/learnhub/internal/i18n"
	"github.com/abhisek/learnhub/internal/llm"
	"github.com/abhisek/learnhub/internal/logging"
	"github.com/abhisek/learnhub/internal/store"
)

const systemPrompt = `You are a friendly and patient tutor on an online learning platform.
Explain concepts clearly and concisely, using short examples where they help.
If a question is ambiguous, state your assumption before answering.`

// Config controls tutor requests.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{MaxTokens: 1024, Temperature: 0.7}
}

// Service is the AI tutor.
type Service struct {
	provider llm.Provider
	activity store.ActivityRepo
	config   Config
}

// NewService creates a tutor Service. activity may be nil.
func NewService(provider llm.Provider, activity store.ActivityRepo, cfg Config) *Service {
	return &Service{provider: provider, activity: activity, config: cfg}
}

// Ask sends prompt to the model and returns its reply. identity may be
// empty for anonymous use. An empty reply becomes a localized fallback
// message rather than an error.
func (s *Service) Ask(ctx context.Context, identity, prompt string) (string, error) {
	const op = "tutor.Ask"

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", apperr.Errorf(apperr.InvalidInput, op, "prompt is missing")
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeTutor)
	resp, err := s.provider.Generate(ctx, llm.UserPrompt(systemPrompt, prompt, s.config.MaxTokens, s.config.Temperature))

	var answer string
	switch {
	case llm.IsEmptyResponse(err):
		answer = i18n.T(ctx, i18n.MsgNoAIResponse)
	case err != nil:
		return "", apperr.E(apperr.GenerationFailed, op, err)
	default:
		answer = strings.TrimSpace(resp.Text)
		if answer == "" {
			answer = i18n.T(ctx, i18n.MsgNoAIResponse)
		}
	}

	if identity != "" && s.activity != nil {
		err := s.activity.AppendActivity(ctx, store.ActivityRecord{
			UserIdentity: identity,
			Type:         store.ActivityChat,
			Title:        summarize(prompt, 80),
		})
		if err != nil {
			logging.WithContext(ctx).WithError(err).Warn("failed to record chat activity")
		}
	}
	return answer, nil
}

// summarize shortens s to at most n runes for activity titles.
func summarize(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
