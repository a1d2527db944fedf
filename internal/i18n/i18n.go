// Package i18n localizes user-facing messages from embedded locale files.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/abhisek/learnhub/internal/logging"
)

// Message IDs shared by the handler and services.
const (
	MsgInvalidInput     = "error.invalid_input"
	MsgUnauthorized     = "error.unauthorized"
	MsgInvalidShape     = "error.invalid_shape"
	MsgGenerationFailed = "error.generation_failed"
	MsgPayloadNotFound  = "error.payload_not_found"
	MsgMalformedPayload = "error.malformed_payload"
	MsgStorageFailure   = "error.storage_failure"
	MsgInternal         = "error.internal"
	MsgBadBody          = "error.bad_body"
	MsgTopicMissing     = "error.topic_missing"
	MsgTitleMissing     = "error.title_missing"
	MsgPromptMissing    = "error.prompt_missing"
	MsgNotFound         = "error.not_found"
	MsgNoAIResponse     = "tutor.no_response"
)

//go:embed locales/*.json
var localeFS embed.FS

type ctxKey struct{}

var (
	mu          sync.RWMutex
	bundle      *i18n.Bundle
	defaultLang = "en"
	loadOnce    sync.Once
	loadErr     error
)

// Init loads the embedded locale files and sets the fallback language.
// Calling it more than once only changes the fallback.
func Init(lang string) error {
	if _, err := language.Parse(lang); err != nil {
		return fmt.Errorf("parse language %q: %w", lang, err)
	}
	if err := load(); err != nil {
		return err
	}
	mu.Lock()
	defaultLang = lang
	mu.Unlock()
	return nil
}

func load() error {
	loadOnce.Do(func() {
		b := i18n.NewBundle(language.English)
		b.RegisterUnmarshalFunc("json", json.Unmarshal)

		entries, err := localeFS.ReadDir("locales")
		if err != nil {
			loadErr = fmt.Errorf("read locales dir: %w", err)
			return
		}
		for _, e := range entries {
			data, err := localeFS.ReadFile("locales/" + e.Name())
			if err != nil {
				loadErr = fmt.Errorf("read locale file %s: %w", e.Name(), err)
				return
			}
			if _, err := b.ParseMessageFileBytes(data, e.Name()); err != nil {
				loadErr = fmt.Errorf("parse locale file %s: %w", e.Name(), err)
				return
			}
		}
		bundle = b
	})
	return loadErr
}

// NewLocalizer creates a localizer preferring langs in order, then the
// fallback language.
func NewLocalizer(langs ...string) *i18n.Localizer {
	_ = load()
	mu.RLock()
	langs = append(langs, defaultLang)
	mu.RUnlock()
	return i18n.NewLocalizer(bundle, langs...)
}

// WithLocalizer stores a localizer in the context.
func WithLocalizer(ctx context.Context, loc *i18n.Localizer) context.Context {
	return context.WithValue(ctx, ctxKey{}, loc)
}

func localizerFromCtx(ctx context.Context) *i18n.Localizer {
	if loc, ok := ctx.Value(ctxKey{}).(*i18n.Localizer); ok {
		return loc
	}
	return NewLocalizer()
}

// T translates a message by ID. Unknown IDs are returned unchanged.
func T(ctx context.Context, msgID string) string {
	s, err := localizerFromCtx(ctx).Localize(&i18n.LocalizeConfig{MessageID: msgID})
	if err != nil {
		logging.WithContext(ctx).WithError(err).WithField("id", msgID).Warn("missing translation")
		return msgID
	}
	return s
}
