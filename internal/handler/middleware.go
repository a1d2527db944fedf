package handler

import (
	"context"
	"net/http"

	"github.com/abhisek/learnhub/internal/apperr"
	"github.com/abhisek/learnhub/internal/auth"
	"github.com/abhisek/learnhub/internal/i18n"
	"github.com/abhisek/learnhub/internal/logging"
)

// requireAuth rejects requests without a valid bearer token.
func requireAuth(iss *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := auth.BearerToken(r.Header.Get("Authorization"))
			if tok == "" {
				writeMessage(w, r, http.StatusUnauthorized, apperr.Unauthorized, i18n.MsgUnauthorized)
				return
			}
			claims, err := iss.Validate(tok)
			if err != nil {
				logging.WithContext(r.Context()).WithError(err).Info("rejected bearer token")
				writeMessage(w, r, http.StatusUnauthorized, apperr.Unauthorized, i18n.MsgUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(withCaller(r, claims.Identity())))
		})
	}
}

// optionalAuth attaches an identity when a token is present. A present
// but invalid token is still rejected.
func optionalAuth(iss *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := auth.BearerToken(r.Header.Get("Authorization"))
			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := iss.Validate(tok)
			if err != nil {
				logging.WithContext(r.Context()).WithError(err).Info("rejected bearer token")
				writeMessage(w, r, http.StatusUnauthorized, apperr.Unauthorized, i18n.MsgUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(withCaller(r, claims.Identity())))
		})
	}
}

// withCaller stores identity and adds it to the request log entry.
func withCaller(r *http.Request, identity string) context.Context {
	ctx := auth.WithIdentity(r.Context(), identity)
	return logging.IntoContext(ctx, logging.WithContext(ctx).WithField("user", identity))
}
