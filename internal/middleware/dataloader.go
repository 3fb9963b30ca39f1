package middleware

import (
	"context"
	"net/http"

	"github.com/rpattn/standards/internal/repository"
	"github.com/rpattn/standards/internal/ruleloader"
)

type ctxKey string

const ruleLoaderKey ctxKey = "ruleLoader"

// DataLoaderMiddleware attaches a per-request rule loader to the context.
func DataLoaderMiddleware(repo repository.RuleRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loader := ruleloader.NewRuleLoader(repo)
			ctx := context.WithValue(r.Context(), ruleLoaderKey, loader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RuleLoaderFromContext retrieves the rule loader from context
func RuleLoaderFromContext(ctx context.Context) *ruleloader.RuleLoader {
	if l, ok := ctx.Value(ruleLoaderKey).(*ruleloader.RuleLoader); ok {
		return l
	}
	return nil
}
