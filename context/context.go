package context

import (
	"context"

	"github.com/marketd/marketd"
	"github.com/marketd/marketd/kit/platform/errors"
)

type contextKey string

const principalCtxKey = contextKey("marketd/principal/v1")

// SetPrincipal sets a resolved principal on context.
func SetPrincipal(ctx context.Context, p marketd.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// GetPrincipal retrieves the principal from context. It is an internal error
// for a request to reach a service without the principal middleware having
// run; unauthenticated requests carry marketd.Anonymous rather than nothing.
func GetPrincipal(ctx context.Context) (marketd.Principal, error) {
	p, ok := ctx.Value(principalCtxKey).(marketd.Principal)
	if !ok {
		return marketd.Anonymous, &errors.Error{
			Code: errors.EInternal,
			Msg:  "principal not found on context",
		}
	}

	return p, nil
}
