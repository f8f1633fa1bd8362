package http

import (
	"net/http"

	"github.com/marketd/marketd"
	icontext "github.com/marketd/marketd/context"
	"github.com/marketd/marketd/kit/platform/errors"
)

// Middleware constructor.
type Middleware func(http.Handler) http.Handler

// PrincipalResolver turns request credentials into a resolved principal.
// Requests without credentials resolve to marketd.Anonymous; malformed
// credentials are an error.
type PrincipalResolver interface {
	ResolvePrincipal(r *http.Request) (marketd.Principal, error)
}

// WithPrincipal resolves the request principal and sets it on the request
// context before the wrapped handler runs. Downstream services therefore
// always observe a principal, anonymous or otherwise.
func WithPrincipal(resolver PrincipalResolver, h errors.HTTPErrorHandler) Middleware {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			p, err := resolver.ResolvePrincipal(r)
			if err != nil {
				h.HandleHTTPError(r.Context(), err, w)
				return
			}

			next.ServeHTTP(w, r.WithContext(icontext.SetPrincipal(r.Context(), p)))
		}
		return http.HandlerFunc(fn)
	}
}
