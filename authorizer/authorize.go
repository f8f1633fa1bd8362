// Package authorizer enforces the ownership policy for every operation that
// reaches a service: public listings are readable by anyone, everything else
// belongs to its owner alone.
package authorizer

import (
	"context"

	"github.com/marketd/marketd"
	icontext "github.com/marketd/marketd/context"
)

// AuthorizeCreate checks that the principal on ctx may create listings and
// returns it so the caller can attribute ownership. Only authenticated
// principals may create.
func AuthorizeCreate(ctx context.Context) (marketd.Principal, error) {
	p, err := icontext.GetPrincipal(ctx)
	if err != nil {
		return marketd.Anonymous, err
	}
	if !p.Authenticated() {
		return p, marketd.ErrUnauthenticated
	}
	return p, nil
}

// AuthorizeRead decides whether the principal on ctx may see l. A denied
// private read reports not-found rather than forbidden so the response does
// not confirm the listing exists.
func AuthorizeRead(ctx context.Context, l *marketd.Listing) error {
	if l.Public {
		return nil
	}

	p, err := icontext.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	if p.Authenticated() && p.UserID == l.OwnerID {
		return nil
	}
	return marketd.ErrListingNotFound
}

// AuthorizeWrite decides whether the principal on ctx may modify or delete l:
// only its authenticated owner may.
func AuthorizeWrite(ctx context.Context, l *marketd.Listing) error {
	p, err := icontext.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	if !p.Authenticated() {
		return marketd.ErrUnauthenticated
	}
	if p.UserID != l.OwnerID {
		return marketd.ErrAccessDenied
	}
	return nil
}

// requireAuthenticated rejects anonymous principals before any store I/O
// happens on their behalf.
func requireAuthenticated(ctx context.Context) error {
	p, err := icontext.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	if !p.Authenticated() {
		return marketd.ErrUnauthenticated
	}
	return nil
}
