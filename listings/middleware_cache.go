package listings

import (
	"context"
	"fmt"
	"sync"

	"github.com/marketd/marketd"
	icontext "github.com/marketd/marketd/context"
	"github.com/marketd/marketd/kit/platform"
)

func NewCachingService(underlying marketd.ListingService) *cachingService {
	return &cachingService{
		underlying: underlying,
		pages:      map[string]*marketd.ListingPage{},
	}
}

// cachingService memoizes list results per principal and query. Every
// successful write drops the whole collection cache, so a read issued after
// a write always observes that write. It sits below the authorizer: only
// results the principal was allowed to see are ever cached, under a key
// scoped to that principal.
type cachingService struct {
	underlying marketd.ListingService

	mu    sync.Mutex
	pages map[string]*marketd.ListingPage
}

var _ marketd.ListingService = (*cachingService)(nil)

func (c *cachingService) FindListingByID(ctx context.Context, id platform.ID) (*marketd.Listing, error) {
	return c.underlying.FindListingByID(ctx, id)
}

func (c *cachingService) FindListings(ctx context.Context, filter marketd.ListingFilter, opts marketd.FindOptions) (*marketd.ListingPage, error) {
	principal, err := icontext.GetPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	key := pageKey(principal, filter, opts)

	c.mu.Lock()
	page, ok := c.pages[key]
	c.mu.Unlock()
	if ok {
		return page, nil
	}

	page, err = c.underlying.FindListings(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.pages[key] = page
	c.mu.Unlock()
	return page, nil
}

func (c *cachingService) CreateListing(ctx context.Context, create marketd.ListingCreate) (*marketd.Listing, error) {
	l, err := c.underlying.CreateListing(ctx, create)
	if err != nil {
		return nil, err
	}
	c.invalidate()
	return l, nil
}

func (c *cachingService) UpdateListing(ctx context.Context, id platform.ID, upd marketd.ListingUpdate) (*marketd.Listing, error) {
	l, err := c.underlying.UpdateListing(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	c.invalidate()
	return l, nil
}

func (c *cachingService) DeleteListing(ctx context.Context, id platform.ID) error {
	if err := c.underlying.DeleteListing(ctx, id); err != nil {
		return err
	}
	c.invalidate()
	return nil
}

func (c *cachingService) invalidate() {
	c.mu.Lock()
	c.pages = map[string]*marketd.ListingPage{}
	c.mu.Unlock()
}

func pageKey(p marketd.Principal, filter marketd.ListingFilter, opts marketd.FindOptions) string {
	return fmt.Sprintf("%s|%s|%d|%d|%s|%t",
		p.UserID, filter.Search, opts.Page, opts.Limit, opts.SortBy, opts.Descending)
}
