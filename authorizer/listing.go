package authorizer

import (
	"context"

	"github.com/marketd/marketd"
	"github.com/marketd/marketd/kit/platform"
)

var _ marketd.ListingService = (*ListingService)(nil)

// ListingService wraps a marketd.ListingService and authorizes actions
// against it appropriately.
type ListingService struct {
	s marketd.ListingService
}

// NewListingService constructs an instance of an authorizing listing service.
func NewListingService(s marketd.ListingService) *ListingService {
	return &ListingService{
		s: s,
	}
}

// FindListingByID checks to see if the principal on ctx may read the listing.
func (s *ListingService) FindListingByID(ctx context.Context, id platform.ID) (*marketd.Listing, error) {
	l, err := s.s.FindListingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeRead(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// FindListings passes through: the storage layer scopes the result set to
// the principal on ctx, and the scope is derived from the context alone, so
// no filter parameter can widen it.
func (s *ListingService) FindListings(ctx context.Context, filter marketd.ListingFilter, opts marketd.FindOptions) (*marketd.ListingPage, error) {
	return s.s.FindListings(ctx, filter, opts)
}

// CreateListing requires an authenticated principal; ownership of the new
// listing is attributed downstream from that same principal.
func (s *ListingService) CreateListing(ctx context.Context, create marketd.ListingCreate) (*marketd.Listing, error) {
	if _, err := AuthorizeCreate(ctx); err != nil {
		return nil, err
	}
	return s.s.CreateListing(ctx, create)
}

// UpdateListing checks that the principal on ctx owns the listing. The
// anonymous check runs before the target lookup so unauthenticated requests
// never touch the store. Targets the principal could not read report
// not-found, the same answer a read would give.
func (s *ListingService) UpdateListing(ctx context.Context, id platform.ID, upd marketd.ListingUpdate) (*marketd.Listing, error) {
	if err := requireAuthenticated(ctx); err != nil {
		return nil, err
	}
	l, err := s.s.FindListingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeRead(ctx, l); err != nil {
		return nil, err
	}
	if err := AuthorizeWrite(ctx, l); err != nil {
		return nil, err
	}
	return s.s.UpdateListing(ctx, id, upd)
}

// DeleteListing checks that the principal on ctx owns the listing.
func (s *ListingService) DeleteListing(ctx context.Context, id platform.ID) error {
	if err := requireAuthenticated(ctx); err != nil {
		return err
	}
	l, err := s.s.FindListingByID(ctx, id)
	if err != nil {
		return err
	}
	if err := AuthorizeRead(ctx, l); err != nil {
		return err
	}
	if err := AuthorizeWrite(ctx, l); err != nil {
		return err
	}
	return s.s.DeleteListing(ctx, id)
}
