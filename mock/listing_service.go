package mock

import (
	"context"

	"github.com/marketd/marketd"
	"github.com/marketd/marketd/kit/platform"
)

var _ marketd.ListingService = &ListingService{}

// ListingService is a mock implementation of marketd.ListingService.
type ListingService struct {
	FindListingByIDF func(context.Context, platform.ID) (*marketd.Listing, error)
	FindListingsF    func(context.Context, marketd.ListingFilter, marketd.FindOptions) (*marketd.ListingPage, error)
	CreateListingF   func(context.Context, marketd.ListingCreate) (*marketd.Listing, error)
	UpdateListingF   func(context.Context, platform.ID, marketd.ListingUpdate) (*marketd.Listing, error)
	DeleteListingF   func(context.Context, platform.ID) error
}

func (s *ListingService) FindListingByID(ctx context.Context, id platform.ID) (*marketd.Listing, error) {
	return s.FindListingByIDF(ctx, id)
}

func (s *ListingService) FindListings(ctx context.Context, filter marketd.ListingFilter, opts marketd.FindOptions) (*marketd.ListingPage, error) {
	return s.FindListingsF(ctx, filter, opts)
}

func (s *ListingService) CreateListing(ctx context.Context, create marketd.ListingCreate) (*marketd.Listing, error) {
	return s.CreateListingF(ctx, create)
}

func (s *ListingService) UpdateListing(ctx context.Context, id platform.ID, upd marketd.ListingUpdate) (*marketd.Listing, error) {
	return s.UpdateListingF(ctx, id, upd)
}

func (s *ListingService) DeleteListing(ctx context.Context, id platform.ID) error {
	return s.DeleteListingF(ctx, id)
}
