package listings

import (
	"context"

	"github.com/marketd/marketd"
	"github.com/marketd/marketd/kit/platform"
)

func NewValidationService(underlying marketd.ListingService) *validationService {
	return &validationService{underlying}
}

// validationService rejects malformed mutation input before it can cost
// anything: it runs ahead of the authorizer in the service stack, so a
// validation failure short-circuits without a single store lookup.
type validationService struct {
	underlying marketd.ListingService
}

var _ marketd.ListingService = (*validationService)(nil)

func (v validationService) FindListingByID(ctx context.Context, id platform.ID) (*marketd.Listing, error) {
	return v.underlying.FindListingByID(ctx, id)
}

func (v validationService) FindListings(ctx context.Context, filter marketd.ListingFilter, opts marketd.FindOptions) (*marketd.ListingPage, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return v.underlying.FindListings(ctx, filter, opts)
}

func (v validationService) CreateListing(ctx context.Context, create marketd.ListingCreate) (*marketd.Listing, error) {
	if err := ValidateListingCreate(create); err != nil {
		return nil, err
	}
	return v.underlying.CreateListing(ctx, create)
}

func (v validationService) UpdateListing(ctx context.Context, id platform.ID, upd marketd.ListingUpdate) (*marketd.Listing, error) {
	if err := ValidateListingUpdate(upd); err != nil {
		return nil, err
	}
	return v.underlying.UpdateListing(ctx, id, upd)
}

func (v validationService) DeleteListing(ctx context.Context, id platform.ID) error {
	return v.underlying.DeleteListing(ctx, id)
}
