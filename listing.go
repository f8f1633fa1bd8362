package marketd

import (
	"context"
	"time"

	"github.com/marketd/marketd/kit/platform"
	"github.com/marketd/marketd/kit/platform/errors"
)

var (
	// ErrListingNotFound is returned when a listing does not exist, or when
	// the caller is not permitted to know whether it exists.
	ErrListingNotFound = &errors.Error{
		Code: errors.ENotFound,
		Msg:  "listing not found",
	}

	// ErrUnauthenticated is returned for write operations attempted without
	// an authenticated principal.
	ErrUnauthenticated = &errors.Error{
		Code: errors.EUnauthorized,
		Msg:  "authentication required",
	}

	// ErrAccessDenied is returned when an authenticated principal operates
	// on a listing it does not own.
	ErrAccessDenied = &errors.Error{
		Code: errors.EForbidden,
		Msg:  "access denied",
	}
)

// Operation names used in error chains.
const (
	OpFindListingByID = "FindListingByID"
	OpFindListings    = "FindListings"
	OpCreateListing   = "CreateListing"
	OpUpdateListing   = "UpdateListing"
	OpDeleteListing   = "DeleteListing"
)

// Listing is a single sellable item owned by the principal that created it.
// OwnerID is assigned server side at creation time and never changes.
type Listing struct {
	ID          platform.ID `json:"id" db:"id"`
	OwnerID     platform.ID `json:"ownerID" db:"owner_id"`
	Name        string      `json:"name" db:"name"`
	Description string      `json:"description" db:"description"`
	Price       float64     `json:"price" db:"price"`
	Public      bool        `json:"public" db:"public"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// ListingService represents a service for managing listings.
type ListingService interface {
	// FindListingByID returns a single listing by ID.
	FindListingByID(ctx context.Context, id platform.ID) (*Listing, error)

	// FindListings returns the page of listings visible to the principal on
	// ctx that match filter, ordered and windowed according to opts.
	FindListings(ctx context.Context, filter ListingFilter, opts FindOptions) (*ListingPage, error)

	// CreateListing creates a new listing owned by the principal on ctx.
	CreateListing(ctx context.Context, create ListingCreate) (*Listing, error)

	// UpdateListing applies upd to a single listing.
	// Returns the new listing state after update.
	UpdateListing(ctx context.Context, id platform.ID, upd ListingUpdate) (*Listing, error)

	// DeleteListing removes a listing by ID.
	DeleteListing(ctx context.Context, id platform.ID) error
}

// ListingCreate is the set of caller-suppliable fields for a new listing.
// Identity, ownership and timestamps are always assigned server side.
type ListingCreate struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Public      bool    `json:"public"`
}

// ListingUpdate represents updates to a listing.
// Only fields which are set are updated.
type ListingUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Public      *bool    `json:"public,omitempty"`
}

// HasChanges reports whether the update would modify anything.
func (u ListingUpdate) HasChanges() bool {
	return u.Name != nil || u.Description != nil || u.Price != nil || u.Public != nil
}

// ListingFilter restricts the results returned from FindListings.
type ListingFilter struct {
	// Search, when non-empty, keeps only listings whose name contains the
	// value, compared case insensitively.
	Search string
}
