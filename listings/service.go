package listings

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/marketd/marketd"
	icontext "github.com/marketd/marketd/context"
	"github.com/marketd/marketd/kit/platform"
	ierrors "github.com/marketd/marketd/kit/platform/errors"
	"github.com/marketd/marketd/snowflake"
	"github.com/marketd/marketd/sqlite"
)

var _ marketd.ListingService = (*Service)(nil)

// Service is the storage-backed listing service. It owns query composition
// and row-level visibility scoping; policy decisions about individual rows
// live in the authorizer wrapper.
type Service struct {
	store       *sqlite.SqlStore
	log         *zap.Logger
	idGenerator platform.IDGenerator
	clock       clock.Clock
}

// ServiceOption is a functional option for the listing Service.
type ServiceOption func(*Service)

// WithClock replaces the wall clock, letting tests control timestamps.
func WithClock(c clock.Clock) ServiceOption {
	return func(s *Service) {
		s.clock = c
	}
}

// WithIDGenerator replaces the snowflake generator used for new listing IDs.
func WithIDGenerator(g platform.IDGenerator) ServiceOption {
	return func(s *Service) {
		s.idGenerator = g
	}
}

func NewService(log *zap.Logger, store *sqlite.SqlStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:       store,
		log:         log,
		idGenerator: snowflake.NewIDGenerator(),
		clock:       clock.New(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// FindListingByID gets a single listing by ID, with no visibility check.
// Callers outside this package reach it through the authorizer wrapper,
// which decides whether the principal may see the row.
func (s *Service) FindListingByID(ctx context.Context, id platform.ID) (*marketd.Listing, error) {
	s.store.Mu.RLock()
	defer s.store.Mu.RUnlock()

	q := sq.Select("*").
		From("listings").
		Where(sq.Eq{"id": id})

	query, args, err := q.ToSql()
	if err != nil {
		return nil, ierrors.ErrInternalServiceError(err, marketd.OpFindListingByID)
	}

	var l marketd.Listing
	if err := s.store.DB.GetContext(ctx, &l, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, marketd.ErrListingNotFound
		}
		return nil, ierrors.ErrInternalServiceError(err, marketd.OpFindListingByID)
	}

	return &l, nil
}

// FindListings returns one window of the listings visible to the principal
// on ctx. The visibility predicate is part of the query itself, so the total
// count and the offset window are always computed over the authorized,
// filtered set and never over a superset the caller cannot see.
func (s *Service) FindListings(ctx context.Context, filter marketd.ListingFilter, opts marketd.FindOptions) (*marketd.ListingPage, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	principal, err := icontext.GetPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	s.store.Mu.RLock()
	defer s.store.Mu.RUnlock()

	visible := visibleTo(principal)

	countQ := sq.Select("COUNT(*)").
		From("listings").
		Where(visible)
	dataQ := sq.Select("*").
		From("listings").
		Where(visible)

	if filter.Search != "" {
		match := sq.Expr("LOWER(name) LIKE '%' || LOWER(?) || '%'", filter.Search)
		countQ = countQ.Where(match)
		dataQ = dataQ.Where(match)
	}

	query, args, err := countQ.ToSql()
	if err != nil {
		return nil, ierrors.ErrInternalServiceError(err, marketd.OpFindListings)
	}

	var total int
	if err := s.store.DB.GetContext(ctx, &total, query, args...); err != nil {
		return nil, ierrors.ErrInternalServiceError(err, marketd.OpFindListings)
	}

	dataQ = dataQ.
		OrderBy(orderClauses(opts)...).
		Limit(uint64(opts.Limit)).
		Offset(uint64(opts.Offset()))

	query, args, err = dataQ.ToSql()
	if err != nil {
		return nil, ierrors.ErrInternalServiceError(err, marketd.OpFindListings)
	}

	ls := []*marketd.Listing{}
	if err := s.store.DB.SelectContext(ctx, &ls, query, args...); err != nil {
		return nil, ierrors.ErrInternalServiceError(err, marketd.OpFindListings)
	}

	return &marketd.ListingPage{
		Data:       ls,
		Pagination: marketd.NewPagination(opts, total),
	}, nil
}

// CreateListing creates a new listing owned by the principal on ctx. The
// owner always comes from the resolved principal; any owner supplied by the
// caller never reaches this layer.
func (s *Service) CreateListing(ctx context.Context, create marketd.ListingCreate) (*marketd.Listing, error) {
	principal, err := icontext.GetPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if !principal.Authenticated() {
		return nil, marketd.ErrUnauthenticated
	}

	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	now := s.clock.Now().UTC()
	q := sq.Insert("listings").
		SetMap(sq.Eq{
			"id":          s.idGenerator.ID(),
			"owner_id":    principal.UserID,
			"name":        create.Name,
			"description": create.Description,
			"price":       create.Price,
			"public":      create.Public,
			"created_at":  now,
			"updated_at":  now,
		}).
		Suffix("RETURNING *")

	query, args, err := q.ToSql()
	if err != nil {
		return nil, ierrors.ErrInternalServiceError(err, marketd.OpCreateListing)
	}

	var l marketd.Listing
	if err := s.store.DB.GetContext(ctx, &l, query, args...); err != nil {
		return nil, ierrors.ErrInternalServiceError(err, marketd.OpCreateListing)
	}

	return &l, nil
}

// UpdateListing applies upd to a single listing by ID. Ownership and
// creation time are never part of the change set.
func (s *Service) UpdateListing(ctx context.Context, id platform.ID, upd marketd.ListingUpdate) (*marketd.Listing, error) {
	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	set := sq.Eq{"updated_at": s.clock.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Public != nil {
		set["public"] = *upd.Public
	}

	q := sq.Update("listings").
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING *")

	query, args, err := q.ToSql()
	if err != nil {
		return nil, ierrors.ErrInternalServiceError(err, marketd.OpUpdateListing)
	}

	var l marketd.Listing
	if err := s.store.DB.GetContext(ctx, &l, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, marketd.ErrListingNotFound
		}
		return nil, ierrors.ErrInternalServiceError(err, marketd.OpUpdateListing)
	}

	return &l, nil
}

// DeleteListing removes a single listing by ID.
func (s *Service) DeleteListing(ctx context.Context, id platform.ID) error {
	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	q := sq.Delete("listings").
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id")

	query, args, err := q.ToSql()
	if err != nil {
		return ierrors.ErrInternalServiceError(err, marketd.OpDeleteListing)
	}

	var d platform.ID
	if err := s.store.DB.GetContext(ctx, &d, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return marketd.ErrListingNotFound
		}
		return ierrors.ErrInternalServiceError(err, marketd.OpDeleteListing)
	}

	return nil
}

// visibleTo is the row-level visibility predicate: everyone sees public
// listings, owners additionally see their own. Applying it at the store
// boundary means a bug in a caller cannot widen the result set.
func visibleTo(p marketd.Principal) sq.Sqlizer {
	if p.Authenticated() {
		return sq.Or{
			sq.Eq{"public": true},
			sq.Eq{"owner_id": p.UserID},
		}
	}
	return sq.Eq{"public": true}
}

// orderClauses renders the ORDER BY list for opts. A deterministic
// tie-break on creation time then id is always appended so pagination
// windows are stable when primary sort values repeat.
func orderClauses(opts marketd.FindOptions) []string {
	dir := "ASC"
	if opts.Descending {
		dir = "DESC"
	}

	clauses := []string{opts.SortBy + " " + dir}
	if opts.SortBy != "created_at" {
		clauses = append(clauses, "created_at ASC")
	}
	return append(clauses, "id ASC")
}
