package listings

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/marketd/marketd"
	icontext "github.com/marketd/marketd/context"
	"github.com/marketd/marketd/kit/platform"
	"github.com/marketd/marketd/kit/platform/errors"
	"github.com/marketd/marketd/mock"
	"github.com/marketd/marketd/sqlite"
	"github.com/marketd/marketd/sqlite/migrations"
)

var (
	userOne = platform.ID(100)
	userTwo = platform.ID(200)
)

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()

	store := sqlite.NewTestStore(t)
	ctx := context.Background()

	migrator := sqlite.NewMigrator(store, zap.NewNop())
	require.NoError(t, migrator.Up(ctx, migrations.All))

	return NewService(zaptest.NewLogger(t), store, opts...)
}

func ctxWithUser(id platform.ID) context.Context {
	return icontext.SetPrincipal(context.Background(), marketd.Principal{UserID: id})
}

func ctxAnonymous() context.Context {
	return icontext.SetPrincipal(context.Background(), marketd.Anonymous)
}

func TestCreateAndGetListing(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := ctxWithUser(userOne)

	// getting an unknown id should report not found
	_, err := svc.FindListingByID(ctx, platform.ID(999))
	require.ErrorIs(t, err, marketd.ErrListingNotFound)

	create := marketd.ListingCreate{
		Name:        "vintage road bike",
		Description: "58cm frame, recently serviced",
		Price:       350,
		Public:      true,
	}

	got, err := svc.CreateListing(ctx, create)
	require.NoError(t, err)
	require.True(t, got.ID.Valid())
	require.Equal(t, userOne, got.OwnerID)
	require.Equal(t, create.Name, got.Name)
	require.Equal(t, create.Description, got.Description)
	require.Equal(t, create.Price, got.Price)
	require.True(t, got.Public)
	require.Equal(t, got.CreatedAt, got.UpdatedAt)

	gotGet, err := svc.FindListingByID(ctx, got.ID)
	require.NoError(t, err)
	require.Equal(t, got, gotGet)
}

func TestCreateListingRequiresAuthentication(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	_, err := svc.CreateListing(ctxAnonymous(), marketd.ListingCreate{
		Name:  "anonymous junk",
		Price: 5,
	})
	require.ErrorIs(t, err, marketd.ErrUnauthenticated)
}

func TestFindListingsPagination(t *testing.T) {
	t.Parallel()

	mk := clock.NewMock()
	svc := newTestService(t,
		WithClock(mk),
		WithIDGenerator(mock.NewIncrementingIDGenerator(1)),
	)
	ctx := ctxWithUser(userOne)

	for i := 1; i <= 25; i++ {
		mk.Add(time.Second)
		_, err := svc.CreateListing(ctx, marketd.ListingCreate{
			Name:  fmt.Sprintf("listing %02d", i),
			Price: float64(i),
		})
		require.NoError(t, err)
	}

	opts := marketd.FindOptions{
		Page:       2,
		Limit:      10,
		SortBy:     "created_at",
		Descending: true,
	}

	page, err := svc.FindListings(ctx, marketd.ListingFilter{}, opts)
	require.NoError(t, err)

	require.Equal(t, marketd.Pagination{
		Page:       2,
		Limit:      10,
		Total:      25,
		TotalPages: 3,
	}, page.Pagination)

	// newest first, so page 2 holds rows ranked 11 through 20: the
	// listings created 15th down through 6th
	require.Len(t, page.Data, 10)
	for i, l := range page.Data {
		require.Equal(t, platform.ID(15-i), l.ID)
	}

	// the final page holds the remainder
	opts.Page = 3
	page, err = svc.FindListings(ctx, marketd.ListingFilter{}, opts)
	require.NoError(t, err)
	require.Len(t, page.Data, 5)
	require.Equal(t, 3, page.Pagination.TotalPages)

	// a page past the end is empty but keeps the same math
	opts.Page = 4
	page, err = svc.FindListings(ctx, marketd.ListingFilter{}, opts)
	require.NoError(t, err)
	require.Len(t, page.Data, 0)
	require.Equal(t, 25, page.Pagination.Total)
}

func TestFindListingsPageFarPastEnd(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := ctxWithUser(userOne)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateListing(ctx, marketd.ListingCreate{
			Name:   fmt.Sprintf("row %d", i),
			Price:  1,
			Public: true,
		})
		require.NoError(t, err)
	}

	// a page so large its offset cannot be computed exactly is still a
	// valid request; it must be empty, never wrap back to the first window
	opts := marketd.FindOptions{
		Page:   math.MaxInt/2 + 2,
		Limit:  100,
		SortBy: "created_at",
	}

	page, err := svc.FindListings(ctx, marketd.ListingFilter{}, opts)
	require.NoError(t, err)
	require.Empty(t, page.Data)
	require.Equal(t, marketd.Pagination{
		Page:       opts.Page,
		Limit:      100,
		Total:      3,
		TotalPages: 1,
	}, page.Pagination)
}

func TestFindListingsIdempotent(t *testing.T) {
	t.Parallel()

	mk := clock.NewMock()
	svc := newTestService(t,
		WithClock(mk),
		WithIDGenerator(mock.NewIncrementingIDGenerator(1)),
	)
	ctx := ctxWithUser(userOne)

	// equal sort keys: all rows share a price
	for i := 1; i <= 8; i++ {
		mk.Add(time.Minute)
		_, err := svc.CreateListing(ctx, marketd.ListingCreate{
			Name:  fmt.Sprintf("print %d", i),
			Price: 20,
		})
		require.NoError(t, err)
	}

	opts := marketd.FindOptions{Page: 1, Limit: 5, SortBy: "price"}

	first, err := svc.FindListings(ctx, marketd.ListingFilter{}, opts)
	require.NoError(t, err)
	second, err := svc.FindListings(ctx, marketd.ListingFilter{}, opts)
	require.NoError(t, err)
	require.Equal(t, first, second)

	// ties resolve by creation time then id, so the window is stable
	for i, l := range first.Data {
		require.Equal(t, platform.ID(i+1), l.ID)
	}
}

func TestFindListingsVisibility(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	ctxOne := ctxWithUser(userOne)
	ctxTwo := ctxWithUser(userTwo)

	_, err := svc.CreateListing(ctxOne, marketd.ListingCreate{
		Name:   "public poster",
		Price:  10,
		Public: true,
	})
	require.NoError(t, err)

	_, err = svc.CreateListing(ctxOne, marketd.ListingCreate{
		Name:  "private poster",
		Price: 10,
	})
	require.NoError(t, err)

	opts := marketd.DefaultFindOptions()

	// the owner sees both rows and a total matching what it sees
	page, err := svc.FindListings(ctxOne, marketd.ListingFilter{}, opts)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.Equal(t, 2, page.Pagination.Total)

	// another user only sees the public row; the private one is absent
	// from both the data and the total
	page, err = svc.FindListings(ctxTwo, marketd.ListingFilter{}, opts)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, 1, page.Pagination.Total)
	require.Equal(t, "public poster", page.Data[0].Name)

	// anonymous callers see only public rows
	page, err = svc.FindListings(ctxAnonymous(), marketd.ListingFilter{}, opts)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "public poster", page.Data[0].Name)

	// a search cannot widen the authorized set
	page, err = svc.FindListings(ctxTwo, marketd.ListingFilter{Search: "private"}, opts)
	require.NoError(t, err)
	require.Len(t, page.Data, 0)
	require.Equal(t, 0, page.Pagination.Total)
}

func TestFindListingsSearch(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := ctxWithUser(userOne)

	for _, name := range []string{"Walnut Desk", "walnut chair", "oak shelf"} {
		_, err := svc.CreateListing(ctx, marketd.ListingCreate{Name: name, Price: 50})
		require.NoError(t, err)
	}

	page, err := svc.FindListings(ctx, marketd.ListingFilter{Search: "WALNUT"}, marketd.DefaultFindOptions())
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.Equal(t, 2, page.Pagination.Total)

	page, err = svc.FindListings(ctx, marketd.ListingFilter{Search: "shelf"}, marketd.DefaultFindOptions())
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "oak shelf", page.Data[0].Name)
}

func TestFindListingsRejectsBadOptions(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := ctxWithUser(userOne)

	_, err := svc.FindListings(ctx, marketd.ListingFilter{}, marketd.FindOptions{Page: 1, Limit: 0, SortBy: "name"})
	require.ErrorIs(t, err, marketd.ErrPageSizeTooSmall)

	_, err = svc.FindListings(ctx, marketd.ListingFilter{}, marketd.FindOptions{Page: 1, Limit: 101, SortBy: "name"})
	require.ErrorIs(t, err, marketd.ErrPageSizeTooLarge)

	_, err = svc.FindListings(ctx, marketd.ListingFilter{}, marketd.FindOptions{Page: 0, Limit: 10, SortBy: "name"})
	require.ErrorIs(t, err, marketd.ErrPageTooSmall)

	_, err = svc.FindListings(ctx, marketd.ListingFilter{}, marketd.FindOptions{Page: 1, Limit: 10, SortBy: "drop table"})
	require.Equal(t, errors.EInvalid, errors.ErrorCode(err))
}

func TestUpdateListing(t *testing.T) {
	t.Parallel()

	mk := clock.NewMock()
	svc := newTestService(t, WithClock(mk))
	ctx := ctxWithUser(userOne)

	name := "updated name"
	price := 42.5

	// updating an unknown id reports not found
	_, err := svc.UpdateListing(ctx, platform.ID(12345), marketd.ListingUpdate{Name: &name})
	require.ErrorIs(t, err, marketd.ErrListingNotFound)

	created, err := svc.CreateListing(ctx, marketd.ListingCreate{
		Name:  "original name",
		Price: 10,
	})
	require.NoError(t, err)

	mk.Add(time.Hour)

	got, err := svc.UpdateListing(ctx, created.ID, marketd.ListingUpdate{
		Name:  &name,
		Price: &price,
	})
	require.NoError(t, err)
	require.Equal(t, name, got.Name)
	require.Equal(t, price, got.Price)

	// identity, ownership and creation time never change on update
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, created.OwnerID, got.OwnerID)
	require.True(t, created.CreatedAt.Equal(got.CreatedAt))
	require.True(t, got.UpdatedAt.After(got.CreatedAt))

	// unset fields keep their values
	require.Equal(t, created.Description, got.Description)
	require.Equal(t, created.Public, got.Public)
}

func TestDeleteListing(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := ctxWithUser(userOne)

	require.ErrorIs(t, svc.DeleteListing(ctx, platform.ID(54321)), marketd.ErrListingNotFound)

	created, err := svc.CreateListing(ctx, marketd.ListingCreate{
		Name:  "going away",
		Price: 1,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteListing(ctx, created.ID))

	_, err = svc.FindListingByID(ctx, created.ID)
	require.ErrorIs(t, err, marketd.ErrListingNotFound)
}
