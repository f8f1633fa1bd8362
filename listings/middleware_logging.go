package listings

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/marketd/marketd"
	"github.com/marketd/marketd/kit/platform"
)

func NewLoggingService(logger *zap.Logger, underlying marketd.ListingService) *loggingService {
	return &loggingService{
		logger:     logger,
		underlying: underlying,
	}
}

type loggingService struct {
	logger     *zap.Logger
	underlying marketd.ListingService
}

var _ marketd.ListingService = (*loggingService)(nil)

func (l loggingService) FindListingByID(ctx context.Context, id platform.ID) (li *marketd.Listing, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to find listing by ID", zap.Error(err), dur)
			return
		}
		l.logger.Debug("listing find by ID", dur)
	}(time.Now())
	return l.underlying.FindListingByID(ctx, id)
}

func (l loggingService) FindListings(ctx context.Context, filter marketd.ListingFilter, opts marketd.FindOptions) (page *marketd.ListingPage, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to find listings", zap.Error(err), dur)
			return
		}
		l.logger.Debug("listings find", dur)
	}(time.Now())
	return l.underlying.FindListings(ctx, filter, opts)
}

func (l loggingService) CreateListing(ctx context.Context, create marketd.ListingCreate) (li *marketd.Listing, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to create listing", zap.Error(err), dur)
			return
		}
		l.logger.Debug("listing create", dur)
	}(time.Now())
	return l.underlying.CreateListing(ctx, create)
}

func (l loggingService) UpdateListing(ctx context.Context, id platform.ID, upd marketd.ListingUpdate) (li *marketd.Listing, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to update listing", zap.Error(err), dur)
			return
		}
		l.logger.Debug("listing update", dur)
	}(time.Now())
	return l.underlying.UpdateListing(ctx, id, upd)
}

func (l loggingService) DeleteListing(ctx context.Context, id platform.ID) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to delete listing", zap.Error(err), dur)
			return
		}
		l.logger.Debug("listing delete", dur)
	}(time.Now())
	return l.underlying.DeleteListing(ctx, id)
}
