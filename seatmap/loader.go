package seatmap

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"pasajes-cli/logger"
	"pasajes-cli/model"
)

type LayoutSource interface {
	FetchLayout(ctx context.Context, busID string) ([]model.SeatPosition, error)
}

type FareSource interface {
	FetchFares(ctx context.Context, routeID string) ([]model.FareRecord, error)
}

// Snapshot is one joined generation of server data. A failed source is
// represented by an empty collection and its error.
type Snapshot struct {
	Layout    []model.SeatPosition
	Fares     []model.FareRecord
	LayoutErr error
	FareErr   error
	FetchedAt time.Time
}

// Err returns the most relevant fetch error, layout first.
func (s Snapshot) Err() error {
	if s.LayoutErr != nil {
		return s.LayoutErr
	}
	return s.FareErr
}

// Loader fetches layout and fares together and joins them before returning.
type Loader struct {
	layouts LayoutSource
	fares   FareSource
	log     *logger.Logger
	now     func() time.Time
}

func NewLoader(layouts LayoutSource, fares FareSource, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Discard()
	}
	return &Loader{layouts: layouts, fares: fares, log: log, now: time.Now}
}

// Load issues both fetches concurrently and returns only once both have
// finished. Failures never escape: they become empty collections plus the
// recorded error.
func (l *Loader) Load(ctx context.Context, busID string, routeID string) Snapshot {
	start := l.now()
	var snap Snapshot
	var g errgroup.Group

	g.Go(func() error {
		seats, err := l.layouts.FetchLayout(ctx, busID)
		if err != nil {
			l.log.LogFetchFailure(ctx, "layout", busID, err)
			snap.LayoutErr = err
			return nil
		}
		snap.Layout = seats
		return nil
	})
	g.Go(func() error {
		fares, err := l.fares.FetchFares(ctx, routeID)
		if err != nil {
			l.log.LogFetchFailure(ctx, "fares", routeID, err)
			snap.FareErr = err
			return nil
		}
		snap.Fares = fares
		return nil
	})
	_ = g.Wait()

	snap.FetchedAt = l.now()
	l.log.LogRefresh(ctx, busID, routeID, len(snap.Layout), len(snap.Fares), snap.FetchedAt.Sub(start))
	return snap
}
