package handlers

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/likertlabs/pulse/api/metrics"
)

// runCountAndData issues the count and data queries concurrently.
// Either failure cancels the sibling via the group context and aborts
// the whole response; there is no partial count-only or data-only
// result.
func runCountAndData(ctx context.Context, countFn, dataFn func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return countFn(gctx) })
	g.Go(func() error { return dataFn(gctx) })

	start := time.Now()
	err := g.Wait()
	metrics.RecordPostgresQuery(time.Since(start), err)
	return err
}

// recordQuery records a single-query round trip started at start.
func recordQuery(start time.Time, err error) {
	metrics.RecordPostgresQuery(time.Since(start), err)
}
