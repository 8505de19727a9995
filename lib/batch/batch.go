// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package batch runs per-item work across a bounded worker pool.
// Analysis and embedding runs are embarrassingly parallel over
// artifacts; this package gives them one shape: order-preserving
// fan-out with first-error cancellation.
package batch

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the pool size when compute.max_workers is unset:
// twice the effective CPU count, capped at 32. Analysis work is a mix
// of file IO and parsing, so modest oversubscription keeps cores busy
// without thrashing.
func DefaultWorkers() int {
	workers := 2 * runtime.GOMAXPROCS(0)
	if workers > 32 {
		workers = 32
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// Map applies worker to every item with at most workers running
// concurrently, returning results in item order. The first error
// cancels the remaining work and is returned (wrapped with the item
// index). workers <= 0 means [DefaultWorkers].
func Map[In, Out any](ctx context.Context, workers int, items []In, worker func(ctx context.Context, item In) (Out, error)) ([]Out, error) {
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	results := make([]Out, len(items))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, item := range items {
		group.Go(func() error {
			// Skip queued work once something failed; SetLimit means
			// items can sit queued long after cancellation.
			if err := groupCtx.Err(); err != nil {
				return err
			}
			out, err := worker(groupCtx, item)
			if err != nil {
				return fmt.Errorf("batch: item %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Span is a half-open [Start, End) index range over a slice of work
// items.
type Span struct {
	Start, End int
}

// Spans cuts n items into contiguous batches of the given size. A
// non-positive size picks an adaptive one: enough batches for every
// worker to get roughly two, clamped to [1, 64]. Embedding commands
// amortize startup cost over a batch, but batches beyond 64 make
// failure retries and progress reporting too coarse.
func Spans(n, size, workers int) []Span {
	if n <= 0 {
		return nil
	}
	if size <= 0 {
		if workers <= 0 {
			workers = DefaultWorkers()
		}
		size = n / (2 * workers)
		if size < 1 {
			size = 1
		}
		if size > 64 {
			size = 64
		}
	}

	spans := make([]Span, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans
}
