package service

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// scoreInBatches partitions accounts into fixed-size batches and scores each
// batch concurrently, waiting for a batch to finish before starting the next.
// This bounds in-flight concurrency (and therefore data-store load) to the
// batch size. The score function never fails, so a batch never fails either.
func scoreInBatches[T any](ctx context.Context, accounts []AccountSnapshot, batchSize int, score func(context.Context, AccountSnapshot) T) map[string]T {
	if batchSize <= 0 {
		batchSize = scoreBatchSize
	}

	results := make(map[string]T, len(accounts))
	var mu sync.Mutex

	for start := 0; start < len(accounts); start += batchSize {
		end := min(start+batchSize, len(accounts))

		g, gctx := errgroup.WithContext(ctx)
		for _, acct := range accounts[start:end] {
			acct := acct
			g.Go(func() error {
				breakdown := score(gctx, acct)
				mu.Lock()
				results[acct.ID] = breakdown
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	return results
}
