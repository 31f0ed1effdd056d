package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreInBatches(t *testing.T) {
	ctx := context.Background()

	makeAccounts := func(n int) []AccountSnapshot {
		out := make([]AccountSnapshot, n)
		for i := range out {
			out[i] = AccountSnapshot{ID: fmt.Sprintf("acct-%d", i), OrganizationID: "org-1"}
		}
		return out
	}

	t.Run("every account gets a result", func(t *testing.T) {
		accounts := makeAccounts(25)

		results := scoreInBatches(ctx, accounts, 10, func(_ context.Context, a AccountSnapshot) string {
			return "scored:" + a.ID
		})

		assert.Len(t, results, 25)
		for _, a := range accounts {
			assert.Equal(t, "scored:"+a.ID, results[a.ID])
		}
	})

	t.Run("concurrency never exceeds the batch size", func(t *testing.T) {
		accounts := makeAccounts(35)

		var current, peak int64
		var mu sync.Mutex

		scoreInBatches(ctx, accounts, 10, func(_ context.Context, a AccountSnapshot) int {
			n := atomic.AddInt64(&current, 1)
			mu.Lock()
			if n > peak {
				peak = n
			}
			mu.Unlock()
			defer atomic.AddInt64(&current, -1)
			return 0
		})

		assert.LessOrEqual(t, peak, int64(10))
	})

	t.Run("empty input yields empty map", func(t *testing.T) {
		results := scoreInBatches(ctx, nil, 10, func(_ context.Context, a AccountSnapshot) int { return 0 })
		assert.Empty(t, results)
	})

	t.Run("non-positive batch size uses the default", func(t *testing.T) {
		accounts := makeAccounts(12)

		results := scoreInBatches(ctx, accounts, 0, func(_ context.Context, a AccountSnapshot) bool { return true })

		assert.Len(t, results, 12)
	})
}
