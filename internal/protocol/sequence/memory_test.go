package sequence

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"civicdesk/internal/protocol/models"
)

func TestInMemoryNext(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 11, 7, 9, 0, 0, 0, time.UTC)

	t.Run("starts at one and increments", func(t *testing.T) {
		g := NewInMemory()

		first, err := g.Next(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, "PROT-20251107-00001", first)

		second, err := g.Next(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, "PROT-20251107-00002", second)
	})

	t.Run("resets per calendar day", func(t *testing.T) {
		g := NewInMemory()

		_, err := g.Next(ctx, day)
		require.NoError(t, err)

		next, err := g.Next(ctx, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Equal(t, "PROT-20251108-00001", next)

		// The earlier day keeps its own counter.
		again, err := g.Next(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, "PROT-20251107-00002", again)
	})
}

func TestInMemoryNextConcurrent(t *testing.T) {
	const callers = 100

	g := NewInMemory()
	day := time.Date(2025, 11, 7, 12, 0, 0, 0, time.UTC)

	var mu sync.Mutex
	got := make(map[string]struct{}, callers)

	var eg errgroup.Group
	for i := 0; i < callers; i++ {
		eg.Go(func() error {
			n, err := g.Next(context.Background(), day)
			if err != nil {
				return err
			}
			mu.Lock()
			got[n] = struct{}{}
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	// Exactly the contiguous block 00001..00100, no duplicates, no gaps.
	require.Len(t, got, callers)
	for i := 1; i <= callers; i++ {
		want := fmt.Sprintf("PROT-20251107-%05d", i)
		_, ok := got[want]
		assert.True(t, ok, "missing %s", want)
	}

	for n := range got {
		assert.True(t, models.ValidNumber(n), n)
	}
}
