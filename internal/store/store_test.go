package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/sitebot/internal/shop"
)

var t0 = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func sample(i int, buyerID int64, status shop.Status) shop.Transaction {
	return shop.Transaction{
		ID:          fmt.Sprintf("tx-%02d", i),
		BuyerID:     buyerID,
		BuyerName:   fmt.Sprintf("buyer %d", buyerID),
		Product:     "landing",
		ProofURL:    fmt.Sprintf("https://files.example.org/%d.jpg", i),
		ProofFileID: fmt.Sprintf("file-%d", i),
		Status:      status,
		CreatedAt:   t0.Add(time.Duration(i) * time.Minute),
		UpdatedAt:   t0.Add(time.Duration(i) * time.Minute),
	}
}

// testStore runs the behaviour every backend must share.
func testStore(t *testing.T, open func(t *testing.T) shop.Store) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		s := open(t)
		all, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
		w, err := s.FindWaitingByBuyer(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, w)
		_, err = s.Get(ctx, "missing")
		require.ErrorIs(t, err, shop.ErrNotFound)
	})

	t.Run("append keeps order", func(t *testing.T) {
		s := open(t)
		var want []shop.Transaction
		for i := 0; i < 12; i++ {
			tx := sample(i, int64(100+i), shop.StatusApproved)
			require.NoError(t, s.Append(ctx, tx))
			want = append(want, tx)
		}
		got, err := s.ListAll(ctx)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("ListAll mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("find waiting returns appended record", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Append(ctx, sample(1, 7, shop.StatusRejected)))
		waiting := sample(2, 7, shop.StatusWaiting)
		require.NoError(t, s.Append(ctx, waiting))
		require.NoError(t, s.Append(ctx, sample(3, 8, shop.StatusWaiting)))

		got, err := s.FindWaitingByBuyer(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, cmp.Diff(waiting, *got))

		mine, err := s.ListByBuyer(ctx, 7)
		require.NoError(t, err)
		assert.Len(t, mine, 2)
	})

	t.Run("resolve waiting", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Append(ctx, sample(1, 7, shop.StatusWaiting)))
		at := t0.Add(time.Hour)

		tx, err := s.ResolveWaiting(ctx, 7, shop.StatusApproved, at)
		require.NoError(t, err)
		assert.Equal(t, shop.StatusApproved, tx.Status)
		assert.True(t, at.Equal(tx.UpdatedAt))

		_, err = s.ResolveWaiting(ctx, 7, shop.StatusRejected, at)
		require.ErrorIs(t, err, shop.ErrNotFound)

		stored, err := s.Get(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, shop.StatusApproved, stored.Status)
	})

	t.Run("resolve is applied once", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Append(ctx, sample(1, 9, shop.StatusWaiting)))

		var wg sync.WaitGroup
		var mu sync.Mutex
		wins := 0
		for n := 0; n < 6; n++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.ResolveWaiting(ctx, 9, shop.StatusApproved, t0); err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})

	t.Run("update", func(t *testing.T) {
		s := open(t)
		tx := sample(1, 7, shop.StatusApproved)
		require.NoError(t, s.Append(ctx, tx))

		tx.SiteName = "my-shop"
		tx.DeployURL = "https://my-shop.vercel.app"
		tx.UpdatedAt = t0.Add(2 * time.Hour)
		require.NoError(t, s.Update(ctx, tx))

		got, err := s.Get(ctx, tx.ID)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(tx, *got))

		missing := sample(99, 7, shop.StatusApproved)
		require.ErrorIs(t, s.Update(ctx, missing), shop.ErrNotFound)
	})
}
