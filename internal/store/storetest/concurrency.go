package storetest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aurora-chat/aurora/internal/model"
	"github.com/aurora-chat/aurora/internal/store"
)

// RunQuotaConcurrency exercises the admission window under parallel use.
// Drivers implement the check and the reset as conditional single-statement
// updates; these tests are what back that claim up.
func RunQuotaConcurrency(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("BoundaryOvershootAtMostOne", func(t *testing.T) {
		s := makeStore(t)
		ctx := context.Background()

		const limit = 5
		userID := "u-" + uuid.New().String()
		_, err := s.Users().Create(ctx, &model.User{
			UserID:            userID,
			Email:             userID + "@example.test",
			CredentialHash:    "hash-" + userID,
			DailyMessageLimit: limit,
		})
		if err != nil {
			t.Fatalf("CreateUser: %v", err)
		}

		for iter := 0; iter < 10; iter++ {
			// Park the count at limit-1 so both racers sit on the boundary.
			for {
				w, err := s.Users().CheckAndResetQuota(ctx, userID, 24*time.Hour)
				if err != nil {
					t.Fatalf("CheckAndResetQuota: %v", err)
				}
				if w.Count == limit-1 {
					break
				}
				if w.Count > limit-1 {
					if err := s.Users().DecrementQuota(ctx, userID); err != nil {
						t.Fatalf("DecrementQuota: %v", err)
					}
				} else {
					if _, err := s.Users().IncrementQuota(ctx, userID); err != nil {
						t.Fatalf("IncrementQuota: %v", err)
					}
				}
			}

			var wg sync.WaitGroup
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					w, err := s.Users().CheckAndResetQuota(ctx, userID, 24*time.Hour)
					if err != nil {
						t.Errorf("concurrent CheckAndResetQuota: %v", err)
						return
					}
					if w.Allowed {
						if _, err := s.Users().IncrementQuota(ctx, userID); err != nil {
							t.Errorf("concurrent IncrementQuota: %v", err)
						}
					}
				}()
			}
			wg.Wait()

			final, err := s.Users().CheckAndResetQuota(ctx, userID, 24*time.Hour)
			if err != nil {
				t.Fatalf("final CheckAndResetQuota: %v", err)
			}
			if final.Count < limit {
				t.Fatalf("iter %d: no racer was admitted at count=%d", iter, final.Count)
			}
			if final.Count > limit+1 {
				t.Fatalf("iter %d: quota overshot by more than one: count=%d limit=%d", iter, final.Count, limit)
			}
		}
	})

	t.Run("StaleWindowResetsExactlyOnce", func(t *testing.T) {
		s := makeStore(t)
		ctx := context.Background()

		userID := "u-" + uuid.New().String()
		_, err := s.Users().Create(ctx, &model.User{
			UserID:            userID,
			Email:             userID + "@example.test",
			CredentialHash:    "hash-" + userID,
			DailyMessageLimit: 20,
		})
		if err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		for i := 0; i < 3; i++ {
			if _, err := s.Users().IncrementQuota(ctx, userID); err != nil {
				t.Fatalf("seed IncrementQuota: %v", err)
			}
		}

		// Let the seeded window expire, then race the reset. The window is
		// much longer than the racers take, so only the seeded reset
		// timestamp is stale; a second reset would wipe concurrent
		// increments and show up as count < admitted below.
		const window = 500 * time.Millisecond
		time.Sleep(window + 100*time.Millisecond)

		var admitted atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w, err := s.Users().CheckAndResetQuota(ctx, userID, window)
				if err != nil {
					t.Errorf("concurrent CheckAndResetQuota: %v", err)
					return
				}
				if !w.Allowed {
					t.Errorf("racer denied after reset: count=%d limit=%d", w.Count, w.Limit)
					return
				}
				if _, err := s.Users().IncrementQuota(ctx, userID); err != nil {
					t.Errorf("concurrent IncrementQuota: %v", err)
					return
				}
				admitted.Add(1)
			}()
		}
		wg.Wait()

		final, err := s.Users().CheckAndResetQuota(ctx, userID, 24*time.Hour)
		if err != nil {
			t.Fatalf("final CheckAndResetQuota: %v", err)
		}
		if admitted.Load() == 0 {
			t.Fatal("no racer was admitted")
		}
		if final.Count != int(admitted.Load()) {
			t.Fatalf("reset applied more than once or seed survived: count=%d admitted=%d", final.Count, admitted.Load())
		}
	})
}
