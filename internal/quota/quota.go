// Package quota enforces per-user daily message limits. Counts live on the
// user row and are mutated with atomic conditional updates, so concurrent
// relays across processes never clobber each other.
package quota

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurora-chat/aurora/internal/model"
	"github.com/aurora-chat/aurora/internal/store"
)

// DefaultWindow is the quota cycle length.
const DefaultWindow = 24 * time.Hour

// Tracker answers whether a user may send another message and records usage.
type Tracker struct {
	users  store.Users
	window time.Duration
	log    zerolog.Logger
}

func NewTracker(users store.Users, window time.Duration, log zerolog.Logger) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{users: users, window: window, log: log}
}

// Check resets the user's count if the window has elapsed, then reports
// whether another message is allowed. The reset is lazy: nothing runs on a
// timer, expiry is observed on the next call.
func (t *Tracker) Check(ctx context.Context, userID string) (*model.QuotaWindow, error) {
	w, err := t.users.CheckAndResetQuota(ctx, userID, t.window)
	if err != nil {
		return nil, err
	}
	if !w.Allowed {
		t.log.Debug().Str("user_id", userID).Int("count", w.Count).Int("limit", w.Limit).Msg("quota denied")
	}
	return w, nil
}

// Consume records one sent message and returns the remaining allowance.
// Callers invoke this only after the full exchange has been committed.
func (t *Tracker) Consume(ctx context.Context, userID string) (int, error) {
	count, err := t.users.IncrementQuota(ctx, userID)
	if err != nil {
		return 0, err
	}
	u, err := t.users.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	remaining := u.DailyMessageLimit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Release undoes one consumed unit after a failed exchange. The count never
// drops below zero, so releasing a unit that raced with a reset is harmless.
func (t *Tracker) Release(ctx context.Context, userID string) error {
	return t.users.DecrementQuota(ctx, userID)
}

// FormatResetTime renders a quota reset instant for user-facing messages.
func FormatResetTime(at time.Time) string {
	return at.Local().Format("03:04 PM")
}
