// Package ratelimit implements the tiered admission control every internal
// request passes through. Counting is fixed-window over two windows per
// caller (1 second and 60 seconds) against a shared store, so enforcement
// is consistent across gateway processes.
package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Limits holds the per-window ceilings for one account tier.
type Limits struct {
	PerSecond int64
	PerMinute int64
}

// DefaultTier is the tier applied to unknown or absent account types.
const DefaultTier = "casual"

// tierLimits maps account tiers to their ceilings.
var tierLimits = map[string]Limits{
	"casual":     {PerSecond: 5, PerMinute: 60},
	"developer":  {PerSecond: 20, PerMinute: 300},
	"enterprise": {PerSecond: 100, PerMinute: 1000},
	"reseller":   {PerSecond: 50, PerMinute: 500},
}

// LimitsForTier returns the ceilings for an account tier, falling back to
// the default tier for unknown values.
func LimitsForTier(tier string) Limits {
	if l, ok := tierLimits[tier]; ok {
		return l
	}
	return tierLimits[DefaultTier]
}

// Store is the shared counter backend. Incr must atomically increment the
// key and set its expiry to ttl only when the increment created the key
// (post-increment value 1); later increments within the window reuse the
// existing expiry. It returns the post-increment count.
type Store interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Caller identifies the requester being rate limited.
type Caller struct {
	UserID         string
	OrganizationID string
	AccountType    string
}

// Key derives the rate limit key: organization id, else user id, else the
// shared anonymous bucket.
func (c Caller) Key() string {
	if c.OrganizationID != "" {
		return c.OrganizationID
	}
	if c.UserID != "" {
		return c.UserID
	}
	return "anonymous"
}

// Governor performs admission checks against the shared store. When the
// store is unreachable the governor follows its fail policy: fail-open
// (the default) allows the request and logs the outage, because gateway
// availability is prioritized over strict enforcement; fail-closed denies.
// A deliberate denial only ever follows a successful check that exceeded a
// ceiling.
type Governor struct {
	store    Store
	failOpen bool
	log      zerolog.Logger
}

// NewGovernor creates a Governor over the given store.
func NewGovernor(store Store, failOpen bool, log zerolog.Logger) *Governor {
	return &Governor{
		store:    store,
		failOpen: failOpen,
		log:      log,
	}
}

// Allow reports whether the caller's request is admitted. The per-second
// window is checked before the per-minute window; either denial
// short-circuits the other.
func (g *Governor) Allow(ctx context.Context, caller Caller) bool {
	limits := LimitsForTier(caller.AccountType)
	key := caller.Key()

	if !g.checkWindow(ctx, "rate:"+key+":second", time.Second, limits.PerSecond) {
		return false
	}
	return g.checkWindow(ctx, "rate:"+key+":minute", time.Minute, limits.PerMinute)
}

// checkWindow increments one window counter and compares it to the
// ceiling. A store error is resolved by the fail policy rather than
// surfaced to the caller.
func (g *Governor) checkWindow(ctx context.Context, key string, window time.Duration, ceiling int64) bool {
	count, err := g.store.Incr(ctx, key, window)
	if err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("rate limit store unreachable")
		return g.failOpen
	}
	return count <= ceiling
}
