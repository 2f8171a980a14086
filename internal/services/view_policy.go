package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/viewearn/backend/internal/config"
	"github.com/viewearn/backend/internal/ports"
)

// DwellPolicy is the minimum time a view must stay open before it pays.
type DwellPolicy struct {
	Required  time.Duration
	Tolerance time.Duration
}

// Verify accepts elapsed >= Required-Tolerance. On rejection the remaining
// seconds are measured against the full Required duration.
func (p DwellPolicy) Verify(elapsed time.Duration) error {
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= p.Required-p.Tolerance {
		return nil
	}
	remaining := int(math.Ceil((p.Required - elapsed).Seconds()))
	return &Error{
		Kind:             KindTimingNotMet,
		Message:          "keep watching to earn",
		RemainingSeconds: remaining,
	}
}

// RequiredSeconds is the duration advertised to clients.
func (p DwellPolicy) RequiredSeconds() int {
	return int(p.Required / time.Second)
}

// WindowPolicy decides where a rate limit window starts.
type WindowPolicy struct {
	Kind   string // config.WindowRolling or config.WindowCalendar
	Length time.Duration
}

// Since returns the start of the window that ends at now. Rolling windows
// look back Length; calendar windows start at the last multiple of Length
// since the Unix epoch.
func (w WindowPolicy) Since(now time.Time) time.Time {
	if w.Kind == config.WindowCalendar {
		return now.Truncate(w.Length)
	}
	return now.Add(-w.Length)
}

// RateLimitPolicy caps how many settled views a viewer may have inside one
// window.
type RateLimitPolicy struct {
	Limit  int
	Window WindowPolicy
}

// Check counts the viewer's settled sessions started inside the current
// window.
func (p RateLimitPolicy) Check(ctx context.Context, sessions ports.ViewSessionRepository, viewerID uuid.UUID, now time.Time) error {
	n, err := sessions.CountSettledSince(ctx, viewerID, p.Window.Since(now))
	if err != nil {
		return internalError("count recent views", err)
	}
	if n >= p.Limit {
		return newError(KindRateLimited, "view limit of %d per %s reached, try again later", p.Limit, p.Window.Length)
	}
	return nil
}

func dwellPolicyFromConfig(cfg *config.Config) DwellPolicy {
	return DwellPolicy{Required: cfg.ViewDwell, Tolerance: cfg.ViewDwellTolerance}
}

func rateLimitFromConfig(cfg *config.Config) RateLimitPolicy {
	return RateLimitPolicy{
		Limit:  cfg.ViewRateLimit,
		Window: WindowPolicy{Kind: cfg.ViewRateWindowPolicy, Length: cfg.ViewRateWindow},
	}
}
