package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VIEW_DWELL_SECONDS", "")
	t.Setenv("VIEW_RATE_LIMIT", "")
	t.Setenv("PLATFORM_FEE_BPS", "")

	cfg := Load()

	assert.Equal(t, 35*time.Second, cfg.ViewDwell)
	assert.Equal(t, 3*time.Second, cfg.ViewDwellTolerance)
	assert.Equal(t, 10, cfg.ViewRateLimit)
	assert.Equal(t, time.Hour, cfg.ViewRateWindow)
	assert.Equal(t, WindowRolling, cfg.ViewRateWindowPolicy)
	assert.Equal(t, 3000, cfg.PlatformFeeBPS)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VIEW_DWELL_SECONDS", "20")
	t.Setenv("VIEW_RATE_WINDOW_POLICY", "CALENDAR")
	t.Setenv("VIEW_RATE_LIMIT", "not-a-number")

	cfg := Load()

	assert.Equal(t, 20*time.Second, cfg.ViewDwell)
	assert.Equal(t, WindowCalendar, cfg.ViewRateWindowPolicy)
	assert.Equal(t, DefaultViewRateLimit, cfg.ViewRateLimit)
}

func TestValidateResetsInvalidViewSettings(t *testing.T) {
	cfg := &Config{
		JWTSecret:            "secret",
		PlatformFeeBPS:       20000,
		ViewDwell:            10 * time.Second,
		ViewDwellTolerance:   10 * time.Second,
		ViewRateLimit:        0,
		ViewRateWindow:       -time.Minute,
		ViewRateWindowPolicy: "weekly",
	}

	cfg.Validate(zap.NewNop())

	assert.Equal(t, DefaultPlatformFeeBPS, cfg.PlatformFeeBPS)
	assert.Equal(t, 10*time.Second, cfg.ViewDwell)
	assert.Equal(t, DefaultViewDwellTolerance, cfg.ViewDwellTolerance)
	assert.Equal(t, DefaultViewRateLimit, cfg.ViewRateLimit)
	assert.Equal(t, DefaultViewRateWindow, cfg.ViewRateWindow)
	assert.Equal(t, WindowRolling, cfg.ViewRateWindowPolicy)
}

func TestValidateResetsWorkerSettings(t *testing.T) {
	tests := []struct {
		name      string
		reaper    time.Duration
		sweep     time.Duration
		ttl       time.Duration
		jwt       time.Duration
		wantTTL   time.Duration
		wantReap  time.Duration
		wantSweep time.Duration
		wantJWT   time.Duration
	}{
		{"zero values", 0, 0, 0, 0, DefaultPendingSessionTTL, DefaultReaperInterval, DefaultBudgetSweep, DefaultJWTExpiration},
		{"negative values", -time.Minute, -time.Minute, -time.Hour, -time.Hour, DefaultPendingSessionTTL, DefaultReaperInterval, DefaultBudgetSweep, DefaultJWTExpiration},
		{"ttl within dwell", time.Minute, time.Minute, 30 * time.Second, time.Hour, DefaultPendingSessionTTL, time.Minute, time.Minute, time.Hour},
		{"valid values kept", 2 * time.Minute, 3 * time.Minute, 2 * time.Hour, 12 * time.Hour, 2 * time.Hour, 2 * time.Minute, 3 * time.Minute, 12 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				JWTSecret:            "secret",
				JWTExpiration:        tt.jwt,
				PlatformFeeBPS:       DefaultPlatformFeeBPS,
				ViewDwell:            DefaultViewDwell,
				ViewDwellTolerance:   DefaultViewDwellTolerance,
				ViewRateLimit:        DefaultViewRateLimit,
				ViewRateWindow:       DefaultViewRateWindow,
				ViewRateWindowPolicy: WindowRolling,
				PendingSessionTTL:    tt.ttl,
				ReaperInterval:       tt.reaper,
				BudgetSweepInterval:  tt.sweep,
			}

			cfg.Validate(zap.NewNop())

			assert.Equal(t, tt.wantTTL, cfg.PendingSessionTTL)
			assert.Equal(t, tt.wantReap, cfg.ReaperInterval)
			assert.Equal(t, tt.wantSweep, cfg.BudgetSweepInterval)
			assert.Equal(t, tt.wantJWT, cfg.JWTExpiration)
		})
	}
}

func TestValidateKeepsPendingSessionsAliveAfterLoad(t *testing.T) {
	t.Setenv("REAPER_INTERVAL_MINUTES", "0")
	t.Setenv("BUDGET_SWEEP_INTERVAL_MINUTES", "-1")
	t.Setenv("PENDING_SESSION_TTL_HOURS", "0")

	cfg := Load()
	cfg.Validate(zap.NewNop())

	assert.Positive(t, cfg.ReaperInterval)
	assert.Positive(t, cfg.BudgetSweepInterval)
	assert.GreaterOrEqual(t, cfg.PendingSessionTTL, minPendingTTLDwellFactor*cfg.ViewDwell)
	assert.NotPanics(t, func() {
		time.NewTicker(cfg.ReaperInterval).Stop()
		time.NewTicker(cfg.BudgetSweepInterval).Stop()
	})
}
