package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/viewearn/backend/internal/config"
	"github.com/viewearn/backend/internal/events"
	"github.com/viewearn/backend/internal/models"
	"github.com/viewearn/backend/internal/repositories/memstore"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type published struct {
	stream string
	event  events.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(ctx context.Context, stream string, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{stream: stream, event: ev})
	return nil
}

func (p *recordingPublisher) ofType(typ string) []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []published
	for _, e := range p.events {
		if e.event.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		PlatformFeeBPS:       3000,
		ViewDwell:            35 * time.Second,
		ViewDwellTolerance:   3 * time.Second,
		ViewRateLimit:        10,
		ViewRateWindow:       time.Hour,
		ViewRateWindowPolicy: config.WindowRolling,
		PendingSessionTTL:    24 * time.Hour,
	}
}

// fixture seeds an owner with an active post campaign and one promoted post,
// and a viewer with an empty balance.
type fixture struct {
	store    *memstore.Store
	clock    *fakeClock
	pub      *recordingPublisher
	svc      *ViewService
	owner    models.User
	viewer   models.User
	campaign models.Campaign
	post     models.Post
}

func newFixture(t *testing.T, budgetCents, spentCents, cpvCents int64) *fixture {
	t.Helper()

	store := memstore.New()
	clock := &fakeClock{now: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}
	pub := &recordingPublisher{}

	svc := NewViewService(store, pub, testConfig(), zap.NewNop())
	svc.nowFn = clock.Now

	owner := store.PutUser(models.User{})
	viewer := store.PutUser(models.User{})
	campaign := store.PutCampaign(models.Campaign{
		OwnerUserID:    owner.ID,
		Title:          "Spring launch",
		Status:         models.CampaignStatusActive,
		AdType:         models.AdTypePost,
		ApprovalStatus: models.ApprovalApproved,
		BudgetCents:    budgetCents,
		SpentCents:     spentCents,
		CPVCents:       cpvCents,
	})
	post := store.PutPost(models.Post{
		OwnerUserID: owner.ID,
		CampaignID:  &campaign.ID,
		Status:      models.PostStatusPublished,
		IsPromoted:  true,
	})

	return &fixture{
		store:    store,
		clock:    clock,
		pub:      pub,
		svc:      svc,
		owner:    owner,
		viewer:   viewer,
		campaign: campaign,
		post:     post,
	}
}

// externalCampaign adds an approved, active non-post campaign owned by the
// fixture owner.
func (f *fixture) externalCampaign(budgetCents, cpvCents int64) models.Campaign {
	return f.store.PutCampaign(models.Campaign{
		OwnerUserID:    f.owner.ID,
		Title:          "Landing page",
		Status:         models.CampaignStatusActive,
		AdType:         models.AdTypeLandingPage,
		ApprovalStatus: models.ApprovalApproved,
		BudgetCents:    budgetCents,
		CPVCents:       cpvCents,
	})
}
