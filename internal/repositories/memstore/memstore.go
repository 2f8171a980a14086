// Package memstore is an in-memory ports.Store. Transactions hold a single
// store-wide lock and work on a copy that replaces the committed state only
// when the callback succeeds, which makes every transaction serializable.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viewearn/backend/internal/models"
	"github.com/viewearn/backend/internal/ports"
)

type state struct {
	campaigns map[uuid.UUID]models.Campaign
	posts     map[uuid.UUID]models.Post
	sessions  map[uuid.UUID]models.ViewSession
	users     map[uuid.UUID]models.User
	earnings  []models.Earning
	audit     []models.AuditLog
}

func newState() *state {
	return &state{
		campaigns: make(map[uuid.UUID]models.Campaign),
		posts:     make(map[uuid.UUID]models.Post),
		sessions:  make(map[uuid.UUID]models.ViewSession),
		users:     make(map[uuid.UUID]models.User),
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.campaigns {
		c.campaigns[k] = v
	}
	for k, v := range st.posts {
		c.posts[k] = v
	}
	for k, v := range st.sessions {
		c.sessions[k] = v
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	c.earnings = append([]models.Earning(nil), st.earnings...)
	c.audit = append([]models.AuditLog(nil), st.audit...)
	return c
}

type Store struct {
	mu *sync.Mutex
	st *state
	tx *state
}

func New() *Store {
	return &Store{mu: &sync.Mutex{}, st: newState()}
}

// view returns the state to operate on and its release func. Inside a
// transaction the lock is already held.
func (s *Store) view() (*state, func()) {
	if s.tx != nil {
		return s.tx, func() {}
	}
	s.mu.Lock()
	return s.st, s.mu.Unlock
}

func (s *Store) Campaigns() ports.CampaignRepository  { return campaignRepo{s} }
func (s *Store) Sessions() ports.ViewSessionRepository { return sessionRepo{s} }
func (s *Store) Ledger() ports.LedgerRepository        { return ledgerRepo{s} }
func (s *Store) Audit() ports.AuditRepository          { return auditRepo{s} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx ports.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&Store{mu: s.mu, st: s.st, tx: work}); err != nil {
		return err
	}
	*s.st = *work
	return nil
}

// --- seeding and inspection ---

func (s *Store) PutCampaign(c models.Campaign) models.Campaign {
	st, unlock := s.view()
	defer unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
		c.UpdatedAt = c.CreatedAt
	}
	st.campaigns[c.ID] = c
	return c
}

func (s *Store) PutPost(p models.Post) models.Post {
	st, unlock := s.view()
	defer unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	st.posts[p.ID] = p
	return p
}

func (s *Store) PutUser(u models.User) models.User {
	st, unlock := s.view()
	defer unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	st.users[u.ID] = u
	return u
}

func (s *Store) PutSession(v models.ViewSession) models.ViewSession {
	st, unlock := s.view()
	defer unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	st.sessions[v.ID] = v
	return v
}

func (s *Store) CampaignSnapshot(id uuid.UUID) models.Campaign {
	st, unlock := s.view()
	defer unlock()
	return st.campaigns[id]
}

func (s *Store) PostSnapshot(id uuid.UUID) models.Post {
	st, unlock := s.view()
	defer unlock()
	return st.posts[id]
}

func (s *Store) UserSnapshot(id uuid.UUID) models.User {
	st, unlock := s.view()
	defer unlock()
	return st.users[id]
}

func (s *Store) SessionSnapshot(id uuid.UUID) (models.ViewSession, bool) {
	st, unlock := s.view()
	defer unlock()
	v, ok := st.sessions[id]
	return v, ok
}

// SessionsFor lists every session row for a target and viewer.
func (s *Store) SessionsFor(target models.Target, viewerID uuid.UUID) []models.ViewSession {
	st, unlock := s.view()
	defer unlock()
	var out []models.ViewSession
	for _, v := range st.sessions {
		if v.Target() == target && v.ViewerUserID == viewerID {
			out = append(out, v)
		}
	}
	return out
}

func (s *Store) EarningsSnapshot() []models.Earning {
	st, unlock := s.view()
	defer unlock()
	return append([]models.Earning(nil), st.earnings...)
}

func (s *Store) AuditSnapshot() []models.AuditLog {
	st, unlock := s.view()
	defer unlock()
	return append([]models.AuditLog(nil), st.audit...)
}

// --- campaigns ---

type campaignRepo struct{ s *Store }

func (r campaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	st, unlock := r.s.view()
	defer unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	st.campaigns[c.ID] = *c
	return nil
}

func (r campaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	st, unlock := r.s.view()
	defer unlock()
	c, ok := st.campaigns[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &c, nil
}

func (r campaignRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return r.GetByID(ctx, id)
}

func (r campaignRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.Campaign, error) {
	st, unlock := r.s.view()
	defer unlock()
	var out []models.Campaign
	for _, c := range st.campaigns {
		if c.OwnerUserID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r campaignRepo) ListExhausted(ctx context.Context, limit int) ([]models.Campaign, error) {
	st, unlock := r.s.view()
	defer unlock()
	var out []models.Campaign
	for _, c := range st.campaigns {
		if c.Status == models.CampaignStatusActive && !c.CanCoverView() {
			out = append(out, c)
		}
	}
	return page(out, limit, 0), nil
}

func (r campaignRepo) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	st, unlock := r.s.view()
	defer unlock()
	p, ok := st.posts[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &p, nil
}

func (r campaignRepo) DebitView(ctx context.Context, id uuid.UUID, cpvCents int64) (*models.Campaign, error) {
	st, unlock := r.s.view()
	defer unlock()
	c, ok := st.campaigns[id]
	if !ok || c.Status != models.CampaignStatusActive || c.CPVCents != cpvCents || c.RemainingCents() < cpvCents {
		return nil, ports.ErrInsufficientBudget
	}
	c.SpentCents += cpvCents
	c.Impressions++
	c.UpdatedAt = time.Now().UTC()
	st.campaigns[id] = c
	return &c, nil
}

func (r campaignRepo) Pause(ctx context.Context, id uuid.UUID) (bool, error) {
	st, unlock := r.s.view()
	defer unlock()
	c, ok := st.campaigns[id]
	if !ok || c.Status != models.CampaignStatusActive {
		return false, nil
	}
	c.Status = models.CampaignStatusPaused
	st.campaigns[id] = c
	return true, nil
}

func (r campaignRepo) Resume(ctx context.Context, id uuid.UUID) (bool, error) {
	st, unlock := r.s.view()
	defer unlock()
	c, ok := st.campaigns[id]
	if !ok || c.Status != models.CampaignStatusPaused || !c.CanCoverView() {
		return false, nil
	}
	c.Status = models.CampaignStatusActive
	st.campaigns[id] = c
	return true, nil
}

func (r campaignRepo) UnpromotePosts(ctx context.Context, campaignID uuid.UUID) (int64, error) {
	st, unlock := r.s.view()
	defer unlock()
	var n int64
	for id, p := range st.posts {
		if p.CampaignID != nil && *p.CampaignID == campaignID && p.IsPromoted {
			p.IsPromoted = false
			st.posts[id] = p
			n++
		}
	}
	return n, nil
}

// --- view sessions ---

type sessionRepo struct{ s *Store }

func (r sessionRepo) HasSettled(ctx context.Context, target models.Target, viewerID uuid.UUID) (bool, error) {
	st, unlock := r.s.view()
	defer unlock()
	for _, v := range st.sessions {
		if v.Target() == target && v.ViewerUserID == viewerID && v.Status == models.ViewStatusSettled {
			return true, nil
		}
	}
	return false, nil
}

func (r sessionRepo) CountSettledSince(ctx context.Context, viewerID uuid.UUID, since time.Time) (int, error) {
	st, unlock := r.s.view()
	defer unlock()
	n := 0
	for _, v := range st.sessions {
		if v.ViewerUserID == viewerID && v.Status == models.ViewStatusSettled && !v.StartedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r sessionRepo) UpsertPending(ctx context.Context, s *models.ViewSession) error {
	st, unlock := r.s.view()
	defer unlock()
	for id, v := range st.sessions {
		if v.Target() != s.Target() || v.ViewerUserID != s.ViewerUserID {
			continue
		}
		if !models.IsValidViewTransition(v.Status, models.ViewStatusPending) {
			return ports.ErrAlreadySettled
		}
		v.StartedAt = s.StartedAt
		v.DwellSeconds = 0
		v.CampaignID = s.CampaignID
		st.sessions[id] = v
		*s = v
		return nil
	}
	s.ID = uuid.New()
	s.Status = models.ViewStatusPending
	s.DwellSeconds = 0
	s.EarnedCents = 0
	st.sessions[s.ID] = *s
	return nil
}

func (r sessionRepo) GetPending(ctx context.Context, id, viewerID uuid.UUID) (*models.ViewSession, error) {
	st, unlock := r.s.view()
	defer unlock()
	v, ok := st.sessions[id]
	if !ok || v.ViewerUserID != viewerID || !v.IsPending() {
		return nil, ports.ErrNotFound
	}
	return &v, nil
}

func (r sessionRepo) MarkSettled(ctx context.Context, id, viewerID uuid.UUID, earnedCents, dwellSeconds int64, settledAt time.Time) error {
	st, unlock := r.s.view()
	defer unlock()
	v, ok := st.sessions[id]
	if !ok || v.ViewerUserID != viewerID || !models.IsValidViewTransition(v.Status, models.ViewStatusSettled) {
		return ports.ErrNotFound
	}
	v.Status = models.ViewStatusSettled
	v.EarnedCents = earnedCents
	v.DwellSeconds = dwellSeconds
	v.SettledAt = &settledAt
	st.sessions[id] = v
	return nil
}

func (r sessionRepo) DeleteStalePending(ctx context.Context, startedBefore time.Time) (int64, error) {
	st, unlock := r.s.view()
	defer unlock()
	var n int64
	for id, v := range st.sessions {
		if v.Status == models.ViewStatusPending && v.StartedAt.Before(startedBefore) {
			delete(st.sessions, id)
			n++
		}
	}
	return n, nil
}

// --- ledger ---

type ledgerRepo struct{ s *Store }

func (r ledgerRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	st, unlock := r.s.view()
	defer unlock()
	u, ok := st.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &u, nil
}

func (r ledgerRepo) CreditBalance(ctx context.Context, userID uuid.UUID, cents int64) (int64, error) {
	st, unlock := r.s.view()
	defer unlock()
	u, ok := st.users[userID]
	if !ok {
		return 0, ports.ErrNotFound
	}
	u.BalanceCents += cents
	st.users[userID] = u
	return u.BalanceCents, nil
}

func (r ledgerRepo) InsertEarning(ctx context.Context, e *models.Earning) error {
	st, unlock := r.s.view()
	defer unlock()
	e.ID = uuid.New()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	st.earnings = append(st.earnings, *e)
	return nil
}

func (r ledgerRepo) ListEarnings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Earning, error) {
	st, unlock := r.s.view()
	defer unlock()
	var out []models.Earning
	for i := len(st.earnings) - 1; i >= 0; i-- {
		if st.earnings[i].UserID == userID {
			out = append(out, st.earnings[i])
		}
	}
	return page(out, limit, offset), nil
}

// --- audit ---

type auditRepo struct{ s *Store }

func (r auditRepo) Log(ctx context.Context, entry models.AuditLog) error {
	st, unlock := r.s.view()
	defer unlock()
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()
	st.audit = append(st.audit, entry)
	return nil
}

func (r auditRepo) GetByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	st, unlock := r.s.view()
	defer unlock()
	var out []models.AuditLog
	for i := len(st.audit) - 1; i >= 0; i-- {
		l := st.audit[i]
		if l.EntityType == entityType && l.EntityID != nil && *l.EntityID == entityID {
			out = append(out, l)
		}
	}
	return page(out, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
