// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

// Package session owns per-conversation state and per-day usage quotas,
// backed by the shared key-value store. Turns within one conversation
// are strictly serialized: a second message for an in-flight session is
// rejected rather than interleaved, preserving turn-number monotonicity.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/concierge/internal/store"
)

// Sentinel errors surfaced to the orchestrator.
var (
	// ErrNotFound indicates the session does not exist or has expired.
	ErrNotFound = errors.New("session: not found")

	// ErrBusy indicates a turn is already in flight for the session.
	ErrBusy = errors.New("session: turn already in flight")
)

// Key prefixes in the shared store.
const (
	sessionKeyPrefix = "session:"
	quotaKeyPrefix   = "quota:"
)

// Config controls session lifetime, history size, and quota limits.
type Config struct {
	// TTL is the idle time after which a session expires.
	TTL time.Duration

	// HistoryLimit caps the number of retained turns per conversation.
	HistoryLimit int

	// FreeDailyLimit is the daily request allowance for the free tier.
	FreeDailyLimit int64

	// PremiumDailyLimit is the daily allowance for premium.
	// Zero means unlimited.
	PremiumDailyLimit int64
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		TTL:               30 * time.Minute,
		HistoryLimit:      20,
		FreeDailyLimit:    25,
		PremiumDailyLimit: 0,
	}
}

// Manager provides session lifecycle and quota operations.
// Safe for concurrent use.
type Manager struct {
	store  *store.Store
	cfg    Config
	logger zerolog.Logger

	// inflight tracks sessions with a turn currently being processed.
	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// NewManager creates a session manager on top of the shared store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewManager(st *store.Store, cfg Config, logger zerolog.Logger) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}

	return &Manager{
		store:    st,
		cfg:      cfg,
		logger:   logger.With().Str("component", "session").Logger(),
		inflight: make(map[string]struct{}),
	}
}

// Create starts a new session with a fresh conversation context.
func (m *Manager) Create(ctx context.Context, profileID, region string, subscriptions []string) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		ID: uuid.New().String(),
		Context: Context{
			ConversationID: uuid.New().String(),
			TurnNumber:     0,
			ProfileID:      profileID,
			Region:         region,
			Subscriptions:  subscriptions,
		},
		CreatedAt:  now,
		LastActive: now,
	}

	if err := m.persist(ctx, sess); err != nil {
		return nil, err
	}

	m.logger.Debug().
		Str("session_id", sess.ID).
		Str("profile_id", profileID).
		Msg("session created")

	return sess, nil
}

// Load retrieves a session by ID. Expired or unknown sessions return
// ErrNotFound; callers create a replacement transparently.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	var sess Session
	err := m.store.Get(ctx, sessionKeyPrefix+id, &sess)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if time.Since(sess.LastActive) > m.cfg.TTL {
		return nil, ErrNotFound
	}

	return &sess, nil
}

// AppendTurn records one completed exchange: the user turn and the
// assistant turn. The turn number increases strictly; history beyond
// the configured cap is evicted oldest-first. The session TTL is
// refreshed on persist.
func (m *Manager) AppendTurn(ctx context.Context, sess *Session, user, assistant Turn) error {
	sess.Context.TurnNumber++
	sess.Context.History = append(sess.Context.History, user, assistant)

	if excess := len(sess.Context.History) - m.cfg.HistoryLimit; excess > 0 {
		sess.Context.History = sess.Context.History[excess:]
	}

	sess.LastActive = time.Now().UTC()
	return m.persist(ctx, sess)
}

// End deletes a session. Idempotent: ending an unknown or already
// expired session succeeds.
func (m *Manager) End(ctx context.Context, id string) error {
	return m.store.Delete(ctx, sessionKeyPrefix+id)
}

// BeginTurn marks a session as having a turn in flight. Returns ErrBusy
// when another turn for the same session has not finished; callers must
// not interleave turns.
func (m *Manager) BeginTurn(id string) error {
	m.inflightMu.Lock()
	defer m.inflightMu.Unlock()

	if _, busy := m.inflight[id]; busy {
		return ErrBusy
	}
	m.inflight[id] = struct{}{}
	return nil
}

// FinishTurn releases the in-flight marker set by BeginTurn.
func (m *Manager) FinishTurn(id string) {
	m.inflightMu.Lock()
	defer m.inflightMu.Unlock()
	delete(m.inflight, id)
}

// CheckQuota reports quota standing for the subject (a profile or
// session key) on the current UTC day.
func (m *Manager) CheckQuota(ctx context.Context, subject string, tier Tier) (QuotaStatus, error) {
	limit := m.limitFor(tier)
	status := QuotaStatus{
		Allowed:  true,
		Limit:    limit,
		Tier:     tier,
		ResetsAt: nextUTCMidnight(time.Now().UTC()),
	}

	used, err := m.store.GetCounter(ctx, m.quotaKey(subject, tier))
	if err != nil {
		return status, fmt.Errorf("check quota: %w", err)
	}

	status.Used = used
	if limit > 0 {
		status.Remaining = max64(limit-used, 0)
		status.Allowed = used < limit
	}

	return status, nil
}

// ConsumeQuota atomically consumes one unit of today's allowance and
// reports the resulting standing. The increment happens before the
// limit check, so two racing requests at the boundary cannot both be
// admitted. The counter expires on its own shortly after the reset
// boundary.
func (m *Manager) ConsumeQuota(ctx context.Context, subject string, tier Tier) (QuotaStatus, error) {
	limit := m.limitFor(tier)
	status := QuotaStatus{
		Allowed:  true,
		Limit:    limit,
		Tier:     tier,
		ResetsAt: nextUTCMidnight(time.Now().UTC()),
	}

	used, err := m.store.Increment(ctx, m.quotaKey(subject, tier), 48*time.Hour)
	if err != nil {
		return status, fmt.Errorf("consume quota: %w", err)
	}

	status.Used = used
	if limit > 0 {
		status.Remaining = max64(limit-used, 0)
		status.Allowed = used <= limit
	}

	return status, nil
}

// persist writes the session with a refreshed TTL.
func (m *Manager) persist(ctx context.Context, sess *Session) error {
	if err := m.store.SetTTL(ctx, sessionKeyPrefix+sess.ID, sess, m.cfg.TTL); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// quotaKey builds the per-day counter key. The UTC day stamp makes the
// daily reset implicit: a new day reads a fresh key.
func (m *Manager) quotaKey(subject string, tier Tier) string {
	day := time.Now().UTC().Format("2006-01-02")
	return quotaKeyPrefix + string(tier) + ":" + subject + ":" + day
}

// limitFor returns the daily allowance for a tier. Zero means unlimited.
func (m *Manager) limitFor(tier Tier) int64 {
	switch tier {
	case TierPremium:
		return m.cfg.PremiumDailyLimit
	default:
		return m.cfg.FreeDailyLimit
	}
}

// nextUTCMidnight returns the next daily reset boundary after now.
func nextUTCMidnight(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

// max64 returns the larger of a and b.
func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
