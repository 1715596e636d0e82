// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/concierge/internal/store"
)

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()

	st, err := store.Open(store.Options{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return NewManager(st, cfg, zerolog.Nop())
}

func TestCreateAndLoadSession(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	ctx := context.Background()

	created, err := m.Create(ctx, "profile-1", "US", []string{"Netflix"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create returned empty session ID")
	}
	if created.Context.TurnNumber != 0 {
		t.Errorf("TurnNumber = %d, want 0", created.Context.TurnNumber)
	}

	loaded, err := m.Load(ctx, created.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Context.ProfileID != "profile-1" {
		t.Errorf("ProfileID = %q, want profile-1", loaded.Context.ProfileID)
	}
	if loaded.Context.Region != "US" {
		t.Errorf("Region = %q, want US", loaded.Context.Region)
	}
}

func TestLoadUnknownSession(t *testing.T) {
	m := newTestManager(t, DefaultConfig())

	if _, err := m.Load(context.Background(), "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(unknown) = %v, want ErrNotFound", err)
	}
}

func TestAppendTurnIncrementsStrictly(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	ctx := context.Background()

	sess, err := m.Create(ctx, "", "US", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for want := 1; want <= 3; want++ {
		user := Turn{Role: RoleUser, Text: "hello", Intent: "search", Timestamp: time.Now()}
		assistant := Turn{Role: RoleAssistant, Text: "hi", Timestamp: time.Now()}
		if err := m.AppendTurn(ctx, sess, user, assistant); err != nil {
			t.Fatalf("AppendTurn: %v", err)
		}
		if sess.Context.TurnNumber != want {
			t.Errorf("TurnNumber = %d, want %d", sess.Context.TurnNumber, want)
		}
	}

	loaded, err := m.Load(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Context.TurnNumber != 3 {
		t.Errorf("persisted TurnNumber = %d, want 3", loaded.Context.TurnNumber)
	}
	if len(loaded.Context.History) != 6 {
		t.Errorf("History length = %d, want 6", len(loaded.Context.History))
	}
}

func TestHistoryEvictionOldestFirst(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryLimit = 4
	m := newTestManager(t, cfg)
	ctx := context.Background()

	sess, _ := m.Create(ctx, "", "", nil)

	for i := 0; i < 5; i++ {
		user := Turn{Role: RoleUser, Text: "msg", Timestamp: time.Now()}
		assistant := Turn{Role: RoleAssistant, Text: "reply", Timestamp: time.Now()}
		if err := m.AppendTurn(ctx, sess, user, assistant); err != nil {
			t.Fatalf("AppendTurn: %v", err)
		}
	}

	if len(sess.Context.History) != 4 {
		t.Errorf("History length = %d, want capped at 4", len(sess.Context.History))
	}
	if sess.Context.TurnNumber != 5 {
		t.Errorf("TurnNumber = %d, want 5 (eviction must not affect turn count)", sess.Context.TurnNumber)
	}
}

func TestSessionIdleExpiry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTL = 10 * time.Millisecond
	m := newTestManager(t, cfg)
	ctx := context.Background()

	sess, _ := m.Create(ctx, "", "", nil)
	time.Sleep(25 * time.Millisecond)

	if _, err := m.Load(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(expired) = %v, want ErrNotFound", err)
	}
}

func TestEndIsIdempotent(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	ctx := context.Background()

	sess, _ := m.Create(ctx, "", "", nil)

	if err := m.End(ctx, sess.ID); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := m.End(ctx, sess.ID); err != nil {
		t.Errorf("second End = %v, want nil", err)
	}
	if err := m.End(ctx, "never-existed"); err != nil {
		t.Errorf("End(unknown) = %v, want nil", err)
	}
}

func TestBeginTurnRejectsConcurrentTurn(t *testing.T) {
	m := newTestManager(t, DefaultConfig())

	if err := m.BeginTurn("s1"); err != nil {
		t.Fatalf("BeginTurn: %v", err)
	}
	if err := m.BeginTurn("s1"); !errors.Is(err, ErrBusy) {
		t.Errorf("second BeginTurn = %v, want ErrBusy", err)
	}

	m.FinishTurn("s1")
	if err := m.BeginTurn("s1"); err != nil {
		t.Errorf("BeginTurn after FinishTurn = %v, want nil", err)
	}
}

func TestQuotaExhaustion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FreeDailyLimit = 2
	m := newTestManager(t, cfg)
	ctx := context.Background()

	status, err := m.CheckQuota(ctx, "p1", TierFree)
	if err != nil {
		t.Fatalf("CheckQuota: %v", err)
	}
	if !status.Allowed || status.Remaining != 2 {
		t.Errorf("fresh quota = %+v, want allowed with 2 remaining", status)
	}

	for i := 0; i < 2; i++ {
		status, err = m.ConsumeQuota(ctx, "p1", TierFree)
		if err != nil {
			t.Fatalf("ConsumeQuota: %v", err)
		}
		if !status.Allowed {
			t.Fatalf("ConsumeQuota #%d rejected within the limit: %+v", i+1, status)
		}
	}

	status, err = m.ConsumeQuota(ctx, "p1", TierFree)
	if err != nil {
		t.Fatalf("ConsumeQuota: %v", err)
	}
	if status.Allowed {
		t.Error("quota should be exhausted after limit consumptions")
	}
	if status.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", status.Remaining)
	}
	if !status.ResetsAt.After(time.Now().UTC()) {
		t.Errorf("ResetsAt = %v, want a future reset boundary", status.ResetsAt)
	}
}

func TestPremiumQuotaUnlimited(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		status, err := m.ConsumeQuota(ctx, "p2", TierPremium)
		if err != nil {
			t.Fatalf("ConsumeQuota: %v", err)
		}
		if !status.Allowed {
			t.Fatalf("ConsumeQuota #%d rejected on unlimited tier", i+1)
		}
	}

	status, err := m.CheckQuota(ctx, "p2", TierPremium)
	if err != nil {
		t.Fatalf("CheckQuota: %v", err)
	}
	if !status.Allowed {
		t.Error("premium tier should never be throttled with unlimited config")
	}
	if status.Used != 50 {
		t.Errorf("Used = %d, want 50", status.Used)
	}
}

func TestQuotaSubjectsAreIndependent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FreeDailyLimit = 1
	m := newTestManager(t, cfg)
	ctx := context.Background()

	alice, err := m.ConsumeQuota(ctx, "alice", TierFree)
	if err != nil {
		t.Fatalf("ConsumeQuota: %v", err)
	}
	if !alice.Allowed {
		t.Fatalf("first consumption rejected: %+v", alice)
	}
	if alice, err = m.ConsumeQuota(ctx, "alice", TierFree); err != nil || alice.Allowed {
		t.Errorf("over-limit consumption = %+v, %v; want rejected", alice, err)
	}

	bob, err := m.ConsumeQuota(ctx, "bob", TierFree)
	if err != nil {
		t.Fatalf("ConsumeQuota: %v", err)
	}
	if !bob.Allowed {
		t.Error("one subject's usage must not affect another's quota")
	}
}

func TestQuotaConcurrentConsumption(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FreeDailyLimit = 5
	m := newTestManager(t, cfg)
	ctx := context.Background()

	const attempts = 20
	admitted := make(chan bool, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := m.ConsumeQuota(ctx, "p1", TierFree)
			admitted <- err == nil && status.Allowed
		}()
	}
	wg.Wait()
	close(admitted)

	var count int
	for ok := range admitted {
		if ok {
			count++
		}
	}
	if count != 5 {
		t.Errorf("admitted %d concurrent requests, want exactly the limit of 5", count)
	}
}
