// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

package concierge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/concierge/internal/catalog"
	"github.com/tomtom215/concierge/internal/metrics"
	"github.com/tomtom215/concierge/internal/nlu"
	"github.com/tomtom215/concierge/internal/safety"
	"github.com/tomtom215/concierge/internal/session"
)

// turnState tracks the strictly forward state machine of one turn.
type turnState int

// Turn states, in transition order.
const (
	stateValidating turnState = iota
	stateClassifying
	stateContextLoaded
	stateWorkersRunning
	stateAggregating
	stateSanitizing
	statePersisted
	stateResponded
)

var turnStateNames = map[turnState]string{
	stateValidating:     "validating",
	stateClassifying:    "classifying",
	stateContextLoaded:  "context_loaded",
	stateWorkersRunning: "workers_running",
	stateAggregating:    "aggregating",
	stateSanitizing:     "sanitizing",
	statePersisted:      "persisted",
	stateResponded:      "responded",
}

func (s turnState) String() string { return turnStateNames[s] }

// ErrDisabled is returned when the concierge feature switch is off.
var ErrDisabled = errors.New("concierge: feature disabled")

// InputRejectedError reports an input-rejection outcome. Nothing was
// mutated when this is returned.
type InputRejectedError struct {
	// Reason is the safety category that triggered the rejection.
	Reason string
}

func (e *InputRejectedError) Error() string {
	return "concierge: input rejected: " + e.Reason
}

// QuotaExceededError reports the capacity outcome with the reset time.
type QuotaExceededError struct {
	// Status carries used/limit/resetsAt for the caller's countdown.
	Status session.QuotaStatus
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("concierge: daily limit of %d reached", e.Status.Limit)
}

// Config controls the orchestrator's feature switches.
type Config struct {
	// Enabled gates the whole concierge feature.
	Enabled bool

	// GenerationProvider names a backing language-generation provider.
	// Empty means none is configured and the deterministic rules path
	// produces all reasoning, flagged via FallbackUsed.
	GenerationProvider string
}

// Orchestrator drives one turn through the per-turn state machine,
// dispatching to capability workers and aggregating whatever they
// contribute. Safe for concurrent use across sessions; turns within
// one session are serialized by the session manager.
type Orchestrator struct {
	cfg        Config
	classifier *nlu.Classifier
	extractor  *nlu.Extractor
	filter     *safety.Filter
	sessions   *session.Manager
	workers    *workers
	store      catalog.Store
	telemetry  *Telemetry
	logger     zerolog.Logger

	// dispatch is the closed intent table. Every intent has an entry;
	// construction fails loudly if one is missing.
	dispatch map[nlu.Intent]func(ctx context.Context, turn *turn) *WorkerResult
}

// turn is the mutable state threaded through one orchestration pass.
type turn struct {
	req       Request
	cls       *nlu.Classification
	cleanText string
	sess      *session.Session
	tier      session.Tier
	quota     session.QuotaStatus
	taste     *TasteProfile
	results   []WorkerResult
	degraded  bool
}

// New wires an orchestrator.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, sessions *session.Manager, index catalog.SearchIndex, store catalog.Store, metadata catalog.MetadataProvider, cache *catalog.ResultCache, filter *safety.Filter, telemetry *Telemetry, logger zerolog.Logger) *Orchestrator {
	extractor := nlu.NewExtractor()
	log := logger.With().Str("component", "orchestrator").Logger()

	o := &Orchestrator{
		cfg:        cfg,
		classifier: nlu.NewClassifier(extractor),
		extractor:  extractor,
		filter:     filter,
		sessions:   sessions,
		workers:    newWorkers(index, store, metadata, cache, filter, log),
		store:      store,
		telemetry:  telemetry,
		logger:     log,
	}

	// One entry per intent. Search is the generic fallback shape, so
	// recommendation/preference/social turns reuse it to gather
	// candidates for the ranking core.
	o.dispatch = map[nlu.Intent]func(ctx context.Context, t *turn) *WorkerResult{
		nlu.IntentSearch:          o.dispatchSearch,
		nlu.IntentAvailability:    o.dispatchAvailability,
		nlu.IntentRecommendations: o.dispatchSearch,
		nlu.IntentPreferences:     o.dispatchPreferenceUpdate,
		nlu.IntentSocial:          o.dispatchSearch,
	}

	return o
}

// FallbackUsed reports whether responses are produced by the
// deterministic rules path rather than a generation provider.
func (o *Orchestrator) FallbackUsed() bool {
	return o.cfg.GenerationProvider == ""
}

// Enabled reports the feature switch.
func (o *Orchestrator) Enabled() bool {
	return o.cfg.Enabled
}

// Telemetry exposes the injected aggregator.
func (o *Orchestrator) Telemetry() *Telemetry {
	return o.telemetry
}

// Extractor exposes the entity extractor for the parse utility
// endpoint.
func (o *Orchestrator) Extractor() *nlu.Extractor {
	return o.extractor
}

// HandleTurn runs one complete turn. The only errors returned are
// input-rejection, capacity, feature-disabled, and session-busy;
// everything else degrades into a partial response.
func (o *Orchestrator) HandleTurn(ctx context.Context, req Request) (*Response, error) {
	started := time.Now()

	resp, err := o.process(ctx, req, started)
	if err != nil {
		o.recordFailure(err, started)
		return nil, err
	}
	return resp, nil
}

// process walks the state machine for one turn.
func (o *Orchestrator) process(ctx context.Context, req Request, started time.Time) (*Response, error) {
	t := &turn{req: req}

	// Validating: unsafe input is rejected before any state changes.
	o.transition(stateValidating)
	if !o.cfg.Enabled {
		return nil, ErrDisabled
	}
	if check := o.filter.CheckInput(req.Message); !check.Safe {
		o.telemetry.RecordSafetyBlock()
		metrics.RecordSafetyBlock(check.Reason)
		return nil, &InputRejectedError{Reason: check.Reason}
	}

	// Classifying.
	o.transition(stateClassifying)
	cls := o.classifier.Classify(req.Message)
	t.cls = &cls
	t.cleanText = o.extractor.Strip(req.Message)

	// ContextLoaded: session, serialization, and quota.
	o.transition(stateContextLoaded)
	if err := o.loadContext(ctx, t); err != nil {
		return nil, err
	}
	defer o.sessions.FinishTurn(t.sess.ID)

	// WorkersRunning: Preferences always runs; the intent-specific
	// worker runs concurrently with it (no data dependency).
	o.transition(stateWorkersRunning)
	intentResult := o.runWorkers(ctx, t)

	// Aggregating: Recommendations always runs, fed whatever the turn
	// produced, making it the universal fallback response type.
	o.transition(stateAggregating)
	recResult := o.workers.runRecommendations(ctx, intentResult.Titles, t.taste, o.region(t))
	o.collect(t, recResult)

	// Sanitizing: reasoning and follow-ups, output-checked.
	o.transition(stateSanitizing)
	reasoning := o.reasoning(t, &intentResult, &recResult)
	followUps := followUpQuestions(t.cls)

	// A canceled stream must not persist the partial assistant turn.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Persisted.
	o.transition(statePersisted)
	o.persistTurn(ctx, t, reasoning)

	// Responded.
	o.transition(stateResponded)
	resp := &Response{
		SessionID:         t.sess.ID,
		TurnNumber:        t.sess.Context.TurnNumber,
		Intent:            t.cls.Intent,
		Reasoning:         reasoning,
		Recommendations:   recResult.Recommendations,
		Availability:      intentResult.Availability,
		FollowUpQuestions: followUps,
		Quota:             t.quota,
		Degraded:          t.degraded,
		FallbackUsed:      o.FallbackUsed() || recResult.FallbackUsed,
	}
	if resp.Recommendations == nil {
		resp.Recommendations = []Recommendation{}
	}

	outcome := "ok"
	if t.degraded {
		outcome = "degraded"
	}
	o.telemetry.RecordTurn(t.cls.Intent.String(), outcome, time.Since(started))
	metrics.RecordTurn(t.cls.Intent.String(), outcome, time.Since(started))

	o.logger.Info().
		Str("session_id", t.sess.ID).
		Str("intent", t.cls.Intent.String()).
		Int("turn", resp.TurnNumber).
		Int("recommendations", len(resp.Recommendations)).
		Bool("degraded", t.degraded).
		Dur("latency", time.Since(started)).
		Msg("turn completed")

	return resp, nil
}

// loadContext loads or creates the session, serializes the turn, and
// enforces the daily quota.
func (o *Orchestrator) loadContext(ctx context.Context, t *turn) error {
	sess, err := o.sessions.Load(ctx, t.req.SessionID)
	if err != nil {
		// Unknown or expired sessions start over transparently.
		sess, err = o.sessions.Create(ctx, t.req.ProfileID, "", nil)
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		o.seedFromProfile(ctx, sess, t.req.ProfileID)
		metrics.SessionsCreated.Inc()
	}
	t.sess = sess

	if err := o.sessions.BeginTurn(sess.ID); err != nil {
		metrics.SessionsBusy.Inc()
		return err
	}

	t.tier = o.tierFor(ctx, t.req.ProfileID)
	subject := t.req.ProfileID
	if subject == "" {
		subject = sess.ID
	}

	// Any exit past BeginTurn that does not hand off to process (which
	// owns the deferred FinishTurn) must release the marker itself, or
	// the session stays busy forever.
	quota, err := o.sessions.ConsumeQuota(ctx, subject, t.tier)
	if err != nil {
		o.sessions.FinishTurn(sess.ID)
		return fmt.Errorf("consume quota: %w", err)
	}
	if !quota.Allowed {
		o.sessions.FinishTurn(sess.ID)
		o.telemetry.RecordQuotaRejection()
		metrics.RecordQuotaRejection(string(t.tier))
		return &QuotaExceededError{Status: quota}
	}

	t.quota = quota
	return nil
}

// runWorkers executes Preferences concurrently with the intent-specific
// worker and joins both before returning.
func (o *Orchestrator) runWorkers(ctx context.Context, t *turn) WorkerResult {
	var (
		wg           sync.WaitGroup
		prefResult   WorkerResult
		intentResult *WorkerResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		prefResult = o.workers.runPreferences(ctx, t.req.ProfileID, t.sess.Context.Subscriptions)
	}()
	go func() {
		defer wg.Done()
		intentResult = o.dispatch[t.cls.Intent](ctx, t)
	}()
	wg.Wait()

	o.collect(t, prefResult)
	o.collect(t, *intentResult)

	t.taste = prefResult.Preferences
	if t.taste == nil {
		t.taste = coldStartTaste(t.sess.Context.Subscriptions)
	}
	if len(t.taste.Subscriptions) == 0 {
		t.taste.Subscriptions = t.sess.Context.Subscriptions
	}

	return *intentResult
}

// dispatchSearch handles search-shaped intents.
func (o *Orchestrator) dispatchSearch(ctx context.Context, t *turn) *WorkerResult {
	result := o.workers.runSearch(ctx, t.cls, t.cleanText, o.region(t))
	return &result
}

// dispatchAvailability handles availability intents.
func (o *Orchestrator) dispatchAvailability(ctx context.Context, t *turn) *WorkerResult {
	result := o.workers.runAvailability(ctx, t.cls, o.region(t), t.sess.Context.Subscriptions)
	return &result
}

// dispatchPreferenceUpdate handles preference turns: extracted genres
// and moods are written to the profile, then echoed back.
func (o *Orchestrator) dispatchPreferenceUpdate(ctx context.Context, t *turn) *WorkerResult {
	result := WorkerResult{Worker: WorkerPreferences, Success: true}

	if t.req.ProfileID == "" {
		result.Message = "Sign in to save your preferences; I'll still use them for this conversation."
		return &result
	}

	profile, err := o.store.Profile(ctx, t.req.ProfileID)
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		return &result
	}

	prefs := profile.Preferences
	prefs.Genres = mergeUnique(prefs.Genres, t.cls.Entities.Genres)
	prefs.Moods = mergeUnique(prefs.Moods, t.cls.Entities.Moods)

	if err := o.store.UpdatePreferences(ctx, t.req.ProfileID, prefs); err != nil {
		result.Success = false
		result.Error = err.Error()
		return &result
	}

	result.Message = "Got it, I've updated your taste profile."
	return &result
}

// reasoning builds the top-level explanation and output-checks it. A
// flagged reasoning string is replaced by the filter's safe variant.
func (o *Orchestrator) reasoning(t *turn, intentResult, recResult *WorkerResult) string {
	var text string

	switch {
	case t.cls.Intent == nlu.IntentAvailability && len(intentResult.Availability) > 0:
		row := intentResult.Availability[0]
		text = fmt.Sprintf("%s is streaming on %s.", row.Title, row.Service)
	case t.cls.Intent == nlu.IntentAvailability && intentResult.Message != "":
		text = intentResult.Message
	case t.cls.Intent == nlu.IntentAvailability:
		text = "I couldn't find that title on any service in your region, but here are some picks you can watch right now."
	case intentResult.Message != "":
		text = intentResult.Message
	case t.taste != nil && t.taste.ColdStart && len(recResult.Recommendations) > 0:
		text = fmt.Sprintf("I picked %d highly rated titles to get us started; tell me what you enjoy and I'll personalize from there.", len(recResult.Recommendations))
	case len(recResult.Recommendations) > 0:
		text = fmt.Sprintf("Here are %d picks matched to your taste.", len(recResult.Recommendations))
	default:
		text = "I couldn't find a good match for that. Try a genre, a mood, or a title."
	}

	check := o.filter.CheckOutput(text)
	if !check.Safe {
		metrics.OutputRedactions.Inc()
		if check.Filtered != "" {
			return o.filter.SanitizeReason(check.Filtered)
		}
		return "Here's what I found."
	}
	return o.filter.SanitizeReason(text)
}

// persistTurn appends the exchange. Persistence failure degrades the
// turn rather than failing it; the response is already assembled.
func (o *Orchestrator) persistTurn(ctx context.Context, t *turn, reasoning string) {
	now := time.Now().UTC()
	user := session.Turn{Role: session.RoleUser, Text: t.req.Message, Intent: t.cls.Intent.String(), Timestamp: now}
	assistant := session.Turn{Role: session.RoleAssistant, Text: reasoning, Timestamp: now}

	if err := o.sessions.AppendTurn(ctx, t.sess, user, assistant); err != nil {
		t.degraded = true
		o.logger.Error().Err(err).Str("session_id", t.sess.ID).Msg("turn persistence failed")
	}
}

// collect folds a worker result into the turn.
func (o *Orchestrator) collect(t *turn, result WorkerResult) {
	t.results = append(t.results, result)
	if !result.Success || result.FallbackUsed {
		t.degraded = true
	}
	if !result.Success {
		o.telemetry.RecordWorkerFailure(result.Worker)
	}
}

// region resolves the effective region: entity override, then session.
func (o *Orchestrator) region(t *turn) string {
	if t.cls.Entities.Region != "" {
		return t.cls.Entities.Region
	}
	return t.sess.Context.Region
}

// tierFor resolves the quota tier from the profile, defaulting to free.
func (o *Orchestrator) tierFor(ctx context.Context, profileID string) session.Tier {
	if profileID == "" {
		return session.TierFree
	}
	profile, err := o.store.Profile(ctx, profileID)
	if err != nil || profile.Tier != string(session.TierPremium) {
		return session.TierFree
	}
	return session.TierPremium
}

// seedFromProfile copies region and subscriptions onto a fresh session.
func (o *Orchestrator) seedFromProfile(ctx context.Context, sess *session.Session, profileID string) {
	if profileID == "" {
		return
	}
	profile, err := o.store.Profile(ctx, profileID)
	if err != nil {
		return
	}
	sess.Context.Region = profile.Region
	sess.Context.Subscriptions = profile.Subscriptions
}

// transition advances the state machine, for trace-level debugging.
func (o *Orchestrator) transition(next turnState) {
	o.logger.Trace().Str("state", next.String()).Msg("turn state")
}

// recordFailure classifies a failed turn for telemetry.
func (o *Orchestrator) recordFailure(err error, started time.Time) {
	outcome := "error"

	var rejected *InputRejectedError
	var quota *QuotaExceededError
	switch {
	case errors.As(err, &rejected):
		outcome = "blocked"
	case errors.As(err, &quota):
		outcome = "blocked"
	case errors.Is(err, ErrDisabled), errors.Is(err, session.ErrBusy):
		outcome = "blocked"
	}

	o.telemetry.RecordTurn("unknown", outcome, time.Since(started))
	metrics.RecordTurn("unknown", outcome, time.Since(started))
}

// mergeUnique appends items not already present, case-insensitively.
func mergeUnique(base, extra []string) []string {
	for _, item := range extra {
		if !containsFold(base, item) {
			base = append(base, item)
		}
	}
	return base
}
