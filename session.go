package companionsdk

import (
	"fmt"
	"sync"
	"time"
)

// Clock returns the current time. Injectable for deterministic tests.
type Clock func() time.Time

// ──────────────────────────────────────────────
// Session: serialized load -> engine -> save
// ──────────────────────────────────────────────

// Session wraps a StateStore with a per-user mutex so concurrent requests
// for the same user cannot race on the state blob. The engines themselves
// are pure; this is the single place where the read-modify-write cycle is
// made safe.
type Session struct {
	store      StateStore
	clock      Clock
	classifier Classifier

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithClock injects a time source.
func WithClock(clock Clock) SessionOption {
	return func(s *Session) { s.clock = clock }
}

// WithClassifier injects a custom signal classifier.
func WithClassifier(c Classifier) SessionOption {
	return func(s *Session) { s.classifier = c }
}

// NewSession creates a session over the given store. Defaults: wall clock,
// keyword classifier.
func NewSession(store StateStore, opts ...SessionOption) *Session {
	s := &Session{
		store:      store,
		clock:      time.Now,
		classifier: NewKeywordClassifier(),
		locks:      make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) lockFor(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// Update runs fn inside the user's serialized load-modify-save cycle and
// persists the result. fn receives a fully normalized state.
func (s *Session) Update(userID string, fn func(*CompanionState)) (*CompanionState, error) {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	fn(state)
	blob, err := MarshalState(state)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(userID, blob); err != nil {
		return nil, fmt.Errorf("save state for %s: %w", userID, err)
	}
	return state, nil
}

// View runs fn on a read-only copy of the user's state without persisting.
func (s *Session) View(userID string, fn func(*CompanionState)) error {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.load(userID)
	if err != nil {
		return err
	}
	fn(state)
	return nil
}

func (s *Session) load(userID string) (*CompanionState, error) {
	blob, err := s.store.Load(userID)
	if err != nil {
		return nil, fmt.Errorf("load state for %s: %w", userID, err)
	}
	return UnmarshalState(blob, s.clock())
}

// ──────────────────────────────────────────────
// Interaction pipeline
// ──────────────────────────────────────────────

// InteractionResult summarizes what one message changed.
type InteractionResult struct {
	Signals       InteractionSignals
	ChangedTraits []Trait
	Stage         Stage
	Milestones    []Milestone // milestones appended by this interaction
	Gap           GapContext
	Snapshot      TemporalSnapshot
}

// RecordMessage runs the full inbound pipeline for one user message:
// classify → personality update → relationship update → activity tracking,
// all inside a single serialized cycle.
func (s *Session) RecordMessage(userID, text string, meta ConversationMeta) (*InteractionResult, error) {
	now := s.clock()
	result := &InteractionResult{}

	_, err := s.Update(userID, func(state *CompanionState) {
		sig := s.classifier.Classify(text, meta)
		result.Signals = sig
		result.Gap = GapContextFor(state.LastInteraction, now)

		before := len(state.Relationship.Milestones)
		result.ChangedTraits = state.Personality.UpdateFromInteraction(sig, now)
		state.Relationship.RecordInteraction(sig, now)
		state.Activity.Track(now)
		state.LastInteraction = now.Format(time.RFC3339)

		result.Stage = state.Relationship.Stage
		result.Milestones = append(result.Milestones, state.Relationship.Milestones[before:]...)
		result.Snapshot = SnapshotAt(now, state.Activity)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reset restores a user's personality to defaults while keeping the
// relationship history, as an explicit operation only.
func (s *Session) Reset(userID string) error {
	_, err := s.Update(userID, func(state *CompanionState) {
		state.Personality.Traits.Reset()
		state.Personality.Moods = nil
	})
	return err
}
