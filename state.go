package companionsdk

import (
	"encoding/json"
	"fmt"
	"time"
)

// ──────────────────────────────────────────────
// Persisted state envelope
// ──────────────────────────────────────────────

// StateVersion is the current serialization version. Version 0 blobs
// (written before the envelope existed) are normalized on read.
const StateVersion = 1

// CompanionState is the complete persisted per-user state: personality,
// relationship, behavior cooldowns and learned activity patterns. Engines
// mutate a deserialized copy for the duration of one request; the caller
// writes the result back (see Session).
type CompanionState struct {
	Version      int                `json:"version"`
	Personality  *PersonalityState  `json:"personality"`
	Relationship *RelationshipState `json:"relationship"`
	Behavior     *BehaviorState     `json:"behavior"`
	Activity     *ActivityPattern   `json:"activity,omitempty"`

	// LastInteraction is the RFC3339 time of the user's last message,
	// consumed by the gap classifier. Empty for brand-new users.
	LastInteraction string `json:"last_interaction,omitempty"`
}

// NewCompanionState creates the default state for a new user.
func NewCompanionState(now time.Time) *CompanionState {
	return &CompanionState{
		Version:      StateVersion,
		Personality:  NewPersonalityState(),
		Relationship: NewRelationshipState(now),
		Behavior:     NewBehaviorState(),
		Activity:     NewActivityPattern(),
	}
}

// MarshalState serializes the state envelope.
func MarshalState(s *CompanionState) ([]byte, error) {
	if s.Version == 0 {
		s.Version = StateVersion
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal companion state: %w", err)
	}
	return data, nil
}

// UnmarshalState deserializes a state blob with migration-on-read: empty
// input yields a fresh default state, version-0 blobs are normalized
// (missing sections filled with defaults, version stamped), and blobs from
// a future version are rejected rather than silently misread.
func UnmarshalState(data []byte, now time.Time) (*CompanionState, error) {
	if len(data) == 0 {
		return NewCompanionState(now), nil
	}
	var s CompanionState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal companion state: %w", err)
	}
	if s.Version > StateVersion {
		return nil, fmt.Errorf("unsupported companion state version %d", s.Version)
	}
	s.normalize(now)
	return &s, nil
}

// normalize fills missing sections with defaults so older blobs keep
// working. Expired moods survive until the next effective-traits read
// (lazy purge is part of the personality contract).
func (s *CompanionState) normalize(now time.Time) {
	if s.Personality == nil {
		s.Personality = NewPersonalityState()
	}
	if s.Personality.Traits == nil {
		s.Personality.Traits = NewTraitVector()
	}
	if s.Relationship == nil {
		s.Relationship = NewRelationshipState(now)
	}
	if s.Relationship.Stage == "" {
		s.Relationship.Stage = StageNew
	}
	if s.Relationship.StageStart.IsZero() {
		s.Relationship.StageStart = now
	}
	if s.Relationship.Quality == (RelationshipQuality{}) {
		s.Relationship.Quality = defaultQuality()
	}
	if s.Behavior == nil {
		s.Behavior = NewBehaviorState()
	}
	if s.Activity == nil {
		s.Activity = NewActivityPattern()
	}
	s.Version = StateVersion
}
