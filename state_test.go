package companionsdk

import (
	"testing"
	"time"
)

// ══════════════════════════════════════════════
// State envelope tests
// ══════════════════════════════════════════════

func TestState_RoundTrip(t *testing.T) {
	state := NewCompanionState(testNow)
	state.Personality.Traits.Adjust(TraitConfidence, 0.05, "test", testNow)
	state.Relationship.RecordInteraction(InteractionSignals{PositiveResponse: true}, testNow)
	state.LastInteraction = testNow.Format(time.RFC3339)

	blob, err := MarshalState(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	restored, err := UnmarshalState(blob, testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := restored.Personality.Traits.Get(TraitConfidence); !almostEqual(got, 0.75) {
		t.Fatalf("confidence lost in round trip: %v", got)
	}
	if restored.Relationship.Interactions != 1 {
		t.Fatalf("interaction count lost: %d", restored.Relationship.Interactions)
	}
	if restored.LastInteraction != state.LastInteraction {
		t.Fatal("last interaction timestamp lost")
	}
	if restored.Version != StateVersion {
		t.Fatalf("expected version %d, got %d", StateVersion, restored.Version)
	}
}

func TestUnmarshalState_EmptyBlobYieldsFreshState(t *testing.T) {
	state, err := UnmarshalState(nil, testNow)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if state.Relationship.Stage != StageNew {
		t.Fatalf("expected new stage, got %s", state.Relationship.Stage)
	}
	if !state.Relationship.StageStart.Equal(testNow) {
		t.Fatal("expected stage start stamped with now")
	}
	if got := state.Personality.Traits.Get(TraitConfidence); got != 0.7 {
		t.Fatalf("expected default traits, got confidence %v", got)
	}
}

func TestUnmarshalState_MigratesVersionZeroBlob(t *testing.T) {
	// A pre-envelope blob: only relationship counters, nothing else.
	blob := []byte(`{"relationship":{"interaction_count":7,"positive_interactions":4}}`)

	state, err := UnmarshalState(blob, testNow)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if state.Version != StateVersion {
		t.Fatalf("expected version stamped to %d, got %d", StateVersion, state.Version)
	}
	if state.Relationship.Interactions != 7 || state.Relationship.Positive != 4 {
		t.Fatal("existing counters must survive migration")
	}
	if state.Relationship.Stage != StageNew {
		t.Fatalf("expected stage defaulted, got %q", state.Relationship.Stage)
	}
	if got := state.Relationship.Quality.Average(); !almostEqual(got, 0.46) {
		t.Fatalf("expected default quality restored, got avg %v", got)
	}
	if state.Personality == nil || state.Personality.Traits == nil {
		t.Fatal("expected personality filled with defaults")
	}
	if state.Behavior == nil || state.Activity == nil {
		t.Fatal("expected behavior and activity sections filled")
	}
}

func TestUnmarshalState_RejectsFutureVersion(t *testing.T) {
	if _, err := UnmarshalState([]byte(`{"version":99}`), testNow); err == nil {
		t.Fatal("expected error for future state version")
	}
}

func TestUnmarshalState_RejectsGarbage(t *testing.T) {
	if _, err := UnmarshalState([]byte(`{not json`), testNow); err == nil {
		t.Fatal("expected error for malformed blob")
	}
}

func TestUnmarshalState_KeepsNonDefaultQuality(t *testing.T) {
	state := NewCompanionState(testNow)
	state.Relationship.Quality.Trust = 0.9
	blob, err := MarshalState(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	restored, err := UnmarshalState(blob, testNow)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.Relationship.Quality.Trust != 0.9 {
		t.Fatalf("normalization overwrote stored quality: %v", restored.Relationship.Quality.Trust)
	}
}

func TestUnmarshalState_ExpiredMoodsSurviveUntilRead(t *testing.T) {
	state := NewCompanionState(testNow)
	state.Personality.SetMood("tired", map[Trait]float64{TraitPlayfulness: -0.2}, time.Minute, testNow)
	blob, err := MarshalState(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	later := testNow.Add(time.Hour)
	restored, err := UnmarshalState(blob, later)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(restored.Personality.Moods) != 1 {
		t.Fatal("expired moods purge lazily on read, not on load")
	}
	restored.Personality.EffectiveTraits(later)
	if len(restored.Personality.Moods) != 0 {
		t.Fatal("expected expired mood purged by effective-traits read")
	}
}
