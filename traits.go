// Package companionsdk implements the state-update engines behind a
// companion chat persona: an evolving trait vector, relationship stage
// progression, temporal mood selection, and probabilistic proactive
// behaviors. All engines are pure transforms over explicit state; the
// caller owns the load-update-save cycle (see Session).
package companionsdk

import (
	"math"
	"time"
)

// ──────────────────────────────────────────────
// Trait definitions
// ──────────────────────────────────────────────

// Trait identifies one of the 15 fixed personality dimensions.
type Trait string

const (
	TraitConfidence         Trait = "confidence"
	TraitRomanticIntensity  Trait = "romantic_intensity"
	TraitPlayfulness        Trait = "playfulness"
	TraitVulnerability      Trait = "vulnerability"
	TraitAssertiveness      Trait = "assertiveness"
	TraitCuriosity          Trait = "curiosity"
	TraitEmpathy            Trait = "empathy"
	TraitSpontaneity        Trait = "spontaneity"
	TraitPossessiveness     Trait = "possessiveness"
	TraitLoyalty            Trait = "loyalty"
	TraitSensuality         Trait = "sensuality"
	TraitIntelligence       Trait = "intelligence"
	TraitHumor              Trait = "humor"
	TraitEmotionalIntensity Trait = "emotional_intensity"
	TraitIndependence       Trait = "independence"
)

// AllTraits lists every trait in fixed declaration order. Engines iterate
// this slice instead of map keys so results are deterministic.
var AllTraits = []Trait{
	TraitConfidence,
	TraitRomanticIntensity,
	TraitPlayfulness,
	TraitVulnerability,
	TraitAssertiveness,
	TraitCuriosity,
	TraitEmpathy,
	TraitSpontaneity,
	TraitPossessiveness,
	TraitLoyalty,
	TraitSensuality,
	TraitIntelligence,
	TraitHumor,
	TraitEmotionalIntensity,
	TraitIndependence,
}

// TraitRange bounds a trait's evolution to keep the personality consistent.
// Every range is a sub-range of [0,1].
type TraitRange struct {
	Min float64
	Max float64
}

var traitDefaults = map[Trait]float64{
	TraitConfidence:         0.7,
	TraitRomanticIntensity:  0.8,
	TraitPlayfulness:        0.6,
	TraitVulnerability:      0.4,
	TraitAssertiveness:      0.5,
	TraitCuriosity:          0.6,
	TraitEmpathy:            0.7,
	TraitSpontaneity:        0.5,
	TraitPossessiveness:     0.3,
	TraitLoyalty:            0.8,
	TraitSensuality:         0.8,
	TraitIntelligence:       0.7,
	TraitHumor:              0.6,
	TraitEmotionalIntensity: 0.7,
	TraitIndependence:       0.5,
}

var traitRanges = map[Trait]TraitRange{
	TraitConfidence:         {0.3, 1.0},
	TraitRomanticIntensity:  {0.6, 1.0},
	TraitPlayfulness:        {0.2, 0.9},
	TraitVulnerability:      {0.1, 0.9},
	TraitAssertiveness:      {0.2, 0.9},
	TraitCuriosity:          {0.4, 0.9},
	TraitEmpathy:            {0.5, 1.0},
	TraitSpontaneity:        {0.2, 0.8},
	TraitPossessiveness:     {0.1, 0.7},
	TraitLoyalty:            {0.6, 1.0},
	TraitSensuality:         {0.7, 1.0},
	TraitIntelligence:       {0.6, 1.0},
	TraitHumor:              {0.3, 0.8},
	TraitEmotionalIntensity: {0.5, 1.0},
	TraitIndependence:       {0.2, 0.8},
}

// RangeFor returns the configured evolution range for a trait.
// Unknown traits get the full [0,1] range.
func RangeFor(t Trait) TraitRange {
	if r, ok := traitRanges[t]; ok {
		return r
	}
	return TraitRange{0.0, 1.0}
}

// DefaultFor returns the construction-time default value for a trait.
func DefaultFor(t Trait) float64 {
	return traitDefaults[t]
}

// ──────────────────────────────────────────────
// Trait vector with bounded change history
// ──────────────────────────────────────────────

const (
	// maxTraitHistory bounds the change log; oldest entries drop first.
	maxTraitHistory = 100
	// traitDeadZone: adjustments with a smaller net effect are ignored
	// entirely so the history does not fill with noise.
	traitDeadZone = 0.005
)

// TraitChange is one append-only history entry for a trait mutation.
type TraitChange struct {
	Timestamp time.Time `json:"timestamp"`
	Trait     Trait     `json:"trait"`
	OldValue  float64   `json:"old_value"`
	NewValue  float64   `json:"new_value"`
	Delta     float64   `json:"delta"`
	Context   string    `json:"context"`
}

// TraitVector maps each trait to its current value and keeps a bounded
// log of meaningful changes.
type TraitVector struct {
	Values  map[Trait]float64 `json:"values"`
	History []TraitChange     `json:"history,omitempty"`
}

// NewTraitVector creates a vector with the documented defaults.
func NewTraitVector() *TraitVector {
	v := &TraitVector{Values: make(map[Trait]float64, len(AllTraits))}
	for _, t := range AllTraits {
		v.Values[t] = traitDefaults[t]
	}
	return v
}

// Get returns the current value of a trait, falling back to its default
// if the value is missing (e.g. a blob written by an older version).
func (v *TraitVector) Get(t Trait) float64 {
	if val, ok := v.Values[t]; ok {
		return val
	}
	return traitDefaults[t]
}

// Adjust applies a signed delta to a trait, clamped to the trait's
// configured range. Changes inside the dead-zone are dropped. Unknown
// traits are ignored. Returns true if the trait actually changed.
//
// A value pushed outside its range by external tampering self-heals here:
// the clamp runs on every adjustment.
func (v *TraitVector) Adjust(t Trait, delta float64, context string, now time.Time) bool {
	r, ok := traitRanges[t]
	if !ok {
		return false
	}
	if v.Values == nil {
		v.Values = make(map[Trait]float64, len(AllTraits))
	}
	old := v.Get(t)
	next := clampRange(old+delta, r)
	if math.Abs(next-old) <= traitDeadZone {
		return false
	}
	v.Values[t] = next

	v.History = append(v.History, TraitChange{
		Timestamp: now,
		Trait:     t,
		OldValue:  round3(old),
		NewValue:  round3(next),
		Delta:     round3(delta),
		Context:   context,
	})
	if len(v.History) > maxTraitHistory {
		v.History = v.History[len(v.History)-maxTraitHistory:]
	}
	return true
}

// Reset restores every trait to its default and clears the history.
func (v *TraitVector) Reset() {
	v.Values = make(map[Trait]float64, len(AllTraits))
	for _, t := range AllTraits {
		v.Values[t] = traitDefaults[t]
	}
	v.History = nil
}

func clampRange(val float64, r TraitRange) float64 {
	if val < r.Min {
		return r.Min
	}
	if val > r.Max {
		return r.Max
	}
	return val
}

func clamp01(val float64) float64 {
	if val < 0 {
		return 0
	}
	if val > 1 {
		return 1
	}
	return val
}

func round3(val float64) float64 {
	return math.Round(val*1000) / 1000
}
