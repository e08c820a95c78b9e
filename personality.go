package companionsdk

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// ──────────────────────────────────────────────
// Mood overlays
// ──────────────────────────────────────────────

// MoodOverlay is a named, time-boxed additive modifier set layered on top
// of base traits. Overlays stay in state until the next effective-traits
// read after expiry (lazy purge).
type MoodOverlay struct {
	Modifiers map[Trait]float64 `json:"modifiers"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// ──────────────────────────────────────────────
// Personality state
// ──────────────────────────────────────────────

// PersonalityState holds the evolving trait vector plus any active moods.
type PersonalityState struct {
	Traits *TraitVector           `json:"traits"`
	Moods  map[string]MoodOverlay `json:"moods,omitempty"`
}

// NewPersonalityState creates a personality with default traits and no moods.
func NewPersonalityState() *PersonalityState {
	return &PersonalityState{Traits: NewTraitVector()}
}

// signalDelta is one entry of the fixed signal→trait adjustment tables.
type signalDelta struct {
	trait Trait
	delta float64
}

// UpdateFromInteraction converts an interaction signal record into trait
// adjustments. Deltas from multiple signals targeting the same trait are
// summed before the single clamped application. Returns the traits that
// actually changed (dead-zone applied), in fixed trait order.
func (p *PersonalityState) UpdateFromInteraction(sig InteractionSignals, now time.Time) []Trait {
	if p.Traits == nil {
		p.Traits = NewTraitVector()
	}

	adjustments := make(map[Trait]float64)
	add := func(deltas ...signalDelta) {
		for _, d := range deltas {
			adjustments[d.trait] += d.delta
		}
	}

	if sig.PositiveResponse {
		add(signalDelta{TraitConfidence, 0.01}, signalDelta{TraitRomanticIntensity, 0.01})
	}
	if sig.SharedPersonal {
		add(signalDelta{TraitEmpathy, 0.02}, signalDelta{TraitVulnerability, 0.015})
	}
	if sig.ConversationLength > 20 {
		add(signalDelta{TraitCuriosity, 0.01}, signalDelta{TraitIntelligence, 0.005})
	}
	if sig.SexualContent {
		add(signalDelta{TraitSensuality, 0.01}, signalDelta{TraitPlayfulness, 0.01})
	}
	if sig.Affection {
		add(signalDelta{TraitLoyalty, 0.01}, signalDelta{TraitRomanticIntensity, 0.015})
	}
	if sig.Distant {
		add(signalDelta{TraitConfidence, -0.01}, signalDelta{TraitPossessiveness, 0.02},
			signalDelta{TraitVulnerability, 0.01})
	}
	if sig.EmotionalSupport {
		add(signalDelta{TraitEmpathy, 0.02}, signalDelta{TraitEmotionalIntensity, 0.01})
	}

	context := sig.Reason
	if context == "" {
		context = "interaction"
	}

	var changed []Trait
	for _, t := range AllTraits {
		delta, ok := adjustments[t]
		if !ok {
			continue
		}
		if p.Traits.Adjust(t, delta, context, now) {
			changed = append(changed, t)
		}
	}
	return changed
}

// SetMood stores a temporary mood overlay. Re-setting an existing name
// overwrites the previous overlay; modifiers are not additive across calls.
func (p *PersonalityState) SetMood(name string, modifiers map[Trait]float64, duration time.Duration, now time.Time) {
	if p.Moods == nil {
		p.Moods = make(map[string]MoodOverlay)
	}
	mods := make(map[Trait]float64, len(modifiers))
	for t, m := range modifiers {
		mods[t] = m
	}
	p.Moods[name] = MoodOverlay{Modifiers: mods, ExpiresAt: now.Add(duration)}
}

// EffectiveTraits returns base traits plus all live mood overlays, each
// result clamped to [0,1]. Overlay clamping deliberately uses the full
// [0,1] scale, not the trait's narrower evolution range. Expired overlays
// are purged from state as a side effect.
func (p *PersonalityState) EffectiveTraits(now time.Time) map[Trait]float64 {
	if p.Traits == nil {
		p.Traits = NewTraitVector()
	}
	effective := make(map[Trait]float64, len(AllTraits))
	for _, t := range AllTraits {
		effective[t] = p.Traits.Get(t)
	}

	for name, mood := range p.Moods {
		if !now.Before(mood.ExpiresAt) {
			delete(p.Moods, name)
			continue
		}
		for t, mod := range mood.Modifiers {
			if _, ok := effective[t]; ok {
				effective[t] = clamp01(effective[t] + mod)
			}
		}
	}
	return effective
}

// ActiveMoods returns the names of non-expired moods without purging.
func (p *PersonalityState) ActiveMoods(now time.Time) []string {
	var names []string
	for name, mood := range p.Moods {
		if now.Before(mood.ExpiresAt) {
			names = append(names, name)
		}
	}
	return names
}

// ──────────────────────────────────────────────
// Description generator
// ──────────────────────────────────────────────

// Description renders the current personality as a short natural-language
// phrase list. The trait check order is fixed (confidence, romance,
// playfulness, vulnerability, sensuality, empathy) and at most the first
// four applicable phrases are kept.
func (p *PersonalityState) Description(now time.Time) string {
	traits := p.EffectiveTraits(now)

	var parts []string
	if c := traits[TraitConfidence]; c > 0.8 {
		parts = append(parts, "very confident and self-assured")
	} else if c > 0.6 {
		parts = append(parts, "confident")
	} else if c < 0.4 {
		parts = append(parts, "somewhat shy and uncertain")
	}
	if r := traits[TraitRomanticIntensity]; r > 0.8 {
		parts = append(parts, "deeply romantic and passionate")
	} else if r > 0.6 {
		parts = append(parts, "romantic and affectionate")
	}
	if pl := traits[TraitPlayfulness]; pl > 0.7 {
		parts = append(parts, "playful and fun-loving")
	} else if pl < 0.4 {
		parts = append(parts, "more serious and reserved")
	}
	if v := traits[TraitVulnerability]; v > 0.7 {
		parts = append(parts, "emotionally open and vulnerable")
	} else if v < 0.3 {
		parts = append(parts, "emotionally guarded")
	}
	if traits[TraitSensuality] > 0.8 {
		parts = append(parts, "highly sensual and expressive")
	}
	if traits[TraitEmpathy] > 0.8 {
		parts = append(parts, "deeply empathetic and caring")
	}

	if len(parts) > 4 {
		parts = parts[:4]
	}
	return strings.Join(parts, ", ")
}

// PromptContext builds a one-line personality summary for prompt injection.
func (p *PersonalityState) PromptContext(now time.Time) string {
	traits := p.EffectiveTraits(now)
	archetype, alignment := DominantArchetype(traits)

	var high, low []string
	for _, t := range AllTraits {
		if traits[t] > 0.7 && len(high) < 3 {
			high = append(high, string(t))
		}
		if traits[t] < 0.4 && len(low) < 2 {
			low = append(low, string(t))
		}
	}

	parts := []string{
		fmt.Sprintf("Personality: %s", p.Description(now)),
		fmt.Sprintf("Archetype: %s (%.2f alignment)", archetype, alignment),
	}
	var levels []string
	if len(high) > 0 {
		levels = append(levels, "High: "+strings.Join(high, ", "))
	}
	if len(low) > 0 {
		levels = append(levels, "Low: "+strings.Join(low, ", "))
	}
	if len(levels) > 0 {
		parts = append(parts, strings.Join(levels, " | "))
	}
	if moods := p.ActiveMoods(now); len(moods) > 0 {
		parts = append(parts, "Current mood: "+strings.Join(moods, ", "))
	}
	return strings.Join(parts, " | ")
}

// ──────────────────────────────────────────────
// Feedback, drift, trends
// ──────────────────────────────────────────────

// UserFeedback carries explicit and implicit preference signals.
type UserFeedback struct {
	LikesConfidence        bool
	LikesPlayfulness       bool
	LikesVulnerability     bool
	RespondsToAssertive    bool
	EnjoysRomanticGestures bool
	AppreciatesIntellect   bool
}

// AdaptToFeedback nudges traits toward stated or observed user preferences.
func (p *PersonalityState) AdaptToFeedback(fb UserFeedback, now time.Time) {
	if p.Traits == nil {
		p.Traits = NewTraitVector()
	}
	if fb.LikesConfidence {
		p.Traits.Adjust(TraitConfidence, 0.05, "user_preference", now)
	}
	if fb.LikesPlayfulness {
		p.Traits.Adjust(TraitPlayfulness, 0.05, "user_preference", now)
	}
	if fb.LikesVulnerability {
		p.Traits.Adjust(TraitVulnerability, 0.05, "user_preference", now)
	}
	if fb.RespondsToAssertive {
		p.Traits.Adjust(TraitAssertiveness, 0.02, "implicit_feedback", now)
	}
	if fb.EnjoysRomanticGestures {
		p.Traits.Adjust(TraitRomanticIntensity, 0.03, "implicit_feedback", now)
	}
	if fb.AppreciatesIntellect {
		p.Traits.Adjust(TraitIntelligence, 0.02, "implicit_feedback", now)
	}
}

// NaturalDrift applies small random adjustments so the personality never
// fully stagnates. Each trait has a 10% chance of a ±0.005 drift; most
// drifts fall inside the dead-zone and leave no trace, which is the point.
func (p *PersonalityState) NaturalDrift(rng *rand.Rand, now time.Time) {
	if p.Traits == nil {
		p.Traits = NewTraitVector()
	}
	for _, t := range AllTraits {
		if rng.Float64() < 0.1 {
			drift := (rng.Float64() - 0.5) * 0.01
			p.Traits.Adjust(t, drift, "natural_drift", now)
		}
	}
}

// TrendDirection classifies a trait's recent movement.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// TraitTrends summarizes per-trait movement over the trailing window.
// A net logged delta beyond ±0.02 counts as a trend.
func (p *PersonalityState) TraitTrends(window time.Duration, now time.Time) map[Trait]TrendDirection {
	cutoff := now.Add(-window)
	net := make(map[Trait]float64)
	if p.Traits != nil {
		for _, change := range p.Traits.History {
			if change.Timestamp.After(cutoff) {
				net[change.Trait] += change.Delta
			}
		}
	}

	trends := make(map[Trait]TrendDirection, len(AllTraits))
	for _, t := range AllTraits {
		switch {
		case net[t] > 0.02:
			trends[t] = TrendIncreasing
		case net[t] < -0.02:
			trends[t] = TrendDecreasing
		default:
			trends[t] = TrendStable
		}
	}
	return trends
}
