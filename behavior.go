package companionsdk

import (
	"math/rand"
	"time"
)

// ──────────────────────────────────────────────
// Behavior types
// ──────────────────────────────────────────────

// BehaviorType is one of the 8 fixed proactive-messaging styles.
type BehaviorType string

const (
	BehaviorAskFollowup        BehaviorType = "ask_followup"
	BehaviorChangeTopic        BehaviorType = "change_topic"
	BehaviorSeekOpinion        BehaviorType = "seek_opinion"
	BehaviorOverthinkDecision  BehaviorType = "overthink_decision"
	BehaviorRecallMemory       BehaviorType = "recall_memory"
	BehaviorShareVulnerability BehaviorType = "share_vulnerability"
	BehaviorCreateInsideJoke   BehaviorType = "create_inside_joke"
	BehaviorFuturePlanning     BehaviorType = "future_planning"
)

// behaviorWeights are the base trigger probabilities.
var behaviorWeights = map[BehaviorType]float64{
	BehaviorAskFollowup:        0.35,
	BehaviorChangeTopic:        0.15,
	BehaviorSeekOpinion:        0.25,
	BehaviorOverthinkDecision:  0.20,
	BehaviorRecallMemory:       0.40,
	BehaviorShareVulnerability: 0.15,
	BehaviorCreateInsideJoke:   0.10,
	BehaviorFuturePlanning:     0.20,
}

// behaviorCooldowns apply to 5 of the 8 types; the rest are always eligible.
var behaviorCooldowns = map[BehaviorType]time.Duration{
	BehaviorAskFollowup:        5 * time.Minute,
	BehaviorSeekOpinion:        10 * time.Minute,
	BehaviorOverthinkDecision:  15 * time.Minute,
	BehaviorFuturePlanning:     20 * time.Minute,
	BehaviorShareVulnerability: 30 * time.Minute,
}

// behaviorPriority is the deterministic tie-break when multiple behaviors
// trigger in one evaluation: earlier entries win. It extends the original
// partial ranking to a total order over all 8 types.
var behaviorPriority = []BehaviorType{
	BehaviorShareVulnerability,
	BehaviorAskFollowup,
	BehaviorSeekOpinion,
	BehaviorFuturePlanning,
	BehaviorOverthinkDecision,
	BehaviorRecallMemory,
	BehaviorCreateInsideJoke,
	BehaviorChangeTopic,
}

// stageMultipliers scale trigger probability with relationship depth.
var stageMultipliers = map[Stage]float64{
	StageNew:         0.7,
	StageComfortable: 1.0,
	StageIntimate:    1.3,
	StageEstablished: 1.5,
}

// timeMultipliers adjust specific behaviors in specific periods; anything
// not listed gets an implicit ×1.
var timeMultipliers = map[TimePeriod]map[BehaviorType]float64{
	PeriodMorning: {
		BehaviorShareVulnerability: 0.8,
		BehaviorSeekOpinion:        1.2,
	},
	PeriodEvening: {
		BehaviorAskFollowup:    1.3,
		BehaviorFuturePlanning: 1.4,
	},
	PeriodLateNight: {
		BehaviorShareVulnerability: 1.8,
		BehaviorRecallMemory:       1.2,
	},
}

// ──────────────────────────────────────────────
// Probability adjustment
// ──────────────────────────────────────────────

// BehaviorContext is the evaluation input: relationship stage, effective
// traits, time period and conversation length.
type BehaviorContext struct {
	Stage              Stage
	Traits             map[Trait]float64
	Anxiety            float64 // caller-supplied; not one of the 15 traits
	Period             TimePeriod
	ConversationLength int
}

func (ctx BehaviorContext) trait(t Trait, fallback float64) float64 {
	if v, ok := ctx.Traits[t]; ok {
		return v
	}
	return fallback
}

// TraitInfluence returns the personality-driven multiplier for a behavior:
// curious personalities follow up more, vulnerable ones share and seek
// opinions more, anxious ones overthink. Behaviors without a trait
// coupling score 1.
func TraitInfluence(b BehaviorType, ctx BehaviorContext) float64 {
	switch b {
	case BehaviorAskFollowup:
		return 1.0 + ctx.trait(TraitCuriosity, 0.5)
	case BehaviorSeekOpinion:
		return 1.0 + ctx.trait(TraitVulnerability, 0.4)
	case BehaviorOverthinkDecision:
		anxiety := ctx.Anxiety
		if anxiety == 0 {
			anxiety = 0.3
		}
		return 1.0 + anxiety
	case BehaviorShareVulnerability:
		return ctx.trait(TraitVulnerability, 0.4) * 2
	default:
		return 1.0
	}
}

// AdjustedProbability scales a base probability by stage, traits, time of
// day and conversation length, capped at 1.0. There is no lower floor
// beyond the natural non-negativity of the inputs.
func AdjustedProbability(b BehaviorType, base float64, ctx BehaviorContext) float64 {
	adjusted := base

	if mult, ok := stageMultipliers[ctx.Stage]; ok {
		adjusted *= mult
	}
	adjusted *= TraitInfluence(b, ctx)

	if periodMults, ok := timeMultipliers[ctx.Period]; ok {
		if mult, ok := periodMults[b]; ok {
			adjusted *= mult
		}
	}

	if ctx.ConversationLength > 10 && (b == BehaviorAskFollowup || b == BehaviorRecallMemory) {
		adjusted *= 1.5
	}

	if adjusted > 1.0 {
		return 1.0
	}
	return adjusted
}

// ──────────────────────────────────────────────
// Behavior state
// ──────────────────────────────────────────────

// BehaviorState tracks the last trigger time per behavior type for
// cooldown enforcement.
type BehaviorState struct {
	LastTriggered map[BehaviorType]time.Time `json:"last_triggered,omitempty"`
}

// NewBehaviorState creates an empty behavior state.
func NewBehaviorState() *BehaviorState {
	return &BehaviorState{LastTriggered: make(map[BehaviorType]time.Time)}
}

// OnCooldown reports whether a behavior is still inside its cooldown
// window. Types with no configured cooldown are always eligible.
func (s *BehaviorState) OnCooldown(b BehaviorType, now time.Time) bool {
	cooldown, ok := behaviorCooldowns[b]
	if !ok {
		return false
	}
	last, ok := s.LastTriggered[b]
	if !ok {
		return false
	}
	return now.Sub(last) < cooldown
}

// MarkTriggered records a trigger time for cooldown tracking.
func (s *BehaviorState) MarkTriggered(b BehaviorType, now time.Time) {
	if s.LastTriggered == nil {
		s.LastTriggered = make(map[BehaviorType]time.Time)
	}
	s.LastTriggered[b] = now
}

// ShouldTrigger draws whether a single behavior fires right now. Unknown
// behavior types have zero base weight and never trigger.
func (s *BehaviorState) ShouldTrigger(b BehaviorType, ctx BehaviorContext, now time.Time, rng *rand.Rand) bool {
	if s.OnCooldown(b, now) {
		return false
	}
	base := behaviorWeights[b]
	if base == 0 {
		return false
	}
	return rng.Float64() < AdjustedProbability(b, base, ctx)
}

// Evaluate runs one evaluation cycle: every type is drawn in fixed
// priority order and the highest-priority triggered behavior (if any) is
// selected and marked, capping the cycle at one behavior. Returns false
// when nothing triggered.
func (s *BehaviorState) Evaluate(ctx BehaviorContext, now time.Time, rng *rand.Rand) (BehaviorType, bool) {
	var selected BehaviorType
	found := false
	for _, b := range behaviorPriority {
		if s.ShouldTrigger(b, ctx, now, rng) && !found {
			selected = b
			found = true
		}
	}
	if !found {
		return "", false
	}
	s.MarkTriggered(selected, now)
	return selected, true
}
