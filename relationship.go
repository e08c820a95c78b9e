package companionsdk

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ──────────────────────────────────────────────
// Relationship stages
// ──────────────────────────────────────────────

// Stage is one of the four ordered relationship phases. Progression is
// forward-only; a state never regresses automatically.
type Stage string

const (
	StageNew         Stage = "new"
	StageComfortable Stage = "comfortable"
	StageIntimate    Stage = "intimate"
	StageEstablished Stage = "established"
)

// stageOrder fixes the progression sequence.
var stageOrder = []Stage{StageNew, StageComfortable, StageIntimate, StageEstablished}

// StageCriteria holds the progression thresholds and the behavior envelope
// for a stage. An InteractionThreshold of 0 marks the terminal stage.
type StageCriteria struct {
	InteractionThreshold int
	PositiveThreshold    int
	Behaviors            []string
	MaxVulnerability     float64
	SexualOpenness       float64
	Description          string
}

var stageTable = map[Stage]StageCriteria{
	StageNew: {
		InteractionThreshold: 5,
		PositiveThreshold:    3,
		Behaviors:            []string{"curious", "slightly_shy", "testing_boundaries", "polite"},
		MaxVulnerability:     0.3,
		SexualOpenness:       0.6,
		Description:          "Just getting to know each other",
	},
	StageComfortable: {
		InteractionThreshold: 15,
		PositiveThreshold:    10,
		Behaviors:            []string{"more_open", "sharing_opinions", "light_teasing", "playful"},
		MaxVulnerability:     0.6,
		SexualOpenness:       0.8,
		Description:          "Feeling at ease with each other",
	},
	StageIntimate: {
		InteractionThreshold: 35,
		PositiveThreshold:    25,
		Behaviors:            []string{"vulnerable", "inside_jokes", "future_planning", "deep_sharing"},
		MaxVulnerability:     0.8,
		SexualOpenness:       0.95,
		Description:          "Deep emotional and physical connection",
	},
	StageEstablished: {
		InteractionThreshold: 0, // terminal
		PositiveThreshold:    50,
		Behaviors:            []string{"deep_intimacy", "couple_dynamics", "long_term_memory", "complete_openness"},
		MaxVulnerability:     1.0,
		SexualOpenness:       1.0,
		Description:          "Fully committed relationship",
	},
}

// CriteriaFor returns the criteria for a stage; unknown stages fall back
// to the "new" criteria.
func CriteriaFor(s Stage) StageCriteria {
	if c, ok := stageTable[s]; ok {
		return c
	}
	return stageTable[StageNew]
}

func nextStage(s Stage) (Stage, bool) {
	for i, stage := range stageOrder {
		if stage == s && i < len(stageOrder)-1 {
			return stageOrder[i+1], true
		}
	}
	return "", false
}

// ──────────────────────────────────────────────
// Quality, milestones, moments
// ──────────────────────────────────────────────

// RelationshipQuality tracks five soft [0,1] quality dimensions.
type RelationshipQuality struct {
	Trust           float64 `json:"trust_level"`
	Intimacy        float64 `json:"intimacy_level"`
	Communication   float64 `json:"communication_quality"`
	SexualChemistry float64 `json:"sexual_chemistry"`
	EmotionalBond   float64 `json:"emotional_bond"`
}

func defaultQuality() RelationshipQuality {
	return RelationshipQuality{
		Trust:           0.5,
		Intimacy:        0.3,
		Communication:   0.5,
		SexualChemistry: 0.6,
		EmotionalBond:   0.4,
	}
}

// Average returns the mean of the five quality dimensions.
func (q RelationshipQuality) Average() float64 {
	return (q.Trust + q.Intimacy + q.Communication + q.SexualChemistry + q.EmotionalBond) / 5
}

// Milestone is an immutable record of a relationship-significant event.
type Milestone struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Interaction int       `json:"interaction_number"`
	Stage       Stage     `json:"stage"`
}

// milestoneTemplates maps milestone types to parametrized descriptions.
// Placeholders: {name}, {joke}, {duration}, {days}.
var milestoneTemplates = map[string]string{
	"first_chat":                "Our very first conversation 💕",
	"first_name_share":          "You told me your name - {name}!",
	"first_vulnerable_moment":   "First time you opened up to me",
	"first_sexual_conversation": "When things got more intimate between us",
	"comfortable_stage":         "We became comfortable with each other",
	"intimate_stage":            "Our connection deepened into intimacy",
	"established_stage":         "We became a real couple 💑",
	"first_inside_joke":         "Created our first inside joke: {joke}",
	"long_conversation":         "Had our longest chat yet ({duration} minutes)",
	"consistent_chatting":       "Been chatting regularly for {days} days",
	"emotional_support":         "I was there for you during a tough time",
	"future_planning":           "Started making plans together",
}

// SignificantMoment is one entry of the bounded moments log.
type SignificantMoment struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Interaction int       `json:"interaction_number"`
	Stage       Stage     `json:"stage"`
}

const maxSignificantMoments = 50

// ──────────────────────────────────────────────
// Relationship state
// ──────────────────────────────────────────────

// RelationshipState tracks progression, milestones and quality for one user.
type RelationshipState struct {
	Stage        Stage               `json:"current_stage"`
	StageStart   time.Time           `json:"stage_start_time"`
	Interactions int                 `json:"interaction_count"`
	Positive     int                 `json:"positive_interactions"`
	Negative     int                 `json:"negative_interactions"`
	Milestones   []Milestone         `json:"milestones,omitempty"`
	Quality      RelationshipQuality `json:"relationship_quality"`
	Moments      []SignificantMoment `json:"significant_moments,omitempty"`
}

// NewRelationshipState creates a fresh "new" stage state.
func NewRelationshipState(now time.Time) *RelationshipState {
	return &RelationshipState{
		Stage:      StageNew,
		StageStart: now,
		Quality:    defaultQuality(),
	}
}

// RecordInteraction registers one classified interaction: counters, quality
// nudges, milestone checks and (possibly) a stage transition, in that order.
func (r *RelationshipState) RecordInteraction(sig InteractionSignals, now time.Time) {
	if r.Stage == "" {
		r.Stage = StageNew
	}
	r.Interactions++

	switch {
	case sig.IsPositive():
		r.Positive++
		r.updateQuality(0.02, sig)
	case sig.IsNegative():
		r.Negative++
		r.updateQuality(-0.01, sig)
	}

	if sig.SignificantMoment {
		r.recordMoment(sig, now)
	}
	r.checkMilestones(sig, now)
	r.advanceIfReady(now)
}

// updateQuality applies the per-context quality nudges, clamped to [0,1].
func (r *RelationshipState) updateQuality(adj float64, sig InteractionSignals) {
	if sig.SharedPersonal {
		r.Quality.Trust += adj * 2
		r.Quality.Intimacy += adj
	}
	if sig.ExtendedConversation() {
		r.Quality.Communication += adj
	}
	if sig.IntimateMoment {
		r.Quality.SexualChemistry += adj * 1.5
		r.Quality.EmotionalBond += adj
	}
	if sig.EmotionalSupport {
		r.Quality.EmotionalBond += adj * 2
	}
	r.Quality.Trust = clamp01(r.Quality.Trust)
	r.Quality.Intimacy = clamp01(r.Quality.Intimacy)
	r.Quality.Communication = clamp01(r.Quality.Communication)
	r.Quality.SexualChemistry = clamp01(r.Quality.SexualChemistry)
	r.Quality.EmotionalBond = clamp01(r.Quality.EmotionalBond)
}

func (r *RelationshipState) recordMoment(sig InteractionSignals, now time.Time) {
	momentType := sig.MomentType
	if momentType == "" {
		momentType = "general"
	}
	r.Moments = append(r.Moments, SignificantMoment{
		Timestamp:   now,
		Type:        momentType,
		Description: sig.MomentDescription,
		Interaction: r.Interactions,
		Stage:       r.Stage,
	})
	if len(r.Moments) > maxSignificantMoments {
		r.Moments = r.Moments[len(r.Moments)-maxSignificantMoments:]
	}
}

// checkMilestones records first-occurrence milestones triggered by this
// interaction. Each milestone type fires at most once, ever.
func (r *RelationshipState) checkMilestones(sig InteractionSignals, now time.Time) {
	checks := []struct {
		milestoneType string
		achieved      bool
	}{
		{"first_chat", r.Interactions == 1},
		{"first_name_share", sig.SharedName},
		{"first_vulnerable_moment", sig.VulnerableShare},
		{"first_sexual_conversation", sig.SexualContent},
		{"long_conversation", sig.ConversationMinutes > 30},
		{"consistent_chatting", r.chattingConsistently()},
		{"emotional_support", sig.EmotionalSupport},
		{"future_planning", sig.FuturePlans},
	}
	for _, check := range checks {
		if check.achieved && !r.hasMilestone(check.milestoneType) {
			r.appendMilestone(check.milestoneType, sig, now)
		}
	}
	if sig.InsideJoke != "" && !r.hasMilestone("first_inside_joke") {
		r.appendMilestone("first_inside_joke", sig, now)
	}
}

func (r *RelationshipState) hasMilestone(milestoneType string) bool {
	for _, m := range r.Milestones {
		if m.Type == milestoneType {
			return true
		}
	}
	return false
}

func (r *RelationshipState) appendMilestone(milestoneType string, sig InteractionSignals, now time.Time) {
	template, ok := milestoneTemplates[milestoneType]
	if !ok {
		template = "Milestone achieved"
	}
	description := template
	switch {
	case strings.Contains(template, "{name}") && sig.UserName != "":
		description = strings.ReplaceAll(template, "{name}", sig.UserName)
	case strings.Contains(template, "{joke}") && sig.InsideJoke != "":
		description = strings.ReplaceAll(template, "{joke}", sig.InsideJoke)
	case strings.Contains(template, "{duration}") && sig.ConversationMinutes > 0:
		description = strings.ReplaceAll(template, "{duration}", strconv.Itoa(sig.ConversationMinutes))
	case strings.Contains(template, "{days}"):
		days := int(now.Sub(r.StageStart).Hours() / 24)
		if days < 1 {
			days = 1
		}
		description = strings.ReplaceAll(template, "{days}", strconv.Itoa(days))
	}

	r.Milestones = append(r.Milestones, Milestone{
		ID:          uuid.NewString(),
		Type:        milestoneType,
		Description: description,
		Timestamp:   now,
		Interaction: r.Interactions,
		Stage:       r.Stage,
	})
}

// chattingConsistently reports whether moments span at least 3 distinct days
// (checked over the last 10 of at least 5 recorded moments).
func (r *RelationshipState) chattingConsistently() bool {
	if len(r.Moments) < 5 {
		return false
	}
	recent := r.Moments
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	days := make(map[string]struct{})
	for _, m := range recent {
		days[m.Timestamp.Format("2006-01-02")] = struct{}{}
	}
	return len(days) >= 3
}

// advanceIfReady moves to the next stage when the interaction count,
// positive count and mean quality thresholds are all met. "established"
// is terminal. Stage transitions append a stage milestone and reset the
// stage start time.
func (r *RelationshipState) advanceIfReady(now time.Time) {
	next, ok := nextStage(r.Stage)
	if !ok {
		return
	}
	crit := CriteriaFor(r.Stage)
	if r.Interactions < crit.InteractionThreshold {
		return
	}
	if r.Positive < crit.PositiveThreshold {
		return
	}
	if r.Quality.Average() < 0.6 {
		return
	}

	r.Stage = next
	r.StageStart = now
	milestoneType := string(next) + "_stage"
	if !r.hasMilestone(milestoneType) {
		r.appendMilestone(milestoneType, InteractionSignals{}, now)
	}
}

// ──────────────────────────────────────────────
// Lookups and reports
// ──────────────────────────────────────────────

// StageBehaviors returns the behavior tags appropriate for the current stage.
func (r *RelationshipState) StageBehaviors() []string {
	return CriteriaFor(r.Stage).Behaviors
}

// MaxVulnerability returns the vulnerability ceiling for the current stage.
func (r *RelationshipState) MaxVulnerability() float64 {
	return CriteriaFor(r.Stage).MaxVulnerability
}

// SexualOpenness returns the openness level for the current stage.
func (r *RelationshipState) SexualOpenness() float64 {
	return CriteriaFor(r.Stage).SexualOpenness
}

// historyReferenceProbability by stage: deeper stages call back to shared
// history more often.
var historyReferenceProbability = map[Stage]float64{
	StageNew:         0.1,
	StageComfortable: 0.3,
	StageIntimate:    0.5,
	StageEstablished: 0.7,
}

// ShouldReferenceHistory draws whether a reply should call back to shared
// history, with stage-dependent probability.
func (r *RelationshipState) ShouldReferenceHistory(rng *rand.Rand) bool {
	return rng.Float64() < historyReferenceProbability[r.Stage]
}

// ProgressionStatus reports how close the relationship is to the next stage.
type ProgressionStatus struct {
	CanProgress         bool    `json:"can_progress"`
	InteractionProgress float64 `json:"interaction_progress"`
	PositiveProgress    float64 `json:"positive_progress"`
	QualityScore        float64 `json:"quality_score"`
	NextStage           Stage   `json:"next_stage,omitempty"`
}

// Progression returns the current stage-advancement status. At the terminal
// stage CanProgress is always false.
func (r *RelationshipState) Progression() ProgressionStatus {
	next, ok := nextStage(r.Stage)
	if !ok {
		return ProgressionStatus{QualityScore: r.Quality.Average()}
	}
	crit := CriteriaFor(r.Stage)
	status := ProgressionStatus{
		InteractionProgress: float64(r.Interactions) / float64(crit.InteractionThreshold),
		PositiveProgress:    float64(r.Positive) / float64(crit.PositiveThreshold),
		QualityScore:        r.Quality.Average(),
		NextStage:           next,
	}
	status.CanProgress = r.Interactions >= crit.InteractionThreshold &&
		r.Positive >= crit.PositiveThreshold &&
		status.QualityScore >= 0.6
	return status
}

// PromptContext builds a one-line relationship summary for prompt injection.
func (r *RelationshipState) PromptContext() string {
	crit := CriteriaFor(r.Stage)
	parts := []string{
		fmt.Sprintf("Relationship: %s (%s)", r.Stage, crit.Description),
		fmt.Sprintf("Interactions: %d (%d positive)", r.Interactions, r.Positive),
	}
	if memories := r.RecentMemories(); len(memories) > 0 {
		parts = append(parts, "Shared history: "+strings.Join(memories, "; "))
	}
	return strings.Join(parts, " | ")
}

// RecentMemories returns short history strings (last milestones and moments)
// for prompt context.
func (r *RelationshipState) RecentMemories() []string {
	var memories []string
	milestones := r.Milestones
	if len(milestones) > 5 {
		milestones = milestones[len(milestones)-5:]
	}
	for _, m := range milestones {
		memories = append(memories, m.Description)
	}
	moments := r.Moments
	if len(moments) > 3 {
		moments = moments[len(moments)-3:]
	}
	for _, m := range moments {
		if m.Description != "" {
			memories = append(memories, m.Description)
		}
	}
	return memories
}
