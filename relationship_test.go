package companionsdk

import (
	"math/rand"
	"strings"
	"testing"
	"time"
)

// ══════════════════════════════════════════════
// RelationshipState tests
// ══════════════════════════════════════════════

func highQuality() RelationshipQuality {
	return RelationshipQuality{Trust: 0.8, Intimacy: 0.8, Communication: 0.8, SexualChemistry: 0.8, EmotionalBond: 0.8}
}

func countMilestones(r *RelationshipState, milestoneType string) int {
	n := 0
	for _, m := range r.Milestones {
		if m.Type == milestoneType {
			n++
		}
	}
	return n
}

func TestRecordInteraction_FirstChatMilestone(t *testing.T) {
	r := NewRelationshipState(testNow)
	r.RecordInteraction(InteractionSignals{PositiveResponse: true}, testNow)

	if r.Interactions != 1 || r.Positive != 1 {
		t.Fatalf("expected counters 1/1, got %d/%d", r.Interactions, r.Positive)
	}
	if countMilestones(r, "first_chat") != 1 {
		t.Fatal("expected first_chat milestone on interaction 1")
	}
	if r.Milestones[0].ID == "" {
		t.Fatal("milestone must get an id")
	}
}

func TestAdvance_RequiresBothCountThresholds(t *testing.T) {
	r := NewRelationshipState(testNow)
	r.Quality = highQuality()

	// 6 neutral-negative interactions meet the interaction threshold (5)
	// but leave the positive count at 0.
	for i := 0; i < 6; i++ {
		r.RecordInteraction(InteractionSignals{NegativeResponse: true}, testNow)
	}
	if r.Stage != StageNew {
		t.Fatalf("interaction threshold alone must not advance, got %s", r.Stage)
	}

	// Positive interactions push the positive count past 3: exactly one
	// transition, exactly one stage milestone.
	for i := 0; i < 3; i++ {
		r.RecordInteraction(InteractionSignals{PositiveResponse: true}, testNow)
	}
	if r.Stage != StageComfortable {
		t.Fatalf("expected comfortable, got %s", r.Stage)
	}
	if n := countMilestones(r, "comfortable_stage"); n != 1 {
		t.Fatalf("expected exactly 1 comfortable_stage milestone, got %d", n)
	}
}

func TestAdvance_RequiresQualityGate(t *testing.T) {
	r := NewRelationshipState(testNow)
	// Default quality averages 0.46, below the 0.6 gate.
	for i := 0; i < 10; i++ {
		r.RecordInteraction(InteractionSignals{PositiveResponse: true}, testNow)
	}
	if r.Stage != StageNew {
		t.Fatalf("quality gate must block advancement, got %s", r.Stage)
	}

	r.Quality = highQuality()
	r.RecordInteraction(InteractionSignals{PositiveResponse: true}, testNow)
	if r.Stage != StageComfortable {
		t.Fatalf("expected advancement once quality recovers, got %s", r.Stage)
	}
}

func TestAdvance_ResetsStageStart(t *testing.T) {
	r := NewRelationshipState(testNow)
	r.Quality = highQuality()
	later := testNow.Add(72 * time.Hour)
	for i := 0; i < 6; i++ {
		r.RecordInteraction(InteractionSignals{PositiveResponse: true}, later)
	}
	if r.Stage != StageComfortable {
		t.Fatalf("expected comfortable, got %s", r.Stage)
	}
	if !r.StageStart.Equal(later) {
		t.Fatalf("expected stage start reset to %v, got %v", later, r.StageStart)
	}
}

func TestStage_NeverRegresses(t *testing.T) {
	r := NewRelationshipState(testNow)
	r.Quality = highQuality()
	for i := 0; i < 6; i++ {
		r.RecordInteraction(InteractionSignals{PositiveResponse: true}, testNow)
	}
	if r.Stage != StageComfortable {
		t.Fatalf("setup failed, got %s", r.Stage)
	}

	for i := 0; i < 50; i++ {
		r.RecordInteraction(InteractionSignals{NegativeResponse: true}, testNow)
	}
	if r.Stage != StageComfortable {
		t.Fatalf("stage must never regress, got %s", r.Stage)
	}
}

func TestStage_EstablishedIsTerminal(t *testing.T) {
	r := NewRelationshipState(testNow)
	r.Stage = StageEstablished
	r.Quality = highQuality()
	r.Interactions = 500
	r.Positive = 400

	r.RecordInteraction(InteractionSignals{PositiveResponse: true}, testNow)
	if r.Stage != StageEstablished {
		t.Fatalf("established is terminal, got %s", r.Stage)
	}
}

func TestFullProgression_NewToEstablished(t *testing.T) {
	r := NewRelationshipState(testNow)
	r.Quality = highQuality()

	seen := []Stage{r.Stage}
	for i := 0; i < 100; i++ {
		r.RecordInteraction(InteractionSignals{PositiveResponse: true}, testNow)
		if r.Stage != seen[len(seen)-1] {
			seen = append(seen, r.Stage)
		}
	}
	want := []Stage{StageNew, StageComfortable, StageIntimate, StageEstablished}
	if len(seen) != len(want) {
		t.Fatalf("expected progression %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected progression %v, got %v", want, seen)
		}
	}
}

func TestMilestones_FireAtMostOnce(t *testing.T) {
	r := NewRelationshipState(testNow)
	for i := 0; i < 5; i++ {
		r.RecordInteraction(InteractionSignals{SexualContent: true}, testNow)
	}
	if n := countMilestones(r, "first_sexual_conversation"); n != 1 {
		t.Fatalf("expected 1 first_sexual_conversation milestone, got %d", n)
	}
}

func TestMilestone_NamePlaceholder(t *testing.T) {
	r := NewRelationshipState(testNow)
	r.RecordInteraction(InteractionSignals{SharedName: true, UserName: "Alex"}, testNow)

	found := false
	for _, m := range r.Milestones {
		if m.Type == "first_name_share" {
			found = true
			if !strings.Contains(m.Description, "Alex") {
				t.Fatalf("expected name substituted, got %q", m.Description)
			}
		}
	}
	if !found {
		t.Fatal("expected first_name_share milestone")
	}
}

func TestMilestone_DurationPlaceholder(t *testing.T) {
	r := NewRelationshipState(testNow)
	r.RecordInteraction(InteractionSignals{ConversationMinutes: 45}, testNow)

	found := false
	for _, m := range r.Milestones {
		if m.Type == "long_conversation" {
			found = true
			if !strings.Contains(m.Description, "45") {
				t.Fatalf("expected duration substituted, got %q", m.Description)
			}
		}
	}
	if !found {
		t.Fatal("expected long_conversation milestone for 45 minutes")
	}
}

func TestConsistentChatting_NeedsThreeDistinctDays(t *testing.T) {
	r := NewRelationshipState(testNow)

	// 5 significant moments across only 2 days: no milestone.
	for i := 0; i < 5; i++ {
		ts := testNow.Add(time.Duration(i%2) * 24 * time.Hour)
		r.RecordInteraction(InteractionSignals{SignificantMoment: true, MomentType: "chat"}, ts)
	}
	if countMilestones(r, "consistent_chatting") != 0 {
		t.Fatal("2 distinct days must not count as consistent")
	}

	// A third day tips it over.
	r.RecordInteraction(InteractionSignals{SignificantMoment: true, MomentType: "chat"}, testNow.Add(2*24*time.Hour))
	if countMilestones(r, "consistent_chatting") != 1 {
		t.Fatal("expected consistent_chatting milestone after 3 distinct days")
	}
}

func TestMoments_BoundedAt50(t *testing.T) {
	r := NewRelationshipState(testNow)
	for i := 0; i < 80; i++ {
		r.RecordInteraction(InteractionSignals{SignificantMoment: true, MomentType: "chat"}, testNow)
	}
	if len(r.Moments) != maxSignificantMoments {
		t.Fatalf("expected %d moments, got %d", maxSignificantMoments, len(r.Moments))
	}
	if r.Moments[len(r.Moments)-1].Interaction != 80 {
		t.Fatalf("expected most recent moment kept, got interaction %d", r.Moments[len(r.Moments)-1].Interaction)
	}
}

func TestQuality_NudgesAndClamps(t *testing.T) {
	r := NewRelationshipState(testNow)

	r.RecordInteraction(InteractionSignals{SharedPersonal: true}, testNow)
	if got := r.Quality.Trust; !almostEqual(got, 0.54) {
		t.Fatalf("expected trust 0.54 (0.5 + 0.02*2), got %v", got)
	}
	if got := r.Quality.Intimacy; !almostEqual(got, 0.32) {
		t.Fatalf("expected intimacy 0.32, got %v", got)
	}

	for i := 0; i < 100; i++ {
		r.RecordInteraction(InteractionSignals{SharedPersonal: true}, testNow)
	}
	if r.Quality.Trust != 1.0 {
		t.Fatalf("expected trust clamped to 1.0, got %v", r.Quality.Trust)
	}
}

func TestStageLookups(t *testing.T) {
	r := NewRelationshipState(testNow)
	if got := r.MaxVulnerability(); got != 0.3 {
		t.Fatalf("expected new-stage vulnerability cap 0.3, got %v", got)
	}
	r.Stage = StageIntimate
	if got := r.SexualOpenness(); got != 0.95 {
		t.Fatalf("expected intimate openness 0.95, got %v", got)
	}
	if len(r.StageBehaviors()) == 0 {
		t.Fatal("expected stage behaviors")
	}
}

func TestProgression_Report(t *testing.T) {
	r := NewRelationshipState(testNow)
	r.Interactions = 4
	r.Positive = 2

	status := r.Progression()
	if status.CanProgress {
		t.Fatal("should not be able to progress yet")
	}
	if status.NextStage != StageComfortable {
		t.Fatalf("expected next stage comfortable, got %s", status.NextStage)
	}
	if !almostEqual(status.InteractionProgress, 0.8) {
		t.Fatalf("expected interaction progress 0.8, got %v", status.InteractionProgress)
	}

	r.Stage = StageEstablished
	if r.Progression().CanProgress {
		t.Fatal("terminal stage can never progress")
	}
}

func TestShouldReferenceHistory_ProbabilityByStage(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := NewRelationshipState(testNow)
	r.Stage = StageEstablished

	hits := 0
	for i := 0; i < 10000; i++ {
		if r.ShouldReferenceHistory(rng) {
			hits++
		}
	}
	// p = 0.7: allow a generous band for sampling noise.
	if hits < 6500 || hits > 7500 {
		t.Fatalf("expected ~7000 history references, got %d", hits)
	}
}

func TestPromptContext_Relationship(t *testing.T) {
	r := NewRelationshipState(testNow)
	r.RecordInteraction(InteractionSignals{PositiveResponse: true}, testNow)

	ctx := r.PromptContext()
	if !strings.Contains(ctx, "Relationship: new") {
		t.Fatalf("expected stage in context, got %q", ctx)
	}
	if !strings.Contains(ctx, "Interactions: 1 (1 positive)") {
		t.Fatalf("expected counters in context, got %q", ctx)
	}
	if !strings.Contains(ctx, "Shared history:") {
		t.Fatalf("expected milestone history in context, got %q", ctx)
	}
}

func TestRecentMemories(t *testing.T) {
	r := NewRelationshipState(testNow)
	r.RecordInteraction(InteractionSignals{PositiveResponse: true}, testNow)
	r.RecordInteraction(InteractionSignals{
		SignificantMoment: true,
		MomentType:        "deep_talk",
		MomentDescription: "talked about the future",
	}, testNow)

	memories := r.RecentMemories()
	if len(memories) == 0 {
		t.Fatal("expected memories")
	}
	found := false
	for _, m := range memories {
		if m == "talked about the future" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected moment description in memories, got %v", memories)
	}
}
