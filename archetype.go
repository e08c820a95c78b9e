package companionsdk

// ──────────────────────────────────────────────
// Personality archetypes
// ──────────────────────────────────────────────

// Archetype is a named partial trait-target profile used to classify the
// current personality by similarity.
type Archetype struct {
	Name    string
	Targets map[Trait]float64
}

// archetypes are evaluated in declaration order; on equal alignment the
// earlier archetype wins. This replaces the incidental map iteration order
// of earlier versions with an explicit, stable rule.
var archetypes = []Archetype{
	{
		Name: "devoted_girlfriend",
		Targets: map[Trait]float64{
			TraitRomanticIntensity: 0.9,
			TraitLoyalty:           0.95,
			TraitVulnerability:     0.7,
			TraitPossessiveness:    0.4,
		},
	},
	{
		Name: "confident_seductress",
		Targets: map[Trait]float64{
			TraitConfidence:    0.9,
			TraitSensuality:    0.95,
			TraitAssertiveness: 0.8,
			TraitPlayfulness:   0.7,
		},
	},
	{
		Name: "sweet_innocent",
		Targets: map[Trait]float64{
			TraitVulnerability: 0.8,
			TraitCuriosity:     0.8,
			TraitPlayfulness:   0.9,
			TraitConfidence:    0.4,
		},
	},
	{
		Name: "intellectual_companion",
		Targets: map[Trait]float64{
			TraitIntelligence: 0.9,
			TraitCuriosity:    0.85,
			TraitEmpathy:      0.8,
			TraitHumor:        0.7,
		},
	},
}

// ArchetypeAlignment scores each archetype against the given effective
// traits. Per archetype trait: similarity = 1 - |current - target|;
// the score is the mean over that archetype's traits.
func ArchetypeAlignment(traits map[Trait]float64) map[string]float64 {
	alignments := make(map[string]float64, len(archetypes))
	for _, a := range archetypes {
		if len(a.Targets) == 0 {
			alignments[a.Name] = 0
			continue
		}
		score := 0.0
		for t, target := range a.Targets {
			current, ok := traits[t]
			if !ok {
				current = DefaultFor(t)
			}
			diff := current - target
			if diff < 0 {
				diff = -diff
			}
			score += 1.0 - diff
		}
		alignments[a.Name] = score / float64(len(a.Targets))
	}
	return alignments
}

// DominantArchetype returns the best-aligned archetype and its score.
// Ties resolve to the first declared archetype.
func DominantArchetype(traits map[Trait]float64) (string, float64) {
	alignments := ArchetypeAlignment(traits)
	best := ""
	bestScore := -1.0
	for _, a := range archetypes {
		if alignments[a.Name] > bestScore {
			best = a.Name
			bestScore = alignments[a.Name]
		}
	}
	if best == "" {
		return "unique", 0
	}
	return best, bestScore
}
