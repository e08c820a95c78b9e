package companionsdk

import (
	"strconv"
	"time"
)

// ──────────────────────────────────────────────
// Time periods
// ──────────────────────────────────────────────

// TimePeriod is a fixed wall-clock bucket.
type TimePeriod string

const (
	PeriodEarlyMorning TimePeriod = "early_morning" // [4,7)
	PeriodMorning      TimePeriod = "morning"       // [7,12)
	PeriodAfternoon    TimePeriod = "afternoon"     // [12,17)
	PeriodEvening      TimePeriod = "evening"       // [17,22)
	PeriodLateNight    TimePeriod = "late_night"    // [22,4)
)

// TimePeriodFor maps an hour of day to its period bucket.
func TimePeriodFor(hour int) TimePeriod {
	switch {
	case hour >= 4 && hour < 7:
		return PeriodEarlyMorning
	case hour >= 7 && hour < 12:
		return PeriodMorning
	case hour >= 12 && hour < 17:
		return PeriodAfternoon
	case hour >= 17 && hour < 22:
		return PeriodEvening
	default:
		return PeriodLateNight
	}
}

// MoodModifiers is the fixed per-period mood vector.
type MoodModifiers struct {
	Energy            float64 `json:"energy"`
	RomanticIntensity float64 `json:"romantic_intensity"`
	Playfulness       float64 `json:"playfulness"`
	Vulnerability     float64 `json:"vulnerability"`
	Sleepiness        float64 `json:"sleepiness"`
}

var periodMoods = map[TimePeriod]MoodModifiers{
	PeriodEarlyMorning: {Energy: 0.2, RomanticIntensity: 0.3, Playfulness: 0.2, Vulnerability: 0.4, Sleepiness: 0.9},
	PeriodMorning:      {Energy: 0.6, RomanticIntensity: 0.5, Playfulness: 0.7, Vulnerability: 0.3, Sleepiness: 0.3},
	PeriodAfternoon:    {Energy: 0.8, RomanticIntensity: 0.6, Playfulness: 0.9, Vulnerability: 0.4, Sleepiness: 0.1},
	PeriodEvening:      {Energy: 0.7, RomanticIntensity: 0.9, Playfulness: 0.8, Vulnerability: 0.5, Sleepiness: 0.2},
	PeriodLateNight:    {Energy: 0.4, RomanticIntensity: 0.8, Playfulness: 0.5, Vulnerability: 0.9, Sleepiness: 0.6},
}

// MoodModifiersFor returns the mood vector for a period. Unknown periods
// fall back to evening.
func MoodModifiersFor(p TimePeriod) MoodModifiers {
	if m, ok := periodMoods[p]; ok {
		return m
	}
	return periodMoods[PeriodEvening]
}

// ──────────────────────────────────────────────
// Energy levels
// ──────────────────────────────────────────────

// EnergyLevel is a discrete energy band.
type EnergyLevel string

const (
	EnergyHigh   EnergyLevel = "high"
	EnergyMedium EnergyLevel = "medium"
	EnergyLow    EnergyLevel = "low"
)

// EnergyLevelFor classifies an energy value: >=0.7 high, >=0.4 medium, else low.
func EnergyLevelFor(value float64) EnergyLevel {
	switch {
	case value >= 0.7:
		return EnergyHigh
	case value >= 0.4:
		return EnergyMedium
	default:
		return EnergyLow
	}
}

// EnergyFor returns the energy band for a time period.
func EnergyFor(p TimePeriod) EnergyLevel {
	return EnergyLevelFor(MoodModifiersFor(p).Energy)
}

// LanguageStyle describes pacing and tone for an energy band.
type LanguageStyle struct {
	Pace           string
	EmojiFrequency float64
	Enthusiasm     []string
}

var energyLanguage = map[EnergyLevel]LanguageStyle{
	EnergyHigh: {
		Pace:           "fast",
		EmojiFrequency: 0.8,
		Enthusiasm:     []string{"so excited!", "can't wait!", "yes yes yes!", "absolutely!"},
	},
	EnergyMedium: {
		Pace:           "normal",
		EmojiFrequency: 0.5,
		Enthusiasm:     []string{"sounds good", "I like that", "mmm yeah", "definitely"},
	},
	EnergyLow: {
		Pace:           "slow",
		EmojiFrequency: 0.3,
		Enthusiasm:     []string{"mhm", "yeah...", "sounds nice", "okay"},
	},
}

// LanguageStyleFor returns the language style for an energy band.
func LanguageStyleFor(level EnergyLevel) LanguageStyle {
	return energyLanguage[level]
}

// ──────────────────────────────────────────────
// Interaction gaps
// ──────────────────────────────────────────────

// TimeGap classifies elapsed time since the last interaction.
type TimeGap string

const (
	GapRecent   TimeGap = "recent"    // < 1h
	GapShort    TimeGap = "short"     // < 6h
	GapMedium   TimeGap = "medium"    // < 24h
	GapLong     TimeGap = "long"      // < 7d
	GapVeryLong TimeGap = "very_long" // >= 7d
	GapUnknown  TimeGap = "unknown"   // missing/unparseable timestamp
)

// GapContext bundles the gap category with its fixed greeting and
// history-reference tags.
type GapContext struct {
	Gap            TimeGap `json:"time_gap"`
	Description    string  `json:"gap_description,omitempty"`
	GreetingType   string  `json:"appropriate_greeting"`
	ReferenceStyle string  `json:"reference_style,omitempty"`
}

// GapContextFor classifies the elapsed time since lastInteraction
// (RFC3339). A missing or malformed timestamp degrades to the unknown
// category; this function never fails.
func GapContextFor(lastInteraction string, now time.Time) GapContext {
	unknown := GapContext{Gap: GapUnknown, GreetingType: "casual"}
	if lastInteraction == "" {
		return unknown
	}
	last, err := time.Parse(time.RFC3339, lastInteraction)
	if err != nil {
		return unknown
	}
	return GapContextForTime(last, now)
}

// GapContextForTime is the typed variant of GapContextFor.
func GapContextForTime(last, now time.Time) GapContext {
	diff := now.Sub(last)
	days := int(diff.Hours() / 24)

	switch {
	case diff < time.Hour:
		return GapContext{
			Gap:            GapRecent,
			Description:    "just a bit ago",
			GreetingType:   "casual",
			ReferenceStyle: "continue_conversation",
		}
	case diff < 6*time.Hour:
		return GapContext{
			Gap:            GapShort,
			Description:    "a few hours",
			GreetingType:   "warm_return",
			ReferenceStyle: "reference_previous",
		}
	case diff < 24*time.Hour:
		return GapContext{
			Gap:            GapMedium,
			Description:    "earlier today",
			GreetingType:   "excited_return",
			ReferenceStyle: "miss_you",
		}
	case diff < 7*24*time.Hour:
		return GapContext{
			Gap:            GapLong,
			Description:    pluralDays(days),
			GreetingType:   "enthusiastic_return",
			ReferenceStyle: "catch_up",
		}
	default:
		return GapContext{
			Gap:            GapVeryLong,
			Description:    pluralDays(days),
			GreetingType:   "passionate_reunion",
			ReferenceStyle: "missed_so_much",
		}
	}
}

func pluralDays(days int) string {
	if days == 1 {
		return "1 day"
	}
	return strconv.Itoa(days) + " days"
}

// ──────────────────────────────────────────────
// Activity patterns
// ──────────────────────────────────────────────

const maxActivityHistory = 100

// ActivityRecord is one logged user interaction time.
type ActivityRecord struct {
	Time time.Time `json:"time"`
	Hour int       `json:"hour"`
	Day  string    `json:"day"`
}

// ActivityPattern learns when a user tends to be active.
type ActivityPattern struct {
	Hourly  map[int]int      `json:"hourly,omitempty"`
	Daily   map[string]int   `json:"daily,omitempty"`
	History []ActivityRecord `json:"history,omitempty"`
}

// NewActivityPattern creates an empty pattern tracker.
func NewActivityPattern() *ActivityPattern {
	return &ActivityPattern{
		Hourly: make(map[int]int),
		Daily:  make(map[string]int),
	}
}

// Track logs one interaction time into the hourly/daily counters and the
// bounded history.
func (a *ActivityPattern) Track(t time.Time) {
	if a.Hourly == nil {
		a.Hourly = make(map[int]int)
	}
	if a.Daily == nil {
		a.Daily = make(map[string]int)
	}
	hour := t.Hour()
	day := t.Weekday().String()
	a.Hourly[hour]++
	a.Daily[day]++
	a.History = append(a.History, ActivityRecord{Time: t, Hour: hour, Day: day})
	if len(a.History) > maxActivityHistory {
		a.History = a.History[len(a.History)-maxActivityHistory:]
	}
}

// PeakHours returns the hours with above-average activity, ascending.
func (a *ActivityPattern) PeakHours() []int {
	if len(a.Hourly) == 0 {
		return nil
	}
	total := 0
	for _, count := range a.Hourly {
		total += count
	}
	avg := float64(total) / float64(len(a.Hourly))

	var peaks []int
	for hour := 0; hour < 24; hour++ {
		if float64(a.Hourly[hour]) > avg {
			peaks = append(peaks, hour)
		}
	}
	return peaks
}

// IsUnusualHour reports whether the given hour falls well outside the
// user's learned peak hours. With no data everything counts as usual.
func (a *ActivityPattern) IsUnusualHour(hour int) bool {
	peaks := a.PeakHours()
	if len(peaks) == 0 {
		return false
	}
	for _, peak := range peaks {
		diff := hour - peak
		if diff < 0 {
			diff = -diff
		}
		if diff <= 2 {
			return false
		}
	}
	return true
}

// ──────────────────────────────────────────────
// Temporal snapshot
// ──────────────────────────────────────────────

// TemporalSnapshot is the derived (never persisted) temporal context for
// one moment.
type TemporalSnapshot struct {
	Period      TimePeriod    `json:"time_period"`
	Hour        int           `json:"current_hour"`
	Moods       MoodModifiers `json:"mood_modifiers"`
	Energy      EnergyLevel   `json:"energy_level"`
	UnusualTime bool          `json:"unusual_time"`
	PeakHours   []int         `json:"user_peak_hours,omitempty"`
	Timestamp   time.Time     `json:"current_timestamp"`
}

// SnapshotAt derives the full temporal context for now. pattern may be nil.
func SnapshotAt(now time.Time, pattern *ActivityPattern) TemporalSnapshot {
	period := TimePeriodFor(now.Hour())
	snap := TemporalSnapshot{
		Period:    period,
		Hour:      now.Hour(),
		Moods:     MoodModifiersFor(period),
		Energy:    EnergyFor(period),
		Timestamp: now,
	}
	if pattern != nil {
		snap.UnusualTime = pattern.IsUnusualHour(now.Hour())
		snap.PeakHours = pattern.PeakHours()
	}
	return snap
}
