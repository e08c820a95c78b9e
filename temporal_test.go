package companionsdk

import (
	"testing"
	"time"
)

// ══════════════════════════════════════════════
// Temporal engine tests
// ══════════════════════════════════════════════

func TestTimePeriodFor_Boundaries(t *testing.T) {
	cases := []struct {
		hour int
		want TimePeriod
	}{
		{0, PeriodLateNight},
		{3, PeriodLateNight},
		{4, PeriodEarlyMorning},
		{6, PeriodEarlyMorning},
		{7, PeriodMorning},
		{11, PeriodMorning},
		{12, PeriodAfternoon},
		{16, PeriodAfternoon},
		{17, PeriodEvening},
		{21, PeriodEvening},
		{22, PeriodLateNight},
		{23, PeriodLateNight},
	}
	for _, c := range cases {
		if got := TimePeriodFor(c.hour); got != c.want {
			t.Fatalf("hour %d: expected %s, got %s", c.hour, c.want, got)
		}
	}
}

func TestMoodModifiersFor(t *testing.T) {
	early := MoodModifiersFor(PeriodEarlyMorning)
	if early.Sleepiness != 0.9 || early.Energy != 0.2 {
		t.Fatalf("unexpected early morning moods: %+v", early)
	}
	afternoon := MoodModifiersFor(PeriodAfternoon)
	if afternoon.Energy != 0.8 || afternoon.Playfulness != 0.9 {
		t.Fatalf("unexpected afternoon moods: %+v", afternoon)
	}
	// Unknown period falls back to evening.
	if got := MoodModifiersFor(TimePeriod("brunch")); got != MoodModifiersFor(PeriodEvening) {
		t.Fatalf("expected evening fallback, got %+v", got)
	}
}

func TestEnergyLevelFor_Thresholds(t *testing.T) {
	cases := []struct {
		value float64
		want  EnergyLevel
	}{
		{0.7, EnergyHigh},
		{0.69, EnergyMedium},
		{0.4, EnergyMedium},
		{0.39, EnergyLow},
		{0.0, EnergyLow},
	}
	for _, c := range cases {
		if got := EnergyLevelFor(c.value); got != c.want {
			t.Fatalf("value %v: expected %s, got %s", c.value, c.want, got)
		}
	}
	if EnergyFor(PeriodAfternoon) != EnergyHigh {
		t.Fatal("afternoon should be high energy")
	}
	if EnergyFor(PeriodEarlyMorning) != EnergyLow {
		t.Fatal("early morning should be low energy")
	}
}

func TestLanguageStyleFor(t *testing.T) {
	style := LanguageStyleFor(EnergyHigh)
	if style.Pace != "fast" || style.EmojiFrequency != 0.8 {
		t.Fatalf("unexpected high-energy style: %+v", style)
	}
	if len(style.Enthusiasm) == 0 {
		t.Fatal("expected enthusiasm phrases")
	}
}

func TestGapContextForTime_Categories(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		want    TimeGap
	}{
		{30 * time.Minute, GapRecent},
		{time.Hour - time.Nanosecond, GapRecent},
		{time.Hour, GapShort},
		{6*time.Hour - time.Nanosecond, GapShort},
		{6 * time.Hour, GapMedium},
		{24*time.Hour - time.Nanosecond, GapMedium},
		{24 * time.Hour, GapLong},
		{7*24*time.Hour - time.Nanosecond, GapLong},
		{7 * 24 * time.Hour, GapVeryLong},
		{30 * 24 * time.Hour, GapVeryLong},
	}
	for _, c := range cases {
		got := GapContextForTime(testNow.Add(-c.elapsed), testNow)
		if got.Gap != c.want {
			t.Fatalf("elapsed %v: expected %s, got %s", c.elapsed, c.want, got.Gap)
		}
	}
}

func TestGapContextFor_DegradesGracefully(t *testing.T) {
	for _, last := range []string{"", "not-a-timestamp", "2025-13-45T99:00:00Z"} {
		got := GapContextFor(last, testNow)
		if got.Gap != GapUnknown {
			t.Fatalf("last %q: expected unknown gap, got %s", last, got.Gap)
		}
		if got.GreetingType != "casual" {
			t.Fatalf("unknown gap should greet casually, got %s", got.GreetingType)
		}
	}
}

func TestGapContextFor_ValidTimestamp(t *testing.T) {
	last := testNow.Add(-3 * time.Hour).Format(time.RFC3339)
	got := GapContextFor(last, testNow)
	if got.Gap != GapShort {
		t.Fatalf("expected short gap, got %s", got.Gap)
	}
	if got.GreetingType != "warm_return" {
		t.Fatalf("expected warm_return greeting, got %s", got.GreetingType)
	}
}

func TestGapDescription_PluralDays(t *testing.T) {
	oneDay := GapContextForTime(testNow.Add(-30*time.Hour), testNow)
	if oneDay.Description != "1 day" {
		t.Fatalf("expected %q, got %q", "1 day", oneDay.Description)
	}
	threeDays := GapContextForTime(testNow.Add(-3*24*time.Hour), testNow)
	if threeDays.Description != "3 days" {
		t.Fatalf("expected %q, got %q", "3 days", threeDays.Description)
	}
}

func TestActivityPattern_PeakHours(t *testing.T) {
	p := NewActivityPattern()
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		p.Track(day.Add(21 * time.Hour)) // 21:00, 10x
	}
	for i := 0; i < 8; i++ {
		p.Track(day.Add(9 * time.Hour)) // 09:00, 8x
	}
	p.Track(day.Add(14 * time.Hour)) // 14:00, 1x

	peaks := p.PeakHours()
	if len(peaks) != 2 || peaks[0] != 9 || peaks[1] != 21 {
		t.Fatalf("expected peaks [9 21], got %v", peaks)
	}
}

func TestActivityPattern_UnusualHour(t *testing.T) {
	p := NewActivityPattern()
	if p.IsUnusualHour(3) {
		t.Fatal("with no data nothing is unusual")
	}

	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		p.Track(day.Add(21 * time.Hour))
	}
	p.Track(day.Add(9 * time.Hour))

	if p.IsUnusualHour(20) || p.IsUnusualHour(23) {
		t.Fatal("hours within 2 of a peak are usual")
	}
	if !p.IsUnusualHour(3) {
		t.Fatal("3am should be unusual for an evening user")
	}
}

func TestActivityPattern_HistoryBounded(t *testing.T) {
	p := NewActivityPattern()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 150; i++ {
		p.Track(start.Add(time.Duration(i) * time.Hour))
	}
	if len(p.History) != maxActivityHistory {
		t.Fatalf("expected history bounded at %d, got %d", maxActivityHistory, len(p.History))
	}
	// Counters keep the full totals; only the log is bounded.
	total := 0
	for _, n := range p.Hourly {
		total += n
	}
	if total != 150 {
		t.Fatalf("expected 150 counted interactions, got %d", total)
	}
}

func TestSnapshotAt(t *testing.T) {
	evening := time.Date(2025, 6, 15, 20, 30, 0, 0, time.UTC)
	snap := SnapshotAt(evening, nil)

	if snap.Period != PeriodEvening {
		t.Fatalf("expected evening, got %s", snap.Period)
	}
	if snap.Hour != 20 {
		t.Fatalf("expected hour 20, got %d", snap.Hour)
	}
	if snap.Energy != EnergyHigh {
		t.Fatalf("expected high energy, got %s", snap.Energy)
	}
	if snap.Moods.RomanticIntensity != 0.9 {
		t.Fatalf("expected evening romantic intensity 0.9, got %v", snap.Moods.RomanticIntensity)
	}
	if snap.UnusualTime {
		t.Fatal("nil pattern means nothing is unusual")
	}
}
