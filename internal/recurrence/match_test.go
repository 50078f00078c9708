package recurrence

import (
	"testing"
	"time"
)

var utcPolicy = Policy{WeekStart: time.Monday, Location: time.UTC}

func d(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func weeklyTemplate(rule *Rule) Template {
	return Template{
		ID:       "evt-1",
		Title:    "Data Science and Statistics",
		Location: "Cruciform Building, 4.18",
		Start:    d(2024, 9, 2, 10), // Monday
		End:      d(2024, 9, 2, 12),
		Rule:     rule,
	}
}

func TestMatchSelfDay(t *testing.T) {
	// The origin day always matches, with or without a rule.
	templates := []Template{
		weeklyTemplate(nil),
		weeklyTemplate(&Rule{Freq: Weekly, Interval: 1}),
		weeklyTemplate(&Rule{Freq: None, Interval: 1}),
	}

	for i, tpl := range templates {
		occ := Match(utcPolicy, tpl, d(2024, 9, 2, 0))
		if occ == nil {
			t.Fatalf("templates[%d]: self-day should match", i)
		}
		if !occ.Start.Equal(tpl.Start) || !occ.End.Equal(tpl.End) {
			t.Errorf("templates[%d]: got %v-%v, want template's own %v-%v",
				i, occ.Start, occ.End, tpl.Start, tpl.End)
		}
	}
}

func TestMatchNoRuleOtherDay(t *testing.T) {
	if occ := Match(utcPolicy, weeklyTemplate(nil), d(2024, 9, 9, 0)); occ != nil {
		t.Errorf("template without rule matched %v", occ.Start)
	}
}

func TestMatchBeforeOrigin(t *testing.T) {
	tpl := weeklyTemplate(&Rule{Freq: Weekly, Interval: 1})
	days := []time.Time{
		d(2024, 8, 26, 0), // the Monday before the origin
		d(2024, 9, 1, 0),
		d(2020, 1, 6, 0),
	}
	for _, day := range days {
		if occ := Match(utcPolicy, tpl, day); occ != nil {
			t.Errorf("Match(%v) before origin should be nil, got %v", day, occ.Start)
		}
	}
}

func TestMatchWeekly(t *testing.T) {
	tpl := weeklyTemplate(&Rule{Freq: Weekly, Interval: 1})

	occ := Match(utcPolicy, tpl, d(2024, 9, 16, 0)) // Monday, 2 weeks later
	if occ == nil {
		t.Fatal("Monday 2 weeks later should match")
	}
	if !occ.Start.Equal(d(2024, 9, 16, 10)) {
		t.Errorf("start = %v, want 2024-09-16T10:00Z", occ.Start)
	}
	if !occ.End.Equal(d(2024, 9, 16, 12)) {
		t.Errorf("end = %v, want 2024-09-16T12:00Z", occ.End)
	}

	if occ := Match(utcPolicy, tpl, d(2024, 9, 17, 0)); occ != nil { // Tuesday
		t.Errorf("Tuesday should not match, got %v", occ.Start)
	}
}

func TestMatchDailyInterval(t *testing.T) {
	tpl := weeklyTemplate(&Rule{Freq: Daily, Interval: 3})

	matches := []time.Time{d(2024, 9, 5, 0), d(2024, 9, 8, 0), d(2024, 10, 2, 0)}
	for _, day := range matches {
		if Match(utcPolicy, tpl, day) == nil {
			t.Errorf("Match(%v) should match (every 3 days from Sep 2)", day)
		}
	}

	misses := []time.Time{d(2024, 9, 3, 0), d(2024, 9, 4, 0), d(2024, 9, 6, 0)}
	for _, day := range misses {
		if occ := Match(utcPolicy, tpl, day); occ != nil {
			t.Errorf("Match(%v) should be nil, got %v", day, occ.Start)
		}
	}
}

func TestMatchEndDateBoundary(t *testing.T) {
	// Weekly Mondays ending exactly on a pattern day.
	endDate := d(2024, 9, 16, 0)
	tpl := weeklyTemplate(&Rule{Freq: Weekly, Interval: 1, EndDate: &endDate})

	if Match(utcPolicy, tpl, d(2024, 9, 16, 0)) == nil {
		t.Error("occurrence on the end date itself should match")
	}
	if occ := Match(utcPolicy, tpl, d(2024, 9, 23, 0)); occ != nil {
		t.Errorf("day after end date should be nil, got %v", occ.Start)
	}

	// End date instant carries a late time-of-day; the bound is the
	// calendar day, not the exact instant.
	lateEnd := time.Date(2024, 9, 16, 23, 59, 0, 0, time.UTC)
	tpl.Rule = &Rule{Freq: Weekly, Interval: 1, EndDate: &lateEnd}
	if Match(utcPolicy, tpl, d(2024, 9, 16, 0)) == nil {
		t.Error("end date with time-of-day should still include its own day")
	}
}

func TestMatchWeeklyBiweeklyEquivalence(t *testing.T) {
	weekly := weeklyTemplate(&Rule{Freq: Weekly, Interval: 2})
	biweekly := weeklyTemplate(&Rule{Freq: Biweekly, Interval: 2})

	// Every day across a 10-week window must agree on match/no-match and
	// on the shifted times.
	for day := d(2024, 9, 2, 0); day.Before(d(2024, 11, 11, 0)); day = day.AddDate(0, 0, 1) {
		w := Match(utcPolicy, weekly, day)
		b := Match(utcPolicy, biweekly, day)
		if (w == nil) != (b == nil) {
			t.Fatalf("day %v: weekly/2 match=%v, biweekly match=%v", day, w != nil, b != nil)
		}
		if w != nil && (!w.Start.Equal(b.Start) || !w.End.Equal(b.End)) {
			t.Errorf("day %v: weekly %v-%v != biweekly %v-%v", day, w.Start, w.End, b.Start, b.End)
		}
	}
}

func TestMatchBiweeklyDefaultInterval(t *testing.T) {
	// A biweekly rule with the default interval still repeats every 2 weeks.
	tpl := weeklyTemplate(&Rule{Freq: Biweekly, Interval: 1})

	if Match(utcPolicy, tpl, d(2024, 9, 16, 0)) == nil {
		t.Error("2 weeks after origin should match")
	}
	if occ := Match(utcPolicy, tpl, d(2024, 9, 9, 0)); occ != nil {
		t.Errorf("1 week after origin should be nil, got %v", occ.Start)
	}
}

func TestMatchWeekdaySet(t *testing.T) {
	tpl := weeklyTemplate(&Rule{
		Freq:     Weekly,
		Interval: 1,
		Weekdays: []time.Weekday{time.Monday, time.Wednesday},
	})

	if Match(utcPolicy, tpl, d(2024, 9, 11, 0)) == nil { // Wednesday
		t.Error("Wednesday in the weekday set should match")
	}
	if occ := Match(utcPolicy, tpl, d(2024, 9, 12, 0)); occ != nil { // Thursday
		t.Errorf("Thursday outside the set should be nil, got %v", occ.Start)
	}
}

func TestMatchWeeklyAcrossYearBoundary(t *testing.T) {
	// Origin Monday 2024-12-30; the next Monday is in 2025. Week distance
	// must not drift when the year rolls over.
	tpl := Template{
		ID:    "evt-2",
		Title: "Tutorial",
		Start: d(2024, 12, 30, 9),
		End:   d(2024, 12, 30, 10),
		Rule:  &Rule{Freq: Biweekly, Interval: 2},
	}

	if Match(utcPolicy, tpl, d(2025, 1, 13, 0)) == nil {
		t.Error("2 weeks after origin (across new year) should match")
	}
	if occ := Match(utcPolicy, tpl, d(2025, 1, 6, 0)); occ != nil {
		t.Errorf("1 week after origin should be nil, got %v", occ.Start)
	}
}

func TestMatchMonthly(t *testing.T) {
	tpl := Template{
		ID:    "evt-3",
		Title: "Rent",
		Start: d(2024, 9, 15, 9),
		End:   d(2024, 9, 15, 10),
		Rule:  &Rule{Freq: Monthly, Interval: 1},
	}

	occ := Match(utcPolicy, tpl, d(2024, 11, 15, 0))
	if occ == nil {
		t.Fatal("same day-of-month 2 months later should match")
	}
	if !occ.Start.Equal(d(2024, 11, 15, 9)) {
		t.Errorf("start = %v, want 2024-11-15T09:00Z", occ.Start)
	}

	if occ := Match(utcPolicy, tpl, d(2024, 11, 14, 0)); occ != nil {
		t.Errorf("different day-of-month should be nil, got %v", occ.Start)
	}
}

func TestMatchMonthlyShortMonthSkips(t *testing.T) {
	// Monthly on the 31st: months without a 31st are silently skipped,
	// never clamped to their last day.
	tpl := Template{
		ID:    "evt-4",
		Title: "Review",
		Start: d(2024, 1, 31, 14),
		End:   d(2024, 1, 31, 15),
		Rule:  &Rule{Freq: Monthly, Interval: 1},
	}

	for _, day := range []time.Time{d(2024, 3, 31, 0), d(2024, 5, 31, 0), d(2024, 7, 31, 0)} {
		if Match(utcPolicy, tpl, day) == nil {
			t.Errorf("Match(%v) should match", day)
		}
	}
	for _, day := range []time.Time{d(2024, 2, 29, 0), d(2024, 4, 30, 0), d(2024, 2, 28, 0)} {
		if occ := Match(utcPolicy, tpl, day); occ != nil {
			t.Errorf("short month day %v should be nil, got %v", day, occ.Start)
		}
	}
}

func TestMatchDurationPreserved(t *testing.T) {
	tpl := Template{
		ID:    "evt-5",
		Title: "Lab",
		Start: time.Date(2024, 9, 3, 9, 30, 15, 0, time.UTC),
		End:   time.Date(2024, 9, 3, 11, 45, 15, 0, time.UTC),
		Rule:  &Rule{Freq: Weekly, Interval: 1},
	}
	want := tpl.End.Sub(tpl.Start)

	for week := 0; week < 8; week++ {
		day := d(2024, 9, 3, 0).AddDate(0, 0, 7*week)
		occ := Match(utcPolicy, tpl, day)
		if occ == nil {
			t.Fatalf("week %d should match", week)
		}
		if got := occ.End.Sub(occ.Start); got != want {
			t.Errorf("week %d duration = %v, want %v", week, got, want)
		}
		if occ.Start.Hour() != 9 || occ.Start.Minute() != 30 || occ.Start.Second() != 15 {
			t.Errorf("week %d time-of-day = %v, want 09:30:15", week, occ.Start)
		}
	}
}

func TestMatchOccurrenceID(t *testing.T) {
	tpl := weeklyTemplate(&Rule{Freq: Weekly, Interval: 1})

	occ := Match(utcPolicy, tpl, d(2024, 9, 9, 0))
	if occ == nil {
		t.Fatal("expected match")
	}
	wantID := "evt-1-" + "1725876000" // 2024-09-09T10:00:00Z
	if occ.ID != wantID {
		t.Errorf("ID = %q, want %q", occ.ID, wantID)
	}
	if occ.TemplateID != "evt-1" {
		t.Errorf("TemplateID = %q, want evt-1", occ.TemplateID)
	}

	other := Match(utcPolicy, tpl, d(2024, 9, 16, 0))
	if other.ID == occ.ID {
		t.Error("occurrences on different days must have distinct ids")
	}
}

func TestMatchDeterministic(t *testing.T) {
	tpl := weeklyTemplate(&Rule{Freq: Weekly, Interval: 2})
	day := d(2024, 9, 30, 0)

	a := Match(utcPolicy, tpl, day)
	b := Match(utcPolicy, tpl, day)
	if a == nil || b == nil {
		t.Fatal("expected match")
	}
	if *a != *b {
		t.Errorf("repeated calls differ: %+v vs %+v", a, b)
	}
}

func TestMatchCarriesOpaqueFields(t *testing.T) {
	tpl := weeklyTemplate(&Rule{Freq: Weekly, Interval: 1})
	tpl.Description = "Professor: Dr. Johnson"
	tpl.ReminderOffset = 15 * time.Minute

	occ := Match(utcPolicy, tpl, d(2024, 9, 9, 0))
	if occ == nil {
		t.Fatal("expected match")
	}
	if occ.Title != tpl.Title || occ.Location != tpl.Location || occ.Description != tpl.Description {
		t.Error("opaque fields not copied through")
	}
	if occ.ReminderOffset != 15*time.Minute {
		t.Errorf("ReminderOffset = %v, want 15m", occ.ReminderOffset)
	}
}

func TestMatchDSTGapFallsBackToMidnight(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	policy := Policy{WeekStart: time.Monday, Location: ny}

	// 02:30 does not exist on 2024-03-10 in New York; clocks jump from
	// 02:00 EST straight to 03:00 EDT.
	tpl := Template{
		ID:    "evt-1",
		Title: "Night Shuttle",
		Start: time.Date(2024, 3, 9, 2, 30, 0, 0, ny),
		End:   time.Date(2024, 3, 9, 3, 30, 0, 0, ny),
		Rule:  &Rule{Freq: Daily, Interval: 1},
	}

	occ := Match(policy, tpl, time.Date(2024, 3, 10, 12, 0, 0, 0, ny))
	if occ == nil {
		t.Fatal("expected match on gap day")
	}
	wantStart := time.Date(2024, 3, 10, 0, 0, 0, 0, ny)
	if !occ.Start.Equal(wantStart) {
		t.Errorf("gap-day start = %v, want midnight %v", occ.Start, wantStart)
	}
	if got := occ.End.Sub(occ.Start); got != time.Hour {
		t.Errorf("duration = %v, want 1h", got)
	}

	// The day after the transition has a 02:30 again.
	next := Match(policy, tpl, time.Date(2024, 3, 11, 12, 0, 0, 0, ny))
	if next == nil {
		t.Fatal("expected match on following day")
	}
	if next.Start.Hour() != 2 || next.Start.Minute() != 30 {
		t.Errorf("post-gap start = %v, want 02:30 wall clock", next.Start)
	}
}
