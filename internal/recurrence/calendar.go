package recurrence

import "time"

// Policy fixes the calendar conventions all date math runs under: which
// weekday starts a week and which location decides day boundaries. Passing it
// explicitly keeps the engine deterministic under test instead of depending
// on process-wide locale state.
type Policy struct {
	WeekStart time.Weekday
	Location  *time.Location
}

// DefaultPolicy matches the app's convention: weeks start on Monday,
// days are bounded by the local timezone.
func DefaultPolicy() Policy {
	return Policy{WeekStart: time.Monday, Location: time.Local}
}

func (p Policy) loc() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// DayOf strips the time-of-day, returning midnight of t's calendar day.
func (p Policy) DayOf(t time.Time) time.Time {
	t = t.In(p.loc())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.loc())
}

// SameDay reports whether a and b fall on the same calendar day.
func (p Policy) SameDay(a, b time.Time) bool {
	a, b = a.In(p.loc()), b.In(p.loc())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfWeek returns midnight of the first day of t's week.
func (p Policy) StartOfWeek(t time.Time) time.Time {
	day := p.DayOf(t)
	offset := (int(day.Weekday()) - int(p.WeekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// DaysBetween returns the number of calendar days from a to b, negative
// when b precedes a. Distances are computed on civil days so a DST
// transition inside the span cannot skew the count.
func (p Policy) DaysBetween(a, b time.Time) int {
	return p.civilDay(b) - p.civilDay(a)
}

// WeeksBetween returns the number of whole calendar weeks from a's week to
// b's week. Both ends are aligned to the policy's week start before
// dividing, so the same week-numbering convention is used on both sides of
// any interval modulo; mixing conventions would drift occurrences by one
// week near year boundaries.
func (p Policy) WeeksBetween(a, b time.Time) int {
	return p.DaysBetween(p.StartOfWeek(a), p.StartOfWeek(b)) / 7
}

// MonthsBetween returns the number of calendar months from a's month to
// b's month, ignoring days.
func (p Policy) MonthsBetween(a, b time.Time) int {
	a, b = a.In(p.loc()), b.In(p.loc())
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// civilDay numbers t's calendar day as days since the Unix epoch, mapping
// the civil date through UTC so every day counts as exactly 86400 seconds.
func (p Policy) civilDay(t time.Time) int {
	t = t.In(p.loc())
	u := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(u.Unix() / 86400)
}
