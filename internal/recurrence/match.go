package recurrence

import (
	"fmt"
	"time"
)

// Template is the canonical definition of a (possibly recurring) event.
// Its own start and end double as the first occurrence.
type Template struct {
	ID             string
	Title          string
	Location       string
	Description    string
	Start          time.Time
	End            time.Time
	Rule           *Rule         // nil = does not repeat
	ReminderOffset time.Duration // 0 = no reminder; carried through unchanged
}

// Occurrence is one concrete, date-shifted instance of a template. It is
// computed on demand and never persisted; editing a single occurrence of a
// series is unsupported.
type Occurrence struct {
	ID             string        `json:"id"`
	TemplateID     string        `json:"template_id"`
	Title          string        `json:"title"`
	Location       string        `json:"location"`
	Description    string        `json:"description"`
	Start          time.Time     `json:"start_time"`
	End            time.Time     `json:"end_time"`
	ReminderOffset time.Duration `json:"reminder_offset,omitempty"`
}

// newOccurrence builds the instance for a start/end pair. The id combines
// the template id with the start's epoch seconds so two occurrences of the
// same template never collide.
func newOccurrence(t Template, start, end time.Time) Occurrence {
	return Occurrence{
		ID:             fmt.Sprintf("%s-%d", t.ID, start.Unix()),
		TemplateID:     t.ID,
		Title:          t.Title,
		Location:       t.Location,
		Description:    t.Description,
		Start:          start,
		End:            end,
		ReminderOffset: t.ReminderOffset,
	}
}

// shiftToDay composes a start/end pair on the target day that keeps the
// template's wall-clock time-of-day and exact duration. A time-of-day that
// does not exist on the target day (spring-forward DST gap) degrades to the
// day's midnight instead of the hour time.Date would normalize it to.
func shiftToDay(p Policy, t Template, day time.Time) (time.Time, time.Time) {
	loc := p.loc()
	st := t.Start.In(loc)
	day = day.In(loc)
	start := time.Date(day.Year(), day.Month(), day.Day(), st.Hour(), st.Minute(), st.Second(), 0, loc)
	if start.Hour() != st.Hour() || start.Minute() != st.Minute() {
		start = p.DayOf(day)
	}
	return start, start.Add(t.End.Sub(t.Start))
}

// Match decides whether the template has an occurrence on target's calendar
// day, returning nil when it does not. It is pure: identical inputs always
// produce identical results.
//
// The checks run in a fixed precedence: the origin day always matches
// (recurring or not), a template without a rule matches nothing else, a
// recurrence never goes backward past its origin, and the rule's end date
// bounds the last matching day inclusively. Only then is the frequency
// pattern consulted.
func Match(p Policy, t Template, target time.Time) *Occurrence {
	if p.SameDay(t.Start, target) {
		occ := newOccurrence(t, t.Start, t.End)
		return &occ
	}
	if t.Rule == nil {
		return nil
	}

	targetDay := p.DayOf(target)
	originDay := p.DayOf(t.Start)
	if targetDay.Before(originDay) {
		return nil
	}

	r := *t.Rule
	if r.EndDate != nil && targetDay.After(p.DayOf(*r.EndDate)) {
		return nil
	}

	interval := r.EffectiveInterval()
	switch r.Freq {
	case None:
		return nil

	case Daily:
		diff := p.DaysBetween(originDay, targetDay)
		if diff < 0 || diff%interval != 0 {
			return nil
		}

	case Weekly, Biweekly:
		if !r.matchesWeekday(t.Start.In(p.loc()).Weekday(), target.In(p.loc()).Weekday()) {
			return nil
		}
		diff := p.WeeksBetween(originDay, targetDay)
		if diff < 0 || diff%interval != 0 {
			return nil
		}

	case Monthly:
		// Day-of-month must match exactly; months too short for the
		// template's day are skipped, not clamped.
		if t.Start.In(p.loc()).Day() != target.In(p.loc()).Day() {
			return nil
		}
		diff := p.MonthsBetween(originDay, targetDay)
		if diff < 0 || diff%interval != 0 {
			return nil
		}

	default:
		return nil
	}

	start, end := shiftToDay(p, t, targetDay)
	occ := newOccurrence(t, start, end)
	return &occ
}
