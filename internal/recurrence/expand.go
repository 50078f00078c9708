package recurrence

import (
	"sort"
	"time"
)

// ExpandSemester eagerly materializes every weekly occurrence of the given
// templates inside [start, end], across all templates, sorted ascending by
// start time with ties broken by template id. It is the batch counterpart to
// Match: timetable views filter the returned slice by plain date equality
// instead of querying day by day.
//
// A template whose own start predates the range is advanced forward in
// 7-day steps until its first in-range slot; the template's literal start
// date only anchors the weekday and time-of-day. An inverted range yields
// an empty result. Emission is capped at twice the range's week count per
// template so a malformed template cannot produce a runaway expansion.
func ExpandSemester(p Policy, templates []Template, start, end time.Time) []Occurrence {
	startDay := p.DayOf(start)
	endDay := p.DayOf(end)
	if startDay.After(endDay) {
		return nil
	}

	maxPerTemplate := p.DaysBetween(startDay, endDay)/7*2 + 2

	var out []Occurrence
	for _, t := range templates {
		cur := t.Start.In(p.loc())

		// Jump straight to the first slot on or after the range start;
		// stepping one week at a time would make a template years in the
		// past cost hundreds of iterations for nothing.
		if behind := p.DaysBetween(p.DayOf(cur), startDay); behind > 0 {
			cur = cur.AddDate(0, 0, ((behind+6)/7)*7)
		}

		for n := 0; n < maxPerTemplate && !p.DayOf(cur).After(endDay); n++ {
			s, e := shiftToDay(p, t, cur)
			out = append(out, newOccurrence(t, s, e))
			cur = cur.AddDate(0, 0, 7)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].TemplateID < out[j].TemplateID
	})
	return out
}
