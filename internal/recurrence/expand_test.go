package recurrence

import "testing"

func TestExpandSemesterSingleTemplate(t *testing.T) {
	tpl := weeklyTemplate(nil)

	occs := ExpandSemester(utcPolicy, []Template{tpl}, d(2024, 9, 1, 0), d(2024, 9, 30, 0))
	if len(occs) != 5 {
		t.Fatalf("got %d occurrences, want 5 (Sep 2, 9, 16, 23, 30)", len(occs))
	}

	expected := []int{2, 9, 16, 23, 30}
	for i, occ := range occs {
		if occ.Start.Day() != expected[i] {
			t.Errorf("occ[%d] day = %d, want %d", i, occ.Start.Day(), expected[i])
		}
		if occ.Start.Hour() != 10 || occ.End.Hour() != 12 {
			t.Errorf("occ[%d] = %v-%v, want 10:00-12:00", i, occ.Start, occ.End)
		}
	}
}

func TestExpandSemesterTemplateBeforeRange(t *testing.T) {
	// Template anchored a month before the semester: only its weekday and
	// time-of-day matter, occurrences start at the first in-range Monday.
	tpl := weeklyTemplate(nil)
	tpl.Start = d(2024, 8, 5, 10) // Monday, 4 weeks before the semester
	tpl.End = d(2024, 8, 5, 12)

	occs := ExpandSemester(utcPolicy, []Template{tpl}, d(2024, 9, 1, 0), d(2024, 9, 30, 0))
	if len(occs) != 5 {
		t.Fatalf("got %d occurrences, want 5", len(occs))
	}
	if !occs[0].Start.Equal(d(2024, 9, 2, 10)) {
		t.Errorf("first occurrence = %v, want 2024-09-02T10:00Z", occs[0].Start)
	}
}

func TestExpandSemesterCoverageCount(t *testing.T) {
	// floor((end - firstInRange) / 7d) + 1 for a template fully inside
	// the range.
	tpl := weeklyTemplate(nil) // first occurrence Sep 2
	start := d(2024, 9, 1, 0)
	end := d(2024, 12, 13, 0) // Friday; last Monday is Dec 9

	occs := ExpandSemester(utcPolicy, []Template{tpl}, start, end)
	days := utcPolicy.DaysBetween(d(2024, 9, 2, 0), end)
	want := days/7 + 1
	if len(occs) != want {
		t.Fatalf("got %d occurrences, want %d", len(occs), want)
	}
	last := occs[len(occs)-1]
	if !last.Start.Equal(d(2024, 12, 9, 10)) {
		t.Errorf("last occurrence = %v, want 2024-12-09T10:00Z", last.Start)
	}
}

func TestExpandSemesterSortedAndUnique(t *testing.T) {
	lecture := weeklyTemplate(nil) // Monday 10:00
	tutorial := Template{
		ID:    "evt-9",
		Title: "Tutorial",
		Start: d(2024, 9, 4, 16), // Wednesday
		End:   d(2024, 9, 4, 17),
	}
	lab := Template{
		ID:    "evt-0",
		Title: "Lab",
		Start: d(2024, 9, 2, 10), // same slot as the lecture
		End:   d(2024, 9, 2, 13),
	}

	occs := ExpandSemester(utcPolicy, []Template{lecture, tutorial, lab}, d(2024, 9, 1, 0), d(2024, 9, 30, 0))

	seen := make(map[string]bool)
	for i, occ := range occs {
		if seen[occ.ID] {
			t.Errorf("duplicate occurrence id %q", occ.ID)
		}
		seen[occ.ID] = true

		if i == 0 {
			continue
		}
		prev := occs[i-1]
		if occ.Start.Before(prev.Start) {
			t.Errorf("occ[%d] %v sorts before occ[%d] %v", i, occ.Start, i-1, prev.Start)
		}
		if occ.Start.Equal(prev.Start) && occ.TemplateID < prev.TemplateID {
			t.Errorf("tie at %v broken out of template-id order: %q before %q",
				occ.Start, prev.TemplateID, occ.TemplateID)
		}
	}

	// 3 templates x 5 Mondays/Wednesdays in September apiece, minus the
	// Wednesday template's 4 (Sep 4, 11, 18, 25).
	if len(occs) != 14 {
		t.Fatalf("got %d occurrences, want 14", len(occs))
	}
}

func TestExpandSemesterInvertedRange(t *testing.T) {
	occs := ExpandSemester(utcPolicy, []Template{weeklyTemplate(nil)}, d(2024, 9, 30, 0), d(2024, 9, 1, 0))
	if len(occs) != 0 {
		t.Fatalf("inverted range should yield no occurrences, got %d", len(occs))
	}
}

func TestExpandSemesterNoTemplates(t *testing.T) {
	occs := ExpandSemester(utcPolicy, nil, d(2024, 9, 1, 0), d(2024, 9, 30, 0))
	if len(occs) != 0 {
		t.Fatalf("got %d occurrences, want 0", len(occs))
	}
}

func TestExpandSemesterTemplateAfterRange(t *testing.T) {
	tpl := weeklyTemplate(nil)
	tpl.Start = d(2024, 10, 7, 10)
	tpl.End = d(2024, 10, 7, 12)

	occs := ExpandSemester(utcPolicy, []Template{tpl}, d(2024, 9, 1, 0), d(2024, 9, 30, 0))
	if len(occs) != 0 {
		t.Fatalf("template starting after the range should yield nothing, got %d", len(occs))
	}
}

func TestExpandSemesterIDsEmbedEpoch(t *testing.T) {
	occs := ExpandSemester(utcPolicy, []Template{weeklyTemplate(nil)}, d(2024, 9, 1, 0), d(2024, 9, 15, 0))
	if len(occs) != 2 {
		t.Fatalf("got %d occurrences, want 2", len(occs))
	}
	if occs[0].ID != "evt-1-1725271200" { // 2024-09-02T10:00:00Z
		t.Errorf("occ[0].ID = %q, want evt-1-1725271200", occs[0].ID)
	}
}

func TestExpandMatchAgreeOnTimetable(t *testing.T) {
	// Every expanded slot must also be reachable through the on-demand
	// matcher with an equivalent weekly rule.
	tpl := weeklyTemplate(&Rule{Freq: Weekly, Interval: 1})

	occs := ExpandSemester(utcPolicy, []Template{tpl}, d(2024, 9, 1, 0), d(2024, 10, 31, 0))
	for _, occ := range occs {
		m := Match(utcPolicy, tpl, occ.Start)
		if m == nil {
			t.Fatalf("matcher disagrees with expander on %v", occ.Start)
		}
		if !m.Start.Equal(occ.Start) || !m.End.Equal(occ.End) {
			t.Errorf("matcher %v-%v != expander %v-%v", m.Start, m.End, occ.Start, occ.End)
		}
	}
}
