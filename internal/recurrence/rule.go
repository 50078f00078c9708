package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Freq int

const (
	None Freq = iota
	Daily
	Weekly
	Biweekly
	Monthly
)

var freqNames = map[Freq]string{
	None:     "NONE",
	Daily:    "DAILY",
	Weekly:   "WEEKLY",
	Biweekly: "BIWEEKLY",
	Monthly:  "MONTHLY",
}

var freqFromName = map[string]Freq{
	"NONE":     None,
	"DAILY":    Daily,
	"WEEKLY":   Weekly,
	"BIWEEKLY": Biweekly,
	"MONTHLY":  Monthly,
}

var dayNames = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

var dayAbbrev = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

// Rule describes how an event repeats. Biweekly is a weekly repeat with a
// minimum interval of 2: a biweekly rule and a weekly rule with Interval=2
// produce identical occurrence dates.
type Rule struct {
	Freq     Freq
	Interval int            // multiplier over the base period; default 1
	Weekdays []time.Weekday // weekly/biweekly: which days (empty = same weekday as start)
	EndDate  *time.Time     // last calendar day with occurrences, inclusive (nil = no limit)
}

// EffectiveInterval returns the week/day/month step the rule repeats on.
// Biweekly never steps by less than 2 weeks, regardless of Interval.
func (r Rule) EffectiveInterval() int {
	n := r.Interval
	if n < 1 {
		n = 1
	}
	if r.Freq == Biweekly && n < 2 {
		n = 2
	}
	return n
}

// Validate reports whether the rule is well formed.
func (r Rule) Validate() error {
	if _, ok := freqNames[r.Freq]; !ok {
		return fmt.Errorf("unknown frequency: %d", r.Freq)
	}
	if r.Interval < 1 {
		return fmt.Errorf("interval must be >= 1, got %d", r.Interval)
	}
	for _, d := range r.Weekdays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("invalid weekday: %d", d)
		}
	}
	return nil
}

// matchesWeekday reports whether a rule with the given origin weekday
// repeats on the target weekday.
func (r Rule) matchesWeekday(origin, target time.Weekday) bool {
	if len(r.Weekdays) == 0 {
		return origin == target
	}
	for _, d := range r.Weekdays {
		if d == target {
			return true
		}
	}
	return false
}

// Parse parses a serialized rule like "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE".
func Parse(rule string) (Rule, error) {
	if rule == "" {
		return Rule{}, fmt.Errorf("empty rule")
	}

	r := Rule{Interval: 1}
	var hasFreq bool

	parts := strings.Split(rule, ";")
	for _, part := range parts {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return Rule{}, fmt.Errorf("invalid rule part: %q", part)
		}
		key, val := kv[0], kv[1]

		switch key {
		case "FREQ":
			f, ok := freqFromName[val]
			if !ok {
				return Rule{}, fmt.Errorf("unknown frequency: %q", val)
			}
			r.Freq = f
			hasFreq = true

		case "INTERVAL":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return Rule{}, fmt.Errorf("invalid interval: %q", val)
			}
			r.Interval = n

		case "BYDAY":
			days := strings.Split(val, ",")
			for _, d := range days {
				wd, ok := dayNames[strings.TrimSpace(d)]
				if !ok {
					return Rule{}, fmt.Errorf("unknown day: %q", d)
				}
				r.Weekdays = append(r.Weekdays, wd)
			}

		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", val)
			if err != nil {
				t, err = time.Parse("20060102", val)
				if err != nil {
					return Rule{}, fmt.Errorf("invalid UNTIL: %q", val)
				}
			}
			r.EndDate = &t

		default:
			return Rule{}, fmt.Errorf("unsupported rule key: %q", key)
		}
	}

	if !hasFreq {
		return Rule{}, fmt.Errorf("FREQ is required")
	}

	return r, nil
}

// String serializes the rule so it can round-trip through Parse.
func (r Rule) String() string {
	var parts []string
	parts = append(parts, "FREQ="+freqNames[r.Freq])

	if r.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", r.Interval))
	}

	if len(r.Weekdays) > 0 {
		var days []string
		for _, d := range r.Weekdays {
			days = append(days, dayAbbrev[d])
		}
		parts = append(parts, "BYDAY="+strings.Join(days, ","))
	}

	if r.EndDate != nil {
		parts = append(parts, "UNTIL="+r.EndDate.Format("20060102"))
	}

	return strings.Join(parts, ";")
}

// Describe returns a human-readable description of the rule.
func (r Rule) Describe() string {
	var base string
	switch r.Freq {
	case None:
		return "Does not repeat"
	case Daily:
		if r.Interval > 1 {
			base = fmt.Sprintf("Repeats every %d days", r.Interval)
		} else {
			base = "Repeats daily"
		}
	case Weekly:
		if r.Interval > 1 {
			base = fmt.Sprintf("Repeats every %d weeks", r.Interval)
		} else {
			base = "Repeats weekly"
		}
	case Biweekly:
		base = "Repeats every 2 weeks"
	case Monthly:
		if r.Interval > 1 {
			base = fmt.Sprintf("Repeats every %d months", r.Interval)
		} else {
			base = "Repeats monthly"
		}
	default:
		return ""
	}

	if (r.Freq == Weekly || r.Freq == Biweekly) && len(r.Weekdays) > 0 {
		var names []string
		for _, d := range r.Weekdays {
			names = append(names, d.String()[:3])
		}
		base += " on " + strings.Join(names, ", ")
	}

	if r.EndDate != nil {
		base += " until " + r.EndDate.Format("Jan 2, 2006")
	}

	return base
}
