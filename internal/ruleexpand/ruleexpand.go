// Package ruleexpand implements the rule expander ("order_rules"): turning a
// named rule-set's Rule lines into one (local date, rule) pair per
// (year, rule) combination, sorted ascending by local date.
package ruleexpand

import (
	"fmt"
	"sort"
	"time"

	"tzatlas/internal/caltime"
	"tzatlas/tzdata"
)

const (
	// MinYear clamps an unbounded-past rule FROM to a concrete year.
	MinYear = 1800
	// MaxYear clamps an unbounded-future rule TO to a concrete year.
	MaxYear = 2038
)

// MaxAbsDiff is the widest spread two local dates can differ by and still
// risk reordering once flags (wall/standard/UTC) and offset/save are
// applied: the gap between the most extreme and least extreme combination
// of gmt_offset and save tzdata allows.
const MaxAbsDiff = tzdata.MaxOffset + tzdata.MaxSave - tzdata.MinOffset - tzdata.MinSave

// Rule is one expanded (local date, rule) pair.
type Rule struct {
	Year  int
	Month time.Month
	Day   int
	Line  tzdata.RuleLine
}

// expandError names the rule-set a failure occurred in, per spec.md §7's
// propagation policy for the resolver's collaborators.
type expandError struct {
	ruleSet string
	err     error
}

func (e *expandError) Error() string {
	return fmt.Sprintf("expand rule set %q: %v", e.ruleSet, e.err)
}

func (e *expandError) Unwrap() error { return e.err }

// Expand materialises every (year, rule) pair for the named rule-set, one
// entry per year in [from, to] for each rule line, and returns them sorted
// ascending by local date. It fails if any two consecutive dates land
// within MaxAbsDiff of each other, since that is too close for the
// resolver's later flag-mixed comparisons to trust the ordering.
func Expand(ruleSet string, rules []tzdata.RuleLine) ([]Rule, error) {
	var out []Rule
	for _, r := range rules {
		from := int(r.From)
		if r.From == tzdata.MinYear {
			from = MinYear
		} else if r.From == tzdata.MaxYear {
			from = MaxYear
		}
		to := int(r.To)
		if r.To == tzdata.MaxYear {
			to = MaxYear
		} else if r.To == tzdata.MinYear {
			to = MinYear
		}
		if from > to {
			return nil, &expandError{ruleSet, fmt.Errorf("rule %s: from %d > to %d", r.Name, from, to)}
		}
		for year := from; year <= to; year++ {
			y, m, d := caltime.Resolve(year, r.In, toOn(r.On))
			out = append(out, Rule{Year: y, Month: m, Day: d, Line: r})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Day < out[j].Day
	})

	if err := checkSeparation(out); err != nil {
		return nil, &expandError{ruleSet, err}
	}

	return out, nil
}

func checkSeparation(rules []Rule) error {
	for i := 1; i < len(rules); i++ {
		prev, cur := rules[i-1], rules[i]
		diff := secondsBetween(prev, cur)
		if diff >= 0 && time.Duration(diff)*time.Second <= MaxAbsDiff {
			return fmt.Errorf("dates are probably not in order: %04d-%02d-%02d and %04d-%02d-%02d are too close",
				prev.Year, prev.Month, prev.Day, cur.Year, cur.Month, cur.Day)
		}
	}
	return nil
}

// secondsBetween returns the whole-day difference in seconds between two
// local dates at midnight, using the Gregorian day count rather than
// unixtime so the comparison stays independent of any UTC conversion.
func secondsBetween(a, b Rule) int64 {
	return daysFromEpoch(b.Year, b.Month, b.Day)*86400 - daysFromEpoch(a.Year, a.Month, a.Day)*86400
}

func daysFromEpoch(year int, month time.Month, day int) int64 {
	// Proleptic Gregorian day count relative to an arbitrary fixed origin;
	// only differences between two calls are meaningful.
	y := int64(year)
	m := int64(month)
	if m <= 2 {
		y--
		m += 12
	}
	era := y / 400
	if y < 0 {
		era = (y - 399) / 400
	}
	yoe := y - era*400
	doy := (153*(m-3)+2)/5 + int64(day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe
}

func toOn(d tzdata.Day) caltime.On {
	switch d.Form {
	case tzdata.DayFormDayNum:
		return caltime.On{Form: caltime.OnDayNum, Day: d.Num}
	case tzdata.DayFormLast:
		return caltime.On{Form: caltime.OnLastWeekday, Weekday: d.Day}
	case tzdata.DayFormAfter:
		return caltime.On{Form: caltime.OnWeekdayOnOrAfter, Day: d.Num, Weekday: d.Day}
	case tzdata.DayFormBefore:
		return caltime.On{Form: caltime.OnWeekdayOnOrBefore, Day: d.Num, Weekday: d.Day}
	default:
		panic("ruleexpand: invalid DayForm")
	}
}
