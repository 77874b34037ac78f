// Package resolve implements the zone resolver, the core of the compiler:
// it walks a zone's ordered periods, interleaves the rules that apply
// during each, converts every local time to UTC, and emits a monotonic
// transition timeline.
package resolve

import (
	"fmt"
	"math"
	"strings"
	"time"

	"tzatlas/internal/caltime"
	"tzatlas/internal/ruleexpand"
	"tzatlas/internal/unixtime"
	"tzatlas/tzdata"
)

// MinYear and MaxYear clamp the indefinite past/future sentinels a zone's
// UNTIL or a rule's FROM/TO can carry.
const (
	MinYear = ruleexpand.MinYear
	MaxYear = ruleexpand.MaxYear
)

// MinDateTime and MaxDateTime are the sentinel bounds of the resolver's
// timeline: a period with no predecessor starts at MinDateTime, and a
// period with no UNTIL runs to MaxDateTime.
var (
	MinDateTime = dateTimeSeconds(MinYear, time.January, 1, 0)
	MaxDateTime = dateTimeSeconds(MaxYear, time.December, 31, 0)
)

// FixedTimeZone is a zone whose offset and abbreviation never change (or,
// within a VariableTimeZone, the state in effect from one Transition to the
// next).
type FixedTimeZone struct {
	Abbr   string
	Offset time.Duration
	Save   time.Duration
}

func (FixedTimeZone) isTimeZone() {}

// Transition is a point in UTC at which a zone's effective FixedTimeZone
// changes.
type Transition struct {
	UTC  int64 // seconds since the Unix epoch
	Zone FixedTimeZone
}

// VariableTimeZone is a zone with two or more Transitions.
type VariableTimeZone struct {
	Name        string
	Transitions []Transition
}

func (VariableTimeZone) isTimeZone() {}

// TimeZone is the resolver's output for one zone name: either a
// FixedTimeZone or a VariableTimeZone.
type TimeZone interface {
	isTimeZone()
}

type resolveError struct {
	zone string
	err  error
}

func (e *resolveError) Error() string { return fmt.Sprintf("resolve zone %q: %v", e.zone, e.err) }
func (e *resolveError) Unwrap() error { return e.err }

// Cache holds rule-set expansions for the lifetime of a compilation run.
// It is write-once per rule-set name, matching spec.md §5's shared-resource
// contract: concurrent resolutions of distinct zones may share one Cache as
// long as callers serialize access to it (it performs no locking of its
// own, mirroring the teacher's preference for caller-owned synchronization
// over hidden mutexes).
type Cache struct {
	expanded map[string][]ruleexpand.Rule
}

// NewCache returns an empty expansion cache.
func NewCache() *Cache {
	return &Cache{expanded: make(map[string][]ruleexpand.Rule)}
}

func (c *Cache) expand(ruleSet string, rules []tzdata.RuleLine) ([]ruleexpand.Rule, error) {
	if r, ok := c.expanded[ruleSet]; ok {
		return r, nil
	}
	r, err := ruleexpand.Expand(ruleSet, rules)
	if err != nil {
		return nil, err
	}
	c.expanded[ruleSet] = r
	return r, nil
}

// Resolve walks periods — one zone's Zone stanza plus its continuation
// lines, in file order — and returns the zone's resolved TimeZone. ruleSets
// maps a rule-set name to its Rule lines; cache amortizes rule expansion
// across zones that share a rule set.
func Resolve(zoneName string, periods []tzdata.ZoneLine, ruleSets map[string][]tzdata.RuleLine, cache *Cache) (TimeZone, error) {
	if len(periods) == 0 {
		return nil, &resolveError{zoneName, fmt.Errorf("no periods")}
	}

	startUTC := MinDateTime
	var save time.Duration
	var letter string
	var transitions []Transition

	for _, p := range periods {
		offset := p.Offset
		format := p.Format

		untilYear, untilMonth, untilDay, untilTOD, untilFlag, open := resolveUntil(p.Until)

		switch p.Rules.Form {
		case tzdata.ZoneRulesStandard, tzdata.ZoneRulesTime:
			if p.Rules.Form == tzdata.ZoneRulesTime {
				save = p.Rules.Time.Duration
			} else {
				save = 0
			}
			letter = ""
			abbr := formatAbbr(format, letter)
			transitions = appendTransition(transitions, Transition{UTC: startUTC, Zone: FixedTimeZone{Abbr: abbr, Offset: offset, Save: save}})

		case tzdata.ZoneRulesName:
			rules, ok := ruleSets[p.Rules.Name]
			if !ok {
				return nil, &resolveError{zoneName, fmt.Errorf("unknown rule set %q", p.Rules.Name)}
			}
			expanded, err := cache.expand(p.Rules.Name, rules)
			if err != nil {
				return nil, &resolveError{zoneName, err}
			}
			if len(expanded) == 0 {
				return nil, &resolveError{zoneName, fmt.Errorf("rule set %q has no rules", p.Rules.Name)}
			}

			idx := ruleIndex(expanded, startUTC, offset)
			if idx < 0 {
				save = 0
				letter = firstZeroSaveLetter(expanded)
			} else {
				save = expanded[idx].Line.Save.Duration
				letter = expanded[idx].Line.Letter
			}
			abbr := formatAbbr(format, letter)
			transitions = appendTransition(transitions, Transition{UTC: startUTC, Zone: FixedTimeZone{Abbr: abbr, Offset: offset, Save: save}})

			start := idx
			if start < 0 {
				start = 0
			}
			for _, er := range expanded[start:] {
				saveCurrent := save
				dtY, dtM, dtD, dtTOD := caltime.NormalizeDay(er.Year, er.Month, er.Day, er.Line.At.Duration)
				dtUTC := toUTC(dtY, dtM, dtD, dtTOD, er.Line.At.Form, offset, saveCurrent)

				var untilUTC int64
				if open {
					untilUTC = MaxDateTime
				} else {
					untilUTC = toUTC(untilYear, untilMonth, untilDay, untilTOD, untilFlag, offset, saveCurrent)
				}
				if dtUTC >= untilUTC {
					break
				}

				save = er.Line.Save.Duration
				letter = er.Line.Letter
				abbr = formatAbbr(format, letter)

				// Open Question 1 (spec.md §9): inclusive filter — a
				// transition exactly at the period's opening instant is
				// emitted, not skipped.
				if dtUTC >= startUTC {
					transitions = appendTransition(transitions, Transition{UTC: dtUTC, Zone: FixedTimeZone{Abbr: abbr, Offset: offset, Save: save}})
				}
			}

		default:
			return nil, &resolveError{zoneName, fmt.Errorf("invalid ZoneRulesForm %v", p.Rules.Form)}
		}

		if open {
			startUTC = MaxDateTime
		} else {
			startUTC = toUTC(untilYear, untilMonth, untilDay, untilTOD, untilFlag, offset, save)
		}
		if startUTC >= MaxDateTime {
			break
		}
	}

	switch len(transitions) {
	case 0:
		return nil, &resolveError{zoneName, fmt.Errorf("no transitions produced")}
	case 1:
		return transitions[0].Zone, nil
	default:
		return VariableTimeZone{Name: zoneName, Transitions: transitions}, nil
	}
}

// appendTransition enforces the monotonic-transitions invariant (spec.md
// §8): a new entry at the same instant as the last one replaces it rather
// than creating a zero-length step.
func appendTransition(transitions []Transition, t Transition) []Transition {
	if n := len(transitions); n > 0 && transitions[n-1].UTC == t.UTC {
		transitions[n-1] = t
		return transitions
	}
	return append(transitions, t)
}

// formatAbbr substitutes letter into format's %s placeholder. The literal
// format "zzz" always normalises to the empty abbreviation.
func formatAbbr(format, letter string) string {
	if format == "zzz" {
		return ""
	}
	return strings.ReplaceAll(format, "%s", letter)
}

// firstZeroSaveLetter implements spec.md §4.D step 3(c): when a rule-driven
// period begins before any rule has fired, the initial letter is taken from
// the first rule in the expanded list whose save is zero.
func firstZeroSaveLetter(expanded []ruleexpand.Rule) string {
	for _, er := range expanded {
		if er.Line.Save.Duration == 0 {
			return er.Line.Letter
		}
	}
	return ""
}

// ruleIndex finds the largest i such that rules_expanded[i]'s local date is
// on or before startUTC (spec.md §4.D step 3(b)), widened per the Open
// Question 2 resolution: within MaxAbsDiff of startUTC, the rule whose
// UTC-converted instant is the largest instant <= startUTC wins instead of
// the naive local-date comparison, since a local date close to the
// boundary can invert once offset and save are applied. It returns -1 when
// no rule qualifies, i.e. the period begins before any rule has fired.
func ruleIndex(expanded []ruleexpand.Rule, startUTC int64, offset time.Duration) int {
	idx := -1
	for i, er := range expanded {
		localMidnight := dateTimeSeconds(er.Year, er.Month, er.Day, 0)
		if localMidnight <= startUTC {
			idx = i
		} else {
			break
		}
	}

	maxAbsDiffSeconds := int64(ruleexpand.MaxAbsDiff / time.Second)
	best := idx
	var bestUTC int64 = math.MinInt64
	for i, er := range expanded {
		localMidnight := dateTimeSeconds(er.Year, er.Month, er.Day, 0)
		diff := localMidnight - startUTC
		if diff < 0 {
			diff = -diff
		}
		if diff > maxAbsDiffSeconds {
			continue
		}
		dtY, dtM, dtD, dtTOD := caltime.NormalizeDay(er.Year, er.Month, er.Day, er.Line.At.Duration)
		u := toUTC(dtY, dtM, dtD, dtTOD, er.Line.At.Form, offset, er.Line.Save.Duration)
		if u <= startUTC && u > bestUTC {
			bestUTC = u
			best = i
		}
	}
	if bestUTC != math.MinInt64 {
		return best
	}
	return idx
}

// toUTC is the flag-conversion law of spec.md §4.D: u leaves dt unchanged,
// w subtracts both offset and save, s subtracts only offset.
func toUTC(year int, month time.Month, day int, timeOfDay time.Duration, flag tzdata.TimeForm, offset, save time.Duration) int64 {
	local := dateTimeSeconds(year, month, day, timeOfDay)
	switch flag {
	case tzdata.UniversalTime:
		return local
	case tzdata.WallClock:
		return local - int64(offset/time.Second) - int64(save/time.Second)
	case tzdata.StandardTime:
		return local - int64(offset/time.Second)
	default:
		panic(fmt.Sprintf("resolve: invalid flag conversion form %v", flag))
	}
}

func dateTimeSeconds(year int, month time.Month, day int, timeOfDay time.Duration) int64 {
	year, month, day, timeOfDay = caltime.NormalizeDay(year, month, day, timeOfDay)
	return unixtime.FromDateTime(year, int(month), day, 0, 0, 0) + int64(timeOfDay/time.Second)
}

// resolveUntil expands a possibly-partial zone UNTIL into concrete
// (year, month, day, time-of-day, flag) fields, defaulting missing trailing
// fields to their earliest possible value per spec.md §4.B. The final
// return value reports whether the period is open-ended (no UNTIL at all).
func resolveUntil(u tzdata.Until) (year int, month time.Month, day int, timeOfDay time.Duration, flag tzdata.TimeForm, open bool) {
	if !u.Defined {
		return 0, time.January, 1, 0, tzdata.UniversalTime, true
	}

	year = u.Year
	month = time.January
	if u.Parts.Has(tzdata.UntilMonth) {
		month = u.Month
	}

	if u.Parts.Has(tzdata.UntilDay) {
		if u.Day.Form == tzdata.DayFormDayNum {
			day = u.Day.Num
		} else {
			year, month, day = caltime.Resolve(year, month, dayToOn(u.Day))
		}
	} else {
		day = 1
	}

	flag = tzdata.WallClock
	if u.Parts.Has(tzdata.UntilTime) {
		timeOfDay = u.Time.Duration
		flag = u.Time.Form
	}
	return year, month, day, timeOfDay, flag, false
}

func dayToOn(d tzdata.Day) caltime.On {
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
		panic("resolve: invalid DayForm")
	}
}
