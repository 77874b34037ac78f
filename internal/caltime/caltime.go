// Package caltime provides the Gregorian calendar arithmetic shared by the
// rule expander and the zone resolver: day counts per month, day-of-week,
// and the four day predicates a tzdata ON field can use (a fixed day number,
// the last occurrence of a weekday, or a weekday on-or-after/on-or-before a
// day number).
package caltime

import "time"

// IsLeapYear reports whether year is a leap year in the proleptic Gregorian
// calendar.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in month of year.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// Weekday returns the day of week for the given date using Zeller's
// congruence. Unlike time.Date, it never needs a time.Location and is valid
// for the full proleptic range tzdata rule years can name.
func Weekday(year int, month time.Month, day int) time.Weekday {
	y, m := year, int(month)
	if m < 3 {
		m += 12
		y--
	}
	k := y % 100
	j := y / 100
	h := (day + ((13 * (m + 1)) / 5) + k + (k / 4) + (j / 4) + (5 * j)) % 7
	// h has Saturday=0, Sunday=1, ...; rotate to time.Weekday's Sunday=0.
	return time.Weekday((h + 6) % 7)
}

// OnForm is the tagged variant of the four forms a rule or zone UNTIL line's
// day field can take, per spec.md §9's design note: a single type carrying
// only the fields its Form needs, dispatched through Resolve.
type OnForm int

const (
	// OnDayNum designates a fixed day of the month.
	OnDayNum OnForm = iota
	// OnLastWeekday designates the last occurrence of Weekday in the month.
	OnLastWeekday
	// OnWeekdayOnOrAfter designates the first Weekday on or after Day.
	OnWeekdayOnOrAfter
	// OnWeekdayOnOrBefore designates the last Weekday on or before Day.
	OnWeekdayOnOrBefore
)

// On is a day predicate as it appears in a rule's ON field or a zone's UNTIL
// field: "23", "lastSun", "Sun>=8", or "Sun<=25".
type On struct {
	Form    OnForm
	Weekday time.Weekday
	Day     int
}

// Resolve returns the (year, month, day) that On designates within month of
// year. The on-or-after/on-or-before forms may overflow into the
// neighboring month or year, exactly as spec.md §4.C requires (e.g. "Oct
// Sun>=31" can fall in November).
func Resolve(year int, month time.Month, on On) (int, time.Month, int) {
	switch on.Form {
	case OnDayNum:
		return year, month, on.Day
	case OnLastWeekday:
		return year, month, lastWeekdayOfMonth(year, month, on.Weekday)
	case OnWeekdayOnOrAfter:
		return weekdayOnOrAfter(year, month, on.Day, on.Weekday)
	case OnWeekdayOnOrBefore:
		return weekdayOnOrBefore(year, month, on.Day, on.Weekday)
	default:
		panic("caltime: invalid OnForm")
	}
}

func lastWeekdayOfMonth(year int, month time.Month, weekday time.Weekday) int {
	lastDay := DaysInMonth(year, month)
	lastDayWeekday := Weekday(year, month, lastDay)
	offset := (int(lastDayWeekday) - int(weekday) + 7) % 7
	return lastDay - offset
}

func weekdayOnOrAfter(year int, month time.Month, day int, weekday time.Weekday) (int, time.Month, int) {
	dow := Weekday(year, month, day)
	diff := (int(weekday) - int(dow) + 7) % 7
	d := day + diff
	daysInMonth := DaysInMonth(year, month)
	if d > daysInMonth {
		d -= daysInMonth
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return year, month, d
}

func weekdayOnOrBefore(year int, month time.Month, day int, weekday time.Weekday) (int, time.Month, int) {
	dow := Weekday(year, month, day)
	diff := (int(dow) - int(weekday) + 7) % 7
	d := day - diff
	if d < 1 {
		month--
		if month < time.January {
			month = time.December
			year--
		}
		d += DaysInMonth(year, month)
	}
	return year, month, d
}

// NormalizeDay folds a time-of-day duration that falls outside [0, 24h) —
// as "24:00" or a negative AT field does — into an adjacent calendar day,
// returning the equivalent (year, month, day, time-of-day) with the
// time-of-day back in range.
func NormalizeDay(year int, month time.Month, day int, timeOfDay time.Duration) (int, time.Month, int, time.Duration) {
	const dayDur = 24 * time.Hour
	for timeOfDay >= dayDur {
		timeOfDay -= dayDur
		year, month, day = addDay(year, month, day)
	}
	for timeOfDay < 0 {
		timeOfDay += dayDur
		year, month, day = subDay(year, month, day)
	}
	return year, month, day, timeOfDay
}

func addDay(year int, month time.Month, day int) (int, time.Month, int) {
	day++
	if day > DaysInMonth(year, month) {
		day = 1
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return year, month, day
}

func subDay(year int, month time.Month, day int) (int, time.Month, int) {
	day--
	if day < 1 {
		month--
		if month < time.January {
			month = time.December
			year--
		}
		day = DaysInMonth(year, month)
	}
	return year, month, day
}
