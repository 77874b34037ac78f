package caltime

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestResolve(t *testing.T) {
	type in struct {
		Year  int
		Month time.Month
		On    On
	}
	type want struct {
		Year  int
		Month time.Month
		Day   int
	}
	cases := []struct {
		name string
		in   in
		want want
	}{
		{"day number", in{2021, time.March, On{Form: OnDayNum, Day: 23}}, want{2021, time.March, 23}},
		{"last Sunday", in{2021, time.March, On{Form: OnLastWeekday, Weekday: time.Sunday}}, want{2021, time.March, 28}},

		{"leap day, on-or-after", in{2020, time.February, On{Form: OnWeekdayOnOrAfter, Day: 28, Weekday: time.Saturday}}, want{2020, time.February, 29}},
		{"leap day, last weekday", in{2020, time.February, On{Form: OnLastWeekday, Weekday: time.Saturday}}, want{2020, time.February, 29}},
		{"leap day in non-leap year overflows to March", in{2021, time.February, On{Form: OnWeekdayOnOrAfter, Day: 28, Weekday: time.Saturday}}, want{2021, time.March, 6}},

		{"on-or-after exact day", in{2021, time.March, On{Form: OnWeekdayOnOrAfter, Day: 28, Weekday: time.Sunday}}, want{2021, time.March, 28}},
		{"on-or-after later in month", in{2021, time.March, On{Form: OnWeekdayOnOrAfter, Day: 15, Weekday: time.Sunday}}, want{2021, time.March, 21}},
		{"on-or-after overflows to next month", in{2021, time.March, On{Form: OnWeekdayOnOrAfter, Day: 30, Weekday: time.Sunday}}, want{2021, time.April, 4}},
		{"on-or-after overflows to next year", in{2021, time.December, On{Form: OnWeekdayOnOrAfter, Day: 30, Weekday: time.Sunday}}, want{2022, time.January, 2}},

		{"on-or-before exact day", in{2021, time.March, On{Form: OnWeekdayOnOrBefore, Day: 28, Weekday: time.Sunday}}, want{2021, time.March, 28}},
		{"on-or-before earlier in month", in{2021, time.March, On{Form: OnWeekdayOnOrBefore, Day: 15, Weekday: time.Sunday}}, want{2021, time.March, 14}},
		{"on-or-before overflows to previous month", in{2021, time.March, On{Form: OnWeekdayOnOrBefore, Day: 5, Weekday: time.Sunday}}, want{2021, time.February, 28}},
		{"on-or-before overflows to previous year", in{2021, time.January, On{Form: OnWeekdayOnOrBefore, Day: 2, Weekday: time.Sunday}}, want{2020, time.December, 27}},

		// spec.md §8 boundary scenarios.
		{"lastSun Feb 2000", in{2000, time.February, On{Form: OnLastWeekday, Weekday: time.Sunday}}, want{2000, time.February, 27}},
		{"Sun>=8 March 2015", in{2015, time.March, On{Form: OnWeekdayOnOrAfter, Day: 8, Weekday: time.Sunday}}, want{2015, time.March, 8}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			y, m, d := Resolve(c.in.Year, c.in.Month, c.in.On)
			got := want{y, m, d}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("Resolve(%+v) mismatch (-want +got):\n%s", c.in, diff)
			}
		})
	}
}

func TestNormalizeDay(t *testing.T) {
	cases := []struct {
		name           string
		year           int
		month          time.Month
		day            int
		timeOfDay      time.Duration
		wantYear       int
		wantMonth      time.Month
		wantDay        int
		wantTimeOfDay  time.Duration
	}{
		{"in range", 2015, time.March, 31, 12 * time.Hour, 2015, time.March, 31, 12 * time.Hour},
		{"24:00 rolls to next day", 2015, time.March, 31, 24 * time.Hour, 2015, time.April, 1, 0},
		{"24:00 rolls across year boundary", 2015, time.December, 31, 24 * time.Hour, 2016, time.January, 1, 0},
		{"negative rolls to previous day", 2015, time.March, 1, -2 * time.Hour, 2015, time.February, 28, 22 * time.Hour},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			y, m, d, tod := NormalizeDay(c.year, c.month, c.day, c.timeOfDay)
			want := [4]any{c.wantYear, c.wantMonth, c.wantDay, c.wantTimeOfDay}
			got := [4]any{y, m, d, tod}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("NormalizeDay(...) mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWeekday(t *testing.T) {
	// 2000-02-27 is a known Sunday.
	if got := Weekday(2000, time.February, 27); got != time.Sunday {
		t.Errorf("Weekday(2000, Feb, 27) = %v, want %v", got, time.Sunday)
	}
	if got := Weekday(2021, time.March, 23); got != time.Tuesday {
		t.Errorf("Weekday(2021, Mar, 23) = %v, want %v", got, time.Tuesday)
	}
}
