package ruleexpand

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tzatlas/tzdata"
)

func TestExpand_Poland(t *testing.T) {
	// spec.md §8 boundary scenario 2.
	rules := []tzdata.RuleLine{
		{Name: "Poland", From: 1918, To: 1919, In: time.September, On: tzdata.Day{Form: tzdata.DayFormDayNum, Num: 16}, At: tzdata.Time{Duration: 2 * time.Hour, Form: tzdata.StandardTime}, Save: tzdata.Time{}, Letter: ""},
		{Name: "Poland", From: 1919, To: 1919, In: time.April, On: tzdata.Day{Form: tzdata.DayFormDayNum, Num: 15}, At: tzdata.Time{Duration: 2 * time.Hour, Form: tzdata.StandardTime}, Save: tzdata.Time{Duration: time.Hour, Form: tzdata.DaylightSavingTime}, Letter: "S"},
		{Name: "Poland", From: 1944, To: 1944, In: time.April, On: tzdata.Day{Form: tzdata.DayFormDayNum, Num: 3}, At: tzdata.Time{Duration: 2 * time.Hour, Form: tzdata.StandardTime}, Save: tzdata.Time{Duration: time.Hour, Form: tzdata.DaylightSavingTime}, Letter: "S"},
	}

	got, err := Expand("Poland", rules)
	if err != nil {
		t.Fatal(err)
	}

	type date struct {
		Year  int
		Month time.Month
		Day   int
	}
	var gotDates []date
	for _, r := range got {
		gotDates = append(gotDates, date{r.Year, r.Month, r.Day})
	}
	want := []date{
		{1918, time.September, 16},
		{1919, time.April, 15},
		{1919, time.September, 16},
		{1944, time.April, 3},
	}
	if diff := cmp.Diff(want, gotDates); diff != "" {
		t.Errorf("Expand() dates mismatch (-want +got):\n%s", diff)
	}
}

func TestExpand_MultipleYears(t *testing.T) {
	rules := []tzdata.RuleLine{
		{Name: "EU", From: 1981, To: 1983, In: time.March, On: tzdata.Day{Form: tzdata.DayFormLast, Day: time.Sunday}, At: tzdata.Time{Duration: 11 * time.Hour}, Save: tzdata.Time{Duration: time.Hour, Form: tzdata.DaylightSavingTime}, Letter: "S"},
	}
	got, err := Expand("EU", rules)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d expanded rules, want 3", len(got))
	}
	wantDays := []int{29, 28, 27}
	for i, d := range wantDays {
		if got[i].Day != d || got[i].Month != time.March || got[i].Year != 1981+i {
			t.Errorf("got[%d] = %04d-%02d-%02d, want %04d-03-%02d", i, got[i].Year, got[i].Month, got[i].Day, 1981+i, d)
		}
	}
}

func TestExpand_UnboundedYearsClampToSpecRange(t *testing.T) {
	rules := []tzdata.RuleLine{
		{Name: "EU", From: tzdata.MaxYear, To: tzdata.MaxYear, In: time.October, On: tzdata.Day{Form: tzdata.DayFormLast, Day: time.Sunday}, At: tzdata.Time{}, Save: tzdata.Time{}, Letter: ""},
	}
	got, err := Expand("EU", rules)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d expanded rules, want 1", len(got))
	}
	if got[0].Year != MaxYear {
		t.Errorf("got year %d, want %d", got[0].Year, MaxYear)
	}
}
