package resolve

import (
	"testing"
	"time"

	"tzatlas/tzdata"
)

func TestResolve_FixedOnlyZone(t *testing.T) {
	// spec.md §8 boundary scenario 1.
	periods := []tzdata.ZoneLine{
		{Name: "Etc/GMT", Offset: 0, Rules: tzdata.ZoneRules{Form: tzdata.ZoneRulesStandard}, Format: "GMT"},
	}
	got, err := Resolve("Etc/GMT", periods, nil, NewCache())
	if err != nil {
		t.Fatal(err)
	}
	fixed, ok := got.(FixedTimeZone)
	if !ok {
		t.Fatalf("got %T, want FixedTimeZone", got)
	}
	want := FixedTimeZone{Abbr: "GMT", Offset: 0, Save: 0}
	if fixed != want {
		t.Errorf("got %+v, want %+v", fixed, want)
	}
}

func TestFormatAbbr(t *testing.T) {
	// spec.md §8 boundary scenario 6.
	cases := []struct {
		format, letter, want string
	}{
		{"E%sT", "D", "EDT"},
		{"E%sT", "", "ET"},
		{"zzz", "S", ""},
	}
	for _, c := range cases {
		if got := formatAbbr(c.format, c.letter); got != c.want {
			t.Errorf("formatAbbr(%q, %q) = %q, want %q", c.format, c.letter, got, c.want)
		}
	}
}

func TestResolve_RuleDrivenZoneProducesMonotonicTransitions(t *testing.T) {
	ruleSets := map[string][]tzdata.RuleLine{
		"EU": {
			{Name: "EU", From: 1981, To: tzdata.MaxYear, In: time.March, On: tzdata.Day{Form: tzdata.DayFormLast, Day: time.Sunday}, At: tzdata.Time{Duration: time.Hour, Form: tzdata.UniversalTime}, Save: tzdata.Time{Duration: time.Hour, Form: tzdata.DaylightSavingTime}, Letter: "S"},
			{Name: "EU", From: 1996, To: tzdata.MaxYear, In: time.October, On: tzdata.Day{Form: tzdata.DayFormLast, Day: time.Sunday}, At: tzdata.Time{Duration: time.Hour, Form: tzdata.UniversalTime}, Save: tzdata.Time{Duration: 0, Form: tzdata.StandardTime}, Letter: ""},
		},
	}
	periods := []tzdata.ZoneLine{
		{Name: "Europe/Berlin", Offset: time.Hour, Rules: tzdata.ZoneRules{Form: tzdata.ZoneRulesName, Name: "EU"}, Format: "CE%sT"},
	}

	got, err := Resolve("Europe/Berlin", periods, ruleSets, NewCache())
	if err != nil {
		t.Fatal(err)
	}
	vtz, ok := got.(VariableTimeZone)
	if !ok {
		t.Fatalf("got %T, want VariableTimeZone", got)
	}
	if len(vtz.Transitions) < 2 {
		t.Fatalf("got %d transitions, want at least 2", len(vtz.Transitions))
	}
	for i := 1; i < len(vtz.Transitions); i++ {
		if vtz.Transitions[i-1].UTC >= vtz.Transitions[i].UTC {
			t.Fatalf("transitions not monotonic at index %d: %d >= %d", i, vtz.Transitions[i-1].UTC, vtz.Transitions[i].UTC)
		}
	}
	// The first summer-time transition should carry the "S" letter.
	var sawSummer bool
	for _, tr := range vtz.Transitions {
		if tr.Zone.Abbr == "CEST" {
			sawSummer = true
		}
	}
	if !sawSummer {
		t.Errorf("no CEST transition found among %+v", vtz.Transitions)
	}
}

func TestResolve_UnknownRuleSetIsFatal(t *testing.T) {
	periods := []tzdata.ZoneLine{
		{Name: "Europe/Nowhere", Offset: time.Hour, Rules: tzdata.ZoneRules{Form: tzdata.ZoneRulesName, Name: "Missing"}, Format: "C%sT"},
	}
	_, err := Resolve("Europe/Nowhere", periods, nil, NewCache())
	if err == nil {
		t.Fatal("expected an error for an unknown rule set")
	}
}

// TestResolve_PartialUntilDefaults exercises a multi-period zone whose
// UNTIL columns omit trailing fields, the two most common forms in real
// tzdata files (see tzdata/tzdata_test.go's Europe/Zurich example: a
// year-only UNTIL and a year+month UNTIL). Before UntilPartsMask.Has was
// fixed to require all bits of the mask rather than any, a year-only UNTIL
// read the zero-value Month, zeroing resolveUntil's month to time.Month(0)
// and panicking inside unixtime.FromDateTime's day-offset table lookup.
func TestResolve_PartialUntilDefaults(t *testing.T) {
	periods := []tzdata.ZoneLine{
		{Name: "Europe/Testland", Offset: time.Hour, Rules: tzdata.ZoneRules{Form: tzdata.ZoneRulesStandard}, Format: "A",
			Until: tzdata.Until{Defined: true, Year: 2000, Parts: tzdata.UntilYear}},
		{Continuation: true, Offset: 2 * time.Hour, Rules: tzdata.ZoneRules{Form: tzdata.ZoneRulesStandard}, Format: "B",
			Until: tzdata.Until{Defined: true, Year: 2001, Month: time.June, Parts: tzdata.UntilMonth}},
		{Continuation: true, Offset: 3 * time.Hour, Rules: tzdata.ZoneRules{Form: tzdata.ZoneRulesStandard}, Format: "C"},
	}

	got, err := Resolve("Europe/Testland", periods, nil, NewCache())
	if err != nil {
		t.Fatal(err)
	}
	vtz, ok := got.(VariableTimeZone)
	if !ok {
		t.Fatalf("got %T, want VariableTimeZone", got)
	}
	if len(vtz.Transitions) != 3 {
		t.Fatalf("got %d transitions, want 3: %+v", len(vtz.Transitions), vtz.Transitions)
	}

	// 2000-01-01T00:00:00Z (the year-only UNTIL, defaulting month to
	// January and day to 1) minus period one's 1h offset.
	wantT1 := int64(946684800) - int64(time.Hour/time.Second)
	// 2001-06-01T00:00:00Z (the year+month UNTIL, defaulting day to 1)
	// minus period two's 2h offset.
	wantT2 := int64(991353600) - int64(2*time.Hour/time.Second)

	if vtz.Transitions[1].UTC != wantT1 {
		t.Errorf("transition 1 UTC = %d, want %d", vtz.Transitions[1].UTC, wantT1)
	}
	if vtz.Transitions[1].Zone.Abbr != "B" {
		t.Errorf("transition 1 abbr = %q, want %q", vtz.Transitions[1].Zone.Abbr, "B")
	}
	if vtz.Transitions[2].UTC != wantT2 {
		t.Errorf("transition 2 UTC = %d, want %d", vtz.Transitions[2].UTC, wantT2)
	}
	if vtz.Transitions[2].Zone.Abbr != "C" {
		t.Errorf("transition 2 abbr = %q, want %q", vtz.Transitions[2].Zone.Abbr, "C")
	}
	for i := 1; i < len(vtz.Transitions); i++ {
		if vtz.Transitions[i-1].UTC >= vtz.Transitions[i].UTC {
			t.Fatalf("transitions not monotonic at index %d", i)
		}
	}
}
