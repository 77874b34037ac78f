package tzcompile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tzatlas/internal/resolve"
	"tzatlas/tzdata"
	"tzatlas/tzif"
)

func mustParse(t *testing.T, s string) tzdata.File {
	t.Helper()
	f, err := tzdata.Parse(strings.NewReader(strings.TrimSpace(s)))
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestCompile_FixedZoneAndLink(t *testing.T) {
	f := mustParse(t, `
Zone Etc/GMT 0 - GMT
Link Etc/GMT Etc/GMT0
`)
	zones, err := Compile(f)
	if err != nil {
		t.Fatal(err)
	}
	canonical, ok := zones["Etc/GMT"]
	if !ok {
		t.Fatal("missing Etc/GMT")
	}
	alias, ok := zones["Etc/GMT0"]
	if !ok {
		t.Fatal("missing Etc/GMT0 link alias")
	}
	if canonical != alias {
		t.Errorf("link alias not structurally equal to canonical: %+v vs %+v", canonical, alias)
	}
	if _, ok := canonical.(resolve.FixedTimeZone); !ok {
		t.Errorf("got %T, want FixedTimeZone", canonical)
	}
}

func TestCompile_UnknownLinkTargetIsFatal(t *testing.T) {
	f := mustParse(t, `
Zone Etc/GMT 0 - GMT
Link Etc/Nonexistent Etc/Alias
`)
	if _, err := Compile(f); err == nil {
		t.Fatal("expected an error for a link to an unknown canonical zone")
	}
}

func TestCompile_RuleDrivenZone(t *testing.T) {
	f := mustParse(t, `
Rule EU 1981 max - Mar lastSun 1:00u 1:00 S
Rule EU 1996 max - Oct lastSun 1:00u 0 -
Zone Europe/Berlin 1:00 EU CE%sT
`)
	zones, err := Compile(f)
	if err != nil {
		t.Fatal(err)
	}
	tz, ok := zones["Europe/Berlin"]
	if !ok {
		t.Fatal("missing Europe/Berlin")
	}
	vtz, ok := tz.(resolve.VariableTimeZone)
	if !ok {
		t.Fatalf("got %T, want VariableTimeZone", tz)
	}
	if len(vtz.Transitions) == 0 {
		t.Fatal("expected at least one transition")
	}
}

func TestEncodeTZif_FixedZoneRoundTripsShape(t *testing.T) {
	tz := resolve.FixedTimeZone{Abbr: "GMT", Offset: 0, Save: 0}
	data, err := EncodeTZif(tz)
	if err != nil {
		t.Fatal(err)
	}
	if len(data.V2Data.LocalTimeTypeRecord) != 1 {
		t.Fatalf("got %d local time types, want 1", len(data.V2Data.LocalTimeTypeRecord))
	}
	if len(data.V2Data.TransitionTimes) != 0 {
		t.Errorf("fixed zone should have no transitions, got %d", len(data.V2Data.TransitionTimes))
	}
	if got := string(data.V2Data.TimeZoneDesignation); got != "GMT\x00" {
		t.Errorf("designation = %q, want %q", got, "GMT\x00")
	}
}

func TestEncodeTZif_VariableZoneDedupesLocalTimeTypes(t *testing.T) {
	a := resolve.FixedTimeZone{Abbr: "CET", Offset: 3600 * 1e9, Save: 0}
	b := resolve.FixedTimeZone{Abbr: "CEST", Offset: 7200 * 1e9, Save: 3600 * 1e9}
	vtz := resolve.VariableTimeZone{
		Name: "Europe/Berlin",
		Transitions: []resolve.Transition{
			{UTC: 100, Zone: a},
			{UTC: 200, Zone: b},
			{UTC: 300, Zone: a},
		},
	}
	data, err := EncodeTZif(vtz)
	if err != nil {
		t.Fatal(err)
	}
	if len(data.V2Data.LocalTimeTypeRecord) != 2 {
		t.Fatalf("got %d distinct local time types, want 2", len(data.V2Data.LocalTimeTypeRecord))
	}
	if len(data.V2Data.TransitionTimes) != 3 {
		t.Fatalf("got %d transitions, want 3", len(data.V2Data.TransitionTimes))
	}
	if data.V2Data.TransitionTypes[0] != data.V2Data.TransitionTypes[2] {
		t.Errorf("first and third transitions should share a local time type")
	}
	if data.V1Header.Timecnt != data.V2Header.Timecnt {
		t.Errorf("v1/v2 timecnt mismatch: %d vs %d", data.V1Header.Timecnt, data.V2Header.Timecnt)
	}
}

// TestCompileToTZif_RoundTripsThroughBinaryCodec drives a resolved,
// rule-driven zone all the way through EncodeTZif and tzif.Data.Encode,
// then decodes the bytes back with tzif.DecodeData and checks the result
// matches what EncodeTZif produced. This is the path cmd/tzatlas compile
// --tzif exercises; it would not be caught by the tzif package's own
// fixture-based codec tests, which never see a compiled zone.
func TestCompileToTZif_RoundTripsThroughBinaryCodec(t *testing.T) {
	f := mustParse(t, `
Rule EU 1981 max - Mar lastSun 1:00u 1:00 S
Rule EU 1996 max - Oct lastSun 1:00u 0 -
Zone Europe/Berlin 1:00 EU CE%sT
`)
	zones, err := Compile(f)
	if err != nil {
		t.Fatal(err)
	}

	encoded, err := CompileToTZif(zones)
	if err != nil {
		t.Fatal(err)
	}
	want, ok := encoded["Europe/Berlin"]
	if !ok {
		t.Fatal("missing encoded Europe/Berlin")
	}

	var buf bytes.Buffer
	if err := want.Encode(&buf); err != nil {
		t.Fatal(err)
	}

	got, err := tzif.DecodeData(&buf)
	if err != nil {
		t.Fatalf("DecodeData() failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got.V2Header.Timecnt == 0 {
		t.Error("expected at least one transition from the rule-driven zone")
	}
}
