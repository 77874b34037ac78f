// Package tzcompile orchestrates a whole tzdata.File into the in-memory
// name -> TimeZone mapping spec.md §6 calls the compiler's output, and
// optionally sinks each resolved zone into the RFC 8536 TZif binary format.
package tzcompile

import (
	"fmt"
	"sort"
	"time"

	"tzatlas/internal/resolve"
	"tzatlas/tzdata"
	"tzatlas/tzif"
)

// Compile resolves every zone named in f's Zone stanzas, applies f's Link
// aliases, and returns the resulting name -> TimeZone map. Zone names are
// processed in sorted order so the map's construction is deterministic,
// per spec.md §9's note that zone iteration order should not depend on
// file order.
func Compile(f tzdata.File) (map[string]resolve.TimeZone, error) {
	zones := groupZoneLines(f.ZoneLines)
	ruleSets := groupRuleLines(f.RuleLines)
	cache := resolve.NewCache()

	names := make([]string, 0, len(zones))
	for name := range zones {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make(map[string]resolve.TimeZone, len(zones)+len(f.LinkLines))
	for _, name := range names {
		tz, err := resolve.Resolve(name, zones[name], ruleSets, cache)
		if err != nil {
			return nil, fmt.Errorf("compiling zone %s: %w", name, err)
		}
		result[name] = tz
	}

	for _, link := range f.LinkLines {
		canonical, ok := result[link.From]
		if !ok {
			return nil, fmt.Errorf("link %s -> %s: unknown canonical zone %q", link.From, link.To, link.From)
		}
		result[link.To] = canonical
	}

	return result, nil
}

func groupZoneLines(lines []tzdata.ZoneLine) map[string][]tzdata.ZoneLine {
	zones := make(map[string][]tzdata.ZoneLine)
	var lastName string
	for _, l := range lines {
		if !l.Continuation {
			lastName = l.Name
		}
		zones[lastName] = append(zones[lastName], l)
	}
	return zones
}

func groupRuleLines(lines []tzdata.RuleLine) map[string][]tzdata.RuleLine {
	rules := make(map[string][]tzdata.RuleLine)
	for _, r := range lines {
		rules[r.Name] = append(rules[r.Name], r)
	}
	return rules
}

// CompileToTZif sinks a resolved zone set into RFC 8536 TZif v2 byte
// streams, one Data value per zone name. Leap-second records and the
// trailing TZ string are written empty: TZif binary compatibility with zic
// is out of scope (spec.md §1c), this sink only needs to be internally
// consistent.
func CompileToTZif(zones map[string]resolve.TimeZone) (map[string]tzif.Data, error) {
	result := make(map[string]tzif.Data, len(zones))
	for name, tz := range zones {
		d, err := EncodeTZif(tz)
		if err != nil {
			return nil, fmt.Errorf("encoding zone %s: %w", name, err)
		}
		result[name] = d
	}
	return result, nil
}

// EncodeTZif encodes a single resolved TimeZone as a TZif v2 Data value.
func EncodeTZif(tz resolve.TimeZone) (tzif.Data, error) {
	var data tzif.Data
	data.Version = tzif.V2

	switch z := tz.(type) {
	case resolve.FixedTimeZone:
		var designation []byte
		var idx uint8
		designation, idx = appendDesignation(designation, z.Abbr)
		data.V2Data.LocalTimeTypeRecord = []tzif.LocalTimeTypeRecord{{
			Utoff: int32(z.Offset / time.Second),
			Dst:   z.Save != 0,
			Idx:   idx,
		}}
		data.V2Data.TimeZoneDesignation = designation

	case resolve.VariableTimeZone:
		typeIndex := make(map[resolve.FixedTimeZone]uint8)
		var designation []byte
		for _, tr := range z.Transitions {
			idx, ok := typeIndex[tr.Zone]
			if ok {
				data.V2Data.TransitionTimes = append(data.V2Data.TransitionTimes, tr.UTC)
				data.V2Data.TransitionTypes = append(data.V2Data.TransitionTypes, idx)
				continue
			}
			var desigIdx uint8
			designation, desigIdx = appendDesignation(designation, tr.Zone.Abbr)
			rec := tzif.LocalTimeTypeRecord{
				Utoff: int32(tr.Zone.Offset / time.Second),
				Dst:   tr.Zone.Save != 0,
				Idx:   desigIdx,
			}
			data.V2Data.LocalTimeTypeRecord = append(data.V2Data.LocalTimeTypeRecord, rec)
			idx = uint8(len(data.V2Data.LocalTimeTypeRecord) - 1)
			typeIndex[tr.Zone] = idx

			data.V2Data.TransitionTimes = append(data.V2Data.TransitionTimes, tr.UTC)
			data.V2Data.TransitionTypes = append(data.V2Data.TransitionTypes, idx)
		}
		data.V2Data.TimeZoneDesignation = designation

	default:
		return data, fmt.Errorf("tzcompile: unsupported TimeZone type %T", tz)
	}

	data.V2Header.Version = tzif.V2
	data.V2Header.Timecnt = uint32(len(data.V2Data.TransitionTimes))
	data.V2Header.Typecnt = uint32(len(data.V2Data.LocalTimeTypeRecord))
	data.V2Header.Charcnt = uint32(len(data.V2Data.TimeZoneDesignation))

	copyV1(&data)
	return data, nil
}

// appendDesignation interns desig into designations, null-terminated, and
// returns the byte offset zic-style TZif readers expect in Idx.
func appendDesignation(designations []byte, desig string) ([]byte, uint8) {
	needle := append([]byte(desig), 0x00)
	if idx := indexBytes(designations, needle); idx != -1 {
		return designations, uint8(idx)
	}
	idx := len(designations)
	return append(designations, needle...), uint8(idx)
}

func indexBytes(haystack, needle []byte) int {
	n, m := len(haystack), len(needle)
	for i := 0; i+m <= n; i++ {
		if string(haystack[i:i+m]) == string(needle) {
			return i
		}
	}
	return -1
}

// copyV1 derives the mandatory V1 data block from the V2 block already
// populated, truncating transition times to int32 as the legacy format
// requires.
func copyV1(data *tzif.Data) {
	data.V1Data.LocalTimeTypeRecord = data.V2Data.LocalTimeTypeRecord
	data.V1Data.TimeZoneDesignation = data.V2Data.TimeZoneDesignation
	data.V1Data.TransitionTypes = data.V2Data.TransitionTypes

	for _, t := range data.V2Data.TransitionTimes {
		data.V1Data.TransitionTimes = append(data.V1Data.TransitionTimes, int32(t))
	}

	data.V1Header.Version = tzif.V1
	data.V1Header.Typecnt = uint32(len(data.V1Data.LocalTimeTypeRecord))
	data.V1Header.Charcnt = uint32(len(data.V1Data.TimeZoneDesignation))
	data.V1Header.Timecnt = uint32(len(data.V1Data.TransitionTimes))
}
