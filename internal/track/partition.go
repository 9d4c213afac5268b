package track

import (
	"sort"
	"time"
)

// CycleKeyFormat renders a forecast cycle start time as a map key with
// second precision.
const CycleKeyFormat = "20060102T150405"

// CycleKey formats a cycle start time for use in partition maps.
func CycleKey(t time.Time) string { return t.Format(CycleKeyFormat) }

// SeparateTracks partitions a canonical table into
// {advisory → {cycle key → Track}}. The BEST advisory forms a single
// track sorted by valid time; forecast advisories form one track per
// cycle start time, sorted by forecast hour. No record is dropped or
// duplicated: concatenating all tracks reproduces the input as a
// multiset of rows.
func SeparateTracks(data Table) map[AdvisoryCode]map[string]Table {
	tracks := make(map[AdvisoryCode]map[string]Table)

	for _, advisory := range data.Advisories() {
		advisoryData := filterAdvisory(data, advisory)
		byCycle := make(map[string]Table)

		if advisory == AdvisoryBEST {
			best := advisoryData.Clone()
			sort.SliceStable(best, func(i, j int) bool {
				return best[i].Datetime.Before(best[j].Datetime)
			})
			if len(best) > 0 {
				byCycle[CycleKey(best[0].TrackStartTime)] = best
			}
		} else {
			for _, r := range advisoryData {
				key := CycleKey(r.TrackStartTime)
				byCycle[key] = append(byCycle[key], r)
			}
			for key := range byCycle {
				cycle := byCycle[key]
				sort.SliceStable(cycle, func(i, j int) bool {
					return cycle[i].ForecastHours < cycle[j].ForecastHours
				})
				byCycle[key] = cycle
			}
		}

		tracks[advisory] = byCycle
	}

	return tracks
}

// CombineTracks concatenates a track partition back into a single
// canonical table, restoring (datetime, advisory) order.
func CombineTracks(tracks map[AdvisoryCode]map[string]Table) Table {
	var out Table
	for _, advisory := range sortedAdvisoryKeys(tracks) {
		byCycle := tracks[advisory]
		for _, key := range sortedCycleKeys(byCycle) {
			out = append(out, byCycle[key]...)
		}
	}
	out.SortCanonical()
	return out
}

func filterAdvisory(data Table, advisory AdvisoryCode) Table {
	out := make(Table, 0, len(data))
	for _, r := range data {
		if r.Advisory == advisory {
			out = append(out, r)
		}
	}
	return out
}

func sortedAdvisoryKeys(tracks map[AdvisoryCode]map[string]Table) []AdvisoryCode {
	keys := make([]AdvisoryCode, 0, len(tracks))
	for k := range tracks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedCycleKeys(byCycle map[string]Table) []string {
	keys := make([]string, 0, len(byCycle))
	for k := range byCycle {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
