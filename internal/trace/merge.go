package trace

import (
	"fmt"
)

// bucket is the derived key that groups segments claiming the same output
// file: day of year, hour and channel slot.
type bucket struct {
	year, yday, hour int
	suffix           string
}

func (s *Segment) bucket() bucket {
	t := s.Start.UTC()
	return bucket{year: t.Year(), yday: t.YearDay(), hour: t.Hour(), suffix: s.Suffix}
}

// Reconcile collapses segments that map to the same output hour, a symptom
// of data gaps or sample rate changes in the source recording.  segs must
// be sorted by ascending start time.
//
// Within a group the oldest members are discarded until all remaining
// sample rates agree (a mid-recording rate change makes older members
// stale), then the survivors are concatenated into the earliest remaining
// member with zeroes filling any time gaps.
//
// Reconcile returns one segment per group plus the backing file paths of
// the members that were discarded or absorbed, so the caller can remove
// them from the scratch directory.
func Reconcile(segs []*Segment) ([]*Segment, []string) {
	groups := make(map[bucket][]*Segment)
	var order []bucket

	for _, s := range segs {
		k := s.bucket()
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], s)
	}

	var out []*Segment
	var removed []string

	for _, k := range order {
		merged, obsolete := mergeGroup(groups[k])
		out = append(out, merged)
		removed = append(removed, obsolete...)
	}

	return out, removed
}

func mergeGroup(group []*Segment) (*Segment, []string) {
	if len(group) == 0 {
		panic("trace: empty merge group")
	}
	if len(group) == 1 {
		return group[0], nil
	}

	var removed []string

	// Discard oldest first until the remaining sample rates agree.
	for len(group) > 1 && !sameRate(group) {
		removed = append(removed, group[0].Path)
		group = group[1:]
	}
	if len(group) == 0 {
		// unreachable: the grouping key includes the channel slot and a
		// single member always agrees with itself.
		panic("trace: merge group empty after rate reconciliation")
	}
	if len(group) == 1 {
		return group[0], removed
	}

	base := group[0]
	rate := base.SampleRate

	end := base.End()
	for _, s := range group[1:] {
		if s.calibrated || base.calibrated {
			panic(fmt.Sprintf("trace: merge of calibrated segment %s", s.Path))
		}
		if e := s.End(); e.After(end) {
			end = e
		}
	}

	n := int(end.Sub(base.Start).Seconds()*rate+0.5) + 1
	merged := make([]int32, n)

	for _, s := range group {
		at := int(s.Start.Sub(base.Start).Seconds()*rate + 0.5)
		copy(merged[at:], s.counts)
		if s != base {
			removed = append(removed, s.Path)
		}
	}

	base.counts = merged

	return base, removed
}

func sameRate(group []*Segment) bool {
	for _, s := range group[1:] {
		if s.SampleRate != group[0].SampleRate {
			return false
		}
	}
	return true
}
