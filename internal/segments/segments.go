package segments

import (
	"fmt"
	"sort"
)

// MinSegmentDuration is the shortest keep segment worth emitting. Anything
// at or below this is dropped from the keep set.
const MinSegmentDuration = 0.1

// Segment is a time range within a media file, in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// ValidationError identifies the first delete segment that failed validation.
// Index is 1-based to match what callers show to users.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index == 0 {
		return fmt.Sprintf("invalid delete segments: %s", e.Reason)
	}
	return fmt.Sprintf("invalid delete segment %d: %s", e.Index, e.Reason)
}

// ValidateStructure checks the delete set without knowing the file duration:
// the set must be non-empty and every entry must have 0 <= start < end.
// Duration bounds are checked separately once the input has been probed.
func ValidateStructure(segs []Segment) error {
	if len(segs) == 0 {
		return &ValidationError{Reason: "empty segment list"}
	}
	for i, s := range segs {
		if s.Start < 0 || s.End < 0 {
			return &ValidationError{Index: i + 1, Reason: "start and end must be non-negative"}
		}
		if s.Start >= s.End {
			return &ValidationError{Index: i + 1, Reason: fmt.Sprintf("start (%.3f) must be less than end (%.3f)", s.Start, s.End)}
		}
	}
	return nil
}

// Validate checks the full delete set against the file duration.
func Validate(segs []Segment, duration float64) error {
	if err := ValidateStructure(segs); err != nil {
		return err
	}
	for i, s := range segs {
		if s.Start > duration || s.End > duration {
			return &ValidationError{Index: i + 1, Reason: fmt.Sprintf("segment [%.3f, %.3f] exceeds file duration %.3f", s.Start, s.End, duration)}
		}
	}
	return nil
}

// MergeOverlapping collapses overlapping and touching segments into a sorted,
// non-overlapping, non-adjacent list. The input is not modified.
func MergeOverlapping(segs []Segment) []Segment {
	if len(segs) == 0 {
		return nil
	}

	sorted := make([]Segment, len(segs))
	copy(sorted, segs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	merged := make([]Segment, 0, len(sorted))
	acc := sorted[0]
	for _, next := range sorted[1:] {
		if next.Start <= acc.End {
			if next.End > acc.End {
				acc.End = next.End
			}
			continue
		}
		merged = append(merged, acc)
		acc = next
	}
	return append(merged, acc)
}

// ComputeKeep returns the complement of the delete set within [0, duration].
// Keep segments at or below MinSegmentDuration are dropped. An empty result
// means the whole file was deleted; callers must treat that as an error.
func ComputeKeep(duration float64, deletes []Segment) []Segment {
	if len(deletes) == 0 {
		return []Segment{{Start: 0, End: duration}}
	}

	var keep []Segment
	cursor := 0.0
	for _, d := range MergeOverlapping(deletes) {
		if cursor < d.Start {
			keep = append(keep, Segment{Start: cursor, End: d.Start})
		}
		if d.End > cursor {
			cursor = d.End
		}
	}
	if cursor < duration {
		keep = append(keep, Segment{Start: cursor, End: duration})
	}

	filtered := keep[:0]
	for _, s := range keep {
		if s.Duration() > MinSegmentDuration {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// TotalDuration sums the lengths of the given segments.
func TotalDuration(segs []Segment) float64 {
	var total float64
	for _, s := range segs {
		total += s.Duration()
	}
	return total
}
