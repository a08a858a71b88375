package segments

import (
	"errors"
	"math"
	"testing"
)

func TestValidate_EmptySet(t *testing.T) {
	err := Validate(nil, 10)
	if err == nil {
		t.Fatalf("expected error for empty set")
	}
}

func TestValidate_RejectsBadSegments(t *testing.T) {
	cases := []struct {
		name      string
		segs      []Segment
		duration  float64
		wantIndex int
	}{
		{"start after end", []Segment{{Start: 5, End: 3}}, 10, 1},
		{"negative start", []Segment{{Start: -1, End: 3}}, 10, 1},
		{"exceeds duration", []Segment{{Start: 0, End: 20}}, 10, 1},
		{"second segment bad", []Segment{{Start: 0, End: 2}, {Start: 4, End: 4}}, 10, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.segs, tc.duration)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Index != tc.wantIndex {
				t.Fatalf("expected index %d, got %d", tc.wantIndex, verr.Index)
			}
		})
	}
}

func TestValidate_AcceptsValidSet(t *testing.T) {
	segs := []Segment{{Start: 0, End: 5}, {Start: 3, End: 8}}
	if err := Validate(segs, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMergeOverlapping(t *testing.T) {
	cases := []struct {
		name string
		in   []Segment
		want []Segment
	}{
		{
			"overlap",
			[]Segment{{10, 20}, {18, 30}},
			[]Segment{{10, 30}},
		},
		{
			"touching merge",
			[]Segment{{0, 5}, {5, 10}},
			[]Segment{{0, 10}},
		},
		{
			"disjoint stay apart",
			[]Segment{{20, 30}, {0, 10}},
			[]Segment{{0, 10}, {20, 30}},
		},
		{
			"contained",
			[]Segment{{0, 30}, {5, 10}},
			[]Segment{{0, 30}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MergeOverlapping(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestMergeOverlapping_Idempotent(t *testing.T) {
	in := []Segment{{0, 5}, {4, 9}, {9, 12}, {20, 25}, {24, 24.5}}
	once := MergeOverlapping(in)
	twice := MergeOverlapping(once)
	if len(once) != len(twice) {
		t.Fatalf("merge not idempotent: %v vs %v", once, twice)
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("merge not idempotent: %v vs %v", once, twice)
		}
	}
}

func TestComputeKeep_NoDeletes(t *testing.T) {
	keep := ComputeKeep(100, nil)
	if len(keep) != 1 || keep[0] != (Segment{0, 100}) {
		t.Fatalf("expected full-file keep, got %v", keep)
	}
}

func TestComputeKeep_OverlappingDeletes(t *testing.T) {
	// Duration 100, delete [10,20] and [18,30].
	keep := ComputeKeep(100, []Segment{{10, 20}, {18, 30}})
	want := []Segment{{0, 10}, {30, 100}}
	if len(keep) != len(want) {
		t.Fatalf("expected %v, got %v", want, keep)
	}
	for i := range keep {
		if keep[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keep)
		}
	}
}

func TestComputeKeep_SingleMiddleKeep(t *testing.T) {
	keep := ComputeKeep(100, []Segment{{0, 10}, {90, 100}})
	if len(keep) != 1 || keep[0] != (Segment{10, 90}) {
		t.Fatalf("expected [{10 90}], got %v", keep)
	}
}

func TestComputeKeep_FullDeletionIsEmpty(t *testing.T) {
	keep := ComputeKeep(60, []Segment{{0, 60}})
	if len(keep) != 0 {
		t.Fatalf("expected empty keep set, got %v", keep)
	}
}

func TestComputeKeep_DropsTinySegments(t *testing.T) {
	// A 0.05s sliver between deletes must not survive.
	keep := ComputeKeep(100, []Segment{{0, 50}, {50.05, 100}})
	if len(keep) != 0 {
		t.Fatalf("expected sliver dropped, got %v", keep)
	}
}

func TestComputeKeep_SortedAndNonOverlapping(t *testing.T) {
	keep := ComputeKeep(300, []Segment{{250, 260}, {10, 20}, {100, 150}, {140, 160}})
	for i := 1; i < len(keep); i++ {
		if keep[i].Start <= keep[i-1].End {
			t.Fatalf("keep segments overlap or touch: %v", keep)
		}
	}
	for _, s := range keep {
		if s.Start >= s.End {
			t.Fatalf("degenerate keep segment: %v", s)
		}
	}
}

func TestComplementarity(t *testing.T) {
	duration := 200.0
	deletes := []Segment{{0, 15}, {10, 40}, {90, 100.5}, {100.5, 120}, {199, 200}}
	merged := MergeOverlapping(deletes)
	keep := ComputeKeep(duration, deletes)

	total := TotalDuration(keep) + TotalDuration(merged)
	if diff := math.Abs(total - duration); diff > 1e-9 {
		t.Fatalf("keep (%f) + delete (%f) != duration (%f)",
			TotalDuration(keep), TotalDuration(merged), duration)
	}
}
