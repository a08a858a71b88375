package ffmpeg

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediacut/videocut/internal/segments"
)

func TestBuildCutArgs_SingleSegment(t *testing.T) {
	args, err := BuildCutArgs("uploads/in.mp4", []segments.Segment{{Start: 10, End: 90}}, "processed/out.mp4")
	require.NoError(t, err)

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-i uploads/in.mp4")
	assert.Contains(t, joined, "-ss 10.000")
	assert.Contains(t, joined, "-to 90.000")
	assert.Contains(t, joined, "-c:v libx264")
	assert.Contains(t, joined, "-c:a aac")
	assert.Contains(t, joined, "-avoid_negative_ts make_zero")
	assert.Contains(t, joined, "-movflags +faststart")
	assert.NotContains(t, joined, "-filter_complex")
	assert.Equal(t, "processed/out.mp4", args[len(args)-1])
}

func TestBuildCutArgs_MultiSegmentGraph(t *testing.T) {
	keep := []segments.Segment{{Start: 0, End: 10}, {Start: 30, End: 100}}
	args, err := BuildCutArgs("in.mp4", keep, "out.mp4")
	require.NoError(t, err)

	graph := argAfter(t, args, "-filter_complex")
	wantStages := []string{
		"[0:v]trim=start=0.000:end=10.000,setpts=PTS-STARTPTS[v0]",
		"[0:a]atrim=start=0.000:end=10.000,asetpts=PTS-STARTPTS[a0]",
		"[0:v]trim=start=30.000:end=100.000,setpts=PTS-STARTPTS[v1]",
		"[0:a]atrim=start=30.000:end=100.000,asetpts=PTS-STARTPTS[a1]",
		"[v0][a0][v1][a1]concat=n=2:v=1:a=1[vout][aout]",
	}
	assert.Equal(t, strings.Join(wantStages, ";"), graph)

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-map [vout]")
	assert.Contains(t, joined, "-map [aout]")
}

func TestBuildCutArgs_ConcatKeepsAscendingOrder(t *testing.T) {
	keep := []segments.Segment{{Start: 5, End: 15}, {Start: 20, End: 30}, {Start: 40, End: 55}}
	args, err := BuildCutArgs("in.mp4", keep, "out.mp4")
	require.NoError(t, err)

	graph := argAfter(t, args, "-filter_complex")
	for i, seg := range keep {
		stage := fmt.Sprintf("trim=start=%.3f:end=%.3f,setpts=PTS-STARTPTS[v%d]", seg.Start, seg.End, i)
		assert.Contains(t, graph, stage)
	}
	assert.Contains(t, graph, "concat=n=3:v=1:a=1")
}

func TestBuildCutArgs_DropsSegmentsBelowEncodeFloor(t *testing.T) {
	keep := []segments.Segment{
		{Start: 0, End: 0.2}, // below the 0.3s floor
		{Start: 10, End: 20},
		{Start: 30, End: 40},
	}
	args, err := BuildCutArgs("in.mp4", keep, "out.mp4")
	require.NoError(t, err)

	graph := argAfter(t, args, "-filter_complex")
	assert.NotContains(t, graph, "end=0.200")
	assert.Contains(t, graph, "concat=n=2:v=1:a=1")
}

func TestBuildCutArgs_SingleSurvivorUsesTrimPath(t *testing.T) {
	keep := []segments.Segment{
		{Start: 0, End: 0.2},
		{Start: 10, End: 20},
	}
	args, err := BuildCutArgs("in.mp4", keep, "out.mp4")
	require.NoError(t, err)
	assert.NotContains(t, strings.Join(args, " "), "-filter_complex")
	assert.Contains(t, strings.Join(args, " "), "-ss 10.000")
}

func TestBuildCutArgs_NoValidSegments(t *testing.T) {
	keep := []segments.Segment{{Start: 0, End: 0.1}, {Start: 5, End: 5.2}}
	_, err := BuildCutArgs("in.mp4", keep, "out.mp4")
	assert.True(t, errors.Is(err, ErrNoValidSegments))

	_, err = BuildCutArgs("in.mp4", nil, "out.mp4")
	assert.True(t, errors.Is(err, ErrNoValidSegments))
}

func TestOutputPath(t *testing.T) {
	out := OutputPath("uploads/lecture.mp4", "processed")
	assert.True(t, strings.HasPrefix(out, "processed/lecture_cut_"), out)
	assert.True(t, strings.HasSuffix(out, ".mp4"), out)
}

func argAfter(t *testing.T, args []string, flag string) string {
	t.Helper()
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
	return ""
}
