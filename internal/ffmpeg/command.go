package ffmpeg

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mediacut/videocut/internal/segments"
)

// MinEncodeSegmentDuration is the hard floor for a segment entering the
// concat filter graph. Shorter segments cannot be re-encoded reliably and
// are silently excluded.
const MinEncodeSegmentDuration = 0.3

// ErrNoValidSegments means every keep segment fell below the encode floor.
var ErrNoValidSegments = errors.New("no segments long enough to encode")

// encodeProfile is the fixed re-encode profile shared by both cut paths.
// Stream-copy is deliberately not used: frame-accurate cuts at arbitrary
// timestamps require re-encoding.
var encodeProfile = []string{
	"-c:v", "libx264",
	"-preset", "fast",
	"-crf", "23",
	"-c:a", "aac",
	"-avoid_negative_ts", "make_zero",
	"-movflags", "+faststart",
}

// filterStage is one node of an ffmpeg filter graph: named inputs, a filter
// expression, named outputs. Stages are lowered to the -filter_complex
// string only at argument-build time so the synthesis stays testable.
type filterStage struct {
	inputs  []string
	filter  string
	outputs []string
}

func (s filterStage) render() string {
	var b strings.Builder
	for _, in := range s.inputs {
		b.WriteString("[" + in + "]")
	}
	b.WriteString(s.filter)
	for _, out := range s.outputs {
		b.WriteString("[" + out + "]")
	}
	return b.String()
}

func renderGraph(stages []filterStage) string {
	parts := make([]string, len(stages))
	for i, s := range stages {
		parts[i] = s.render()
	}
	return strings.Join(parts, ";")
}

// BuildCutArgs synthesizes the ffmpeg argument list that renders the keep
// segments into a single seamless output. One segment becomes a direct trim;
// several become a trim-and-concat filter graph keeping original order.
func BuildCutArgs(inputPath string, keep []segments.Segment, outputPath string) ([]string, error) {
	if len(keep) == 0 {
		return nil, ErrNoValidSegments
	}

	if len(keep) == 1 {
		seg := keep[0]
		args := []string{
			"-y",
			"-i", inputPath,
			"-ss", formatSeconds(seg.Start),
			"-to", formatSeconds(seg.End),
		}
		args = append(args, encodeProfile...)
		return append(args, outputPath), nil
	}

	usable := make([]segments.Segment, 0, len(keep))
	for _, seg := range keep {
		if seg.Duration() >= MinEncodeSegmentDuration {
			usable = append(usable, seg)
		}
	}
	if len(usable) == 0 {
		return nil, ErrNoValidSegments
	}
	if len(usable) == 1 {
		return BuildCutArgs(inputPath, usable, outputPath)
	}

	stages := make([]filterStage, 0, 2*len(usable)+1)
	concatInputs := make([]string, 0, 2*len(usable))
	for i, seg := range usable {
		vLabel := fmt.Sprintf("v%d", i)
		aLabel := fmt.Sprintf("a%d", i)
		stages = append(stages, filterStage{
			inputs:  []string{"0:v"},
			filter:  fmt.Sprintf("trim=start=%s:end=%s,setpts=PTS-STARTPTS", formatSeconds(seg.Start), formatSeconds(seg.End)),
			outputs: []string{vLabel},
		})
		stages = append(stages, filterStage{
			inputs:  []string{"0:a"},
			filter:  fmt.Sprintf("atrim=start=%s:end=%s,asetpts=PTS-STARTPTS", formatSeconds(seg.Start), formatSeconds(seg.End)),
			outputs: []string{aLabel},
		})
		concatInputs = append(concatInputs, vLabel, aLabel)
	}
	stages = append(stages, filterStage{
		inputs:  concatInputs,
		filter:  fmt.Sprintf("concat=n=%d:v=1:a=1", len(usable)),
		outputs: []string{"vout", "aout"},
	})

	args := []string{
		"-y",
		"-i", inputPath,
		"-filter_complex", renderGraph(stages),
		"-map", "[vout]",
		"-map", "[aout]",
	}
	args = append(args, encodeProfile...)
	return append(args, outputPath), nil
}

// OutputPath derives the output file path from the input's base name and a
// timestamp, under the processed-output directory.
func OutputPath(inputPath, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	timestamp := time.Now().Format("20060102_150405")
	return filepath.Join(outputDir, fmt.Sprintf("%s_cut_%s.mp4", base, timestamp))
}

func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
