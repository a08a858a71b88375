package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultProbeTimeout bounds ffprobe calls on arbitrary input files.
const DefaultProbeTimeout = 30 * time.Second

var (
	// ErrProbeTimeout means ffprobe did not finish within the deadline.
	ErrProbeTimeout = errors.New("ffprobe timed out")

	// ErrProbeParse means ffprobe succeeded but printed something that is
	// not a finite positive duration.
	ErrProbeParse = errors.New("ffprobe returned an unparsable duration")
)

// ToolError carries a failed tool invocation's stderr.
type ToolError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s failed: %v\n%s", e.Tool, e.Err, e.Stderr)
}

func (e *ToolError) Unwrap() error { return e.Err }

// ProbeDuration returns the total duration of a media file in seconds,
// using ffprobe's container-level duration field.
func (r *Runner) ProbeDuration(ctx context.Context, filePath string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		filePath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return 0, fmt.Errorf("%w after %s: %s", ErrProbeTimeout, r.probeTimeout, filePath)
		}
		return 0, &ToolError{Tool: "ffprobe", Stderr: string(out), Err: err}
	}

	return ParseDuration(string(out))
}

// ParseDuration parses ffprobe's duration output into seconds.
func ParseDuration(out string) (float64, error) {
	s := strings.TrimSpace(out)
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrProbeParse, s)
	}
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrProbeParse, s)
	}
	return sec, nil
}
