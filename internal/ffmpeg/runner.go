package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultEncodeTimeout bounds encode invocations. Long encodes are expected,
// so this is generous.
const DefaultEncodeTimeout = 1800 * time.Second

// ErrEncodeTimeout means ffmpeg did not finish within the encode deadline.
var ErrEncodeTimeout = errors.New("ffmpeg encode timed out")

// Runner invokes the external ffmpeg/ffprobe binaries.
type Runner struct {
	ffmpeg        string
	ffprobe       string
	probeTimeout  time.Duration
	encodeTimeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithProbeTimeout overrides the ffprobe deadline.
func WithProbeTimeout(d time.Duration) Option {
	return func(r *Runner) { r.probeTimeout = d }
}

// WithEncodeTimeout overrides the ffmpeg encode deadline.
func WithEncodeTimeout(d time.Duration) Option {
	return func(r *Runner) { r.encodeTimeout = d }
}

// NewRunner creates a Runner. Empty paths fall back to binaries on $PATH.
func NewRunner(ffmpegPath, ffprobePath string, opts ...Option) *Runner {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	r := &Runner{
		ffmpeg:        ffmpegPath,
		ffprobe:       ffprobePath,
		probeTimeout:  DefaultProbeTimeout,
		encodeTimeout: DefaultEncodeTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Encode runs ffmpeg with the given argument list. A non-zero exit surfaces
// the tool's stderr verbatim.
func (r *Runner) Encode(ctx context.Context, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, r.encodeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.ffmpeg, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w after %s", ErrEncodeTimeout, r.encodeTimeout)
		}
		return &ToolError{Tool: "ffmpeg", Stderr: stderr.String(), Err: err}
	}
	return nil
}
