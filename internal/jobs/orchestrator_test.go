package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediacut/videocut/internal/ffmpeg"
	"github.com/mediacut/videocut/internal/segments"
	"github.com/mediacut/videocut/internal/types"
)

type fakeProber struct {
	fn func(path string) (float64, error)
}

func (p *fakeProber) ProbeDuration(_ context.Context, path string) (float64, error) {
	return p.fn(path)
}

type fakeEncoder struct {
	block chan struct{} // if non-nil, Encode waits until closed
	err   error
	skip  bool // if true, do not create the output file
}

func (e *fakeEncoder) Encode(_ context.Context, args []string) error {
	if e.block != nil {
		<-e.block
	}
	if e.err != nil {
		return e.err
	}
	if !e.skip {
		out := args[len(args)-1]
		if err := os.WriteFile(out, []byte("clip"), 0644); err != nil {
			return err
		}
	}
	return nil
}

func writeInput(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "input.mp4")
	require.NoError(t, os.WriteFile(path, []byte("video"), 0644))
	return path
}

func newTestOrchestrator(t *testing.T, prober Prober, encoder Encoder, maxConcurrent int) (*Orchestrator, string) {
	t.Helper()
	dir := t.TempDir()
	o := NewOrchestrator(NewRegistry(time.Hour), prober, encoder, Config{
		MaxConcurrent: maxConcurrent,
		OutputDir:     dir,
	})
	o.Start()
	t.Cleanup(o.Stop)
	return o, dir
}

func waitTerminal(t *testing.T, o *Orchestrator, jobID string) *Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	lastProgress := -1
	for time.Now().Before(deadline) {
		job, err := o.Status(jobID)
		require.NoError(t, err)
		require.GreaterOrEqual(t, job.Progress, lastProgress, "progress went backwards")
		lastProgress = job.Progress
		if job.Terminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", jobID)
	return nil
}

func TestSubmit_RejectsStructurallyInvalidSegments(t *testing.T) {
	o, dir := newTestOrchestrator(t, &fakeProber{fn: func(string) (float64, error) { return 100, nil }}, &fakeEncoder{}, 2)
	input := writeInput(t, dir)

	_, err := o.Submit(input, nil)
	var verr *segments.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = o.Submit(input, []segments.Segment{{Start: 5, End: 3}})
	assert.True(t, errors.As(err, &verr))
}

func TestSubmit_RejectsMissingFile(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeProber{fn: func(string) (float64, error) { return 100, nil }}, &fakeEncoder{}, 2)

	_, err := o.Submit("does/not/exist.mp4", []segments.Segment{{Start: 0, End: 1}})
	assert.ErrorContains(t, err, "not found")
}

func TestSubmit_ConcurrencyCeiling(t *testing.T) {
	release := make(chan struct{})
	encoder := &fakeEncoder{block: release}
	o, dir := newTestOrchestrator(t, &fakeProber{fn: func(string) (float64, error) { return 100, nil }}, encoder, 2)
	input := writeInput(t, dir)
	deletes := []segments.Segment{{Start: 0, End: 10}}

	id1, err := o.Submit(input, deletes)
	require.NoError(t, err)
	id2, err := o.Submit(input, deletes)
	require.NoError(t, err)

	_, err = o.Submit(input, deletes)
	assert.True(t, errors.Is(err, ErrTooManyJobs))

	for _, id := range []string{id1, id2} {
		job, err := o.Status(id)
		require.NoError(t, err)
		assert.Equal(t, types.StatusProcessing, job.Status)
	}

	close(release)
	waitTerminal(t, o, id1)
	waitTerminal(t, o, id2)

	// Capacity is back once the running jobs finish.
	_, err = o.Submit(input, deletes)
	require.NoError(t, err)
}

func TestJobLifecycle_Success(t *testing.T) {
	prober := &fakeProber{fn: func(path string) (float64, error) {
		if filepath.Base(path) == "input.mp4" {
			return 100, nil
		}
		return 80, nil
	}}
	o, dir := newTestOrchestrator(t, prober, &fakeEncoder{}, 2)
	input := writeInput(t, dir)

	jobID, err := o.Submit(input, []segments.Segment{{Start: 10, End: 20}, {Start: 18, End: 30}})
	require.NoError(t, err)

	job := waitTerminal(t, o, jobID)
	require.Equal(t, types.StatusCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	require.NotNil(t, job.Result)

	assert.Equal(t, []segments.Segment{{Start: 0, End: 10}, {Start: 30, End: 100}}, job.Result.KeepSegments)
	assert.InDelta(t, 100.0, job.Result.OriginalDuration, 1e-9)
	assert.InDelta(t, 80.0, job.Result.NewDuration, 1e-9)
	assert.InDelta(t, 0.8, job.Result.CompressionRatio, 1e-9)

	if _, err := os.Stat(job.Result.OutputPath); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
}

func TestJobFailure_ProbeError(t *testing.T) {
	prober := &fakeProber{fn: func(string) (float64, error) {
		return 0, ffmpeg.ErrProbeTimeout
	}}
	o, dir := newTestOrchestrator(t, prober, &fakeEncoder{}, 2)
	input := writeInput(t, dir)

	jobID, err := o.Submit(input, []segments.Segment{{Start: 0, End: 10}})
	require.NoError(t, err)

	job := waitTerminal(t, o, jobID)
	assert.Equal(t, types.StatusFailed, job.Status)
	assert.Equal(t, 10, job.Progress) // frozen at the last successful milestone
	assert.Contains(t, job.ErrorMessage, "probing input duration")
}

func TestJobFailure_ValidationAgainstDuration(t *testing.T) {
	prober := &fakeProber{fn: func(string) (float64, error) { return 50, nil }}
	o, dir := newTestOrchestrator(t, prober, &fakeEncoder{}, 2)
	input := writeInput(t, dir)

	jobID, err := o.Submit(input, []segments.Segment{{Start: 0, End: 60}})
	require.NoError(t, err)

	job := waitTerminal(t, o, jobID)
	assert.Equal(t, types.StatusFailed, job.Status)
	assert.Equal(t, 20, job.Progress)
	assert.Contains(t, job.ErrorMessage, "exceeds file duration")
}

func TestJobFailure_FullDeletion(t *testing.T) {
	prober := &fakeProber{fn: func(string) (float64, error) { return 60, nil }}
	o, dir := newTestOrchestrator(t, prober, &fakeEncoder{}, 2)
	input := writeInput(t, dir)

	jobID, err := o.Submit(input, []segments.Segment{{Start: 0, End: 60}})
	require.NoError(t, err)

	job := waitTerminal(t, o, jobID)
	assert.Equal(t, types.StatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "no remaining content")
}

func TestJobFailure_EncodeError(t *testing.T) {
	prober := &fakeProber{fn: func(string) (float64, error) { return 100, nil }}
	encoder := &fakeEncoder{err: &ffmpeg.ToolError{Tool: "ffmpeg", Stderr: "Invalid data found", Err: errors.New("exit status 1")}}
	o, dir := newTestOrchestrator(t, prober, encoder, 2)
	input := writeInput(t, dir)

	jobID, err := o.Submit(input, []segments.Segment{{Start: 0, End: 10}})
	require.NoError(t, err)

	job := waitTerminal(t, o, jobID)
	assert.Equal(t, types.StatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "Invalid data found")
}

func TestJobFailure_OutputMissing(t *testing.T) {
	prober := &fakeProber{fn: func(string) (float64, error) { return 100, nil }}
	o, dir := newTestOrchestrator(t, prober, &fakeEncoder{skip: true}, 2)
	input := writeInput(t, dir)

	jobID, err := o.Submit(input, []segments.Segment{{Start: 0, End: 10}})
	require.NoError(t, err)

	job := waitTerminal(t, o, jobID)
	assert.Equal(t, types.StatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "produced no output")
}

func TestCompressionRatio_ZeroOriginal(t *testing.T) {
	assert.Equal(t, 0.0, compressionRatio(10, 0))
	assert.InDelta(t, 0.5, compressionRatio(50, 100), 1e-9)
}
