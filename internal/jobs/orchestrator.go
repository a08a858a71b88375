package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mediacut/videocut/internal/ffmpeg"
	"github.com/mediacut/videocut/internal/segments"
	"github.com/mediacut/videocut/internal/types"
)

// DefaultMaxConcurrentJobs caps how many cut jobs run at once. Encodes are
// heavy external processes, so the ceiling is low.
const DefaultMaxConcurrentJobs = 2

// ErrTooManyJobs means the concurrency ceiling is reached; the caller
// should retry once a running job finishes.
var ErrTooManyJobs = errors.New("too many jobs in progress")

// ErrNoRemainingContent means the delete set covered the whole file.
var ErrNoRemainingContent = errors.New("no remaining content after deletion")

// ErrInputNotFound means the submitted input path does not exist.
var ErrInputNotFound = errors.New("input file not found")

// Prober measures a media file's duration.
type Prober interface {
	ProbeDuration(ctx context.Context, filePath string) (float64, error)
}

// Encoder runs an external encode invocation.
type Encoder interface {
	Encode(ctx context.Context, args []string) error
}

// ClipExporter uploads a finished clip somewhere shareable.
type ClipExporter interface {
	UploadClip(localPath string, result *CutResult) (string, error)
}

// Config holds orchestrator settings.
type Config struct {
	MaxConcurrent int
	OutputDir     string
	Exporter      ClipExporter // optional
}

type cutTask struct {
	jobID    string
	filePath string
	deletes  []segments.Segment
}

// Orchestrator admits cut jobs, runs them on a fixed worker pool and tracks
// their lifecycle in the injected registry.
type Orchestrator struct {
	registry *Registry
	prober   Prober
	encoder  Encoder
	cfg      Config

	tasks chan cutTask
	wg    sync.WaitGroup
}

// NewOrchestrator wires an orchestrator; call Start before submitting.
func NewOrchestrator(registry *Registry, prober Prober, encoder Encoder, cfg Config) *Orchestrator {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrentJobs
	}
	return &Orchestrator{
		registry: registry,
		prober:   prober,
		encoder:  encoder,
		cfg:      cfg,
		tasks:    make(chan cutTask, cfg.MaxConcurrent),
	}
}

// Start launches the worker pool.
func (o *Orchestrator) Start() {
	log.Printf("Starting cut worker pool with %d workers", o.cfg.MaxConcurrent)
	for i := 0; i < o.cfg.MaxConcurrent; i++ {
		o.wg.Add(1)
		go o.worker(i)
	}
}

// Stop drains the queue and waits for running jobs to finish.
func (o *Orchestrator) Stop() {
	close(o.tasks)
	o.wg.Wait()
}

// Submit validates the request, admits it against the concurrency ceiling
// and hands it to a worker. It returns the job ID immediately; everything
// after admission is only visible via status polling.
func (o *Orchestrator) Submit(filePath string, deletes []segments.Segment) (string, error) {
	if err := segments.ValidateStructure(deletes); err != nil {
		return "", err
	}
	if _, err := os.Stat(filePath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInputNotFound, filePath)
	}
	if o.registry.CountProcessing() >= o.cfg.MaxConcurrent {
		return "", ErrTooManyJobs
	}

	jobID := uuid.New().String()
	o.registry.Add(jobID)

	select {
	case o.tasks <- cutTask{jobID: jobID, filePath: filePath, deletes: deletes}:
	default:
		// The processing count said there was room but the queue is full;
		// treat it the same as hitting the ceiling.
		o.registry.Update(jobID, func(j *Job) {
			j.Status = types.StatusFailed
			j.ErrorMessage = ErrTooManyJobs.Error()
		})
		return "", ErrTooManyJobs
	}

	log.Printf("Job %s admitted (input: %s, %d delete segments)", jobID, filePath, len(deletes))
	return jobID, nil
}

// Status returns a snapshot of the job record.
func (o *Orchestrator) Status(jobID string) (*Job, error) {
	return o.registry.Get(jobID)
}

func (o *Orchestrator) worker(id int) {
	defer o.wg.Done()
	log.Printf("Cut worker %d started", id)

	for task := range o.tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Worker %d: PANIC processing job %s: %v\n%s",
						id, task.jobID, r, string(debug.Stack()))
					o.fail(task.jobID, fmt.Errorf("worker panic: %v", r))
				}
			}()
			o.process(id, task)
		}()
	}
}

// process runs the full cut pipeline for one job, reporting progress at
// coarse milestones. Any failure freezes progress at the last milestone.
func (o *Orchestrator) process(workerID int, task cutTask) {
	ctx := context.Background()
	log.Printf("Worker %d: Processing job %s", workerID, task.jobID)

	if _, err := os.Stat(task.filePath); err != nil {
		o.fail(task.jobID, fmt.Errorf("%w: %s", ErrInputNotFound, task.filePath))
		return
	}
	o.setProgress(task.jobID, 10)

	duration, err := o.prober.ProbeDuration(ctx, task.filePath)
	if err != nil {
		o.fail(task.jobID, fmt.Errorf("probing input duration: %w", err))
		return
	}
	o.setProgress(task.jobID, 20)

	if err := segments.Validate(task.deletes, duration); err != nil {
		o.fail(task.jobID, err)
		return
	}
	o.setProgress(task.jobID, 30)

	keep := segments.ComputeKeep(duration, task.deletes)
	if len(keep) == 0 {
		o.fail(task.jobID, ErrNoRemainingContent)
		return
	}
	outputPath := ffmpeg.OutputPath(task.filePath, o.cfg.OutputDir)
	args, err := ffmpeg.BuildCutArgs(task.filePath, keep, outputPath)
	if err != nil {
		o.fail(task.jobID, err)
		return
	}
	o.setProgress(task.jobID, 40)

	if len(keep) == 1 {
		o.setProgress(task.jobID, 70)
	} else {
		o.setProgress(task.jobID, 50)
	}
	if err := o.encoder.Encode(ctx, args); err != nil {
		o.fail(task.jobID, fmt.Errorf("encoding: %w", err))
		return
	}

	if _, err := os.Stat(outputPath); err != nil {
		o.fail(task.jobID, fmt.Errorf("encode finished but produced no output: %s", outputPath))
		return
	}
	o.setProgress(task.jobID, 90)

	newDuration, err := o.prober.ProbeDuration(ctx, outputPath)
	if err != nil {
		o.fail(task.jobID, fmt.Errorf("probing output duration: %w", err))
		return
	}

	result := &CutResult{
		OutputPath:       outputPath,
		KeepSegments:     keep,
		DeleteSegments:   task.deletes,
		OriginalDuration: duration,
		NewDuration:      newDuration,
		CompressionRatio: compressionRatio(newDuration, duration),
	}

	if o.cfg.Exporter != nil {
		o.exportClip(workerID, task.jobID, outputPath, result)
	}

	o.registry.Update(task.jobID, func(j *Job) {
		j.Status = types.StatusCompleted
		j.Progress = 100
		j.Result = result
	})
	log.Printf("Worker %d: Job %s completed (%.2fs -> %.2fs, output: %s)",
		workerID, task.jobID, duration, newDuration, outputPath)
}

// exportClip uploads the finished clip with retry; failure only loses the
// share link, never the job.
func (o *Orchestrator) exportClip(workerID int, jobID, outputPath string, result *CutResult) {
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		var url string
		url, err = o.cfg.Exporter.UploadClip(outputPath, result)
		if err == nil {
			result.DriveURL = url
			return
		}
		log.Printf("Worker %d: clip export attempt %d/3 failed for job %s: %v", workerID, attempt, jobID, err)
		if attempt < 3 {
			time.Sleep(time.Duration(attempt*attempt) * time.Second)
		}
	}
	log.Printf("Worker %d: WARNING - clip export failed after 3 attempts, result has no share link", workerID)
}

func (o *Orchestrator) setProgress(jobID string, progress int) {
	o.registry.Update(jobID, func(j *Job) {
		j.Progress = progress
	})
}

func (o *Orchestrator) fail(jobID string, err error) {
	log.Printf("Job %s failed: %v", jobID, err)
	o.registry.Update(jobID, func(j *Job) {
		j.Status = types.StatusFailed
		j.ErrorMessage = err.Error()
	})
}

func compressionRatio(newDuration, originalDuration float64) float64 {
	if originalDuration == 0 {
		return 0
	}
	return newDuration / originalDuration
}
