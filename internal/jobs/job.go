package jobs

import (
	"time"

	"github.com/mediacut/videocut/internal/segments"
	"github.com/mediacut/videocut/internal/types"
)

// Job is the record tracked for one cut request. The worker executing the
// job is its only writer; readers get snapshots from the registry.
type Job struct {
	ID           string     `json:"job_id"`
	Status       string     `json:"status"`
	Progress     int        `json:"progress"`
	Result       *CutResult `json:"result,omitempty"`
	ErrorMessage string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Terminal reports whether the job has reached a final state.
func (j *Job) Terminal() bool {
	return j.Status == types.StatusCompleted || j.Status == types.StatusFailed
}

// CutResult is the payload of a completed job.
type CutResult struct {
	OutputPath       string             `json:"output_path"`
	KeepSegments     []segments.Segment `json:"keep_segments"`
	DeleteSegments   []segments.Segment `json:"delete_segments"`
	OriginalDuration float64            `json:"original_duration"`
	NewDuration      float64            `json:"new_duration"`
	CompressionRatio float64            `json:"compression_ratio"`
	DriveURL         string             `json:"gdrive_url,omitempty"`
}

func newJob(id string) *Job {
	now := time.Now()
	return &Job{
		ID:        id,
		Status:    types.StatusProcessing,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
