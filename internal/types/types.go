package types

// Job status constants
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// File type constants for uploaded media
const (
	FileTypeVideo = "video"
	FileTypeAudio = "audio"
)

// Word is one time-aligned word of a transcript.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Conf  float64 `json:"conf"`
}
