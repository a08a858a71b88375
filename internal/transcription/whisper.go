package transcription

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mediacut/videocut/internal/types"
)

// WhisperTranscriber produces word-level transcripts by shelling out to
// Python's OpenAI Whisper.
type WhisperTranscriber struct {
	modelName string
	tempDir   string
	mu        sync.Mutex // one transcription at a time
}

// NewWhisperTranscriber creates a transcriber for the given model name
// (tiny/base/small/medium/large).
func NewWhisperTranscriber(modelName, tempDir string) *WhisperTranscriber {
	if modelName == "" {
		modelName = "small"
	}
	log.Printf("Initializing Whisper transcriber (model: %s, via: python -m whisper)", modelName)
	return &WhisperTranscriber{
		modelName: modelName,
		tempDir:   tempDir,
	}
}

// Transcribe extracts audio from the media file and returns the word-level
// transcript with timestamps and confidences.
func (wt *WhisperTranscriber) Transcribe(filePath string) ([]types.Word, error) {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	audioPath, err := ExtractAudio(filePath, wt.tempDir)
	if err != nil {
		return nil, err
	}
	defer os.Remove(audioPath)

	outDir, err := os.MkdirTemp(wt.tempDir, "whisper_output")
	if err != nil {
		return nil, fmt.Errorf("failed to create whisper output dir: %v", err)
	}
	defer os.RemoveAll(outDir)

	absAudioPath, err := filepath.Abs(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %v", err)
	}

	cmd := exec.Command("python", "-m", "whisper",
		absAudioPath,
		"--model", wt.modelName,
		"--output_dir", outDir,
		"--output_format", "json",
		"--word_timestamps", "True",
		"--fp16", "False",
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %v\nOutput: %s", err, string(output))
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outDir, baseName+".json")

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read whisper output: %v", err)
	}

	return ParseWhisperWords(jsonData)
}

// ParseWhisperWords flattens Whisper's JSON output into an ordered word list.
func ParseWhisperWords(jsonData []byte) ([]types.Word, error) {
	var out whisperOutput
	if err := json.Unmarshal(jsonData, &out); err != nil {
		return nil, fmt.Errorf("failed to parse whisper JSON: %v", err)
	}

	var words []types.Word
	for _, seg := range out.Segments {
		for _, w := range seg.Words {
			words = append(words, types.Word{
				Word:  strings.TrimSpace(w.Word),
				Start: w.Start,
				End:   w.End,
				Conf:  w.Probability,
			})
		}
	}
	return words, nil
}

// whisperOutput matches Python Whisper's JSON output with word timestamps.
type whisperOutput struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []whisperSegment `json:"segments"`
}

type whisperSegment struct {
	ID    int           `json:"id"`
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Text  string        `json:"text"`
	Words []whisperWord `json:"words"`
}

type whisperWord struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}
