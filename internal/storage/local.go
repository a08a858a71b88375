package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mediacut/videocut/internal/types"
)

// LocalStorage saves transcript files to the local filesystem.
type LocalStorage struct {
	outputDir string
}

// NewLocalStorage creates a new local storage handler.
func NewLocalStorage(outputDir string) *LocalStorage {
	return &LocalStorage{
		outputDir: outputDir,
	}
}

// SaveTranscript writes the word-level transcript as JSON under a dated
// directory structure (outputs/2025/01/23/) and returns the file path.
func (ls *LocalStorage) SaveTranscript(fileID string, words []types.Word) (string, error) {
	now := time.Now()
	dateDir := filepath.Join(ls.outputDir,
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()))

	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create date directory: %v", err)
	}

	timestamp := now.Format("20060102_150405")
	jsonPath := filepath.Join(dateDir, fmt.Sprintf("%s_%s.json", timestamp, sanitizeFilename(fileID)))

	payload := map[string]interface{}{
		"file_id":    fileID,
		"word_count": len(words),
		"created_at": now,
		"words":      words,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal transcript: %v", err)
	}

	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save transcript: %v", err)
	}

	return jsonPath, nil
}

// sanitizeFilename removes path separators and bounds the length.
func sanitizeFilename(name string) string {
	result := filepath.Base(name)
	if len(result) > 100 {
		result = result[:100]
	}
	return result
}
