package transcription

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ExtractAudio converts a media file to 16kHz mono WAV, the input format
// the recognizer expects.
func ExtractAudio(inputPath, tempDir string) (string, error) {
	outputPath := filepath.Join(tempDir, fmt.Sprintf("audio_%s.wav", uuid.New().String()))

	cmd := exec.Command("ffmpeg",
		"-i", inputPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg audio extraction failed: %v\nOutput: %s", err, string(output))
	}

	return outputPath, nil
}

// ValidateMediaFormat checks whether the file extension is a supported
// video or audio container.
func ValidateMediaFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	supported := []string{
		".mp4", ".mov", ".mkv", ".avi", ".webm",
		".mp3", ".wav", ".m4a", ".ogg", ".flac", ".aac",
	}

	for _, format := range supported {
		if ext == format {
			return true
		}
	}
	return false
}

// IsVideoFormat reports whether the extension is a video container.
func IsVideoFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, format := range []string{".mp4", ".mov", ".mkv", ".avi", ".webm"} {
		if ext == format {
			return true
		}
	}
	return false
}
