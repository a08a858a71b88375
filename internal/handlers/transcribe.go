package handlers

import (
	"log"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/mediacut/videocut/internal/storage"
	"github.com/mediacut/videocut/internal/transcription"
)

// TranscribeHandler produces word-level transcripts for stored media files.
type TranscribeHandler struct {
	transcriber  *transcription.WhisperTranscriber
	localStorage *storage.LocalStorage
	db           *storage.MetadataDB
}

// NewTranscribeHandler creates a new transcribe handler.
func NewTranscribeHandler(
	transcriber *transcription.WhisperTranscriber,
	localStorage *storage.LocalStorage,
	db *storage.MetadataDB,
) *TranscribeHandler {
	return &TranscribeHandler{
		transcriber:  transcriber,
		localStorage: localStorage,
		db:           db,
	}
}

// TranscribeRequest represents the request body.
type TranscribeRequest struct {
	FilePath string `json:"file_path"`
}

// Handle runs the transcriber and stores the result.
func (h *TranscribeHandler) Handle(c *fiber.Ctx) error {
	var req TranscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_INVALID_BODY",
		})
	}

	if _, err := os.Stat(req.FilePath); err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Input file not found",
			"code":  "ERR_FILE_NOT_FOUND",
		})
	}

	words, err := h.transcriber.Transcribe(req.FilePath)
	if err != nil {
		log.Printf("Transcription failed for %s: %v", req.FilePath, err)
		return c.Status(500).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_TRANSCRIBE_FAILED",
		})
	}

	fileID := filepath.Base(req.FilePath)
	localPath := ""
	if len(words) > 0 {
		localPath, err = h.localStorage.SaveTranscript(fileID, words)
		if err != nil {
			log.Printf("Local transcript save failed: %v", err)
		}
		if err := h.db.SaveTranscription(fileID, req.FilePath, localPath, words); err != nil {
			log.Printf("Database transcript save failed: %v", err)
		}
	}

	return c.JSON(fiber.Map{
		"file_id":    fileID,
		"word_count": len(words),
		"transcript": words,
	})
}

// GetHandler returns a stored transcription by file ID.
func (h *TranscribeHandler) GetHandler(c *fiber.Ctx) error {
	fileID := c.Params("id")

	rec, err := h.db.GetTranscription(fileID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Transcription not found",
			"code":  "ERR_TRANSCRIPTION_NOT_FOUND",
		})
	}

	return c.JSON(rec)
}
