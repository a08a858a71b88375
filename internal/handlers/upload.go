package handlers

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/mediacut/videocut/internal/storage"
	"github.com/mediacut/videocut/internal/transcription"
	"github.com/mediacut/videocut/internal/types"
)

// UploadHandler handles media file uploads.
type UploadHandler struct {
	db         *storage.MetadataDB
	uploadsDir string
	maxSizeMB  int
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(db *storage.MetadataDB, uploadsDir string, maxSizeMB int) *UploadHandler {
	return &UploadHandler{
		db:         db,
		uploadsDir: uploadsDir,
		maxSizeMB:  maxSizeMB,
	}
}

// Handle stores the uploaded file under a unique name and records it.
func (h *UploadHandler) Handle(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "No file uploaded",
			"code":  "ERR_NO_FILE",
		})
	}

	maxSize := int64(h.maxSizeMB) * 1024 * 1024
	if file.Size > maxSize {
		return c.Status(400).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large (max %dMB)", h.maxSizeMB),
			"code":  "ERR_FILE_TOO_LARGE",
		})
	}

	if !transcription.ValidateMediaFormat(file.Filename) {
		return c.Status(400).JSON(fiber.Map{
			"error": "Unsupported media format",
			"code":  "ERR_INVALID_FORMAT",
		})
	}

	uniqueFilename := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(file.Filename))
	filePath := filepath.Join(h.uploadsDir, uniqueFilename)

	if err := c.SaveFile(file, filePath); err != nil {
		log.Printf("Failed to save uploaded file: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to save file",
			"code":  "ERR_SAVE_FAILED",
		})
	}

	fileType := types.FileTypeAudio
	if transcription.IsVideoFormat(file.Filename) {
		fileType = types.FileTypeVideo
	}

	if err := h.db.SaveUploadedFile(uniqueFilename, file.Filename, filePath, fileType); err != nil {
		log.Printf("Failed to record upload metadata: %v", err)
	}

	return c.JSON(fiber.Map{
		"original_filename": file.Filename,
		"unique_filename":   uniqueFilename,
		"path":              filePath,
		"file_type":         fileType,
	})
}
