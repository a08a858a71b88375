package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/mediacut/videocut/internal/storage"
	"github.com/mediacut/videocut/internal/transcription"
	"github.com/mediacut/videocut/internal/types"
)

// FetchHandler downloads a remote source file into the uploads directory.
type FetchHandler struct {
	db         *storage.MetadataDB
	uploadsDir string
}

// NewFetchHandler creates a new fetch handler.
func NewFetchHandler(db *storage.MetadataDB, uploadsDir string) *FetchHandler {
	return &FetchHandler{
		db:         db,
		uploadsDir: uploadsDir,
	}
}

// FetchRequest represents the request body.
type FetchRequest struct {
	URL string `json:"url"`
}

// Handle downloads the file and registers it like a regular upload.
// Google Drive share links are rewritten to their direct-download form.
func (h *FetchHandler) Handle(c *fiber.Ctx) error {
	var req FetchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_INVALID_BODY",
		})
	}

	if req.URL == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "URL is required",
			"code":  "ERR_NO_URL",
		})
	}

	downloadURL := req.URL
	if fileID := extractGDriveFileID(req.URL); fileID != "" {
		downloadURL = fmt.Sprintf("https://drive.google.com/uc?export=download&id=%s", fileID)
	}

	ext := remoteExtension(req.URL)
	if ext != "" && !transcription.ValidateMediaFormat("f"+ext) {
		return c.Status(400).JSON(fiber.Map{
			"error": "Unsupported media format",
			"code":  "ERR_INVALID_FORMAT",
		})
	}
	if ext == "" {
		ext = ".mp4"
	}

	uniqueFilename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	filePath := filepath.Join(h.uploadsDir, uniqueFilename)

	log.Printf("Fetching remote source: %s", downloadURL)

	resp, err := http.Get(downloadURL)
	if err != nil {
		log.Printf("Failed to fetch remote file: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to download file",
			"code":  "ERR_DOWNLOAD_FAILED",
		})
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return c.Status(400).JSON(fiber.Map{
			"error": "File not accessible (may be private or doesn't exist)",
			"code":  "ERR_FILE_NOT_ACCESSIBLE",
		})
	}

	out, err := os.Create(filePath)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to save downloaded file",
			"code":  "ERR_SAVE_FAILED",
		})
	}
	defer out.Close()

	if _, err = io.Copy(out, resp.Body); err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to write downloaded file",
			"code":  "ERR_WRITE_FAILED",
		})
	}

	fileType := types.FileTypeAudio
	if transcription.IsVideoFormat(uniqueFilename) {
		fileType = types.FileTypeVideo
	}

	if err := h.db.SaveUploadedFile(uniqueFilename, path.Base(req.URL), filePath, fileType); err != nil {
		log.Printf("Failed to record fetched file metadata: %v", err)
	}

	return c.JSON(fiber.Map{
		"unique_filename": uniqueFilename,
		"path":            filePath,
		"file_type":       fileType,
	})
}

// extractGDriveFileID extracts the file ID from various Google Drive URL formats.
func extractGDriveFileID(rawURL string) string {
	// Pattern 1: https://drive.google.com/file/d/{ID}/view
	re1 := regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)
	if matches := re1.FindStringSubmatch(rawURL); len(matches) > 1 {
		return matches[1]
	}

	// Pattern 2: https://drive.google.com/open?id={ID}
	re2 := regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
	if matches := re2.FindStringSubmatch(rawURL); len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// remoteExtension pulls the file extension out of the URL path, if any.
func remoteExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return filepath.Ext(path.Base(u.Path))
}
