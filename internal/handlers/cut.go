package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mediacut/videocut/internal/jobs"
	"github.com/mediacut/videocut/internal/segments"
	"github.com/mediacut/videocut/internal/types"
)

// CutHandler accepts cut requests and hands them to the orchestrator.
type CutHandler struct {
	orchestrator *jobs.Orchestrator
}

// NewCutHandler creates a new cut handler.
func NewCutHandler(orchestrator *jobs.Orchestrator) *CutHandler {
	return &CutHandler{
		orchestrator: orchestrator,
	}
}

// CutRequest represents the request body.
type CutRequest struct {
	FilePath       string             `json:"file_path"`
	DeleteSegments []segments.Segment `json:"delete_segments"`
}

// Handle submits a cut job and returns its ID.
func (h *CutHandler) Handle(c *fiber.Ctx) error {
	var req CutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_INVALID_BODY",
		})
	}

	if req.FilePath == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "file_path is required",
			"code":  "ERR_NO_FILE_PATH",
		})
	}

	jobID, err := h.orchestrator.Submit(req.FilePath, req.DeleteSegments)
	if err != nil {
		var verr *segments.ValidationError
		switch {
		case errors.As(err, &verr):
			return c.Status(400).JSON(fiber.Map{
				"error": verr.Error(),
				"code":  "ERR_INVALID_SEGMENTS",
			})
		case errors.Is(err, jobs.ErrInputNotFound):
			return c.Status(404).JSON(fiber.Map{
				"error": err.Error(),
				"code":  "ERR_FILE_NOT_FOUND",
			})
		case errors.Is(err, jobs.ErrTooManyJobs):
			return c.Status(429).JSON(fiber.Map{
				"error": "Too many jobs in progress, try again later",
				"code":  "ERR_TOO_MANY_JOBS",
			})
		default:
			return c.Status(500).JSON(fiber.Map{
				"error": err.Error(),
				"code":  "ERR_SUBMIT_FAILED",
			})
		}
	}

	return c.Status(202).JSON(fiber.Map{
		"job_id":  jobID,
		"status":  types.StatusProcessing,
		"message": "Cut job accepted, poll /jobs/:id for status",
	})
}
