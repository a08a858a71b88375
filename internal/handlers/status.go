package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mediacut/videocut/internal/jobs"
)

// StatusHandler serves job status queries.
type StatusHandler struct {
	orchestrator *jobs.Orchestrator
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(orchestrator *jobs.Orchestrator) *StatusHandler {
	return &StatusHandler{
		orchestrator: orchestrator,
	}
}

// Handle returns the current job record.
func (h *StatusHandler) Handle(c *fiber.Ctx) error {
	jobID := c.Params("id")

	job, err := h.orchestrator.Status(jobID)
	if err != nil {
		switch {
		case errors.Is(err, jobs.ErrJobExpired):
			return c.Status(410).JSON(fiber.Map{
				"error": "Job result expired",
				"code":  "ERR_JOB_EXPIRED",
			})
		case errors.Is(err, jobs.ErrJobNotFound):
			return c.Status(404).JSON(fiber.Map{
				"error": "Job not found",
				"code":  "ERR_JOB_NOT_FOUND",
			})
		default:
			return c.Status(500).JSON(fiber.Map{
				"error": err.Error(),
				"code":  "ERR_STATUS_FAILED",
			})
		}
	}

	return c.JSON(job)
}
