package handlers

import (
	"log"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/mediacut/videocut/internal/jobs"
)

// ProgressHandler streams job status snapshots over a WebSocket until the
// job reaches a terminal state.
type ProgressHandler struct {
	orchestrator *jobs.Orchestrator
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(orchestrator *jobs.Orchestrator) *ProgressHandler {
	return &ProgressHandler{
		orchestrator: orchestrator,
	}
}

// Handle pushes status snapshots every 500ms.
func (h *ProgressHandler) Handle(c *websocket.Conn) {
	defer c.Close()

	jobID := c.Params("id")
	log.Printf("Progress stream opened for job %s", jobID)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		job, err := h.orchestrator.Status(jobID)
		if err != nil {
			c.WriteJSON(map[string]string{"error": err.Error()})
			return
		}

		if err := c.WriteJSON(job); err != nil {
			log.Printf("Progress stream write error for job %s: %v", jobID, err)
			return
		}

		if job.Terminal() {
			return
		}
		<-ticker.C
	}
}
