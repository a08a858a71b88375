package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mediacut/videocut/internal/textmatch"
	"github.com/mediacut/videocut/internal/types"
)

// MatchHandler exposes the transcript dedup matcher.
type MatchHandler struct{}

// NewMatchHandler creates a new match handler.
func NewMatchHandler() *MatchHandler {
	return &MatchHandler{}
}

// MatchRequest represents the request body.
type MatchRequest struct {
	Words      []types.Word `json:"words"`
	TargetText string       `json:"target_text"`
	Greedy     bool         `json:"greedy"`
}

// Handle filters the redundant transcript down to the target text.
func (h *MatchHandler) Handle(c *fiber.Ctx) error {
	var req MatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_INVALID_BODY",
		})
	}

	if req.TargetText == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "target_text is required",
			"code":  "ERR_NO_TARGET_TEXT",
		})
	}

	matched := textmatch.MatchAndFilter(req.Words, req.TargetText, req.Greedy)

	return c.JSON(fiber.Map{
		"word_count": len(matched),
		"words":      matched,
	})
}
