package controller

import (
	"hr-relay-bot/internal/pkg/logger"
	"hr-relay-bot/internal/pkg/serverutils"
	"hr-relay-bot/internal/repository/contract"

	"github.com/gofiber/fiber/v2"
)

const moduleTranscripts = "TranscriptsController"

type ITranscriptsController interface {
	RegisterRoutes(r fiber.Router)
	GetByConversation(ctx *fiber.Ctx) error
}

// transcriptsController is the operator read surface over the audit store.
type transcriptsController struct {
	repo   contract.TranscriptRepository // nil when auditing is disabled
	logger logger.ILogger
}

func NewTranscriptsController(repo contract.TranscriptRepository, sysLogger logger.ILogger) ITranscriptsController {
	return &transcriptsController{
		repo:   repo,
		logger: sysLogger,
	}
}

func (c *transcriptsController) RegisterRoutes(r fiber.Router) {
	r.Get("/transcripts/:conversationId", c.GetByConversation)
}

// GetByConversation returns the audited turns of one conversation in
// chronological order, capped by the limit query parameter.
func (c *transcriptsController) GetByConversation(ctx *fiber.Ctx) error {
	if c.repo == nil {
		return ctx.Status(fiber.StatusNotFound).
			JSON(serverutils.ErrorResponse(404, "transcript auditing is not enabled"))
	}

	conversationID := ctx.Params("conversationId")
	limit := ctx.QueryInt("limit", 100)

	rows, err := c.repo.FindByConversation(ctx.Context(), conversationID, limit)
	if err != nil {
		c.logger.Error(moduleTranscripts, "failed to load transcripts", map[string]interface{}{
			"error":           err.Error(),
			"conversation_id": conversationID,
		})
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(serverutils.ErrorResponse(500, "failed to load transcripts"))
	}

	return ctx.JSON(rows)
}
