package controller

import (
	"hr-relay-bot/internal/pkg/logger"
	"hr-relay-bot/internal/pkg/serverutils"
	"hr-relay-bot/internal/service"
	"hr-relay-bot/pkg/teams"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const moduleMessages = "MessagesController"

type IMessagesController interface {
	RegisterRoutes(r fiber.Router)
	PostActivity(ctx *fiber.Ctx) error
}

type messagesController struct {
	relay     service.IRelayService
	connector *teams.ConnectorClient
	validate  *validator.Validate
	logger    logger.ILogger
	appID     string
}

func NewMessagesController(relay service.IRelayService, connector *teams.ConnectorClient, sysLogger logger.ILogger, appID string) IMessagesController {
	return &messagesController{
		relay:     relay,
		connector: connector,
		validate:  validator.New(),
		logger:    sysLogger,
		appID:     appID,
	}
}

func (c *messagesController) RegisterRoutes(r fiber.Router) {
	r.Post("/messages", serverutils.BotJwtMiddleware(c.appID), c.PostActivity)
}

// PostActivity is the single inbound webhook: every activity the front end
// delivers lands here.
func (c *messagesController) PostActivity(ctx *fiber.Ctx) error {
	var activity teams.Activity
	if err := ctx.BodyParser(&activity); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "malformed activity"))
	}
	if err := c.validate.Struct(&activity); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	switch activity.Type {
	case teams.ActivityTypeMessage:
		return c.handleMessage(ctx, &activity)

	case teams.ActivityTypeInvoke:
		if activity.Name == teams.InvokeSubmitAction {
			c.relay.HandleFeedback(ctx.Context(), &activity)
		}
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"status": 200})

	default:
		// conversationUpdate, typing, etc. are acknowledged and ignored.
		return ctx.SendStatus(fiber.StatusOK)
	}
}

func (c *messagesController) handleMessage(ctx *fiber.Ctx, activity *teams.Activity) error {
	result := c.relay.HandleActivity(ctx.Context(), activity)

	reply := teams.NewReply(activity, result.Text)
	if result.AIGenerated {
		reply.MarkAIGenerated()
	}
	if result.Feedback {
		reply.WithFeedback()
	}

	if err := c.connector.ReplyToActivity(ctx.Context(), reply); err != nil {
		// The user's turn was handled; failing the webhook now would only
		// make the channel redeliver and double-process it.
		c.logger.Error(moduleMessages, "failed to deliver reply", map[string]interface{}{
			"error":           err.Error(),
			"conversation_id": activity.Conversation.ID,
		})
	}

	return ctx.SendStatus(fiber.StatusOK)
}
