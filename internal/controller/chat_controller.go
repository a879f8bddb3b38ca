package controller

import (
	"cs-agent-be/internal/dto"
	"cs-agent-be/internal/pkg/serverutils"
	"cs-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler)
	SendChat(ctx *fiber.Ctx) error
	EvaluateSession(ctx *fiber.Ctx) error
	GetSessionEval(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	evalService service.IEvalService
}

func NewChatController(chatService service.IChatService, evalService service.IEvalService) IChatController {
	return &chatController{
		chatService: chatService,
		evalService: evalService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler) {
	r.Get("/health", c.Health)
	r.Post("/chat", authMiddleware, c.SendChat)
	r.Post("/session/eval", authMiddleware, c.EvaluateSession)
	r.Get("/session/eval/:runId", authMiddleware, c.GetSessionEval)
}

func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	caller := callerFromLocals(ctx)

	res, err := c.chatService.SendChat(ctx.Context(), caller, &req)
	if err != nil {
		return err
	}

	// Flat body; clients read output directly, no envelope.
	return ctx.JSON(res)
}

func (c *chatController) EvaluateSession(ctx *fiber.Ctx) error {
	var req dto.SessionEvalRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if req.UserId == "" {
		if userId, ok := ctx.Locals(serverutils.LocalsUserId).(string); ok {
			req.UserId = userId
		}
	}

	res, err := c.evalService.EvaluateSession(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) GetSessionEval(ctx *fiber.Ctx) error {
	runId, err := uuid.Parse(ctx.Params("runId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid run id")
	}

	res, err := c.evalService.GetSessionRun(ctx.Context(), runId)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "ok"})
}

func callerFromLocals(ctx *fiber.Ctx) dto.CallerIdentity {
	caller := dto.CallerIdentity{}
	if v, ok := ctx.Locals(serverutils.LocalsAccessToken).(string); ok {
		caller.AccessToken = v
	}
	if v, ok := ctx.Locals(serverutils.LocalsUserId).(string); ok {
		caller.UserId = v
	}
	if v, ok := ctx.Locals(serverutils.LocalsUserName).(string); ok {
		caller.UserName = v
	}
	if v, ok := ctx.Locals(serverutils.LocalsUserEmail).(string); ok {
		caller.UserEmail = v
	}
	if v, ok := ctx.Locals(serverutils.LocalsUserRole).(string); ok {
		caller.UserRole = v
	}
	return caller
}
