package controller

import (
	"errors"
	"io"

	"insightrag-be/internal/dto"
	"insightrag-be/internal/pkg/serverutils"
	"insightrag-be/internal/service"
	"insightrag-be/pkg/extractor"
	"insightrag-be/pkg/rag/chunk"
	"insightrag-be/pkg/rag/index"
	"insightrag-be/pkg/rag/session"
	"insightrag-be/pkg/store"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Select(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Ask(ctx *fiber.Ctx) error
	AskActive(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Post("active/ask", c.AskActive)
	h.Get(":id", c.Show)
	h.Put(":id/select", c.Select)
	h.Delete(":id", c.Delete)
	h.Post(":id/ask", c.Ask)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Missing multipart field 'file'"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	res, err := c.sessionService.CreateSession(ctx.UserContext(), fileHeader.Filename, data)
	if err != nil {
		return writeSessionError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Document indexed", res))
}

func (c *sessionController) List(ctx *fiber.Ctx) error {
	res := c.sessionService.ListSessions(ctx.UserContext())
	return ctx.JSON(serverutils.SuccessResponse("Success get sessions", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	res, err := c.sessionService.ShowSession(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return writeSessionError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *sessionController) Select(ctx *fiber.Ctx) error {
	res, err := c.sessionService.SelectSession(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return writeSessionError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Session selected", res))
}

func (c *sessionController) Delete(ctx *fiber.Ctx) error {
	if err := c.sessionService.DeleteSession(ctx.UserContext(), ctx.Params("id")); err != nil {
		return writeSessionError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Session deleted", nil))
}

func (c *sessionController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Ask(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return writeSessionError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}

func (c *sessionController) AskActive(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.AskActive(ctx.UserContext(), &req)
	if err != nil {
		return writeSessionError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}

func writeSessionError(ctx *fiber.Ctx, err error) error {
	var limitErr *dto.LimitExceededError
	if errors.As(err, &limitErr) {
		return ctx.Status(fiber.StatusTooManyRequests).JSON(dto.LimitExceededResponse{
			Success:   false,
			Code:      fiber.StatusTooManyRequests,
			Message:   limitErr.Error(),
			ErrorType: "LIMIT_REACHED",
			Data: dto.LimitExceededData{
				SessionId: limitErr.SessionId,
				Limit:     limitErr.Limit,
				Used:      limitErr.Used,
			},
		})
	}

	var ingestErr *session.IngestionError
	code := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrNoActiveSession):
		code = fiber.StatusNotFound
	case errors.Is(err, extractor.ErrUnsupportedFileType):
		code = fiber.StatusUnsupportedMediaType
	case errors.Is(err, chunk.ErrEmptyDocument), errors.Is(err, index.ErrNoIndexableContent):
		code = fiber.StatusUnprocessableEntity
	case errors.As(err, &ingestErr) && ingestErr.Stage == "extract":
		code = fiber.StatusUnprocessableEntity
	case errors.Is(err, session.ErrEmptyQuestion):
		code = fiber.StatusBadRequest
	}

	return ctx.Status(code).JSON(serverutils.ErrorResponse(code, err.Error()))
}
