package server

import (
	"net/http"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/labstack/echo/v4"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/chatterbox-im/chatterbox/internal/models"
	pkgmdw "github.com/chatterbox-im/chatterbox/internal/server/middleware"
	"github.com/chatterbox-im/chatterbox/internal/usecase"
)

type Controller interface {
	GetSidebarUsers(c echo.Context) error
	GetMessages(c echo.Context) error
	SendMessage(c echo.Context) error
	EditMessage(c echo.Context) error
	DeleteMessage(c echo.Context) error
	Health(c echo.Context) error
}

type controller struct {
	messageUsecase usecase.MessageUsecase
	userUsecase    usecase.UserUsecase
}

func NewController(
	messageUsecase usecase.MessageUsecase,
	userUsecase usecase.UserUsecase,
) Controller {
	return &controller{
		messageUsecase: messageUsecase,
		userUsecase:    userUsecase,
	}
}

func (h *controller) GetSidebarUsers(c echo.Context) error {
	ctx := c.Request().Context()
	users, err := h.userUsecase.ListSidebarUsers(ctx, pkgmdw.UserID(c))
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *controller) GetMessages(c echo.Context) error {
	peerID := c.Param("id")
	ctx := c.Request().Context()

	messages, err := h.messageUsecase.ListMessages(ctx, pkgmdw.UserID(c), peerID)
	if err != nil {
		return h.httpError(c, err)
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	return c.JSON(http.StatusOK, messages)
}

type SendMessageRequest struct {
	Text  string `json:"text"`
	Media string `json:"media"`
}

func (h *controller) SendMessage(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	message, err := h.messageUsecase.Send(ctx, usecase.SendMessageParams{
		SenderID:   pkgmdw.UserID(c),
		ReceiverID: c.Param("id"),
		Text:       req.Text,
		Media:      req.Media,
	})
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, message)
}

type EditMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

func (h *controller) EditMessage(c echo.Context) error {
	var req EditMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	message, err := h.messageUsecase.Edit(ctx, c.Param("id"), pkgmdw.UserID(c), req.Text)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, message)
}

type DeleteMessageRequest struct {
	DeleteFor models.DeleteScope `json:"deleteFor" validate:"required"`
}

func (h *controller) DeleteMessage(c echo.Context) error {
	var req DeleteMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if err := h.messageUsecase.Delete(ctx, c.Param("id"), pkgmdw.UserID(c), req.DeleteFor); err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "message deleted successfully",
	})
}

func (h *controller) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "chatterbox",
	})
}

// httpError translates the lifecycle error taxonomy to HTTP statuses.
// Validation and authorization messages pass through; upstream and internal
// failures are logged and surfaced as a generic error.
func (h *controller) httpError(c echo.Context, err error) error {
	st, ok := status.FromError(err)
	if ok {
		switch st.Code() {
		case codes.InvalidArgument:
			return echo.NewHTTPError(http.StatusBadRequest, st.Message())
		case codes.PermissionDenied:
			return echo.NewHTTPError(http.StatusForbidden, st.Message())
		case codes.NotFound:
			return echo.NewHTTPError(http.StatusNotFound, "message not found")
		case codes.Unavailable:
			log.Errorw(c.Request().Context(), "upstream failure", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "media upload failed")
		}
	}

	log.Errorw(c.Request().Context(), "internal error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
