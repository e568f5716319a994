package user

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/priorstream/chat/x/core"
)

// Handler is the interface for handling HTTP requests
type Handler interface {
	List(c echo.Context) error
	Create(c echo.Context) error
}

type handler struct {
	service Service
}

// NewHandler creates a new user handler
func NewHandler(service Service) Handler {
	return &handler{service: service}
}

// List returns all users
func (h handler) List(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerList")
	defer span.End()

	users, err := h.service.List(ctx)
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": users})
}

type createRequest struct {
	ID          uint   `json:"id,omitempty"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Create registers a new user. An explicit ID may be provided for demo setups.
func (h handler) Create(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerCreate")
	defer span.End()

	var request createRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}

	created, err := h.service.Create(ctx, core.User{
		ID:          request.ID,
		Email:       request.Email,
		DisplayName: request.DisplayName,
	})
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(http.StatusCreated, echo.Map{"status": "ok", "content": created})
}
