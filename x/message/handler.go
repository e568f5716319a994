package message

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const defaultHistoryLimit = 50

// Handler is the interface for handling HTTP requests
type Handler interface {
	ListRecent(c echo.Context) error
}

type handler struct {
	service Service
}

// NewHandler creates a new message handler
func NewHandler(service Service) Handler {
	return &handler{service: service}
}

// ListRecent returns a channel's newest messages, newest first
func (h handler) ListRecent(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerListRecent")
	defer span.End()

	channelID, err := strconv.ParseUint(c.Param("channel_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid channel id"})
	}

	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid limit"})
		}
		limit = parsed
	}

	messages, err := h.service.ListRecent(ctx, uint(channelID), limit)
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	views := make([]interface{}, 0, len(messages))
	for _, m := range messages {
		views = append(views, View(m))
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": views})
}
