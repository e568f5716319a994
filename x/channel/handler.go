package channel

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/priorstream/chat/x/core"
	"github.com/priorstream/chat/x/stream"
)

// Handler is the interface for handling HTTP requests
type Handler interface {
	List(c echo.Context) error
	Create(c echo.Context) error
	AddParticipant(c echo.Context) error
	ListParticipants(c echo.Context) error
	EnsureStreams(c echo.Context) error
}

type handler struct {
	service Service
	stream  stream.Service
}

// NewHandler creates a new channel handler
func NewHandler(service Service, stream stream.Service) Handler {
	return &handler{service: service, stream: stream}
}

// List returns all channels
func (h handler) List(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerList")
	defer span.End()

	channels, err := h.service.List(ctx)
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": channels})
}

type createRequest struct {
	Name    string `json:"name"`
	IsGroup *bool  `json:"is_group,omitempty"`
}

// Create registers a new channel
func (h handler) Create(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerCreate")
	defer span.End()

	var request createRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}

	isGroup := true
	if request.IsGroup != nil {
		isGroup = *request.IsGroup
	}

	created, err := h.service.Create(ctx, core.Channel{Name: request.Name, IsGroup: isGroup})
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(http.StatusCreated, echo.Map{"status": "ok", "content": created})
}

// AddParticipant registers a durable channel membership
func (h handler) AddParticipant(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerAddParticipant")
	defer span.End()

	channelID, err := strconv.ParseUint(c.Param("channel_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid channel id"})
	}
	userID, err := strconv.ParseUint(c.QueryParam("user_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid user id"})
	}
	role := c.QueryParam("role")

	err = h.service.AddParticipant(ctx, uint(channelID), uint(userID), role)
	if err != nil {
		if errors.Is(err, core.NewErrorNotFound()) {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "channel not found"})
		}
		span.RecordError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// ListParticipants returns the durable membership records of a channel
func (h handler) ListParticipants(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerListParticipants")
	defer span.End()

	channelID, err := strconv.ParseUint(c.Param("channel_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid channel id"})
	}

	participants, err := h.service.ListParticipants(ctx, uint(channelID))
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": participants})
}

// EnsureStreams backfills a lane for every current participant of a channel
func (h handler) EnsureStreams(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerEnsureStreams")
	defer span.End()

	channelID, err := strconv.ParseUint(c.Param("channel_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid channel id"})
	}

	if _, err := h.service.Get(ctx, uint(channelID)); err != nil {
		if errors.Is(err, core.NewErrorNotFound()) {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "channel not found"})
		}
		span.RecordError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	participants, err := h.service.ListParticipants(ctx, uint(channelID))
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	userIDs := make([]uint, 0, len(participants))
	for _, p := range participants {
		userIDs = append(userIDs, p.UserID)
	}

	created, already, err := h.stream.Ensure(ctx, uint(channelID), userIDs)
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": echo.Map{"created": created, "already": already}})
}
