package policy

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/priorstream/chat/x/core"
)

// Handler is the interface for handling HTTP requests
type Handler interface {
	Upsert(c echo.Context) error
}

type handler struct {
	service Service
}

// NewHandler creates a new policy handler
func NewHandler(service Service) Handler {
	return &handler{service: service}
}

// Upsert replaces the priority policy bound to a stream
func (h handler) Upsert(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerUpsert")
	defer span.End()

	streamID, err := strconv.ParseUint(c.Param("stream_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid stream id"})
	}

	var request upsertRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}

	policy := core.PriorityPolicy{
		StreamID:    uint(streamID),
		MsgRateRps:  request.MsgRateRps,
		UploadBps:   request.UploadBps,
		DownloadBps: request.DownloadBps,
		Burst:       request.Burst,
		Enabled:     request.Enabled,
		UpdatedBy:   request.UpdatedBy,
	}

	updated, err := h.service.Upsert(ctx, policy)
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": updated})
}
