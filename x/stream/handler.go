package stream

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/priorstream/chat/x/core"
	"github.com/priorstream/chat/x/policy"
)

// Handler is the interface for handling HTTP requests
type Handler interface {
	ListByChannel(c echo.Context) error
}

type handler struct {
	service Service
	policy  policy.Service
}

// NewHandler creates a new stream handler
func NewHandler(service Service, policy policy.Service) Handler {
	return &handler{service: service, policy: policy}
}

// ListByChannel returns every stream of a channel with its policy override
func (h handler) ListByChannel(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerListByChannel")
	defer span.End()

	channelID, err := strconv.ParseUint(c.Param("channel_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid channel id"})
	}

	streams, err := h.service.ListByChannel(ctx, uint(channelID))
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	views := make([]streamView, 0, len(streams))
	for _, st := range streams {
		view := streamView{
			ID:          st.ID,
			ChannelID:   st.ChannelID,
			OwnerUserID: st.OwnerUserID,
		}
		override, err := h.policy.GetByStream(ctx, st.ID)
		if err == nil {
			view.Policy = &override
		} else if !errors.Is(err, core.NewErrorNotFound()) {
			span.RecordError(err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
		}
		views = append(views, view)
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": views})
}
