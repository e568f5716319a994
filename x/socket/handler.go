package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/priorstream/chat/x/core"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler handles the websocket control plane
type Handler interface {
	Connect(c echo.Context) error
	CurrentConnectionCount() int64
}

type handler struct {
	service Service
	manager Manager
}

// NewHandler creates a new socket handler
func NewHandler(service Service, manager Manager) Handler {
	return &handler{service: service, manager: manager}
}

// wsConn serializes writes so broker fan-out and the receive loop never
// interleave frames on the same transport.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func newWsConn(ws *websocket.Conn) *wsConn {
	return &wsConn{ws: ws}
}

func (c *wsConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}

// Connect upgrades the request and runs the per-connection receive loop.
// Cleanup runs on every exit path: the deferred disconnect cascades the
// user's subscriptions away when this was their last live connection.
func (h handler) Connect(c echo.Context) error {
	userID, err := strconv.ParseUint(c.QueryParam("user_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid user id"})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(fmt.Sprintf("failed to upgrade websocket: %v", err), slog.String("module", "socket"))
		return err
	}

	conn := newWsConn(ws)
	h.manager.Connect(uint(userID), conn)
	defer func() {
		h.manager.Disconnect(conn)
		conn.Close()
	}()

	ctx := c.Request().Context()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			// transport closed or unrecoverable read error
			break
		}

		var request Request
		if err := json.Unmarshal(raw, &request); err != nil {
			conn.WriteJSON(core.ErrorEvent{Type: core.EventError, Error: "malformed"})
			continue
		}

		h.dispatch(ctx, uint(userID), conn, request)
	}

	return nil
}

func (h handler) dispatch(ctx context.Context, userID uint, conn *wsConn, request Request) {
	switch ParseAction(request.Action) {

	case ActionJoinChannel:
		err := h.service.Join(ctx, userID, request.ChannelID)
		if err != nil {
			if errors.Is(err, core.NewErrorPermissionDenied()) {
				conn.WriteJSON(core.ErrorEvent{Type: core.EventError, Error: "not_member"})
				return
			}
			slog.Error(fmt.Sprintf("join failed: %v", err), slog.String("module", "socket"))
			conn.WriteJSON(core.ErrorEvent{Type: core.EventError, Error: "internal_error"})
			return
		}
		conn.WriteJSON(core.ChannelEvent{Type: core.EventJoined, ChannelID: request.ChannelID})

	case ActionLeaveChannel:
		h.service.Leave(ctx, userID, request.ChannelID)
		conn.WriteJSON(core.ChannelEvent{Type: core.EventLeft, ChannelID: request.ChannelID})

	case ActionSendMessage:
		if request.Payload == nil {
			conn.WriteJSON(core.ErrorEvent{Type: core.EventError, Error: "malformed"})
			return
		}
		_, err := h.service.SendMessage(ctx, userID, *request.Payload)
		if err != nil {
			var throttled core.ErrorThrottled
			if errors.As(err, &throttled) {
				conn.WriteJSON(core.ThrottledEvent{Type: core.EventThrottled, Reason: throttled.Reason})
				return
			}
			if errors.Is(err, core.NewErrorPermissionDenied()) {
				conn.WriteJSON(core.ErrorEvent{Type: core.EventError, Error: "not_member"})
				return
			}
			slog.Error(fmt.Sprintf("send failed: %v", err), slog.String("module", "socket"))
			conn.WriteJSON(core.ErrorEvent{Type: core.EventError, Error: "internal_error"})
		}
		// delivery of the admitted message happens via channel multicast

	default:
		conn.WriteJSON(core.ErrorEvent{Type: core.EventError, Error: "unknown_action"})
	}
}

// CurrentConnectionCount reports the number of live transports
func (h handler) CurrentConnectionCount() int64 {
	return h.manager.ConnectionCount()
}
