package transfer

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/priorstream/chat/x/core"
)

// Handler is the interface for handling HTTP requests
type Handler interface {
	UploadRaw(c echo.Context) error
	Download(c echo.Context) error
}

type handler struct {
	service Service
}

// NewHandler creates a new transfer handler
func NewHandler(service Service) Handler {
	return &handler{service: service}
}

// UploadRaw accepts the request body as the raw file stream and persists it
// at the sender's paced upload rate.
func (h handler) UploadRaw(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerUploadRaw")
	defer span.End()

	channelID, err := strconv.ParseUint(c.QueryParam("channel_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid channel id"})
	}
	userID, err := strconv.ParseUint(c.QueryParam("user_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid user id"})
	}
	filename := c.QueryParam("filename")
	if filename == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "filename is required"})
	}
	size, err := strconv.ParseInt(c.QueryParam("size"), 10, 64)
	if err != nil || size < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid size"})
	}
	contentType := c.QueryParam("content_type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := h.service.Upload(ctx, UploadRequest{
		ChannelID:   uint(channelID),
		UserID:      uint(userID),
		Filename:    filename,
		Size:        size,
		ContentType: contentType,
		Body:        c.Request().Body,
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, core.ErrorPermissionDenied{}) {
			return c.JSON(http.StatusForbidden, echo.Map{"status": "error", "message": "not a channel member"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": result})
}

// Download streams an attachment to the requesting participant at their
// paced download rate.
func (h handler) Download(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerDownload")
	defer span.End()

	attachmentID, err := strconv.ParseUint(c.Param("attachment_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid attachment id"})
	}
	userID, err := strconv.ParseUint(c.QueryParam("user_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid user id"})
	}

	download, err := h.service.OpenDownload(ctx, uint(attachmentID), uint(userID))
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, core.ErrorNotFound{}) {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "attachment not found"})
		}
		if errors.Is(err, core.ErrorPermissionDenied{}) {
			return c.JSON(http.StatusForbidden, echo.Map{"status": "error", "message": "not a channel member"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, download.Attachment.ContentType)
	response.Header().Set(echo.HeaderContentLength, strconv.FormatInt(download.Attachment.Size, 10))
	response.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", download.Attachment.FileName))
	response.Header().Set("Cache-Control", "no-store")
	// keep proxy buffering from defeating the pacing
	response.Header().Set("X-Accel-Buffering", "no")
	response.WriteHeader(http.StatusOK)

	if err := download.SendTo(ctx, response); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
