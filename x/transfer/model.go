package transfer

import (
	"io"
)

// UploadRequest describes an inbound raw byte stream
type UploadRequest struct {
	ChannelID   uint
	UserID      uint
	Filename    string
	Size        int64
	ContentType string
	Body        io.Reader
}

// UploadResult is returned once the upload completed
type UploadResult struct {
	AttachmentID uint  `json:"attachment_id"`
	MessageID    uint  `json:"message_id"`
	Size         int64 `json:"size"`
}
