package core

// Server to client websocket packet types.
// Delivery is fire-and-forget: at most once, no acknowledgement, no retry.
// Ordering is preserved only within a single connection's send sequence.
const (
	EventJoined         = "joined"
	EventLeft           = "left"
	EventError          = "error"
	EventThrottled      = "throttled"
	EventMessageNew     = "message.new"
	EventUploadProgress = "file.upload.progress"
)

// ChannelEvent acknowledges a join or leave
type ChannelEvent struct {
	Type      string `json:"type"`
	ChannelID uint   `json:"channel_id"`
}

// ErrorEvent reports a non-fatal protocol failure; the connection stays open
type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// ThrottledEvent tells a sender that admission was denied and the
// message was dropped. The sender must resend.
type ThrottledEvent struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// MessageEvent carries a newly persisted message to channel subscribers
type MessageEvent struct {
	Type    string      `json:"type"`
	Message MessageView `json:"message"`
}

// MessageView is the wire shape of a message
type MessageView struct {
	ID        uint   `json:"id"`
	ChannelID uint   `json:"channel_id"`
	StreamID  uint   `json:"stream_id"`
	SenderID  uint   `json:"sender_id"`
	Content   string `json:"content"`
	Meta      JSONB  `json:"meta"`
}

// ProgressEvent reports transfer throughput to the initiating participant
type ProgressEvent struct {
	Type      string `json:"type"`
	MessageID uint   `json:"message_id"`
	Bytes     int64  `json:"bytes"`
	Total     int64  `json:"total"`
	Bps       int64  `json:"bps"`
	ElapsedMs int64  `json:"elapsed_ms"`
}
