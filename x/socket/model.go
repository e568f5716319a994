package socket

import (
	"github.com/priorstream/chat/x/core"
)

// Action is the closed set of client protocol actions. Anything the parser
// does not recognize maps to ActionUnknown, never to a silent fallthrough.
type Action string

const (
	ActionJoinChannel  Action = "join_channel"
	ActionLeaveChannel Action = "leave_channel"
	ActionSendMessage  Action = "send_message"
	ActionUnknown      Action = "unknown"
)

// ParseAction maps an inbound action string onto the closed action set
func ParseAction(s string) Action {
	switch Action(s) {
	case ActionJoinChannel, ActionLeaveChannel, ActionSendMessage:
		return Action(s)
	default:
		return ActionUnknown
	}
}

// Request is the client to server control packet
type Request struct {
	Action    string          `json:"action"`
	ChannelID uint            `json:"channel_id"`
	Payload   *MessagePayload `json:"payload,omitempty"`
}

// MessagePayload is the body of a send_message action
type MessagePayload struct {
	ChannelID       uint       `json:"channel_id"`
	Content         string     `json:"content"`
	ParentMessageID *uint      `json:"parent_message_id,omitempty"`
	Meta            core.JSONB `json:"meta,omitempty"`
}
