package stream

import (
	"github.com/priorstream/chat/x/core"
)

// streamView is a stream joined with its policy override for the admin listing
type streamView struct {
	ID          uint                 `json:"id"`
	ChannelID   uint                 `json:"channel_id"`
	OwnerUserID uint                 `json:"owner_user_id"`
	Policy      *core.PriorityPolicy `json:"policy"`
}
