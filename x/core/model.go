// Package core provides the shared data models of the chat server.
package core

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// JSONB is a postgres jsonb column mapped to a plain map.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal jsonb")
	}
	return string(b), nil
}

func (j *JSONB) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*j = JSONB{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("unsupported jsonb source type")
	}
	if len(b) == 0 {
		*j = JSONB{}
		return nil
	}
	return json.Unmarshal(b, j)
}

// User is a chat participant identity
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Email       string    `json:"email" gorm:"type:varchar(255)"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(255)"`
	CDate       time.Time `json:"cdate" gorm:"autoCreateTime"`
}

// Channel is a chat room
type Channel struct {
	ID      uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name    string    `json:"name" gorm:"type:varchar(255)"`
	IsGroup bool      `json:"is_group" gorm:"default:true"`
	CDate   time.Time `json:"cdate" gorm:"autoCreateTime"`
}

// ChannelParticipant is the durable channel membership record.
// Authorization checks read this table, never the broker's in-memory index.
type ChannelParticipant struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ChannelID uint      `json:"channel_id" gorm:"uniqueIndex:ux_participant_channel_user"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:ux_participant_channel_user"`
	Role      string    `json:"role" gorm:"type:varchar(32);default:'member'"`
	JoinedAt  time.Time `json:"joined_at" gorm:"autoCreateTime"`
}

// Stream is a rate-governed lane, one per (channel, owner) pair.
// The uniqueness constraint makes lazy creation idempotent.
type Stream struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ChannelID   uint      `json:"channel_id" gorm:"uniqueIndex:ux_stream_channel_owner"`
	OwnerUserID uint      `json:"owner_user_id" gorm:"uniqueIndex:ux_stream_channel_owner"`
	CDate       time.Time `json:"cdate" gorm:"autoCreateTime"`
}

// Message is persisted chat content
type Message struct {
	ID              uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ChannelID       uint      `json:"channel_id" gorm:"index:ix_message_channel_cdate"`
	StreamID        uint      `json:"stream_id"`
	SenderID        uint      `json:"sender_id"`
	ParentMessageID *uint     `json:"parent_message_id,omitempty"`
	Content         string    `json:"content"`
	Meta            JSONB     `json:"meta" gorm:"type:jsonb;default:'{}'"`
	CDate           time.Time `json:"cdate" gorm:"autoCreateTime;index:ix_message_channel_cdate"`
}

// Attachment is uploaded file metadata; bytes live at StoragePath
type Attachment struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	MessageID   uint      `json:"message_id" gorm:"index"`
	FileName    string    `json:"file_name" gorm:"type:varchar(512)"`
	ContentType string    `json:"content_type" gorm:"type:varchar(128)"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"-" gorm:"type:varchar(1024)"`
	CDate       time.Time `json:"cdate" gorm:"autoCreateTime"`
}

// PriorityPolicy is an administrator-tunable rate override bound to a stream.
// Absent or disabled means the process-wide defaults apply.
type PriorityPolicy struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	StreamID    uint      `json:"stream_id" gorm:"index"`
	MsgRateRps  int       `json:"msg_rate_rps"`
	UploadBps   int64     `json:"upload_bps"`
	DownloadBps int64     `json:"download_bps"`
	Burst       int       `json:"burst" gorm:"default:10"`
	Enabled     bool      `json:"enabled" gorm:"default:true"`
	UpdatedBy   *uint     `json:"updated_by,omitempty"`
	MDate       time.Time `json:"mdate" gorm:"autoUpdateTime"`
}
