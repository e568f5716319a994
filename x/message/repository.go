package message

import (
	"context"

	"gorm.io/gorm"

	"github.com/priorstream/chat/x/core"
)

// Repository is the message repository
type Repository interface {
	Create(ctx context.Context, message core.Message) (core.Message, error)
	Get(ctx context.Context, id uint) (core.Message, error)
	UpdateMeta(ctx context.Context, id uint, meta core.JSONB) error
	ListRecent(ctx context.Context, channelID uint, limit int) ([]core.Message, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new message repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create persists a new message
func (r *repository) Create(ctx context.Context, message core.Message) (core.Message, error) {
	ctx, span := tracer.Start(ctx, "RepositoryCreate")
	defer span.End()

	err := r.db.WithContext(ctx).Create(&message).Error
	if err != nil {
		span.RecordError(err)
		return core.Message{}, err
	}
	return message, nil
}

// Get returns a message by ID
func (r *repository) Get(ctx context.Context, id uint) (core.Message, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGet")
	defer span.End()

	var message core.Message
	err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return core.Message{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.Message{}, err
	}
	return message, nil
}

// UpdateMeta replaces the structured metadata of a message
func (r *repository) UpdateMeta(ctx context.Context, id uint, meta core.JSONB) error {
	ctx, span := tracer.Start(ctx, "RepositoryUpdateMeta")
	defer span.End()

	err := r.db.WithContext(ctx).Model(&core.Message{}).Where("id = ?", id).Update("meta", meta).Error
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// ListRecent returns the newest messages of a channel, newest first
func (r *repository) ListRecent(ctx context.Context, channelID uint, limit int) ([]core.Message, error) {
	ctx, span := tracer.Start(ctx, "RepositoryListRecent")
	defer span.End()

	var messages []core.Message
	err := r.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("c_date desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return messages, nil
}

// Count returns the total number of persisted messages
func (r *repository) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "RepositoryCount")
	defer span.End()

	var count int64
	err := r.db.WithContext(ctx).Model(&core.Message{}).Count(&count).Error
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return count, nil
}
