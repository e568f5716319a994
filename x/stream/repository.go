package stream

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/priorstream/chat/x/core"
)

// Repository is the stream repository
type Repository interface {
	GetOrCreate(ctx context.Context, channelID uint, ownerUserID uint) (core.Stream, error)
	ListByChannel(ctx context.Context, channelID uint) ([]core.Stream, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new stream repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// GetOrCreate returns the stream of a (channel, owner) pair, creating it on
// first use. The unique constraint carries the idempotency; on conflict the
// insert is a no-op and the existing row is fetched.
func (r *repository) GetOrCreate(ctx context.Context, channelID uint, ownerUserID uint) (core.Stream, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGetOrCreate")
	defer span.End()

	stream := core.Stream{ChannelID: channelID, OwnerUserID: ownerUserID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&stream).Error
	if err != nil {
		span.RecordError(err)
		return core.Stream{}, err
	}

	if stream.ID == 0 {
		err = r.db.WithContext(ctx).
			Where("channel_id = ? AND owner_user_id = ?", channelID, ownerUserID).
			First(&stream).Error
		if err != nil {
			span.RecordError(err)
			return core.Stream{}, err
		}
	}

	return stream, nil
}

// ListByChannel returns every stream of a channel
func (r *repository) ListByChannel(ctx context.Context, channelID uint) ([]core.Stream, error) {
	ctx, span := tracer.Start(ctx, "RepositoryListByChannel")
	defer span.End()

	var streams []core.Stream
	err := r.db.WithContext(ctx).Where("channel_id = ?", channelID).Find(&streams).Error
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return streams, nil
}
