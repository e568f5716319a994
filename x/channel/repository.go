package channel

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/priorstream/chat/x/core"
)

// Repository is the channel repository
type Repository interface {
	Create(ctx context.Context, channel core.Channel) (core.Channel, error)
	Get(ctx context.Context, id uint) (core.Channel, error)
	List(ctx context.Context) ([]core.Channel, error)
	AddParticipant(ctx context.Context, channelID uint, userID uint, role string) error
	ListParticipants(ctx context.Context, channelID uint) ([]core.ChannelParticipant, error)
	IsMember(ctx context.Context, channelID uint, userID uint) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new channel repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, channel core.Channel) (core.Channel, error) {
	ctx, span := tracer.Start(ctx, "RepositoryCreate")
	defer span.End()

	err := r.db.WithContext(ctx).Create(&channel).Error
	if err != nil {
		span.RecordError(err)
		return core.Channel{}, err
	}
	return channel, nil
}

func (r *repository) Get(ctx context.Context, id uint) (core.Channel, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGet")
	defer span.End()

	var channel core.Channel
	err := r.db.WithContext(ctx).First(&channel, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return core.Channel{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.Channel{}, err
	}
	return channel, nil
}

func (r *repository) List(ctx context.Context) ([]core.Channel, error) {
	ctx, span := tracer.Start(ctx, "RepositoryList")
	defer span.End()

	var channels []core.Channel
	err := r.db.WithContext(ctx).Find(&channels).Error
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return channels, nil
}

// AddParticipant registers a durable membership; re-adding is a no-op
func (r *repository) AddParticipant(ctx context.Context, channelID uint, userID uint, role string) error {
	ctx, span := tracer.Start(ctx, "RepositoryAddParticipant")
	defer span.End()

	participant := core.ChannelParticipant{ChannelID: channelID, UserID: userID, Role: role}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&participant).Error
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *repository) ListParticipants(ctx context.Context, channelID uint) ([]core.ChannelParticipant, error) {
	ctx, span := tracer.Start(ctx, "RepositoryListParticipants")
	defer span.End()

	var participants []core.ChannelParticipant
	err := r.db.WithContext(ctx).Where("channel_id = ?", channelID).Find(&participants).Error
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return participants, nil
}

// IsMember checks the durable membership record of a (channel, user) pair
func (r *repository) IsMember(ctx context.Context, channelID uint, userID uint) (bool, error) {
	ctx, span := tracer.Start(ctx, "RepositoryIsMember")
	defer span.End()

	var count int64
	err := r.db.WithContext(ctx).Model(&core.ChannelParticipant{}).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Count(&count).Error
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "RepositoryCount")
	defer span.End()

	var count int64
	err := r.db.WithContext(ctx).Model(&core.Channel{}).Count(&count).Error
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return count, nil
}
