package policy

import (
	"context"

	"gorm.io/gorm"

	"github.com/priorstream/chat/x/core"
)

// Repository is the priority policy repository
type Repository interface {
	GetEnabledByStream(ctx context.Context, streamID uint) (core.PriorityPolicy, error)
	GetByStream(ctx context.Context, streamID uint) (core.PriorityPolicy, error)
	Upsert(ctx context.Context, policy core.PriorityPolicy) (core.PriorityPolicy, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new policy repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// GetEnabledByStream returns the enabled policy override for a stream
func (r *repository) GetEnabledByStream(ctx context.Context, streamID uint) (core.PriorityPolicy, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGetEnabledByStream")
	defer span.End()

	var policy core.PriorityPolicy
	err := r.db.WithContext(ctx).Where("stream_id = ? AND enabled = ?", streamID, true).First(&policy).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return core.PriorityPolicy{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.PriorityPolicy{}, err
	}
	return policy, nil
}

// GetByStream returns the policy bound to a stream regardless of enabled
func (r *repository) GetByStream(ctx context.Context, streamID uint) (core.PriorityPolicy, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGetByStream")
	defer span.End()

	var policy core.PriorityPolicy
	err := r.db.WithContext(ctx).Where("stream_id = ?", streamID).First(&policy).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return core.PriorityPolicy{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.PriorityPolicy{}, err
	}
	return policy, nil
}

// Upsert creates or replaces the policy bound to a stream
func (r *repository) Upsert(ctx context.Context, policy core.PriorityPolicy) (core.PriorityPolicy, error) {
	ctx, span := tracer.Start(ctx, "RepositoryUpsert")
	defer span.End()

	var existing core.PriorityPolicy
	err := r.db.WithContext(ctx).Where("stream_id = ?", policy.StreamID).First(&existing).Error
	if err == nil {
		policy.ID = existing.ID
	} else if err != gorm.ErrRecordNotFound {
		span.RecordError(err)
		return core.PriorityPolicy{}, err
	}

	err = r.db.WithContext(ctx).Save(&policy).Error
	if err != nil {
		span.RecordError(err)
		return core.PriorityPolicy{}, err
	}
	return policy, nil
}
