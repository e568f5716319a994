package transfer

import (
	"context"

	"gorm.io/gorm"

	"github.com/priorstream/chat/x/core"
)

// Repository is the attachment repository
type Repository interface {
	CreateAttachment(ctx context.Context, attachment core.Attachment) (core.Attachment, error)
	GetAttachment(ctx context.Context, id uint) (core.Attachment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new attachment repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateAttachment(ctx context.Context, attachment core.Attachment) (core.Attachment, error) {
	ctx, span := tracer.Start(ctx, "RepositoryCreateAttachment")
	defer span.End()

	err := r.db.WithContext(ctx).Create(&attachment).Error
	if err != nil {
		span.RecordError(err)
		return core.Attachment{}, err
	}
	return attachment, nil
}

func (r *repository) GetAttachment(ctx context.Context, id uint) (core.Attachment, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGetAttachment")
	defer span.End()

	var attachment core.Attachment
	err := r.db.WithContext(ctx).First(&attachment, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return core.Attachment{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.Attachment{}, err
	}
	return attachment, nil
}
