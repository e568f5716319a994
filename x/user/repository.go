package user

import (
	"context"

	"gorm.io/gorm"

	"github.com/priorstream/chat/x/core"
)

// Repository is the user repository
type Repository interface {
	Create(ctx context.Context, user core.User) (core.User, error)
	Get(ctx context.Context, id uint) (core.User, error)
	List(ctx context.Context) ([]core.User, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new user repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user core.User) (core.User, error) {
	ctx, span := tracer.Start(ctx, "RepositoryCreate")
	defer span.End()

	err := r.db.WithContext(ctx).Create(&user).Error
	if err != nil {
		span.RecordError(err)
		return core.User{}, err
	}
	return user, nil
}

func (r *repository) Get(ctx context.Context, id uint) (core.User, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGet")
	defer span.End()

	var user core.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return core.User{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.User{}, err
	}
	return user, nil
}

func (r *repository) List(ctx context.Context) ([]core.User, error) {
	ctx, span := tracer.Start(ctx, "RepositoryList")
	defer span.End()

	var users []core.User
	err := r.db.WithContext(ctx).Find(&users).Error
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return users, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "RepositoryCount")
	defer span.End()

	var count int64
	err := r.db.WithContext(ctx).Model(&core.User{}).Count(&count).Error
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return count, nil
}
