// Package user manages chat participant identities.
package user

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/priorstream/chat/x/core"
)

var tracer = otel.Tracer("user")

// Service is the interface for the user service
type Service interface {
	Create(ctx context.Context, user core.User) (core.User, error)
	Get(ctx context.Context, id uint) (core.User, error)
	List(ctx context.Context) ([]core.User, error)
	EnsureExists(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type service struct {
	repo Repository
}

// NewService creates a new user service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, user core.User) (core.User, error) {
	ctx, span := tracer.Start(ctx, "ServiceCreate")
	defer span.End()

	return s.repo.Create(ctx, user)
}

func (s *service) Get(ctx context.Context, id uint) (core.User, error) {
	ctx, span := tracer.Start(ctx, "ServiceGet")
	defer span.End()

	return s.repo.Get(ctx, id)
}

func (s *service) List(ctx context.Context) ([]core.User, error) {
	ctx, span := tracer.Start(ctx, "ServiceList")
	defer span.End()

	return s.repo.List(ctx)
}

// EnsureExists creates a placeholder row when the user is unknown, so that
// participant inserts never trip the foreign key.
func (s *service) EnsureExists(ctx context.Context, id uint) error {
	ctx, span := tracer.Start(ctx, "ServiceEnsureExists")
	defer span.End()

	_, err := s.repo.Get(ctx, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, core.NewErrorNotFound()) {
		span.RecordError(err)
		return err
	}

	_, err = s.repo.Create(ctx, core.User{ID: id, DisplayName: fmt.Sprintf("User %d", id)})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (s *service) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "ServiceCount")
	defer span.End()

	return s.repo.Count(ctx)
}
