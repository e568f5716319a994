// Package channel manages chat rooms and their durable membership records.
// Membership here is the authorization source of truth; the broker's
// in-memory subscriptions are always checked against it.
package channel

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"

	"github.com/priorstream/chat/x/core"
	"github.com/priorstream/chat/x/user"
)

var tracer = otel.Tracer("channel")

// Service is the interface for the channel service
type Service interface {
	Create(ctx context.Context, channel core.Channel) (core.Channel, error)
	Get(ctx context.Context, id uint) (core.Channel, error)
	List(ctx context.Context) ([]core.Channel, error)
	AddParticipant(ctx context.Context, channelID uint, userID uint, role string) error
	ListParticipants(ctx context.Context, channelID uint) ([]core.ChannelParticipant, error)
	IsMember(ctx context.Context, channelID uint, userID uint) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type service struct {
	repo Repository
	user user.Service
}

// NewService creates a new channel service
func NewService(repo Repository, user user.Service) Service {
	return &service{repo: repo, user: user}
}

func (s *service) Create(ctx context.Context, channel core.Channel) (core.Channel, error) {
	ctx, span := tracer.Start(ctx, "ServiceCreate")
	defer span.End()

	return s.repo.Create(ctx, channel)
}

func (s *service) Get(ctx context.Context, id uint) (core.Channel, error) {
	ctx, span := tracer.Start(ctx, "ServiceGet")
	defer span.End()

	return s.repo.Get(ctx, id)
}

func (s *service) List(ctx context.Context) ([]core.Channel, error) {
	ctx, span := tracer.Start(ctx, "ServiceList")
	defer span.End()

	return s.repo.List(ctx)
}

// AddParticipant registers a user as a channel member. The channel must
// exist; an unknown user gets a placeholder row first.
func (s *service) AddParticipant(ctx context.Context, channelID uint, userID uint, role string) error {
	ctx, span := tracer.Start(ctx, "ServiceAddParticipant")
	defer span.End()

	_, err := s.repo.Get(ctx, channelID)
	if err != nil {
		if errors.Is(err, core.NewErrorNotFound()) {
			return err
		}
		span.RecordError(err)
		return err
	}

	if err := s.user.EnsureExists(ctx, userID); err != nil {
		span.RecordError(err)
		return err
	}

	if role == "" {
		role = "member"
	}
	return s.repo.AddParticipant(ctx, channelID, userID, role)
}

func (s *service) ListParticipants(ctx context.Context, channelID uint) ([]core.ChannelParticipant, error) {
	ctx, span := tracer.Start(ctx, "ServiceListParticipants")
	defer span.End()

	return s.repo.ListParticipants(ctx, channelID)
}

func (s *service) IsMember(ctx context.Context, channelID uint, userID uint) (bool, error) {
	ctx, span := tracer.Start(ctx, "ServiceIsMember")
	defer span.End()

	return s.repo.IsMember(ctx, channelID, userID)
}

func (s *service) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "ServiceCount")
	defer span.End()

	return s.repo.Count(ctx)
}
