// Package stream manages the rate-governed lanes. One stream exists per
// (channel, participant) pair, created lazily on first activity.
package stream

import (
	"context"

	"go.opentelemetry.io/otel"

	"github.com/priorstream/chat/x/core"
)

var tracer = otel.Tracer("stream")

// Service is the interface for the stream service
type Service interface {
	GetOrCreate(ctx context.Context, channelID uint, ownerUserID uint) (core.Stream, error)
	ListByChannel(ctx context.Context, channelID uint) ([]core.Stream, error)
	Ensure(ctx context.Context, channelID uint, userIDs []uint) ([]uint, []uint, error)
}

type service struct {
	repo Repository
}

// NewService creates a new stream service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// GetOrCreate returns the lane of a (channel, owner) pair
func (s *service) GetOrCreate(ctx context.Context, channelID uint, ownerUserID uint) (core.Stream, error) {
	ctx, span := tracer.Start(ctx, "ServiceGetOrCreate")
	defer span.End()

	return s.repo.GetOrCreate(ctx, channelID, ownerUserID)
}

// ListByChannel returns every stream of a channel
func (s *service) ListByChannel(ctx context.Context, channelID uint) ([]core.Stream, error) {
	ctx, span := tracer.Start(ctx, "ServiceListByChannel")
	defer span.End()

	return s.repo.ListByChannel(ctx, channelID)
}

// Ensure backfills streams for the given channel participants.
// Returns the IDs of created streams and the owner IDs that already had one.
func (s *service) Ensure(ctx context.Context, channelID uint, userIDs []uint) ([]uint, []uint, error) {
	ctx, span := tracer.Start(ctx, "ServiceEnsure")
	defer span.End()

	existing, err := s.repo.ListByChannel(ctx, channelID)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	have := make(map[uint]bool, len(existing))
	already := make([]uint, 0, len(existing))
	for _, st := range existing {
		have[st.OwnerUserID] = true
		already = append(already, st.OwnerUserID)
	}

	created := []uint{}
	for _, uid := range userIDs {
		if have[uid] {
			continue
		}
		st, err := s.repo.GetOrCreate(ctx, channelID, uid)
		if err != nil {
			span.RecordError(err)
			return nil, nil, err
		}
		created = append(created, st.ID)
	}

	return created, already, nil
}
