// Package message handles persisted chat content.
package message

import (
	"context"

	"go.opentelemetry.io/otel"

	"github.com/priorstream/chat/x/core"
)

var tracer = otel.Tracer("message")

// Service is the interface for the message service
type Service interface {
	Create(ctx context.Context, message core.Message) (core.Message, error)
	Get(ctx context.Context, id uint) (core.Message, error)
	UpdateMeta(ctx context.Context, id uint, meta core.JSONB) error
	ListRecent(ctx context.Context, channelID uint, limit int) ([]core.Message, error)
	Count(ctx context.Context) (int64, error)
}

type service struct {
	repo Repository
}

// NewService creates a new message service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, message core.Message) (core.Message, error) {
	ctx, span := tracer.Start(ctx, "ServiceCreate")
	defer span.End()

	return s.repo.Create(ctx, message)
}

func (s *service) Get(ctx context.Context, id uint) (core.Message, error) {
	ctx, span := tracer.Start(ctx, "ServiceGet")
	defer span.End()

	return s.repo.Get(ctx, id)
}

func (s *service) UpdateMeta(ctx context.Context, id uint, meta core.JSONB) error {
	ctx, span := tracer.Start(ctx, "ServiceUpdateMeta")
	defer span.End()

	return s.repo.UpdateMeta(ctx, id, meta)
}

func (s *service) ListRecent(ctx context.Context, channelID uint, limit int) ([]core.Message, error) {
	ctx, span := tracer.Start(ctx, "ServiceListRecent")
	defer span.End()

	return s.repo.ListRecent(ctx, channelID, limit)
}

func (s *service) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "ServiceCount")
	defer span.End()

	return s.repo.Count(ctx)
}

// View converts a persisted message into its wire shape
func View(m core.Message) core.MessageView {
	return core.MessageView{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		StreamID:  m.StreamID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Meta:      m.Meta,
	}
}
