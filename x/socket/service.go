// Package socket owns the live websocket transports: the connection broker
// and the per-connection control protocol.
package socket

import (
	"context"

	"go.opentelemetry.io/otel"

	"github.com/priorstream/chat/x/channel"
	"github.com/priorstream/chat/x/core"
	"github.com/priorstream/chat/x/limiter"
	"github.com/priorstream/chat/x/message"
	"github.com/priorstream/chat/x/policy"
	"github.com/priorstream/chat/x/stream"
)

var tracer = otel.Tracer("socket")

// Service implements the control protocol actions
type Service interface {
	Join(ctx context.Context, userID uint, channelID uint) error
	Leave(ctx context.Context, userID uint, channelID uint)
	SendMessage(ctx context.Context, userID uint, payload MessagePayload) (core.Message, error)
}

type service struct {
	manager Manager
	channel channel.Service
	stream  stream.Service
	policy  policy.Service
	limiter limiter.Service
	message message.Service
}

// NewService creates a new socket service
func NewService(
	manager Manager,
	channel channel.Service,
	stream stream.Service,
	policy policy.Service,
	limiter limiter.Service,
	message message.Service,
) Service {
	return &service{
		manager: manager,
		channel: channel,
		stream:  stream,
		policy:  policy,
		limiter: limiter,
		message: message,
	}
}

// Join checks the durable membership record and subscribes the user to the
// channel's fan-out set. A non-member is never subscribed.
func (s *service) Join(ctx context.Context, userID uint, channelID uint) error {
	ctx, span := tracer.Start(ctx, "ServiceJoin")
	defer span.End()

	member, err := s.channel.IsMember(ctx, channelID, userID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !member {
		return core.NewErrorPermissionDenied()
	}

	s.manager.Subscribe(userID, channelID)
	return nil
}

// Leave unsubscribes unconditionally; no authorization is needed to leave
func (s *service) Leave(ctx context.Context, userID uint, channelID uint) {
	_, span := tracer.Start(ctx, "ServiceLeave")
	defer span.End()

	s.manager.Unsubscribe(userID, channelID)
}

// SendMessage runs the admitted message path: membership check, lazy lane
// resolution, policy resolution, unit-cost admission, persist, fan-out.
// On denial the message is dropped and ErrorThrottled returned; there is no
// queue and no retry, the sender must resend.
func (s *service) SendMessage(ctx context.Context, userID uint, payload MessagePayload) (core.Message, error) {
	ctx, span := tracer.Start(ctx, "ServiceSendMessage")
	defer span.End()

	member, err := s.channel.IsMember(ctx, payload.ChannelID, userID)
	if err != nil {
		span.RecordError(err)
		return core.Message{}, err
	}
	if !member {
		return core.Message{}, core.NewErrorPermissionDenied()
	}

	lane, err := s.stream.GetOrCreate(ctx, payload.ChannelID, userID)
	if err != nil {
		span.RecordError(err)
		return core.Message{}, err
	}

	effective, err := s.policy.Resolve(ctx, lane.ID)
	if err != nil {
		span.RecordError(err)
		return core.Message{}, err
	}

	allowed, err := s.limiter.Allow(ctx,
		limiter.BucketKey(lane.ID, limiter.KindMessage),
		float64(effective.MsgRateRps), float64(effective.Burst), 1)
	if err != nil {
		span.RecordError(err)
		return core.Message{}, err
	}
	if !allowed {
		return core.Message{}, core.NewErrorThrottled("msg_rate")
	}

	created, err := s.message.Create(ctx, core.Message{
		ChannelID:       payload.ChannelID,
		StreamID:        lane.ID,
		SenderID:        userID,
		ParentMessageID: payload.ParentMessageID,
		Content:         payload.Content,
		Meta:            payload.Meta,
	})
	if err != nil {
		span.RecordError(err)
		return core.Message{}, err
	}

	s.manager.Multicast(payload.ChannelID, core.MessageEvent{
		Type:    core.EventMessageNew,
		Message: message.View(created),
	})

	return created, nil
}
