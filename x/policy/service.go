// Package policy resolves the effective rate parameters of a stream,
// falling back to the process-wide defaults when no enabled override exists.
package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"
	"go.opentelemetry.io/otel"

	"github.com/priorstream/chat/x/core"
	"github.com/priorstream/chat/x/util"
)

var tracer = otel.Tracer("policy")

// cache ttl in seconds. Resolve runs on every admission decision, so a
// short read-through window keeps the hot path off postgres.
const cacheExpiration = 10

// Effective is the resolved rate parameter set of a stream
type Effective struct {
	MsgRateRps  int   `json:"msg_rate_rps"`
	UploadBps   int64 `json:"upload_bps"`
	DownloadBps int64 `json:"download_bps"`
	Burst       int   `json:"burst"`
}

// Service is the interface for the policy resolver
type Service interface {
	Resolve(ctx context.Context, streamID uint) (Effective, error)
	GetByStream(ctx context.Context, streamID uint) (core.PriorityPolicy, error)
	Upsert(ctx context.Context, policy core.PriorityPolicy) (core.PriorityPolicy, error)
}

type service struct {
	repo   Repository
	mc     *memcache.Client
	config util.Config
}

// NewService creates a new policy service
func NewService(repo Repository, mc *memcache.Client, config util.Config) Service {
	return &service{repo: repo, mc: mc, config: config}
}

func cacheKey(streamID uint) string {
	return fmt.Sprintf("policy:effective:%d", streamID)
}

// Resolve returns the effective policy of a stream. Correctness does not
// depend on the cache; any cache failure falls through to the repository.
func (s *service) Resolve(ctx context.Context, streamID uint) (Effective, error) {
	ctx, span := tracer.Start(ctx, "ServiceResolve")
	defer span.End()

	if s.mc != nil {
		if item, err := s.mc.Get(cacheKey(streamID)); err == nil {
			var cached Effective
			if err := json.Unmarshal(item.Value, &cached); err == nil {
				return cached, nil
			}
		}
	}

	effective := Effective{
		MsgRateRps:  s.config.Chat.DefaultMsgRateRps,
		UploadBps:   s.config.Chat.DefaultUploadBps,
		DownloadBps: s.config.Chat.DefaultDownloadBps,
		Burst:       s.config.Chat.DefaultBurst,
	}

	override, err := s.repo.GetEnabledByStream(ctx, streamID)
	if err == nil {
		effective = Effective{
			MsgRateRps:  override.MsgRateRps,
			UploadBps:   override.UploadBps,
			DownloadBps: override.DownloadBps,
			Burst:       override.Burst,
		}
	} else if !errors.Is(err, core.NewErrorNotFound()) {
		span.RecordError(err)
		return Effective{}, err
	}

	if s.mc != nil {
		if value, err := json.Marshal(effective); err == nil {
			s.mc.Set(&memcache.Item{Key: cacheKey(streamID), Value: value, Expiration: cacheExpiration})
		}
	}

	return effective, nil
}

// GetByStream returns the raw policy override of a stream, enabled or not
func (s *service) GetByStream(ctx context.Context, streamID uint) (core.PriorityPolicy, error) {
	ctx, span := tracer.Start(ctx, "ServiceGetByStream")
	defer span.End()

	return s.repo.GetByStream(ctx, streamID)
}

// Upsert replaces the policy override of a stream and drops the cached entry
func (s *service) Upsert(ctx context.Context, policy core.PriorityPolicy) (core.PriorityPolicy, error) {
	ctx, span := tracer.Start(ctx, "ServiceUpsert")
	defer span.End()

	updated, err := s.repo.Upsert(ctx, policy)
	if err != nil {
		span.RecordError(err)
		return core.PriorityPolicy{}, err
	}

	if s.mc != nil {
		s.mc.Delete(cacheKey(policy.StreamID))
	}

	return updated, nil
}
