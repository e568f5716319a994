package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/priorstream/chat/internal/testutil"
	"github.com/priorstream/chat/x/core"
	"github.com/priorstream/chat/x/util"
)

var ctx = context.Background()

func defaultTestConfig() util.Config {
	return util.Config{
		Chat: util.Chat{
			DefaultMsgRateRps:  5,
			DefaultUploadBps:   262144,
			DefaultDownloadBps: 524288,
			DefaultBurst:       10,
		},
	}
}

func TestRepository(t *testing.T) {

	db, cleanup := testutil.CreateDB()
	defer cleanup()

	repo := NewRepository(db)

	_, err := repo.GetEnabledByStream(ctx, 1)
	assert.ErrorIs(t, err, core.ErrorNotFound{})

	created, err := repo.Upsert(ctx, core.PriorityPolicy{
		StreamID:    1,
		MsgRateRps:  20,
		UploadBps:   1 << 20,
		DownloadBps: 2 << 20,
		Burst:       40,
		Enabled:     true,
	})
	if assert.NoError(t, err) {
		assert.NotZero(t, created.ID)
	}

	fetched, err := repo.GetEnabledByStream(ctx, 1)
	if assert.NoError(t, err) {
		assert.Equal(t, 20, fetched.MsgRateRps)
		assert.Equal(t, int64(1<<20), fetched.UploadBps)
	}

	// a second upsert replaces in place
	updated, err := repo.Upsert(ctx, core.PriorityPolicy{
		StreamID:   1,
		MsgRateRps: 50,
		Burst:      100,
		Enabled:    true,
	})
	if assert.NoError(t, err) {
		assert.Equal(t, created.ID, updated.ID)
	}

	fetched, err = repo.GetEnabledByStream(ctx, 1)
	if assert.NoError(t, err) {
		assert.Equal(t, 50, fetched.MsgRateRps)
	}

	// a disabled override is invisible to the enabled lookup but still
	// readable by the admin surface
	_, err = repo.Upsert(ctx, core.PriorityPolicy{StreamID: 1, MsgRateRps: 50, Burst: 100, Enabled: false})
	assert.NoError(t, err)

	_, err = repo.GetEnabledByStream(ctx, 1)
	assert.ErrorIs(t, err, core.ErrorNotFound{})

	fetched, err = repo.GetByStream(ctx, 1)
	if assert.NoError(t, err) {
		assert.False(t, fetched.Enabled)
	}
}

func TestServiceResolveFallback(t *testing.T) {

	db, cleanup := testutil.CreateDB()
	defer cleanup()

	config := defaultTestConfig()
	service := NewService(NewRepository(db), nil, config)

	// no override: the process-wide defaults apply
	effective, err := service.Resolve(ctx, 7)
	if assert.NoError(t, err) {
		assert.Equal(t, config.Chat.DefaultMsgRateRps, effective.MsgRateRps)
		assert.Equal(t, config.Chat.DefaultUploadBps, effective.UploadBps)
		assert.Equal(t, config.Chat.DefaultDownloadBps, effective.DownloadBps)
		assert.Equal(t, config.Chat.DefaultBurst, effective.Burst)
	}

	_, err = service.Upsert(ctx, core.PriorityPolicy{
		StreamID:    7,
		MsgRateRps:  99,
		UploadBps:   5,
		DownloadBps: 6,
		Burst:       7,
		Enabled:     true,
	})
	assert.NoError(t, err)

	effective, err = service.Resolve(ctx, 7)
	if assert.NoError(t, err) {
		assert.Equal(t, 99, effective.MsgRateRps)
		assert.Equal(t, int64(5), effective.UploadBps)
	}
}

func TestServiceResolveCache(t *testing.T) {

	db, cleanupDB := testutil.CreateDB()
	defer cleanupDB()
	mc, cleanupMC := testutil.CreateMC()
	defer cleanupMC()

	repo := NewRepository(db)
	service := NewService(repo, mc, defaultTestConfig())

	_, err := service.Upsert(ctx, core.PriorityPolicy{StreamID: 3, MsgRateRps: 10, Burst: 20, Enabled: true})
	assert.NoError(t, err)

	effective, err := service.Resolve(ctx, 3)
	if assert.NoError(t, err) {
		assert.Equal(t, 10, effective.MsgRateRps)
	}

	// a write that bypasses the service leaves the cached entry in place
	_, err = repo.Upsert(ctx, core.PriorityPolicy{StreamID: 3, MsgRateRps: 77, Burst: 20, Enabled: true})
	assert.NoError(t, err)

	effective, err = service.Resolve(ctx, 3)
	if assert.NoError(t, err) {
		assert.Equal(t, 10, effective.MsgRateRps)
	}

	// the service upsert invalidates, so the next resolve sees the override
	_, err = service.Upsert(ctx, core.PriorityPolicy{StreamID: 3, MsgRateRps: 30, Burst: 20, Enabled: true})
	assert.NoError(t, err)

	effective, err = service.Resolve(ctx, 3)
	if assert.NoError(t, err) {
		assert.Equal(t, 30, effective.MsgRateRps)
	}
}
