package socket_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/priorstream/chat/x/core"
	"github.com/priorstream/chat/x/policy"
	"github.com/priorstream/chat/x/socket"
	mock_socket "github.com/priorstream/chat/x/socket/mock"
)

var ctx = context.Background()

type fakeChannelService struct {
	members map[[2]uint]bool
}

func (f *fakeChannelService) Create(ctx context.Context, channel core.Channel) (core.Channel, error) {
	return channel, nil
}

func (f *fakeChannelService) Get(ctx context.Context, id uint) (core.Channel, error) {
	return core.Channel{ID: id}, nil
}

func (f *fakeChannelService) List(ctx context.Context) ([]core.Channel, error) {
	return nil, nil
}

func (f *fakeChannelService) AddParticipant(ctx context.Context, channelID uint, userID uint, role string) error {
	f.members[[2]uint{channelID, userID}] = true
	return nil
}

func (f *fakeChannelService) ListParticipants(ctx context.Context, channelID uint) ([]core.ChannelParticipant, error) {
	return nil, nil
}

func (f *fakeChannelService) IsMember(ctx context.Context, channelID uint, userID uint) (bool, error) {
	return f.members[[2]uint{channelID, userID}], nil
}

func (f *fakeChannelService) Count(ctx context.Context) (int64, error) {
	return int64(len(f.members)), nil
}

type fakeStreamService struct {
	nextID uint
}

func (f *fakeStreamService) GetOrCreate(ctx context.Context, channelID uint, ownerUserID uint) (core.Stream, error) {
	f.nextID++
	return core.Stream{ID: f.nextID, ChannelID: channelID, OwnerUserID: ownerUserID}, nil
}

func (f *fakeStreamService) ListByChannel(ctx context.Context, channelID uint) ([]core.Stream, error) {
	return nil, nil
}

func (f *fakeStreamService) Ensure(ctx context.Context, channelID uint, userIDs []uint) ([]uint, []uint, error) {
	return nil, nil, nil
}

type fakePolicyService struct {
	effective policy.Effective
}

func (f *fakePolicyService) Resolve(ctx context.Context, streamID uint) (policy.Effective, error) {
	return f.effective, nil
}

func (f *fakePolicyService) GetByStream(ctx context.Context, streamID uint) (core.PriorityPolicy, error) {
	return core.PriorityPolicy{}, core.NewErrorNotFound()
}

func (f *fakePolicyService) Upsert(ctx context.Context, p core.PriorityPolicy) (core.PriorityPolicy, error) {
	return p, nil
}

// fakeAdmission admits the first `budget` calls and denies the rest
type fakeAdmission struct {
	budget int
}

func (f *fakeAdmission) Allow(ctx context.Context, key string, rate float64, capacity float64, cost float64) (bool, error) {
	if f.budget <= 0 {
		return false, nil
	}
	f.budget--
	return true, nil
}

func (f *fakeAdmission) Grant(ctx context.Context, key string, rate float64, capacity float64, want int64) (int64, error) {
	return want, nil
}

type fakeMessageService struct {
	created []core.Message
}

func (f *fakeMessageService) Create(ctx context.Context, message core.Message) (core.Message, error) {
	message.ID = uint(len(f.created) + 1)
	f.created = append(f.created, message)
	return message, nil
}

func (f *fakeMessageService) Get(ctx context.Context, id uint) (core.Message, error) {
	return core.Message{}, core.NewErrorNotFound()
}

func (f *fakeMessageService) UpdateMeta(ctx context.Context, id uint, meta core.JSONB) error {
	return nil
}

func (f *fakeMessageService) ListRecent(ctx context.Context, channelID uint, limit int) ([]core.Message, error) {
	return nil, nil
}

func (f *fakeMessageService) Count(ctx context.Context) (int64, error) {
	return int64(len(f.created)), nil
}

func newTestService(t *testing.T, admission *fakeAdmission, members map[[2]uint]bool) (socket.Service, *mock_socket.MockManager, *fakeMessageService) {
	ctrl := gomock.NewController(t)
	manager := mock_socket.NewMockManager(ctrl)
	messages := &fakeMessageService{}
	service := socket.NewService(
		manager,
		&fakeChannelService{members: members},
		&fakeStreamService{},
		&fakePolicyService{effective: policy.Effective{MsgRateRps: 1, UploadBps: 1 << 20, DownloadBps: 1 << 20, Burst: 1}},
		admission,
		messages,
	)
	return service, manager, messages
}

func TestJoinMember(t *testing.T) {
	service, manager, _ := newTestService(t, &fakeAdmission{}, map[[2]uint]bool{{10, 1}: true})

	manager.EXPECT().Subscribe(uint(1), uint(10))

	err := service.Join(ctx, 1, 10)
	assert.NoError(t, err)
}

func TestJoinNonMemberIsNeverSubscribed(t *testing.T) {
	service, manager, _ := newTestService(t, &fakeAdmission{}, map[[2]uint]bool{})

	manager.EXPECT().Subscribe(gomock.Any(), gomock.Any()).Times(0)

	err := service.Join(ctx, 1, 10)
	assert.ErrorIs(t, err, core.ErrorPermissionDenied{})
}

func TestLeaveUnsubscribesUnconditionally(t *testing.T) {
	service, manager, _ := newTestService(t, &fakeAdmission{}, map[[2]uint]bool{})

	manager.EXPECT().Unsubscribe(uint(1), uint(10))

	service.Leave(ctx, 1, 10)
}

func TestSendMessageAdmittedThenThrottled(t *testing.T) {
	members := map[[2]uint]bool{{10, 1}: true}
	service, manager, messages := newTestService(t, &fakeAdmission{budget: 1}, members)

	manager.EXPECT().Multicast(uint(10), gomock.Any()).Times(1)

	created, err := service.SendMessage(ctx, 1, socket.MessagePayload{ChannelID: 10, Content: "first"})
	assert.NoError(t, err)
	assert.Equal(t, "first", created.Content)

	// budget exhausted, the second send is dropped without persisting
	_, err = service.SendMessage(ctx, 1, socket.MessagePayload{ChannelID: 10, Content: "second"})
	var throttled core.ErrorThrottled
	assert.ErrorAs(t, err, &throttled)
	assert.Equal(t, "msg_rate", throttled.Reason)
	assert.Len(t, messages.created, 1)
}

func TestSendMessageNonMember(t *testing.T) {
	service, manager, messages := newTestService(t, &fakeAdmission{budget: 10}, map[[2]uint]bool{})

	manager.EXPECT().Multicast(gomock.Any(), gomock.Any()).Times(0)

	_, err := service.SendMessage(ctx, 1, socket.MessagePayload{ChannelID: 10, Content: "hello"})
	assert.ErrorIs(t, err, core.ErrorPermissionDenied{})
	assert.Len(t, messages.created, 0)
}
