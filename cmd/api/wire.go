//go:build wireinject

package main

import (
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/priorstream/chat/x/channel"
	"github.com/priorstream/chat/x/limiter"
	"github.com/priorstream/chat/x/message"
	"github.com/priorstream/chat/x/policy"
	"github.com/priorstream/chat/x/socket"
	"github.com/priorstream/chat/x/stream"
	"github.com/priorstream/chat/x/transfer"
	"github.com/priorstream/chat/x/user"
	"github.com/priorstream/chat/x/util"
)

var userProvider = wire.NewSet(user.NewService, user.NewRepository)
var channelProvider = wire.NewSet(channel.NewService, channel.NewRepository, userProvider)
var streamProvider = wire.NewSet(stream.NewService, stream.NewRepository)
var policyProvider = wire.NewSet(policy.NewService, policy.NewRepository)
var messageProvider = wire.NewSet(message.NewService, message.NewRepository)

func SetupSocketManager() socket.Manager {
	wire.Build(socket.NewManager)
	return nil
}

func SetupSocketHandler(db *gorm.DB, rdb *redis.Client, mc *memcache.Client, manager socket.Manager, config util.Config) socket.Handler {
	wire.Build(socket.NewHandler, socket.NewService, limiter.NewService,
		channelProvider, streamProvider, policyProvider, messageProvider)
	return nil
}

func SetupTransferHandler(db *gorm.DB, rdb *redis.Client, mc *memcache.Client, manager socket.Manager, config util.Config) transfer.Handler {
	wire.Build(transfer.NewHandler, transfer.NewService, transfer.NewRepository,
		limiter.NewService, channelProvider, streamProvider, policyProvider, messageProvider)
	return nil
}

func SetupUserHandler(db *gorm.DB) user.Handler {
	wire.Build(user.NewHandler, userProvider)
	return nil
}

func SetupChannelHandler(db *gorm.DB) channel.Handler {
	wire.Build(channel.NewHandler, channelProvider, streamProvider)
	return nil
}

func SetupStreamHandler(db *gorm.DB, mc *memcache.Client, config util.Config) stream.Handler {
	wire.Build(stream.NewHandler, streamProvider, policyProvider)
	return nil
}

func SetupPolicyHandler(db *gorm.DB, mc *memcache.Client, config util.Config) policy.Handler {
	wire.Build(policy.NewHandler, policyProvider)
	return nil
}

func SetupMessageHandler(db *gorm.DB) message.Handler {
	wire.Build(message.NewHandler, messageProvider)
	return nil
}

func SetupUserService(db *gorm.DB) user.Service {
	wire.Build(userProvider)
	return nil
}

func SetupChannelService(db *gorm.DB) channel.Service {
	wire.Build(channelProvider)
	return nil
}

func SetupStreamService(db *gorm.DB) stream.Service {
	wire.Build(streamProvider)
	return nil
}

func SetupMessageService(db *gorm.DB) message.Service {
	wire.Build(messageProvider)
	return nil
}
