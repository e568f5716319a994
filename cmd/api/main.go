package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/priorstream/chat/x/channel"
	"github.com/priorstream/chat/x/core"
	"github.com/priorstream/chat/x/stream"
	"github.com/priorstream/chat/x/user"
	"github.com/priorstream/chat/x/util"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/plugin/opentelemetry/tracing"
)

const chatBanner = `
             _               _
  _ __  _ __(_) ___  _ __ __| |_ _ _ ___ __ _ _ __
 | '_ \| '__| |/ _ \| '__/ _' | '_| '_/ -_) _' | '  \
 | .__/|_|  |_|\___/|_|  \__,_|_| |_| \___\__,_|_|_|_|
 |_|                 priority-aware chat
`

type CustomHandler struct {
	slog.Handler
}

func (h *CustomHandler) Handle(ctx context.Context, r slog.Record) error {

	r.AddAttrs(slog.String("type", "app"))

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		r.AddAttrs(slog.String("traceID", span.SpanContext().TraceID().String()))
		r.AddAttrs(slog.String("spanID", span.SpanContext().SpanID().String()))
	}

	return h.Handler.Handle(ctx, r)
}

var (
	version      = "unknown"
	buildMachine = "unknown"
	buildTime    = "unknown"
	goVersion    = "unknown"
)

func main() {

	fmt.Fprint(os.Stderr, chatBanner)

	handler := &CustomHandler{Handler: slog.NewJSONHandler(os.Stdout, nil)}
	slogger := slog.New(handler)
	slog.SetDefault(slogger)

	slog.Info(fmt.Sprintf("Priorstream %s starting...", version))

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	config := util.Config{}
	configPath := os.Getenv("CHAT_CONFIG")
	if configPath == "" {
		configPath = "/etc/priorstream/config.yaml"
	}

	err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load config: ", err)
	}

	if config.Server.EnableTrace {
		cleanup, err := setupTraceProvider(config.Server.TraceEndpoint, "priorstream/api", version)
		if err != nil {
			panic(err)
		}
		defer cleanup()

		skipper := otelecho.WithSkipper(
			func(c echo.Context) bool {
				return c.Path() == "/metrics" || c.Path() == "/health"
			},
		)
		e.Use(otelecho.Middleware("api", skipper))
	}

	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace: "chatapi",
		LabelFuncs: map[string]echoprometheus.LabelValueFunc{
			"url": func(c echo.Context, err error) string {
				return "REDACTED"
			},
		},
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
	}))

	e.Use(middleware.Recover())

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             300 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(config.Server.Dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		panic("failed to connect database")
	}
	sqlDB, err := db.DB() // for pinging
	if err != nil {
		panic("failed to connect database")
	}
	defer sqlDB.Close()

	err = db.Use(tracing.NewPlugin(
		tracing.WithDBName("postgres"),
	))
	if err != nil {
		panic("failed to setup tracing plugin")
	}

	// Migrate the schema
	slog.Info("start migrate")
	db.AutoMigrate(
		&core.User{},
		&core.Channel{},
		&core.ChannelParticipant{},
		&core.Stream{},
		&core.Message{},
		&core.Attachment{},
		&core.PriorityPolicy{},
	)

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Server.RedisAddr,
		Password: "", // no password set
		DB:       config.Server.RedisDB,
	})
	err = redisotel.InstrumentTracing(
		rdb,
		redisotel.WithAttributes(
			attribute.KeyValue{
				Key:   "db.name",
				Value: attribute.StringValue("redis"),
			},
		),
	)
	if err != nil {
		panic("failed to setup tracing plugin")
	}

	mc := memcache.New(config.Server.MemcachedAddr)
	defer mc.Close()

	socketManager := SetupSocketManager()
	socketHandler := SetupSocketHandler(db, rdb, mc, socketManager, config)
	transferHandler := SetupTransferHandler(db, rdb, mc, socketManager, config)

	userHandler := SetupUserHandler(db)
	channelHandler := SetupChannelHandler(db)
	streamHandler := SetupStreamHandler(db, mc, config)
	policyHandler := SetupPolicyHandler(db, mc, config)
	messageHandler := SetupMessageHandler(db)

	userService := SetupUserService(db)
	channelService := SetupChannelService(db)
	streamService := SetupStreamService(db)
	messageService := SetupMessageService(db)

	if config.Chat.DevMode {
		seedDev(userService, channelService, streamService)
	}

	// socket
	e.GET("/ws", socketHandler.Connect)

	// file transfer
	e.PUT("/files/upload_raw", transferHandler.UploadRaw)
	e.GET("/files/:attachment_id/download", transferHandler.Download)

	// admin
	admin := e.Group("/admin")
	admin.GET("/users", userHandler.List)
	admin.POST("/users", userHandler.Create)
	admin.GET("/channels", channelHandler.List)
	admin.POST("/channels", channelHandler.Create)
	admin.GET("/channels/:channel_id/participants", channelHandler.ListParticipants)
	admin.POST("/channels/:channel_id/participants", channelHandler.AddParticipant)
	admin.POST("/channels/:channel_id/ensure_streams", channelHandler.EnsureStreams)
	admin.GET("/channels/:channel_id/streams", streamHandler.ListByChannel)
	admin.GET("/channels/:channel_id/messages", messageHandler.ListRecent)
	admin.PUT("/streams/:stream_id/policy", policyHandler.Upsert)

	e.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version":      version,
			"buildTime":    buildTime,
			"buildMachine": buildMachine,
			"goVersion":    goVersion,
		})
	})

	e.GET("/health", func(c echo.Context) (err error) {
		ctx := c.Request().Context()

		err = sqlDB.Ping()
		if err != nil {
			return c.String(http.StatusInternalServerError, "db error")
		}

		err = rdb.Ping(ctx).Err()
		if err != nil {
			return c.String(http.StatusInternalServerError, "redis error")
		}

		return c.String(http.StatusOK, "ok")
	})

	var resourceCountMetrics = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chat_resources_count",
			Help: "resources count",
		},
		[]string{"type"},
	)
	prometheus.MustRegister(resourceCountMetrics)

	var socketConnectionMetrics = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_socket_connections",
			Help: "socket connections",
		},
	)
	prometheus.MustRegister(socketConnectionMetrics)

	go func() {
		for {
			time.Sleep(15 * time.Second)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

			count, err := messageService.Count(ctx)
			if err != nil {
				slog.Error(fmt.Sprintf("failed to count messages: %v", err))
				cancel()
				continue
			}
			resourceCountMetrics.WithLabelValues("message").Set(float64(count))

			count, err = userService.Count(ctx)
			if err != nil {
				slog.Error(fmt.Sprintf("failed to count users: %v", err))
				cancel()
				continue
			}
			resourceCountMetrics.WithLabelValues("user").Set(float64(count))

			count, err = channelService.Count(ctx)
			if err != nil {
				slog.Error(fmt.Sprintf("failed to count channels: %v", err))
				cancel()
				continue
			}
			resourceCountMetrics.WithLabelValues("channel").Set(float64(count))

			socketConnectionMetrics.Set(float64(socketHandler.CurrentConnectionCount()))

			cancel()
		}
	}()

	e.GET("/metrics", echoprometheus.NewHandler())

	e.Logger.Fatal(e.Start(":8000"))
}

// seedDev provisions the fixed development fixtures: two users sharing one
// channel, with their lanes created up front. Reruns are no-ops.
func seedDev(users user.Service, channels channel.Service, streams stream.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, u := range []core.User{
		{ID: 1, DisplayName: "Alice", Email: "alice@example.com"},
		{ID: 2, DisplayName: "Bob", Email: "bob@example.com"},
	} {
		if _, err := users.Get(ctx, u.ID); errors.Is(err, core.NewErrorNotFound()) {
			if _, err := users.Create(ctx, u); err != nil {
				slog.Error(fmt.Sprintf("failed to seed user %d: %v", u.ID, err))
			}
		}
	}

	if _, err := channels.Get(ctx, 1); errors.Is(err, core.NewErrorNotFound()) {
		if _, err := channels.Create(ctx, core.Channel{ID: 1, Name: "General"}); err != nil {
			slog.Error(fmt.Sprintf("failed to seed channel: %v", err))
		}
	}

	for _, userID := range []uint{1, 2} {
		if err := channels.AddParticipant(ctx, 1, userID, "member"); err != nil {
			slog.Error(fmt.Sprintf("failed to seed participant %d: %v", userID, err))
		}
	}

	if _, _, err := streams.Ensure(ctx, 1, []uint{1, 2}); err != nil {
		slog.Error(fmt.Sprintf("failed to seed streams: %v", err))
	}

	slog.Info("dev fixtures ready")
}

func setupTraceProvider(endpoint string, serviceName string, serviceVersion string) (func(), error) {

	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)

	if err != nil {
		return nil, err
	}

	resource := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(serviceVersion),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(resource),
	)
	otel.SetTracerProvider(tracerProvider)

	propagator := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(propagator)

	cleanup := func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			slog.Error(fmt.Sprintf("Failed to shutdown tracer provider: %v", err))
		}
	}
	return cleanup, nil
}
