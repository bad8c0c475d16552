package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/lumochat/lumo/internal/accounts"
	"github.com/lumochat/lumo/internal/attachment"
	"github.com/lumochat/lumo/internal/channel"
	"github.com/lumochat/lumo/internal/config"
	"github.com/lumochat/lumo/internal/db"
	dbsqlc "github.com/lumochat/lumo/internal/db/sqlc"
	"github.com/lumochat/lumo/internal/handlers"
	"github.com/lumochat/lumo/internal/logger"
	"github.com/lumochat/lumo/internal/message"
	"github.com/lumochat/lumo/internal/message/event"
	"github.com/lumochat/lumo/internal/permissions"
	"github.com/lumochat/lumo/internal/server"
)

func runServe(configPath string) {
	fx.New(
		fx.Supply(configPathValue(configPath)),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideDBConn,
			provideDBQueries,
			provideEventHub,
			provideStorageProvider,
			provideAttachmentService,
			provideAttachmentReaper,
			permissions.NewCalculator,
			accounts.NewService,
			channel.NewService,
			provideMessageService,
			provideServerHandler(providePingHandler),
			provideServerHandler(provideAuthHandler),
			provideServerHandler(provideChannelHandler),
			provideServerHandler(provideMessageHandler),
			provideServerHandler(provideAttachmentHandler),
			provideServerHandler(provideGatewayHandler),
			provideServer,
		),
		fx.Invoke(
			startAttachmentReaper,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

type configPathValue string

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig(path configPathValue) (config.Config, error) {
	cfg, err := config.Load(string(path))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return config.Config{}, fmt.Errorf("auth.jwt_secret is required")
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { conn.Close(); return nil }})
	return conn, nil
}

func provideDBQueries(conn *pgxpool.Pool) *dbsqlc.Queries { return dbsqlc.New(conn) }

func provideEventHub(lc fx.Lifecycle, log *slog.Logger) *event.Hub {
	hub := event.NewHub(log)
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { hub.Close(); return nil }})
	return hub
}

func provideStorageProvider(cfg config.Config) (*attachment.DiskProvider, error) {
	return attachment.NewDiskProvider(cfg.Storage.Root)
}

func provideAttachmentService(log *slog.Logger, queries *dbsqlc.Queries, provider *attachment.DiskProvider, cfg config.Config) *attachment.Service {
	return attachment.NewService(log, queries, provider, cfg.Limits.MaxAttachmentBytes)
}

func provideAttachmentReaper(log *slog.Logger, service *attachment.Service, cfg config.Config) (*attachment.Reaper, error) {
	retention, err := cfg.Limits.RetentionDuration()
	if err != nil {
		return nil, err
	}
	return attachment.NewReaper(log, service, retention, cfg.Limits.ReapSchedule), nil
}

func provideMessageService(log *slog.Logger, queries *dbsqlc.Queries, channelService *channel.Service, attachmentService *attachment.Service, perms *permissions.Calculator, cfg config.Config, hub *event.Hub) *message.Service {
	return message.NewService(log, queries, channelService, attachmentService, perms, cfg.Limits.MaxAttachments, hub)
}

func providePingHandler() *handlers.PingHandler { return handlers.NewPingHandler() }

func provideAuthHandler(log *slog.Logger, accountService *accounts.Service, cfg config.Config) (*handlers.AuthHandler, error) {
	expiry, err := cfg.Auth.JWTExpiry()
	if err != nil {
		return nil, err
	}
	return handlers.NewAuthHandler(log, accountService, cfg.Auth.JWTSecret, expiry), nil
}

func provideChannelHandler(log *slog.Logger, channelService *channel.Service, perms *permissions.Calculator) *handlers.ChannelHandler {
	return handlers.NewChannelHandler(log, channelService, perms)
}

func provideMessageHandler(log *slog.Logger, messageService *message.Service, channelService *channel.Service, perms *permissions.Calculator, hub *event.Hub) *handlers.MessageHandler {
	return handlers.NewMessageHandler(log, messageService, channelService, perms, hub)
}

func provideAttachmentHandler(log *slog.Logger, attachmentService *attachment.Service) *handlers.AttachmentHandler {
	return handlers.NewAttachmentHandler(log, attachmentService)
}

func provideGatewayHandler(log *slog.Logger, channelService *channel.Service, perms *permissions.Calculator, hub *event.Hub) *handlers.GatewayHandler {
	return handlers.NewGatewayHandler(log, channelService, perms, hub)
}

type serverParams struct {
	fx.In

	Config   config.Config
	Handlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Config.Server.Addr, params.Config.Auth.JWTSecret, params.Handlers)
}

func startAttachmentReaper(lc fx.Lifecycle, reaper *attachment.Reaper) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return reaper.Start() },
		OnStop:  func(ctx context.Context) error { reaper.Stop(); return nil },
	})
}

func startServer(lc fx.Lifecycle, srv *server.Server, log *slog.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
