package app

import (
	"context"

	"github.com/carousell/ct-go/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"github.com/chatterbox-im/chatterbox/internal/config"
	"github.com/chatterbox-im/chatterbox/internal/gateway"
	"github.com/chatterbox-im/chatterbox/internal/repo/media"
	"github.com/chatterbox-im/chatterbox/internal/repo/mongodb"
	"github.com/chatterbox-im/chatterbox/internal/server"
	"github.com/chatterbox-im/chatterbox/internal/usecase"
)

func Invoke(funcs ...any) *fx.App {
	log := logger.MustNamed("app")
	conf := config.MustLoad()
	log.Debugw("config loaded", log.Reflect("config", conf))
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Unwrap().Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Provide(
			newMongoDB,
			newMediaStore,

			server.NewController,

			usecase.NewAuthUsecase,
			usecase.NewMessageUsecase,
			usecase.NewUserUsecase,

			mongodb.NewMessageRepository,
			mongodb.NewUserRepository,

			gateway.NewHub,
			func(h *gateway.Hub) usecase.Notifier { return h },
		),
		fx.Supply(conf),
		fx.Invoke(RegisterSocketHandlers),
		fx.Invoke(funcs...),
	)
}

func newMediaStore(conf *config.Config) (media.Store, error) {
	return media.NewS3Store(context.Background(), conf)
}

// RegisterSocketHandlers binds inbound socket events to the lifecycle
// services once everything is constructed.
func RegisterSocketHandlers(
	hub *gateway.Hub,
	messages usecase.MessageUsecase,
	users usecase.UserUsecase,
) {
	gateway.RegisterHandlers(hub, messages, users)
}
