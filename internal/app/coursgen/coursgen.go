package coursgen

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/coursgen/coursgen/internal/config"
	"github.com/coursgen/coursgen/internal/generator"
	"github.com/coursgen/coursgen/internal/identity"
	"github.com/coursgen/coursgen/internal/lib/jwt"
	"github.com/coursgen/coursgen/internal/lib/rabbitmq"
	"github.com/coursgen/coursgen/internal/lib/sl"
	"github.com/coursgen/coursgen/internal/migrations"
	sessionservice "github.com/coursgen/coursgen/internal/services/session"
	"github.com/coursgen/coursgen/internal/sessionstore"
	"github.com/coursgen/coursgen/internal/storage"
)

// App инкапсулирует HTTP-сервер и его зависимости.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *storage.Storage
	sessions *sessionservice.Service
	amqpConn *amqp.Connection
	amqpCh   *amqp.Channel
}

// New собирает приложение: леджер, хранилище снимков, клиенты внешних
// сервисов и сессионный контроллер. Брокер сообщений опционален: без
// amqp_uri события о готовых курсах не публикуются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	store, err := sessionstore.InitServer(ctx, cfg.RedisConnection, cfg.Session.SnapshotTTL)
	if err != nil {
		return nil, err
	}

	idp := identity.NewClient(cfg.Identity)
	backend := generator.NewClient(cfg.Generator)
	verifier := jwt.NewVerifier(cfg.Identity.JWTSecret)

	var events sessionservice.EventPublisher
	var amqpConn *amqp.Connection
	var amqpCh *amqp.Channel
	if cfg.RabbitMQ.AmqpURI != "" {
		amqpConn, err = rabbitmq.Connect(cfg.RabbitMQ.AmqpURI, 3, time.Second)
		if err != nil {
			return nil, err
		}
		amqpCh, err = rabbitmq.SetupChannel(amqpConn, rabbitmq.GetCourseQueues())
		if err != nil {
			if closeErr := amqpConn.Close(); closeErr != nil {
				logger.Error("failed to close amqp connection", sl.Err(closeErr))
			}
			return nil, err
		}
		events = rabbitmq.NewCourseEventPublisher(amqpCh)
	} else {
		logger.Warn("amqp_uri is empty, course ready events are disabled")
	}

	sessions := sessionservice.NewService(db, idp, backend, store, events, logger, cfg.Session.RefreshInterval)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, sessions, db, store, verifier)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		sessions: sessions,
		amqpConn: amqpConn,
		amqpCh:   amqpCh,
	}, nil
}

// Run запускает сервер и фоновый цикл обновления балансов,
// останавливает их по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	go a.sessions.RunRefreshLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.amqpCh != nil {
			if closeErr := a.amqpCh.Close(); closeErr != nil {
				a.logger.Error("failed to close amqp channel", sl.Err(closeErr))
			}
		}
		if a.amqpConn != nil {
			if closeErr := a.amqpConn.Close(); closeErr != nil {
				a.logger.Error("failed to close amqp connection", sl.Err(closeErr))
			}
		}
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", sl.Err(closeErr))
		}
		return err
	}
}
