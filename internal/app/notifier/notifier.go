// Package notifier собирает сервис почтовых уведомлений о готовых курсах.
package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/coursgen/coursgen/internal/config"
	"github.com/coursgen/coursgen/internal/lib/rabbitmq"
	"github.com/coursgen/coursgen/internal/lib/smtp"
	notifierservice "github.com/coursgen/coursgen/internal/services/notifier"
)

// App инкапсулирует потребителя очереди и сервис отправки писем.
type App struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	service *notifierservice.Service
	logger  *slog.Logger
}

// New подключается к брокеру и собирает сервис уведомлений.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.AmqpURI, 3, time.Second)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetCourseQueues())
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close amqp connection", slog.Any("err", closeErr))
		}
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	service := notifierservice.New(transport, logger)

	return &App{
		conn:    conn,
		ch:      ch,
		service: service,
		logger:  logger,
	}, nil
}

// Run запускает потребителя очереди готовых курсов до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.QueueCourseReady, a.service.SendCourseReady)
	if err != nil {
		a.logger.Error("failed to start course ready consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notifier service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
