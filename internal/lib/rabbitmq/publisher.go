package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/coursgen/coursgen/internal/models"
)

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CourseEventPublisher публикует события о готовых курсах в обменник курсов.
type CourseEventPublisher struct {
	ch *amqp.Channel
}

// NewCourseEventPublisher создает новый экземпляр CourseEventPublisher.
func NewCourseEventPublisher(ch *amqp.Channel) *CourseEventPublisher {
	return &CourseEventPublisher{ch: ch}
}

// PublishCourseReady публикует событие о сгенерированной паре документов.
func (p *CourseEventPublisher) PublishCourseReady(event models.CourseReadyEvent) error {
	return PublishMessage(p.ch, ExchangeCourses, RoutingKeyCourseReady, event)
}
