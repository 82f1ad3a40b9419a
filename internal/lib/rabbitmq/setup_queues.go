package rabbitmq

// ExchangeCourses обменник событий генерации документов.
const ExchangeCourses = "courses"

// QueueCourseReady очередь готовых курсов для сервиса уведомлений.
const (
	QueueCourseReady      = "courses.generated"
	RoutingKeyCourseReady = "generated"
)

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

func GetCourseQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueCourseReady, RoutingKey: RoutingKeyCourseReady},
		// при необходимости дополнительные очереди для других воркеров
	}
}
