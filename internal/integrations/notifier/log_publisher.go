package notifier

import "context"

// LogPublisher пишет события в лог; используется, когда RabbitMQ отключен
type LogPublisher struct {
	logger Logger
}

// NewLogPublisher создает публикатора в лог
func NewLogPublisher(logger Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish логирует событие
func (p *LogPublisher) Publish(_ context.Context, routingKey string, body []byte) error {
	p.logger.Info("notification %s: %s", routingKey, body)
	return nil
}
