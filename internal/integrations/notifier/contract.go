package notifier

import (
	"context"

	"github.com/m04kA/SMC-SportsBookingService/internal/integrations/userservice"
)

// Publisher отправляет сериализованное событие во внешнюю очередь
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// ContactResolver обогащает событие адресом пользователя (опционально).
// ok=false означает, что событие уходит без email.
type ContactResolver interface {
	Recipient(ctx context.Context, userID int64) (*userservice.Contact, bool)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
