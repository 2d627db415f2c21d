package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/persistence"
	"github.com/spec-kit/assignment-service/internal/service"
)

// StartNotificationWorker registers the in-process event consumers: the
// notification log and, when Redis is configured, the pub/sub fan-out.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, rds *persistence.Redis, channel string, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if rds.Enabled() {
		events.NewRedisPublisher(rds.Client, channel).Attach(dispatcher)
		logger.Info("event fan-out enabled", zap.String("channel", channel))
	}
}
