package rabbitmq

import "github.com/magabrotheeeer/subscription-tracker/internal/models"

const (
	// ExchangeNotifications обменник напоминаний.
	ExchangeNotifications = "notifications"

	RoutingBillingUpcoming = "billing.upcoming"
	RoutingTrialEnding     = "trial.ending"

	QueueBilling = "notifications.billing"
	QueueTrial   = "notifications.trial"

	prefetchCount = 10
)

// QueueConfig очередь и ключ, которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди напоминаний.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueBilling, RoutingKey: RoutingBillingUpcoming},
		{QueueName: QueueTrial, RoutingKey: RoutingTrialEnding},
	}
}

// RoutingKeyFor выбирает ключ маршрутизации по типу напоминания.
func RoutingKeyFor(kind models.ReminderKind) string {
	if kind == models.ReminderTrial {
		return RoutingTrialEnding
	}
	return RoutingBillingUpcoming
}
