package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

func TestGetNotificationQueues(t *testing.T) {
	queues := GetNotificationQueues()

	assert.Equal(t, []QueueConfig{
		{QueueName: "notifications.billing", RoutingKey: "billing.upcoming"},
		{QueueName: "notifications.trial", RoutingKey: "trial.ending"},
	}, queues)
}

func TestRoutingKeyFor(t *testing.T) {
	assert.Equal(t, RoutingBillingUpcoming, RoutingKeyFor(models.ReminderBilling))
	assert.Equal(t, RoutingTrialEnding, RoutingKeyFor(models.ReminderTrial))
}
