package models

import "time"

// Urgency близость даты списания.
type Urgency string

const (
	UrgencyNone     Urgency = ""
	UrgencyUpcoming Urgency = "upcoming" // от 4 до 7 дней
	UrgencyUrgent   Urgency = "urgent"   // 3 дня и меньше
)

// ReminderKind тип напоминания.
type ReminderKind string

const (
	ReminderBilling ReminderKind = "billing"
	ReminderTrial   ReminderKind = "trial"
)

// BillingReminder сообщение о предстоящем списании или окончании пробного периода,
// которое планировщик публикует в очередь, а отправитель превращает в письмо.
type BillingReminder struct {
	Kind           ReminderKind `json:"kind"`
	SubscriptionID string       `json:"subscription_id"`
	Email          string       `json:"email"`
	Name           string       `json:"name"`
	Price          float64      `json:"price"`
	BillingCycle   BillingCycle `json:"billing_cycle"`
	Date           time.Time    `json:"date"` // Дата списания или окончания пробного периода
	DaysLeft       int          `json:"days_left"`
	Urgency        Urgency      `json:"urgency"`
}
