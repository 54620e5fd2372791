// Package services превращает напоминания из очереди в письма пользователям.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/smtp"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// SenderService отправляет письма с напоминаниями.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendReminder разбирает напоминание из тела сообщения и отправляет письмо владельцу подписки.
func (s *SenderService) SendReminder(body []byte) error {
	const op = "services.sender.SendReminder"
	var reminder models.BillingReminder
	if err := json.Unmarshal(body, &reminder); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w", op, err)
	}
	if reminder.Email == "" {
		return fmt.Errorf("%s: reminder %s has no recipient", op, reminder.SubscriptionID)
	}

	subject, text := composeReminder(reminder)
	if err := s.sendEmail([]string{reminder.Email}, subject, text); err != nil {
		metrics.EmailsSent.WithLabelValues("error").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.EmailsSent.WithLabelValues("ok").Inc()
	return nil
}

func composeReminder(r models.BillingReminder) (subject, text string) {
	date := r.Date.Format(models.DateLayout)
	when := daysPhrase(r.DaysLeft)

	if r.Kind == models.ReminderTrial {
		subject = fmt.Sprintf("Пробный период %s заканчивается %s", r.Name, when)
		text = fmt.Sprintf("Здравствуйте!\n\nПробный период подписки %s заканчивается %s (%s).\n"+
			"После этого начнутся списания: %.2f за период %s.\n\n"+
			"Если подписка больше не нужна, отмените её заранее.",
			r.Name, when, date, r.Price, cycleName(r.BillingCycle))
		return subject, text
	}

	subject = fmt.Sprintf("Списание за %s %s", r.Name, when)
	if r.Urgency == models.UrgencyUrgent {
		subject = "Скоро: " + subject
	}
	text = fmt.Sprintf("Здравствуйте!\n\nСписание по подписке %s состоится %s (%s).\n"+
		"Сумма: %.2f за период %s.",
		r.Name, when, date, r.Price, cycleName(r.BillingCycle))
	return subject, text
}

func daysPhrase(days int) string {
	switch {
	case days <= 0:
		return "сегодня"
	case days == 1:
		return "завтра"
	}
	return fmt.Sprintf("через %d дн.", days)
}

func cycleName(c models.BillingCycle) string {
	if c == models.BillingYearly {
		return "год"
	}
	return "месяц"
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + mime.QEncoding.Encode("UTF-8", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
