package models

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// DateLayout формат дат во входящих запросах.
const DateLayout = "2006-01-02"

// ErrPriceNotNumber возвращается, если цену не удалось привести к числу.
var ErrPriceNotNumber = errors.New("price must be a valid number")

// PriceInput цена в том виде, в котором её прислала форма:
// JSON-число или строка ("12.50", "12,50").
type PriceInput string

// UnmarshalJSON принимает и число, и строку.
func (p *PriceInput) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*p = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = PriceInput(s)
		return nil
	}
	*p = PriceInput(raw)
	return nil
}

// Float приводит введённую цену к числу. Запятая допускается как десятичный разделитель.
func (p PriceInput) Float() (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(string(p)), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrPriceNotNumber
	}
	return v, nil
}

// SubscriptionForm данные формы добавления или изменения подписки.
// Даты приходят строками в формате DateLayout и проверяются в сервисе.
type SubscriptionForm struct {
	Name            string       `json:"name" validate:"required,max=100"`
	Price           PriceInput   `json:"price" validate:"required"`
	BillingCycle    BillingCycle `json:"billing_cycle" validate:"required,oneof=monthly yearly"`
	Category        Category     `json:"category" validate:"required,oneof=Entertainment Business Food Housing Utilities Fitness ECommerce Other"`
	Status          Status       `json:"status" validate:"required,oneof=active paused trial cancelled"`
	NextBillingDate string       `json:"next_billing_date,omitempty"` // Пустая строка: дата считается от периода
	TrialEndDate    string       `json:"trial_end_date,omitempty"`
	Description     string       `json:"description,omitempty" validate:"max=500"`
}
