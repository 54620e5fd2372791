package models

// Overview сводка расходов пользователя для панели.
// Пустая Category означает сводку по всем категориям.
type Overview struct {
	Category         Category             `json:"category,omitempty"`
	MonthlySpending  float64              `json:"monthly_spending"`
	YearlySpending   float64              `json:"yearly_spending"`
	ActiveCount      int                  `json:"active_count"`
	PercentageChange float64              `json:"percentage_change"`
	ByCategory       map[Category]float64 `json:"by_category"`
}

// ListResult отфильтрованный список и счётчики для подписи "Показано N из M".
type ListResult struct {
	Entries []Subscription `json:"entries"`
	Shown   int            `json:"shown"`
	Total   int            `json:"total"`
}

// View состояние списка пользователя: текущие критерии и результат последнего пересчёта.
type View struct {
	Criteria FilterConfig   `json:"criteria"`
	Entries  []Subscription `json:"entries"`
	Shown    int            `json:"shown"`
	Total    int            `json:"total"`
	Version  uint64         `json:"version"`
}
