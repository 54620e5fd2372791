// Package overview реализует HTTP-обработчик сводки расходов по подпискам.
package overview

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/spending"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Handler обрабатывает запросы сводки расходов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс расчёта сводки.
type Service interface {
	Overview(ctx context.Context, userID string, category models.Category) (*models.Overview, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сводка расходов
// @Description Месячные и годовые расходы по активным подпискам, их число, изменение к прошлому месяцу и разбивка по категориям. Суммы округлены до копеек.
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Param category query string false "Категория или all"
// @Success 200 {object} response.Response{data=models.Overview}
// @Failure 401 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse "Неизвестная категория"
// @Failure 500 {object} response.ErrorResponse
// @Router /subscriptions/overview [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.overview"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	category := models.Category(r.URL.Query().Get("category"))
	if category == "all" {
		category = ""
	}
	if category != "" && !category.Valid() {
		log.Warn("unknown category", slog.String("category", string(category)))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("unknown category"))
		return
	}

	res, err := h.service.Overview(r.Context(), userID, category)
	if errors.Is(err, spending.ErrUnknownBillingCycle) {
		log.Error("subscription with unknown billing cycle", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("subscription has unknown billing cycle"))
		return
	}
	if err != nil {
		log.Error("failed to calculate overview", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not calculate overview"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(rounded(res)))
}

func rounded(o *models.Overview) *models.Overview {
	out := *o
	out.MonthlySpending = spending.Round(o.MonthlySpending)
	out.YearlySpending = spending.Round(o.YearlySpending)
	out.ByCategory = make(map[models.Category]float64, len(o.ByCategory))
	for c, v := range o.ByCategory {
		out.ByCategory[c] = spending.Round(v)
	}
	return &out
}
