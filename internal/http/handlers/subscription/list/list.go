// Package list реализует HTTP-обработчик списка подписок с фильтрацией и сортировкой.
//
// Критерии передаются параметрами запроса: search, status, billing_cycle, category, sort.
// Значение all или отсутствие параметра снимает фильтр.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Handler обрабатывает запросы на получение списка подписок.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики списка подписок.
type Service interface {
	List(ctx context.Context, userID string, cfg models.FilterConfig) (*models.ListResult, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Список подписок
// @Description Возвращает подписки пользователя, отобранные и упорядоченные по критериям, а также число показанных и общее число записей.
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Param search query string false "Подстрока в названии или описании"
// @Param status query string false "active, paused, trial, cancelled или all"
// @Param billing_cycle query string false "monthly, yearly или all"
// @Param category query string false "Категория или all"
// @Param sort query string false "billing-asc, billing-desc, price-asc, price-desc, name-asc, name-desc, recent"
// @Success 200 {object} response.Response{data=models.ListResult}
// @Failure 401 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse "Неизвестное значение фильтра"
// @Failure 500 {object} response.ErrorResponse
// @Router /subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"
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

	q := r.URL.Query()
	query := models.FilterQuery{
		Search:       q.Get("search"),
		Status:       q.Get("status"),
		BillingCycle: q.Get("billing_cycle"),
		Category:     q.Get("category"),
		Sort:         q.Get("sort"),
	}
	if err := h.validate.Struct(query); err != nil {
		log.Warn("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res, err := h.service.List(r.Context(), userID, query.Config())
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list subscriptions"))
		return
	}

	log.Debug("subscriptions listed", slog.Int("shown", res.Shown), slog.Int("total", res.Total))
	render.JSON(w, r, response.StatusOKWithData(res))
}
