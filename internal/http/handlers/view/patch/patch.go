// Package patch реализует HTTP-обработчик частичного изменения критериев представления.
// Переданные поля заменяют сохранённые, пустая строка или all снимает фильтр.
package patch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Service описывает изменение критериев представления.
type Service interface {
	Patch(ctx context.Context, userID string, patch models.FilterPatch) (*models.View, error)
}

// Handler обрабатывает изменение критериев представления.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Изменить критерии представления
// @Tags View
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.FilterPatch true "Изменяемые критерии"
// @Success 200 {object} response.Response{data=models.View}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse "Неизвестное значение фильтра"
// @Failure 500 {object} response.ErrorResponse
// @Router /view [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.view.patch"
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

	var req models.FilterPatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	view, err := h.service.Patch(r.Context(), userID, req)
	if errors.Is(err, models.ErrInvalidFilter) {
		log.Warn("invalid filter", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	if err != nil {
		log.Error("failed to patch view", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update view"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(view))
}
