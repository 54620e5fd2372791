package show

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, userID string) (*models.View, error) {
	args := m.Called(ctx, userID)
	if res := args.Get(0); res != nil {
		return res.(*models.View), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestShowHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("success", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Get", mock.Anything, "user-1").Return(&models.View{
			Criteria: models.DefaultFilterConfig(),
			Total:    0,
			Version:  1,
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/view", nil)
		req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, "user-1"))
		rr := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"sort":"billing-asc"`)
		svc.AssertExpectations(t)
	})

	t.Run("failure", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Get", mock.Anything, "user-1").Return(nil, errors.New("boom")).Once()

		req := httptest.NewRequest(http.MethodGet, "/view", nil)
		req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, "user-1"))
		rr := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("unauthorized", func(t *testing.T) {
		rr := httptest.NewRecorder()
		New(logger, new(MockService)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/view", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
