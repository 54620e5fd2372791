package list

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, userID string, cfg models.FilterConfig) (*models.ListResult, error) {
	args := m.Called(ctx, userID, cfg)
	if res := args.Get(0); res != nil {
		return res.(*models.ListResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	result := &models.ListResult{
		Entries: []models.Subscription{{ID: "1", Name: "Netflix", Status: models.StatusActive}},
		Shown:   1,
		Total:   3,
	}

	tests := []struct {
		name           string
		query          string
		wantCfg        *models.FilterConfig
		mockErr        error
		expectedStatus int
	}{
		{
			name:           "defaults",
			query:          "",
			wantCfg:        &models.FilterConfig{Sort: models.SortBillingAsc},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "all filters",
			query: "?search=net&status=active&billing_cycle=monthly&category=Entertainment&sort=name-desc",
			wantCfg: &models.FilterConfig{
				Search:       "net",
				Status:       models.StatusActive,
				BillingCycle: models.BillingMonthly,
				Category:     models.CategoryEntertainment,
				Sort:         models.SortNameDesc,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "all clears filter and cost alias",
			query:          "?status=all&category=all&sort=cost-desc",
			wantCfg:        &models.FilterConfig{Sort: models.SortPriceDesc},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown status",
			query:          "?status=deleted",
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "unknown sort",
			query:          "?sort=random",
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "service error",
			query:          "",
			wantCfg:        &models.FilterConfig{Sort: models.SortBillingAsc},
			mockErr:        errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.wantCfg != nil {
				if tt.mockErr != nil {
					svc.On("List", mock.Anything, "user-1", *tt.wantCfg).Return(nil, tt.mockErr).Once()
				} else {
					svc.On("List", mock.Anything, "user-1", *tt.wantCfg).Return(result, nil).Once()
				}
			}

			req := httptest.NewRequest(http.MethodGet, "/subscriptions"+tt.query, nil)
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, "user-1"))
			rr := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp struct {
					Data models.ListResult `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, 1, resp.Data.Shown)
				assert.Equal(t, 3, resp.Data.Total)
			}
			svc.AssertExpectations(t)
		})
	}
}
