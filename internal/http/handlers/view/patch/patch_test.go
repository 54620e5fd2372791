package patch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
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

func (m *MockService) Patch(ctx context.Context, userID string, patch models.FilterPatch) (*models.View, error) {
	args := m.Called(ctx, userID, patch)
	if res := args.Get(0); res != nil {
		return res.(*models.View), args.Error(1)
	}
	return nil, args.Error(1)
}

func strPtr(s string) *string { return &s }

func TestPatchHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           string
		setupMock      func(m *MockService)
		expectedStatus int
	}{
		{
			name: "only given fields are passed",
			body: `{"status":"trial","sort":"name-asc"}`,
			setupMock: func(m *MockService) {
				m.On("Patch", mock.Anything, "user-1", models.FilterPatch{
					Status: strPtr("trial"),
					Sort:   strPtr("name-asc"),
				}).Return(&models.View{
					Criteria: models.FilterConfig{Status: models.StatusTrial, Sort: models.SortNameAsc},
					Shown:    1,
					Total:    4,
					Version:  2,
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "invalid filter",
			body: `{"category":"Games"}`,
			setupMock: func(m *MockService) {
				m.On("Patch", mock.Anything, "user-1", models.FilterPatch{Category: strPtr("Games")}).
					Return(nil, fmt.Errorf("category %q: %w", "Games", models.ErrInvalidFilter)).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "invalid json",
			body:           `[]`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "loader failure",
			body: `{"search":"net"}`,
			setupMock: func(m *MockService) {
				m.On("Patch", mock.Anything, "user-1", models.FilterPatch{Search: strPtr("net")}).
					Return(nil, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPatch, "/view", bytes.NewBufferString(tt.body))
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, "user-1"))
			rr := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if rr.Code == http.StatusOK {
				var resp struct {
					Data models.View `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, models.StatusTrial, resp.Data.Criteria.Status)
				assert.Equal(t, uint64(2), resp.Data.Version)
			}
			svc.AssertExpectations(t)
		})
	}
}
