package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/viewearn/backend/internal/middleware"
	"github.com/viewearn/backend/internal/models"
	"github.com/viewearn/backend/internal/services"
	"go.uber.org/zap"
)

type mockViewService struct {
	mock.Mock
}

func (m *mockViewService) Start(ctx context.Context, viewerID uuid.UUID, target models.Target) (*services.StartResult, error) {
	args := m.Called(ctx, viewerID, target)
	res, _ := args.Get(0).(*services.StartResult)
	return res, args.Error(1)
}

func (m *mockViewService) Complete(ctx context.Context, viewerID, viewID uuid.UUID) (*services.SettlementResult, error) {
	args := m.Called(ctx, viewerID, viewID)
	res, _ := args.Get(0).(*services.SettlementResult)
	return res, args.Error(1)
}

func newViewApp(svc ViewService, viewerID uuid.UUID) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if viewerID != uuid.Nil {
			c.Locals(middleware.CtxUserID, viewerID)
		}
		return c.Next()
	})
	app.Post("/ads/view", NewViewHandler(svc, zap.NewNop()).HandleView)
	return app
}

func postView(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", "/ads/view", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestViewStart(t *testing.T) {
	viewer := uuid.New()
	postID := uuid.New()
	viewID := uuid.New()
	startedAt := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	svc := &mockViewService{}
	svc.On("Start", mock.Anything, viewer, models.PostTarget(postID)).Return(&services.StartResult{
		ViewID:           viewID,
		StartedAt:        startedAt,
		DurationRequired: 35,
		EarnCents:        70,
	}, nil)

	status, body := postView(t, newViewApp(svc, viewer), `{"action":"start","postId":"`+postID.String()+`"}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, viewID.String(), body["viewId"])
	assert.Equal(t, float64(35), body["durationRequired"])
	assert.Equal(t, 0.7, body["earnAmount"])
	assert.Equal(t, "2026-03-02T10:00:00Z", body["startedAt"])
	svc.AssertExpectations(t)
}

func TestViewStartCampaignTarget(t *testing.T) {
	viewer := uuid.New()
	campaignID := uuid.New()

	svc := &mockViewService{}
	svc.On("Start", mock.Anything, viewer, models.CampaignTarget(campaignID)).
		Return(&services.StartResult{ViewID: uuid.New(), DurationRequired: 35, EarnCents: 71}, nil)

	status, body := postView(t, newViewApp(svc, viewer), `{"action":"start","campaignId":"`+campaignID.String()+`"}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(71), body["earnAmountCents"])
	svc.AssertExpectations(t)
}

func TestViewComplete(t *testing.T) {
	viewer := uuid.New()
	viewID := uuid.New()

	svc := &mockViewService{}
	svc.On("Complete", mock.Anything, viewer, viewID).Return(&services.SettlementResult{
		ViewID:       viewID,
		EarnedCents:  70,
		DwellSeconds: 36,
		BalanceCents: 140,
	}, nil)

	status, body := postView(t, newViewApp(svc, viewer), `{"action":"complete","viewId":"`+viewID.String()+`"}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 0.7, body["earned"])
	assert.Equal(t, float64(70), body["earnedCents"])
	assert.Equal(t, float64(36), body["viewDuration"])
	assert.Equal(t, float64(140), body["balanceCents"])
	assert.NotEmpty(t, body["message"])
	svc.AssertExpectations(t)
}

func TestViewCompleteTimingNotMet(t *testing.T) {
	viewer := uuid.New()
	viewID := uuid.New()

	svc := &mockViewService{}
	svc.On("Complete", mock.Anything, viewer, viewID).Return(nil, &services.Error{
		Kind:             services.KindTimingNotMet,
		Message:          "keep watching to earn",
		RemainingSeconds: 4,
	})

	status, body := postView(t, newViewApp(svc, viewer), `{"action":"complete","viewId":"`+viewID.String()+`"}`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "timing_not_met", errBody["code"])
	assert.Equal(t, float64(4), errBody["remainingSeconds"])
}

func TestViewErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"not found", services.ErrNotFound, fiber.StatusNotFound, "not_found", "not found"},
		{"conflict", &services.Error{Kind: services.KindConflict, Message: "you have already earned from this content"}, fiber.StatusBadRequest, "conflict", "you have already earned from this content"},
		{"budget", services.ErrBudgetExhausted, fiber.StatusBadRequest, "budget_exhausted", "campaign budget exhausted"},
		{"rate limited", services.ErrRateLimited, fiber.StatusTooManyRequests, "rate_limited", "too many views, try again later"},
		{"unauthorized", services.ErrUnauthorized, fiber.StatusUnauthorized, "unauthorized", "authentication required"},
		{"storage failure", errors.New("connection refused"), fiber.StatusInternalServerError, "internal_error", "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viewer := uuid.New()
			postID := uuid.New()
			svc := &mockViewService{}
			svc.On("Start", mock.Anything, viewer, models.PostTarget(postID)).Return(nil, tt.err)

			status, body := postView(t, newViewApp(svc, viewer), `{"action":"start","postId":"`+postID.String()+`"}`)

			assert.Equal(t, tt.wantStatus, status)
			errBody, ok := body["error"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, errBody["code"])
			assert.Equal(t, tt.wantMessage, errBody["message"])
			assert.NotContains(t, errBody, "remainingSeconds")
		})
	}
}

func TestViewBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"action":`},
		{"unknown action", `{"action":"pause"}`},
		{"no target", `{"action":"start"}`},
		{"both targets", `{"action":"start","postId":"` + uuid.NewString() + `","campaignId":"` + uuid.NewString() + `"}`},
		{"bad post id", `{"action":"start","postId":"42"}`},
		{"bad view id", `{"action":"complete","viewId":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockViewService{}
			status, body := postView(t, newViewApp(svc, uuid.New()), tt.body)

			assert.Equal(t, fiber.StatusBadRequest, status)
			errBody, ok := body["error"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "validation_error", errBody["code"])
			svc.AssertNotCalled(t, "Start", mock.Anything, mock.Anything, mock.Anything)
			svc.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestViewRequiresCaller(t *testing.T) {
	svc := &mockViewService{}
	status, body := postView(t, newViewApp(svc, uuid.Nil), `{"action":"start","postId":"`+uuid.NewString()+`"}`)

	assert.Equal(t, fiber.StatusUnauthorized, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "unauthorized", errBody["code"])
}
