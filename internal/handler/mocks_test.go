package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/tour-member/internal/model"
	"github.com/fairyhunter13/tour-member/internal/validator"
	"github.com/fairyhunter13/tour-member/pkg/jwt"
)

const testSecret = "handler-test-secret"

type mockFavoriteService struct {
	idsFn    func(ctx context.Context, memberID int64) ([]int64, error)
	toggleFn func(ctx context.Context, memberID, tourID int64) (bool, error)
}

func (m *mockFavoriteService) IDs(ctx context.Context, memberID int64) ([]int64, error) {
	if m.idsFn != nil {
		return m.idsFn(ctx, memberID)
	}
	return []int64{}, nil
}

func (m *mockFavoriteService) Toggle(ctx context.Context, memberID, tourID int64) (bool, error) {
	if m.toggleFn != nil {
		return m.toggleFn(ctx, memberID, tourID)
	}
	return true, nil
}

type mockNotificationService struct {
	listFn        func(ctx context.Context, memberID int64, typ string) (*model.NotificationListResponse, error)
	getFn         func(ctx context.Context, memberID, id int64) (*model.Notification, error)
	markAllReadFn func(ctx context.Context, memberID int64) error
}

func (m *mockNotificationService) List(ctx context.Context, memberID int64, typ string) (*model.NotificationListResponse, error) {
	if m.listFn != nil {
		return m.listFn(ctx, memberID, typ)
	}
	return &model.NotificationListResponse{Items: []model.Notification{}}, nil
}

func (m *mockNotificationService) Get(ctx context.Context, memberID, id int64) (*model.Notification, error) {
	if m.getFn != nil {
		return m.getFn(ctx, memberID, id)
	}
	return &model.Notification{ID: id, IsRead: true}, nil
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, memberID int64) error {
	if m.markAllReadFn != nil {
		return m.markAllReadFn(ctx, memberID)
	}
	return nil
}

type mockClaimService struct {
	claimFn func(ctx context.Context, memberID, promotionID int64) (string, error)
}

func (m *mockClaimService) Claim(ctx context.Context, memberID, promotionID int64) (string, error) {
	if m.claimFn != nil {
		return m.claimFn(ctx, memberID, promotionID)
	}
	return "TM-TEST", nil
}

type mockBadgeService struct {
	tabsFn      func(ctx context.Context) ([]model.BadgeSource, error)
	festivalsFn func(ctx context.Context) ([]model.BadgeSource, error)
}

func (m *mockBadgeService) Tabs(ctx context.Context) ([]model.BadgeSource, error) {
	if m.tabsFn != nil {
		return m.tabsFn(ctx)
	}
	return []model.BadgeSource{}, nil
}

func (m *mockBadgeService) Festivals(ctx context.Context) ([]model.BadgeSource, error) {
	if m.festivalsFn != nil {
		return m.festivalsFn(ctx)
	}
	return []model.BadgeSource{}, nil
}

// mockPool implements a minimal interface for testing health checks
type mockPool struct {
	pingErr error
}

func (m *mockPool) Ping(ctx context.Context) error {
	return m.pingErr
}

type testServices struct {
	favorites     *mockFavoriteService
	notifications *mockNotificationService
	claims        *mockClaimService
	badges        *mockBadgeService
}

func setupTestApp(s testServices) *fiber.App {
	if s.favorites == nil {
		s.favorites = &mockFavoriteService{}
	}
	if s.notifications == nil {
		s.notifications = &mockNotificationService{}
	}
	if s.claims == nil {
		s.claims = &mockClaimService{}
	}
	if s.badges == nil {
		s.badges = &mockBadgeService{}
	}

	app := fiber.New()
	validate := validator.New()
	Register(app, Routes{
		Health:       NewHealthHandler(&mockPool{}, nil),
		Favorites:    NewFavoriteHandler(s.favorites, validate),
		Notification: NewNotificationHandler(s.notifications, validate),
		Claim:        NewClaimHandler(s.claims, validate),
		Badges:       NewBadgeHandler(s.badges),
		Verifier:     jwt.NewManager(testSecret, time.Hour),
	})
	return app
}

func bearer(t *testing.T, memberID int64) string {
	t.Helper()
	token, err := jwt.NewManager(testSecret, time.Hour).Generate(memberID)
	require.NoError(t, err)
	return "Bearer " + token
}

func memberRequest(t *testing.T, method, target string, memberID int64, body string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", bearer(t, memberID))
	return req
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
