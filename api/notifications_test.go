package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skytail/aeroreserva/internal/auth"
	"github.com/skytail/aeroreserva/internal/domain"
	"github.com/skytail/aeroreserva/internal/repository"
	"github.com/skytail/aeroreserva/internal/service/notification"
)

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, usuarioID int64, unreadOnly bool, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, usuarioID, unreadOnly, limit)
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, usuarioID int64) (int, error) {
	args := m.Called(ctx, usuarioID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id, usuarioID int64) error {
	args := m.Called(ctx, id, usuarioID)
	return args.Error(0)
}

// stubVerifier accepts the fixed token "valid" as user 42.
type stubVerifier struct{}

func (stubVerifier) Verify(token string) (*domain.User, error) {
	if token != "valid" {
		return nil, auth.ErrInvalidToken
	}
	return &domain.User{ID: 42, Email: "ana@example.com", Activo: true}, nil
}

func notificationRouter(repo repository.NotificationRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	svc := notification.NewService(repo, nil, logrus.New())
	handler := NewNotificationHandler(svc)

	protected := engine.Group("/", auth.Middleware(stubVerifier{}))
	handler.RegisterRoutes(protected)
	return engine
}

func TestNotifications_RequiresToken(t *testing.T) {
	router := notificationRouter(&MockNotificationRepository{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notificaciones/", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/notificaciones/", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNotifications_List(t *testing.T) {
	repo := &MockNotificationRepository{}
	router := notificationRouter(repo)

	repo.On("ListByUser", mock.Anything, int64(42), false, 50).Return([]domain.Notification{
		{ID: 1, UsuarioID: 42, Tipo: domain.NotificationConfirmation, Titulo: "Billete emitido", Mensaje: "ok"},
	}, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notificaciones/", nil)
	req.Header.Set("Authorization", "Bearer valid")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Notificaciones []map[string]any `json:"notificaciones"`
		Total          int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, "Billete emitido", body.Notificaciones[0]["titulo"])
	repo.AssertExpectations(t)
}

func TestNotifications_MarkReadNotFound(t *testing.T) {
	repo := &MockNotificationRepository{}
	router := notificationRouter(repo)

	repo.On("MarkRead", mock.Anything, int64(7), int64(42)).Return(repository.ErrNotFound).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/notificaciones/7/leida", nil)
	req.Header.Set("Authorization", "Bearer valid")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotifications_MarkReadBadID(t *testing.T) {
	router := notificationRouter(&MockNotificationRepository{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/notificaciones/abc/leida", nil)
	req.Header.Set("Authorization", "Bearer valid")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotifications_CountUnread(t *testing.T) {
	repo := &MockNotificationRepository{}
	router := notificationRouter(repo)

	repo.On("CountUnread", mock.Anything, int64(42)).Return(3, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notificaciones/no-leidas", nil)
	req.Header.Set("Authorization", "Bearer valid")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"no_leidas": 3}`, w.Body.String())
}
