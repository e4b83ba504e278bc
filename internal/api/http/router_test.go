package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/grievance-service/internal/api/http/handlers"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/mail"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/persistence"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/service"
	"github.com/spec-kit/grievance-service/internal/worker"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message{}, m.sent...)
}

type testServer struct {
	app    *fiber.App
	mailer *captureMailer
	pool   worker.Pool
	logs   *observer.ObservedLogs
}

func newTestServer(t *testing.T, diagRecipient string) *testServer {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	metrics := observability.NewMetrics("grievance-test")

	store := repository.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	pool := worker.NewPool(1, 8)
	t.Cleanup(pool.Stop)
	mailer := &captureMailer{}

	accounts := service.NewAccountService(service.AccountDependencies{
		UserRepo: store.Users(),
		Hasher:   auth.NewHasher(bcrypt.MinCost),
		Logger:   logger,
	})
	grievances := service.NewGrievanceService(service.GrievanceDependencies{
		GrievanceRepo: store.Grievances(),
		UserRepo:      store.Users(),
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	notifications := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		Mailer:     mailer,
		Pool:       pool,
		Metrics:    metrics,
		Logger:     logger,
		Config:     config.NotificationConfig{EmailFrom: "noreply@grievancereporter.com"},
	})
	notifications.RegisterHandlers()

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:      handlers.NewHealthHandler("grievance-test", "test", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:        handlers.NewAuthHandler(accounts),
		Grievances:  handlers.NewGrievancesHandler(grievances),
		Diagnostics: handlers.NewDiagnosticsHandler(notifications, diagRecipient),
		Metrics:     metrics.Handler(),
	})
	app.Get("/boom", func(*fiber.Ctx) error { panic("kaboom") })

	return &testServer{app: app, mailer: mailer, pool: pool, logs: logs}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestHealthRoutes(t *testing.T) {
	s := newTestServer(t, "")

	status, body := s.do(t, fiber.MethodGet, "/api/health", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, handlers.HealthBanner, body)

	status, body = s.do(t, fiber.MethodGet, "/api/health/ready", "")
	require.Equal(t, fiber.StatusOK, status)
	ready := decode(t, body)
	require.Equal(t, "ready", ready["status"])
	require.Equal(t, map[string]any{"postgres": "disabled", "redis": "disabled"}, ready["dependencies"])
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t, "")

	status, body := s.do(t, fiber.MethodPost, "/api/auth/register",
		`{"email":"a@city.gov","password":"pw","fullName":"Asha","mobileNumber":"555"}`)
	require.Equal(t, fiber.StatusOK, status)
	registered := decode(t, body)
	require.Equal(t, "User registered successfully", registered["message"])
	require.EqualValues(t, 1, registered["userId"])

	status, body = s.do(t, fiber.MethodPost, "/api/auth/register", `{"email":"a@city.gov","password":"other"}`)
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "email already registered", decode(t, body)["error"])

	status, body = s.do(t, fiber.MethodPost, "/api/auth/login", `{"email":"a@city.gov","password":"pw"}`)
	require.Equal(t, fiber.StatusOK, status)
	login := decode(t, body)
	require.Equal(t, "Login successful", login["message"])
	require.EqualValues(t, 1, login["userId"])
	require.Equal(t, "CITIZEN", login["role"])
	require.Equal(t, "Asha", login["fullName"])

	for _, creds := range []string{
		`{"email":"a@city.gov","password":"other"}`,
		`{"email":"nobody@city.gov","password":"pw"}`,
	} {
		status, body = s.do(t, fiber.MethodPost, "/api/auth/login", creds)
		require.Equal(t, fiber.StatusUnauthorized, status)
		require.Equal(t, "Invalid credentials", decode(t, body)["error"])
	}

	status, _ = s.do(t, fiber.MethodPost, "/api/auth/register", `{not json`)
	require.Equal(t, fiber.StatusBadRequest, status)
}

func TestGrievanceLifecycle(t *testing.T) {
	s := newTestServer(t, "")
	status, _ := s.do(t, fiber.MethodPost, "/api/auth/register", `{"email":"owner@city.gov","password":"pw"}`)
	require.Equal(t, fiber.StatusOK, status)

	status, body := s.do(t, fiber.MethodPost, "/api/grievances/add",
		`{"category":"Water","description":"Leak","user":{"id":1},"userImages":["data:image/png;base64,AAA"],"adminImages":["x.jpg"]}`)
	require.Equal(t, fiber.StatusOK, status)
	created := decode(t, body)
	require.EqualValues(t, 1, created["id"])
	require.Equal(t, "Pending", created["status"])
	require.Equal(t, false, created["readByAuthority"])
	require.NotEmpty(t, created["dateRaised"])
	user := created["user"].(map[string]any)
	require.Equal(t, "owner@city.gov", user["email"])
	require.NotContains(t, user, "password")
	require.NotContains(t, user, "passwordHash")

	status, body = s.do(t, fiber.MethodPut, "/api/grievances/update/1",
		`{"status":"Resolved","resolutionNote":"fixed","adminImages":["a.jpg"]}`)
	require.Equal(t, fiber.StatusOK, status)
	updated := decode(t, body)
	require.Equal(t, "Resolved", updated["status"])
	require.Equal(t, "fixed", updated["resolutionNote"])
	require.Equal(t, []any{"x.jpg", "a.jpg"}, updated["adminImages"])
	require.Equal(t, "Water", updated["category"])

	status, _ = s.do(t, fiber.MethodPut, "/api/grievances/update/1", `{"status":"Resolved"}`)
	require.Equal(t, fiber.StatusOK, status)

	s.pool.Stop()
	sent := s.mailer.messages()
	require.Len(t, sent, 1)
	require.Equal(t, "owner@city.gov", sent[0].To)
	require.Equal(t, "Grievance Resolved: #1", sent[0].Subject)

	status, body = s.do(t, fiber.MethodGet, "/api/grievances/user/1", "")
	require.Equal(t, fiber.StatusOK, status)
	var mine []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &mine))
	require.Len(t, mine, 1)

	status, body = s.do(t, fiber.MethodGet, "/api/grievances/user/2", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "[]", body)

	status, body = s.do(t, fiber.MethodGet, "/api/grievances", "")
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal([]byte(body), &mine))
	require.Len(t, mine, 1)
}

func TestGrievanceErrors(t *testing.T) {
	s := newTestServer(t, "")

	status, body := s.do(t, fiber.MethodGet, "/api/grievances/user/abc", "")
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "VALIDATION_FAILED", decode(t, body)["code"])

	status, body = s.do(t, fiber.MethodPut, "/api/grievances/update/99", `{"status":"Resolved"}`)
	require.Equal(t, fiber.StatusNotFound, status)
	notFound := decode(t, body)
	require.Equal(t, "grievance not found", notFound["error"])
	require.Equal(t, "NOT_FOUND", notFound["code"])

	status, _ = s.do(t, fiber.MethodPost, "/api/grievances/add", `{"dateRaised":"14-03-2026"}`)
	require.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.do(t, fiber.MethodGet, "/api/nope", "")
	require.Equal(t, fiber.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", decode(t, body)["code"])
}

func TestPanicIsRecovered(t *testing.T) {
	s := newTestServer(t, "")
	status, body := s.do(t, fiber.MethodGet, "/boom", "")
	require.Equal(t, fiber.StatusInternalServerError, status)
	require.Equal(t, "internal server error", decode(t, body)["error"])
	require.Equal(t, 1, s.logs.FilterMessage("panic recovered").Len())

	requests := s.logs.FilterMessage("request").All()
	require.NotEmpty(t, requests)
	last := requests[len(requests)-1]
	require.EqualValues(t, fiber.StatusInternalServerError, last.ContextMap()["status"])
}

func TestTestEmail(t *testing.T) {
	s := newTestServer(t, "ops@city.gov")
	status, body := s.do(t, fiber.MethodGet, "/api/test-email", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "Email sent successfully!", body)
	s.pool.Stop()
	sent := s.mailer.messages()
	require.Len(t, sent, 1)
	require.Equal(t, "Grievance Resolved: #999", sent[0].Subject)
	require.Contains(t, sent[0].Body, "This is a test resolution note.")

	unset := newTestServer(t, "")
	_, body = unset.do(t, fiber.MethodGet, "/api/test-email", "")
	require.True(t, strings.HasPrefix(body, "Failed to send email: "), body)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, "")
	s.do(t, fiber.MethodGet, "/api/health", "")
	status, body := s.do(t, fiber.MethodGet, "/metrics", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Contains(t, body, "http_requests_total")
}
