package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/mail"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/worker"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMailer) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message{}, m.sent...)
}

type fixture struct {
	store         *repository.MemoryStore
	accounts      *AccountService
	grievances    *GrievanceService
	notifications *NotificationService
	dispatcher    events.Dispatcher
	mailer        *recordingMailer
	pool          worker.Pool
	metrics       *observability.Metrics
}

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func newFixture(t *testing.T, logger *zap.Logger) *fixture {
	t.Helper()
	if logger == nil {
		logger = zap.NewNop()
	}
	store := repository.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	pool := worker.NewPool(2, 16)
	t.Cleanup(pool.Stop)

	f := &fixture{
		store:      store,
		dispatcher: dispatcher,
		mailer:     &recordingMailer{},
		pool:       pool,
		metrics:    observability.NewMetrics("grievance-test"),
	}
	f.accounts = NewAccountService(AccountDependencies{
		UserRepo: store.Users(),
		Hasher:   auth.NewHasher(bcrypt.MinCost),
		Logger:   logger,
	})
	f.grievances = NewGrievanceService(GrievanceDependencies{
		GrievanceRepo: store.Grievances(),
		UserRepo:      store.Users(),
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	f.grievances.now = func() time.Time { return fixedNow }
	f.notifications = NewNotificationService(NotificationDependencies{
		Dispatcher: dispatcher,
		Mailer:     f.mailer,
		Pool:       pool,
		Metrics:    f.metrics,
		Logger:     logger,
		Config:     config.NotificationConfig{EmailFrom: "noreply@grievancereporter.com"},
	})
	f.notifications.RegisterHandlers()
	return f
}

// drain stops the pool so every queued delivery has finished.
func (f *fixture) drain() {
	f.pool.Stop()
}

func ptr[T any](v T) *T {
	return &v
}
