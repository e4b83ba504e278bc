package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/mail"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/worker"
)

// NotificationService turns grievance events into outbound resolution notices.
// Delivery runs on the worker pool; failures are logged and counted, never returned
// to the publisher.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     mail.Mailer
	pool       worker.Pool
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Mailer     mail.Mailer
	Pool       worker.Pool
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Config     config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		mailer:     deps.Mailer,
		pool:       deps.Pool,
		metrics:    deps.Metrics,
		logger:     logger,
		cfg:        deps.Config,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventGrievanceCreated, n.handleGrievanceCreated)
	n.dispatcher.Subscribe(events.EventGrievanceUpdated, n.handleGrievanceUpdated)
	n.dispatcher.Subscribe(events.EventGrievanceResolved, n.handleGrievanceResolved)
}

func (n *NotificationService) handleGrievanceCreated(_ context.Context, event events.Event) error {
	n.logger.Info("GrievanceCreated", zap.Int64("grievance_id", event.GrievanceID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleGrievanceUpdated(_ context.Context, event events.Event) error {
	n.logger.Info("GrievanceUpdated", zap.Int64("grievance_id", event.GrievanceID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleGrievanceResolved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.GrievanceResolvedPayload)
	if !ok {
		return fmt.Errorf("grievance_resolved: unexpected payload %T", event.Payload)
	}
	return n.SendResolution(ctx, payload.OwnerEmail, event.GrievanceID, payload.ResolutionNote)
}

// SendResolution queues a resolution notice for delivery and returns at once.
// The returned error covers queueing only; delivery errors are logged by the task.
func (n *NotificationService) SendResolution(ctx context.Context, to string, grievanceID int64, note string) error {
	if strings.TrimSpace(to) == "" {
		n.metrics.RecordNotification(observability.NotificationSkipped)
		return errors.New("notification: empty recipient")
	}
	if n.mailer == nil || n.pool == nil {
		n.metrics.RecordNotification(observability.NotificationSkipped)
		return errors.New("notification: sender not configured")
	}

	msg := ResolutionMessage(n.cfg.EmailFrom, to, grievanceID, note)
	taskCtx := context.WithoutCancel(ctx)
	return n.pool.Submit(func() {
		n.deliver(taskCtx, msg, grievanceID)
	})
}

func (n *NotificationService) deliver(ctx context.Context, msg mail.Message, grievanceID int64) {
	defer func() {
		if r := recover(); r != nil {
			n.metrics.RecordNotification(observability.NotificationFailed)
			n.logger.Error("resolution email panicked", zap.Int64("grievance_id", grievanceID), zap.Any("panic", r))
		}
	}()

	if err := n.mailer.Send(ctx, msg); err != nil {
		n.metrics.RecordNotification(observability.NotificationFailed)
		n.logger.Error("failed to send resolution email",
			zap.String("to", msg.To),
			zap.Int64("grievance_id", grievanceID),
			zap.Error(err))
		return
	}
	n.metrics.RecordNotification(observability.NotificationSent)
	n.logger.Info("resolution email sent", zap.String("to", msg.To), zap.Int64("grievance_id", grievanceID))
}

// ResolutionMessage renders the fixed resolution notice template.
func ResolutionMessage(from, to string, grievanceID int64, note string) mail.Message {
	if strings.TrimSpace(note) == "" {
		note = "No resolution note was provided."
	}
	body := fmt.Sprintf("Dear Citizen,\n\n"+
		"Your grievance with ID #%d has been successfully resolved.\n\n"+
		"Resolution Note: %s\n\n"+
		"Please log in to your dashboard to view the photographic proof and provided details.\n\n"+
		"Thank you,\n"+
		"Civil Grievance Authority", grievanceID, note)
	return mail.Message{
		From:    from,
		To:      to,
		Subject: fmt.Sprintf("Grievance Resolved: #%d", grievanceID),
		Body:    body,
	}
}
