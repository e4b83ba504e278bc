package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/service"
)

const (
	testEmailGrievanceID = 999
	testEmailNote        = "This is a test resolution note."
)

// DiagnosticsHandler exposes operator checks for outbound mail.
type DiagnosticsHandler struct {
	notifications *service.NotificationService
	recipient     string
}

// NewDiagnosticsHandler constructs handler. recipient receives the test notice.
func NewDiagnosticsHandler(notifications *service.NotificationService, recipient string) *DiagnosticsHandler {
	return &DiagnosticsHandler{notifications: notifications, recipient: recipient}
}

// TestEmail GET /api/test-email queues a sample resolution notice.
// Only queueing is reported; delivery happens on the worker pool.
func (h *DiagnosticsHandler) TestEmail(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	if err := h.notifications.SendResolution(c.UserContext(), h.recipient, testEmailGrievanceID, testEmailNote); err != nil {
		return c.SendString("Failed to send email: " + err.Error())
	}
	return c.SendString("Email sent successfully!")
}
