package notify

import (
	"context"

	"go.uber.org/zap"
)

// Template identifiers understood by the rendering collaborator.
const (
	TemplateUserRegistration = "user_registration"
	TemplateOfficeConfirm    = "office_confirm_request"
	TemplateUserEnabled      = "user_enabled"
	TemplatePasswordReset    = "password_reset"
	TemplateChangedEnabled   = "changed_enabled"
)

// Notification is one queued delivery request.
type Notification struct {
	Recipient  string
	TemplateID string
	Variables  map[string]any
}

// Notifier is the only boundary the core crosses for messaging. Template
// rendering and the mail transport live behind it.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
	SendFromTemplate(ctx context.Context, templateID string, variables map[string]any, to string) error
}

// Sink accepts notifications for asynchronous dispatch. Services enqueue and
// return immediately; delivery outcome never reaches them.
type Sink interface {
	Enqueue(n Notification)
}

// LogNotifier logs deliveries instead of sending them. Deployments plug a
// real transport behind the Notifier interface.
type LogNotifier struct {
	logger *zap.Logger
	from   string
}

// NewLogNotifier constructs the logging notifier.
func NewLogNotifier(logger *zap.Logger, from string) *LogNotifier {
	return &LogNotifier{logger: logger, from: from}
}

// Send logs a rendered message.
func (n *LogNotifier) Send(_ context.Context, to, subject, _ string) error {
	n.logger.Info("send mail",
		zap.String("from", n.from),
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}

// SendFromTemplate logs a templated message.
func (n *LogNotifier) SendFromTemplate(_ context.Context, templateID string, variables map[string]any, to string) error {
	n.logger.Info("send templated mail",
		zap.String("from", n.from),
		zap.String("to", to),
		zap.String("template", templateID),
		zap.Any("variables", variables))
	return nil
}
