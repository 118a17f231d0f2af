package api

import (
	"context"

	"github.com/farmhands/worker-notifier/pkg/mail"
	"github.com/farmhands/worker-notifier/pkg/notification"
)

// Mailer is the part of the mail dispatcher the HTTP handlers depend on.
// *mail.Dispatcher implements it.
type Mailer interface {
	VerifyConnection(ctx context.Context) bool
	SendAdminNotification(ctx context.Context, event *notification.DuplicateWorkerEvent) mail.DeliveryResult
	SendTestEmail(ctx context.Context, to string) mail.DeliveryResult
}

var _ Mailer = (*mail.Dispatcher)(nil)
