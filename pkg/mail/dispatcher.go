/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/farmhands/worker-notifier/pkg/config"
	"github.com/farmhands/worker-notifier/pkg/metrics"
	"github.com/farmhands/worker-notifier/pkg/notification"
)

const (
	// DefaultSenderName is the display name used when none is configured.
	DefaultSenderName = "Système de Gestion des Ouvriers"

	// NotConfiguredMessage is reported when a send is refused because the
	// relay has no credentials.
	NotConfiguredMessage = "Email service not configured"

	kindAdminNotification = "admin_notification"
	kindTest              = "test"
	kindGeneric           = "generic"
)

var (
	// ErrNotConfigured is returned by NewDispatcher and Send when the relay
	// credentials are missing. The dispatcher stays usable and reports every
	// send as failed without touching the network.
	ErrNotConfigured = errors.New(NotConfiguredMessage)

	// ErrNoRecipients is returned by Send for an envelope without recipient.
	ErrNoRecipients = errors.New("no recipients defined")

	// ErrNilEvent is reported by SendAdminNotification when called without an event.
	ErrNilEvent = errors.New("no notification event")
)

// Envelope is a message ready to be handed to the relay.
type Envelope struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// DeliveryResult is the outcome of a single delivery attempt. A failed
// result never carries a message id and a successful one never carries an
// error.
type DeliveryResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithTransport replaces the SMTP transport built from the configuration.
// It does not bypass the credential check.
func WithTransport(t Transport) Option {
	return func(d *Dispatcher) { d.transport = t }
}

// WithLocation sets the time zone used for every rendered timestamp.
func WithLocation(loc *time.Location) Option {
	return func(d *Dispatcher) {
		if loc != nil {
			d.loc = loc
		}
	}
}

// WithClock overrides the time source used for render and Date headers.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// Dispatcher renders and delivers notifications. It is built once and is
// safe for concurrent use afterwards.
type Dispatcher struct {
	transport  Transport
	from       string
	senderName string
	loc        *time.Location
	now        func() time.Time
	logger     *zap.SugaredLogger
}

// NewDispatcher creates a Dispatcher for cfg. When cfg has no credentials the
// returned dispatcher is unconfigured and the error is ErrNotConfigured; the
// dispatcher can still be used.
func NewDispatcher(cfg config.SMTP, logger *zap.SugaredLogger, opts ...Option) (*Dispatcher, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	d := &Dispatcher{
		from:       cfg.FromAddress(),
		senderName: cfg.SenderName,
		loc:        time.Local,
		now:        time.Now,
		logger:     logger.Named("mail-dispatcher"),
	}
	if d.senderName == "" {
		d.senderName = DefaultSenderName
	}
	for _, opt := range opts {
		opt(d)
	}

	if !cfg.HasCredentials() {
		d.transport = nil
		d.logger.Warnw("SMTP credentials missing - email notifications disabled", "host", cfg.Host)
		return d, ErrNotConfigured
	}
	if d.transport == nil {
		d.transport = NewSMTPTransport(cfg, d.logger)
	}

	d.logger.Infow("Mail dispatcher initialized",
		"host", d.transport.Host(),
		"port", cfg.Port,
		"secure", cfg.Secure,
		"from", d.from)
	return d, nil
}

// Configured reports whether the dispatcher can reach a relay.
func (d *Dispatcher) Configured() bool {
	return d.transport != nil
}

// Location returns the time zone used for rendered timestamps.
func (d *Dispatcher) Location() *time.Location {
	return d.loc
}

// VerifyConnection checks that the relay accepts a connection and the
// configured credentials. It returns false without I/O when unconfigured.
func (d *Dispatcher) VerifyConnection(ctx context.Context) bool {
	if !d.Configured() {
		metrics.MailVerifications.WithLabelValues("not_configured").Inc()
		return false
	}
	if err := d.transport.Verify(ctx); err != nil {
		d.logger.Errorw("SMTP connection check failed", "host", d.transport.Host(), "error", err)
		metrics.MailVerifications.WithLabelValues("failed").Inc()
		return false
	}
	d.logger.Infow("SMTP connection verified", "host", d.transport.Host())
	metrics.MailVerifications.WithLabelValues("connected").Inc()
	return true
}

// Send delivers env in a single attempt and returns the Message-ID it was
// sent with.
func (d *Dispatcher) Send(ctx context.Context, env Envelope) (string, error) {
	return d.send(ctx, kindGeneric, env)
}

// SendAdminNotification renders event and delivers it to event.AdminEmail.
func (d *Dispatcher) SendAdminNotification(ctx context.Context, event *notification.DuplicateWorkerEvent) DeliveryResult {
	if !d.Configured() {
		d.logger.Warnw("Email service not configured, admin notification not sent")
		metrics.MailSendSkipped.WithLabelValues(kindAdminNotification).Inc()
		return DeliveryResult{Success: false, Error: NotConfiguredMessage}
	}
	if event == nil {
		metrics.MailSendFailure.WithLabelValues(d.transport.Host(), kindAdminNotification).Inc()
		return DeliveryResult{Success: false, Error: ErrNilEvent.Error()}
	}

	msg, err := notification.Render(event, d.now(), d.loc)
	if err != nil {
		d.logger.Errorw("Failed to render admin notification", "error", err)
		return DeliveryResult{Success: false, Error: err.Error()}
	}

	id, err := d.send(ctx, kindAdminNotification, Envelope{
		To:      event.AdminEmail,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return DeliveryResult{Success: false, Error: err.Error()}
	}
	return DeliveryResult{Success: true, MessageID: id}
}

// SendTestEmail delivers the fixed connectivity confirmation to to. The
// message id is not part of the result.
func (d *Dispatcher) SendTestEmail(ctx context.Context, to string) DeliveryResult {
	if !d.Configured() {
		d.logger.Warnw("Email service not configured, test email not sent", "to", to)
		metrics.MailSendSkipped.WithLabelValues(kindTest).Inc()
		return DeliveryResult{Success: false, Error: NotConfiguredMessage}
	}

	msg, err := notification.RenderTestEmail(d.now(), d.loc)
	if err != nil {
		return DeliveryResult{Success: false, Error: err.Error()}
	}

	if _, err := d.send(ctx, kindTest, Envelope{To: to, Subject: msg.Subject, HTML: msg.HTML, Text: msg.Text}); err != nil {
		return DeliveryResult{Success: false, Error: err.Error()}
	}
	return DeliveryResult{Success: true}
}

func (d *Dispatcher) send(ctx context.Context, kind string, env Envelope) (string, error) {
	if !d.Configured() {
		metrics.MailSendSkipped.WithLabelValues(kind).Inc()
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(env.To) == "" {
		d.logger.Warnw("Refusing to send mail without recipient", "kind", kind, "subject", env.Subject)
		metrics.MailSendFailure.WithLabelValues(d.transport.Host(), kind).Inc()
		return "", ErrNoRecipients
	}

	id := d.newMessageID()
	m := gomail.NewMessage()
	m.SetAddressHeader("From", d.from, d.senderName)
	m.SetHeader("To", env.To)
	m.SetHeader("Subject", env.Subject)
	m.SetHeader("Message-ID", id)
	m.SetDateHeader("Date", d.now())
	if env.Text != "" {
		m.SetBody("text/plain", env.Text)
		if env.HTML != "" {
			m.AddAlternative("text/html", env.HTML)
		}
	} else {
		m.SetBody("text/html", env.HTML)
	}

	d.logger.Debugw("Sending mail", "kind", kind, "to", env.To, "subject", env.Subject)
	if err := d.transport.Send(ctx, m); err != nil {
		d.logger.Errorw("Failed to send mail", "kind", kind, "to", env.To, "host", d.transport.Host(), "error", err)
		metrics.MailSendFailure.WithLabelValues(d.transport.Host(), kind).Inc()
		return "", fmt.Errorf("sending mail to %s: %w", env.To, err)
	}

	d.logger.Infow("Mail sent", "kind", kind, "to", env.To, "messageId", id)
	metrics.MailSendSuccess.WithLabelValues(d.transport.Host(), kind).Inc()
	return id, nil
}

// newMessageID returns an RFC 5322 message id in the sender's domain.
func (d *Dispatcher) newMessageID() string {
	domain := "localhost"
	if at := strings.LastIndex(d.from, "@"); at >= 0 && at < len(d.from)-1 {
		domain = d.from[at+1:]
	} else if d.transport != nil && d.transport.Host() != "" {
		domain = d.transport.Host()
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
