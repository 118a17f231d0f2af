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
	"crypto/tls"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/farmhands/worker-notifier/pkg/config"
)

// Transport is the outbound side of the dispatcher. Every call performs a
// single connection to the relay.
type Transport interface {
	// Verify dials the relay and authenticates without sending anything.
	Verify(ctx context.Context) error
	// Send delivers msg in one attempt.
	Send(ctx context.Context, msg *gomail.Message) error
	Host() string
}

type smtpTransport struct {
	dialer gomail.Dialer
}

// NewSMTPTransport builds a Transport for the relay described by cfg.
func NewSMTPTransport(cfg config.SMTP, logger *zap.SugaredLogger) Transport {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.Secure
	if cfg.InsecureSkipVerify {
		logger.Warnw("TLS certificate verification is disabled for the SMTP relay", "host", cfg.Host)
		d.TLSConfig = &tls.Config{ServerName: cfg.Host, InsecureSkipVerify: true} //nolint:gosec // opt-out via SMTP_TLS_INSECURE_SKIP_VERIFY
	}
	return &smtpTransport{dialer: *d}
}

// gomail picks the auth mechanism on first dial and stores it on the dialer,
// so every call works on its own copy.
func (t *smtpTransport) newDialer() *gomail.Dialer {
	d := t.dialer
	return &d
}

func (t *smtpTransport) Verify(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sc, err := t.newDialer().Dial()
	if err != nil {
		return err
	}
	return sc.Close()
}

func (t *smtpTransport) Send(ctx context.Context, msg *gomail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.newDialer().DialAndSend(msg)
}

func (t *smtpTransport) Host() string {
	return t.dialer.Host
}
