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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when Load is called without explicit files.
const DefaultEnvFile = ".env"

type Server struct {
	ListenAddress   string        `env:"LISTEN_ADDRESS"     envDefault:":8080"`
	Debug           bool          `env:"DEBUG"              envDefault:"false"`
	AllowOrigins    []string      `env:"CORS_ALLOW_ORIGINS" envDefault:"*" envSeparator:","`
	PingMessage     string        `env:"PING_MESSAGE"       envDefault:"ping"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"   envDefault:"10s"`
}

// SMTP describes the outbound mail relay. A relay without both User and
// Password is treated as not configured.
type SMTP struct {
	Host     string `env:"SMTP_HOST"   envDefault:"smtp.gmail.com"`
	Port     int    `env:"SMTP_PORT"   envDefault:"587"`
	Secure   bool   `env:"SMTP_SECURE" envDefault:"false"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	// From defaults to User when empty.
	From       string `env:"SMTP_FROM"`
	SenderName string `env:"SMTP_SENDER_NAME" envDefault:"Système de Gestion des Ouvriers"`
	// InsecureSkipVerify disables certificate verification on the relay
	// connection. It is on by default for compatibility with self-signed relays.
	InsecureSkipVerify bool `env:"SMTP_TLS_INSECURE_SKIP_VERIFY" envDefault:"true"`
}

// HasCredentials reports whether both user and password are present.
func (s SMTP) HasCredentials() bool {
	return s.User != "" && s.Password != ""
}

// FromAddress returns the envelope sender address.
func (s SMTP) FromAddress() string {
	if s.From != "" {
		return s.From
	}
	return s.User
}

type Notification struct {
	// TimeZone is an IANA zone name used for every rendered timestamp.
	// Empty means the process local time zone.
	TimeZone string `env:"NOTIFICATION_TIMEZONE"`
}

// Location resolves TimeZone.
func (n Notification) Location() (*time.Location, error) {
	if n.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(n.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", n.TimeZone, err)
	}
	return loc, nil
}

type Audit struct {
	// KafkaBrokers enables forwarding of audit records when non-empty.
	KafkaBrokers []string `env:"AUDIT_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"AUDIT_KAFKA_TOPIC"   envDefault:"worker-notifications-audit"`
}

// KafkaEnabled reports whether audit records are forwarded to Kafka.
func (a Audit) KafkaEnabled() bool {
	return len(a.KafkaBrokers) > 0
}

type Config struct {
	Server       Server
	SMTP         SMTP
	Notification Notification
	Audit        Audit
}

// Load reads the configuration from the environment. Variables found in the
// given env files (or DefaultEnvFile when none is given) are applied first,
// without overriding variables that are already set. Missing env files are
// ignored.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}
	for _, f := range envFiles {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading env file %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that env parsing alone cannot reject.
func (c Config) Validate() error {
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("invalid SMTP_PORT %d", c.SMTP.Port)
	}
	if _, err := c.Notification.Location(); err != nil {
		return fmt.Errorf("invalid NOTIFICATION_TIMEZONE: %w", err)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("invalid SHUTDOWN_TIMEOUT %s", c.Server.ShutdownTimeout)
	}
	return nil
}
