// Package config loads the notifier's runtime configuration from the process
// environment, optionally seeded from .env files.
package config
