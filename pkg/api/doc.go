// Package api implements the notifier's HTTP API server (Gin-based): admin
// notification delivery, mail relay status and test sends, plus ping and
// Prometheus endpoints.
package api
