// Package metrics defines Prometheus metrics for the worker notifier: mail
// delivery, relay verification, admin notifications and audit forwarding.
package metrics
