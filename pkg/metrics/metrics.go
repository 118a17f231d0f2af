package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Mail metrics
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_notifier_mail_send_success_total",
		Help: "Total number of successful mail sends",
	}, []string{"host", "kind"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_notifier_mail_send_failure_total",
		Help: "Total number of failed mail sends",
	}, []string{"host", "kind"})
	// Sends refused locally because no relay credentials are configured
	MailSendSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_notifier_mail_send_skipped_total",
		Help: "Total number of mail sends skipped because the mail service is not configured",
	}, []string{"kind"})
	MailVerifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_notifier_mail_verifications_total",
		Help: "Total number of SMTP relay connection checks grouped by result",
	}, []string{"result"})

	// Notification metrics
	NotificationsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_notifier_notifications_total",
		Help: "Total number of admin notifications processed grouped by type and audit status",
	}, []string{"type", "status"})
	NotificationsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_notifier_notifications_rejected_total",
		Help: "Total number of admin notification requests that could not be processed",
	}, []string{"reason"})

	// Audit metrics
	AuditRecordsWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_notifier_audit_records_written_total",
		Help: "Total number of audit records handed to a sink",
	}, []string{"sink"})
	AuditSinkErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_notifier_audit_sink_errors_total",
		Help: "Total number of audit sink write errors grouped by error class",
	}, []string{"sink", "error_type"})
)

func init() {
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
	prometheus.MustRegister(MailSendSkipped)
	prometheus.MustRegister(MailVerifications)
	prometheus.MustRegister(NotificationsProcessed)
	prometheus.MustRegister(NotificationsRejected)
	prometheus.MustRegister(AuditRecordsWritten)
	prometheus.MustRegister(AuditSinkErrors)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
