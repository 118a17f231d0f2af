package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/gomail.v2"

	"github.com/farmhands/worker-notifier/pkg/audit"
	"github.com/farmhands/worker-notifier/pkg/config"
	"github.com/farmhands/worker-notifier/pkg/mail"
	"github.com/farmhands/worker-notifier/pkg/notification"
)

func notificationPayload() map[string]interface{} {
	return map[string]interface{}{
		"type":       "duplicate_worker_attempt",
		"adminEmail": "admin@farm-a.example",
		"existingWorker": map[string]interface{}{
			"name":        "Ali",
			"cin":         "AB123",
			"currentFarm": "Farm A",
			"profileLink": "http://x/1",
		},
		"attemptDetails": map[string]interface{}{
			"attemptingFarm": "Farm B",
			"attemptDate":    "2024-03-05T14:07:09Z",
			"attemptedEntry": "2024-03-06",
		},
	}
}

func TestSendAdminNotificationSuccess(t *testing.T) {
	m := &fakeMailer{adminResult: mail.DeliveryResult{Success: true, MessageID: "<id@farms.example>"}}
	sink := &memorySink{}
	h := newTestServer(t, m, sink)

	w := doJSON(t, h, http.MethodPost, "/api/send-admin-notification", notificationPayload())
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["emailSent"])
	assert.Equal(t, "Admin notification sent successfully", body["message"])
	assert.NotContains(t, body, "emailError")
	id, _ := body["notificationId"].(string)
	assert.True(t, strings.HasPrefix(id, audit.NotificationIDPrefix), id)

	require.Len(t, m.adminEvents, 1)
	ev := m.adminEvents[0]
	assert.Equal(t, notification.EventDuplicateWorkerAttempt, ev.Type)
	assert.Equal(t, "Ali", ev.ExistingWorker.Name)
	assert.True(t, ev.AttemptDetails.AttemptDate.Equal(time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)))

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, audit.StatusSent, rec.Status)
	assert.Equal(t, "AB123", rec.WorkerCIN)
	assert.Equal(t, "Farm B", rec.AttemptingFarm)
	assert.Equal(t, "admin@farm-a.example", rec.SentTo)
	assert.Contains(t, rec.EmailContent, "AB123")
	assert.Contains(t, rec.EmailContent, `href="http://x/1"`)
	assert.False(t, rec.SentAt.IsZero())
}

func TestSendAdminNotificationDeliveryFailure(t *testing.T) {
	m := &fakeMailer{adminResult: mail.DeliveryResult{Success: false, Error: "sending mail to admin@farm-a.example: connection refused"}}
	sink := &memorySink{}
	h := newTestServer(t, m, sink)

	w := doJSON(t, h, http.MethodPost, "/api/send-admin-notification", notificationPayload())
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, false, body["emailSent"])
	assert.Equal(t, "Notification logged but email failed to send", body["message"])
	assert.Equal(t, "sending mail to admin@farm-a.example: connection refused", body["emailError"])
	assert.NotEmpty(t, body["notificationId"])

	require.Len(t, sink.records, 1)
	assert.Equal(t, audit.StatusFailed, sink.records[0].Status)
}

// refusingTransport fails every call the way an unreachable relay does.
type refusingTransport struct {
	sends int
}

func (r *refusingTransport) Verify(context.Context) error {
	return errors.New("dial tcp 127.0.0.1:25: connect: connection refused")
}

func (r *refusingTransport) Send(context.Context, *gomail.Message) error {
	r.sends++
	return errors.New("dial tcp 127.0.0.1:25: connect: connection refused")
}

func (r *refusingTransport) Host() string { return "127.0.0.1" }

func TestSendAdminNotificationConfiguredDispatcherTransportFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)
	transport := &refusingTransport{}
	d, err := mail.NewDispatcher(config.SMTP{
		Host:     "127.0.0.1",
		Port:     25,
		User:     "bot@farms.example",
		Password: "secret",
	}, log.Sugar(), mail.WithTransport(transport), mail.WithLocation(time.UTC))
	require.NoError(t, err)
	require.True(t, d.Configured())

	sink := &memorySink{}
	s := NewServer(log, config.Server{Debug: true})
	require.NoError(t, s.RegisterAll([]APIController{NewNotificationController(log.Sugar(), d, sink, time.UTC)}))

	w := doJSON(t, s.Handler(), http.MethodPost, "/api/send-admin-notification", notificationPayload())
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, false, body["emailSent"])
	assert.Equal(t, "Notification logged but email failed to send", body["message"])
	assert.Contains(t, body["emailError"], "connection refused")
	id, _ := body["notificationId"].(string)
	assert.True(t, strings.HasPrefix(id, audit.NotificationIDPrefix), id)
	assert.Equal(t, 1, transport.sends, "exactly one delivery attempt")

	require.Len(t, sink.records, 1)
	assert.Equal(t, audit.StatusFailed, sink.records[0].Status)
	assert.Equal(t, id, sink.records[0].ID)
}

func TestSendAdminNotificationAuditFailureDoesNotChangeResponse(t *testing.T) {
	m := &fakeMailer{adminResult: mail.DeliveryResult{Success: true, MessageID: "<id@x>"}}
	sink := &memorySink{err: errors.New("kafka unavailable")}
	h := newTestServer(t, m, sink)

	w := doJSON(t, h, http.MethodPost, "/api/send-admin-notification", notificationPayload())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])
	assert.Len(t, sink.records, 1)
}

func TestSendAdminNotificationStructuralFailures(t *testing.T) {
	withoutWorker := notificationPayload()
	delete(withoutWorker, "existingWorker")

	withoutAttempt := notificationPayload()
	delete(withoutAttempt, "attemptDetails")

	badDate := notificationPayload()
	badDate["attemptDetails"].(map[string]interface{})["attemptDate"] = "someday"

	missingDate := notificationPayload()
	delete(missingDate["attemptDetails"].(map[string]interface{}), "attemptDate")

	tests := map[string]interface{}{
		"existing worker missing": withoutWorker,
		"attempt details missing": withoutAttempt,
		"unparseable date":        badDate,
		"attempt date missing":    missingDate,
		"malformed json":          "{not json",
		"empty body":              nil,
	}

	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			m := &fakeMailer{adminResult: mail.DeliveryResult{Success: true}}
			sink := &memorySink{}
			h := newTestServer(t, m, sink)

			w := doJSON(t, h, http.MethodPost, "/api/send-admin-notification", payload)
			require.Equal(t, http.StatusInternalServerError, w.Code)

			body := decodeBody(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Failed to send admin notification", body["message"])
			assert.NotEmpty(t, body["error"])
			assert.Empty(t, m.adminEvents, "no delivery attempt for a malformed event")
			assert.Empty(t, sink.records)
		})
	}
}

func TestSendAdminNotificationEmptyFieldsAreRendered(t *testing.T) {
	payload := notificationPayload()
	payload["existingWorker"].(map[string]interface{})["name"] = ""
	m := &fakeMailer{adminResult: mail.DeliveryResult{Success: true, MessageID: "<id@x>"}}
	sink := &memorySink{}
	h := newTestServer(t, m, sink)

	w := doJSON(t, h, http.MethodPost, "/api/send-admin-notification", payload)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, sink.records, 1)
	assert.Contains(t, sink.records[0].EmailContent, notification.MissingValue)
}

func TestSendAdminNotificationUnconfiguredDispatcher(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)
	d, err := mail.NewDispatcher(config.SMTP{Host: "smtp.example.com", Port: 587}, log.Sugar())
	require.ErrorIs(t, err, mail.ErrNotConfigured)

	sink := &memorySink{}
	s := NewServer(log, config.Server{Debug: true})
	nc := NewNotificationController(log.Sugar(), d, sink, time.UTC)
	nc.now = func() time.Time { return time.Date(2024, 3, 5, 16, 30, 0, 0, time.UTC) }
	require.NoError(t, s.RegisterAll([]APIController{nc}))

	w := doJSON(t, s.Handler(), http.MethodPost, "/api/send-admin-notification", notificationPayload())
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, false, body["emailSent"])
	assert.Equal(t, "Email service not configured", body["emailError"])
	assert.NotEmpty(t, body["notificationId"])

	require.Len(t, sink.records, 1)
	assert.Equal(t, audit.StatusFailed, sink.records[0].Status)
	assert.Equal(t, time.Date(2024, 3, 5, 16, 30, 0, 0, time.UTC), sink.records[0].SentAt)
	assert.Contains(t, sink.records[0].EmailContent, "05/03/2024 à 16:30:00")
}
