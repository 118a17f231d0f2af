package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/farmhands/worker-notifier/pkg/audit"
	"github.com/farmhands/worker-notifier/pkg/config"
	"github.com/farmhands/worker-notifier/pkg/mail"
	"github.com/farmhands/worker-notifier/pkg/notification"
)

// fakeMailer records calls and returns canned results.
type fakeMailer struct {
	mu           sync.Mutex
	connected    bool
	adminResult  mail.DeliveryResult
	testResult   mail.DeliveryResult
	adminEvents  []*notification.DuplicateWorkerEvent
	testTargets  []string
	verifyCalled int
}

func (f *fakeMailer) VerifyConnection(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalled++
	return f.connected
}

func (f *fakeMailer) SendAdminNotification(_ context.Context, ev *notification.DuplicateWorkerEvent) mail.DeliveryResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adminEvents = append(f.adminEvents, ev)
	return f.adminResult
}

func (f *fakeMailer) SendTestEmail(_ context.Context, to string) mail.DeliveryResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.testTargets = append(f.testTargets, to)
	return f.testResult
}

// memorySink keeps every audit record.
type memorySink struct {
	mu      sync.Mutex
	err     error
	records []*audit.Record
}

func (s *memorySink) Write(_ context.Context, r *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return s.err
}

func (s *memorySink) Close() error { return nil }
func (s *memorySink) Name() string { return "memory" }

func newTestServer(t *testing.T, mailer Mailer, sink audit.Sink) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)

	s := NewServer(log, config.Server{Debug: true, PingMessage: "pong", AllowOrigins: []string{"*"}})
	nc := NewNotificationController(log.Sugar(), mailer, sink, nil)
	require.NoError(t, s.RegisterAll([]APIController{
		NewEmailController(log.Sugar(), mailer),
		nc,
	}))
	return s.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
