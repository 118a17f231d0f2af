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

package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/farmhands/worker-notifier/pkg/apiresponses"
	"github.com/farmhands/worker-notifier/pkg/audit"
	"github.com/farmhands/worker-notifier/pkg/metrics"
	"github.com/farmhands/worker-notifier/pkg/notification"
	"github.com/farmhands/worker-notifier/pkg/system"
)

const (
	msgNotificationSent   = "Admin notification sent successfully"
	msgNotificationLogged = "Notification logged but email failed to send"
	msgNotificationFailed = "Failed to send admin notification"
)

// NotificationResponse is returned by POST /api/send-admin-notification once
// the delivery attempt resolved, whatever its outcome.
type NotificationResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	NotificationID string `json:"notificationId"`
	EmailSent      bool   `json:"emailSent"`
	EmailError     string `json:"emailError,omitempty"`
}

// NotificationController receives duplicate registration events, delivers
// the admin alert and emits the audit record.
type NotificationController struct {
	mailer Mailer
	sink   audit.Sink
	loc    *time.Location
	now    func() time.Time
	log    *zap.SugaredLogger
}

func NewNotificationController(log *zap.SugaredLogger, mailer Mailer, sink audit.Sink, loc *time.Location) *NotificationController {
	if loc == nil {
		loc = time.Local
	}
	return &NotificationController{
		mailer: mailer,
		sink:   sink,
		loc:    loc,
		now:    time.Now,
		log:    log.Named("notification-controller"),
	}
}

func (nc *NotificationController) BasePath() string {
	return "send-admin-notification"
}

func (nc *NotificationController) Handlers() []gin.HandlerFunc {
	return nil
}

func (nc *NotificationController) Register(rg *gin.RouterGroup) error {
	rg.POST("", nc.handleSendAdminNotification)
	return nil
}

func (nc *NotificationController) handleSendAdminNotification(c *gin.Context) {
	reqLog := system.GetReqLogger(c, nc.log)

	var event notification.DuplicateWorkerEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		metrics.NotificationsRejected.WithLabelValues("decode").Inc()
		apiresponses.RespondInternalError(c, msgNotificationFailed, fmt.Errorf("decoding notification: %w", err), reqLog)
		return
	}
	if err := event.Validate(); err != nil {
		metrics.NotificationsRejected.WithLabelValues("malformed").Inc()
		apiresponses.RespondInternalError(c, msgNotificationFailed, err, reqLog)
		return
	}

	reqLog = reqLog.With("type", event.Type, "worker", event.ExistingWorker.Name, "targetAdmin", event.AdminEmail)
	reqLog.Infow("Processing admin notification request")

	// the audit trail keeps the body as rendered by this request
	rendered, err := notification.Render(&event, nc.now(), nc.loc)
	if err != nil {
		metrics.NotificationsRejected.WithLabelValues("render").Inc()
		apiresponses.RespondInternalError(c, msgNotificationFailed, err, reqLog)
		return
	}

	result := nc.mailer.SendAdminNotification(c.Request.Context(), &event)
	if result.Success {
		reqLog.Infow("Admin notification email sent", "messageId", result.MessageID)
	} else {
		reqLog.Warnw("Failed to send admin notification email", "error", result.Error)
	}

	record := audit.NewRecord(audit.NewID(), &event, result.Success, rendered.HTML, nc.now())
	if nc.sink != nil {
		if err := nc.sink.Write(c.Request.Context(), record); err != nil {
			reqLog.Warnw("Audit record not fully forwarded", "notificationId", record.ID, "error", err)
		}
	}
	metrics.NotificationsProcessed.WithLabelValues(string(record.Type), string(record.Status)).Inc()

	resp := NotificationResponse{
		Success:        result.Success,
		Message:        msgNotificationLogged,
		NotificationID: record.ID,
		EmailSent:      result.Success,
		EmailError:     result.Error,
	}
	if result.Success {
		resp.Message = msgNotificationSent
	}
	apiresponses.RespondOK(c, resp)
}
