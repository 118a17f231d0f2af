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
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/farmhands/worker-notifier/pkg/apiresponses"
	"github.com/farmhands/worker-notifier/pkg/system"
)

const (
	StatusConnected     = "connected"
	StatusNotConfigured = "not_configured"

	msgEmailReady         = "Email service is ready"
	msgEmailNotReady      = "Email service not configured or connection failed"
	msgEmailAddressNeeded = "Email address required"
)

// EmailStatusResponse is returned by GET /api/email/status.
type EmailStatusResponse struct {
	EmailServiceConfigured bool   `json:"emailServiceConfigured"`
	Status                 string `json:"status"`
	Message                string `json:"message"`
}

type testEmailRequest struct {
	Email string `json:"email"`
}

// EmailController exposes the mail relay check and the test send.
type EmailController struct {
	mailer Mailer
	log    *zap.SugaredLogger
}

func NewEmailController(log *zap.SugaredLogger, mailer Mailer) *EmailController {
	return &EmailController{mailer: mailer, log: log.Named("email-controller")}
}

func (ec *EmailController) BasePath() string {
	return "email"
}

func (ec *EmailController) Handlers() []gin.HandlerFunc {
	return nil
}

func (ec *EmailController) Register(rg *gin.RouterGroup) error {
	rg.GET("status", ec.handleStatus)
	rg.POST("test", ec.handleTest)
	return nil
}

func (ec *EmailController) handleStatus(c *gin.Context) {
	connected := ec.mailer.VerifyConnection(c.Request.Context())
	resp := EmailStatusResponse{
		EmailServiceConfigured: connected,
		Status:                 StatusNotConfigured,
		Message:                msgEmailNotReady,
	}
	if connected {
		resp.Status = StatusConnected
		resp.Message = msgEmailReady
	}
	apiresponses.RespondOK(c, resp)
}

func (ec *EmailController) handleTest(c *gin.Context) {
	reqLog := system.GetReqLogger(c, ec.log)

	var req testEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		reqLog.Debugw("Rejected test email request without address", "error", err)
		apiresponses.RespondBadRequest(c, msgEmailAddressNeeded)
		return
	}

	result := ec.mailer.SendTestEmail(c.Request.Context(), req.Email)
	reqLog.Infow("Test email processed", "to", req.Email, "success", result.Success)
	apiresponses.RespondOK(c, result)
}
