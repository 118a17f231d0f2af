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

package apiresponses

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Failure is the body of every non-2xx response. Success is always false.
type Failure struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RespondBadRequest sends a 400 Bad Request response.
// Use this for client errors like missing fields.
func RespondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Failure{Error: message})
}

// RespondNotFound sends a 404 Not Found response for an unknown route.
func RespondNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, Failure{
		Error: fmt.Sprintf("route not found: %s %s", c.Request.Method, c.Request.URL.Path),
	})
}

// RespondInternalError sends a 500 Internal Server Error response carrying a
// generic message and the error text. The error is logged when log is set.
func RespondInternalError(c *gin.Context, message string, err error, log *zap.SugaredLogger) {
	if log != nil {
		log.Errorw(message, "error", err)
	}
	body := Failure{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

// RespondOK sends a 200 OK response with the given data.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}
