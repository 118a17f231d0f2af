// SPDX-FileCopyrightText: 2026
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/farmhands/worker-notifier/pkg/notification"
)

// Status is the delivery outcome stored in a Record.
type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// NotificationIDPrefix prefixes every notification id.
const NotificationIDPrefix = "notification_"

// Record describes one admin notification attempt. It is created once, after
// the delivery attempt resolved, and never modified.
type Record struct {
	ID             string                 `json:"id"`
	Type           notification.EventType `json:"type"`
	WorkerCIN      string                 `json:"workerCin"`
	WorkerName     string                 `json:"workerName"`
	CurrentFarm    string                 `json:"currentFarm"`
	AttemptingFarm string                 `json:"attemptingFarm"`
	SentTo         string                 `json:"sentTo"`
	SentAt         time.Time              `json:"sentAt"`
	Status         Status                 `json:"status"`
	// EmailContent is the rendered HTML body.
	EmailContent string `json:"emailContent"`
}

// NewID returns a unique notification id.
func NewID() string {
	return NotificationIDPrefix + uuid.NewString()
}

// NewRecord builds the record for event. delivered is the outcome of the
// single delivery attempt.
func NewRecord(id string, event *notification.DuplicateWorkerEvent, delivered bool, html string, sentAt time.Time) *Record {
	r := &Record{
		ID:           id,
		SentAt:       sentAt,
		Status:       StatusFailed,
		EmailContent: html,
	}
	if delivered {
		r.Status = StatusSent
	}
	if event == nil {
		return r
	}
	r.Type = event.Type
	r.SentTo = event.AdminEmail
	if w := event.ExistingWorker; w != nil {
		r.WorkerCIN = w.CIN
		r.WorkerName = w.Name
		r.CurrentFarm = w.CurrentFarm
	}
	if a := event.AttemptDetails; a != nil {
		r.AttemptingFarm = a.AttemptingFarm
	}
	return r
}
