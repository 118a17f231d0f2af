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

package audit

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/farmhands/worker-notifier/pkg/metrics"
)

// Sink defines the interface for audit record destinations.
type Sink interface {
	// Write hands an audit record to the sink.
	Write(ctx context.Context, record *Record) error

	// Close releases any resources held by the sink.
	Close() error

	// Name returns the sink's identifier.
	Name() string
}

// LogSink writes audit records to a structured logger.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a new LogSink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("audit")}
}

// Write logs the audit record. The rendered body is not logged, only its size.
func (s *LogSink) Write(_ context.Context, record *Record) error {
	s.logger.Info("notification_audit",
		zap.String("notification_id", record.ID),
		zap.String("type", string(record.Type)),
		zap.String("status", string(record.Status)),
		zap.String("sent_to", record.SentTo),
		zap.Time("sent_at", record.SentAt),
		zap.String("worker_cin", record.WorkerCIN),
		zap.String("worker_name", record.WorkerName),
		zap.String("current_farm", record.CurrentFarm),
		zap.String("attempting_farm", record.AttemptingFarm),
		zap.Int("email_content_bytes", len(record.EmailContent)))
	metrics.AuditRecordsWritten.WithLabelValues(s.Name()).Inc()
	return nil
}

// Close is a no-op for LogSink.
func (s *LogSink) Close() error {
	return nil
}

// Name returns the sink identifier.
func (s *LogSink) Name() string {
	return "log"
}

// MultiSink writes to multiple sinks in order.
type MultiSink struct {
	sinks  []Sink
	logger *zap.Logger
}

// NewMultiSink creates a sink that writes to multiple destinations.
func NewMultiSink(sinks []Sink, logger *zap.Logger) *MultiSink {
	return &MultiSink{
		sinks:  sinks,
		logger: logger,
	}
}

// Write sends the record to all sinks. A failing sink does not prevent the
// others from receiving the record.
func (s *MultiSink) Write(ctx context.Context, record *Record) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Write(ctx, record); err != nil {
			// Use string representation to avoid noisy stacktraces for transient errors
			s.logger.Warn("audit sink write failed",
				zap.String("sink", sink.Name()),
				zap.String("notification_id", record.ID),
				zap.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes all sinks.
func (s *MultiSink) Close() error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Name returns the sink identifier.
func (s *MultiSink) Name() string {
	return "multi"
}
