package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/farmhands/worker-notifier/pkg/api"
	"github.com/farmhands/worker-notifier/pkg/audit"
	"github.com/farmhands/worker-notifier/pkg/config"
	"github.com/farmhands/worker-notifier/pkg/mail"
	"github.com/farmhands/worker-notifier/pkg/version"
)

func newServeCommand(rt *runtimeState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the notification HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), rt)
		},
	}
}

func newDispatcher(rt *runtimeState) (*mail.Dispatcher, error) {
	loc, err := rt.cfg.Notification.Location()
	if err != nil {
		return nil, err
	}
	d, err := mail.NewDispatcher(rt.cfg.SMTP, rt.log.Sugar(), mail.WithLocation(loc))
	if err != nil && !errors.Is(err, mail.ErrNotConfigured) {
		return nil, err
	}
	return d, nil
}

// newAuditSink always logs records and additionally forwards them to Kafka
// when brokers are configured.
func newAuditSink(cfg config.Audit, log *zap.Logger) (audit.Sink, error) {
	sinks := []audit.Sink{audit.NewLogSink(log)}
	if cfg.KafkaEnabled() {
		ks, err := audit.NewKafkaSink(audit.KafkaSinkConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			Async:   true,
		}, log)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, ks)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return audit.NewMultiSink(sinks, log.Named("audit")), nil
}

func runServe(ctx context.Context, rt *runtimeState) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := rt.log.Sugar()
	log.With("version", version.Get().Version).Info("Starting worker notifier")

	dispatcher, err := newDispatcher(rt)
	if err != nil {
		return err
	}
	if !dispatcher.Configured() {
		log.Warnw("Admin notifications will be recorded but not delivered", "reason", mail.NotConfiguredMessage)
	}

	sink, err := newAuditSink(rt.cfg.Audit, rt.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.Warnw("Failed to close audit sink", "error", err)
		}
	}()

	server := api.NewServer(rt.log, rt.cfg.Server)
	err = server.RegisterAll([]api.APIController{
		api.NewEmailController(log, dispatcher),
		api.NewNotificationController(log, dispatcher, sink, dispatcher.Location()),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		return err
	}
	log.Info("Worker notifier stopped")
	return nil
}
