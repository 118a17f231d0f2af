package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/farmhands/worker-notifier/pkg/api"
)

func newVerifyCommand(rt *runtimeState) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the SMTP relay connection and credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := newDispatcher(rt)
			if err != nil {
				return err
			}
			if !d.VerifyConnection(cmd.Context()) {
				_, _ = fmt.Fprintln(rt.Writer(), api.StatusNotConfigured)
				return errors.New("email service not configured or connection failed")
			}
			_, _ = fmt.Fprintln(rt.Writer(), api.StatusConnected)
			return nil
		},
	}
}

func newSendTestCommand(rt *runtimeState) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "send-test",
		Short: "Send the connectivity test email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if to == "" {
				return errors.New("--to is required")
			}
			d, err := newDispatcher(rt)
			if err != nil {
				return err
			}
			result := d.SendTestEmail(cmd.Context(), to)

			encoder := json.NewEncoder(rt.Writer())
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("test email failed: %s", result.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipient address")

	return cmd
}
