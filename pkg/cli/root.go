package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/farmhands/worker-notifier/pkg/config"
	"github.com/farmhands/worker-notifier/pkg/system"
)

// Options configures the root command.
type Options struct {
	// EnvFile is the default value of --env-file.
	EnvFile string
	// OutputWriter receives command output. Defaults to stdout.
	OutputWriter io.Writer
	// Logger replaces the logger built from the configuration.
	Logger *zap.Logger
}

// DefaultOptions returns the options used by the notifier binary.
func DefaultOptions() Options {
	return Options{
		EnvFile:      config.DefaultEnvFile,
		OutputWriter: os.Stdout,
	}
}

type runtimeState struct {
	envFile string
	debug   bool
	writer  io.Writer
	cfg     config.Config
	log     *zap.Logger
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

func (rt *runtimeState) load() error {
	cfg, err := config.Load(rt.envFile)
	if err != nil {
		return err
	}
	if rt.debug {
		cfg.Server.Debug = true
	}
	rt.cfg = cfg

	if rt.log == nil {
		log, err := system.NewLogger(cfg.Server.Debug)
		if err != nil {
			return fmt.Errorf("failed to set up logger: %w", err)
		}
		rt.log = log
	}
	return nil
}

// NewRootCommand builds the notifier command tree. Running the root command
// without a subcommand starts the server.
func NewRootCommand(opts Options) *cobra.Command {
	rt := &runtimeState{envFile: opts.EnvFile, writer: opts.OutputWriter, log: opts.Logger}

	root := &cobra.Command{
		Use:           "worker-notifier",
		Short:         "Duplicate worker registration notifier",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return rt.load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), rt)
		},
	}

	if opts.OutputWriter != nil {
		root.SetOut(opts.OutputWriter)
	}

	root.PersistentFlags().StringVar(&rt.envFile, "env-file", rt.envFile, "Path to a .env file applied before reading the environment")
	root.PersistentFlags().BoolVar(&rt.debug, "debug", false, "Enable debug logging and gin debug mode")

	root.AddCommand(
		newServeCommand(rt),
		newVerifyCommand(rt),
		newSendTestCommand(rt),
		NewVersionCommand(),
	)

	return root
}
