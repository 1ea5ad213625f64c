package main

import (
	"fmt"
	"time"

	"github.com/pixelwork/pixelwork"
	"github.com/pixelwork/pixelwork/config"
	"github.com/pixelwork/pixelwork/logger"
	"github.com/pixelwork/pixelwork/metrics"
	"github.com/pixelwork/pixelwork/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// commandContext carries the state shared by every subcommand.
type commandContext struct {
	configPath  string
	logLevel    string
	metricsAddr string
	quiet       bool

	cfg *config.Config
	log *zap.Logger
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "pixelwork",
		Short:         "Sprite sheet and frame tooling",
		Long:          fmt.Sprintf(HelpBanner, Version),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["skipConfigLoad"] == "true" {
				return nil
			}
			return ctx.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if ctx.log != nil {
				_ = ctx.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path")
	flags.StringVar(&ctx.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&ctx.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flags.BoolVarP(&ctx.quiet, "quiet", "q", false, "Suppress status output")

	rootCmd.AddCommand(newSheetCommand(ctx))
	rootCmd.AddCommand(newMatteCommand(ctx))
	rootCmd.AddCommand(newStrokeCommand(ctx))
	rootCmd.AddCommand(newPixelateCommand(ctx))
	rootCmd.AddCommand(newSplitCommand(ctx))
	rootCmd.AddCommand(newGIFCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

// setup loads the configuration, builds the logger and starts the metrics
// endpoint when one is configured.
func (c *commandContext) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if c.metricsAddr != "" {
		cfg.Metrics.Addr = c.metricsAddr
	}
	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		return err
	}
	c.cfg, c.log = cfg, log

	if cfg.Metrics.Addr != "" {
		metrics.StartServer(cmd.Context(), cfg.Metrics.Addr, log)
	}
	return nil
}

// processor returns a processor configured from the loaded configuration.
func (c *commandContext) processor() (*pixelwork.Processor, error) {
	p := pixelwork.NewProcessor()
	if err := c.cfg.Apply(p); err != nil {
		return nil, err
	}
	p.Logger = c.log
	return p, nil
}

// startSpinner shows the progress indicator unless output is quiet. The
// returned function stops it with a final message.
func (c *commandContext) startSpinner(cmd *cobra.Command, p *pixelwork.Processor, msg string) func(ok bool) {
	if c.quiet {
		return func(bool) {}
	}
	text := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ PIXELWORK", utils.StatusMessage),
		utils.DecorateText(msg, utils.DefaultMessage))
	spinner := utils.NewSpinner(text, 200*time.Millisecond, true)
	spinner.SetWriter(cmd.ErrOrStderr())
	if p != nil {
		p.Spinner = spinner
	}

	// Restore the cursor when the command is interrupted.
	done := make(chan struct{})
	go func() {
		select {
		case <-cmd.Context().Done():
			spinner.RestoreCursor()
		case <-done:
		}
	}()

	spinner.Start()
	return func(ok bool) {
		close(done)
		mark := "✔"
		if !ok {
			mark = "✘"
		}
		spinner.StopMsg = fmt.Sprintf("%s %s\n", text, mark)
		spinner.Stop()
	}
}

// status prints a user facing line on stderr.
func (c *commandContext) status(cmd *cobra.Command, label, value string) {
	if c.quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s%s\n",
		utils.DecorateText(label, utils.DefaultMessage),
		utils.DecorateText(value, utils.SuccessMessage),
		utils.DefaultColor,
	)
}
