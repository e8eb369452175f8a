//go:build cgo

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/amora-app/media-pipeline/internal/config"
	"github.com/amora-app/media-pipeline/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCommand(os.Stdout).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "mediactl",
		Short:         "Operate the media pipeline from the command line",
		Long:          "Process local files through the media pipeline, delete stored media and inspect transcoder tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.close()
			logger.Flush(2 * time.Second)
		},
	}

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "Path to configuration file")
	root.PersistentFlags().StringVar(&c.envPath, "env", "config/", "Path to environment files")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "Enable debug logging")

	root.AddCommand(newUploadCommand(c))
	root.AddCommand(newDeleteCommand(c))
	root.AddCommand(newToolsCommand(c))

	return root
}

func (c *cli) init() error {
	config.ChdirRepoRoot()
	cfg, err := config.LoadMediaConfig(c.configFile, c.envPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.cfg = cfg

	return logger.Initialize(logger.Config{
		Debug:           c.debug || cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "mediactl",
		},
	})
}
