package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"slack-task-alert/internal/config"
	"slack-task-alert/internal/orchestrator"
)

// Exit codes
const (
	exitRunFailed   = 1
	exitConfigError = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "taskalert:", err)
		if config.IsConfigError(err) {
			return exitConfigError
		}
		return exitRunFailed
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		envFile string
		dryRun  bool
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "taskalert",
		Short: "Post a report of Slack task messages that are not marked done",
		Long: `Searches Slack for messages carrying TASK_REACTION, drops those that
SLACK_USER_ID reacted to with any of DONE_REACTIONS, and posts the remaining
tasks to REPORT_CHANNEL.

Runs once per invocation; trigger it from cron or CI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			cfg, err := config.LoadRuntime()
			if err != nil {
				return err
			}
			app, err := orchestrator.New(cfg, log)
			if err != nil {
				return err
			}
			app.DryRun = dryRun
			app.Out = cmd.OutOrStdout()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			log.Debug("run started", "locale", cfg.Locale, "dry_run", dryRun)
			return app.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the report instead of posting it")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}
