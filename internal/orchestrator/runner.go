package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"slack-task-alert/internal/collector"
	"slack-task-alert/internal/config"
	"slack-task-alert/internal/report"
	"slack-task-alert/internal/slack"
)

// Poster is the report delivery capability.
type Poster interface {
	Post(ctx context.Context, channel, text, username string) error
}

type App struct {
	cfg       config.Runtime
	collector *collector.Collector
	poster    Poster
	log       *slog.Logger

	// DryRun writes the report to Out instead of posting it.
	DryRun bool
	Out    io.Writer
}

// New wires the Slack clients for cfg: the user token searches, the bot
// token posts.
func New(cfg config.Runtime, log *slog.Logger) (*App, error) {
	return NewWithClients(cfg,
		slack.NewClient(cfg.UserToken, cfg.APIURL),
		slack.NewClient(cfg.BotToken, cfg.APIURL),
		log)
}

func NewWithClients(cfg config.Runtime, search collector.Searcher, poster Poster, log *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c, err := collector.New(search, collector.Options{
		TaskReaction:  cfg.TaskReaction,
		DoneReactions: cfg.DoneReactions,
		Limit:         cfg.SearchMaxCount,
	})
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, collector: c, poster: poster, log: log}, nil
}

// Run performs one collect, compose, post cycle. Nothing is posted when
// collection fails.
func (a *App) Run(ctx context.Context) error {
	open, stats, err := a.collector.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collect tasks: %w", err)
	}
	a.log.Info("tasks collected",
		"task_reaction", a.cfg.TaskReaction,
		"done_reactions", a.cfg.DoneReactions,
		"tagged", stats.Tagged,
		"done", stats.Done,
		"open", stats.Open)
	if stats.Tagged == a.cfg.SearchMaxCount {
		a.log.Warn("tagged search hit the result cap, older tasks are not reported", "limit", a.cfg.SearchMaxCount)
	}

	text := report.Compose(open, a.cfg.Addressee, a.cfg.Template, a.cfg.ExcerptMaxLength)
	if a.DryRun {
		if a.Out == nil {
			return nil
		}
		_, err := fmt.Fprintln(a.Out, text)
		return err
	}
	if err := a.poster.Post(ctx, a.cfg.ReportChannel, text, a.cfg.Template.BotName); err != nil {
		return fmt.Errorf("post report: %w", err)
	}
	a.log.Info("report posted", "channel", a.cfg.ReportChannel, "open", len(open))
	return nil
}
