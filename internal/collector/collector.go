// Package collector finds task messages that have not been marked done.
package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"slack-task-alert/internal/model"
)

// Searcher is the message search capability. Results are newest first and
// hold at most limit hits.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]model.TaskMessage, error)
}

type Options struct {
	TaskReaction  string
	DoneReactions []string
	// Limit caps every single search. Hits past the cap are never seen.
	Limit int
}

type Collector struct {
	search Searcher
	opts   Options
}

// Stats describes the last collection, for logging.
type Stats struct {
	Tagged int
	Done   int
	Open   int
}

func New(search Searcher, opts Options) (*Collector, error) {
	if search == nil {
		return nil, errors.New("collector: searcher is required")
	}
	if strings.TrimSpace(opts.TaskReaction) == "" {
		return nil, errors.New("collector: task reaction is required")
	}
	if len(opts.DoneReactions) == 0 {
		return nil, errors.New("collector: at least one done reaction is required")
	}
	if opts.Limit <= 0 {
		return nil, fmt.Errorf("collector: limit must be positive, got %d", opts.Limit)
	}
	return &Collector{search: search, opts: opts}, nil
}

// TaskQuery matches every message carrying the task reaction.
func TaskQuery(task string) string {
	return "has::" + reaction(task) + ":"
}

// DoneQuery matches task messages the token owner reacted to with done.
func DoneQuery(task, done string) string {
	return TaskQuery(task) + " hasmy::" + reaction(done) + ":"
}

func reaction(v string) string {
	return strings.Trim(strings.TrimSpace(v), ":")
}

// Collect returns the tagged messages whose identity is absent from every
// done search, in the order the tagged search returned them.
func (c *Collector) Collect(ctx context.Context) ([]model.TaskMessage, Stats, error) {
	tagged, err := c.search.Search(ctx, TaskQuery(c.opts.TaskReaction), c.opts.Limit)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("search tagged tasks: %w", err)
	}
	done, err := c.doneIdentities(ctx)
	if err != nil {
		return nil, Stats{}, err
	}
	open := Open(tagged, done)
	return open, Stats{Tagged: len(tagged), Done: len(tagged) - len(open), Open: len(open)}, nil
}

// doneIdentities runs one search per done reaction concurrently. Every search
// must succeed; the first failure cancels the rest.
func (c *Collector) doneIdentities(ctx context.Context) (map[model.MessageIdentity]struct{}, error) {
	results := make([][]model.TaskMessage, len(c.opts.DoneReactions))
	g, gctx := errgroup.WithContext(ctx)
	for i, done := range c.opts.DoneReactions {
		g.Go(func() error {
			msgs, err := c.search.Search(gctx, DoneQuery(c.opts.TaskReaction, done), c.opts.Limit)
			if err != nil {
				return fmt.Errorf("search done tasks %q: %w", done, err)
			}
			results[i] = msgs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	set := make(map[model.MessageIdentity]struct{})
	for _, msgs := range results {
		for _, m := range msgs {
			set[m.ID] = struct{}{}
		}
	}
	return set, nil
}

// Open is the set difference tagged \ done by message identity.
func Open(tagged []model.TaskMessage, done map[model.MessageIdentity]struct{}) []model.TaskMessage {
	out := make([]model.TaskMessage, 0, len(tagged))
	for _, m := range tagged {
		if _, ok := done[m.ID]; ok {
			continue
		}
		out = append(out, m)
	}
	return out
}
