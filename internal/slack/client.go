package slack

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"slack-task-alert/internal/model"
)

// maxPageSize is the largest page search.messages will return.
const maxPageSize = 100

// TransportError wraps a failed Slack API call.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("slack %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client talks to one Slack workspace with a single token. Searching needs a
// user token, posting a bot token, so a run holds two clients.
type Client struct {
	api *slack.Client
}

func NewClient(token, apiURL string) *Client {
	opts := []slack.Option{
		slack.OptionHTTPClient(&http.Client{Timeout: 20 * time.Second}),
	}
	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}
	return &Client{api: slack.New(token, opts...)}
}

// Search runs a search.messages query sorted newest first and returns at most
// limit hits. Hits beyond limit are dropped.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.TaskMessage, error) {
	if limit <= 0 {
		return nil, nil
	}
	pageSize := min(limit, maxPageSize)
	out := make([]model.TaskMessage, 0, pageSize)
	for page := 1; len(out) < limit; page++ {
		params := slack.NewSearchParameters()
		params.Sort = "timestamp"
		params.SortDirection = "desc"
		params.Count = pageSize
		params.Page = page
		res, err := c.api.SearchMessagesContext(ctx, query, params)
		if err != nil {
			return nil, &TransportError{Op: "search.messages", Err: err}
		}
		for _, m := range res.Matches {
			if len(out) == limit {
				break
			}
			out = append(out, model.TaskMessage{
				ID:          model.MessageIdentity{ChannelID: m.Channel.ID, Timestamp: m.Timestamp},
				Permalink:   m.Permalink,
				Text:        m.Text,
				ChannelName: m.Channel.Name,
			})
		}
		if len(res.Matches) == 0 || page >= res.Paging.Pages {
			break
		}
	}
	return out, nil
}

// Post sends text to channel under the given display name.
func (c *Client) Post(ctx context.Context, channel, text, username string) error {
	opts := []slack.MsgOption{
		slack.MsgOptionText(text, false),
		slack.MsgOptionAsUser(true),
	}
	if username != "" {
		opts = append(opts, slack.MsgOptionUsername(username))
	}
	if _, _, err := c.api.PostMessageContext(ctx, channel, opts...); err != nil {
		return &TransportError{Op: "chat.postMessage", Err: err}
	}
	return nil
}
