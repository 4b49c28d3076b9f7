package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/poiesic/tributary/core"
)

// Chat reads messages from the team chat's channel history.
type Chat struct {
	client   *Client
	channels []string
	pageSize int
}

var _ Connector = (*Chat)(nil)

// NewChat creates a chat connector reading the given channels.
func NewChat(client *Client, channels []string) *Chat {
	return &Chat{client: client, channels: channels, pageSize: defaultPageSize}
}

// WithPageSize overrides the page size requested from channel history.
// Values below 1 keep the default.
func (c *Chat) WithPageSize(n int) *Chat {
	if n > 0 {
		c.pageSize = n
	}
	return c
}

// Source returns core.SourceChat.
func (c *Chat) Source() core.Source { return core.SourceChat }

// Fetch streams messages posted in [from, to] across the configured
// channels, channel by channel.
func (c *Chat) Fetch(ctx context.Context, from, to time.Time) (Iterator, error) {
	iters := make([]Iterator, 0, len(c.channels))
	for _, channel := range c.channels {
		iters = append(iters, c.history(ctx, channel, from, to))
	}
	return Chain(iters...), nil
}

func (c *Chat) history(ctx context.Context, channel string, from, to time.Time) Iterator {
	return newPageIterator(ctx, func(ctx context.Context, startAt int) ([]core.Record, int, error) {
		q := url.Values{}
		q.Set("channel", channel)
		q.Set("oldest", strconv.FormatInt(from.UTC().Unix(), 10))
		q.Set("latest", strconv.FormatInt(to.UTC().Unix(), 10))
		q.Set("offset", strconv.Itoa(startAt))
		q.Set("limit", strconv.Itoa(c.pageSize))

		var page struct {
			Total    int           `json:"total"`
			Messages []wireMessage `json:"messages"`
		}
		if err := c.client.GetJSON(ctx, "/api/v1/conversations/history", q, &page); err != nil {
			return nil, 0, fmt.Errorf("list messages in %s: %w", channel, err)
		}

		records := make([]core.Record, 0, len(page.Messages))
		for _, m := range page.Messages {
			records = append(records, m.toRecord(channel))
		}
		return records, page.Total, nil
	})
}

type wireMessage struct {
	ID     string    `json:"id"`
	Author string    `json:"author"`
	Text   string    `json:"text"`
	Posted time.Time `json:"posted"`
}

func (m wireMessage) toRecord(channel string) core.Record {
	return core.Message{
		ID:      m.ID,
		Channel: channel,
		Author:  m.Author,
		Text:    m.Text,
		Posted:  m.Posted,
	}
}
