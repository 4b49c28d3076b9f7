// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/poiesic/tributary/core"
)

// Wiki reads pages from the documentation wiki.
type Wiki struct {
	client   *Client
	space    string
	pageSize int
}

var _ Connector = (*Wiki)(nil)

// NewWiki creates a wiki connector. An empty space reads all spaces.
func NewWiki(client *Client, space string) *Wiki {
	return &Wiki{client: client, space: space, pageSize: defaultPageSize}
}

// WithPageSize overrides the page size requested from the listing.
// Values below 1 keep the default.
func (w *Wiki) WithPageSize(n int) *Wiki {
	if n > 0 {
		w.pageSize = n
	}
	return w
}

// Source returns core.SourceWiki.
func (w *Wiki) Source() core.Source { return core.SourceWiki }

// Fetch streams pages updated in [from, to].
func (w *Wiki) Fetch(ctx context.Context, from, to time.Time) (Iterator, error) {
	return newPageIterator(ctx, func(ctx context.Context, startAt int) ([]core.Record, int, error) {
		q := url.Values{}
		q.Set("updatedFrom", from.UTC().Format(time.RFC3339))
		q.Set("updatedTo", to.UTC().Format(time.RFC3339))
		q.Set("start", strconv.Itoa(startAt))
		q.Set("limit", strconv.Itoa(w.pageSize))
		if w.space != "" {
			q.Set("space", w.space)
		}

		var page struct {
			Total int        `json:"total"`
			Pages []wirePage `json:"pages"`
		}
		if err := w.client.GetJSON(ctx, "/api/v1/pages", q, &page); err != nil {
			return nil, 0, fmt.Errorf("list pages: %w", err)
		}

		records := make([]core.Record, 0, len(page.Pages))
		for _, p := range page.Pages {
			records = append(records, p.toRecord())
		}
		return records, page.Total, nil
	}), nil
}

type wirePage struct {
	ID      string    `json:"id"`
	Slug    string    `json:"slug"`
	Space   string    `json:"space"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Author  string    `json:"author"`
	Updated time.Time `json:"updated"`
}

func (p wirePage) toRecord() core.Record {
	return core.Page{
		ID:      p.ID,
		Slug:    p.Slug,
		Space:   p.Space,
		Title:   p.Title,
		Body:    p.Content,
		Author:  p.Author,
		Updated: p.Updated,
	}
}
