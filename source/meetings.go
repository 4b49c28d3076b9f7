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

// Meetings reads call transcripts from the meetings platform. The
// listing is the one source whose feed routinely contains duplicates
// (re-exports, bot rejoins), so downstream deduplication applies.
type Meetings struct {
	client   *Client
	pageSize int
}

var _ Connector = (*Meetings)(nil)

// NewMeetings creates a meetings connector over the given client.
func NewMeetings(client *Client) *Meetings {
	return &Meetings{client: client, pageSize: defaultPageSize}
}

// WithPageSize overrides the page size requested from the listing.
// Values below 1 keep the default.
func (m *Meetings) WithPageSize(n int) *Meetings {
	if n > 0 {
		m.pageSize = n
	}
	return m
}

// Source returns core.SourceMeetings.
func (m *Meetings) Source() core.Source { return core.SourceMeetings }

// Fetch streams transcripts started in [from, to].
func (m *Meetings) Fetch(ctx context.Context, from, to time.Time) (Iterator, error) {
	return newPageIterator(ctx, func(ctx context.Context, startAt int) ([]core.Record, int, error) {
		q := url.Values{}
		q.Set("from", from.UTC().Format(time.RFC3339))
		q.Set("to", to.UTC().Format(time.RFC3339))
		q.Set("offset", strconv.Itoa(startAt))
		q.Set("limit", strconv.Itoa(m.pageSize))

		var page struct {
			Total       int              `json:"total"`
			Transcripts []wireTranscript `json:"transcripts"`
		}
		if err := m.client.GetJSON(ctx, "/api/v2/transcripts", q, &page); err != nil {
			return nil, 0, fmt.Errorf("list transcripts: %w", err)
		}

		records := make([]core.Record, 0, len(page.Transcripts))
		for _, w := range page.Transcripts {
			records = append(records, w.toRecord())
		}
		return records, page.Total, nil
	}), nil
}

// LookupIdentity resolves a meeting's raw id to the ticket key the
// meeting was scheduled against. Empty key with nil error when the
// meeting is unknown or has no linked ticket.
func (m *Meetings) LookupIdentity(ctx context.Context, kind core.IdentityKind, rawID string) (string, error) {
	if kind != core.IdentityMeeting {
		return "", fmt.Errorf("%w: %s", ErrLookupUnsupported, kind)
	}

	var out struct {
		LinkedTicket string `json:"linkedTicket"`
	}
	err := m.client.GetJSON(ctx, "/api/v2/meetings/"+url.PathEscape(rawID), nil, &out)
	if err != nil {
		if notFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("lookup meeting %s: %w", rawID, err)
	}
	return out.LinkedTicket, nil
}

type wireTranscript struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	StartedAt    time.Time `json:"startedAt"`
	DurationSec  int       `json:"durationSeconds"`
	SegmentCount int       `json:"segmentCount"`
	Attendees    []string  `json:"attendees"`
	SharedWith   []string  `json:"sharedWith"`
	Public       bool      `json:"public"`
	Text         string    `json:"text"`
}

func (w wireTranscript) toRecord() core.Record {
	return core.Transcript{
		ID:          w.ID,
		Title:       w.Title,
		Started:     w.StartedAt,
		DurationSec: w.DurationSec,
		Segments:    w.SegmentCount,
		Attendees:   w.Attendees,
		SharedWith:  w.SharedWith,
		Public:      w.Public,
		Body:        w.Text,
	}
}
