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

// defaultPageSize is the page size requested from list endpoints.
const defaultPageSize = 50

// Tracker reads issues and worklogs from the issue tracker API. It also
// serves the authoritative identity lookups (issue key, epic, user team,
// display name) for the resolver.
type Tracker struct {
	client   *Client
	pageSize int
}

var _ Connector = (*Tracker)(nil)

// NewTracker creates a tracker connector over the given client.
func NewTracker(client *Client) *Tracker {
	return &Tracker{client: client, pageSize: defaultPageSize}
}

// WithPageSize overrides the page size requested from list endpoints.
// Values below 1 keep the default.
func (t *Tracker) WithPageSize(n int) *Tracker {
	if n > 0 {
		t.pageSize = n
	}
	return t
}

// Source returns core.SourceTracker.
func (t *Tracker) Source() core.Source { return core.SourceTracker }

// Fetch streams issues updated in the window followed by worklogs
// started in it.
func (t *Tracker) Fetch(ctx context.Context, from, to time.Time) (Iterator, error) {
	return Chain(t.Issues(ctx, from, to), t.Worklogs(ctx, from, to)), nil
}

// Issues streams issues whose updated timestamp falls in [from, to].
func (t *Tracker) Issues(ctx context.Context, from, to time.Time) Iterator {
	query := fmt.Sprintf("updated >= '%s' AND updated <= '%s' ORDER BY updated ASC",
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))

	return newPageIterator(ctx, func(ctx context.Context, startAt int) ([]core.Record, int, error) {
		q := url.Values{}
		q.Set("query", query)
		q.Set("startAt", strconv.Itoa(startAt))
		q.Set("maxResults", strconv.Itoa(t.pageSize))

		var page struct {
			Total  int         `json:"total"`
			Issues []wireIssue `json:"issues"`
		}
		if err := t.client.GetJSON(ctx, "/api/v1/issues/search", q, &page); err != nil {
			return nil, 0, fmt.Errorf("list issues: %w", err)
		}

		records := make([]core.Record, 0, len(page.Issues))
		for _, w := range page.Issues {
			records = append(records, w.toRecord())
		}
		return records, page.Total, nil
	})
}

// Worklogs streams worklogs started in [from, to].
func (t *Tracker) Worklogs(ctx context.Context, from, to time.Time) Iterator {
	return newPageIterator(ctx, func(ctx context.Context, startAt int) ([]core.Record, int, error) {
		q := url.Values{}
		q.Set("startedAfter", from.UTC().Format(time.RFC3339))
		q.Set("startedBefore", to.UTC().Format(time.RFC3339))
		q.Set("startAt", strconv.Itoa(startAt))
		q.Set("maxResults", strconv.Itoa(t.pageSize))

		var page struct {
			Total    int           `json:"total"`
			Worklogs []wireWorklog `json:"worklogs"`
		}
		if err := t.client.GetJSON(ctx, "/api/v1/worklogs", q, &page); err != nil {
			return nil, 0, fmt.Errorf("list worklogs: %w", err)
		}

		records := make([]core.Record, 0, len(page.Worklogs))
		for _, w := range page.Worklogs {
			records = append(records, w.toRecord())
		}
		return records, page.Total, nil
	})
}

// LookupIdentity resolves a raw id through the tracker API. It returns
// an empty key with a nil error when the remote does not know the id;
// callers treat that as unresolved rather than a failure.
func (t *Tracker) LookupIdentity(ctx context.Context, kind core.IdentityKind, rawID string) (string, error) {
	switch kind {
	case core.IdentityIssueKey:
		var out struct {
			Key string `json:"key"`
		}
		err := t.client.GetJSON(ctx, "/api/v1/issues/"+url.PathEscape(rawID), nil, &out)
		if err != nil {
			if notFound(err) {
				return "", nil
			}
			return "", fmt.Errorf("lookup issue %s: %w", rawID, err)
		}
		return out.Key, nil

	case core.IdentityEpic:
		var out struct {
			Name string `json:"name"`
		}
		err := t.client.GetJSON(ctx, "/api/v1/epics/"+url.PathEscape(rawID), nil, &out)
		if err != nil {
			if notFound(err) {
				return "", nil
			}
			return "", fmt.Errorf("lookup epic %s: %w", rawID, err)
		}
		return out.Name, nil

	case core.IdentityUserTeam, core.IdentityDisplayName:
		var out struct {
			Team        string `json:"team"`
			DisplayName string `json:"displayName"`
		}
		err := t.client.GetJSON(ctx, "/api/v1/users/"+url.PathEscape(rawID), nil, &out)
		if err != nil {
			if notFound(err) {
				return "", nil
			}
			return "", fmt.Errorf("lookup user %s: %w", rawID, err)
		}
		if kind == core.IdentityUserTeam {
			return out.Team, nil
		}
		return out.DisplayName, nil

	default:
		return "", fmt.Errorf("%w: %s", ErrLookupUnsupported, kind)
	}
}

type wireIssue struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Project     string    `json:"project"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Assignee    string    `json:"assignee"`
	EpicID      string    `json:"epicId"`
	Updated     time.Time `json:"updated"`
}

func (w wireIssue) toRecord() core.Record {
	return core.Issue{
		ID:       w.ID,
		Key:      w.Key,
		Project:  w.Project,
		Summary:  w.Summary,
		Body:     w.Description,
		Status:   w.Status,
		Assignee: w.Assignee,
		EpicID:   w.EpicID,
		Updated:  w.Updated,
	}
}

type wireWorklog struct {
	ID           string    `json:"id"`
	IssueID      string    `json:"issueId"`
	IssueKey     string    `json:"issueKey"`
	Author       string    `json:"author"`
	AuthorEmail  string    `json:"authorEmail"`
	Comment      string    `json:"comment"`
	TimeSpentSec int       `json:"timeSpentSeconds"`
	Started      time.Time `json:"started"`
}

func (w wireWorklog) toRecord() core.Record {
	return core.Worklog{
		ID:           w.ID,
		IssueID:      w.IssueID,
		IssueKey:     w.IssueKey,
		Author:       w.Author,
		AuthorEmail:  w.AuthorEmail,
		Comment:      w.Comment,
		TimeSpentSec: w.TimeSpentSec,
		Started:      w.Started,
	}
}
