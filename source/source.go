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
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/retry"
)

// Connector fetches one external system's records for a date window.
type Connector interface {
	Source() core.Source
	Fetch(ctx context.Context, from, to time.Time) (Iterator, error)
}

// Registry maps source names to their connectors.
type Registry map[core.Source]Connector

// Connector returns the connector for the named source.
func (r Registry) Connector(src core.Source) (Connector, error) {
	c, ok := r[src]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, src)
	}
	return c, nil
}

// Router dispatches identity lookups to the connector owning the id
// space: meeting ids go to the meetings API, everything else to the
// tracker.
type Router struct {
	Tracker  *Tracker
	Meetings *Meetings
}

// LookupIdentity routes a lookup by kind.
func (r *Router) LookupIdentity(ctx context.Context, kind core.IdentityKind, rawID string) (string, error) {
	switch kind {
	case core.IdentityMeeting:
		if r.Meetings == nil {
			return "", fmt.Errorf("%w: %s (no meetings connector)", ErrLookupUnsupported, kind)
		}
		return r.Meetings.LookupIdentity(ctx, kind, rawID)
	case core.IdentityIssueKey, core.IdentityEpic, core.IdentityUserTeam, core.IdentityDisplayName:
		if r.Tracker == nil {
			return "", fmt.Errorf("%w: %s (no tracker connector)", ErrLookupUnsupported, kind)
		}
		return r.Tracker.LookupIdentity(ctx, kind, rawID)
	default:
		return "", fmt.Errorf("%w: %s", ErrLookupUnsupported, kind)
	}
}

// notFound reports whether err is an HTTP 404.
func notFound(err error) bool {
	var httpErr *retry.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}
