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


package core

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// BuildDocument converts a resolved record into its vector-store row.
// The id depends only on (source, natural key), so rebuilding the same
// entity always lands on the same row regardless of which run produced
// it. The natural key is the identity's resolved key, extended with the
// record's raw id for kinds where several records share one resolved
// key (worklogs, transcripts).
//
// Access control is carried only for transcripts: either the explicit
// access list (attendees plus shared recipients) or the public flag,
// exactly as reported upstream. Every other kind stores neither.
func BuildDocument(record Record, identity Identity) (Document, error) {
	if record == nil {
		return Document{}, fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	key := identity.ResolvedKey
	if identity.Unresolved() {
		// Callers skip unresolved records; the raw id fallback keeps
		// the function total for the ones that do not.
		key = record.RecordID()
	}

	var doc Document
	switch r := record.(type) {
	case Issue:
		doc = issueDocument(r, key)
	case Worklog:
		doc = worklogDocument(r, key)
	case Transcript:
		doc = transcriptDocument(r, key)
	case Page:
		doc = pageDocument(r)
	case Message:
		doc = messageDocument(r, key)
	default:
		return Document{}, fmt.Errorf("%w: unhandled record type %T", ErrInvalidRecord, record)
	}

	if doc.Metadata.NaturalKey == "" {
		return Document{}, ErrEmptyNaturalKey
	}

	doc.Source = SourceOf(record.RecordKind())
	doc.Kind = record.RecordKind()
	doc.ID = DocumentID(doc.Source, doc.Metadata.NaturalKey)
	doc.Metadata.Timestamp = record.RecordTime().UTC()
	return doc, nil
}

func issueDocument(r Issue, key string) Document {
	title := r.Summary
	if key != "" {
		title = fmt.Sprintf("%s: %s", key, r.Summary)
	}

	project := r.Project
	if project == "" {
		project = ProjectFromKey(key)
	}

	var participants []string
	if r.Assignee != "" {
		participants = []string{r.Assignee}
	}

	return Document{
		Title:   title,
		Content: joinSections(r.Summary, r.Body),
		Metadata: DocumentMetadata{
			NaturalKey:   key,
			Project:      project,
			Participants: participants,
		},
	}
}

func worklogDocument(r Worklog, key string) Document {
	author := r.Author
	if author == "" {
		author = r.AuthorEmail
	}

	title := fmt.Sprintf("Worklog on %s", key)
	if author != "" {
		title = fmt.Sprintf("Worklog on %s by %s", key, author)
	}

	content := r.Comment
	if content == "" {
		spent := time.Duration(r.TimeSpentSec) * time.Second
		content = fmt.Sprintf("%s logged %s on %s.", author, spent, key)
	}

	var participants []string
	if author != "" {
		participants = []string{author}
	}

	return Document{
		Title:   title,
		Content: content,
		Metadata: DocumentMetadata{
			NaturalKey:   fmt.Sprintf("%s/worklog/%s", key, r.ID),
			Project:      ProjectFromKey(key),
			Participants: participants,
		},
	}
}

func transcriptDocument(r Transcript, key string) Document {
	meta := DocumentMetadata{
		NaturalKey:   fmt.Sprintf("%s/transcript/%s", key, r.ID),
		Project:      ProjectFromKey(key),
		Participants: slices.Clone(r.Attendees),
	}
	if r.Public {
		meta.Public = true
	} else {
		meta.AccessList = accessUnion(r.Attendees, r.SharedWith)
	}

	return Document{
		Title:    r.Title,
		Content:  r.Body,
		Metadata: meta,
	}
}

func pageDocument(r Page) Document {
	var participants []string
	if r.Author != "" {
		participants = []string{r.Author}
	}

	return Document{
		Title:   r.Title,
		Content: r.Body,
		Metadata: DocumentMetadata{
			NaturalKey:   r.Slug,
			Project:      r.Space,
			Participants: participants,
		},
	}
}

func messageDocument(r Message, key string) Document {
	title := fmt.Sprintf("#%s", r.Channel)
	if r.Author != "" {
		title = fmt.Sprintf("#%s: %s", r.Channel, r.Author)
	}

	var participants []string
	if r.Author != "" {
		participants = []string{r.Author}
	}

	return Document{
		Title:   title,
		Content: r.Text,
		Metadata: DocumentMetadata{
			NaturalKey:   key,
			Participants: participants,
		},
	}
}

// ProjectFromKey extracts the project prefix of a canonical ticket
// key, e.g. "SUBS-482" -> "SUBS". Returns "" for anything that is not
// a well-formed key.
func ProjectFromKey(key string) string {
	if !IsTicketKey(key) {
		return ""
	}
	prefix, _, _ := strings.Cut(key, "-")
	return prefix
}

// accessUnion merges attendees and shared recipients, dropping blanks
// and duplicates while preserving first-seen order.
func accessUnion(attendees, shared []string) []string {
	seen := make(map[string]bool, len(attendees)+len(shared))
	var out []string
	for _, p := range slices.Concat(attendees, shared) {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// joinSections concatenates non-empty text sections with blank lines.
func joinSections(sections ...string) string {
	var kept []string
	for _, s := range sections {
		if strings.TrimSpace(s) != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, "\n\n")
}
