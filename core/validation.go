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
	"strings"
	"time"
	"unicode"
)

// ValidateRecord validates a raw record according to domain rules.
//
// Validation rules:
//   - the source-assigned id must not be empty
//   - the record timestamp must not be in the future
//
// NOT validated (resolved later in the pipeline):
//   - Issue.Key / Worklog.IssueKey (the resolver fills or rejects these)
//   - bodies (empty bodies are legal; the sink embeds titles regardless)
func ValidateRecord(record Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.RecordID() == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyRecordID)
	}

	if !IsValidTimestamp(record.RecordTime()) {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateSource validates that a source name is one of the known systems.
func ValidateSource(source Source) error {
	switch source {
	case SourceTracker, SourceMeetings, SourceWiki, SourceChat:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidSource, source)
}

// ValidateDateRange validates a fetch window.
//
// Validation rules:
//   - neither bound may be zero
//   - the start must precede the end
func ValidateDateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: zero bound", ErrInvalidDateRange)
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidDateRange,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
// A small tolerance absorbs clock skew between source systems and us.
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now().Add(5 * time.Minute))
}

// IsTicketKey reports whether token is a well-formed ticket key:
// exactly two hyphen-delimited parts, alphabetic then numeric. Dates
// such as 2024-11-01 fail both shape checks.
func IsTicketKey(token string) bool {
	first, second, ok := strings.Cut(token, "-")
	if !ok || first == "" || second == "" {
		return false
	}
	if strings.Contains(second, "-") {
		return false
	}
	for _, r := range first {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	for _, r := range second {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
