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

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecord indicates a Record failed validation.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidSource indicates an unknown source name.
	ErrInvalidSource = errors.New("unknown source")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyRecordID indicates a record is missing its source-assigned id.
	ErrEmptyRecordID = errors.New("record id cannot be empty")

	// ErrInvalidDateRange indicates an empty or inverted date range.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrEmptyBatchID indicates a batch id is missing.
	ErrEmptyBatchID = errors.New("batch id cannot be empty")

	// ErrEmptyNaturalKey indicates a document was built without a natural key.
	ErrEmptyNaturalKey = errors.New("natural key cannot be empty")
)
