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


package storage

import (
	"github.com/poiesic/tributary/core"
)

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	buf := make([]byte, core.CheckpointMUS.Size(*checkpoint))
	core.CheckpointMUS.Marshal(*checkpoint, buf)
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, _, err := core.CheckpointMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}

// MarshalSyncStatus serializes a SyncStatus to bytes.
func MarshalSyncStatus(status *core.SyncStatus) []byte {
	buf := make([]byte, core.SyncStatusMUS.Size(*status))
	core.SyncStatusMUS.Marshal(*status, buf)
	return buf
}

// UnmarshalSyncStatus deserializes a SyncStatus from bytes.
func UnmarshalSyncStatus(data []byte) (*core.SyncStatus, error) {
	status, _, err := core.SyncStatusMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// MarshalIdentity serializes an Identity to bytes.
func MarshalIdentity(identity *core.Identity) []byte {
	buf := make([]byte, core.IdentityMUS.Size(*identity))
	core.IdentityMUS.Marshal(*identity, buf)
	return buf
}

// UnmarshalIdentity deserializes an Identity from bytes.
func UnmarshalIdentity(data []byte) (*core.Identity, error) {
	identity, _, err := core.IdentityMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*doc))
	core.DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
