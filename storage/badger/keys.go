package badger

import (
	"fmt"

	"github.com/poiesic/tributary/core"
)

// Key prefixes for different data types
const (
	checkpointPrefix = "chkpt"
	syncStatusPrefix = "syncst"
	identityPrefix   = "identrec"
)

// makeCheckpointKey generates a key for a checkpoint row.
// Format: prefix:source:batchID
func makeCheckpointKey(source core.Source, batchID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", checkpointPrefix, source, batchID))
}

// makeCheckpointScanPrefix generates the iteration prefix for a source's
// checkpoints. An empty source scans every checkpoint.
func makeCheckpointScanPrefix(source core.Source) []byte {
	if source == "" {
		return []byte(checkpointPrefix + ":")
	}
	return []byte(fmt.Sprintf("%s:%s:", checkpointPrefix, source))
}

// makeSyncStatusKey generates a key for a source's sync status.
func makeSyncStatusKey(source core.Source) []byte {
	return []byte(fmt.Sprintf("%s:%s", syncStatusPrefix, source))
}

// makeIdentityKey generates a key for a resolved identity.
// Format: prefix:kind:rawID
func makeIdentityKey(kind core.IdentityKind, rawID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", identityPrefix, kind, rawID))
}
