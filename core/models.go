package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Source identifies an external system records are pulled from.
type Source string

const (
	// SourceTracker is the issue tracker (issues and worklogs).
	SourceTracker Source = "tracker"
	// SourceMeetings is the meeting recorder (transcripts).
	SourceMeetings Source = "meetings"
	// SourceWiki is the wiki (pages).
	SourceWiki Source = "wiki"
	// SourceChat is the chat system (messages).
	SourceChat Source = "chat"
)

// Sources lists every known source in a stable order.
var Sources = []Source{SourceTracker, SourceMeetings, SourceWiki, SourceChat}

// Kind identifies the shape of an activity record.
type Kind string

const (
	KindIssue      Kind = "issue"
	KindWorklog    Kind = "worklog"
	KindTranscript Kind = "transcript"
	KindPage       Kind = "page"
	KindMessage    Kind = "message"
)

// SourceOf returns the source system a record kind originates from.
func SourceOf(kind Kind) Source {
	switch kind {
	case KindIssue, KindWorklog:
		return SourceTracker
	case KindTranscript:
		return SourceMeetings
	case KindPage:
		return SourceWiki
	case KindMessage:
		return SourceChat
	}
	return ""
}

// Record is a raw activity item fetched from a source system. It is a
// closed set: exactly one implementation exists per Kind, and consumers
// switch on the concrete type rather than probing fields.
type Record interface {
	RecordKind() Kind
	RecordID() string
	RecordTime() time.Time

	// sealed restricts implementations to this package.
	sealed()
}

// Issue is a tracker issue.
type Issue struct {
	ID       string // source-assigned raw id
	Key      string // human key, e.g. SUBS-482; may be absent on partial payloads
	Project  string
	Summary  string
	Body     string
	Status   string
	Assignee string
	EpicID   string // raw id of the parent epic, if any
	Updated  time.Time
}

func (r Issue) RecordKind() Kind      { return KindIssue }
func (r Issue) RecordID() string      { return r.ID }
func (r Issue) RecordTime() time.Time { return r.Updated }
func (Issue) sealed()                 {}

// Worklog is a time-log entry attached to a tracker issue.
type Worklog struct {
	ID           string
	IssueID      string // raw id of the parent issue
	IssueKey     string // parent key when the payload carries it
	Author       string
	AuthorEmail  string
	Comment      string
	TimeSpentSec int
	Started      time.Time
}

func (r Worklog) RecordKind() Kind      { return KindWorklog }
func (r Worklog) RecordID() string      { return r.ID }
func (r Worklog) RecordTime() time.Time { return r.Started }
func (Worklog) sealed()                 {}

// Transcript is a recorded meeting transcript. Attendees and SharedWith
// carry the access control the sink must preserve exactly.
type Transcript struct {
	ID          string
	Title       string
	Started     time.Time
	DurationSec int // 0 when the source omits duration
	Segments    int // dialogue segments; completeness signal
	Attendees   []string
	SharedWith  []string
	Public      bool
	Body        string
}

func (r Transcript) RecordKind() Kind      { return KindTranscript }
func (r Transcript) RecordID() string      { return r.ID }
func (r Transcript) RecordTime() time.Time { return r.Started }
func (Transcript) sealed()                 {}

// Page is a wiki page.
type Page struct {
	ID      string
	Slug    string
	Space   string
	Title   string
	Body    string
	Author  string
	Updated time.Time
}

func (r Page) RecordKind() Kind      { return KindPage }
func (r Page) RecordID() string      { return r.ID }
func (r Page) RecordTime() time.Time { return r.Updated }
func (Page) sealed()                 {}

// Message is a chat message.
type Message struct {
	ID      string
	Channel string
	Author  string
	Text    string
	Posted  time.Time
}

func (r Message) RecordKind() Kind      { return KindMessage }
func (r Message) RecordID() string      { return r.ID }
func (r Message) RecordTime() time.Time { return r.Posted }
func (Message) sealed()                 {}

// ResolutionPath records how an identity was obtained.
type ResolutionPath string

const (
	// PathFast means the identity came from a local heuristic, no network.
	PathFast ResolutionPath = "fast"
	// PathAuthoritative means the identity came from the lookup API.
	PathAuthoritative ResolutionPath = "authoritative"
	// PathNone marks the unresolved sentinel.
	PathNone ResolutionPath = "none"
)

// IdentityKind names the id space an identity's raw id belongs to.
// Kinds with an authoritative lookup get their own resolver cache;
// page_slug and chat_anchor resolve locally and never reach a cache.
type IdentityKind string

const (
	IdentityIssueKey    IdentityKind = "issue_key"
	IdentityUserTeam    IdentityKind = "user_team"
	IdentityEpic        IdentityKind = "epic"
	IdentityDisplayName IdentityKind = "display_name"
	// IdentityMeeting maps a meeting's raw id to the ticket key the
	// meeting was held for.
	IdentityMeeting    IdentityKind = "meeting"
	IdentityPageSlug   IdentityKind = "page_slug"
	IdentityChatAnchor IdentityKind = "chat_anchor"
)

// System returns the source system that owns the kind's id space.
func (k IdentityKind) System() Source {
	switch k {
	case IdentityMeeting:
		return SourceMeetings
	case IdentityPageSlug:
		return SourceWiki
	case IdentityChatAnchor:
		return SourceChat
	}
	return SourceTracker
}

// Identity is the canonical identity a raw record resolves to.
type Identity struct {
	Kind        IdentityKind
	Source      Source
	RawID       string
	ResolvedKey string
	Path        ResolutionPath
	ResolvedAt  time.Time
}

// Unresolved reports whether the identity is the unresolved sentinel.
func (i Identity) Unresolved() bool {
	return i.Path == PathNone || i.ResolvedKey == ""
}

// CheckpointStatus is the lifecycle state of a backfill batch.
type CheckpointStatus string

const (
	StatusPending   CheckpointStatus = "pending"
	StatusRunning   CheckpointStatus = "running"
	StatusCompleted CheckpointStatus = "completed"
	StatusFailed    CheckpointStatus = "failed"
)

// Checkpoint is the durable progress row for one backfill batch,
// keyed by (Source, BatchID). Completed checkpoints are terminal.
type Checkpoint struct {
	Source         Source           `json:"source"`
	BatchID        string           `json:"batch_id"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        time.Time        `json:"end_date"`
	Status         CheckpointStatus `json:"status"`
	TotalItems     int              `json:"total_items"`
	ProcessedItems int              `json:"processed_items"`
	IngestedItems  int              `json:"ingested_items"`
	ErrorMessage   string           `json:"error_message,omitempty"`
	StartedAt      time.Time        `json:"started_at"`
	CompletedAt    time.Time        `json:"completed_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Terminal reports whether the checkpoint can no longer advance.
func (c *Checkpoint) Terminal() bool {
	return c.Status == StatusCompleted
}

// SyncStatus records the last successful incremental sync per source.
type SyncStatus struct {
	Source     Source    `json:"source"`
	LastSyncAt time.Time `json:"last_sync_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Stale reports whether the last sync is older than the given age.
func (s *SyncStatus) Stale(maxAge time.Duration) bool {
	return time.Since(s.LastSyncAt) > maxAge
}

// DocumentMetadata is the filterable metadata attached to a stored document.
// AccessList and Public are only ever set for transcript documents.
type DocumentMetadata struct {
	NaturalKey   string    `json:"natural_key"`
	Project      string    `json:"project,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Participants []string  `json:"participants,omitempty"`
	AccessList   []string  `json:"access_list,omitempty"`
	Public       bool      `json:"public,omitempty"`
	Labels       []string  `json:"labels,omitempty"`
}

// Document is one vector-store row.
type Document struct {
	ID        string           `json:"id"`
	Source    Source           `json:"source"`
	Kind      Kind             `json:"kind"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	Embedding []float32        `json:"-"`
	Metadata  DocumentMetadata `json:"metadata"`
}

// DocumentID derives the deterministic document id for a natural key.
// The id is a pure function of (source, natural key): re-ingesting the
// same entity always lands on the same row.
func DocumentID(source Source, naturalKey string) string {
	return fmt.Sprintf("%s:%016x", source, uint64(IDFromContent(naturalKey)))
}

// Match is one vector query hit.
type Match struct {
	Document *Document `json:"document"`
	Score    float32   `json:"score"`
}
