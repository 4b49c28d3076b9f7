package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"time"

	"github.com/poiesic/tributary/ai"
	"github.com/poiesic/tributary/ai/openai"
	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/ingest"
	"github.com/poiesic/tributary/resolve"
	"github.com/poiesic/tributary/source"
	badgerstore "github.com/poiesic/tributary/storage/badger"
	"github.com/poiesic/tributary/vector/local"
)

// samples is a small slice of workplace activity covering every record
// kind. Each record carries an anchor the resolver can use locally, so
// seeding never touches a source API.
var samples = []core.Record{
	core.Issue{
		ID:       "10101",
		Key:      "PAY-101",
		Project:  "PAY",
		Summary:  "Payment retries double-charge on gateway timeout",
		Body:     "When the gateway stalls past 30s the retry fires while the first attempt is still in flight. Customers see two captures for one order.",
		Status:   "In Progress",
		Assignee: "dana",
		Updated:  time.Date(2025, 6, 3, 14, 12, 0, 0, time.UTC),
	},
	core.Issue{
		ID:       "10118",
		Key:      "PAY-118",
		Project:  "PAY",
		Summary:  "Reconcile ledger drift after nightly settlement",
		Body:     "Settlement totals disagree with the ledger by a few cents on high-volume days. Suspect rounding in the fee split.",
		Status:   "Open",
		Assignee: "marco",
		Updated:  time.Date(2025, 6, 5, 9, 40, 0, 0, time.UTC),
	},
	core.Issue{
		ID:       "10130",
		Key:      "PAY-130",
		Project:  "PAY",
		Summary:  "Slow checkout when the fraud service degrades",
		Body:     "Checkout p99 climbs past 8s whenever fraud scoring times out. Needs a circuit breaker with a conservative default.",
		Status:   "Open",
		Assignee: "priya",
		Updated:  time.Date(2025, 6, 9, 16, 5, 0, 0, time.UTC),
	},
	core.Issue{
		ID:       "20052",
		Key:      "AUTH-52",
		Project:  "AUTH",
		Summary:  "Session tokens survive password reset",
		Body:     "Resetting a password does not revoke existing sessions. Old tokens keep working until natural expiry.",
		Status:   "In Review",
		Assignee: "sasha",
		Updated:  time.Date(2025, 6, 4, 11, 25, 0, 0, time.UTC),
	},
	core.Issue{
		ID:       "20061",
		Key:      "AUTH-61",
		Project:  "AUTH",
		Summary:  "Add WebAuthn as a second factor",
		Body:     "Offer platform authenticators alongside TOTP. Fall back to recovery codes when the device is lost.",
		Status:   "Open",
		Assignee: "sasha",
		Updated:  time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC),
	},
	core.Worklog{
		ID:           "w-3301",
		IssueID:      "10101",
		IssueKey:     "PAY-101",
		Author:       "dana",
		AuthorEmail:  "dana@example.com",
		Comment:      "Reproduced the double charge with a 30s gateway stall in staging.",
		TimeSpentSec: 5400,
		Started:      time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC),
	},
	core.Worklog{
		ID:           "w-3318",
		IssueID:      "10118",
		IssueKey:     "PAY-118",
		Author:       "marco",
		AuthorEmail:  "marco@example.com",
		Comment:      "Traced the drift to banker's rounding in the fee split. Drafting a fix.",
		TimeSpentSec: 7200,
		Started:      time.Date(2025, 6, 6, 13, 30, 0, 0, time.UTC),
	},
	core.Worklog{
		ID:           "w-3352",
		IssueID:      "20052",
		IssueKey:     "AUTH-52",
		Author:       "sasha",
		AuthorEmail:  "sasha@example.com",
		Comment:      "Audited the session store. Reset now queues a revocation sweep.",
		TimeSpentSec: 10800,
		Started:      time.Date(2025, 6, 7, 10, 15, 0, 0, time.UTC),
	},
	core.Transcript{
		ID:          "mt-501",
		Title:       "PAY-101 incident review",
		Started:     time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC),
		DurationSec: 2700,
		Segments:    48,
		Attendees:   []string{"dana", "priya", "marco"},
		SharedWith:  []string{"finance-leads"},
		Body:        "dana: the retry fired while the capture was still pending. priya: we need idempotency keys on the gateway call. marco: settlement will also need a backfill for the affected orders.",
	},
	core.Transcript{
		ID:          "mt-514",
		Title:       "AUTH-52 security review",
		Started:     time.Date(2025, 6, 8, 13, 0, 0, 0, time.UTC),
		DurationSec: 1800,
		Segments:    31,
		Attendees:   []string{"sasha", "dana"},
		Public:      true,
		Body:        "sasha: password reset must revoke every live session. dana: agreed, and the mobile refresh tokens too.",
	},
	core.Page{
		ID:      "pg-8801",
		Slug:    "payment-retry-runbook",
		Space:   "ENG",
		Title:   "Payment retry runbook",
		Body:    "Steps for diagnosing duplicate captures: check the gateway latency dashboard, then the retry queue depth. Never replay a capture without an idempotency key.",
		Author:  "dana",
		Updated: time.Date(2025, 6, 5, 8, 0, 0, 0, time.UTC),
	},
	core.Page{
		ID:      "pg-8824",
		Slug:    "auth-threat-model",
		Space:   "SEC",
		Title:   "Authentication threat model",
		Body:    "Covers session fixation, token replay after reset, and recovery code exhaustion. Reviewed quarterly by the security guild.",
		Author:  "sasha",
		Updated: time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC),
	},
	core.Page{
		ID:      "pg-8850",
		Slug:    "oncall-handbook",
		Space:   "ENG",
		Title:   "On-call handbook",
		Body:    "Escalation paths, paging etiquette, and the settlement freeze procedure for payment incidents.",
		Author:  "marco",
		Updated: time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC),
	},
	core.Message{
		ID:      "m-70001",
		Channel: "#payments",
		Author:  "priya",
		Text:    "Heads up: fraud scoring is timing out again, checkout latency alarms are firing.",
		Posted:  time.Date(2025, 6, 9, 15, 45, 0, 0, time.UTC),
	},
	core.Message{
		ID:      "m-70002",
		Channel: "#payments",
		Author:  "dana",
		Text:    "PAY-101 fix is in review, idempotency keys on every gateway call now.",
		Posted:  time.Date(2025, 6, 10, 11, 20, 0, 0, time.UTC),
	},
	core.Message{
		ID:      "m-70003",
		Channel: "#payments",
		Author:  "marco",
		Text:    "Ledger drift backfill finished, settlement matches to the cent for May.",
		Posted:  time.Date(2025, 6, 11, 8, 5, 0, 0, time.UTC),
	},
	core.Message{
		ID:      "m-70010",
		Channel: "#auth",
		Author:  "sasha",
		Text:    "Session revocation sweep ships tomorrow, resets will kill live tokens.",
		Posted:  time.Date(2025, 6, 10, 17, 0, 0, 0, time.UTC),
	},
	core.Message{
		ID:      "m-70011",
		Channel: "#auth",
		Author:  "dana",
		Text:    "WebAuthn prototype works on the test devices, recovery codes still pending.",
		Posted:  time.Date(2025, 6, 11, 10, 40, 0, 0, time.UTC),
	},
}

var seedFileName = flag.String("src", "", "file of seed data")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// messagesFromFile returns an iterator turning each line of a file into
// a chat message in the seed channel.
func messagesFromFile(filename string) (iter.Seq[core.Record], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(core.Record) bool) {
		defer f.Close()
		posted := time.Now().UTC().Add(-24 * time.Hour)
		scanner := bufio.NewScanner(f)
		for i := 0; scanner.Scan(); i++ {
			msg := core.Message{
				ID:      fmt.Sprintf("seed-%04d", i+1),
				Channel: "#seed",
				Author:  "seeder",
				Text:    scanner.Text(),
				Posted:  posted.Add(time.Duration(i) * time.Minute),
			}
			if !yield(msg) {
				return
			}
		}
	}, nil
}

// recordsFromSlice returns an iterator over a slice of records.
func recordsFromSlice(records []core.Record) iter.Seq[core.Record] {
	return func(yield func(core.Record) bool) {
		for _, record := range records {
			if !yield(record) {
				return
			}
		}
	}
}

// ingestBatched resolves records from the iterator and writes them to
// the sink in batches.
func ingestBatched(ctx context.Context, resolver *resolve.Resolver, sink *ingest.Sink, records iter.Seq[core.Record], batchSize int) error {
	batch := make([]ingest.Resolved, 0, batchSize)

	for record := range records {
		identity, err := resolver.Resolve(ctx, record)
		if err != nil {
			return err
		}

		batch = append(batch, ingest.Resolved{Record: record, Identity: identity})
		if len(batch) == batchSize {
			if _, err := sink.Upsert(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	// Process any remaining records
	if len(batch) > 0 {
		if _, err := sink.Upsert(ctx, batch); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	backend, err := badgerstore.OpenBackend("./activity_db", false)
	if err != nil {
		panic(err)
	}
	defer backend.Close()

	store, err := local.New(backend)
	if err != nil {
		panic(err)
	}

	embedder, err := openai.NewEmbedder(ai.DefaultConfig())
	if err != nil {
		panic(err)
	}

	// All samples resolve locally; the lookup router never fires.
	cache, err := resolve.NewCache(&source.Router{})
	if err != nil {
		panic(err)
	}
	resolver, err := resolve.NewResolver(cache)
	if err != nil {
		panic(err)
	}

	sink, err := ingest.NewSink(store, embedder)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()

	// Determine source of seed data
	var records iter.Seq[core.Record]
	if seedFileName != nil && *seedFileName != "" {
		records, err = messagesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		records = recordsFromSlice(samples)
	}

	// Ingest in batches of 5
	if err := ingestBatched(ctx, resolver, sink, records, 5); err != nil {
		panic(err)
	}
}
