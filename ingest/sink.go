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


package ingest

import (
	"context"
	"log/slog"
	"slices"
	"unicode/utf8"

	"github.com/poiesic/tributary/ai"
	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/retry"
	"github.com/poiesic/tributary/vector"
)

const (
	// defaultMaxEmbedChars bounds embedding input; longer content is
	// truncated rather than failed.
	defaultMaxEmbedChars = 8000

	// defaultBatchSize is the store upsert batch size.
	defaultBatchSize = 100
)

// Resolved pairs a fetched record with the identity it resolved to.
type Resolved struct {
	Record   core.Record
	Identity core.Identity
}

// Sink converts resolved records into embedded documents and writes
// them to the vector store in fixed-size batches. Partial success is
// preferred over all-or-nothing: a record that cannot be embedded is
// skipped with a warning, and a failed store batch is logged and
// excluded from the returned count while later batches proceed.
type Sink struct {
	store         vector.Store
	embedder      ai.Embedder
	enricher      *Enricher
	retry         retry.Config
	maxEmbedChars int
	batchSize     int
	logger        *slog.Logger
}

// Option configures a Sink.
type Option func(*Sink) error

// WithBatchSize sets the store upsert batch size. Default is 100.
func WithBatchSize(size int) Option {
	return func(s *Sink) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		s.batchSize = size
		return nil
	}
}

// WithMaxEmbedChars bounds the text length sent to the embedder.
// Default is 8000.
func WithMaxEmbedChars(limit int) Option {
	return func(s *Sink) error {
		if limit < 1 {
			return ErrInvalidMaxEmbedChars
		}
		s.maxEmbedChars = limit
		return nil
	}
}

// WithEnricher attaches best-effort document enrichment.
func WithEnricher(enricher *Enricher) Option {
	return func(s *Sink) error {
		s.enricher = enricher
		return nil
	}
}

// WithRetry sets the envelope applied to embedding and upsert calls.
// Default is retry.DefaultConfig().
func WithRetry(cfg retry.Config) Option {
	return func(s *Sink) error {
		s.retry = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "ingest-sink")
		return nil
	}
}

// NewSink creates an ingestion sink.
func NewSink(store vector.Store, embedder ai.Embedder, opts ...Option) (*Sink, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Sink{
		store:         store,
		embedder:      embedder,
		retry:         retry.DefaultConfig(),
		maxEmbedChars: defaultMaxEmbedChars,
		batchSize:     defaultBatchSize,
		logger:        slog.Default().With("component", "ingest-sink"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Upsert builds documents for the given records, embeds them, and
// writes them to the store. Unresolved records are skipped; callers
// count them before handing the batch over. Returns the number of
// documents actually written.
func (s *Sink) Upsert(ctx context.Context, records []Resolved) (int, error) {
	docs := make([]core.Document, 0, len(records))
	for _, r := range records {
		if r.Record == nil {
			continue
		}
		if r.Identity.Unresolved() {
			s.logger.Debug("skipping unresolved record", "record_id", r.Record.RecordID())
			continue
		}

		doc, err := core.BuildDocument(r.Record, r.Identity)
		if err != nil {
			s.logger.Warn("skipping malformed record",
				"record_id", r.Record.RecordID(), "err", err)
			continue
		}

		if s.enricher != nil {
			s.enricher.Enrich(ctx, r.Record, &doc)
		}
		docs = append(docs, doc)
	}

	return s.UpsertDocuments(ctx, docs)
}

// UpsertDocuments embeds documents that lack an embedding and writes
// everything in batches. Documents arriving with a precomputed
// embedding are not re-embedded.
func (s *Sink) UpsertDocuments(ctx context.Context, docs []core.Document) (int, error) {
	embedded := s.embedMissing(ctx, docs)

	ingested := 0
	for batch := range slices.Chunk(embedded, s.batchSize) {
		if err := ctx.Err(); err != nil {
			return ingested, err
		}

		err := retry.Do(ctx, s.retry, func() error {
			return s.store.Upsert(ctx, batch)
		})
		if err != nil {
			s.logger.Error("batch upsert failed", "err", err, "batch_size", len(batch))
			continue
		}
		ingested += len(batch)
	}
	return ingested, nil
}

// embedMissing fills in absent embeddings one document at a time,
// dropping documents whose embedding cannot be produced.
func (s *Sink) embedMissing(ctx context.Context, docs []core.Document) []core.Document {
	kept := docs[:0]
	for _, doc := range docs {
		if len(doc.Embedding) > 0 {
			kept = append(kept, doc)
			continue
		}

		var embedding []float32
		err := retry.Do(ctx, s.retry, func() error {
			var embedErr error
			embedding, embedErr = s.embedder.EmbedText(ctx, s.embedText(doc))
			return embedErr
		})
		if err != nil {
			s.logger.Warn("skipping document, embedding failed",
				"document_id", doc.ID, "err", err)
			continue
		}

		doc.Embedding = embedding
		kept = append(kept, doc)
	}
	return kept
}

// embedText selects and bounds the text sent to the embedder.
func (s *Sink) embedText(doc core.Document) string {
	text := doc.Content
	if text == "" {
		text = doc.Title
	}
	if len(text) > s.maxEmbedChars {
		cut := s.maxEmbedChars
		// Back up so the cut never splits a multi-byte rune.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}
