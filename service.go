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


package tributary

import (
	"errors"
	"io"
	"log/slog"

	"github.com/poiesic/tributary/ai"
	"github.com/poiesic/tributary/ai/openai"
	"github.com/poiesic/tributary/backfill"
	"github.com/poiesic/tributary/config"
	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/dedup"
	"github.com/poiesic/tributary/ingest"
	"github.com/poiesic/tributary/resolve"
	"github.com/poiesic/tributary/retry"
	"github.com/poiesic/tributary/search"
	"github.com/poiesic/tributary/source"
	"github.com/poiesic/tributary/storage"
	badgerstore "github.com/poiesic/tributary/storage/badger"
	"github.com/poiesic/tributary/vector"
	"github.com/poiesic/tributary/vector/local"
	"github.com/poiesic/tributary/vector/pg"
)

// ErrNoSources is returned when the configuration enables no source
// connectors; a service without sources has nothing to ingest.
var ErrNoSources = errors.New("tributary: no sources configured")

// Service wires the full pipeline from one configuration: durable
// repositories, vector store, embedder, source connectors, resolver
// cache, ingestion sink, and backfill orchestrator. One Service per
// process; the resolver cache and throttle live exactly as long as it
// does.
type Service struct {
	backend      *badgerstore.Backend
	checkpoints  storage.CheckpointRepository
	syncs        storage.SyncStatusRepository
	identities   storage.IdentityRepository
	store        vector.Store
	embedder     ai.Embedder
	connectors   source.Registry
	cache        *resolve.Cache
	orchestrator *backfill.Orchestrator
	retry        retry.Config
	logger       *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	embedder ai.Embedder
	progress io.Writer
}

// WithEmbedder substitutes the embedding provider, bypassing the
// configured OpenAI-compatible endpoint. Used by tests.
func WithEmbedder(embedder ai.Embedder) ServiceOption {
	return func(o *serviceOptions) {
		o.embedder = embedder
	}
}

// WithProgressWriter sets where batch progress lines are written,
// typically os.Stderr for CLI runs. Default discards them.
func WithProgressWriter(w io.Writer) ServiceOption {
	return func(o *serviceOptions) {
		o.progress = w
	}
}

// NewService builds a service from the configuration. The badger
// backend always opens (checkpoints, sync marks, and the identity cache
// live there even when documents go to Postgres); the vector store
// follows cfg.Store.Backend.
func NewService(cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &serviceOptions{progress: io.Discard}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badgerstore.OpenBackend(cfg.Store.Path, cfg.Store.Path == "")
	if err != nil {
		return nil, err
	}

	checkpoints := badgerstore.NewCheckpointRepository(backend)
	syncs := badgerstore.NewSyncStatusRepository(backend)
	identities := badgerstore.NewIdentityRepository(backend)

	store, err := openStore(cfg, backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(ai.NewConfig(
			ai.WithHost(cfg.Embedder.BaseURL),
			ai.WithModel(cfg.Embedder.Model),
			ai.WithToken(cfg.Embedder.APIKey()),
			ai.WithDimensions(cfg.Store.Dimension),
		))
		if err != nil {
			store.Close()
			backend.Close()
			return nil, err
		}
	}

	retryCfg := retryConfig(cfg.Retry)

	connectors, router, err := buildConnectors(cfg, retryCfg)
	if err != nil {
		store.Close()
		backend.Close()
		return nil, err
	}

	cache, err := resolve.NewCache(router,
		resolve.WithMinInterval(cfg.Resolver.MinIntervalDuration()),
		resolve.WithRepository(identities),
	)
	if err != nil {
		store.Close()
		backend.Close()
		return nil, err
	}
	resolver, err := resolve.NewResolver(cache)
	if err != nil {
		store.Close()
		backend.Close()
		return nil, err
	}

	enricher, err := ingest.NewEnricher(cache)
	if err != nil {
		store.Close()
		backend.Close()
		return nil, err
	}
	sink, err := ingest.NewSink(store, embedder,
		ingest.WithBatchSize(cfg.Backfill.BatchSize),
		ingest.WithMaxEmbedChars(cfg.Embedder.MaxChars),
		ingest.WithRetry(retryCfg),
		ingest.WithEnricher(enricher),
	)
	if err != nil {
		store.Close()
		backend.Close()
		return nil, err
	}

	engine, err := dedup.NewEngine()
	if err != nil {
		store.Close()
		backend.Close()
		return nil, err
	}

	orchestrator, err := backfill.NewOrchestrator(connectors, resolver, sink, checkpoints,
		backfill.WithSyncStatus(syncs),
		backfill.WithDedup(engine),
		backfill.WithCheckpointInterval(cfg.Backfill.CheckpointInterval),
		backfill.WithLookback(cfg.Resolver.LookbackDuration()),
		backfill.WithProgressWriter(options.progress),
	)
	if err != nil {
		store.Close()
		backend.Close()
		return nil, err
	}

	return &Service{
		backend:      backend,
		checkpoints:  checkpoints,
		syncs:        syncs,
		identities:   identities,
		store:        store,
		embedder:     embedder,
		connectors:   connectors,
		cache:        cache,
		orchestrator: orchestrator,
		retry:        retryCfg,
		logger:       slog.Default(),
	}, nil
}

// openStore selects the vector store backend. The badger store shares
// the service's backend; the Postgres store owns its own connections.
func openStore(cfg *config.Config, backend *badgerstore.Backend) (vector.Store, error) {
	if cfg.Store.Backend == "postgres" {
		return pg.New(cfg.Store.DSN, cfg.Store.Dimension)
	}
	return local.New(backend)
}

// retryConfig maps the configured envelope onto the default one,
// keeping the default factor, jitter, and retriable status set.
func retryConfig(rc config.RetryConfig) retry.Config {
	cfg := retry.DefaultConfig()
	cfg.MaxRetries = rc.MaxRetries
	cfg.BaseDelay = rc.BaseDelayDuration()
	cfg.MaxDelay = rc.MaxDelayDuration()
	return cfg
}

// buildConnectors constructs one connector per enabled source section
// and the lookup router over the tracker and meetings clients.
func buildConnectors(cfg *config.Config, retryCfg retry.Config) (source.Registry, *source.Router, error) {
	connectors := make(source.Registry)
	router := &source.Router{}

	for name, sc := range cfg.Sources {
		if !sc.IsEnabled() {
			continue
		}

		client, err := source.NewClient(source.ClientConfig{
			BaseURL:   sc.BaseURL,
			Token:     sc.Token(),
			RateLimit: sc.RateLimit,
			Retry:     retryCfg,
		})
		if err != nil {
			return nil, nil, err
		}

		switch core.Source(name) {
		case core.SourceTracker:
			tracker := source.NewTracker(client).WithPageSize(sc.PageSize)
			connectors[core.SourceTracker] = tracker
			router.Tracker = tracker
		case core.SourceMeetings:
			meetings := source.NewMeetings(client).WithPageSize(sc.PageSize)
			connectors[core.SourceMeetings] = meetings
			router.Meetings = meetings
		case core.SourceWiki:
			connectors[core.SourceWiki] = source.NewWiki(client, sc.Space).WithPageSize(sc.PageSize)
		case core.SourceChat:
			connectors[core.SourceChat] = source.NewChat(client, sc.Channels).WithPageSize(sc.PageSize)
		}
	}

	if len(connectors) == 0 {
		return nil, nil, ErrNoSources
	}
	return connectors, router, nil
}

// Close releases the service's resources: the vector store first, then
// the shared badger backend.
func (s *Service) Close() error {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing vector store", "err", err)
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Orchestrator returns the backfill orchestrator.
func (s *Service) Orchestrator() *backfill.Orchestrator {
	return s.orchestrator
}

// CheckpointRepository returns the durable checkpoint rows.
func (s *Service) CheckpointRepository() storage.CheckpointRepository {
	return s.checkpoints
}

// SyncStatusRepository returns the per-source sync marks.
func (s *Service) SyncStatusRepository() storage.SyncStatusRepository {
	return s.syncs
}

// Store returns the vector document store.
func (s *Service) Store() vector.Store {
	return s.store
}

// Cache returns the shared resolver cache.
func (s *Service) Cache() *resolve.Cache {
	return s.cache
}

// Connectors returns the configured source registry.
func (s *Service) Connectors() source.Registry {
	return s.connectors
}

// NewSearcher creates a searcher over the service's store and embedder.
func (s *Service) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	merged := append([]search.Option{search.WithRetry(s.retry)}, opts...)
	return search.NewSearcher(s.store, s.embedder, merged...)
}
