package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/tributary/ai"
	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/retry"
	"github.com/poiesic/tributary/vector"
)

const (
	// DefaultMinScore is the similarity floor applied when no option
	// overrides it. Hits scoring below it never reach the caller.
	DefaultMinScore = 0.35

	// DefaultLimit caps the result count when a request does not set one.
	DefaultLimit = 10

	// candidateFactor over-fetches store hits relative to the limit so
	// verbatim boosting can promote rows into the final page.
	candidateFactor = 3

	// verbatimBoost is added to a hit containing every query word.
	verbatimBoost = 0.3
)

// Options narrow a search. The zero value searches the whole corpus
// with the default limit.
type Options struct {
	// Sources restricts hits to the given source systems. Empty means all.
	Sources []core.Source `json:"sources,omitempty"`

	// Kinds restricts hits to the given record kinds. Empty means all.
	Kinds []core.Kind `json:"kinds,omitempty"`

	// Project restricts hits to one project key.
	Project string `json:"project,omitempty"`

	// Since and Until bound the document timestamp. Zero bounds are open.
	Since time.Time `json:"since,omitempty"`
	Until time.Time `json:"until,omitempty"`

	// Principal limits hits to documents that principal may read.
	// Empty skips access checks entirely.
	Principal string `json:"principal,omitempty"`

	// Limit caps the result count. Values below 1 mean DefaultLimit.
	Limit int `json:"limit,omitempty"`
}

// Searcher answers natural-language queries over the document store.
type Searcher struct {
	store    vector.Store
	embedder ai.Embedder
	minScore float32
	retry    retry.Config
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithMinScore sets the similarity floor. Default is DefaultMinScore.
func WithMinScore(score float32) Option {
	return func(s *Searcher) error {
		if score < 0 || score > 1 {
			return ErrInvalidMinScore
		}
		s.minScore = score
		return nil
	}
}

// WithRetry sets the envelope applied to embedding and store calls.
// Default is retry.DefaultConfig().
func WithRetry(cfg retry.Config) Option {
	return func(s *Searcher) error {
		s.retry = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "search")
		return nil
	}
}

// NewSearcher creates a searcher over the given store and embedder.
func NewSearcher(store vector.Store, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		store:    store,
		embedder: embedder,
		minScore: DefaultMinScore,
		retry:    retry.DefaultConfig(),
		logger:   slog.Default().With("component", "search"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Search embeds the query text and returns the best-scoring documents
// that pass the options' filters, ranked by score descending.
func (s *Searcher) Search(ctx context.Context, query string, opts Options) ([]core.Match, error) {
	return s.SearchWithMonitor(ctx, query, opts, nil)
}

// SearchWithMonitor runs Search with stage callbacks.
// The monitor receives intermediate results as the search progresses.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, opts Options, monitor Monitor) ([]core.Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	var embedding []float32
	err := retry.Do(ctx, s.retry, func() error {
		var embedErr error
		embedding, embedErr = s.embedder.EmbedText(ctx, query)
		return embedErr
	})
	if err != nil {
		s.logger.Error("query embedding failed", "err", err)
		return nil, fmt.Errorf("embed query: %w", err)
	}
	monitor.AfterQueryEmbedding(len(embedding))

	limit := opts.Limit
	if limit < 1 {
		limit = DefaultLimit
	}

	// Boosting can promote a hit past the raw similarity ordering, so
	// the store query over-fetches and the trim happens after rescoring.
	candidates, err := s.gather(ctx, embedding, opts, limit*candidateFactor)
	if err != nil {
		s.logger.Error("vector query failed", "err", err)
		return nil, fmt.Errorf("query store: %w", err)
	}
	monitor.AfterVectorQuery(candidates)

	results := make([]core.Match, 0, len(candidates))
	for _, match := range candidates {
		if match.Document == nil || match.Score < s.minScore {
			continue
		}
		if containsAllQueryWords(match.Document.Title+"\n"+match.Document.Content, query) {
			match.Score += verbatimBoost
			monitor.VerbatimHit(match.Document)
		}
		results = append(results, match)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	monitor.Finish(results)

	return results, nil
}

// gather runs the store query. The store filters on a single source,
// so multi-source requests fan out one query per source; a document
// lives under exactly one source, making the result sets disjoint.
func (s *Searcher) gather(ctx context.Context, embedding []float32, opts Options, topK int) ([]core.Match, error) {
	filter := vector.Filter{
		Kinds:        opts.Kinds,
		Project:      opts.Project,
		Since:        opts.Since,
		Until:        opts.Until,
		AccessibleBy: opts.Principal,
	}

	if len(opts.Sources) == 0 {
		return s.query(ctx, embedding, filter, topK)
	}

	var merged []core.Match
	queried := make(map[core.Source]bool, len(opts.Sources))
	for _, src := range opts.Sources {
		if queried[src] {
			continue
		}
		queried[src] = true

		filter.Source = src
		matches, err := s.query(ctx, embedding, filter, topK)
		if err != nil {
			return nil, err
		}
		merged = append(merged, matches...)
	}
	return merged, nil
}

func (s *Searcher) query(ctx context.Context, embedding []float32, filter vector.Filter, topK int) ([]core.Match, error) {
	var matches []core.Match
	err := retry.Do(ctx, s.retry, func() error {
		var queryErr error
		matches, queryErr = s.store.Query(ctx, embedding, filter, topK)
		return queryErr
	})
	return matches, err
}
