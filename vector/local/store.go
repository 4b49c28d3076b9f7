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


package local

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/storage"
	badgerstore "github.com/poiesic/tributary/storage/badger"
	"github.com/poiesic/tributary/vector"
)

// documentPrefix namespaces vector documents inside the shared backend.
const documentPrefix = "vecdoc"

// Store is a BadgerDB-backed vector store. Queries scan every stored
// document and score by dot product, which preserves cosine ranking
// because embeddings are normalized. Fine for embedded deployments;
// past a few hundred thousand documents use the Postgres store.
type Store struct {
	backend *badgerstore.Backend
	logger  *slog.Logger
}

var _ vector.Store = (*Store)(nil)

// New creates a vector store on top of an open Badger backend. The
// backend is shared with the checkpoint repositories and stays owned
// by the caller.
func New(backend *badgerstore.Backend) (*Store, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &Store{
		backend: backend,
		logger:  slog.Default().With("component", "vector-local"),
	}, nil
}

// Upsert writes documents keyed by id, replacing existing rows.
func (s *Store) Upsert(ctx context.Context, docs []core.Document) error {
	if len(docs) == 0 {
		return nil
	}
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for i := range docs {
			data := storage.MarshalDocument(&docs[i])
			if err := tx.Set(makeDocumentKey(docs[i].ID), data); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	s.logger.Debug("documents upserted", "count", len(docs))
	return nil
}

// Query scans the document prefix, applies the filter, and scores the
// remainder by dot product against the query embedding.
func (s *Store) Query(ctx context.Context, embedding []float32, filter vector.Filter, topK int) ([]core.Match, error) {
	if len(embedding) == 0 {
		return nil, vector.ErrEmbeddingRequired
	}
	if topK <= 0 {
		topK = vector.DefaultTopK
	}

	var matches []core.Match
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var doc *core.Document
			err := item.Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if doc == nil || len(doc.Embedding) == 0 {
				continue
			}
			if !filter.Matches(doc) {
				continue
			}

			matches = append(matches, core.Match{
				Document: doc,
				Score:    dotProduct(embedding, doc.Embedding),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(matches, func(a, b core.Match) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Get returns the document stored under id.
func (s *Store) Get(ctx context.Context, id string) (*core.Document, error) {
	var doc *core.Document
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			doc, err = storage.UnmarshalDocument(val)
			return err
		})
	}, false)
	if err == badger.ErrKeyNotFound {
		return nil, vector.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Close is a no-op; the shared backend is closed by its owner.
func (s *Store) Close() error {
	return nil
}

// makeDocumentKey generates the storage key for a document row.
func makeDocumentKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentPrefix, id))
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
