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


package source

import (
	"context"

	"github.com/poiesic/tributary/core"
)

// Iterator walks a record stream page by page. Callers loop Next, read
// each value with Record, then check Err once Next returns false:
//
//	for it.Next() {
//		process(it.Record())
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator interface {
	Next() bool
	Record() core.Record
	Err() error
	Close() error
}

// fetchPage loads one page starting at the given offset and reports the
// total number of records the remote claims for the window.
type fetchPage func(ctx context.Context, startAt int) ([]core.Record, int, error)

// pageIterator fetches pages lazily; a page is only requested when the
// previous one is exhausted.
type pageIterator struct {
	ctx   context.Context
	fetch fetchPage

	startAt int
	total   int
	current []core.Record
	index   int
	done    bool
	closed  bool
	err     error
}

func newPageIterator(ctx context.Context, fetch fetchPage) *pageIterator {
	return &pageIterator{ctx: ctx, fetch: fetch}
}

func (it *pageIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	if it.index < len(it.current) {
		return true
	}
	if it.done {
		return false
	}

	page, total, err := it.fetch(it.ctx, it.startAt)
	if err != nil {
		it.err = err
		return false
	}

	it.total = total
	it.current = page
	it.index = 0
	it.startAt += len(page)
	if len(page) == 0 || it.startAt >= total {
		it.done = true
	}

	return it.index < len(it.current)
}

func (it *pageIterator) Record() core.Record {
	if it.index < len(it.current) {
		rec := it.current[it.index]
		it.index++
		return rec
	}
	return nil
}

func (it *pageIterator) Err() error { return it.err }

func (it *pageIterator) Close() error {
	it.closed = true
	it.current = nil
	return nil
}

// chainIterator drains each inner iterator in turn.
type chainIterator struct {
	iters []Iterator
	pos   int
}

// Chain concatenates iterators into one stream. An error in any inner
// iterator stops the chain.
func Chain(iters ...Iterator) Iterator {
	return &chainIterator{iters: iters}
}

func (it *chainIterator) Next() bool {
	for it.pos < len(it.iters) {
		if it.iters[it.pos].Next() {
			return true
		}
		if it.iters[it.pos].Err() != nil {
			return false
		}
		it.pos++
	}
	return false
}

func (it *chainIterator) Record() core.Record {
	if it.pos < len(it.iters) {
		return it.iters[it.pos].Record()
	}
	return nil
}

func (it *chainIterator) Err() error {
	if it.pos < len(it.iters) {
		return it.iters[it.pos].Err()
	}
	return nil
}

func (it *chainIterator) Close() error {
	var first error
	for _, inner := range it.iters {
		if err := inner.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// sliceIterator serves records from memory. Used by tests and the seeder.
type sliceIterator struct {
	records []core.Record
	index   int
}

// FromRecords wraps an in-memory record list in an Iterator.
func FromRecords(records ...core.Record) Iterator {
	return &sliceIterator{records: records}
}

func (it *sliceIterator) Next() bool { return it.index < len(it.records) }

func (it *sliceIterator) Record() core.Record {
	if it.index < len(it.records) {
		rec := it.records[it.index]
		it.index++
		return rec
	}
	return nil
}

func (it *sliceIterator) Err() error   { return nil }
func (it *sliceIterator) Close() error { return nil }
