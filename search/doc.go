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


// Package search answers natural-language queries over the ingested
// corpus.
//
// A query is embedded and run against the vector store with the
// caller's source, kind, time and access filters applied. Hits below
// the similarity floor are dropped, hits containing every meaningful
// query word receive a small verbatim boost, and the survivors are
// ranked by final score.
package search
