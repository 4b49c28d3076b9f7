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


package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/tributary/ai"
	"github.com/poiesic/tributary/ai/openai"
	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/search"
	badgerstore "github.com/poiesic/tributary/storage/badger"
	"github.com/poiesic/tributary/vector/local"
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
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

	searcher, err := search.NewSearcher(store, embedder)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	var results []core.Match
	if len(os.Args) > 1 {
		results, err = searcher.Search(ctx, strings.Join(os.Args[1:], " "), search.Options{Limit: 5})
	} else {
		results, err = searcher.Search(ctx, "duplicate payment charges", search.Options{Limit: 5})
	}
	if err != nil {
		panic(err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: '%s' (%s)[%0.3f]\n", i, hit.Document.Title, hit.Document.ID, hit.Score)
	}
}
