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
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/tributary"
	"github.com/poiesic/tributary/backfill"
	"github.com/poiesic/tributary/config"
	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/search"
	"github.com/poiesic/tributary/server"
)

const dateLayout = "2006-01-02"

func main() {
	app := &cli.App{
		Name:  "tributary",
		Usage: "Incremental ingestion pipeline for workplace activity records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   "tributary.yaml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serveCommand,
			},
			{
				Name:   "backfill",
				Usage:  "Backfill one source over a date window",
				Action: backfillCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "Source to backfill (tracker, meetings, wiki, chat)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "days",
						Usage: "Days back from now when no explicit window is given",
						Value: 30,
					},
					&cli.StringFlag{
						Name:  "from",
						Usage: "Window start date (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "to",
						Usage: "Window end date (YYYY-MM-DD, defaults to now)",
					},
					&cli.StringFlag{
						Name:  "batch-id",
						Usage: "Batch id to run under (defaults to one derived from the window)",
					},
					&cli.IntFlag{
						Name:  "chunk-days",
						Usage: "Split the window into chunks of at most this many days",
					},
				},
			},
			{
				Name:   "sync",
				Usage:  "Incrementally sync sources from their last sync mark",
				Action: syncCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   "Sync only this source (default: all enabled sources)",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show batch checkpoints and sync marks",
				Action: statusCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   "Limit checkpoints to one source",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search ingested documents",
				ArgsUsage: "query...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "source",
						Usage: "Restrict hits to a source (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "kind",
						Usage: "Restrict hits to a record kind (repeatable)",
					},
					&cli.StringFlag{
						Name:  "project",
						Usage: "Restrict hits to one project key",
					},
					&cli.StringFlag{
						Name:  "principal",
						Usage: "Only return documents this principal may read",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Print search stages to stderr",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadService builds the full pipeline from the configured file.
func loadService(c *cli.Context, opts ...tributary.ServiceOption) (*tributary.Service, *config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}

	svc, err := tributary.NewService(cfg, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build service: %w", err)
	}
	return svc, cfg, nil
}

func serveCommand(c *cli.Context) error {
	svc, cfg, err := loadService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	tasks, err := server.NewTaskRegistry(svc.Orchestrator().Run, cfg.Server.PoolSize)
	if err != nil {
		return fmt.Errorf("failed to create task registry: %w", err)
	}
	defer tasks.Release()

	searcher, err := svc.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	handlers, err := server.NewHandlers(tasks, searcher,
		svc.CheckpointRepository(), svc.SyncStatusRepository(), svc.Store())
	if err != nil {
		return fmt.Errorf("failed to create handlers: %w", err)
	}

	srv, err := server.New(cfg.Server.Addr, handlers)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

func backfillCommand(c *cli.Context) error {
	ctx := context.Background()

	src := core.Source(c.String("source"))
	from, to, err := parseWindow(c)
	if err != nil {
		return err
	}

	batchID := c.String("batch-id")
	if batchID == "" {
		batchID = defaultBatchID(src, from, to)
	}

	svc, cfg, err := loadService(c, tributary.WithProgressWriter(os.Stderr))
	if err != nil {
		return err
	}
	defer svc.Close()

	fmt.Fprintf(os.Stderr, "Source: %s\n", src)
	fmt.Fprintf(os.Stderr, "Window: %s to %s\n", from.Format(dateLayout), to.Format(dateLayout))
	fmt.Fprintf(os.Stderr, "Batch: %s\n", batchID)
	fmt.Fprintln(os.Stderr)

	if chunkDays := c.Int("chunk-days"); chunkDays > 0 {
		results, err := svc.Orchestrator().RunChunked(ctx, src, batchID, from, to,
			chunkDays, cfg.Backfill.ChunkPauseDuration())
		if err != nil {
			return fmt.Errorf("backfill failed: %w", err)
		}
		for _, result := range results {
			printResult(result)
		}
		return nil
	}

	result, err := svc.Orchestrator().Run(ctx, backfill.Job{
		Source:  src,
		BatchID: batchID,
		From:    from,
		To:      to,
	})
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}
	printResult(result)
	return nil
}

func syncCommand(c *cli.Context) error {
	ctx := context.Background()

	svc, _, err := loadService(c, tributary.WithProgressWriter(os.Stderr))
	if err != nil {
		return err
	}
	defer svc.Close()

	var sources []core.Source
	if name := c.String("source"); name != "" {
		sources = append(sources, core.Source(name))
	} else {
		for _, src := range core.Sources {
			if _, err := svc.Connectors().Connector(src); err == nil {
				sources = append(sources, src)
			}
		}
	}

	for _, src := range sources {
		result, err := svc.Orchestrator().RunIncremental(ctx, src)
		if err != nil {
			return fmt.Errorf("sync %s failed: %w", src, err)
		}
		printResult(result)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	ctx := context.Background()

	svc, _, err := loadService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	checkpoints, err := svc.CheckpointRepository().ListCheckpoints(ctx, core.Source(c.String("source")))
	if err != nil {
		return fmt.Errorf("failed to list checkpoints: %w", err)
	}

	fmt.Println("Batches:")
	if len(checkpoints) == 0 {
		fmt.Println("  none recorded")
	}
	for _, cp := range checkpoints {
		fmt.Printf("  %-9s %-34s %-10s %d/%d processed, %d ingested\n",
			cp.Source, cp.BatchID, cp.Status, cp.ProcessedItems, cp.TotalItems, cp.IngestedItems)
		if cp.ErrorMessage != "" {
			fmt.Printf("            error: %s\n", cp.ErrorMessage)
		}
	}

	statuses, err := svc.SyncStatusRepository().ListSyncStatuses(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sync marks: %w", err)
	}

	fmt.Println("Sync marks:")
	if len(statuses) == 0 {
		fmt.Println("  none recorded")
	}
	for _, status := range statuses {
		fmt.Printf("  %-9s last synced %s\n", status.Source, status.LastSyncAt.Format(time.RFC3339))
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a query is required")
	}

	svc, _, err := loadService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	searcher, err := svc.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	opts := search.Options{
		Project:   c.String("project"),
		Principal: c.String("principal"),
		Limit:     c.Int("limit"),
	}
	for _, name := range c.StringSlice("source") {
		opts.Sources = append(opts.Sources, core.Source(name))
	}
	for _, name := range c.StringSlice("kind") {
		opts.Kinds = append(opts.Kinds, core.Kind(name))
	}

	var monitor search.Monitor
	if c.Bool("verbose") {
		monitor = &traceMonitor{out: os.Stderr}
	}

	matches, err := searcher.SearchWithMonitor(ctx, query, opts, monitor)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(matches) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for i, match := range matches {
		doc := match.Document
		fmt.Printf("%d. [%.3f] %s (%s/%s)\n", i+1, match.Score, doc.Title, doc.Source, doc.Kind)
		fmt.Printf("   %s\n", snippet(doc.Content, 160))
	}
	return nil
}

// parseWindow derives the [from, to) window from the flags. An explicit
// --from wins over --days; --to defaults to now.
func parseWindow(c *cli.Context) (time.Time, time.Time, error) {
	fromStr, toStr := c.String("from"), c.String("to")
	if fromStr == "" && toStr == "" {
		days := c.Int("days")
		if days < 1 {
			return time.Time{}, time.Time{}, fmt.Errorf("days must be greater than 0")
		}
		now := time.Now().UTC()
		return now.AddDate(0, 0, -days), now, nil
	}

	from, err := time.Parse(dateLayout, fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q: expected YYYY-MM-DD", fromStr)
	}
	to := time.Now().UTC()
	if toStr != "" {
		to, err = time.Parse(dateLayout, toStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q: expected YYYY-MM-DD", toStr)
		}
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("from date must precede to date")
	}
	return from, to, nil
}

// defaultBatchID derives a stable id from the window so rerunning the
// same command resumes its checkpoints instead of opening a new batch.
func defaultBatchID(src core.Source, from, to time.Time) string {
	return fmt.Sprintf("%s-%s-%s", src, from.Format("20060102"), to.Format("20060102"))
}

// printResult writes one batch summary to stdout.
func printResult(result *backfill.Result) {
	if result.AlreadyCompleted {
		fmt.Printf("%s: already completed (%d ingested)\n", result.BatchID, result.Ingested)
		return
	}

	fmt.Printf("%s: %d fetched, %d ingested, %d skipped, %d duplicates\n",
		result.BatchID, result.Total, result.Ingested, result.Skipped, result.Duplicates)
	fmt.Printf("  resolution: %d fast path, %d slow path (cache: %d hits, %d misses, %d failures)\n",
		result.FastPath, result.SlowPath,
		result.CacheStats.Hits, result.CacheStats.Misses, result.CacheStats.Failures)
	for _, msg := range result.Errors {
		fmt.Printf("  error: %s\n", msg)
	}
}

// snippet returns the first line of content, truncated to max runes.
func snippet(content string, max int) string {
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	runes := []rune(content)
	if len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return content
}

// traceMonitor prints search stages to stderr for --verbose runs.
type traceMonitor struct {
	out io.Writer
}

var _ search.Monitor = (*traceMonitor)(nil)

func (t *traceMonitor) Start(query string) {
	fmt.Fprintf(t.out, "query: %q\n", query)
}

func (t *traceMonitor) AfterQueryEmbedding(dimension int) {
	fmt.Fprintf(t.out, "embedded query: %d dimensions\n", dimension)
}

func (t *traceMonitor) AfterVectorQuery(candidates []core.Match) {
	fmt.Fprintf(t.out, "store returned %d candidates\n", len(candidates))
}

func (t *traceMonitor) VerbatimHit(doc *core.Document) {
	fmt.Fprintf(t.out, "verbatim hit: %s\n", doc.ID)
}

func (t *traceMonitor) Finish(results []core.Match) {
	fmt.Fprintf(t.out, "returning %d results\n", len(results))
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
