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
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/almanac"
	"github.com/poiesic/almanac/config"
	"github.com/poiesic/almanac/core"
	"github.com/poiesic/almanac/ingestion"
	"github.com/poiesic/almanac/noise"
	"github.com/poiesic/almanac/recall"
	"github.com/poiesic/almanac/reembed"
	"github.com/poiesic/almanac/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "almanac",
		Usage: "Seasonal retrieval over weekly agricultural bulletins",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "~/.config/almanac/config.yaml",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Load environment variables from `FILE` (repeatable, default .env)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Import weekly bulletins from a JSON Lines file",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON Lines file produced by the bulletin splitter",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of fragments to embed in each request",
						Value: ingestion.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent embedding requests (0 uses half the CPUs)",
					},
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Delete all fragments and the checkpoint, then import from the beginning",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all fragments with new embeddings",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (overrides config)",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name (overrides config)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of fragments to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N fragments",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.IntSliceFlag{
						Name:  "year",
						Usage: "Only reembed fragments of this year (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:    "topic",
						Aliases: []string{"t"},
						Usage:   "Only reembed fragments of this topic name or label (repeatable)",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Hybrid semantic and keyword search",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "topic",
						Aliases: []string{"t"},
						Usage:   "Restrict results to a topic name or label (repeatable)",
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of results (0 uses the configured default)",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Give up after this long",
						Value: 30 * time.Second,
					},
				},
			},
			{
				Name:   "briefing",
				Usage:  "Show what the bulletins said around this date in past years",
				Action: briefingCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "date",
						Usage: "Probe date as YYYY-MM-DD (default today)",
					},
					&cli.IntFlag{
						Name:  "years",
						Usage: "Maximum number of years shown (0 uses the configured default)",
					},
					&cli.IntFlag{
						Name:  "per-year",
						Usage: "Maximum entries per year (0 uses the configured default)",
					},
					&cli.IntFlag{
						Name:  "lookback",
						Usage: "Number of past years searched for matches",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "include-current",
						Usage: "Also match the probe date's own year",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show fragment counts",
				Action: statsCommand,
			},
		},
	}
}

// loadConfig resolves the effective configuration: .env files, then the
// YAML file, then ALMANAC_* variables, then the --db flag.
func loadConfig(c *cli.Context) (*config.File, error) {
	if err := config.LoadEnvFiles(c.StringSlice("env-file")...); err != nil {
		return nil, err
	}
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}
	if dbPath := c.String("db"); dbPath != "" {
		cfg.Database = dbPath
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database path is required")
	}
	cfg.Database, err = config.ExpandPath(cfg.Database)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func openDatabase(cfg *config.File) (*almanac.Database, error) {
	aiConfig := cfg.AIConfig()
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	db, err := almanac.NewDatabase(cfg.Database,
		almanac.WithAIConfig(aiConfig),
		almanac.WithTuning(cfg.Tuning),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func importCommand(c *cli.Context) error {
	ctx := c.Context

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	path, err := filepath.Abs(c.String("file"))
	if err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer file.Close()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []ingestion.Option{
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithProgress(os.Stderr),
	}
	if n := c.Int("pool-size"); n > 0 {
		opts = append(opts, ingestion.WithPoolSize(n))
	}
	importer, err := db.NewImporter(opts...)
	if err != nil {
		return fmt.Errorf("failed to create importer: %w", err)
	}
	defer importer.Release()

	if c.Bool("reset") {
		if err := importer.Reset(ctx, path); err != nil {
			return fmt.Errorf("failed to reset checkpoint: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", cfg.Database)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", cfg.Embedding.Host)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.Embedding.Model)
	fmt.Fprintln(os.Stderr)

	report, err := importer.Import(ctx, file, path)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Imported %d fragments from %d lines (%d sections skipped)\n",
		report.Fragments, report.Lines, report.Skipped)
	if report.Resumed > 0 {
		fmt.Fprintf(c.App.Writer, "Skipped %d lines committed by an earlier run\n", report.Resumed)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if host := c.String("embedding-host"); host != "" {
		cfg.Embedding.Host = host
	}
	if model := c.String("embedding-model"); model != "" {
		cfg.Embedding.Model = model
	}

	topics, err := core.ParseTopics(c.StringSlice("topic"))
	if err != nil {
		return err
	}
	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Filter:         storage.Filter{Years: c.IntSlice("year"), Topics: topics},
	}
	if err := reembedConfig.Validate(); err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	reembedder, err := db.NewReembedder(reembedConfig, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", cfg.Database)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", cfg.Embedding.Host)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.Embedding.Model)
	fmt.Fprintln(os.Stderr)

	summary, err := reembedder.Run(c.Context)
	if err != nil {
		return fmt.Errorf("reembedding failed after %d fragments: %w", summary.Fragments, err)
	}
	fmt.Fprintf(c.App.Writer, "Reembedded %d fragments\n", summary.Fragments)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a search query is required")
	}
	topics, err := core.ParseTopics(c.StringSlice("topic"))
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	searcher, err := db.NewSearcher(ctx)
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}
	results, err := searcher.Search(ctx, query, topics, c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	renderResults(c.App.Writer, results)
	return nil
}

func renderResults(w io.Writer, results []*core.RankedResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No matching fragments found.")
		return
	}
	for i, result := range results {
		f := result.Fragment
		fmt.Fprintf(w, "%d. [%s] %s~%s  score %.3f (semantic %.3f, lexical %.3f)\n",
			i+1, f.Topic.Label(), f.WeekStart.Format(core.DateLayout), f.WeekEnd.Format(core.DateLayout),
			result.CombinedScore, result.SemanticScore, result.LexicalScore)
		fmt.Fprintln(w, indent(noise.NormalizeTables(f.Text)))
		fmt.Fprintln(w)
	}
}

func briefingCommand(c *cli.Context) error {
	today := core.Day(time.Now())
	if raw := c.String("date"); raw != "" {
		parsed, err := core.ParseDate(raw)
		if err != nil {
			return err
		}
		today = parsed
	}

	years := recall.PriorYears(today, c.Int("lookback"))
	if c.Bool("include-current") {
		years = append([]int{today.Year()}, years...)
	}
	if len(years) == 0 {
		return fmt.Errorf("lookback must be greater than 0")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	assembler, err := db.NewAssembler()
	if err != nil {
		return fmt.Errorf("failed to create assembler: %w", err)
	}
	defer assembler.Release()

	entries, err := assembler.Assemble(c.Context, today, years, c.Int("years"), c.Int("per-year"))
	if err != nil {
		return fmt.Errorf("briefing failed: %w", err)
	}

	renderBriefing(c.App.Writer, today, entries)
	return nil
}

func renderBriefing(w io.Writer, today time.Time, entries []*core.BriefingEntry) {
	fmt.Fprintf(w, "Briefing for %s\n\n", today.Format(core.DateLayout))
	groups := core.GroupBriefing(entries)
	if len(groups) == 0 {
		fmt.Fprintln(w, "No bulletins found around this date in past years.")
	}
	for _, group := range groups {
		fmt.Fprintf(w, "== %d ==\n", group.Year)
		for _, entry := range group.Entries {
			f := entry.Fragment
			when := "this week"
			if entry.DistanceDays > 0 {
				when = fmt.Sprintf("%d days away", entry.DistanceDays)
			}
			fmt.Fprintf(w, "[%s] %s~%s (%s)\n", entry.Topic.Label(),
				f.WeekStart.Format(core.DateLayout), f.WeekEnd.Format(core.DateLayout), when)
			fmt.Fprintln(w, indent(noise.NormalizeTables(f.Text)))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Suggested searches: %s\n", strings.Join(recall.SeasonalKeywords(today.Month()), ", "))
}

func statsCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := db.FragmentRepository()
	total, err := repo.Count(c.Context)
	if err != nil {
		return fmt.Errorf("failed to count fragments: %w", err)
	}
	counts, err := repo.YearCounts(c.Context)
	if err != nil {
		return fmt.Errorf("failed to count fragments: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Database: %s\n", cfg.Database)
	fmt.Fprintf(c.App.Writer, "Fragments: %d\n", total)
	years := make([]int, 0, len(counts))
	for year := range counts {
		years = append(years, year)
	}
	slices.Sort(years)
	for _, year := range years {
		fmt.Fprintf(c.App.Writer, "  %d: %d\n", year, counts[year])
	}
	return nil
}

func indent(text string) string {
	return "    " + strings.ReplaceAll(text, "\n", "\n    ")
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
