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
	"os"
	"strings"
	"time"

	"github.com/poiesic/sift"
	"github.com/poiesic/sift/config"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/ingestion"
	"github.com/poiesic/sift/search"
	"github.com/urfave/cli/v2"
)

// openDatabase opens the database for a command. Tests replace it to
// inject a mock provider.
var openDatabase = func(cfg *config.Config) (*sift.Database, error) {
	return sift.OpenFromConfig(cfg)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "sift",
		Usage: "Hybrid retrieval with MMR diversification over ingested pages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"SIFT_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides config and SIFT_DB)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Chunk, embed and store pages from a JSON lines file",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON lines file of {url, title, text|html} pages, or - for stdin",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of pages processed concurrently (0 uses the config)",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Report progress on stderr",
						Value: true,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Retrieve diversified documents for a query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Candidates requested from each search primitive",
					},
					&cli.IntFlag{
						Name:  "k",
						Usage: "Number of results after diversification",
					},
					&cli.Float64Flag{
						Name:  "lambda",
						Usage: "MMR relevance weight in [0, 1]",
					},
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Log every retrieval stage",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a question from retrieved context",
				ArgsUsage: "<question>",
				Action:    askCommand,
			},
			{
				Name:   "stats",
				Usage:  "Show the number of stored documents",
				Action: statsCommand,
			},
			{
				Name:   "init-config",
				Usage:  "Write the effective configuration to a YAML file",
				Action: initConfigCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "Destination file",
						Required: true,
					},
				},
			},
		},
	}
}

// loadConfig resolves the configuration and applies the global --db flag.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if db := c.String("db"); db != "" {
		cfg.Storage.Path = db
	}
	if !c.IsSet("log-level") && cfg.LogLevel != "" {
		level, err := config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		installLogger(level)
	}
	return cfg, nil
}

func withDatabase(c *cli.Context, fn func(*sift.Database, *config.Config) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	return fn(db, cfg)
}

func ingestCommand(c *cli.Context) error {
	return withDatabase(c, func(db *sift.Database, cfg *config.Config) error {
		var r io.Reader = os.Stdin
		if path := c.String("file"); path != "-" {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open pages file: %w", err)
			}
			defer f.Close()
			r = f
		}

		pages, err := ingestion.ReadPages(r)
		if err != nil {
			return fmt.Errorf("failed to read pages: %w", err)
		}

		var opts []ingestion.Option
		if n := c.Int("pool-size"); n > 0 {
			opts = append(opts, ingestion.WithPoolSize(n))
		}
		if c.Bool("progress") {
			opts = append(opts, ingestion.WithProgress(c.App.ErrWriter))
		}

		pipeline, err := db.NewIngestionPipeline(opts...)
		if err != nil {
			return fmt.Errorf("failed to create pipeline: %w", err)
		}
		defer pipeline.Release()

		stats, err := pipeline.Ingest(ctxOf(c), pages)
		fmt.Fprintf(c.App.Writer, "Ingested %d documents from %d pages (%d failed) in %s\n",
			stats.Documents, stats.Pages, stats.Failed, stats.Elapsed.Round(time.Millisecond))
		if err != nil {
			return fmt.Errorf("%d pages failed: %w", stats.Failed, err)
		}
		return nil
	})
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("a query is required")
	}

	return withDatabase(c, func(db *sift.Database, cfg *config.Config) error {
		retriever, err := db.NewRetriever()
		if err != nil {
			return err
		}

		searchCfg := retriever.Config()
		if c.IsSet("top-k") {
			searchCfg.TopK = c.Int("top-k")
		}
		if c.IsSet("k") {
			searchCfg.K = c.Int("k")
		}
		if c.IsSet("lambda") {
			searchCfg.Lambda = c.Float64("lambda")
		}
		if err := searchCfg.Validate(); err != nil {
			return err
		}

		var monitor search.SearchMonitor
		if c.Bool("trace") {
			monitor = search.NewLogMonitor(slog.Default())
		}

		results, err := retriever.RetrieveWithMonitor(ctxOf(c), query, searchCfg.Params(), monitor)
		if err != nil {
			return err
		}
		printResults(c.App.Writer, results)
		return nil
	})
}

func askCommand(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(question) == "" {
		return errors.New("a question is required")
	}

	return withDatabase(c, func(db *sift.Database, cfg *config.Config) error {
		answerer, err := db.NewAnswerer()
		if err != nil {
			return err
		}

		ans, err := answerer.Ask(ctxOf(c), question)
		if err != nil {
			return err
		}

		fmt.Fprintf(c.App.Writer, "=== Answer ===\n%s\n", ans.Text)
		if len(ans.Sources) > 0 {
			fmt.Fprintln(c.App.Writer, "\n=== Sources ===")
			for i, s := range ans.Sources {
				fmt.Fprintf(c.App.Writer, "[%d] %s\n    %s\n", i+1, s.Title, s.URL)
			}
		}
		return nil
	})
}

func statsCommand(c *cli.Context) error {
	return withDatabase(c, func(db *sift.Database, cfg *config.Config) error {
		count, err := db.Store().Count(ctxOf(c))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Documents: %d\nDatabase: %s\n", count, cfg.Storage.Path)
		return nil
	})
}

func initConfigCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.WriteYAML(c.String("out")); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", c.String("out"))
	return nil
}

func printResults(w io.Writer, results core.ResultSet) {
	fmt.Fprintf(w, "Found %d results\n", len(results))
	for i, r := range results {
		var sources []string
		if r.InVector {
			sources = append(sources, "vector")
		}
		if r.InLexical {
			sources = append(sources, "lexical")
		}
		fmt.Fprintf(w, "%d: %s\n   %s\n   vector=%.3f bm25=%.3f [%s]\n",
			i+1, r.Title, r.URL, r.VectorScore, r.LexicalScore, strings.Join(sources, ","))
	}
}

func ctxOf(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	level, err := config.ParseLogLevel(levelStr)
	if err != nil || levelStr == "" {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	installLogger(level)
	return nil
}

func installLogger(level slog.Level) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
