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

package almanac

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/almanac/ai"
	"github.com/poiesic/almanac/ai/openai"
	"github.com/poiesic/almanac/config"
	"github.com/poiesic/almanac/ingestion"
	"github.com/poiesic/almanac/lexical"
	"github.com/poiesic/almanac/recall"
	"github.com/poiesic/almanac/reembed"
	"github.com/poiesic/almanac/search"
	"github.com/poiesic/almanac/storage"
	"github.com/poiesic/almanac/storage/badger"
)

// Database ties the fragment store to an embedding provider and hands out
// the query and builder components that work on it.
type Database struct {
	backend     *badger.Backend
	fragments   storage.FragmentRepository
	checkpoints storage.CheckpointRepository
	provider    ai.AIProvider
	tuning      config.Tuning
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	tuning   config.Tuning
	inMemory bool
	logger   *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithProvider uses an existing AI provider instead of building one from the AI config.
// The database takes ownership and closes it on Close.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithTuning sets the heuristics passed to every component the database creates.
func WithTuning(tuning config.Tuning) DatabaseOption {
	return func(o *databaseOptions) {
		o.tuning = tuning
	}
}

// InMemory opens a throwaway in-memory store; the file path is ignored.
func InMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets the logger used by the database and its components.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDatabase opens (or creates) the fragment store at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		tuning:   config.DefaultTuning(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if err := options.tuning.Validate(); err != nil {
		return nil, err
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:     backend,
		fragments:   badger.NewFragmentRepository(backend),
		checkpoints: badger.NewCheckpointRepository(backend),
		provider:    provider,
		tuning:      options.tuning,
		logger:      options.logger,
	}, nil
}

// Close releases the provider, the repositories and the backend.
func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.fragments.Close(); err != nil {
		db.logger.Error("error closing fragment repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) FragmentRepository() storage.FragmentRepository {
	return db.fragments
}

func (db *Database) CheckpointRepository() storage.CheckpointRepository {
	return db.checkpoints
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

func (db *Database) Tuning() config.Tuning {
	return db.tuning
}

// NewLexicalIndex builds a BM25 index over the current corpus.
func (db *Database) NewLexicalIndex(ctx context.Context) (*lexical.Index, error) {
	return lexical.BuildFromRepository(ctx, db.fragments,
		lexical.WithParameters(db.tuning.BM25K1, db.tuning.BM25B))
}

// NewSearcher creates a hybrid searcher. The lexical index is built from the
// store; if that fails the searcher falls back to semantic-only ranking.
// Options given by the caller are applied last.
func (db *Database) NewSearcher(ctx context.Context, opts ...search.Option) (*search.Searcher, error) {
	base := []search.Option{search.WithTuning(db.tuning), search.WithLogger(db.logger)}
	index, err := db.NewLexicalIndex(ctx)
	if err != nil {
		db.logger.Warn("lexical index unavailable", "err", err)
	} else {
		base = append(base, search.WithLexicalIndex(index))
	}
	return search.NewSearcher(db.fragments, db.provider, append(base, opts...)...)
}

// NewMatcher creates a temporal window matcher over the store.
func (db *Database) NewMatcher(opts ...recall.Option) (*recall.Matcher, error) {
	return recall.NewMatcher(db.fragments, db.recallOptions(opts)...)
}

// NewAssembler creates a briefing assembler with its own matcher.
// Call Release on the result when done.
func (db *Database) NewAssembler(opts ...recall.Option) (*recall.Assembler, error) {
	matcher, err := db.NewMatcher(opts...)
	if err != nil {
		return nil, err
	}
	return recall.NewAssembler(matcher, db.recallOptions(opts)...)
}

func (db *Database) recallOptions(opts []recall.Option) []recall.Option {
	base := []recall.Option{recall.WithTuning(db.tuning), recall.WithLogger(db.logger)}
	return append(base, opts...)
}

// NewImporter creates a bulletin importer. Call Release on the result when done.
func (db *Database) NewImporter(opts ...ingestion.Option) (*ingestion.Importer, error) {
	base := []ingestion.Option{ingestion.WithLogger(db.logger)}
	return ingestion.NewImporter(db.fragments, db.checkpoints, db.provider, append(base, opts...)...)
}

// NewReembedder creates a reembedder using the database's embedder.
func (db *Database) NewReembedder(cfg *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(db.fragments, db.provider.Embedder(), cfg, progress)
}
