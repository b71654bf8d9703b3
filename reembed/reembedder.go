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

package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/almanac/ai"
	"github.com/poiesic/almanac/core"
	"github.com/poiesic/almanac/storage"
)

// Config controls a reembedding run.
type Config struct {
	BatchSize      int            // Fragments per embedding request
	ReportInterval int            // Fragments between progress lines
	MaxRetries     int            // Attempts per embedding request
	RetryDelay     time.Duration  // First backoff delay, doubled on each retry
	Filter         storage.Filter // Zero value selects the whole corpus
}

// DefaultConfig returns the settings used by the reembed command.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Validate rejects non-positive sizes and an invalid filter.
func (c *Config) Validate() error {
	switch {
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch-size must be greater than 0", ErrInvalidConfig)
	case c.ReportInterval <= 0:
		return fmt.Errorf("%w: report-interval must be greater than 0", ErrInvalidConfig)
	case c.MaxRetries <= 0:
		return fmt.Errorf("%w: max-retries must be greater than 0", ErrInvalidConfig)
	case c.RetryDelay < 0:
		return fmt.Errorf("%w: retry-delay must not be negative", ErrInvalidConfig)
	}
	if err := c.Filter.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Summary describes a finished run.
type Summary struct {
	Fragments int
	Batches   int
	Elapsed   time.Duration
}

// Reembedder recomputes the stored embedding of every selected fragment,
// typically after the embedding model changed.
type Reembedder struct {
	config    Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *FragmentIterator
}

// NewReembedder creates a reembedder writing progress lines to progress.
// A nil config means DefaultConfig and a nil writer discards progress.
func NewReembedder(repo storage.FragmentRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		config:    *config,
		progress:  progress,
		processor: NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewFilteredIterator(repo, config.Filter, config.BatchSize),
	}, nil
}

// Run embeds the selected fragments batch by batch and writes them back.
// A failed batch stops the run; batches already written keep their new vectors.
func (r *Reembedder) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	var tracker *ProgressTracker

	err := r.iterator.ForEach(ctx, func(batch []*core.Fragment, total int) error {
		if tracker == nil {
			fmt.Fprintf(r.progress, "Reembedding %d fragments in batches of %d\n", total, r.config.BatchSize)
			tracker = NewProgressTracker(r.progress, total, r.config.ReportInterval)
			tracker.Start()
		}
		if err := r.processor.Process(ctx, batch); err != nil {
			return fmt.Errorf("batch %d: %w", summary.Batches+1, err)
		}
		summary.Batches++
		summary.Fragments += len(batch)
		tracker.Update(summary.Fragments)
		return nil
	})
	if err != nil {
		return summary, err
	}

	if tracker == nil {
		fmt.Fprintln(r.progress, "Nothing to reembed")
		return summary, nil
	}
	tracker.Finish()
	summary.Elapsed = tracker.Elapsed()

	fmt.Fprintf(r.progress, "Reembedded %d fragments in %d batches (%v)\n",
		summary.Fragments, summary.Batches, summary.Elapsed.Round(time.Millisecond))
	return summary, nil
}
