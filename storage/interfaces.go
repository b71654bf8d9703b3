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


package storage

import (
	"context"

	"github.com/poiesic/almanac/core"
)

// Filter selects fragments by exact-match and substring predicates.
// Zero-valued fields do not constrain the result.
type Filter struct {
	Years        []int         // Calendar years of WeekStart
	Months       []int         // Months 1-12 of WeekStart
	Topics       core.TopicSet // Empty set matches every topic
	TextContains string        // Case-sensitive substring of Text
}

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close releases resources held by the repository.
	Close() error
}

// FragmentRepository provides operations over the fragment corpus.
type FragmentRepository interface {
	Repository

	// AddFragments stores fragments, replacing any existing fragment with the same ID.
	// Each fragment is validated with core.ValidateFragment first.
	// Sets InsertedAt if not already set.
	AddFragments(ctx context.Context, fragments ...*core.Fragment) ([]*core.Fragment, error)

	// GetFragment retrieves a single fragment by ID.
	// Returns ErrNotFound if the fragment doesn't exist.
	GetFragment(ctx context.Context, id core.ID) (*core.Fragment, error)

	// GetFragmentByKey retrieves a fragment by its key.
	// Returns ErrNotFound if the fragment doesn't exist.
	GetFragmentByKey(ctx context.Context, key string) (*core.Fragment, error)

	// GetFragments retrieves multiple fragments by their IDs.
	// Returns only the fragments that exist (no error for missing fragments).
	GetFragments(ctx context.Context, ids ...core.ID) ([]*core.Fragment, error)

	// FindFragments returns every fragment matching filter, ordered by key.
	FindFragments(ctx context.Context, filter Filter) ([]*core.Fragment, error)

	// FindSimilar ranks fragments by cosine similarity to vector.
	// Returns fragments with similarity >= minSimilarity whose topic is allowed
	// by topics, up to limit results (all when limit <= 0), highest first.
	// Only RankedResult.SemanticScore is populated.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int, topics core.TopicSet) ([]*core.RankedResult, error)

	// YearCounts returns the number of fragments stored per year.
	YearCounts(ctx context.Context) (map[int]int, error)

	// Count returns the total number of fragments.
	Count(ctx context.Context) (int, error)

	// Reset removes every fragment and its indexes.
	Reset(ctx context.Context) error
}

// CheckpointRepository persists progress markers for offline builders.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint, stamping UpdatedAt.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a source.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, source string) (*core.Checkpoint, error)

	// ClearCheckpoint removes the checkpoint for a source, if any.
	ClearCheckpoint(ctx context.Context, source string) error
}
