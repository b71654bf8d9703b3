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

	"github.com/poiesic/almanac/core"
	"github.com/poiesic/almanac/storage"
)

const (
	// DefaultBatchSize is the default number of fragments handed to each batch
	DefaultBatchSize = 100
)

// FragmentIterator walks the fragments matching a filter in key order, in batches.
type FragmentIterator struct {
	repo      storage.FragmentRepository
	filter    storage.Filter
	batchSize int
}

// NewFragmentIterator creates an iterator over every fragment.
// batchSize: number of fragments per batch (DefaultBatchSize when <= 0)
func NewFragmentIterator(repo storage.FragmentRepository, batchSize int) *FragmentIterator {
	return NewFilteredIterator(repo, storage.Filter{}, batchSize)
}

// NewFilteredIterator creates an iterator over the fragments matching filter.
func NewFilteredIterator(repo storage.FragmentRepository, filter storage.Filter, batchSize int) *FragmentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &FragmentIterator{
		repo:      repo,
		filter:    filter,
		batchSize: batchSize,
	}
}

// ForEach calls fn for each batch of fragments together with the number of
// fragments selected. fn is never called when nothing matches.
// Iteration stops on the first error from fn or when all fragments are processed.
// Context cancellation is checked between batches.
func (it *FragmentIterator) ForEach(ctx context.Context, fn func(batch []*core.Fragment, total int) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fragments, err := it.repo.FindFragments(ctx, it.filter)
	if err != nil {
		return err
	}

	for start := 0; start < len(fragments); start += it.batchSize {
		end := min(start+it.batchSize, len(fragments))
		if err := fn(fragments[start:end], len(fragments)); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return nil
}
