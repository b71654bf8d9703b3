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


package badger

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/almanac/core"
	"github.com/poiesic/almanac/storage"
)

// FragmentRepository implements storage.FragmentRepository for BadgerDB.
type FragmentRepository struct {
	backend *Backend
}

var _ storage.FragmentRepository = (*FragmentRepository)(nil)

// NewFragmentRepository creates a new FragmentRepository.
func NewFragmentRepository(backend *Backend) *FragmentRepository {
	return &FragmentRepository{
		backend: backend,
	}
}

// Close releases resources. FragmentRepository has no resources to release.
func (r *FragmentRepository) Close() error {
	return nil
}

// AddFragments stores fragments together with their key, year and topic indexes.
func (r *FragmentRepository) AddFragments(ctx context.Context, fragments ...*core.Fragment) ([]*core.Fragment, error) {
	for _, fragment := range fragments {
		if err := core.ValidateFragment(fragment); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, fragment := range fragments {
			if fragment.InsertedAt.IsZero() {
				fragment.InsertedAt = now
			}

			if err := tx.Set(makeFragmentKey(fragment.Id), storage.MarshalFragment(fragment)); err != nil {
				return err
			}

			id := storage.MarshalID(fragment.Id)
			if err := tx.Set(makeFragmentLookupKey(fragment.Key), id); err != nil {
				return err
			}
			if err := tx.Set(makeFragmentYearKey(fragment.Year, fragment.Id), id); err != nil {
				return err
			}
			if err := tx.Set(makeFragmentTopicKey(fragment.Topic, fragment.Id), id); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return fragments, nil
}

// GetFragment retrieves a single fragment by ID.
func (r *FragmentRepository) GetFragment(ctx context.Context, id core.ID) (*core.Fragment, error) {
	var result *core.Fragment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readFragment(tx, id)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetFragmentByKey retrieves a fragment through the key lookup index.
func (r *FragmentRepository) GetFragmentByKey(ctx context.Context, key string) (*core.Fragment, error) {
	var result *core.Fragment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeFragmentLookupKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		var id core.ID
		err = item.Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}
		result, err = readFragment(tx, id)
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: key index points at missing fragment %d", storage.ErrNotFound, id)
		}
		return nil
	}, false)
	return result, err
}

// GetFragments retrieves multiple fragments by their IDs.
func (r *FragmentRepository) GetFragments(ctx context.Context, ids ...core.ID) ([]*core.Fragment, error) {
	var results []*core.Fragment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			fragment, err := readFragment(tx, id)
			if err != nil {
				return err
			}
			if fragment != nil {
				results = append(results, fragment)
			}
		}
		return nil
	}, false)
	return results, err
}

// FindFragments returns the fragments matching filter, ordered by key.
// Year filters are served from the year index and topic filters from the
// topic index; remaining predicates are applied to the decoded fragments.
func (r *FragmentRepository) FindFragments(ctx context.Context, filter storage.Filter) ([]*core.Fragment, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var results []*core.Fragment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.scan(ctx, tx, filter, func(fragment *core.Fragment) {
			if filter.Matches(fragment) {
				results = append(results, fragment)
			}
		})
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.Fragment) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return results, nil
}

// FindSimilar ranks the allowed fragments by cosine similarity to vector.
func (r *FragmentRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int, topics core.TopicSet) ([]*core.RankedResult, error) {
	var results []*core.RankedResult

	filter := storage.Filter{Topics: topics}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.scan(ctx, tx, filter, func(fragment *core.Fragment) {
			// Skip fragments without embeddings
			if len(fragment.Embedding) == 0 || !topics.Allows(fragment.Topic) {
				return
			}
			similarity := core.CosineSimilarity(vector, fragment.Embedding)
			if similarity >= float64(minSimilarity) {
				results = append(results, &core.RankedResult{
					Fragment:      fragment,
					SemanticScore: similarity,
				})
			}
		})
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending, key ascending on ties
	slices.SortFunc(results, func(a, b *core.RankedResult) int {
		if c := cmp.Compare(b.SemanticScore, a.SemanticScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Key(), b.Key())
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// YearCounts counts year index entries per year without decoding fragments.
func (r *FragmentRepository) YearCounts(ctx context.Context) (map[int]int, error) {
	counts := make(map[int]int)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(fragmentYearPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			counts[yearFromIndexKey(iter.Item().Key())]++
		}
		return nil
	}, false)
	return counts, err
}

// Count returns the total number of fragments.
func (r *FragmentRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(fragmentPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Reset removes every fragment and its indexes. Checkpoints are kept.
func (r *FragmentRepository) Reset(ctx context.Context) error {
	return r.backend.dropPrefixes(fragmentPrefix, fragmentKeyPrefix, fragmentYearPrefix, fragmentTopicPrefix)
}

// scan visits the candidate fragments for filter, choosing the narrowest
// index available. Callers still apply the full filter.
func (r *FragmentRepository) scan(ctx context.Context, tx *badger.Txn, filter storage.Filter, visit func(*core.Fragment)) error {
	switch {
	case len(filter.Years) > 0:
		var prefixes [][]byte
		for _, year := range filter.Years {
			prefixes = append(prefixes, makePartialFragmentYearKey(year))
		}
		return scanIndex(ctx, tx, prefixes, visit)
	case len(filter.Topics) > 0:
		var prefixes [][]byte
		for _, topic := range filter.Topics.Sorted() {
			prefixes = append(prefixes, makePartialFragmentTopicKey(topic))
		}
		return scanIndex(ctx, tx, prefixes, visit)
	default:
		return scanAll(ctx, tx, visit)
	}
}

// scanIndex resolves every index entry under prefixes to its fragment.
func scanIndex(ctx context.Context, tx *badger.Txn, prefixes [][]byte, visit func(*core.Fragment)) error {
	seen := make(map[core.ID]struct{})
	for _, prefix := range prefixes {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		var ids []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			id := idFromIndexKey(iter.Item().Key())
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		iter.Close()

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			fragment, err := readFragment(tx, id)
			if err != nil {
				return err
			}
			if fragment != nil {
				visit(fragment)
			}
		}
	}
	return nil
}

// scanAll decodes every stored fragment.
func scanAll(ctx context.Context, tx *badger.Txn, visit func(*core.Fragment)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(fragmentPrefix)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var fragment *core.Fragment
		err := iter.Item().Value(func(val []byte) error {
			var err error
			fragment, err = storage.UnmarshalFragment(val)
			return err
		})
		if err != nil {
			return err
		}
		visit(fragment)
	}
	return nil
}

// readFragment reads a fragment within a transaction.
// Returns nil, nil if the fragment doesn't exist.
func readFragment(tx *badger.Txn, id core.ID) (*core.Fragment, error) {
	item, err := tx.Get(makeFragmentKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var fragment *core.Fragment
	err = item.Value(func(val []byte) error {
		var err error
		fragment, err = storage.UnmarshalFragment(val)
		return err
	})
	return fragment, err
}
