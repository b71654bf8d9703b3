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


package lexical

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/poiesic/almanac/core"
	"github.com/poiesic/almanac/storage"
)

const (
	// DefaultK1 is the BM25 term-frequency saturation parameter.
	DefaultK1 = 1.2
	// DefaultB is the BM25 document-length normalization parameter.
	DefaultB = 0.75
)

// ErrInvalidParameters indicates BM25 parameters outside their valid range.
var ErrInvalidParameters = errors.New("invalid bm25 parameters")

type document struct {
	length int
	terms  map[string]int
}

// Index is an Okapi BM25 index over fragment keys. It is immutable once
// built and safe for concurrent reads.
type Index struct {
	tokenizer Tokenizer
	k1        float64
	b         float64
	docs      map[string]document
	df        map[string]int
	avgLength float64
}

// Option configures an Index under construction.
type Option func(*Index) error

// WithTokenizer replaces DefaultTokenizer.
func WithTokenizer(tokenizer Tokenizer) Option {
	return func(idx *Index) error {
		if tokenizer != nil {
			idx.tokenizer = tokenizer
		}
		return nil
	}
}

// WithParameters sets k1 and b.
func WithParameters(k1, b float64) Option {
	return func(idx *Index) error {
		if k1 < 0 || b < 0 || b > 1 {
			return fmt.Errorf("%w: k1=%g b=%g", ErrInvalidParameters, k1, b)
		}
		idx.k1 = k1
		idx.b = b
		return nil
	}
}

// Build indexes the topic label and text of every fragment.
func Build(fragments []*core.Fragment, opts ...Option) (*Index, error) {
	idx := &Index{
		tokenizer: DefaultTokenizer,
		k1:        DefaultK1,
		b:         DefaultB,
		docs:      make(map[string]document, len(fragments)),
		df:        make(map[string]int),
	}
	for _, opt := range opts {
		if err := opt(idx); err != nil {
			return nil, err
		}
	}

	total := 0
	for _, fragment := range fragments {
		if fragment == nil {
			continue
		}
		if _, seen := idx.docs[fragment.Key]; seen {
			continue
		}
		tokens := idx.tokenizer.Tokenize(fragment.Topic.Label() + " " + fragment.Text)
		terms := make(map[string]int, len(tokens))
		for _, token := range tokens {
			terms[token]++
		}
		for term := range terms {
			idx.df[term]++
		}
		idx.docs[fragment.Key] = document{length: len(tokens), terms: terms}
		total += len(tokens)
	}
	if len(idx.docs) > 0 {
		idx.avgLength = float64(total) / float64(len(idx.docs))
	}
	return idx, nil
}

// BuildFromRepository loads the whole corpus from repo and indexes it.
func BuildFromRepository(ctx context.Context, repo storage.FragmentRepository, opts ...Option) (*Index, error) {
	fragments, err := repo.FindFragments(ctx, storage.Filter{})
	if err != nil {
		return nil, fmt.Errorf("loading corpus for lexical index: %w", err)
	}
	return Build(fragments, opts...)
}

// Tokenize runs text through the index's tokenizer so queries are reduced
// exactly like documents.
func (idx *Index) Tokenize(text string) []string {
	return idx.tokenizer.Tokenize(text)
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.docs)
}

// Score returns the BM25 score of the document key for queryTokens.
// Unknown keys and queries without overlap score 0.
func (idx *Index) Score(queryTokens []string, key string) float64 {
	doc, ok := idx.docs[key]
	if !ok || doc.length == 0 {
		return 0
	}

	n := float64(len(idx.docs))
	norm := idx.k1 * (1 - idx.b + idx.b*float64(doc.length)/idx.avgLength)

	var score float64
	seen := make(map[string]bool, len(queryTokens))
	for _, term := range queryTokens {
		if seen[term] {
			continue
		}
		seen[term] = true

		tf := float64(doc.terms[term])
		if tf == 0 {
			continue
		}
		df := float64(idx.df[term])
		idf := math.Log((n-df+0.5)/(df+0.5) + 1)
		score += idf * tf * (idx.k1 + 1) / (tf + norm)
	}
	return score
}
