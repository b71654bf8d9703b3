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


package config

import (
	"errors"
	"fmt"

	"github.com/poiesic/almanac/noise"
)

// ErrInvalidTuning indicates a tuning value outside its allowed range.
var ErrInvalidTuning = errors.New("invalid tuning")

// Tuning collects every heuristic constant used by search and recall.
type Tuning struct {
	// SemanticFloor admits a fragment whose cosine similarity exceeds it.
	SemanticFloor float64 `yaml:"semantic_floor"`
	// LexicalFloor admits a fragment whose raw BM25 score exceeds it.
	LexicalFloor float64 `yaml:"lexical_floor"`
	// WeightSemantic multiplies the semantic score in the combined score.
	WeightSemantic float64 `yaml:"weight_semantic"`
	// WeightLexical multiplies the (possibly compressed) lexical score.
	WeightLexical float64 `yaml:"weight_lexical"`
	// LogCompressLexical replaces the lexical score with ln(score+1) before weighting.
	LogCompressLexical bool `yaml:"log_compress_lexical"`
	// ToleranceDays is the largest probe-to-week distance still counted as a match.
	ToleranceDays int `yaml:"tolerance_days"`
	// DedupPrefixLen is the number of runes compared when de-duplicating a year.
	DedupPrefixLen int `yaml:"dedup_prefix_len"`
	// MaxPerYear caps briefing entries per year.
	MaxPerYear int `yaml:"max_per_year"`
	// MaxYears caps the number of years in a briefing.
	MaxYears int `yaml:"max_years"`
	// TopK is the default number of search results.
	TopK int `yaml:"top_k"`
	// NoiseStrictness is one of lenient, balanced, strict.
	NoiseStrictness string `yaml:"noise_strictness"`
	// BM25K1 is the term-frequency saturation parameter.
	BM25K1 float64 `yaml:"bm25_k1"`
	// BM25B is the document-length normalisation parameter.
	BM25B float64 `yaml:"bm25_b"`
}

// DefaultTuning returns the reference values.
func DefaultTuning() Tuning {
	return Tuning{
		SemanticFloor:      0.45,
		LexicalFloor:       2.0,
		WeightSemantic:     1.0,
		WeightLexical:      0.5,
		LogCompressLexical: true,
		ToleranceDays:      7,
		DedupPrefixLen:     50,
		MaxPerYear:         4,
		MaxYears:           3,
		TopK:               5,
		NoiseStrictness:    noise.Strict.String(),
		BM25K1:             1.2,
		BM25B:              0.75,
	}
}

// Validate checks every field is within range.
func (t *Tuning) Validate() error {
	switch {
	case t.SemanticFloor < -1 || t.SemanticFloor > 1:
		return fmt.Errorf("%w: semantic_floor %v not in [-1, 1]", ErrInvalidTuning, t.SemanticFloor)
	case t.LexicalFloor < 0:
		return fmt.Errorf("%w: lexical_floor %v is negative", ErrInvalidTuning, t.LexicalFloor)
	case t.WeightSemantic < 0 || t.WeightLexical < 0:
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidTuning)
	case t.WeightSemantic == 0 && t.WeightLexical == 0:
		return fmt.Errorf("%w: at least one weight must be positive", ErrInvalidTuning)
	case t.ToleranceDays < 0:
		return fmt.Errorf("%w: tolerance_days %d is negative", ErrInvalidTuning, t.ToleranceDays)
	case t.DedupPrefixLen < 1:
		return fmt.Errorf("%w: dedup_prefix_len must be at least 1", ErrInvalidTuning)
	case t.MaxPerYear < 1 || t.MaxYears < 1 || t.TopK < 1:
		return fmt.Errorf("%w: max_per_year, max_years and top_k must be at least 1", ErrInvalidTuning)
	case t.BM25K1 < 0:
		return fmt.Errorf("%w: bm25_k1 %v is negative", ErrInvalidTuning, t.BM25K1)
	case t.BM25B < 0 || t.BM25B > 1:
		return fmt.Errorf("%w: bm25_b %v not in [0, 1]", ErrInvalidTuning, t.BM25B)
	}
	if _, err := noise.ParseStrictness(t.NoiseStrictness); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTuning, err)
	}
	return nil
}

// Strictness returns the parsed noise strictness, falling back to strict.
func (t *Tuning) Strictness() noise.Strictness {
	s, err := noise.ParseStrictness(t.NoiseStrictness)
	if err != nil {
		return noise.Strict
	}
	return s
}
