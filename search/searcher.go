package search

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/poiesic/almanac/ai"
	"github.com/poiesic/almanac/config"
	"github.com/poiesic/almanac/core"
	"github.com/poiesic/almanac/lexical"
	"github.com/poiesic/almanac/noise"
	"github.com/poiesic/almanac/storage"
)

// Searcher provides hybrid semantic and lexical search over fragments.
// It holds no mutable state after construction and is safe for concurrent use.
type Searcher struct {
	repository storage.FragmentRepository
	embedder   ai.Embedder
	index      *lexical.Index
	classifier *noise.Classifier
	tuning     config.Tuning
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithTuning replaces the default floors, weights and result count.
// The noise classifier follows the tuning's strictness unless WithClassifier
// is also given.
func WithTuning(tuning config.Tuning) Option {
	return func(s *Searcher) error {
		if err := tuning.Validate(); err != nil {
			return err
		}
		s.tuning = tuning
		return nil
	}
}

// WithLexicalIndex enables BM25 scoring. Without an index the searcher runs
// semantic-only and reports the degradation on every search.
func WithLexicalIndex(index *lexical.Index) Option {
	return func(s *Searcher) error {
		s.index = index
		return nil
	}
}

// WithClassifier sets the noise classifier.
func WithClassifier(classifier *noise.Classifier) Option {
	return func(s *Searcher) error {
		s.classifier = classifier
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	repository storage.FragmentRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		repository: repository,
		embedder:   provider.Embedder(),
		tuning:     config.DefaultTuning(),
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.classifier == nil {
		s.classifier = noise.NewClassifier(s.tuning.Strictness())
	}

	return s, nil
}

// HasLexicalIndex reports whether BM25 scoring is enabled.
func (s *Searcher) HasLexicalIndex() bool {
	return s.index != nil
}

// Search ranks fragments whose topic is allowed by topics against query.
// Returns up to topK results (Tuning.TopK when topK <= 0), best first.
func (s *Searcher) Search(ctx context.Context, query string, topics core.TopicSet, topK int) ([]*core.RankedResult, error) {
	return s.SearchWithMonitor(ctx, query, topics, topK, nil)
}

// SearchWithMonitor is Search with callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, topics core.TopicSet, topK int, monitor SearchMonitor) ([]*core.RankedResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if topK <= 0 {
		topK = s.tuning.TopK
	}

	monitor.Start(query)

	// 1. Embed the query
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingUnavailable, err)
	}
	monitor.AfterEmbedding(len(embedding))

	// 2. Reduce the query to content tokens
	var tokens []string
	if s.index != nil {
		tokens = s.index.Tokenize(query)
	} else {
		s.logger.Warn("lexical index unavailable, ranking by semantic similarity only", "query", query)
		monitor.LexicalUnavailable()
	}

	// 3. Score every candidate. The store computes the semantic score for
	// the whole topic-filtered corpus so lexical-only matches stay reachable.
	candidates, err := s.repository.FindSimilar(ctx, embedding, -math.MaxFloat32, 0, topics)
	if err != nil {
		s.logger.Error("error reading fragments", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrCorpusUnavailable, err)
	}

	results := make([]*core.RankedResult, 0, topK)
	noisy := 0
	for _, candidate := range candidates {
		fragment := candidate.Fragment
		if s.classifier.IsNoise(fragment.Text) {
			noisy++
			continue
		}

		semantic := candidate.SemanticScore
		var lex float64
		if s.index != nil {
			lex = s.index.Score(tokens, fragment.Key)
		}

		// 4. Admission
		if semantic <= s.tuning.SemanticFloor && lex <= s.tuning.LexicalFloor {
			continue
		}

		candidate.LexicalScore = lex
		candidate.CombinedScore = s.combine(semantic, lex)
		monitor.Admitted(candidate)
		results = append(results, candidate)
	}
	monitor.AfterCandidateScan(len(candidates), noisy)

	// 5. Rank
	slices.SortFunc(results, compareResults)
	if len(results) > topK {
		results = results[:topK]
	}
	monitor.Finish(results)

	return results, nil
}

func (s *Searcher) combine(semantic, lex float64) float64 {
	if s.tuning.LogCompressLexical {
		lex = math.Log(lex + 1)
	}
	return s.tuning.WeightSemantic*semantic + s.tuning.WeightLexical*lex
}

// compareResults orders by combined score, then semantic score, both
// descending, then by key.
func compareResults(a, b *core.RankedResult) int {
	if c := cmp.Compare(b.CombinedScore, a.CombinedScore); c != 0 {
		return c
	}
	if c := cmp.Compare(b.SemanticScore, a.SemanticScore); c != 0 {
		return c
	}
	return cmp.Compare(a.Key(), b.Key())
}
