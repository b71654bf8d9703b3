package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/almanac/ai"
	"github.com/poiesic/almanac/core"
	"github.com/poiesic/almanac/storage"
)

// BatchProcessor embeds batches of fragments and writes them back.
type BatchProcessor struct {
	repo     storage.FragmentRepository
	embedder ai.Embedder
	backoff  Backoff
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.FragmentRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return NewBatchProcessorWithBackoff(repo, embedder, Backoff{MaxAttempts: maxRetries, BaseDelay: retryBaseDelay})
}

// NewBatchProcessorWithBackoff creates a batch processor with a full retry policy.
func NewBatchProcessorWithBackoff(repo storage.FragmentRepository, embedder ai.Embedder, backoff Backoff) *BatchProcessor {
	return &BatchProcessor{
		repo:     repo,
		embedder: embedder,
		backoff:  backoff,
	}
}

// Embed computes normalized embeddings for fragments in place without
// storing them.
func (bp *BatchProcessor) Embed(ctx context.Context, fragments []*core.Fragment) error {
	if len(fragments) == 0 {
		return nil
	}

	texts := make([]string, len(fragments))
	for i, fragment := range fragments {
		texts[i] = fragment.EmbeddingText()
	}

	var embeddings [][]float32
	err := bp.backoff.Retry(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.backoff.MaxAttempts, err)
	}

	if len(embeddings) != len(fragments) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(fragments), len(embeddings))
	}

	for i := range fragments {
		fragments[i].Embedding = NormalizeVector(embeddings[i])
	}
	return nil
}

// Process embeds a batch of fragments and stores them.
func (bp *BatchProcessor) Process(ctx context.Context, fragments []*core.Fragment) error {
	if err := bp.Embed(ctx, fragments); err != nil {
		return err
	}
	if len(fragments) == 0 {
		return nil
	}

	if _, err := bp.repo.AddFragments(ctx, fragments...); err != nil {
		return fmt.Errorf("failed to update fragments: %w", err)
	}
	return nil
}
