package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/almanac/ai"
	"github.com/poiesic/almanac/core"
	"github.com/poiesic/almanac/reembed"
)

// embeddingProcessor generates normalized embeddings for fragments.
type embeddingProcessor struct {
	batch  *reembed.BatchProcessor
	logger *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(embedder ai.Embedder, backoff reembed.Backoff, logger *slog.Logger) (processor, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		// Embed never touches the repository.
		batch:  reembed.NewBatchProcessorWithBackoff(nil, embedder, backoff),
		logger: logger.With("processor", "embeddings"),
	}, nil
}

// process embeds fragments in place.
func (ep *embeddingProcessor) process(ctx context.Context, fragments []*core.Fragment) error {
	ep.logger.Debug("generating embeddings for fragments", "fragments", len(fragments))
	if err := ep.batch.Embed(ctx, fragments); err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}
	return nil
}
