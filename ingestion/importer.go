package ingestion

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/almanac/ai"
	"github.com/poiesic/almanac/core"
	"github.com/poiesic/almanac/reembed"
	"github.com/poiesic/almanac/storage"
)

const (
	// DefaultBatchSize is the number of fragments sent to the embedder per call.
	DefaultBatchSize = 64

	// maxLineSize bounds a single JSON line; weekly entries are a few KB.
	maxLineSize = 4 << 20
)

// Report summarizes one Import run.
type Report struct {
	Lines     int // Input lines parsed in this run
	Fragments int // Fragments stored
	Skipped   int // Topic bodies skipped as empty, too short or not text
	Resumed   int // Lines skipped because an earlier run had committed them
}

// Importer builds the fragment corpus from weekly JSON Lines entries.
type Importer struct {
	repository  storage.FragmentRepository
	checkpoints storage.CheckpointRepository
	pool        *ants.Pool
	embedder    processor
	batchSize   int
	backoff     reembed.Backoff
	progress    io.Writer
	logger      *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(im *Importer) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if im.pool != nil {
			im.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		im.pool = pool
		return nil
	}
}

// WithBatchSize sets how many fragments are embedded per call.
func WithBatchSize(size int) Option {
	return func(im *Importer) error {
		if size < 1 {
			size = DefaultBatchSize
		}
		im.batchSize = size
		return nil
	}
}

// WithRetry sets the retry policy for embedding calls.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(im *Importer) error {
		if maxAttempts < 1 {
			return reembed.ErrInvalidMaxAttempts
		}
		im.backoff = reembed.Backoff{MaxAttempts: maxAttempts, BaseDelay: baseDelay, MaxDelay: 30 * time.Second}
		return nil
	}
}

// WithProgress reports per-line progress to w.
func WithProgress(w io.Writer) Option {
	return func(im *Importer) error {
		im.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) error {
		if logger == nil {
			logger = slog.Default()
		}
		im.logger = logger
		return nil
	}
}

// NewImporter creates a new importer. Call Release when done.
func NewImporter(
	repository storage.FragmentRepository,
	checkpoints storage.CheckpointRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Importer, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	pool, err := ants.NewPool(max(runtime.NumCPU()/2, 1))
	if err != nil {
		return nil, err
	}

	im := &Importer{
		repository:  repository,
		checkpoints: checkpoints,
		pool:        pool,
		batchSize:   DefaultBatchSize,
		backoff:     reembed.Backoff{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second},
		progress:    io.Discard,
		logger:      slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(im); optErr != nil {
			im.Release()
			return nil, optErr
		}
	}

	// Create the processor after options are applied so it gets the final config
	embedder, err := newEmbeddingProcessor(provider.Embedder(), im.backoff, im.logger)
	if err != nil {
		im.Release()
		return nil, err
	}
	im.embedder = embedder

	return im, nil
}

// pending accumulates fragments of consecutive lines until a flush.
type pending struct {
	fragments []*core.Fragment
	lastLine  int
}

// Import reads weekly entries from r and stores their fragments. source
// names the input for checkpointing; lines at or before the source's
// checkpoint are skipped.
func (im *Importer) Import(ctx context.Context, r io.Reader, source string) (*Report, error) {
	checkpoint, err := im.checkpoints.LoadCheckpoint(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint for %s: %w", source, err)
	}
	resumeAfter := 0
	if checkpoint != nil {
		resumeAfter = checkpoint.Position
		im.logger.Info("resuming import", "source", source, "after_line", resumeAfter)
	}

	report := &Report{}
	batch := &pending{}
	flushAt := im.batchSize * max(im.pool.Cap(), 1)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if lineNum <= resumeAfter {
			report.Resumed++
			continue
		}

		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		e, err := parseEntry(line)
		if err != nil {
			im.logger.Error("error parsing entry", "source", source, "line", lineNum, "err", err)
			return report, fmt.Errorf("line %d: %w", lineNum, err)
		}
		report.Lines++
		report.Skipped += e.skipped

		batch.fragments = append(batch.fragments, e.fragments()...)
		batch.lastLine = lineNum

		if len(batch.fragments) >= flushAt {
			if err := im.flush(ctx, source, batch, report); err != nil {
				return report, err
			}
			fmt.Fprintf(im.progress, "\rImported %d lines, %d fragments", report.Lines, report.Fragments)
		}
	}
	if err := scanner.Err(); err != nil {
		return report, fmt.Errorf("reading %s: %w", source, err)
	}

	if batch.lastLine == 0 {
		batch.lastLine = max(lineNum, resumeAfter)
	}
	if err := im.flush(ctx, source, batch, report); err != nil {
		return report, err
	}
	fmt.Fprintf(im.progress, "\rImported %d lines, %d fragments\n", report.Lines, report.Fragments)

	im.logger.Info("import complete", "source", source, "lines", report.Lines,
		"fragments", report.Fragments, "skipped", report.Skipped, "resumed", report.Resumed)
	return report, nil
}

// flush embeds pending fragments concurrently, stores them and advances the
// checkpoint to the last line they came from.
func (im *Importer) flush(ctx context.Context, source string, batch *pending, report *Report) error {
	fragments := batch.fragments
	if len(fragments) > 0 {
		if err := im.embedAll(ctx, fragments); err != nil {
			return err
		}
		if _, err := im.repository.AddFragments(ctx, fragments...); err != nil {
			im.logger.Error("error storing fragments", "fragments", len(fragments), "err", err)
			return fmt.Errorf("storing fragments: %w", err)
		}
		report.Fragments += len(fragments)
	}

	if batch.lastLine > 0 {
		err := im.checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{Source: source, Position: batch.lastLine})
		if err != nil {
			return fmt.Errorf("saving checkpoint for %s: %w", source, err)
		}
	}

	batch.fragments = nil
	return nil
}

// embedAll splits fragments into batches and embeds them on the pool.
func (im *Importer) embedAll(ctx context.Context, fragments []*core.Fragment) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for start := 0; start < len(fragments); start += im.batchSize {
		chunk := fragments[start:min(start+im.batchSize, len(fragments))]
		wg.Add(1)
		err := im.pool.Submit(func() {
			defer wg.Done()
			if err := im.embedder.process(ctx, chunk); err != nil {
				fail(err)
			}
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return fmt.Errorf("embedding fragments: %w", firstErr)
	}
	return nil
}

// Reset deletes every fragment and the checkpoint of source, so the next
// Import rebuilds the corpus from scratch.
func (im *Importer) Reset(ctx context.Context, source string) error {
	if err := im.repository.Reset(ctx); err != nil {
		return err
	}
	return im.checkpoints.ClearCheckpoint(ctx, source)
}

// Release releases resources including the worker pool.
// The importer should not be used after calling Release.
func (im *Importer) Release() {
	if im.pool != nil {
		im.pool.Release()
	}
}
