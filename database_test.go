package almanac

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/almanac/ai"
	"github.com/poiesic/almanac/ai/mock"
	"github.com/poiesic/almanac/config"
	"github.com/poiesic/almanac/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bulletins = `{"id":"2023-01-07~2023-01-13","content":{"요약":"한파 대비 시설 점검 철저","양봉":"겨울철 봉군 보온 관리"}}
{"id":"2024-01-06~2024-01-12","content":{"요약":"저온 피해 예방 관리 철저","기상":"기온 평년보다 낮음"}}
{"id":"2024-06-01~2024-06-07","content":{"벼":"모내기 후 물 관리 철저"}}
`

func newTestDatabase(t *testing.T, opts ...DatabaseOption) *Database {
	t.Helper()
	opts = append([]DatabaseOption{InMemory(), WithProvider(mock.NewMockProvider())}, opts...)
	db, err := NewDatabase("", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func importBulletins(t *testing.T, db *Database) {
	t.Helper()
	importer, err := db.NewImporter()
	require.NoError(t, err)
	defer importer.Release()
	report, err := importer.Import(context.Background(), strings.NewReader(bulletins), "bulletins.jsonl")
	require.NoError(t, err)
	require.Equal(t, 5, report.Fragments)
}

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.FragmentRepository())
		assert.NotNil(t, db.CheckpointRepository())
		assert.NotNil(t, db.Provider())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
		assert.Equal(t, config.DefaultTuning(), db.Tuning())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("error with invalid AI config", func(t *testing.T) {
		cfg := ai.NewConfig(ai.WithEmbeddingModel(""))
		db, err := NewDatabase("", InMemory(), WithAIConfig(cfg))
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("error with invalid tuning", func(t *testing.T) {
		tuning := config.DefaultTuning()
		tuning.TopK = 0
		db, err := NewDatabase("", InMemory(), WithTuning(tuning))
		assert.ErrorIs(t, err, config.ErrInvalidTuning)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, db)

	// Close the database
	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	t.Run("can create importer", func(t *testing.T) {
		importer, err := db.NewImporter()
		require.NoError(t, err)
		require.NotNil(t, importer)
		importer.Release()
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := db.NewSearcher(ctx)
		require.NoError(t, err)
		require.NotNil(t, searcher)
		assert.True(t, searcher.HasLexicalIndex())
	})

	t.Run("can create matcher and assembler", func(t *testing.T) {
		matcher, err := db.NewMatcher()
		require.NoError(t, err)
		require.NotNil(t, matcher)

		assembler, err := db.NewAssembler()
		require.NoError(t, err)
		require.NotNil(t, assembler)
		assembler.Release()
	})

	t.Run("can create reembedder", func(t *testing.T) {
		reembedder, err := db.NewReembedder(nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, reembedder)
	})
}

func TestDatabase_ImportAndQuery(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	importBulletins(t, db)

	counts, err := db.FragmentRepository().YearCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{2023: 2, 2024: 3}, counts)

	t.Run("lexical index covers the corpus", func(t *testing.T) {
		index, err := db.NewLexicalIndex(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, index.Len())
	})

	t.Run("search finds the lexical match", func(t *testing.T) {
		searcher, err := db.NewSearcher(ctx)
		require.NoError(t, err)

		results, err := searcher.Search(ctx, "모내기 물 관리", core.NewTopicSet(core.TopicRice), 3)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "2024-06-01_2024-06-07/rice", results[0].Key())
	})

	t.Run("briefing for the first week of January", func(t *testing.T) {
		assembler, err := db.NewAssembler()
		require.NoError(t, err)
		defer assembler.Release()

		today := time.Date(2025, time.January, 9, 0, 0, 0, 0, time.UTC)
		entries, err := assembler.Assemble(ctx, today, []int{2024, 2023}, 0, 0)
		require.NoError(t, err)

		groups := core.GroupBriefing(entries)
		require.Len(t, groups, 2)
		assert.Equal(t, 2024, groups[0].Year)
		assert.Equal(t, 2023, groups[1].Year)
		assert.Equal(t, core.TopicSummary, groups[0].Entries[0].Topic)
		assert.Equal(t, core.TopicSummary, groups[1].Entries[0].Topic)
	})
}
