package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/poiesic/almanac/ai"
	"github.com/poiesic/almanac/ai/mock"
	"github.com/poiesic/almanac/config"
	"github.com/poiesic/almanac/core"
	"github.com/poiesic/almanac/lexical"
	"github.com/poiesic/almanac/noise"
	"github.com/poiesic/almanac/storage"
	"github.com/poiesic/almanac/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fragment(day int, topic core.Topic, text string, vector ...float32) *core.Fragment {
	start := time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC)
	return core.NewFragment(start, start.AddDate(0, 0, 6), topic, text, vector)
}

// fixedProvider embeds every query as vector.
func fixedProvider(vector ...float32) ai.AIProvider {
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(_ context.Context, _ string) ([]float32, error) {
		return vector, nil
	})
	return mock.NewMockProviderWithEmbedder(embedder)
}

func newRepo(t *testing.T, fragments ...*core.Fragment) storage.FragmentRepository {
	t.Helper()
	repo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	if len(fragments) > 0 {
		_, err = repo.AddFragments(context.Background(), fragments...)
		require.NoError(t, err)
	}
	return repo
}

func TestNewSearcher(t *testing.T) {
	repo := newRepo(t)
	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(repo, provider)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
		assert.False(t, searcher.HasLexicalIndex())
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(repo, provider, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(repo, provider, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher.logger)
	})

	t.Run("invalid tuning", func(t *testing.T) {
		tuning := config.DefaultTuning()
		tuning.TopK = 0
		_, err := NewSearcher(repo, provider, WithTuning(tuning))
		assert.ErrorIs(t, err, config.ErrInvalidTuning)
	})

	t.Run("classifier follows tuning strictness", func(t *testing.T) {
		tuning := config.DefaultTuning()
		tuning.NoiseStrictness = "lenient"
		searcher, err := NewSearcher(repo, provider, WithTuning(tuning))
		require.NoError(t, err)
		assert.Equal(t, noise.Lenient, searcher.classifier.Strictness())
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewSearcher(nil, provider)
		assert.Equal(t, ErrRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewSearcher(repo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestSearch_EmptyDatabase(t *testing.T) {
	searcher, err := NewSearcher(newRepo(t), fixedProvider(1, 0, 0))
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "겨울철 꿀벌 관리", nil, 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearch_BeekeepingOutranksRice(t *testing.T) {
	bee := fragment(6, core.TopicBeekeeping, "겨울철 꿀벌 월동 관리 요령과 보온 점검", 0.9, 0.1, 0)
	rice := fragment(6, core.TopicRice, "못자리 설치 전 종자 소독 준비", 0.5, 0, 0.866)
	fragments := []*core.Fragment{bee, rice}

	index, err := lexical.Build(fragments)
	require.NoError(t, err)

	searcher, err := NewSearcher(newRepo(t, fragments...), fixedProvider(1, 0, 0), WithLexicalIndex(index))
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "겨울철 꿀벌 관리", nil, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, bee.Key, results[0].Key())
	assert.Greater(t, results[0].LexicalScore, 0.0)
	assert.Equal(t, rice.Key, results[1].Key())
	assert.Zero(t, results[1].LexicalScore)
	assert.Greater(t, results[0].CombinedScore, results[1].CombinedScore)
}

func TestSearch_ExcludesNoise(t *testing.T) {
	heading := fragment(6, core.TopicOther, "### Chapter 3", 1, 0, 0)
	toc := fragment(6, core.TopicSummary, "목 차\n1. 기상 ···· 3\n2. 벼 ···· 5", 1, 0, 0)
	body := fragment(6, core.TopicWeather, "주간 기온은 평년보다 1~2℃ 높겠습니다.", 0.8, 0.2, 0)

	searcher, err := NewSearcher(newRepo(t, heading, toc, body), fixedProvider(1, 0, 0))
	require.NoError(t, err)

	monitor := &testMonitor{}
	results, err := searcher.SearchWithMonitor(context.Background(), "기온", nil, 5, monitor)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, body.Key, results[0].Key())
	assert.Equal(t, 3, monitor.scanned)
	assert.Equal(t, 2, monitor.noise)
}

func TestSearch_Admission(t *testing.T) {
	semantic := fragment(6, core.TopicWeather, "한파 특보 발효 시 시설 점검", 1, 0, 0)
	lexicalOnly := fragment(6, core.TopicBeekeeping, "응애 방제 약제 교대 사용", 0, 1, 0)
	neither := fragment(6, core.TopicRice, "못자리 물 관리", 0, 0, 1)
	fragments := []*core.Fragment{semantic, lexicalOnly, neither}

	index, err := lexical.Build(fragments)
	require.NoError(t, err)

	tuning := config.DefaultTuning()
	tuning.SemanticFloor = 0.9
	tuning.LexicalFloor = 0.1

	searcher, err := NewSearcher(newRepo(t, fragments...), fixedProvider(1, 0, 0),
		WithLexicalIndex(index), WithTuning(tuning))
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "응애 방제", nil, 10)
	require.NoError(t, err)

	keys := make([]string, 0, len(results))
	for _, r := range results {
		keys = append(keys, r.Key())
	}
	assert.ElementsMatch(t, []string{semantic.Key, lexicalOnly.Key}, keys)
}

// similarityRecorder records the arguments of the nearest-neighbour scan.
type similarityRecorder struct {
	storage.FragmentRepository
	calls         int
	minSimilarity float32
	topics        core.TopicSet
}

func (r *similarityRecorder) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int, topics core.TopicSet) ([]*core.RankedResult, error) {
	r.calls++
	r.minSimilarity = minSimilarity
	r.topics = topics
	return r.FragmentRepository.FindSimilar(ctx, vector, minSimilarity, limit, topics)
}

func TestSearch_SemanticPassUsesFindSimilar(t *testing.T) {
	opposite := fragment(6, core.TopicBeekeeping, "응애 방제 약제 교대 사용", -1, 0, 0)
	index, err := lexical.Build([]*core.Fragment{opposite})
	require.NoError(t, err)

	tuning := config.DefaultTuning()
	tuning.LexicalFloor = 0.1

	repo := &similarityRecorder{FragmentRepository: newRepo(t, opposite)}
	searcher, err := NewSearcher(repo, fixedProvider(1, 0, 0), WithLexicalIndex(index), WithTuning(tuning))
	require.NoError(t, err)

	topics := core.NewTopicSet(core.TopicBeekeeping)
	results, err := searcher.Search(context.Background(), "응애 방제", topics, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, topics, repo.topics)
	// A fragment pointing away from the query is still reachable by keywords.
	require.Len(t, results, 1)
	assert.InDelta(t, -1.0, results[0].SemanticScore, 1e-6)
	assert.Greater(t, results[0].LexicalScore, tuning.LexicalFloor)
}

func TestSearch_Ordering(t *testing.T) {
	fragments := []*core.Fragment{
		fragment(20, core.TopicVegetables, "시설 채소 환기 관리", 0.7, 0.7, 0),
		fragment(6, core.TopicVegetables, "노지 채소 월동 관리", 0.7, 0.7, 0),
		fragment(13, core.TopicFruitTrees, "과수 동해 예방 관리", 0.9, 0.1, 0),
		fragment(27, core.TopicFlowers, "화훼 난방비 절감", 0.6, 0.8, 0),
	}
	searcher, err := NewSearcher(newRepo(t, fragments...), fixedProvider(1, 0, 0))
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "관리", nil, 10)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].CombinedScore, results[i].CombinedScore)
	}

	// Equal scores fall back to key order.
	assert.Equal(t, fragments[2].Key, results[0].Key())
	assert.Equal(t, fragments[1].Key, results[1].Key())
	assert.Equal(t, fragments[0].Key, results[2].Key())
	assert.Equal(t, fragments[3].Key, results[3].Key())
}

func TestSearch_TopicFilterAndTopK(t *testing.T) {
	var fragments []*core.Fragment
	for day := 1; day <= 7; day++ {
		fragments = append(fragments, fragment(day, core.TopicBeekeeping, "봉군 보온 관리", 1, 0, 0))
	}
	fragments = append(fragments, fragment(1, core.TopicRice, "벼 병해충 예찰", 1, 0, 0))

	searcher, err := NewSearcher(newRepo(t, fragments...), fixedProvider(1, 0, 0))
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("default top k", func(t *testing.T) {
		results, err := searcher.Search(ctx, "관리", nil, 0)
		require.NoError(t, err)
		assert.Len(t, results, config.DefaultTuning().TopK)
	})

	t.Run("topic filter", func(t *testing.T) {
		results, err := searcher.Search(ctx, "관리", core.NewTopicSet(core.TopicRice), 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, core.TopicRice, results[0].Fragment.Topic)
	})

	t.Run("explicit top k", func(t *testing.T) {
		results, err := searcher.Search(ctx, "관리", nil, 2)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})
}

func TestSearch_EmbeddingUnavailable(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(_ context.Context, _ string) ([]float32, error) {
		return nil, errors.New("connection refused")
	})
	repo := newRepo(t, fragment(6, core.TopicSummary, "한파 대비", 1, 0, 0))
	searcher, err := NewSearcher(repo, mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "한파", nil, 5)
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
	assert.Nil(t, results)
}

type failingRepository struct {
	storage.FragmentRepository
}

func (failingRepository) FindSimilar(context.Context, []float32, float32, int, core.TopicSet) ([]*core.RankedResult, error) {
	return nil, storage.ErrStorageClosed
}

func TestSearch_CorpusUnavailable(t *testing.T) {
	searcher, err := NewSearcher(failingRepository{}, fixedProvider(1, 0, 0))
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "한파", nil, 5)
	assert.ErrorIs(t, err, ErrCorpusUnavailable)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.Nil(t, results)
}

func TestSearch_WithoutLexicalIndex(t *testing.T) {
	repo := newRepo(t,
		fragment(6, core.TopicBeekeeping, "겨울철 꿀벌 관리", 0.9, 0.1, 0),
		fragment(6, core.TopicRice, "겨울철 논 관리", 0, 0, 1),
	)
	searcher, err := NewSearcher(repo, fixedProvider(1, 0, 0))
	require.NoError(t, err)

	monitor := &testMonitor{}
	results, err := searcher.SearchWithMonitor(context.Background(), "겨울철 꿀벌 관리", nil, 5, monitor)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Zero(t, results[0].LexicalScore)
	assert.Equal(t, 1, monitor.lexicalUnavailable)
}

func TestSearchWithMonitor(t *testing.T) {
	fragments := []*core.Fragment{
		fragment(6, core.TopicBeekeeping, "겨울철 꿀벌 관리", 0.9, 0.1, 0),
		fragment(13, core.TopicBeekeeping, "봄철 벌통 청소", 0.8, 0.2, 0),
	}
	index, err := lexical.Build(fragments)
	require.NoError(t, err)

	searcher, err := NewSearcher(newRepo(t, fragments...), fixedProvider(1, 0, 0), WithLexicalIndex(index))
	require.NoError(t, err)

	monitor := &testMonitor{}
	results, err := searcher.SearchWithMonitor(context.Background(), "꿀벌", nil, 5, monitor)
	require.NoError(t, err)

	assert.Equal(t, "꿀벌", monitor.query)
	assert.Equal(t, 3, monitor.dimensions)
	assert.Equal(t, 2, monitor.scanned)
	assert.Zero(t, monitor.lexicalUnavailable)
	assert.Len(t, monitor.admitted, 2)
	assert.Equal(t, results, monitor.results)
}

type testMonitor struct {
	query              string
	dimensions         int
	scanned            int
	noise              int
	lexicalUnavailable int
	admitted           []*core.RankedResult
	results            []*core.RankedResult
}

func (m *testMonitor) Start(query string) {
	m.query = query
}

func (m *testMonitor) AfterEmbedding(dimensions int) {
	m.dimensions = dimensions
}

func (m *testMonitor) AfterCandidateScan(scanned, noise int) {
	m.scanned = scanned
	m.noise = noise
}

func (m *testMonitor) LexicalUnavailable() {
	m.lexicalUnavailable++
}

func (m *testMonitor) Admitted(result *core.RankedResult) {
	m.admitted = append(m.admitted, result)
}

func (m *testMonitor) Finish(results []*core.RankedResult) {
	m.results = results
}
