package recall

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/almanac/core"
	"github.com/poiesic/almanac/storage"
	"github.com/poiesic/almanac/storage/badger"
	"github.com/stretchr/testify/require"
)

// frag builds a seven-day fragment starting on start ("YYYY-MM-DD").
func frag(t *testing.T, start string, topic core.Topic, text string) *core.Fragment {
	t.Helper()
	day, err := core.ParseDate(start)
	require.NoError(t, err)
	return core.NewFragment(day, day.AddDate(0, 0, 6), topic, text, []float32{1, 0, 0})
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	day, err := core.ParseDate(s)
	require.NoError(t, err)
	return day
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

type failingRepository struct {
	storage.FragmentRepository
}

func (failingRepository) FindFragments(context.Context, storage.Filter) ([]*core.Fragment, error) {
	return nil, storage.ErrStorageClosed
}

func keys(entries []*core.BriefingEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Fragment.Key
	}
	return out
}
