package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedderDeterministic(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()

	a, err := m.EmbedText(ctx, "양봉: 월동 관리")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "양봉: 월동 관리")
	require.NoError(t, err)
	c, err := m.EmbedText(ctx, "벼: 못자리")
	require.NoError(t, err)

	assert.Len(t, a, DefaultDimensions)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
	assert.Equal(t, 3, m.CallCount())
}

func TestMockEmbedderInjection(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("model unavailable")
	m := NewMockEmbedder().WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		return nil, boom
	})

	_, err := m.EmbedText(ctx, "x")
	assert.ErrorIs(t, err, boom)

	_, err = m.EmbedTexts(ctx, []string{"x", "y"})
	assert.ErrorIs(t, err, boom)

	m.Reset()
	assert.Zero(t, m.CallCount())
	vectors, err := m.EmbedTexts(ctx, []string{"x", "y"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	require.NotNil(t, p.Embedder())
	assert.NoError(t, p.Close())

	custom := NewMockEmbedder()
	custom.Dimensions = 4
	p = NewMockProviderWithEmbedder(custom)
	v, err := p.Embedder().EmbedText(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, v, 4)
	assert.Same(t, custom, p.(*MockProvider).GetMockEmbedder())
}
