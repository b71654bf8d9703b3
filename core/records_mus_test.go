package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragmentMUS(t *testing.T) {
	f := NewFragment(date(2024, time.January, 6), date(2024, time.January, 12), TopicBeekeeping,
		"겨울철 온도는 -2~5℃ 유지", []float32{0.25, -0.5, 1})
	f.InsertedAt = time.Date(2025, time.May, 1, 8, 30, 0, 123000, time.UTC)

	buf := make([]byte, FragmentMUS.Size(*f))
	n := FragmentMUS.Marshal(*f, buf)
	assert.Equal(t, len(buf), n)

	got, m, err := FragmentMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, n, m)
	assert.Equal(t, *f, got)
}

func TestFragmentMUSTruncated(t *testing.T) {
	f := NewFragment(date(2024, time.January, 6), date(2024, time.January, 12), TopicWeather, "맑음", make([]float32, 8))
	buf := make([]byte, FragmentMUS.Size(*f))
	FragmentMUS.Marshal(*f, buf)

	_, _, err := FragmentMUS.Unmarshal(buf[:len(buf)-20])
	assert.Error(t, err)
}

func TestCheckpointMUS(t *testing.T) {
	c := Checkpoint{Source: "bulletins.jsonl", Position: 420, UpdatedAt: time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)}
	buf := make([]byte, CheckpointMUS.Size(c))
	CheckpointMUS.Marshal(c, buf)

	got, _, err := CheckpointMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}
