package storage

import (
	"testing"
	"time"

	"github.com/poiesic/almanac/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("2024-01-06_2024-01-12/summary")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalFragment(t *testing.T) {
	start := time.Date(2023, time.June, 24, 0, 0, 0, 0, time.UTC)
	fragment := core.NewFragment(start, start.AddDate(0, 0, 6), core.TopicFruitTrees,
		"| 구분 | 내용 |\n| 탄저병 | 방제 철저 |", []float32{0.1, 0.2, 0.3})
	fragment.InsertedAt = time.Now().UTC().Truncate(time.Microsecond)

	decoded, err := UnmarshalFragment(MarshalFragment(fragment))
	require.NoError(t, err)
	assert.Equal(t, fragment, decoded)
}

func TestUnmarshalFragment_Invalid(t *testing.T) {
	_, err := UnmarshalFragment([]byte{0x01})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalCheckpoint(t *testing.T) {
	checkpoint := &core.Checkpoint{
		Source:    "/data/weekly.jsonl",
		Position:  57,
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	decoded, err := UnmarshalCheckpoint(MarshalCheckpoint(checkpoint))
	require.NoError(t, err)
	assert.Equal(t, checkpoint, decoded)
}
