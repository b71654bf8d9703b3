package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTopic(t *testing.T) {
	tests := []struct {
		in   string
		want Topic
	}{
		{"summary", TopicSummary},
		{" Beekeeping ", TopicBeekeeping},
		{"양봉", TopicBeekeeping},
		{"요 약", TopicSummary},
		{"농업정보", TopicAgronomyAdvisory},
		{"기타", TopicOther},
	}
	for _, tt := range tests {
		got, err := ParseTopic(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseTopic("'; DROP TABLE fragments; --")
	assert.ErrorIs(t, err, ErrUnknownTopic)
}

func TestTopicLabels(t *testing.T) {
	for _, topic := range Topics {
		assert.True(t, topic.Valid())
		back, err := ParseTopic(topic.Label())
		require.NoError(t, err)
		assert.Equal(t, topic, back)
	}
	assert.Equal(t, "tea", Topic("tea").Label())
}

func TestTopicSet(t *testing.T) {
	t.Run("empty set allows everything", func(t *testing.T) {
		var set TopicSet
		for _, topic := range Topics {
			assert.True(t, set.Allows(topic))
		}
	})

	t.Run("parse validates", func(t *testing.T) {
		set, err := ParseTopics([]string{"양봉", "weather"})
		require.NoError(t, err)
		assert.True(t, set.Allows(TopicBeekeeping))
		assert.True(t, set.Allows(TopicWeather))
		assert.False(t, set.Allows(TopicRice))
		assert.Equal(t, []Topic{TopicWeather, TopicBeekeeping}, set.Sorted())

		_, err = ParseTopics([]string{"weather", "tea"})
		assert.ErrorIs(t, err, ErrUnknownTopic)
	})
}

func TestEmbeddingText(t *testing.T) {
	assert.Equal(t, "양봉: 겨울철 온도는 -2~5℃ 유지", EmbeddingText(TopicBeekeeping, "겨울철 온도는 -2~5℃ 유지"))
}

func TestGroupBriefing(t *testing.T) {
	entries := []*BriefingEntry{{Year: 2024}, {Year: 2024}, {Year: 2023}, {Year: 2021}}
	groups := GroupBriefing(entries)
	require.Len(t, groups, 3)
	assert.Equal(t, 2024, groups[0].Year)
	assert.Len(t, groups[0].Entries, 2)
	assert.Equal(t, 2021, groups[2].Year)
	assert.Empty(t, GroupBriefing(nil))
}
