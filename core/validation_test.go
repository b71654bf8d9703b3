package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validFragment() *Fragment {
	return NewFragment(date(2024, time.January, 6), date(2024, time.January, 12), TopicSummary, "한파 대비 시설 점검", nil)
}

func TestValidateFragment(t *testing.T) {
	assert.NoError(t, ValidateFragment(validFragment()))

	tests := []struct {
		name   string
		mutate func(*Fragment)
		want   error
	}{
		{"blank text", func(f *Fragment) { f.Text = "  \n" }, ErrEmptyContent},
		{"unknown topic", func(f *Fragment) { f.Topic = "tea" }, ErrUnknownTopic},
		{"reversed week", func(f *Fragment) { f.WeekEnd = f.WeekStart.AddDate(0, 0, -1) }, ErrInvalidWeek},
		{"malformed key", func(f *Fragment) { f.Key = "week-1" }, ErrInvalidKey},
		{"topic disagrees with key", func(f *Fragment) { f.Topic = TopicWeather }, ErrKeyMismatch},
		{"year disagrees", func(f *Fragment) { f.Year = 2023 }, ErrKeyMismatch},
		{"month disagrees", func(f *Fragment) { f.Month = 2 }, ErrKeyMismatch},
		{"id disagrees", func(f *Fragment) { f.Id++ }, ErrKeyMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFragment()
			tt.mutate(f)
			err := ValidateFragment(f)
			assert.ErrorIs(t, err, ErrInvalidFragment)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.ErrorIs(t, ValidateFragment(nil), ErrInvalidFragment)
}
