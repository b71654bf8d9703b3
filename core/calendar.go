// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used in fragment keys.
const DateLayout = "2006-01-02"

// Day truncates t to UTC midnight of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// IsLeapYear reports whether year has a February 29.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// ProjectDate places today's month and day onto year.
// February 29 falls back to February 28 when year is not a leap year.
func ProjectDate(today time.Time, year int) time.Time {
	_, month, day := today.Date()
	if month == time.February && day == 29 && !IsLeapYear(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the absolute number of calendar days between a and b.
func DaysBetween(a, b time.Time) int {
	d := Day(a).Sub(Day(b))
	if d < 0 {
		d = -d
	}
	return int(d.Hours()/24 + 0.5)
}

// WeekDistance is 0 when day lies within [start, end], otherwise the number
// of days to the nearer boundary.
func WeekDistance(day, start, end time.Time) int {
	day = Day(day)
	if !day.Before(Day(start)) && !day.After(Day(end)) {
		return 0
	}
	return min(DaysBetween(day, start), DaysBetween(day, end))
}

// ParseWeekRange parses a bulletin week id. Both "2024-01-06_2024-01-12" and
// the markdown header form "2024-01-06~2024-01-12" are accepted.
func ParseWeekRange(s string) (start, end time.Time, err error) {
	s = strings.TrimSpace(s)
	sep := "_"
	if !strings.Contains(s, sep) {
		sep = "~"
	}
	first, second, ok := strings.Cut(s, sep)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: week range %q", ErrInvalidKey, s)
	}
	if start, err = ParseDate(first); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end, err = ParseDate(second); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: week range %q ends before it starts", ErrInvalidKey, s)
	}
	return start, end, nil
}

// WeekID formats a week range as "YYYY-MM-DD_YYYY-MM-DD".
func WeekID(start, end time.Time) string {
	return start.Format(DateLayout) + "_" + end.Format(DateLayout)
}

// FragmentKey builds the unique key of the fragment for a week and topic.
func FragmentKey(start, end time.Time, topic Topic) string {
	return WeekID(start, end) + "/" + string(topic)
}

// ParseFragmentKey splits a fragment key back into its week range and topic.
func ParseFragmentKey(key string) (start, end time.Time, topic Topic, err error) {
	week, rawTopic, ok := strings.Cut(key, "/")
	if !ok {
		return time.Time{}, time.Time{}, "", fmt.Errorf("%w: %q has no topic", ErrInvalidKey, key)
	}
	if start, end, err = ParseWeekRange(week); err != nil {
		return time.Time{}, time.Time{}, "", err
	}
	topic = Topic(rawTopic)
	if !topic.Valid() {
		return time.Time{}, time.Time{}, "", fmt.Errorf("%w: %q", ErrUnknownTopic, rawTopic)
	}
	return start, end, topic, nil
}

// NewFragment assembles a fragment for one topic of a weekly bulletin,
// deriving the key, ID, year and month from the week range.
func NewFragment(start, end time.Time, topic Topic, text string, embedding []float32) *Fragment {
	start, end = Day(start), Day(end)
	key := FragmentKey(start, end, topic)
	return &Fragment{
		Id:        IDFromContent(key),
		Key:       key,
		Year:      start.Year(),
		Month:     int(start.Month()),
		WeekStart: start,
		WeekEnd:   end,
		Topic:     topic,
		Text:      text,
		Embedding: embedding,
	}
}
