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


package recall

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/almanac/config"
	"github.com/poiesic/almanac/core"
	"github.com/poiesic/almanac/storage"
)

// Matcher finds the fragments of one past year published around today's
// calendar position. It is safe for concurrent use.
type Matcher struct {
	repository storage.FragmentRepository
	tuning     config.Tuning
	logger     *slog.Logger
}

// NewMatcher creates a new matcher.
func NewMatcher(repository storage.FragmentRepository, opts ...Option) (*Matcher, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	s := defaultSettings()
	if err := s.apply(opts); err != nil {
		return nil, err
	}
	return &Matcher{
		repository: repository,
		tuning:     s.tuning,
		logger:     s.logger,
	}, nil
}

// MatchYear returns the fragments of year whose week lies within
// ToleranceDays of today projected onto year, ordered by distance, then
// topic priority, then key. No matches is an empty slice.
func (m *Matcher) MatchYear(ctx context.Context, year int, today time.Time) ([]*core.BriefingEntry, error) {
	probe := core.ProjectDate(today, year)

	fragments, err := m.repository.FindFragments(ctx, storage.Filter{Years: []int{year}})
	if err != nil {
		m.logger.Error("error reading fragments for year", "year", year, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrCorpusUnavailable, err)
	}

	entries := make([]*core.BriefingEntry, 0)
	for _, fragment := range fragments {
		distance := core.WeekDistance(probe, fragment.WeekStart, fragment.WeekEnd)
		if distance > m.tuning.ToleranceDays {
			continue
		}
		entries = append(entries, &core.BriefingEntry{
			Year:         year,
			Topic:        fragment.Topic,
			Fragment:     fragment,
			DistanceDays: distance,
			Priority:     Priority(fragment.Topic, distance),
		})
	}

	slices.SortFunc(entries, func(a, b *core.BriefingEntry) int {
		if c := cmp.Compare(a.DistanceDays, b.DistanceDays); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.Fragment.Key, b.Fragment.Key)
	})

	m.logger.Debug("matched year", "year", year, "probe", probe.Format(core.DateLayout),
		"candidates", len(fragments), "matches", len(entries))
	return entries, nil
}
