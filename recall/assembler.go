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
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/almanac/config"
	"github.com/poiesic/almanac/core"
	"github.com/poiesic/almanac/noise"
)

// Assembler builds the multi-year "this week in past years" briefing.
type Assembler struct {
	matcher    *Matcher
	classifier *noise.Classifier
	tuning     config.Tuning
	pool       *ants.Pool
	logger     *slog.Logger
}

// NewAssembler creates a new assembler. Call Release when done.
func NewAssembler(matcher *Matcher, opts ...Option) (*Assembler, error) {
	if matcher == nil {
		return nil, ErrMatcherRequired
	}
	s := defaultSettings()
	if err := s.apply(opts); err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return nil, err
	}

	return &Assembler{
		matcher:    matcher,
		classifier: s.classifier,
		tuning:     s.tuning,
		pool:       pool,
		logger:     s.logger,
	}, nil
}

type yearMatch struct {
	entries []*core.BriefingEntry
	err     error
}

// Assemble matches every year against today and returns a flat briefing
// grouped by year, most recent year first. Each year keeps at most
// maxPerYear entries (Tuning.MaxPerYear when <= 0) and at most maxYears
// non-empty years (Tuning.MaxYears when <= 0) are returned.
func (a *Assembler) Assemble(ctx context.Context, today time.Time, years []int, maxYears, maxPerYear int) ([]*core.BriefingEntry, error) {
	if maxYears <= 0 {
		maxYears = a.tuning.MaxYears
	}
	if maxPerYear <= 0 {
		maxPerYear = a.tuning.MaxPerYear
	}

	years = slices.Clone(years)
	slices.SortFunc(years, func(x, y int) int { return cmp.Compare(y, x) })
	years = slices.Compact(years)

	// Match all years concurrently; each goroutine owns its slot.
	matches := make([]yearMatch, len(years))
	var wg sync.WaitGroup
	for i, year := range years {
		wg.Add(1)
		err := a.pool.Submit(func() {
			defer wg.Done()
			entries, err := a.matcher.MatchYear(ctx, year, today)
			matches[i] = yearMatch{entries: entries, err: err}
		})
		if err != nil {
			wg.Done()
			matches[i] = yearMatch{err: err}
		}
	}
	wg.Wait()

	briefing := make([]*core.BriefingEntry, 0)
	included := 0
	for i, year := range years {
		if matches[i].err != nil {
			a.logger.Error("error matching year", "year", year, "err", matches[i].err)
			return nil, matches[i].err
		}
		if included == maxYears {
			continue
		}
		entries := a.selectEntries(matches[i].entries, maxPerYear)
		if len(entries) == 0 {
			continue
		}
		briefing = append(briefing, entries...)
		included++
	}

	a.logger.Debug("assembled briefing", "today", today.Format(core.DateLayout),
		"years", len(years), "included", included, "entries", len(briefing))
	return briefing, nil
}

// selectEntries reduces one year's matches to the entries shown in the briefing.
func (a *Assembler) selectEntries(entries []*core.BriefingEntry, maxPerYear int) []*core.BriefingEntry {
	clean := make([]*core.BriefingEntry, 0, len(entries))
	for _, entry := range entries {
		if a.classifier.IsNoise(entry.Fragment.Text) {
			continue
		}
		clean = append(clean, entry)
	}

	clean = Dedup(clean, a.tuning.DedupPrefixLen)

	for _, entry := range clean {
		entry.Priority = Priority(entry.Topic, entry.DistanceDays)
	}
	slices.SortStableFunc(clean, compareEntries)

	if len(clean) > maxPerYear {
		clean = clean[:maxPerYear]
	}
	return clean
}

// compareEntries orders by priority, distance and key.
func compareEntries(a, b *core.BriefingEntry) int {
	if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
		return c
	}
	if c := cmp.Compare(a.DistanceDays, b.DistanceDays); c != 0 {
		return c
	}
	return cmp.Compare(a.Fragment.Key, b.Fragment.Key)
}

// Release releases the worker pool.
// The assembler should not be used after calling Release.
func (a *Assembler) Release() {
	if a.pool != nil {
		a.pool.Release()
	}
}
