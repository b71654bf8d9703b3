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


package storage

import (
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/almanac/core"
)

// Validate rejects months outside 1-12.
func (f Filter) Validate() error {
	for _, m := range f.Months {
		if m < 1 || m > 12 {
			return fmt.Errorf("%w: month %d", ErrInvalidFilter, m)
		}
	}
	for t := range f.Topics {
		if !t.Valid() {
			return fmt.Errorf("%w: %w: %q", ErrInvalidFilter, core.ErrUnknownTopic, t)
		}
	}
	return nil
}

// Matches reports whether fragment satisfies every predicate of the filter.
func (f Filter) Matches(fragment *core.Fragment) bool {
	if len(f.Years) > 0 && !slices.Contains(f.Years, fragment.Year) {
		return false
	}
	if len(f.Months) > 0 && !slices.Contains(f.Months, fragment.Month) {
		return false
	}
	if !f.Topics.Allows(fragment.Topic) {
		return false
	}
	return f.TextContains == "" || strings.Contains(fragment.Text, f.TextContains)
}
