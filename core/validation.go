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
)

// ValidateFragment validates a Fragment according to domain rules.
//
// Validation rules:
//   - Text must not be blank
//   - Topic must be in the curated vocabulary
//   - WeekStart must not be after WeekEnd
//   - Key must parse and agree with WeekStart, WeekEnd and Topic
//   - Year and Month must be those of WeekStart
//   - Id must be IDFromContent(Key)
//
// NOT validated:
//   - Embedding (dimension is checked by the embedder that produced it)
func ValidateFragment(fragment *Fragment) error {
	if fragment == nil {
		return fmt.Errorf("%w: fragment is nil", ErrInvalidFragment)
	}

	if strings.TrimSpace(fragment.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, ErrEmptyContent)
	}

	if !fragment.Topic.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidFragment, ErrUnknownTopic, fragment.Topic)
	}

	if fragment.WeekEnd.Before(fragment.WeekStart) {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, ErrInvalidWeek)
	}

	start, end, topic, err := ParseFragmentKey(fragment.Key)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, err)
	}
	if !start.Equal(Day(fragment.WeekStart)) || !end.Equal(Day(fragment.WeekEnd)) || topic != fragment.Topic {
		return fmt.Errorf("%w: %w: %s", ErrInvalidFragment, ErrKeyMismatch, fragment.Key)
	}

	if fragment.Year != start.Year() || fragment.Month != int(start.Month()) {
		return fmt.Errorf("%w: %w: year/month %d-%d for week starting %s",
			ErrInvalidFragment, ErrKeyMismatch, fragment.Year, fragment.Month, start.Format(DateLayout))
	}

	if fragment.Id != IDFromContent(fragment.Key) {
		return fmt.Errorf("%w: %w: id %d", ErrInvalidFragment, ErrKeyMismatch, fragment.Id)
	}

	return nil
}
