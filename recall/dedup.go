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
	"strings"

	"github.com/poiesic/almanac/core"
)

// DedupKey collapses whitespace in text and keeps the first prefixLen runes.
func DedupKey(text string, prefixLen int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if prefixLen <= 0 {
		return collapsed
	}
	n := 0
	for i := range collapsed {
		if n == prefixLen {
			return collapsed[:i]
		}
		n++
	}
	return collapsed
}

// Dedup keeps the first entry for each DedupKey of the fragment text.
// Applying it twice gives the same result as applying it once.
func Dedup(entries []*core.BriefingEntry, prefixLen int) []*core.BriefingEntry {
	seen := make(map[string]bool, len(entries))
	kept := make([]*core.BriefingEntry, 0, len(entries))
	for _, entry := range entries {
		key := DedupKey(entry.Fragment.Text, prefixLen)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, entry)
	}
	return kept
}
