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
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Fragment IDs are derived from the fragment key, so rebuilding the corpus
// from the same bulletins yields the same IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Fragment is one topic-tagged, embedded excerpt of a weekly bulletin.
// Fragments are written once by ingestion and never mutated afterwards.
type Fragment struct {
	Id         ID
	Key        string    // "<week_start>_<week_end>/<topic>", unique in the store
	Year       int       // Calendar year of WeekStart
	Month      int       // Month (1-12) of WeekStart
	WeekStart  time.Time // UTC midnight
	WeekEnd    time.Time // UTC midnight, never before WeekStart
	Topic      Topic
	Text       string
	Embedding  []float32 // Embedding of EmbeddingText()
	InsertedAt time.Time
}

// EmbeddingText returns the string the fragment's embedding is computed from.
// The topic label is prepended to bias the vector toward topic-appropriate matches.
func (f *Fragment) EmbeddingText() string {
	return EmbeddingText(f.Topic, f.Text)
}

// EmbeddingText joins a topic label and body the way fragments are embedded,
// e.g. "양봉: 겨울철 온도는 -2~5℃ 유지".
func EmbeddingText(topic Topic, text string) string {
	return topic.Label() + ": " + text
}

// Contains reports whether day falls inside the fragment's publication week.
func (f *Fragment) Contains(day time.Time) bool {
	day = Day(day)
	return !day.Before(f.WeekStart) && !day.After(f.WeekEnd)
}

// RankedResult is a fragment scored by the hybrid scorer.
type RankedResult struct {
	Fragment      *Fragment
	SemanticScore float64 // Cosine similarity of query and fragment embeddings
	LexicalScore  float64 // Raw BM25 score, 0 without a lexical index
	CombinedScore float64
}

// Key returns the key of the ranked fragment.
func (r *RankedResult) Key() string {
	if r.Fragment == nil {
		return ""
	}
	return r.Fragment.Key
}

// BriefingEntry is a fragment matched against a probe date in one past year.
type BriefingEntry struct {
	Year         int
	Topic        Topic
	Fragment     *Fragment
	DistanceDays int // 0 when the probe date falls inside the fragment's week
	Priority     int // Topic priority assigned by the briefing assembler
}

// YearBriefing holds the briefing entries of a single year.
type YearBriefing struct {
	Year    int
	Entries []*BriefingEntry
}

// GroupBriefing regroups a flat briefing into per-year blocks, preserving order.
func GroupBriefing(entries []*BriefingEntry) []YearBriefing {
	var groups []YearBriefing
	for _, entry := range entries {
		if len(groups) == 0 || groups[len(groups)-1].Year != entry.Year {
			groups = append(groups, YearBriefing{Year: entry.Year})
		}
		last := &groups[len(groups)-1]
		last.Entries = append(last.Entries, entry)
	}
	return groups
}

// Checkpoint records how far an offline builder got through a source.
type Checkpoint struct {
	Source    string // Builder-specific source name, e.g. an import file
	Position  int    // Last fully committed position (line number for imports)
	UpdatedAt time.Time
}
