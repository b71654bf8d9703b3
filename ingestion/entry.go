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


package ingestion

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/poiesic/almanac/core"
)

// MinTextLength is the shortest topic body, in runes, that becomes a fragment.
const MinTextLength = 5

// Keys of a weekly entry that are metadata rather than topic content.
var metadataKeys = map[string]bool{
	"id":         true,
	"year":       true,
	"month":      true,
	"week_range": true,
	"start_date": true,
	"end_date":   true,
}

// entry is one weekly bulletin split into topic bodies.
type entry struct {
	start, end time.Time
	sections   []section
	skipped    int
}

type section struct {
	label string
	topic core.Topic
	text  string
}

// parseEntry decodes one JSON line. Both the nested form
// {"id": ..., "content": {"양봉": "..."}} and the flattened form
// {"id": ..., "양봉": "..."} are accepted. A "content" string in the
// flattened form is an unlabelled body and lands in the other topic.
func parseEntry(line []byte) (*entry, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEntry, err)
	}

	start, end, err := weekRange(raw)
	if err != nil {
		return nil, err
	}

	body := raw
	if content, ok := raw["content"]; ok && bytes.HasPrefix(bytes.TrimSpace(content), []byte("{")) {
		body = nil
		if err := json.Unmarshal(content, &body); err != nil {
			return nil, fmt.Errorf("%w: content: %w", ErrMalformedEntry, err)
		}
	}

	e := &entry{start: start, end: end}
	for label, value := range body {
		if metadataKeys[label] {
			continue
		}
		var text string
		if err := json.Unmarshal(value, &text); err != nil {
			e.skipped++
			continue
		}
		text = normalizeText(text)
		if utf8.RuneCountInString(text) < MinTextLength {
			e.skipped++
			continue
		}
		topic, err := core.ParseTopic(label)
		if err != nil {
			topic = core.TopicOther
		}
		e.sections = append(e.sections, section{label: label, topic: topic, text: text})
	}

	// JSON objects are unordered; fix the order by vocabulary position, then label.
	slices.SortFunc(e.sections, func(a, b section) int {
		if c := cmp.Compare(slices.Index(core.Topics, a.topic), slices.Index(core.Topics, b.topic)); c != 0 {
			return c
		}
		return cmp.Compare(a.label, b.label)
	})
	return e, nil
}

// weekRange reads the week from "id", "week_range" or "start_date"/"end_date".
func weekRange(raw map[string]json.RawMessage) (time.Time, time.Time, error) {
	for _, key := range []string{"id", "week_range"} {
		var s string
		if value, ok := raw[key]; ok && json.Unmarshal(value, &s) == nil && s != "" {
			start, end, err := core.ParseWeekRange(s)
			if err != nil {
				return time.Time{}, time.Time{}, fmt.Errorf("%w: %w", ErrMalformedEntry, err)
			}
			return start, end, nil
		}
	}

	var first, last string
	_ = json.Unmarshal(raw["start_date"], &first)
	_ = json.Unmarshal(raw["end_date"], &last)
	if first == "" || last == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: no week id", ErrMalformedEntry)
	}
	start, end, err := core.ParseWeekRange(first + "_" + last)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %w", ErrMalformedEntry, err)
	}
	return start, end, nil
}

// fragments turns the entry into one fragment per topic. Sections that map
// to the same topic (several unknown labels become "other") are joined.
func (e *entry) fragments() []*core.Fragment {
	var out []*core.Fragment
	byTopic := make(map[core.Topic]*core.Fragment)
	for _, s := range e.sections {
		if f, ok := byTopic[s.topic]; ok {
			f.Text += "\n" + s.text
			continue
		}
		f := core.NewFragment(e.start, e.end, s.topic, s.text, nil)
		byTopic[s.topic] = f
		out = append(out, f)
	}
	return out
}

// normalizeText trims every line and drops blank ones. Symbols such as
// %, ~ and ℃ are kept verbatim.
func normalizeText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
