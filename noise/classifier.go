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


package noise

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrUnknownStrictness indicates a strictness name outside lenient, balanced, strict.
var ErrUnknownStrictness = errors.New("unknown noise strictness")

// Strictness selects how aggressively short headed fragments are discarded.
type Strictness int

const (
	// Lenient drops headed fragments shorter than 30 stripped runes.
	Lenient Strictness = iota
	// Balanced drops headed fragments under 40 runes that are chapter
	// headings, and any headed fragment under 20 runes.
	Balanced
	// Strict drops headed chapter headings under 60 runes and any headed
	// fragment under 30 runes.
	Strict
)

func (s Strictness) String() string {
	switch s {
	case Lenient:
		return "lenient"
	case Balanced:
		return "balanced"
	case Strict:
		return "strict"
	}
	return fmt.Sprintf("Strictness(%d)", int(s))
}

// ParseStrictness resolves a strictness name. The empty string is Strict.
func ParseStrictness(s string) (Strictness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lenient":
		return Lenient, nil
	case "balanced":
		return Balanced, nil
	case "strict", "":
		return Strict, nil
	}
	return Strict, fmt.Errorf("%w: %q", ErrUnknownStrictness, s)
}

var (
	// A line that is only "목차" or "contents", optionally as a heading, or "table of contents".
	tocMarker = regexp.MustCompile(`(?m:^[ \t#]*목[ \t]*차[ \t]*$)|(?i:table[ \t]+of[ \t]+contents)|(?im:^[ \t#]*contents[ \t]*$)`)
	// Dot leaders only appear in tables of contents.
	dotLeader = regexp.MustCompile(`·{4,}|\.{5,}|…{2,}`)
	// A markdown heading at the start of a line.
	headingMarker = regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}([ \t]|$)`)
	// "제 3 장", "제3장", "Chapter 3".
	chapterHeading = regexp.MustCompile(`제\s*[0-9０-９]+\s*장|(?i:\bchapter\s+[0-9ivxlc]+\b)`)

	strippedChars = strings.NewReplacer("\n", "", "\r", "", "|", "", "-", "")
)

// Classifier is a noise predicate with a fixed strictness.
// The zero value is a Lenient classifier; use NewClassifier for others.
type Classifier struct {
	strictness Strictness
}

// NewClassifier returns a classifier with the given strictness.
func NewClassifier(strictness Strictness) *Classifier {
	return &Classifier{strictness: strictness}
}

// Strictness returns the classifier's strictness.
func (c *Classifier) Strictness() Strictness {
	return c.strictness
}

var defaultClassifier = NewClassifier(Strict)

// IsNoise classifies text with the default (strict) classifier.
func IsNoise(text string) bool {
	return defaultClassifier.IsNoise(text)
}

// IsNoise reports whether text is structural noise. Rules, first match wins:
// a table-of-contents marker; a markdown heading whose body is too short for
// the strictness level; otherwise not noise.
func (c *Classifier) IsNoise(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}

	if tocMarker.MatchString(text) || dotLeader.MatchString(text) {
		return true
	}

	if !headingMarker.MatchString(text) {
		return false
	}

	n := StrippedLen(text)
	chapter := chapterHeading.MatchString(text)
	switch c.strictness {
	case Lenient:
		return n < 30
	case Balanced:
		return n < 40 && (chapter || n < 20)
	default:
		return (chapter && n < 60) || n < 30
	}
}

// StrippedLen counts the runes of text once newlines, table pipes and dashes
// are removed and surrounding whitespace is trimmed.
func StrippedLen(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(strippedChars.Replace(text)))
}
