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


package lexical

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenizer reduces text to the tokens the lexical index is built over.
// Implementations must be safe for concurrent use.
type Tokenizer interface {
	Tokenize(text string) []string
}

// TokenizerFunc adapts a function to the Tokenizer interface.
type TokenizerFunc func(text string) []string

// Tokenize calls f(text).
func (f TokenizerFunc) Tokenize(text string) []string {
	return f(text)
}

// DefaultTokenizer is the content-token reducer used when none is configured.
var DefaultTokenizer Tokenizer = TokenizerFunc(tokenize)

// Particles and endings. Matched longest first so "에서는" wins over "는".
var suffixes = []string{
	// verb and copula endings
	"하였습니다", "되었습니다", "했습니다", "됩니다", "합니다", "입니다", "하세요",
	"하므로", "하여야", "되도록", "하도록", "해야", "하며", "하면", "하고", "하여",
	"하는", "되는", "된다", "한다", "했다", "이다", "하기", "되어",
	// particles (josa)
	"에서는", "으로는", "에게서", "까지는", "부터는", "이라는", "에서도",
	"에서", "으로", "에게", "까지", "부터", "처럼", "보다", "라는", "과는", "와는",
	"이나", "에는", "에도", "만큼",
	"은", "는", "이", "가", "을", "를", "의", "에", "와", "과", "도", "로", "만",
}

func init() {
	slices.SortStableFunc(suffixes, func(a, b string) int {
		return cmp.Compare(utf8.RuneCountInString(b), utf8.RuneCountInString(a))
	})
}

var stopWords = map[string]bool{
	// Korean function words that survive suffix stripping
	"및": true, "등": true, "또는": true, "그리고": true, "그러나": true, "따라서": true,
	"위해": true, "위한": true, "대한": true, "통해": true, "있음": true, "있는": true,
	"있다": true, "없는": true, "경우": true, "이상": true, "이하": true, "정도": true,
	"특히": true, "것": true, "수": true, "때": true, "중": true,
	"합니다": true, "입니다": true, "됩니다": true, "있습니다": true, "바랍니다": true,
	// English
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true, "be": true,
	"by": true, "for": true, "from": true, "in": true, "is": true, "it": true, "of": true,
	"on": true, "or": true, "the": true, "to": true, "with": true,
}

func tokenize(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.ToLower(word)
		if isHangulWord(word) {
			word = stripSuffix(word)
		}
		if keepToken(word) {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

// stripSuffix removes one particle or ending when at least two runes remain.
func stripSuffix(word string) string {
	for _, suffix := range suffixes {
		if !strings.HasSuffix(word, suffix) {
			continue
		}
		stem := strings.TrimSuffix(word, suffix)
		if utf8.RuneCountInString(stem) >= 2 {
			return stem
		}
	}
	return word
}

func keepToken(word string) bool {
	if word == "" || stopWords[word] {
		return false
	}
	if utf8.RuneCountInString(word) > 1 {
		return true
	}
	// Single runes: numerals and Hangul syllables ("벼", "콩") carry meaning.
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsDigit(r) || unicode.Is(unicode.Hangul, r)
}

func isHangulWord(word string) bool {
	for _, r := range word {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}
