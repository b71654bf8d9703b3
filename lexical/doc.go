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


// Package lexical provides the term-frequency half of hybrid search: a
// pluggable tokenizer that reduces bulletin text to content-bearing tokens,
// and an in-process Okapi BM25 index built once over the fragment corpus.
//
// Korean is agglutinative, so "꿀벌은" and "꿀벌을" must both reduce to
// "꿀벌" before term statistics mean anything. DefaultTokenizer strips the
// common particles and verb endings from Hangul words; queries and
// documents go through the same tokenizer.
package lexical
