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


// Package search provides hybrid semantic and lexical search over bulletin fragments.
//
// The Searcher scores every fragment allowed by the topic filter with two signals:
//   - Cosine similarity between the query and fragment embeddings
//   - Okapi BM25 over content tokens, when a lexical index is configured
//
// A fragment is admitted when either signal clears its floor. Admitted
// fragments are ranked by a weighted combination of both signals, with the
// lexical score log-compressed by default so a single rare term cannot
// dominate. Structural noise (tables of contents, bare headings) never
// reaches the results.
package search
