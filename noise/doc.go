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


// Package noise decides whether a fragment's text is structural debris left
// over by bulletin splitting: tables of contents, bare chapter headings and
// near-empty bodies. Such fragments are dropped when search results and
// briefings are assembled; the stored corpus is never rewritten.
//
// The classifier is a pure predicate. The same text always yields the same
// answer and no input is an error; empty text is noise.
package noise
