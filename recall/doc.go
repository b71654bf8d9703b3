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


// Package recall answers "what was happening this week in past years".
//
// The Matcher projects today's calendar position onto a single past year and
// returns every fragment whose publication week lies within a tolerance of
// that probe date. The Assembler runs the Matcher across several years, drops
// noise and near-duplicate fragments, ranks what remains by a fixed topical
// priority and caps the result per year and overall, so the same inputs
// always produce the same briefing.
package recall
