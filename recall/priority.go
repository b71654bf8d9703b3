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

import "github.com/poiesic/almanac/core"

// Topic priorities, lowest first in a briefing.
const (
	PrioritySummaryInWeek = 0
	PrioritySummaryNearby = 1
	PriorityConditions    = 2
	PriorityOther         = 99
)

// Priority ranks a matched fragment: the summary of the probe week first,
// then a nearby week's summary, then weather and agronomy advisories, then
// everything else.
func Priority(topic core.Topic, distanceDays int) int {
	switch topic {
	case core.TopicSummary:
		if distanceDays == 0 {
			return PrioritySummaryInWeek
		}
		return PrioritySummaryNearby
	case core.TopicWeather, core.TopicAgronomyAdvisory:
		return PriorityConditions
	default:
		return PriorityOther
	}
}
