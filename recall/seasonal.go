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
	"slices"
	"time"
)

var seasonalKeywords = map[time.Month][]string{
	time.December:  {"월동 관리", "한파 대비", "전정(가지치기)", "화재 예방", "시설 하우스"},
	time.March:     {"파종 준비", "못자리", "봄벌 깨우기", "냉해 예방", "꽃가루 매개"},
	time.June:      {"장마 대비", "탄저병 방제", "혹서기 가축관리", "응애 방제", "배수로 정비"},
	time.September: {"수확 시기", "건조 관리", "가을 걷이", "월동 준비", "김장 채소"},
}

// SeasonalKeywords returns suggested search queries for the season of month.
func SeasonalKeywords(month time.Month) []string {
	var season time.Month
	switch month {
	case time.December, time.January, time.February:
		season = time.December
	case time.March, time.April, time.May:
		season = time.March
	case time.June, time.July, time.August:
		season = time.June
	default:
		season = time.September
	}
	return slices.Clone(seasonalKeywords[season])
}

// PriorYears lists the n years before today's, most recent first.
func PriorYears(today time.Time, n int) []int {
	years := make([]int, 0, max(n, 0))
	for i := 1; i <= n; i++ {
		years = append(years, today.Year()-i)
	}
	return years
}
