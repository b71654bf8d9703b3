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
	"regexp"
	"strings"
)

// MaxTableColumns caps repaired tables; wider rows are truncated.
const MaxTableColumns = 5

var (
	leaderRun    = regexp.MustCompile(`·{3,}|\.{3,}|…+`)
	separatorRow = regexp.MustCompile(`^:?-{2,}:?$`)
)

// NormalizeTables repairs pipe tables broken by PDF extraction so they render
// as markdown. Dot leaders are removed, empty cells collapsed, rows capped at
// MaxTableColumns and padded to a common width, and a header separator is
// inserted after the first row. A "table" with a single column is flattened
// back into prose lines. Text outside tables is returned unchanged.
func NormalizeTables(text string) string {
	if !strings.Contains(text, "|") {
		return text
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines)+2)
	var block [][]string
	flush := func() {
		if len(block) > 0 {
			out = append(out, renderTable(block)...)
			block = nil
		}
	}

	for _, line := range lines {
		cells, ok := tableCells(line)
		if !ok {
			flush()
			out = append(out, line)
			continue
		}
		if isSeparator(cells) {
			continue
		}
		block = append(block, cells)
	}
	flush()

	return strings.Join(out, "\n")
}

// tableCells splits a pipe row into its non-empty cells.
func tableCells(line string) ([]string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.Contains(trimmed, "|") || strings.TrimSpace(strings.ReplaceAll(trimmed, "|", "")) == "" {
		return nil, false
	}

	var cells []string
	for _, cell := range strings.Split(trimmed, "|") {
		cell = strings.TrimSpace(leaderRun.ReplaceAllString(cell, ""))
		if cell != "" {
			cells = append(cells, cell)
		}
	}
	if len(cells) == 0 {
		return nil, false
	}
	if len(cells) > MaxTableColumns {
		cells = cells[:MaxTableColumns]
	}
	return cells, true
}

func isSeparator(cells []string) bool {
	for _, cell := range cells {
		if !separatorRow.MatchString(cell) {
			return false
		}
	}
	return true
}

func renderTable(rows [][]string) []string {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	if width == 1 {
		flat := make([]string, len(rows))
		for i, row := range rows {
			flat[i] = row[0]
		}
		return flat
	}

	out := make([]string, 0, len(rows)+1)
	for i, row := range rows {
		padded := make([]string, width)
		copy(padded, row)
		out = append(out, "| "+strings.Join(padded, " | ")+" |")
		if i == 0 {
			out = append(out, "|"+strings.Repeat("---|", width))
		}
	}
	return out
}
