package extractor

import (
	"regexp"
	"strings"
)

// Text pastes flatten each leaderboard row to "rank name value". Names may
// contain spaces, so the value is anchored to the end of the line.
var textLinePattern = regexp.MustCompile(`^\s*(\d+)[.)]?\s+(.+?)\s+([\d\s\x{00a0}.,]+)\s*$`)

// FromText extracts ranking rows from a plain-text paste of a leaderboard.
// Lines that do not look like ranking rows are skipped.
func FromText(content string) ([]Row, error) {
	rows := make([]Row, 0)
	for _, line := range strings.Split(content, "\n") {
		m := textLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		rank, ok := parseRank(m[1])
		if !ok {
			continue
		}
		value, ok := parseValue(m[3])
		if !ok {
			continue
		}
		name := strings.TrimSpace(m[2])
		if name == "" {
			continue
		}

		rows = append(rows, Row{Rank: rank, Name: name, Value: value})
	}

	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}
