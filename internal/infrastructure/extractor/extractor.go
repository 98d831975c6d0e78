// Package extractor pulls ranking rows out of pasted leaderboard content,
// either raw HTML copied from the game site or a plain-text paste of it.
package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

var ErrNoRows = errors.New("no ranking rows found")

// Row is one extracted leaderboard line.
type Row struct {
	Rank      int    `json:"rank"`
	Name      string `json:"name"`
	ProfileID string `json:"profile_id,omitempty"`
	Value     int64  `json:"value"`
}

var profileHrefPattern = regexp.MustCompile(`/(?:user|profile|igrach)/(\d+)`)

// parseValue reads a counter that may carry thousand separators. The game
// renders values like "1 234 567", "1.234.567" or "1,234,567".
func parseValue(raw string) (int64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '.', ',':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if cleaned == "" {
		return 0, false
	}

	value, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

func parseRank(raw string) (int, bool) {
	cleaned := strings.TrimRight(strings.TrimSpace(raw), ".)")
	rank, err := strconv.Atoi(cleaned)
	if err != nil || rank <= 0 {
		return 0, false
	}
	return rank, true
}
