package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
)

// FromHTML extracts ranking rows from a copied leaderboard page. It scans
// every table for rows shaped like rank / name / value and picks up the
// profile id from the player link when one is present.
func FromHTML(content string) ([]Row, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, errors.Wrap(err, "parse html")
	}

	rows := make([]Row, 0)
	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 3 {
			return
		}

		rank, ok := parseRank(cells.Eq(0).Text())
		if !ok {
			return
		}

		nameCell := cells.Eq(1)
		name := strings.TrimSpace(nameCell.Text())
		if name == "" {
			return
		}

		profileID := ""
		nameCell.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, exists := a.Attr("href")
			if !exists {
				return true
			}
			if m := profileHrefPattern.FindStringSubmatch(href); m != nil {
				profileID = m[1]
				return false
			}
			return true
		})

		// The value sits in the last cell; intermediate cells hold level,
		// gang or avatar markup depending on the board.
		value, ok := parseValue(cells.Eq(cells.Length() - 1).Text())
		if !ok {
			return
		}

		rows = append(rows, Row{
			Rank:      rank,
			Name:      name,
			ProfileID: profileID,
			Value:     value,
		})
	})

	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}
