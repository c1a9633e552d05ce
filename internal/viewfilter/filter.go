// Package viewfilter selects the homepage cards shown for the active
// universe and search text. It holds no state.
package viewfilter

import (
	"strings"

	"github.com/meur/gameshelf/internal/models"
	"golang.org/x/text/cases"
)

// Cards returns copies of the cards visible in the given universe whose
// title contains search, ignoring case. Search is not trimmed, only a blank
// one is ignored. Master order is kept. Ranking-only
// cards never show, and cards without a franchise flag count as games.
func Cards(cards []models.Card, isFranchiseView bool, search string) []models.Card {
	fold := cases.Fold()
	needle := ""
	// whitespace alone means no search; otherwise spaces are part of it
	if strings.TrimSpace(search) != "" {
		needle = fold.String(search)
	}

	out := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if c.IsRankingOnly || c.Franchise() != isFranchiseView {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(c.Title), needle) {
			continue
		}
		out = append(out, c.Clone())
	}
	return out
}

// Visible returns the ids Cards would return
func Visible(cards []models.Card, isFranchiseView bool, search string) []int64 {
	selected := Cards(cards, isFranchiseView, search)
	ids := make([]int64, len(selected))
	for i, c := range selected {
		ids[i] = c.ID
	}
	return ids
}
