package ranking

import (
	"fmt"

	"github.com/meur/gameshelf/internal/models"
	"github.com/meur/gameshelf/internal/storage"
)

// The rankedGames list predates rating-driven leaderboards. It is kept
// readable and writable for data created by older versions.

// RankedGames returns the legacy ranked list
func (e *Engine) RankedGames() []models.RankEntry {
	return append([]models.RankEntry(nil), e.ranked...)
}

// AddToRanking appends a rank entry built from a card. Unknown cards and
// cards already ranked are ignored.
func (e *Engine) AddToRanking(id int64) bool {
	card, ok := e.cards.Get(id)
	if !ok || e.rankedIndex(id) >= 0 {
		return false
	}
	e.ranked = append(e.ranked, models.RankEntry{
		ID:       card.ID,
		Title:    card.Title,
		RankedAt: e.now().UTC(),
	})
	e.persistRanked()
	return true
}

// AppendRankEntry appends a ready-made rank entry, for items that have no
// homepage card
func (e *Engine) AppendRankEntry(entry models.RankEntry) bool {
	if e.rankedIndex(entry.ID) >= 0 {
		return false
	}
	if entry.RankedAt.IsZero() {
		entry.RankedAt = e.now().UTC()
	}
	e.ranked = append(e.ranked, entry)
	e.persistRanked()
	return true
}

// RemoveFromRanking drops id from the legacy list
func (e *Engine) RemoveFromRanking(id int64) bool {
	i := e.rankedIndex(id)
	if i < 0 {
		return false
	}
	e.ranked = append(e.ranked[:i], e.ranked[i+1:]...)
	e.persistRanked()
	return true
}

// ReorderRanking reorders the legacy list by id
func (e *Engine) ReorderRanking(ids []int64) error {
	if len(ids) != len(e.ranked) {
		return fmt.Errorf("%w: ranking reorder has %d entries, list has %d",
			models.ErrInvariantViolation, len(ids), len(e.ranked))
	}
	byID := make(map[int64]models.RankEntry, len(e.ranked))
	for _, r := range e.ranked {
		byID[r.ID] = r
	}
	next := make([]models.RankEntry, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: %d is not a unique ranked entry", models.ErrInvariantViolation, id)
		}
		delete(byID, id)
		next = append(next, r)
	}
	e.ranked = next
	e.persistRanked()
	return nil
}

// ClearRanking empties the legacy list
func (e *Engine) ClearRanking() {
	e.ranked = nil
	e.persistRanked()
}

func (e *Engine) rankedIndex(id int64) int {
	for i := range e.ranked {
		if e.ranked[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) persistRanked() {
	storage.SaveList(e.st, storage.RankedGamesKey, e.ranked)
}
