// Package category maintains the current, next, finished and favorites
// lists. An entry id appears in at most one list once any operation
// returns.
package category

import (
	"fmt"
	"time"

	"github.com/meur/gameshelf/internal/models"
	"github.com/meur/gameshelf/internal/storage"
	"go.uber.org/zap"
)

// ErrInvariantViolation is returned for reorder payloads that are not a
// permutation of the list they replace
var ErrInvariantViolation = models.ErrInvariantViolation

var listKeys = map[models.Category]string{
	models.Current:   storage.CurrentGamesKey,
	models.Next:      storage.NextGamesKey,
	models.Finished:  storage.FinishedGamesKey,
	models.Favorites: storage.FavoriteGamesKey,
}

// Engine owns the four category lists
type Engine struct {
	st    *storage.Storage
	log   *zap.Logger
	lists map[models.Category][]models.GameEntry
	now   func() time.Time
}

// New creates an engine with empty lists
func New(st *storage.Storage, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		st:    st,
		log:   log.Named("category"),
		lists: make(map[models.Category][]models.GameEntry, len(models.Categories)),
		now:   time.Now,
	}
	return e
}

// Load rehydrates every list. Duplicates across lists written by older
// versions are dropped, keeping the first occurrence in category order.
func (e *Engine) Load() {
	seen := make(map[int64]models.Category)
	for _, cat := range models.Categories {
		loaded := storage.LoadList[models.GameEntry](e.st, listKeys[cat])
		list := loaded[:0]
		for _, entry := range loaded {
			if prev, dup := seen[entry.ID]; dup {
				e.log.Warn("dropping duplicate entry",
					zap.Int64("id", entry.ID),
					zap.String("kept", string(prev)),
					zap.String("dropped", string(cat)))
				continue
			}
			seen[entry.ID] = cat
			list = append(list, entry)
		}
		e.lists[cat] = list
		if len(list) != len(loaded) {
			e.persist(cat)
		}
	}
}

func mustValid(cat models.Category) {
	if !cat.Valid() {
		panic(fmt.Sprintf("category: invalid category %q", cat))
	}
}

// Place moves entry into cat, appending it with a fresh addedAt stamp.
// Placing an entry already in cat changes nothing and reports false.
func (e *Engine) Place(entry models.GameEntry, cat models.Category) bool {
	mustValid(cat)
	if indexOf(e.lists[cat], entry.ID) >= 0 {
		return false
	}

	// remove from every list before adding so no list ever holds a
	// transient duplicate
	e.RemoveEverywhere(entry.ID)

	placed := entry.Clone()
	now := e.now().UTC()
	placed.AddedAt = &now
	e.lists[cat] = append(e.lists[cat], placed)
	e.persist(cat)
	return true
}

// Toggle adds entry to cat if absent and ignores it otherwise. Removal
// always goes through Remove.
func (e *Engine) Toggle(entry models.GameEntry, cat models.Category) bool {
	return e.Place(entry, cat)
}

// Remove deletes id from exactly one list
func (e *Engine) Remove(id int64, cat models.Category) bool {
	mustValid(cat)
	i := indexOf(e.lists[cat], id)
	if i < 0 {
		return false
	}
	list := e.lists[cat]
	e.lists[cat] = append(list[:i], list[i+1:]...)
	e.persist(cat)
	return true
}

// RemoveEverywhere deletes id from every list it appears in
func (e *Engine) RemoveEverywhere(id int64) bool {
	removed := false
	for _, cat := range models.Categories {
		if e.Remove(id, cat) {
			removed = true
		}
	}
	return removed
}

// Reorder replaces the list with a permutation of its current entries
func (e *Engine) Reorder(cat models.Category, entries []models.GameEntry) error {
	mustValid(cat)
	current := e.lists[cat]
	if len(entries) != len(current) {
		return fmt.Errorf("%w: reorder of %s has %d entries, list has %d",
			ErrInvariantViolation, cat, len(entries), len(current))
	}

	// entries are immutable once placed, so the stored copies are kept
	// and only the order is taken from the caller
	members := make(map[int64]models.GameEntry, len(current))
	for _, g := range current {
		members[g.ID] = g
	}
	next := make([]models.GameEntry, 0, len(entries))
	for _, g := range entries {
		stored, ok := members[g.ID]
		if !ok {
			return fmt.Errorf("%w: entry %d is not a unique member of %s",
				ErrInvariantViolation, g.ID, cat)
		}
		delete(members, g.ID)
		next = append(next, stored)
	}

	e.lists[cat] = next
	e.persist(cat)
	return nil
}

// ReorderIDs reorders a list by id, keeping the stored entries intact
func (e *Engine) ReorderIDs(cat models.Category, ids []int64) error {
	mustValid(cat)
	entries := make([]models.GameEntry, 0, len(ids))
	for _, id := range ids {
		i := indexOf(e.lists[cat], id)
		if i < 0 {
			return fmt.Errorf("%w: entry %d is not in %s", ErrInvariantViolation, id, cat)
		}
		entries = append(entries, e.lists[cat][i])
	}
	return e.Reorder(cat, entries)
}

// Clear empties one list
func (e *Engine) Clear(cat models.Category) {
	mustValid(cat)
	e.lists[cat] = nil
	e.persist(cat)
}

// List returns a copy of one list in display order
func (e *Engine) List(cat models.Category) []models.GameEntry {
	mustValid(cat)
	list := e.lists[cat]
	out := make([]models.GameEntry, len(list))
	for i, g := range list {
		out[i] = g.Clone()
	}
	return out
}

// Locate reports which list holds id
func (e *Engine) Locate(id int64) (models.Category, bool) {
	for _, cat := range models.Categories {
		if indexOf(e.lists[cat], id) >= 0 {
			return cat, true
		}
	}
	return "", false
}

func (e *Engine) persist(cat models.Category) {
	storage.SaveList(e.st, listKeys[cat], e.lists[cat])
}

func indexOf(list []models.GameEntry, id int64) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
