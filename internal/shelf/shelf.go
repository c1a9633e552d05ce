// Package shelf composes the collection, category, ranking and franchise
// engines into the single state container served by the API.
//
// Every exported method takes the shelf lock and runs to completion, so
// callers never observe a half-applied operation.
package shelf

import (
	"sync"
	"time"

	"github.com/meur/gameshelf/internal/category"
	"github.com/meur/gameshelf/internal/collection"
	"github.com/meur/gameshelf/internal/franchise"
	"github.com/meur/gameshelf/internal/models"
	"github.com/meur/gameshelf/internal/ranking"
	"github.com/meur/gameshelf/internal/storage"
	"github.com/meur/gameshelf/internal/viewfilter"
	"go.uber.org/zap"
)

// Shelf owns all library state for one process
type Shelf struct {
	mu sync.Mutex

	st         *storage.Storage
	log        *zap.Logger
	cards      *collection.Store
	categories *category.Engine
	ranking    *ranking.Engine
	franchises *franchise.Book

	isFranchiseView bool
	search          string

	now func() time.Time
}

// New wires the engines over st and loads persisted state
func New(st *storage.Storage, log *zap.Logger) *Shelf {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Shelf{
		st:         st,
		log:        log,
		cards:      collection.New(st, log),
		categories: category.New(st, log),
		now:        time.Now,
	}
	s.ranking = ranking.New(st, s.cards, log)
	s.franchises = franchise.NewBook(st, s.ranking, s.cards, log)

	s.cards.OnRemove(func(id int64) {
		s.categories.RemoveEverywhere(id)
	})
	s.cards.OnRemove(s.ranking.Forget)

	s.cards.Load()
	s.categories.Load()
	s.ranking.Load()

	log.Info("shelf loaded",
		zap.Int("cards", s.cards.Len()),
		zap.String("rankingMode", string(s.ranking.Mode())))
	return s
}

// Refresh reconciles card ratings with the rating records
func (s *Shelf) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranking.Refresh()
}

// Cards returns every card in master order
func (s *Shelf) Cards() []models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards.All()
}

// Card returns one card
func (s *Shelf) Card(id int64) (models.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards.Get(id)
}

// AddCard creates a card in the universe currently shown
func (s *Shelf) AddCard() models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards.Add(s.isFranchiseView)
}

// AddCardTo creates a card in an explicit universe
func (s *Shelf) AddCardTo(isFranchise bool) models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards.Add(isFranchise)
}

// UpdateCard applies a patch and returns the updated card
func (s *Shelf) UpdateCard(id int64, patch models.CardPatch) (models.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cards.Update(id, patch) {
		return models.Card{}, false
	}
	return s.cards.Get(id)
}

// RemoveCard deletes a card everywhere it appears
func (s *Shelf) RemoveCard(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards.Remove(id)
}

// ClearCurrentView deletes every card of the universe currently shown,
// leaving ranking-only cards in place
func (s *Shelf) ClearCurrentView() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards.ClearView(s.isFranchiseView)
}

// View reports the universe shown and the search text
func (s *Shelf) View() (isFranchiseView bool, search string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isFranchiseView, s.search
}

// SetView selects the universe shown
func (s *Shelf) SetView(isFranchiseView bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isFranchiseView = isFranchiseView
}

// ToggleView flips between the franchise and game universes
func (s *Shelf) ToggleView() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isFranchiseView = !s.isFranchiseView
	return s.isFranchiseView
}

// SetSearch updates the search text
func (s *Shelf) SetSearch(search string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = search
}

// Visible returns the cards shown for the current view and search
func (s *Shelf) Visible() []models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return viewfilter.Cards(s.cards.All(), s.isFranchiseView, s.search)
}

// Place moves a catalog entry into a category
func (s *Shelf) Place(entry models.GameEntry, cat models.Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories.Place(entry, cat)
}

// DropCard projects a homepage card into a category
func (s *Shelf) DropCard(id int64, cat models.Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.cards.Get(id)
	if !ok {
		return false
	}
	return s.categories.Place(models.EntryFromCard(card), cat)
}

// RemoveFromCategory drops id from one category
func (s *Shelf) RemoveFromCategory(id int64, cat models.Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories.Remove(id, cat)
}

// ReorderCategory reorders a category by id
func (s *Shelf) ReorderCategory(cat models.Category, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories.ReorderIDs(cat, ids)
}

// ClearCategory empties a category
func (s *Shelf) ClearCategory(cat models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories.Clear(cat)
}

// Category lists one category
func (s *Shelf) Category(cat models.Category) []models.GameEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories.List(cat)
}

// Categories lists every category
func (s *Shelf) Categories() map[models.Category][]models.GameEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categoriesLocked()
}

func (s *Shelf) categoriesLocked() map[models.Category][]models.GameEntry {
	out := make(map[models.Category][]models.GameEntry, len(models.Categories))
	for _, cat := range models.Categories {
		out[cat] = s.categories.List(cat)
	}
	return out
}

// SetRating rates a card; 0 clears the rating. found is false for unknown
// ids, kept is false when the rating pruned a ranking-only card.
func (s *Shelf) SetRating(id int64, value float64) (card models.Card, found, kept bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found, err = s.ranking.SetRating(id, value)
	if err != nil || !found {
		return models.Card{}, found, false, err
	}
	card, kept = s.cards.Get(id)
	return card, true, kept, nil
}

// RateItem rates an item, creating a ranking-only card for it if needed
func (s *Shelf) RateItem(seed models.Card, value float64) (models.Card, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ranking.RateItem(seed, value)
}

// Leaderboard returns the board for mode with any manual order applied
func (s *Shelf) Leaderboard(mode models.RankingMode) []ranking.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ranking.View(mode)
}

// ReorderLeaderboard sets a manual display order for mode
func (s *Shelf) ReorderLeaderboard(mode models.RankingMode, ids []int64) ([]ranking.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ranking.Reorder(mode, ids)
}

// ClearRankings removes every rating
func (s *Shelf) ClearRankings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranking.ClearAll()
}

// RankingMode returns the leaderboard mode
func (s *Shelf) RankingMode() models.RankingMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ranking.Mode()
}

// SetRankingMode persists the leaderboard mode
func (s *Shelf) SetRankingMode(mode models.RankingMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranking.SetMode(mode)
}

// ToggleRankingMode flips the leaderboard mode
func (s *Shelf) ToggleRankingMode() models.RankingMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ranking.ToggleMode()
}

// RankedGames returns the legacy ranked list
func (s *Shelf) RankedGames() []models.RankEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ranking.RankedGames()
}

// Close releases the underlying storage
func (s *Shelf) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Close()
}
