package shelf

import (
	"github.com/meur/gameshelf/internal/franchise"
	"github.com/meur/gameshelf/internal/models"
)

// Franchise opens a franchise collection, reconciled with the current
// rating records
func (s *Shelf) Franchise(name string) *franchise.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.franchises.Open(name)
	s.franchises.Reconcile(col)
	return col.Clone()
}

// AddFranchiseGame adds a placeholder game to a franchise
func (s *Shelf) AddFranchiseGame(name string) (int64, *franchise.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.franchises.Open(name)
	id := s.franchises.AddGame(col)
	return id, col.Clone()
}

// UpdateFranchiseGame replaces the details of a franchise game
func (s *Shelf) UpdateFranchiseGame(name string, id int64, game franchise.GameCard) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.franchises.UpdateGame(s.franchises.Open(name), id, game)
}

// RemoveFranchiseGame deletes a game from a franchise
func (s *Shelf) RemoveFranchiseGame(name string, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.franchises.RemoveGame(s.franchises.Open(name), id)
}

// ClearFranchise deletes every game of a franchise
func (s *Shelf) ClearFranchise(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.franchises.Clear(s.franchises.Open(name))
}

// RateFranchiseGame puts a franchise game on the leaderboard. It reports
// false when the franchise has no such game.
func (s *Shelf) RateFranchiseGame(name string, id int64) (models.Card, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.franchises.RateGame(s.franchises.Open(name), id)
}

// UnrateFranchiseGame takes a franchise game off the leaderboard
func (s *Shelf) UnrateFranchiseGame(name string, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.franchises.UnrateGame(s.franchises.Open(name), id)
}

// AddToRanking appends a card to the legacy ranked list
func (s *Shelf) AddToRanking(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ranking.AddToRanking(id)
}

// RemoveFromRanking drops a card from the legacy ranked list
func (s *Shelf) RemoveFromRanking(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ranking.RemoveFromRanking(id)
}

// ReorderRanking reorders the legacy ranked list
func (s *Shelf) ReorderRanking(ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ranking.ReorderRanking(ids)
}

// ClearRanking empties the legacy ranked list
func (s *Shelf) ClearRanking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranking.ClearRanking()
}
