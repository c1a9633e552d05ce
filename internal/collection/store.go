// Package collection owns the master list of homepage cards.
package collection

import (
	"time"

	"github.com/meur/gameshelf/internal/models"
	"github.com/meur/gameshelf/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// RemoveHook is called with the id of every card that leaves the store
type RemoveHook func(id int64)

// Store holds the cards and writes every mutation through to storage.
// It is not safe for concurrent use; shelf.Shelf serializes access.
type Store struct {
	st    *storage.Storage
	log   *zap.Logger
	cards []models.Card
	hooks []RemoveHook

	now    func() time.Time
	lastID int64
}

// New creates an empty store. Call Load to rehydrate persisted cards.
func New(st *storage.Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		st:  st,
		log: log.Named("collection"),
		now: time.Now,
	}
}

// OnRemove registers a hook run after a card is deleted
func (s *Store) OnRemove(h RemoveHook) {
	s.hooks = append(s.hooks, h)
}

// Load replaces the in-memory cards with the persisted list
func (s *Store) Load() {
	s.cards = storage.LoadList[models.Card](s.st, storage.CardsKey)
	for _, c := range s.cards {
		if c.ID > s.lastID {
			s.lastID = c.ID
		}
	}
	s.log.Debug("loaded cards", zap.Int("count", len(s.cards)))
}

// nextID allocates a creation-time id, unique even within one millisecond
func (s *Store) nextID() int64 {
	return s.ReserveID(s.now().UnixMilli())
}

// ReserveID hands out an id no card has used, starting from candidate.
// Ids are shared with anything else that may later become a card.
func (s *Store) ReserveID(candidate int64) int64 {
	if candidate <= s.lastID {
		candidate = s.lastID + 1
	}
	s.lastID = candidate
	return candidate
}

// Add appends a card with default values in the given universe
func (s *Store) Add(isFranchise bool) models.Card {
	card := models.Card{
		ID:              s.nextID(),
		Title:           models.DefaultTitle,
		IsFranchiseCard: models.Bool(isFranchise),
	}
	s.cards = append(s.cards, card)
	s.persist()
	return card.Clone()
}

// Insert appends a fully formed card. It reports false if the id is taken.
func (s *Store) Insert(card models.Card) bool {
	if s.index(card.ID) >= 0 {
		return false
	}
	if card.ID > s.lastID {
		s.lastID = card.ID
	}
	s.cards = append(s.cards, card.Clone())
	s.persist()
	return true
}

// Get returns a copy of the card with the given id
func (s *Store) Get(id int64) (models.Card, bool) {
	i := s.index(id)
	if i < 0 {
		return models.Card{}, false
	}
	return s.cards[i].Clone(), true
}

// All returns copies of every card in master order
func (s *Store) All() []models.Card {
	out := make([]models.Card, len(s.cards))
	for i, c := range s.cards {
		out[i] = c.Clone()
	}
	return out
}

// Len returns the number of cards
func (s *Store) Len() int {
	return len(s.cards)
}

// FindByTitle returns the first card whose title matches case-insensitively
func (s *Store) FindByTitle(title string) (models.Card, bool) {
	fold := cases.Fold()
	want := fold.String(title)
	for _, c := range s.cards {
		if fold.String(c.Title) == want {
			return c.Clone(), true
		}
	}
	return models.Card{}, false
}

// Update merges patch into the card. A missing id is a no-op.
func (s *Store) Update(id int64, patch models.CardPatch) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.cards[i].Apply(patch)
	s.persist()
	return true
}

// SyncRating rewrites the cached rating field of a card
func (s *Store) SyncRating(id int64, rating string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	if s.cards[i].Rating == rating {
		return true
	}
	s.cards[i].Rating = rating
	s.persist()
	return true
}

// Remove deletes a card, purges its per-card records and runs the hooks
func (s *Store) Remove(id int64) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.cards = append(s.cards[:i], s.cards[i+1:]...)
	s.persist()
	s.purge(id)
	return true
}

// ClearView deletes every non-ranking-only card of one universe
func (s *Store) ClearView(isFranchise bool) []int64 {
	return s.removeWhere(func(c models.Card) bool {
		return !c.IsRankingOnly && c.Franchise() == isFranchise
	})
}

// RemoveRankingOnly deletes every ranking-only card
func (s *Store) RemoveRankingOnly() []int64 {
	return s.removeWhere(func(c models.Card) bool {
		return c.IsRankingOnly
	})
}

func (s *Store) removeWhere(match func(models.Card) bool) []int64 {
	var removed []int64
	kept := s.cards[:0]
	for _, c := range s.cards {
		if match(c) {
			removed = append(removed, c.ID)
			continue
		}
		kept = append(kept, c)
	}
	s.cards = kept
	if len(removed) == 0 {
		return nil
	}

	s.persist()
	for _, id := range removed {
		s.purge(id)
	}
	s.log.Debug("removed cards", zap.Int("count", len(removed)))
	return removed
}

func (s *Store) purge(id int64) {
	for _, key := range storage.CardRecordKeys(id) {
		s.st.Remove(key)
	}
	for _, h := range s.hooks {
		h(id)
	}
}

func (s *Store) index(id int64) int {
	for i := range s.cards {
		if s.cards[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist() {
	storage.SaveList(s.st, storage.CardsKey, s.cards)
}
