package shelf

import (
	"github.com/meur/gameshelf/internal/models"
	"github.com/meur/gameshelf/internal/storage"
)

// SetCardMetadata caches catalog metadata for a card. The record is
// purged with the card.
func (s *Shelf) SetCardMetadata(id int64, v interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards.Get(id); !ok {
		return false
	}
	s.st.Save(storage.CardMetadataKey(id), v)
	return true
}

// CardMetadata loads cached catalog metadata into v
func (s *Shelf) CardMetadata(id int64, v interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Load(storage.CardMetadataKey(id), v)
}

// CardsMissingMetadata lists the homepage cards with no cached metadata
func (s *Shelf) CardsMissingMetadata() []models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Card
	for _, c := range s.cards.All() {
		if c.IsRankingOnly {
			continue
		}
		if _, ok := s.st.LoadRaw(storage.CardMetadataKey(c.ID)); !ok {
			out = append(out, c)
		}
	}
	return out
}
