package shelf

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meur/gameshelf/internal/models"
	"github.com/meur/gameshelf/internal/ranking"
	"go.uber.org/zap"
)

// Snapshot is a point-in-time export of the whole shelf
type Snapshot struct {
	ID          string                                 `json:"id"`
	TakenAt     time.Time                              `json:"takenAt"`
	Cards       []models.Card                          `json:"cards"`
	Categories  map[models.Category][]models.GameEntry `json:"categories"`
	RankingMode models.RankingMode                     `json:"rankingMode"`
	Leaderboard map[models.RankingMode][]ranking.Entry `json:"leaderboard"`
	RankedGames []models.RankEntry                     `json:"rankedGames"`
}

// Snapshot exports every card, category and leaderboard
func (s *Shelf) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:          uuid.NewString(),
		TakenAt:     s.now().UTC(),
		Cards:       s.cards.All(),
		Categories:  s.categoriesLocked(),
		RankingMode: s.ranking.Mode(),
		Leaderboard: map[models.RankingMode][]ranking.Entry{
			models.FranchiseMode: s.ranking.View(models.FranchiseMode),
			models.GameMode:      s.ranking.View(models.GameMode),
		},
		RankedGames: s.ranking.RankedGames(),
	}
}

// ImportStats summarises an Import
type ImportStats struct {
	Cards   int `json:"cards"`
	Skipped int `json:"skipped"`
	Entries int `json:"entries"`
	Ratings int `json:"ratings"`
}

// Import merges a snapshot into the shelf. Cards whose id already exists
// are skipped, as are ranking-only cards without a positive rating; ratings
// are written through the rating records.
func (s *Shelf) Import(snap Snapshot) ImportStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats ImportStats
	for _, c := range snap.Cards {
		rated := strings.TrimSpace(c.Rating) != ""
		value := c.RatingValue()
		if c.IsRankingOnly && !(rated && value > 0) {
			stats.Skipped++
			continue
		}
		c.Rating = ""
		if !s.cards.Insert(c) {
			stats.Skipped++
			continue
		}
		if rated {
			if _, err := s.ranking.SetRating(c.ID, value); err != nil {
				s.log.Warn("dropping unusable rating",
					zap.Int64("id", c.ID), zap.Error(err))
				rated = false
			}
		}
		if _, ok := s.cards.Get(c.ID); !ok {
			// rated down to zero and pruned
			stats.Skipped++
			continue
		}
		stats.Cards++
		if rated {
			stats.Ratings++
		}
	}

	for _, cat := range models.Categories {
		for _, entry := range snap.Categories[cat] {
			if s.categories.Place(entry, cat) {
				stats.Entries++
			}
		}
	}

	if snap.RankingMode != "" {
		if mode, err := models.ParseRankingMode(string(snap.RankingMode)); err == nil {
			s.ranking.SetMode(mode)
		}
	}
	for _, r := range snap.RankedGames {
		s.ranking.AppendRankEntry(r)
	}

	s.log.Info("imported snapshot",
		zap.String("snapshot", snap.ID),
		zap.Int("cards", stats.Cards),
		zap.Int("skipped", stats.Skipped),
		zap.Int("entries", stats.Entries))
	return stats
}
