// Package ranking projects rated cards into the franchise and game
// leaderboards.
//
// The rating-<id> record is the single source of truth for a rating. The
// card's own rating field is a cache rewritten by every write path and by
// Refresh, never read back for ranking. Manual leaderboard reordering is a
// display override held in memory only: it is dropped by any rating change
// and never persisted, so the next computation falls back to rating order.
package ranking

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/meur/gameshelf/internal/collection"
	"github.com/meur/gameshelf/internal/models"
	"github.com/meur/gameshelf/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// ErrInvalidRating is returned for ratings that are not numbers
var ErrInvalidRating = errors.New("invalid rating")

// Entry is one leaderboard row
type Entry struct {
	Position        int     `json:"position"`
	ID              int64   `json:"id"`
	Title           string  `json:"text"`
	Image           *string `json:"image"`
	Rating          float64 `json:"rating"`
	IsFranchiseCard bool    `json:"isFranchiseCard"`
	IsRankingOnly   bool    `json:"isRankingOnly"`
}

// Engine computes leaderboards and owns the rating records
type Engine struct {
	st    *storage.Storage
	log   *zap.Logger
	cards *collection.Store

	ratings  map[int64]float64
	mode     models.RankingMode
	override map[models.RankingMode][]int64
	ranked   []models.RankEntry

	now func() time.Time
}

// New creates a ranking engine over the card collection
func New(st *storage.Storage, cards *collection.Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		st:       st,
		log:      log.Named("ranking"),
		cards:    cards,
		ratings:  make(map[int64]float64),
		mode:     models.GameMode,
		override: make(map[models.RankingMode][]int64),
		now:      time.Now,
	}
}

// Load reads the ranking mode and legacy ranked list, then refreshes the
// rating cache from the records. The card collection must be loaded first.
func (e *Engine) Load() {
	if raw, ok := e.st.LoadRaw(storage.RankingModeKey); ok {
		name := strings.Trim(strings.TrimSpace(string(raw)), `"`)
		if mode, err := models.ParseRankingMode(name); err == nil {
			e.mode = mode
		} else {
			e.log.Warn("discarding unknown ranking mode", zap.String("value", name))
			e.st.Remove(storage.RankingModeKey)
		}
	}
	e.ranked = storage.LoadList[models.RankEntry](e.st, storage.RankedGamesKey)
	e.Refresh()
}

// Refresh reconciles the in-memory rating cache and every card's cached
// rating field with the persisted records. Ranking-only cards left without
// a positive record are deleted. It is idempotent, apart from dropping any
// manual leaderboard order.
func (e *Engine) Refresh() {
	e.dropOverrides()
	e.ratings = make(map[int64]float64)
	var orphans []int64
	for _, c := range e.cards.All() {
		v, ok := e.readRecord(c.ID)
		if c.IsRankingOnly && (!ok || v <= 0) {
			orphans = append(orphans, c.ID)
			continue
		}
		if !ok {
			if c.Rating != "" {
				e.cards.SyncRating(c.ID, "")
			}
			continue
		}
		e.ratings[c.ID] = v
		e.cards.SyncRating(c.ID, FormatRating(v))
	}
	for _, id := range orphans {
		e.cards.Remove(id)
		e.log.Warn("pruned unrated ranking-only card", zap.Int64("id", id))
	}
}

// readRecord loads the rating record of id; garbage records are removed
func (e *Engine) readRecord(id int64) (float64, bool) {
	key := storage.RatingKey(id)
	raw, ok := e.st.LoadRaw(key)
	if !ok {
		return 0, false
	}
	v, valid := parseRating(raw)
	if !valid {
		e.log.Warn("discarding corrupt rating record", zap.String("key", key))
		e.st.Remove(key)
		return 0, false
	}
	return v, true
}

// Rating returns the rating of id, 0 when unrated
func (e *Engine) Rating(id int64) float64 {
	if v, ok := e.ratings[id]; ok {
		return v
	}
	v, _ := e.readRecord(id)
	return v
}

// SetRating clamps and stores a rating. A value of 0 clears it: ranking
// only cards are deleted outright, other cards keep a "0" rating. Unknown
// ids are ignored and report false.
func (e *Engine) SetRating(id int64, value float64) (bool, error) {
	if math.IsNaN(value) {
		return false, fmt.Errorf("%w: NaN", ErrInvalidRating)
	}
	card, ok := e.cards.Get(id)
	if !ok {
		return false, nil
	}

	v := clamp(value)
	e.dropOverrides()

	if v == 0 && card.IsRankingOnly {
		delete(e.ratings, id)
		e.cards.Remove(id)
		e.log.Debug("pruned ranking-only card", zap.Int64("id", id))
		return true, nil
	}

	s := FormatRating(v)
	e.st.SaveRaw(storage.RatingKey(id), []byte(s))
	e.cards.SyncRating(id, s)
	e.ratings[id] = v
	return true, nil
}

// RateItem rates an item that may not be on the shelf yet. Unknown items
// are added as ranking-only cards built from seed. It returns the card as
// stored afterwards and false when no card remains.
func (e *Engine) RateItem(seed models.Card, value float64) (models.Card, bool, error) {
	if math.IsNaN(value) {
		return models.Card{}, false, fmt.Errorf("%w: NaN", ErrInvalidRating)
	}
	if _, exists := e.cards.Get(seed.ID); !exists {
		if clamp(value) == 0 {
			return models.Card{}, false, nil
		}
		card := seed.Clone()
		card.IsRankingOnly = true
		card.Rating = ""
		if card.Title == "" {
			card.Title = models.DefaultTitle
		}
		e.cards.Insert(card)
	}

	if _, err := e.SetRating(seed.ID, value); err != nil {
		return models.Card{}, false, err
	}
	card, ok := e.cards.Get(seed.ID)
	return card, ok, nil
}

// Forget drops every in-memory reference to a removed card
func (e *Engine) Forget(id int64) {
	delete(e.ratings, id)
	e.dropOverrides()
	e.RemoveFromRanking(id)
}

func inMode(c models.Card, mode models.RankingMode) bool {
	if mode == models.FranchiseMode {
		return c.Franchise() || (!c.HasUniverse() && !c.IsRankingOnly)
	}
	return (c.HasUniverse() && !c.Franchise()) || c.IsRankingOnly
}

// Leaderboard computes the rating-ordered board for mode: rating
// descending, then title ascending ignoring case, then id.
func (e *Engine) Leaderboard(mode models.RankingMode) []Entry {
	entries := []Entry{}
	for _, c := range e.cards.All() {
		rating := e.ratings[c.ID]
		if rating <= 0 || !inMode(c, mode) {
			continue
		}
		entries = append(entries, Entry{
			ID:              c.ID,
			Title:           c.Title,
			Image:           c.Image,
			Rating:          rating,
			IsFranchiseCard: c.Franchise(),
			IsRankingOnly:   c.IsRankingOnly,
		})
	}

	fold := cases.Fold()
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		at, bt := fold.String(a.Title), fold.String(b.Title)
		if at != bt {
			return at < bt
		}
		return a.ID < b.ID
	})
	return number(entries)
}

// Reorder installs a manual display order for mode. ids must be a
// permutation of the current leaderboard.
func (e *Engine) Reorder(mode models.RankingMode, ids []int64) ([]Entry, error) {
	computed := e.Leaderboard(mode)
	if !samePermutation(computed, ids) {
		return nil, fmt.Errorf("%w: leaderboard reorder is not a permutation of the %s board",
			models.ErrInvariantViolation, mode)
	}
	e.override[mode] = append([]int64(nil), ids...)
	return e.View(mode), nil
}

// View returns the leaderboard with the manual order applied, as long as
// it still covers exactly the rated cards
func (e *Engine) View(mode models.RankingMode) []Entry {
	computed := e.Leaderboard(mode)
	order, ok := e.override[mode]
	if !ok {
		return computed
	}
	if !samePermutation(computed, order) {
		delete(e.override, mode)
		return computed
	}

	byID := make(map[int64]Entry, len(computed))
	for _, entry := range computed {
		byID[entry.ID] = entry
	}
	out := make([]Entry, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return number(out)
}

// ClearAll deletes every rating record, resets every card's rating and
// prunes the ranking-only cards that no longer have a rating
func (e *Engine) ClearAll() {
	for _, key := range e.st.Keys(storage.RatingPrefix) {
		e.st.Remove(key)
	}
	for _, c := range e.cards.All() {
		e.cards.SyncRating(c.ID, "")
	}
	e.ratings = make(map[int64]float64)
	e.cards.RemoveRankingOnly()
	e.dropOverrides()
	e.ClearRanking()
}

// Mode returns the persisted leaderboard mode
func (e *Engine) Mode() models.RankingMode {
	return e.mode
}

// SetMode switches and persists the leaderboard mode
func (e *Engine) SetMode(mode models.RankingMode) {
	if _, err := models.ParseRankingMode(string(mode)); err != nil {
		panic(fmt.Sprintf("ranking: %v", err))
	}
	e.mode = mode
	e.st.SaveRaw(storage.RankingModeKey, []byte(mode))
}

// ToggleMode flips between franchise and game mode
func (e *Engine) ToggleMode() models.RankingMode {
	if e.mode == models.FranchiseMode {
		e.SetMode(models.GameMode)
	} else {
		e.SetMode(models.FranchiseMode)
	}
	return e.mode
}

func (e *Engine) dropOverrides() {
	if len(e.override) > 0 {
		e.override = make(map[models.RankingMode][]int64)
	}
}

func number(entries []Entry) []Entry {
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}

func samePermutation(entries []Entry, ids []int64) bool {
	if len(entries) != len(ids) {
		return false
	}
	members := make(map[int64]bool, len(entries))
	for _, entry := range entries {
		members[entry.ID] = true
	}
	for _, id := range ids {
		if !members[id] {
			return false
		}
		delete(members, id)
	}
	return true
}
