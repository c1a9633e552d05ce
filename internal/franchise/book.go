// Package franchise manages the per-franchise game collections shown on a
// franchise page. Collections are stored as two opaque records keyed by
// franchise name; their games only reach the leaderboard when rated, which
// creates a ranking-only card.
package franchise

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/meur/gameshelf/internal/models"
	"github.com/meur/gameshelf/internal/ranking"
	"github.com/meur/gameshelf/internal/storage"
	"go.uber.org/zap"
)

// DefaultRating is the rating given to a game rated from a franchise page
const DefaultRating = 5

// placeholder for fields the user has not filled in yet
const emptyField = "Empty"

// ErrIncomplete is returned when rating a game that is missing details
var ErrIncomplete = errors.New("game card is incomplete")

// GameCard is one game inside a franchise collection
type GameCard struct {
	Title       string        `json:"title"`
	Image       *string       `json:"image"`
	ReleaseYear string        `json:"releaseYear"`
	Platforms   string        `json:"platforms"`
	Links       []models.Link `json:"links"`
}

// Complete reports whether the game carries everything needed to rate it.
// Links are optional.
func (g GameCard) Complete() bool {
	return strings.TrimSpace(g.Title) != "" &&
		strings.TrimSpace(g.ReleaseYear) != "" &&
		strings.TrimSpace(g.Platforms) != "" &&
		g.Image != nil && *g.Image != ""
}

// Collection is the set of games listed under one franchise. Map keys are
// decimal game ids.
type Collection struct {
	Name    string              `json:"name"`
	Games   map[string]GameCard `json:"games"`
	Ratings map[string]string   `json:"ratings"`
}

// IDs returns the game ids in ascending order
func (c *Collection) IDs() []int64 {
	ids := make([]int64, 0, len(c.Games))
	for key := range c.Games {
		if id, err := strconv.ParseInt(key, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Game looks up one game
func (c *Collection) Game(id int64) (GameCard, bool) {
	g, ok := c.Games[key(id)]
	return g, ok
}

func key(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Book opens and persists franchise collections
type Book struct {
	st   *storage.Storage
	rank *ranking.Engine
	ids  IDSource
	log  *zap.Logger
	now  func() time.Time
}

// IDSource allocates ids shared with homepage cards
type IDSource interface {
	ReserveID(candidate int64) int64
}

// NewBook creates a book rating games through rank. Game ids come from
// ids so a rated game never lands on an existing card.
func NewBook(st *storage.Storage, rank *ranking.Engine, ids IDSource, log *zap.Logger) *Book {
	if log == nil {
		log = zap.NewNop()
	}
	return &Book{st: st, rank: rank, ids: ids, log: log.Named("franchise"), now: time.Now}
}

// Open loads the collection of a franchise; missing or corrupt records
// yield an empty collection
func (b *Book) Open(name string) *Collection {
	col := &Collection{Name: name}
	if !b.st.Load(storage.FranchiseGameCardsKey(name), &col.Games) || col.Games == nil {
		col.Games = make(map[string]GameCard)
	}
	if !b.st.Load(storage.FranchiseRatingsKey(name), &col.Ratings) || col.Ratings == nil {
		col.Ratings = make(map[string]string)
	}
	return col
}

// Save writes both records of the collection
func (b *Book) Save(col *Collection) {
	b.st.Save(storage.FranchiseGameCardsKey(col.Name), col.Games)
	b.st.Save(storage.FranchiseRatingsKey(col.Name), col.Ratings)
}

// AddGame appends a placeholder game and returns its id
func (b *Book) AddGame(col *Collection) int64 {
	id := b.ids.ReserveID(b.now().UnixMilli())
	for {
		if _, taken := col.Games[key(id)]; !taken {
			break
		}
		id = b.ids.ReserveID(id + 1)
	}
	col.Games[key(id)] = GameCard{
		Title:       models.DefaultTitle,
		ReleaseYear: emptyField,
		Platforms:   emptyField,
		Links:       []models.Link{},
	}
	col.Ratings[key(id)] = "0"
	b.Save(col)
	return id
}

// UpdateGame replaces the details of a game
func (b *Book) UpdateGame(col *Collection, id int64, game GameCard) bool {
	if _, ok := col.Games[key(id)]; !ok {
		return false
	}
	if game.Links == nil {
		game.Links = []models.Link{}
	}
	col.Games[key(id)] = game
	b.Save(col)
	return true
}

// RemoveGame deletes a game and its rating entry from the collection.
// The leaderboard card, if any, is left alone.
func (b *Book) RemoveGame(col *Collection, id int64) bool {
	if _, ok := col.Games[key(id)]; !ok {
		return false
	}
	delete(col.Games, key(id))
	delete(col.Ratings, key(id))
	b.Save(col)
	return true
}

// Clear empties the collection
func (b *Book) Clear(col *Collection) {
	col.Games = make(map[string]GameCard)
	col.Ratings = make(map[string]string)
	b.Save(col)
}

// RateGame puts a game on the leaderboard with the default rating,
// creating a ranking-only card for it when needed
func (b *Book) RateGame(col *Collection, id int64) (models.Card, bool, error) {
	game, ok := col.Games[key(id)]
	if !ok {
		return models.Card{}, false, nil
	}
	if !game.Complete() {
		return models.Card{}, true, fmt.Errorf("%w: %d", ErrIncomplete, id)
	}

	seed := models.Card{
		ID:              id,
		Title:           game.Title,
		Image:           game.Image,
		IsFranchiseCard: models.Bool(false),
		ReleaseYear:     game.ReleaseYear,
		Platforms:       game.Platforms,
		Links:           game.Links,
	}
	card, _, err := b.rank.RateItem(seed, DefaultRating)
	if err != nil {
		return models.Card{}, true, fmt.Errorf("rating franchise game %d: %w", id, err)
	}
	b.rank.AddToRanking(id)

	col.Ratings[key(id)] = ranking.FormatRating(DefaultRating)
	b.Save(col)
	b.log.Debug("rated franchise game", zap.String("franchise", col.Name), zap.Int64("id", id))
	return card, true, nil
}

// UnrateGame clears the rating of a game, which also deletes its
// ranking-only card
func (b *Book) UnrateGame(col *Collection, id int64) bool {
	if _, ok := col.Games[key(id)]; !ok {
		return false
	}
	if _, err := b.rank.SetRating(id, 0); err != nil {
		b.log.Warn("clearing franchise game rating", zap.Int64("id", id), zap.Error(err))
	}
	b.rank.RemoveFromRanking(id)

	col.Ratings[key(id)] = "0"
	b.Save(col)
	return true
}

// Reconcile rewrites the ratings map from the rating records, picking up
// changes made on the leaderboard. It reports whether anything changed.
func (b *Book) Reconcile(col *Collection) bool {
	changed := false
	for _, id := range col.IDs() {
		want := ranking.FormatRating(b.rank.Rating(id))
		if col.Ratings[key(id)] != want {
			col.Ratings[key(id)] = want
			changed = true
		}
	}
	if changed {
		b.Save(col)
	}
	return changed
}

// Clone returns a copy that shares no maps with c
func (c *Collection) Clone() *Collection {
	out := &Collection{
		Name:    c.Name,
		Games:   make(map[string]GameCard, len(c.Games)),
		Ratings: make(map[string]string, len(c.Ratings)),
	}
	for k, g := range c.Games {
		if g.Image != nil {
			img := *g.Image
			g.Image = &img
		}
		g.Links = append([]models.Link(nil), g.Links...)
		out.Games[k] = g
	}
	for k, r := range c.Ratings {
		out.Ratings[k] = r
	}
	return out
}
