package franchise

import (
	"testing"
	"time"

	"github.com/meur/gameshelf/internal/collection"
	"github.com/meur/gameshelf/internal/models"
	"github.com/meur/gameshelf/internal/ranking"
	"github.com/meur/gameshelf/internal/storage"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	kv    *storage.Memory
	cards *collection.Store
	rank  *ranking.Engine
	book  *Book
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := storage.NewMemory()
	st := storage.New(kv, nil)
	cards := collection.New(st, nil)
	cards.Load()
	rank := ranking.New(st, cards, nil)
	cards.OnRemove(rank.Forget)
	rank.Load()
	book := NewBook(st, rank, cards, nil)
	book.now = func() time.Time { return time.UnixMilli(5000) }
	return &fixture{kv: kv, cards: cards, rank: rank, book: book}
}

func completeGame(title string) GameCard {
	return GameCard{
		Title:       title,
		Image:       models.String("https://example.com/cover.jpg"),
		ReleaseYear: "2017",
		Platforms:   "Switch",
		Links:       []models.Link{{ID: 1, Text: "Store", URL: "https://example.com"}},
	}
}

func Test_AddGame_Defaults(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	col := f.book.Open("Zelda")

	a := f.book.AddGame(col)
	b := f.book.AddGame(col)
	require.Equal(int64(5000), a)
	require.Equal(int64(5001), b)

	game, ok := col.Game(a)
	require.True(ok)
	require.Equal(models.DefaultTitle, game.Title)
	require.Equal("Empty", game.ReleaseYear)
	require.False(game.Complete())
	require.Equal("0", col.Ratings["5000"])

	reopened := f.book.Open("Zelda")
	require.Equal([]int64{5000, 5001}, reopened.IDs())
}

func Test_AddGame_NeverReusesCardID(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	require.True(f.cards.Insert(models.Card{ID: 5000, Title: "Hollow Knight", IsFranchiseCard: models.Bool(false)}))
	_, err := f.rank.SetRating(5000, 8)
	require.NoError(err)

	col := f.book.Open("Zelda")
	id := f.book.AddGame(col)
	require.Equal(int64(5001), id)

	require.True(f.book.UpdateGame(col, id, completeGame("Ocarina of Time")))
	card, ok, err := f.book.RateGame(col, id)
	require.NoError(err)
	require.True(ok)
	require.True(card.IsRankingOnly)

	homepage, ok := f.cards.Get(5000)
	require.True(ok)
	require.Equal("8", homepage.Rating)
	require.False(homepage.IsRankingOnly)
	require.Equal(2, f.cards.Len())
}

func Test_Open_CorruptRecords(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	require.NoError(f.kv.Set(storage.FranchiseGameCardsKey("Metroid"), []byte("{broken")))

	col := f.book.Open("Metroid")
	require.Empty(col.Games)
	require.NotNil(col.Ratings)

	_, found, _ := f.kv.Get(storage.FranchiseGameCardsKey("Metroid"))
	require.False(found)
}

func Test_RateGame_CreatesRankingOnlyCard(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	col := f.book.Open("Zelda")
	id := f.book.AddGame(col)

	_, _, err := f.book.RateGame(col, id)
	require.ErrorIs(err, ErrIncomplete)
	require.Zero(f.cards.Len())

	require.True(f.book.UpdateGame(col, id, completeGame("Breath of the Wild")))
	card, ok, err := f.book.RateGame(col, id)
	require.NoError(err)
	require.True(ok)
	require.True(card.IsRankingOnly)
	require.Equal("5", card.Rating)
	require.Equal("Breath of the Wild", card.Title)
	require.Equal("2017", card.ReleaseYear)
	require.Equal("5", col.Ratings[key(id)])

	board := f.rank.Leaderboard(models.GameMode)
	require.Len(board, 1)
	require.Equal(id, board[0].ID)
	require.Len(f.rank.RankedGames(), 1)

	_, ok, err = f.book.RateGame(col, 404)
	require.NoError(err)
	require.False(ok)
}

func Test_UnrateGame_PrunesCard(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	col := f.book.Open("Zelda")
	id := f.book.AddGame(col)
	require.True(f.book.UpdateGame(col, id, completeGame("Link's Awakening")))
	_, _, err := f.book.RateGame(col, id)
	require.NoError(err)

	require.True(f.book.UnrateGame(col, id))

	_, exists := f.cards.Get(id)
	require.False(exists)
	require.Equal("0", col.Ratings[key(id)])
	require.Empty(f.rank.RankedGames())
	require.False(f.book.UnrateGame(col, 12345))
}

func Test_Reconcile_PicksUpLeaderboardChanges(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	col := f.book.Open("Zelda")
	id := f.book.AddGame(col)
	require.True(f.book.UpdateGame(col, id, completeGame("Majora's Mask")))
	_, _, err := f.book.RateGame(col, id)
	require.NoError(err)

	_, err = f.rank.SetRating(id, 9.5)
	require.NoError(err)

	require.True(f.book.Reconcile(col))
	require.Equal("9.5", col.Ratings[key(id)])
	require.False(f.book.Reconcile(col))
	require.Equal("9.5", f.book.Open("Zelda").Ratings[key(id)])
}

func Test_RemoveGame_And_Clear(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	col := f.book.Open("Mario")
	a := f.book.AddGame(col)
	f.book.AddGame(col)

	require.True(f.book.RemoveGame(col, a))
	require.False(f.book.RemoveGame(col, a))
	require.Len(col.Games, 1)
	require.NotContains(col.Ratings, key(a))

	f.book.Clear(col)
	require.Empty(f.book.Open("Mario").Games)
}
