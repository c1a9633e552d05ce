package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/meur/gameshelf/internal/catalog"
	"github.com/meur/gameshelf/internal/models"
	"github.com/meur/gameshelf/internal/ranking"
	"github.com/meur/gameshelf/internal/shelf"
	"github.com/meur/gameshelf/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeCatalog struct {
	games  map[int64]catalog.Game
	stores error
}

func (f *fakeCatalog) Search(ctx context.Context, query string, pageSize int) ([]catalog.Game, error) {
	if query == "down" {
		return nil, fmt.Errorf("%w: connection refused", catalog.ErrUnavailable)
	}
	var out []catalog.Game
	for _, g := range f.games {
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeCatalog) Game(ctx context.Context, id int64) (catalog.Game, error) {
	g, ok := f.games[id]
	if !ok {
		return catalog.Game{}, fmt.Errorf("%w: status 404", catalog.ErrUnavailable)
	}
	return g, nil
}

func (f *fakeCatalog) Stores(ctx context.Context, id int64) ([]catalog.Store, error) {
	if f.stores != nil {
		return nil, f.stores
	}
	return []catalog.Store{{ID: 1, StoreID: 1, URL: "https://store/" + fmt.Sprint(id)}}, nil
}

type harness struct {
	t      *testing.T
	server *Server
	shelf  *shelf.Shelf
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sh := shelf.New(storage.New(storage.NewMemory(), nil), nil)
	cat := &fakeCatalog{games: map[int64]catalog.Game{
		3328: {ID: 3328, Name: "The Witcher 3", Genres: models.StringList{"RPG"}},
	}}
	return &harness{t: t, server: New(sh, cat, nil, []string{"*"}), shelf: sh}
}

func (h *harness) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.server.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func Test_Health(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusOK, h.do("GET", "/health", nil).Code)
	require.Equal(t, http.StatusOK, h.do("GET", "/api/health", nil).Code)
}

func Test_CardLifecycle(t *testing.T) {
	require := require.New(t)
	h := newHarness(t)

	rec := h.do("POST", "/api/cards", nil)
	require.Equal(http.StatusCreated, rec.Code)
	card := decode[models.Card](t, rec)
	require.Equal("Title", card.Title)
	require.False(card.Franchise())

	rec = h.do("PATCH", fmt.Sprintf("/api/cards/%d", card.ID), map[string]string{"text": "Celeste"})
	require.Equal(http.StatusOK, rec.Code)
	require.Equal("Celeste", decode[models.Card](t, rec).Title)

	rec = h.do("POST", fmt.Sprintf("/api/categories/current/cards/%d", card.ID), nil)
	require.Equal(http.StatusCreated, rec.Code)
	current := decode[[]models.GameEntry](t, rec)
	require.Len(current, 1)
	require.Equal("Celeste", current[0].Name)

	rec = h.do("PUT", fmt.Sprintf("/api/cards/%d/rating", card.ID), map[string]float64{"rating": 7})
	require.Equal(http.StatusOK, rec.Code)
	require.Equal("7", decode[models.Card](t, rec).Rating)

	rec = h.do("POST", "/api/refresh", nil)
	require.Equal(http.StatusOK, rec.Code)
	refreshed := decode[[]models.Card](t, rec)
	require.Len(refreshed, 1)
	require.Equal("7", refreshed[0].Rating)

	rec = h.do("GET", "/api/leaderboard?mode=game", nil)
	require.Equal(http.StatusOK, rec.Code)
	board := decode[struct {
		Mode    string          `json:"mode"`
		Entries []ranking.Entry `json:"entries"`
	}](t, rec)
	require.Len(board.Entries, 1)

	require.Equal(http.StatusNoContent, h.do("DELETE", fmt.Sprintf("/api/cards/%d", card.ID), nil).Code)
	require.Equal(http.StatusNotFound, h.do("GET", fmt.Sprintf("/api/cards/%d", card.ID), nil).Code)
	require.Empty(h.shelf.Category(models.Current))
}

func Test_ErrorMapping(t *testing.T) {
	h := newHarness(t)
	h.shelf.Place(models.GameEntry{ID: 1, Name: "A"}, models.Next)
	h.shelf.Place(models.GameEntry{ID: 2, Name: "B"}, models.Next)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"unknown category", "GET", "/api/categories/wishlist", nil, http.StatusBadRequest},
		{"bad id", "GET", "/api/cards/abc", nil, http.StatusBadRequest},
		{"missing card", "PATCH", "/api/cards/99", map[string]string{"text": "x"}, http.StatusNotFound},
		{"missing rating", "PUT", "/api/cards/99/rating", map[string]string{}, http.StatusBadRequest},
		{"not a permutation", "PUT", "/api/categories/next/order", map[string][]int64{"ids": {1, 1}}, http.StatusConflict},
		{"bad mode", "PUT", "/api/ranking-mode", map[string]string{"mode": "sideways"}, http.StatusBadRequest},
		{"catalog down", "GET", "/api/catalog/search?q=down", nil, http.StatusBadGateway},
		{"catalog miss", "GET", "/api/catalog/games/1", nil, http.StatusBadGateway},
		{"remove absent entry", "DELETE", "/api/categories/current/1", nil, http.StatusNotFound},
		{"missing franchise game", "PUT", "/api/franchises/Zelda/games/5/rating", nil, http.StatusNotFound},
		{"rate missing card", "PUT", "/api/cards/99/rating", map[string]float64{"rating": 5}, http.StatusNotFound},
		{"drop missing card", "POST", "/api/categories/current/cards/99", nil, http.StatusNotFound},
		{"rank missing card", "POST", "/api/ranked/99", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(tt.method, tt.path, tt.body)
			require.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func Test_SetRating_PrunedCardAnswersNoContent(t *testing.T) {
	require := require.New(t)
	h := newHarness(t)
	_, _, err := h.shelf.RateItem(models.Card{ID: 42, Title: "Tunic", IsFranchiseCard: models.Bool(false)}, 7)
	require.NoError(err)

	zero := map[string]float64{"rating": 0}
	require.Equal(http.StatusNoContent, h.do("PUT", "/api/cards/42/rating", zero).Code)
	require.Equal(http.StatusNotFound, h.do("PUT", "/api/cards/42/rating", zero).Code)

	card := h.shelf.AddCardTo(false)
	path := fmt.Sprintf("/api/cards/%d/rating", card.ID)
	rec := h.do("PUT", path, zero)
	require.Equal(http.StatusOK, rec.Code)
	require.Equal("0", decode[models.Card](t, rec).Rating)

	drop := fmt.Sprintf("/api/categories/next/cards/%d", card.ID)
	require.Equal(http.StatusCreated, h.do("POST", drop, nil).Code)
	require.Equal(http.StatusOK, h.do("POST", drop, nil).Code)
}

func Test_CategoryMoves(t *testing.T) {
	require := require.New(t)
	h := newHarness(t)
	entry := models.GameEntry{ID: 7, Name: "Hollow Knight"}

	require.Equal(http.StatusCreated, h.do("POST", "/api/categories/favorites", entry).Code)
	require.Equal(http.StatusCreated, h.do("POST", "/api/categories/current", entry).Code)
	require.Equal(http.StatusOK, h.do("POST", "/api/categories/current", entry).Code)

	all := decode[map[string][]models.GameEntry](t, h.do("GET", "/api/categories", nil))
	require.Empty(all["favorites"])
	require.Len(all["current"], 1)

	require.Equal(http.StatusNoContent, h.do("DELETE", "/api/categories/current/7", nil).Code)
	require.Equal(http.StatusBadRequest, h.do("POST", "/api/categories/current", map[string]int{"id": 0}).Code)
}

func Test_ViewEndpoints(t *testing.T) {
	require := require.New(t)
	h := newHarness(t)

	rec := h.do("POST", "/api/cards", map[string]bool{"isFranchiseCard": true})
	franchiseCard := decode[models.Card](t, rec)
	h.do("PATCH", fmt.Sprintf("/api/cards/%d", franchiseCard.ID), map[string]string{"text": "Super Mario"})
	h.do("POST", "/api/cards", nil)

	rec = h.do("PUT", "/api/view", map[string]interface{}{"isFranchiseView": true, "search": "MARIO"})
	require.Equal(http.StatusOK, rec.Code)
	view := decode[viewResponse](t, rec)
	require.True(view.IsFranchiseView)
	require.Len(view.Cards, 1)

	view = decode[viewResponse](t, h.do("POST", "/api/view/toggle", nil))
	require.False(view.IsFranchiseView)
	require.Empty(view.Cards)

	rec = h.do("DELETE", "/api/cards", nil)
	require.Equal(http.StatusOK, rec.Code)
	removed := decode[map[string][]int64](t, rec)
	require.Len(removed["removed"], 1)
}

func Test_LeaderboardEndpoints(t *testing.T) {
	require := require.New(t)
	h := newHarness(t)
	for _, item := range []struct {
		id     int64
		title  string
		rating float64
	}{{1, "Alpha", 8}, {2, "Beta", 8}, {3, "Gamma", 9}} {
		rec := h.do("POST", "/api/leaderboard/items", map[string]interface{}{
			"card":   map[string]interface{}{"id": item.id, "text": item.title, "isFranchiseCard": false},
			"rating": item.rating,
		})
		require.Equal(http.StatusOK, rec.Code, rec.Body.String())
	}

	type board struct {
		Mode    string          `json:"mode"`
		Entries []ranking.Entry `json:"entries"`
	}
	got := decode[board](t, h.do("GET", "/api/leaderboard", nil))
	require.Equal("game", got.Mode)
	require.Equal([]int64{3, 1, 2}, []int64{got.Entries[0].ID, got.Entries[1].ID, got.Entries[2].ID})

	rec := h.do("PUT", "/api/leaderboard/order", map[string]interface{}{"ids": []int64{1, 3, 2}})
	require.Equal(http.StatusOK, rec.Code)
	got = decode[board](t, h.do("GET", "/api/leaderboard", nil))
	require.Equal(int64(1), got.Entries[0].ID)
	require.Equal(http.StatusConflict, h.do("PUT", "/api/leaderboard/order", map[string]interface{}{"ids": []int64{1}}).Code)

	mode := decode[map[string]string](t, h.do("POST", "/api/ranking-mode/toggle", nil))
	require.Equal("franchise", mode["mode"])
	got = decode[board](t, h.do("GET", "/api/leaderboard", nil))
	require.Empty(got.Entries)

	require.Equal(http.StatusNoContent, h.do("DELETE", "/api/leaderboard", nil).Code)
	require.Empty(h.shelf.Cards(), "ranking-only cards are pruned")
}

func Test_FranchiseEndpoints(t *testing.T) {
	require := require.New(t)
	h := newHarness(t)

	rec := h.do("POST", "/api/franchises/Zelda/games", nil)
	require.Equal(http.StatusCreated, rec.Code)
	added := decode[struct {
		ID int64 `json:"id"`
	}](t, rec)

	path := fmt.Sprintf("/api/franchises/Zelda/games/%d", added.ID)
	require.Equal(http.StatusBadRequest, h.do("PUT", path+"/rating", nil).Code)

	rec = h.do("PUT", path, map[string]interface{}{
		"title": "Wind Waker", "image": "https://img/ww.jpg", "releaseYear": "2002", "platforms": "GameCube",
	})
	require.Equal(http.StatusOK, rec.Code)

	rec = h.do("PUT", path+"/rating", nil)
	require.Equal(http.StatusOK, rec.Code, rec.Body.String())
	require.True(decode[models.Card](t, rec).IsRankingOnly)

	require.Equal(http.StatusNoContent, h.do("DELETE", path+"/rating", nil).Code)
	require.Empty(h.shelf.Cards())
	require.Equal(http.StatusNoContent, h.do("DELETE", path, nil).Code)
	require.Equal(http.StatusNoContent, h.do("DELETE", "/api/franchises/Zelda", nil).Code)
}

func Test_CatalogEndpoints(t *testing.T) {
	require := require.New(t)
	h := newHarness(t)

	rec := h.do("GET", "/api/catalog/search?q=witcher", nil)
	require.Equal(http.StatusOK, rec.Code)
	results := decode[[]struct {
		Entry models.GameEntry `json:"entry"`
	}](t, rec)
	require.Len(results, 1)
	require.Equal("The Witcher 3", results[0].Entry.Name)

	rec = h.do("GET", "/api/catalog/games/3328", nil)
	require.Equal(http.StatusOK, rec.Code)
	detail := decode[struct {
		Stores []catalog.Store `json:"stores"`
	}](t, rec)
	require.Len(detail.Stores, 1)

	require.Equal(http.StatusBadRequest, h.do("GET", "/api/catalog/search", nil).Code)
}

func Test_Export(t *testing.T) {
	require := require.New(t)
	h := newHarness(t)
	h.do("POST", "/api/cards", nil)

	rec := h.do("GET", "/api/export", nil)
	require.Equal(http.StatusOK, rec.Code)
	snap := decode[shelf.Snapshot](t, rec)
	require.NotEmpty(snap.ID)
	require.Len(snap.Cards, 1)
	require.Contains(rec.Header().Get("Content-Disposition"), snap.ID)
}

func Test_ExportImport(t *testing.T) {
	require := require.New(t)
	src := newHarness(t)
	src.do("POST", "/api/cards", nil)
	src.do("POST", "/api/categories/next", models.GameEntry{ID: 5, Name: "Tunic"})
	exported := src.do("GET", "/api/export", nil)

	dst := newHarness(t)
	req := httptest.NewRequest("POST", "/api/import", bytes.NewReader(exported.Body.Bytes()))
	rec := httptest.NewRecorder()
	dst.server.ServeHTTP(rec, req)
	require.Equal(http.StatusOK, rec.Code)
	stats := decode[shelf.ImportStats](t, rec)
	require.Equal(1, stats.Cards)
	require.Equal(1, stats.Entries)

	require.Equal(http.StatusBadRequest, dst.do("POST", "/api/import", "not a snapshot").Code)
}

func Test_ServeStatic(t *testing.T) {
	require := require.New(t)
	h := newHarness(t)
	dir := t.TempDir()
	require.NoError(os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(\"shelf\")"), 0o644))
	h.server.ServeStatic(http.Dir(dir))

	rec := h.do("GET", "/app.js", nil)
	require.Equal(http.StatusOK, rec.Code)
	require.Contains(rec.Body.String(), "shelf")
	require.Equal(http.StatusOK, h.do("GET", "/api/cards", nil).Code)
}
