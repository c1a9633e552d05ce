package viewfilter

import (
	"testing"

	"github.com/meur/gameshelf/internal/models"
	"github.com/stretchr/testify/require"
)

func card(id int64, title string, franchise *bool) models.Card {
	return models.Card{ID: id, Title: title, IsFranchiseCard: franchise}
}

func Test_ScenarioE_SearchKeepsOrder(t *testing.T) {
	cards := []models.Card{
		card(1, "Super Mario", models.Bool(true)),
		card(2, "Mario Kart", models.Bool(true)),
		card(3, "Zelda", models.Bool(true)),
	}
	require.Equal(t, []int64{1, 2}, Visible(cards, true, "mario"))
}

func Test_Visible(t *testing.T) {
	cards := []models.Card{
		card(1, "Hollow Knight", models.Bool(false)),
		card(2, "Metroid", models.Bool(true)),
		card(3, "Legacy Game", nil),
		{ID: 4, Title: "Hollow Ranked", IsFranchiseCard: models.Bool(false), IsRankingOnly: true},
		card(5, "ÉCLAIR", models.Bool(false)),
	}

	tests := []struct {
		name      string
		franchise bool
		search    string
		want      []int64
	}{
		{"game view lists legacy cards", false, "", []int64{1, 3, 5}},
		{"franchise view", true, "", []int64{2}},
		{"blank search after trim", false, "   ", []int64{1, 3, 5}},
		{"inner space kept", false, "hollow ", []int64{1}},
		{"trailing space is matched", false, "knight ", []int64{}},
		{"ranking-only excluded", false, "hollow", []int64{1}},
		{"case folding", false, "éclair", []int64{5}},
		{"no match", true, "zelda", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Visible(cards, tt.franchise, tt.search))
		})
	}
}

// every visible card satisfies the filter, and every card satisfying it is visible
func Test_Visible_Exact(t *testing.T) {
	require := require.New(t)
	var cards []models.Card
	titles := []string{"Alpha", "alpine", "Beta", "ALPS", "Gamma"}
	for i, title := range titles {
		cards = append(cards, models.Card{
			ID:              int64(i + 1),
			Title:           title,
			IsFranchiseCard: models.Bool(i%2 == 0),
			IsRankingOnly:   i == 3,
		})
	}

	got := Visible(cards, true, "alp")
	require.Equal([]int64{1}, got)
	got = Visible(cards, false, "alp")
	require.Equal([]int64{2}, got)
}

func Test_Cards_ReturnsCopies(t *testing.T) {
	img := "data:image/png;base64,AA=="
	cards := []models.Card{{ID: 1, Title: "A", Image: &img, IsFranchiseCard: models.Bool(false)}}

	out := Cards(cards, false, "")
	*out[0].Image = "changed"
	require.Equal(t, "data:image/png;base64,AA==", *cards[0].Image)
}
