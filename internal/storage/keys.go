package storage

import "strconv"

// Collection keys. These names are shared with data written by earlier
// versions of the app and must not change.
const (
	CardsKey         = "cards"
	CurrentGamesKey  = "currentGames"
	NextGamesKey     = "nextGames"
	FinishedGamesKey = "finishedGames"
	FavoriteGamesKey = "favoriteGames"
	RankedGamesKey   = "rankedGames"
	RankingModeKey   = "rankingMode"
)

// Per-id and per-franchise key prefixes
const (
	RatingPrefix             = "rating-"
	FranchiseGameCardsPrefix = "franchise-gameCards-"
	FranchiseRatingsPrefix   = "franchise-gameRatings-"
)

// RatingKey is the source-of-truth rating record of a card
func RatingKey(id int64) string {
	return RatingPrefix + strconv.FormatInt(id, 10)
}

// FranchiseGameCardsKey holds the manually authored games of a franchise
func FranchiseGameCardsKey(name string) string {
	return FranchiseGameCardsPrefix + name
}

// FranchiseRatingsKey holds the per-game ratings of a franchise page
func FranchiseRatingsKey(name string) string {
	return FranchiseRatingsPrefix + name
}

// CardRecordKeys lists every per-card record purged when a card goes away,
// including keys only older versions wrote.
func CardRecordKeys(id int64) []string {
	s := strconv.FormatInt(id, 10)
	return []string{
		RatingPrefix + s,
		"franchise-genre-" + s,
		"franchise-publisher-" + s,
		"franchise_data_" + s,
		"card-" + s,
		"image-" + s,
	}
}

// CardMetadataKey caches catalog metadata fetched for a card
func CardMetadataKey(id int64) string {
	return "franchise_data_" + strconv.FormatInt(id, 10)
}
