package models

import (
	"errors"
	"fmt"
	"time"
)

// Category names one of the four category lists
type Category string

const (
	Current   Category = "current"
	Next      Category = "next"
	Finished  Category = "finished"
	Favorites Category = "favorites"
)

// Categories lists every category in load-precedence order
var Categories = []Category{Current, Next, Finished, Favorites}

// ErrUnknownCategory is returned when parsing an unrecognised category name
var ErrUnknownCategory = errors.New("unknown category")

// ParseCategory validates a category name coming from outside the engine
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Valid reports whether c is one of the four categories
func (c Category) Valid() bool {
	switch c {
	case Current, Next, Finished, Favorites:
		return true
	}
	return false
}

// RankingMode selects which universe the leaderboard shows
type RankingMode string

const (
	FranchiseMode RankingMode = "franchise"
	GameMode      RankingMode = "game"
)

// ErrUnknownMode is returned when parsing an unrecognised ranking mode
var ErrUnknownMode = errors.New("unknown ranking mode")

// ParseRankingMode validates a ranking mode name
func ParseRankingMode(s string) (RankingMode, error) {
	switch RankingMode(s) {
	case FranchiseMode, GameMode:
		return RankingMode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// RankEntry is the legacy leaderboard projection of a card
type RankEntry struct {
	ID       int64     `json:"id"`
	Title    string    `json:"text"`
	RankedAt time.Time `json:"rankedAt"`
}

// ErrInvariantViolation reports a caller bug, such as a reorder payload
// that is not a permutation of the list it replaces
var ErrInvariantViolation = errors.New("invariant violation")
