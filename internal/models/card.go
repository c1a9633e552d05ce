package models

import (
	"strconv"
	"strings"
)

// DefaultTitle is the title given to freshly added cards
const DefaultTitle = "Title"

// Card represents a user-curated homepage entry (a game or a franchise)
type Card struct {
	ID              int64   `json:"id"`
	Title           string  `json:"text"`
	Image           *string `json:"image"`                     // data URI or URL, nil when unset
	IsFranchiseCard *bool   `json:"isFranchiseCard,omitempty"` // nil = legacy card written before the flag
	IsRankingOnly   bool    `json:"isRankingOnly,omitempty"`
	Rating          string  `json:"rating,omitempty"` // cache of the rating-<id> record

	// Set on cards synthesised from franchise pages
	ReleaseYear string `json:"releaseYear,omitempty"`
	Platforms   string `json:"platforms,omitempty"`
	Links       []Link `json:"links,omitempty"`
}

// Link is a user-authored storefront or wiki link
type Link struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	URL  string `json:"url"`
}

// CardPatch is a partial update for a card. Nil fields are left untouched.
type CardPatch struct {
	Title           *string `json:"text,omitempty"`
	Image           *string `json:"image,omitempty"`
	ClearImage      bool    `json:"clearImage,omitempty"`
	IsFranchiseCard *bool   `json:"isFranchiseCard,omitempty"`
	ReleaseYear     *string `json:"releaseYear,omitempty"`
	Platforms       *string `json:"platforms,omitempty"`
	Links           []Link  `json:"links,omitempty"`
}

// Franchise reports whether the card belongs to the franchise universe.
// Legacy cards without the flag count as game cards.
func (c Card) Franchise() bool {
	return c.IsFranchiseCard != nil && *c.IsFranchiseCard
}

// HasUniverse reports whether the franchise flag was ever set
func (c Card) HasUniverse() bool {
	return c.IsFranchiseCard != nil
}

// RatingValue parses the cached rating, returning 0 when unset or invalid
func (c Card) RatingValue() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(c.Rating), 64)
	if err != nil {
		return 0
	}
	return v
}

// Clone returns a deep copy that shares no memory with c
func (c Card) Clone() Card {
	out := c
	if c.Image != nil {
		img := *c.Image
		out.Image = &img
	}
	if c.IsFranchiseCard != nil {
		f := *c.IsFranchiseCard
		out.IsFranchiseCard = &f
	}
	if c.Links != nil {
		out.Links = append([]Link(nil), c.Links...)
	}
	return out
}

// Apply merges a patch into the card
func (c *Card) Apply(p CardPatch) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.ClearImage {
		c.Image = nil
	} else if p.Image != nil {
		img := *p.Image
		c.Image = &img
	}
	if p.IsFranchiseCard != nil {
		f := *p.IsFranchiseCard
		c.IsFranchiseCard = &f
	}
	if p.ReleaseYear != nil {
		c.ReleaseYear = *p.ReleaseYear
	}
	if p.Platforms != nil {
		c.Platforms = *p.Platforms
	}
	if p.Links != nil {
		c.Links = append([]Link(nil), p.Links...)
	}
}

// Bool returns a pointer to b
func Bool(b bool) *bool {
	return &b
}

// String returns a pointer to s
func String(s string) *string {
	return &s
}
