package models

import (
	"encoding/json"
	"strings"
	"time"
)

// GameEntry is a catalog-derived item placed in one of the category lists
type GameEntry struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Image     string     `json:"image,omitempty"`
	Genres    StringList `json:"genres,omitempty"`
	Released  string     `json:"released,omitempty"`
	Platforms StringList `json:"platforms,omitempty"`
	AddedAt   *time.Time `json:"addedAt,omitempty"` // display only, never used for ordering
}

// Clone returns a deep copy of the entry
func (g GameEntry) Clone() GameEntry {
	out := g
	out.Genres = g.Genres.clone()
	out.Platforms = g.Platforms.clone()
	if g.AddedAt != nil {
		t := *g.AddedAt
		out.AddedAt = &t
	}
	return out
}

// EntryFromCard projects a homepage card into a category entry
func EntryFromCard(c Card) GameEntry {
	c = c.Clone()
	entry := GameEntry{
		ID:       c.ID,
		Name:     c.Title,
		Released: c.ReleaseYear,
	}
	if c.Image != nil {
		entry.Image = *c.Image
	}
	if c.Platforms != "" {
		entry.Platforms = StringList{c.Platforms}
	}
	return entry
}

// StringList decodes the shapes genres and platforms arrive in: a bare
// string ("N/A"), a list of strings, a list of {"name": ...} objects or
// the catalog's [{"platform": {"name": ...}}] form.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler
func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*l = nil
		} else {
			*l = StringList{single}
		}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(StringList, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var named struct {
			Name     string `json:"name"`
			Platform *struct {
				Name string `json:"name"`
			} `json:"platform"`
		}
		if err := json.Unmarshal(item, &named); err != nil {
			return err
		}
		switch {
		case named.Name != "":
			out = append(out, named.Name)
		case named.Platform != nil && named.Platform.Name != "":
			out = append(out, named.Platform.Name)
		}
	}
	*l = out
	return nil
}

// String joins the list for display
func (l StringList) String() string {
	return strings.Join(l, ", ")
}

func (l StringList) clone() StringList {
	if l == nil {
		return nil
	}
	return append(StringList(nil), l...)
}
