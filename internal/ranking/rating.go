package ranking

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	minRating = 0
	maxRating = 10
)

// clamp bounds a rating to [0,10] keeping one decimal
func clamp(v float64) float64 {
	v = math.Max(minRating, math.Min(maxRating, v))
	return math.Round(v*10) / 10
}

// FormatRating renders a rating the way records are written: "7", "7.5"
func FormatRating(v float64) string {
	return strconv.FormatFloat(clamp(v), 'f', -1, 64)
}

// parseRating decodes a rating record. Records come as a bare number
// ("7.5"), a JSON string ("\"7.5\"") or an object ({"rating": "7.5"}).
func parseRating(data []byte) (float64, bool) {
	s := strings.TrimSpace(string(data))
	if s == "" {
		return 0, true
	}

	switch s[0] {
	case '{':
		var obj struct {
			Rating json.RawMessage `json:"rating"`
		}
		if err := json.Unmarshal([]byte(s), &obj); err != nil {
			return 0, false
		}
		if len(obj.Rating) == 0 || string(obj.Rating) == "null" {
			return 0, true
		}
		return parseRating(obj.Rating)
	case '"':
		var str string
		if err := json.Unmarshal([]byte(s), &str); err != nil {
			return 0, false
		}
		if strings.HasPrefix(strings.TrimSpace(str), "{") {
			return 0, false
		}
		return parseRating([]byte(str))
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return clamp(v), true
}
