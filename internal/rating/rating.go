package rating

import (
	"math"
	"strconv"
	"strings"
)

// Band is the colour band a player's rating falls into on the board.
type Band string

const (
	BandBlue   Band = "blue"
	BandGreen  Band = "green"
	BandYellow Band = "yellow"
	BandOrange Band = "orange"
	BandRed    Band = "red"
)

// Classify maps a rating to its band. Negative ratings are treated as 0.
func Classify(rating int) Band {
	if rating < 0 {
		rating = 0
	}
	switch {
	case rating < 300:
		return BandBlue
	case rating < 450:
		return BandGreen
	case rating < 600:
		return BandYellow
	case rating < 800:
		return BandOrange
	default:
		return BandRed
	}
}

// ClassifyString classifies a textual rating. Anything that does not parse as a
// finite number is rated 0.
func ClassifyString(raw string) Band {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return Classify(0)
	}
	return Classify(int(min(max(value, 0), math.MaxInt32)))
}
