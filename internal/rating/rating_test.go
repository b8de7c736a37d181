package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		rating int
		want   Band
	}{
		{"negative normalizes to zero", -50, BandBlue},
		{"zero", 0, BandBlue},
		{"just below green", 299, BandBlue},
		{"green lower bound", 300, BandGreen},
		{"yellow lower bound", 450, BandYellow},
		{"orange lower bound", 600, BandOrange},
		{"just below red", 799, BandOrange},
		{"red lower bound", 800, BandRed},
		{"very high", 2400, BandRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.rating))
		})
	}
}

func TestClassifyString(t *testing.T) {
	assert.Equal(t, BandBlue, ClassifyString("not a number"))
	assert.Equal(t, BandBlue, ClassifyString(""))
	assert.Equal(t, BandYellow, ClassifyString(" 512 "))
	assert.Equal(t, BandRed, ClassifyString("900.5"))
}

func TestClassifyStringNonFinite(t *testing.T) {
	tests := []struct {
		raw  string
		want Band
	}{
		{"NaN", BandBlue},
		{"Inf", BandBlue},
		{"+Inf", BandBlue},
		{"-Inf", BandBlue},
		{"-250", BandBlue},
		{"1e300", BandRed},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyString(tt.raw))
		})
	}
}
