package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoneyAmounts(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []float64
	}{
		{"dollar sign", "somewhere under $150 a night", []float64{150}},
		{"thousands with comma", "our budget is $1,200 total", []float64{1200}},
		{"spelled out", "no more than 200 dollars", []float64{200}},
		{"range", "between $100 and $250", []float64{100, 250}},
		{"no amounts", "a cozy cabin with a view", []float64{}},
		{"bare number is not money", "3 bedrooms for 6 people", []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMoneyAmounts(tt.text))
		})
	}
}

func TestParsePartySize(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantAdults   int
		wantChildren int
		wantOK       bool
	}{
		{"adults and kids", "4 adults and 2 kids", 4, 2, true},
		{"kids only defaults two adults", "traveling with 2 children", 2, 2, true},
		{"party of", "a group of friends, party of 8", 8, 0, true},
		{"couple phrasing", "me and my wife", 2, 0, true},
		{"solo", "just me this time", 1, 0, true},
		{"no signal", "somewhere warm in March", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adults, children, ok := ParsePartySize(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantAdults, adults)
			assert.Equal(t, tt.wantChildren, children)
		})
	}
}

func TestParseNights(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *int
	}{
		{"explicit nights", "staying 5 nights", intPtr(5)},
		{"a week", "for a week in June", intPtr(7)},
		{"weekend", "a weekend getaway", intPtr(2)},
		{"no signal", "a place in Denver", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNights(tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestParseBedroomCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *int
	}{
		{"bedrooms word", "we need 3 bedrooms", intPtr(3)},
		{"br token in listing name", "Cozy 4BR near downtown", intPtr(4)},
		{"hyphenated", "2-bedroom condo", intPtr(2)},
		{"no token", "Sunny loft with skyline views", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseBedroomCount(tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func intPtr(n int) *int { return &n }
