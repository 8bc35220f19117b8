package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzyMatchAmenity(t *testing.T) {
	tests := []struct {
		name       string
		searchTerm string
		amenity    string
		want       bool
	}{
		{"exact match", "pool", "pool", true},
		{"substring match", "pool", "Private pool", true},
		{"alias jacuzzi to hot tub", "hot tub", "Jacuzzi", true},
		{"alias wifi spelling", "wifi", "Wi-Fi", true},
		{"ac alias matches air conditioning", "air conditioning", "AC", true},
		{"ac never matches inside beach", "air conditioning", "Beach access", false},
		{"laundry counts as washer", "washer", "Laundry", true},
		{"unrelated amenities", "pool", "Kitchen", false},
		{"pet friendly variants", "pets allowed", "Pet-friendly", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FuzzyMatchAmenity(tt.searchTerm, tt.amenity))
		})
	}
}

func TestListingHasAmenity(t *testing.T) {
	amenities := []string{"Fast Wi-Fi", "Free parking on premises", "Jacuzzi"}

	assert.True(t, ListingHasAmenity(amenities, "wifi"))
	assert.True(t, ListingHasAmenity(amenities, "parking"))
	assert.True(t, ListingHasAmenity(amenities, "hot tub"))
	assert.False(t, ListingHasAmenity(amenities, "pool"))
	assert.False(t, ListingHasAmenity(nil, "pool"))
}

func TestMentionedAmenities(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "multiple mentions sorted",
			text: "I need a place with a pool and fast wifi",
			want: []string{"pool", "wifi"},
		},
		{
			name: "alias mention",
			text: "somewhere with a jacuzzi would be great",
			want: []string{"hot tub"},
		},
		{
			name: "beach does not trigger ac",
			text: "right on the beach please",
			want: []string{"beach access"},
		},
		{
			name: "no amenities",
			text: "a quiet spot in the hills",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MentionedAmenities(tt.text))
		})
	}
}

func TestNormalizeAmenity(t *testing.T) {
	assert.Equal(t, "hot tub", NormalizeAmenity("Jacuzzi"))
	assert.Equal(t, "wifi", NormalizeAmenity("Wi-Fi"))
	assert.Equal(t, "washer", NormalizeAmenity("Washing machine"))
	assert.Equal(t, "rooftop sauna", NormalizeAmenity("Rooftop sauna"))
}
