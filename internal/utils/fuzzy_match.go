package utils

import (
	"sort"
	"strings"
)

// amenityAliases maps a canonical amenity key to the phrasings that count
// as a mention of it, in listing tags or in user text.
var amenityAliases = map[string][]string{
	"pool":             {"pool", "swimming pool", "plunge pool"},
	"hot tub":          {"hot tub", "jacuzzi", "whirlpool", "spa tub"},
	"wifi":             {"wifi", "wi-fi", "wireless internet", "internet"},
	"kitchen":          {"kitchen", "kitchenette", "full kitchen"},
	"parking":          {"parking", "free parking", "garage", "driveway", "car park"},
	"gym":              {"gym", "fitness", "fitness center", "exercise equipment"},
	"washer":           {"washer", "washing machine", "laundry", "washer/dryer"},
	"dryer":            {"dryer", "washer/dryer"},
	"air conditioning": {"air conditioning", "air conditioner", "aircon", "a/c", "ac", "central air"},
	"heating":          {"heating", "heater", "central heating", "radiant heating"},
	"pets allowed":     {"pets allowed", "pet friendly", "pet-friendly", "dog friendly", "dogs allowed"},
	"workspace":        {"workspace", "dedicated workspace", "desk", "work area"},
	"ev charger":       {"ev charger", "electric vehicle charger", "car charger"},
	"bbq":              {"bbq", "barbecue", "grill", "bbq grill"},
	"balcony":          {"balcony", "terrace", "patio", "deck"},
	"fireplace":        {"fireplace", "indoor fireplace", "wood stove"},
	"beach access":     {"beach access", "beachfront", "on the beach", "waterfront"},
	"crib":             {"crib", "pack 'n play", "travel crib", "high chair"},
	"breakfast":        {"breakfast", "coffee maker"},
}

// FuzzyMatchAmenity reports whether a search term refers to the given
// listing amenity, via exact, substring or alias matching.
func FuzzyMatchAmenity(searchTerm, amenity string) bool {
	searchLower := strings.ToLower(strings.TrimSpace(searchTerm))
	amenityLower := strings.ToLower(strings.TrimSpace(amenity))

	if searchLower == amenityLower {
		return true
	}
	if strings.Contains(amenityLower, searchLower) {
		return true
	}

	for key, aliases := range amenityAliases {
		if !containsPhrase(searchLower, key) && !aliasMentioned(searchLower, aliases) {
			continue
		}
		if containsPhrase(amenityLower, key) || aliasMentioned(amenityLower, aliases) {
			return true
		}
	}
	return false
}

// ListingHasAmenity reports whether any of the listing's amenity tags
// matches the canonical key.
func ListingHasAmenity(amenities []string, key string) bool {
	for _, amenity := range amenities {
		if FuzzyMatchAmenity(key, amenity) {
			return true
		}
	}
	return false
}

// MentionedAmenities scans free text and returns the canonical keys of
// every amenity it mentions.
func MentionedAmenities(text string) []string {
	lower := strings.ToLower(text)
	mentioned := []string{}
	for key, aliases := range amenityAliases {
		if containsPhrase(lower, key) || aliasMentioned(lower, aliases) {
			mentioned = append(mentioned, key)
		}
	}
	sort.Strings(mentioned)
	return mentioned
}

// NormalizeAmenity maps a raw amenity tag to its canonical key, or returns
// the lowercased tag when no alias matches.
func NormalizeAmenity(amenity string) string {
	amenityLower := strings.ToLower(strings.TrimSpace(amenity))
	for key, aliases := range amenityAliases {
		if amenityLower == key || aliasMentioned(amenityLower, aliases) {
			return key
		}
	}
	return amenityLower
}

func aliasMentioned(text string, aliases []string) bool {
	for _, alias := range aliases {
		if containsPhrase(text, alias) {
			return true
		}
	}
	return false
}

// containsPhrase is a word-bounded substring check, so short aliases like
// "ac" never match inside words like "beach".
func containsPhrase(text, phrase string) bool {
	for idx := strings.Index(text, phrase); idx >= 0; {
		before := idx == 0 || !isLetter(text[idx-1])
		end := idx + len(phrase)
		after := end == len(text) || !isLetter(text[end])
		if before && after {
			return true
		}
		next := strings.Index(text[idx+1:], phrase)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
