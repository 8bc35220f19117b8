package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

// Pattern tables for the regex fallback extraction. Each table is an
// ordered list evaluated with an accumulate-all-matches rule.

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s*\d{0,2}(?:\s*[-–]\s*\d{1,2})?\b`),
	regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\.?\s+\d{1,2}\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`),
	regexp.MustCompile(`(?i)\b(this|next|coming)\s+(weekend|week|month|friday|saturday|sunday)\b`),
	regexp.MustCompile(`(?i)\b(tonight|tomorrow|weekend)\b`),
	regexp.MustCompile(`(?i)\bcheck(?:ing)?[\s-]?in\b`),
}

var moneyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\s?\d[\d,]*(?:\.\d+)?`),
	regexp.MustCompile(`(?i)\b\d[\d,]*(?:\.\d+)?\s?(?:dollars|usd|bucks)\b`),
}

var peoplePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d+\s+(?:adults?|people|persons?|guests?|travellers?|travelers?)\b`),
	regexp.MustCompile(`(?i)\b\d+\s+(?:kids?|children|child|toddlers?|infants?)\b`),
	regexp.MustCompile(`(?i)\b(?:family|group|party)\s+of\s+\d+\b`),
	regexp.MustCompile(`(?i)\b(?:just\s+)?(?:me and my|my)\s+(?:wife|husband|partner|girlfriend|boyfriend)\b`),
	regexp.MustCompile(`(?i)\bsolo\b|\bby myself\b|\bjust me\b`),
}

var prepositionPlacePattern = regexp.MustCompile(`(?i)\b(?:in|near|around|to|at)\s+((?:[A-Z][a-zA-Z]+)(?:\s+[A-Z][a-zA-Z]+)?)`)

var travelBrands = []string{"airbnb", "vrbo", "booking.com", "expedia", "marriott", "hilton"}

// knownCities backstops the tagger for bare city mentions ("Austin, 2
// adults, pool") that carry no preposition.
var knownCities = []string{
	"austin", "miami", "denver", "new york", "nyc", "los angeles",
	"san francisco", "seattle", "chicago", "boston", "orlando", "nashville",
	"las vegas", "phoenix", "aspen", "new orleans", "san diego", "portland",
	"honolulu", "anchorage", "london", "paris", "rome", "barcelona",
	"tokyo", "cancun", "tulum", "reykjavik",
}

func matchAll(patterns []*regexp.Regexp, text string) []string {
	matches := []string{}
	for _, pattern := range patterns {
		for _, m := range pattern.FindAllString(text, -1) {
			matches = appendUnique(matches, strings.TrimSpace(m))
		}
	}
	return matches
}

func prepositionPlaces(text string) []string {
	places := []string{}
	for _, m := range prepositionPlacePattern.FindAllStringSubmatch(text, -1) {
		candidate := strings.TrimSpace(m[1])
		// Capitalized sentence starters slip through; skip day/month words.
		if isDateWord(candidate) {
			continue
		}
		places = append(places, candidate)
	}
	return places
}

func isDateWord(word string) bool {
	lower := strings.ToLower(strings.Fields(word)[0])
	dateWords := map[string]bool{
		"january": true, "february": true, "march": true, "april": true,
		"may": true, "june": true, "july": true, "august": true,
		"september": true, "october": true, "november": true, "december": true,
		"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
		"friday": true, "saturday": true, "sunday": true,
	}
	return dateWords[lower]
}

func knownPlaces(text string) []string {
	lower := strings.ToLower(text)
	places := []string{}
	for _, city := range knownCities {
		if containsWord(lower, city) {
			places = append(places, strings.Title(city))
		}
	}
	return places
}

func containsWord(text, word string) bool {
	idx := strings.Index(text, word)
	if idx < 0 {
		return false
	}
	before := idx == 0 || !isLetter(text[idx-1])
	end := idx + len(word)
	after := end == len(text) || !isLetter(text[end])
	return before && after
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func knownOrganizations(text string) []string {
	lower := strings.ToLower(text)
	orgs := []string{}
	for _, brand := range travelBrands {
		if strings.Contains(lower, brand) {
			orgs = append(orgs, brand)
		}
	}
	return orgs
}

// Numeric parse helpers. Malformed numbers are absent, never zero.

var amountPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// ParseMoneyAmounts returns the numeric amounts found in an utterance, in
// order of appearance.
func ParseMoneyAmounts(text string) []float64 {
	amounts := []float64{}
	for _, token := range matchAll(moneyPatterns, text) {
		raw := amountPattern.FindString(token)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			continue
		}
		amounts = append(amounts, value)
	}
	return amounts
}

var (
	adultsPattern   = regexp.MustCompile(`(?i)\b(\d+)\s+(?:adults?|people|persons?|guests?|travellers?|travelers?)\b`)
	childrenPattern = regexp.MustCompile(`(?i)\b(\d+)\s+(?:kids?|children|toddlers?|infants?)\b`)
	partyOfPattern  = regexp.MustCompile(`(?i)\b(?:family|group|party)\s+of\s+(\d+)\b`)
	couplePattern   = regexp.MustCompile(`(?i)\b(?:me and my|my)\s+(?:wife|husband|partner|girlfriend|boyfriend)\b|\bcouple\b|\bromantic getaway\b`)
	soloPattern     = regexp.MustCompile(`(?i)\bsolo\b|\bby myself\b|\bjust me\b`)
)

// ParsePartySize extracts adult and child counts from an utterance.
// The ok flag is false when no group-size signal was found at all.
func ParsePartySize(text string) (adults, children int, ok bool) {
	if m := adultsPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			adults, ok = n, true
		}
	}
	if m := childrenPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			children, ok = n, true
			if adults == 0 {
				adults = 2
			}
		}
	}
	if !ok {
		if m := partyOfPattern.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n, 0, true
			}
		}
		if couplePattern.MatchString(text) {
			return 2, 0, true
		}
		if soloPattern.MatchString(text) {
			return 1, 0, true
		}
	}
	return adults, children, ok
}

var (
	nightsPattern = regexp.MustCompile(`(?i)\b(\d+)\s+nights?\b`)
	weekPattern   = regexp.MustCompile(`(?i)\b(?:a|one|the|this|next)\s+week\b|\bweek-?long\b`)
	weekendWord   = regexp.MustCompile(`(?i)\bweekend\b`)
)

// ParseNights extracts an explicit stay length from an utterance.
func ParseNights(text string) *int {
	if m := nightsPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return &n
		}
	}
	if weekPattern.MatchString(text) {
		n := 7
		return &n
	}
	if weekendWord.MatchString(text) {
		n := 2
		return &n
	}
	return nil
}

var bedroomTokenPattern = regexp.MustCompile(`(?i)\b(\d+)[\s-]?(?:bed(?:room)?s?|br|bdr)\b`)

// ParseBedroomCount extracts a bedroom count token from free text, such as
// a listing name ("Cozy 3BR near downtown") or an utterance.
func ParseBedroomCount(text string) *int {
	if m := bedroomTokenPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return &n
		}
	}
	return nil
}
