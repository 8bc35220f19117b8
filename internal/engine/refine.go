package engine

import (
	"fmt"
	"sort"
	"strings"

	"stayfinder/internal/model"
	"stayfinder/internal/utils"
)

// RefinementGenerator proposes the next narrowing steps from statistics
// over the current filtered set: price quartile bands, host and rating
// breakdowns, amenity frequencies and property-type histograms. Anything
// the user already asked for is never re-proposed.
type RefinementGenerator struct {
	popularity float64 // amenity frequency needed before it is worth offering
	maxResults int
}

// NewRefinementGenerator creates a generator with the given amenity
// popularity threshold and suggestion cap.
func NewRefinementGenerator(popularity float64, maxResults int) *RefinementGenerator {
	if popularity <= 0 {
		popularity = 0.40
	}
	if maxResults <= 0 {
		maxResults = 6
	}
	return &RefinementGenerator{popularity: popularity, maxResults: maxResults}
}

// Suggest computes the ordered refinement list for the filtered set.
func (g *RefinementGenerator) Suggest(listings []model.Listing, utterance string) []model.RefinementSuggestion {
	if len(listings) == 0 {
		return []model.RefinementSuggestion{}
	}

	lower := strings.ToLower(utterance)
	total := len(listings)
	suggestions := []model.RefinementSuggestion{}

	add := func(s model.RefinementSuggestion, definingKeywords ...string) {
		for _, keyword := range definingKeywords {
			if strings.Contains(lower, keyword) {
				return
			}
		}
		if s.Count <= 0 {
			return
		}
		s.Priority = priorityFor(s.Count, total)
		suggestions = append(suggestions, s)
	}

	// Price bands from quartiles.
	if bands := priceBands(listings); bands != nil {
		add(model.RefinementSuggestion{
			Type:  model.RefinementPrice,
			Label: fmt.Sprintf("Budget-friendly (under $%.0f/night)", bands.q1),
			Query: fmt.Sprintf("under $%.0f per night", bands.q1),
			Count: bands.budget,
		}, "budget", "cheap")
		add(model.RefinementSuggestion{
			Type:  model.RefinementPrice,
			Label: fmt.Sprintf("Mid-range ($%.0f-$%.0f/night)", bands.q1, bands.q3),
			Query: fmt.Sprintf("between $%.0f and $%.0f per night", bands.q1, bands.q3),
			Count: bands.mid,
		}, "mid-range")
		add(model.RefinementSuggestion{
			Type:  model.RefinementPrice,
			Label: fmt.Sprintf("Luxury (over $%.0f/night)", bands.q3),
			Query: fmt.Sprintf("over $%.0f per night", bands.q3),
			Count: bands.luxury,
		}, "luxury", "splurge")
	}

	// Host and rating breakdowns.
	superhosts := 0
	topRated := 0
	for _, l := range listings {
		if l.Host.IsSuperhost {
			superhosts++
		}
		if l.Rating != nil && *l.Rating >= 4.8 {
			topRated++
		}
	}
	if superhosts > 0 && superhosts < total {
		add(model.RefinementSuggestion{
			Type:  model.RefinementHostType,
			Label: "Superhosts only",
			Query: "superhost only",
			Count: superhosts,
		}, "superhost")
	}
	if topRated > 0 && topRated < total {
		add(model.RefinementSuggestion{
			Type:  model.RefinementRating,
			Label: "Top rated (4.8+)",
			Query: "rated 4.8 or higher",
			Count: topRated,
		}, "4.8", "top rated", "highly rated")
	}

	// Popular amenities, minus the climate-inappropriate ones.
	climate := inferClimate(utterance, listings)
	for _, stat := range amenityFrequencies(listings) {
		if float64(stat.count)/float64(total) < g.popularity {
			continue
		}
		if climateInappropriate(stat.key, climate) {
			continue
		}
		add(model.RefinementSuggestion{
			Type:  model.RefinementAmenity,
			Label: "Places with " + stat.key,
			Query: "with " + stat.key,
			Count: stat.count,
		}, stat.key)
	}

	// Property type histogram, when the set is mixed.
	for _, stat := range propertyTypeHistogram(listings) {
		add(model.RefinementSuggestion{
			Type:  model.RefinementPropertyType,
			Label: "Only " + stat.key + "s",
			Query: "only " + stat.key + "s",
			Count: stat.count,
		}, stat.key)
	}

	sortSuggestions(suggestions)
	if len(suggestions) > g.maxResults {
		suggestions = suggestions[:g.maxResults]
	}
	return suggestions
}

func priorityFor(count, total int) string {
	frac := float64(count) / float64(total)
	switch {
	case frac >= 0.6:
		return model.PriorityHigh
	case frac >= 0.3:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

var priorityRank = map[string]int{
	model.PriorityHigh:   0,
	model.PriorityMedium: 1,
	model.PriorityLow:    2,
}

func sortSuggestions(suggestions []model.RefinementSuggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		if priorityRank[suggestions[i].Priority] != priorityRank[suggestions[j].Priority] {
			return priorityRank[suggestions[i].Priority] < priorityRank[suggestions[j].Priority]
		}
		return suggestions[i].Count > suggestions[j].Count
	})
}

// bandStats buckets the priced listings by price quartile. Every priced
// listing lands in exactly one band, so the counts sum to the priced total.
type bandStats struct {
	q1, median, q3      float64
	budget, mid, luxury int
}

func priceBands(listings []model.Listing) *bandStats {
	rates := []float64{}
	for _, l := range listings {
		if rate := l.NightlyRate(); rate > 0 {
			rates = append(rates, rate)
		}
	}
	if len(rates) < 4 {
		return nil
	}
	sort.Float64s(rates)

	bands := &bandStats{
		q1:     percentile(rates, 0.25),
		median: percentile(rates, 0.50),
		q3:     percentile(rates, 0.75),
	}
	for _, rate := range rates {
		switch {
		case rate <= bands.q1:
			bands.budget++
		case rate <= bands.q3:
			bands.mid++
		default:
			bands.luxury++
		}
	}
	return bands
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := p * float64(len(sorted)-1)
	lower := int(pos)
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

type keyCount struct {
	key   string
	count int
}

// amenityFrequencies counts, per canonical amenity, how many listings
// carry it. Each listing contributes at most once per amenity.
func amenityFrequencies(listings []model.Listing) []keyCount {
	counts := map[string]int{}
	for _, l := range listings {
		seen := map[string]bool{}
		for _, amenity := range l.Amenities {
			key := utils.NormalizeAmenity(amenity)
			if !seen[key] {
				seen[key] = true
				counts[key]++
			}
		}
	}
	return sortedCounts(counts)
}

// propertyTypeHistogram returns the top property types, but only when the
// set actually contains more than one type.
func propertyTypeHistogram(listings []model.Listing) []keyCount {
	counts := map[string]int{}
	for _, l := range listings {
		key := strings.ToLower(l.PropertyType)
		if key == "" {
			key = strings.ToLower(l.RoomType)
		}
		if key == "" {
			continue
		}
		counts[key]++
	}
	if len(counts) < 2 {
		return nil
	}
	stats := sortedCounts(counts)
	if len(stats) > 2 {
		stats = stats[:2]
	}
	return stats
}

func sortedCounts(counts map[string]int) []keyCount {
	stats := make([]keyCount, 0, len(counts))
	for key, count := range counts {
		stats = append(stats, keyCount{key: key, count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].key < stats[j].key
	})
	return stats
}

// Climate keyword tables, versioned with the amenity vocabulary rather
// than duplicated per caller.
var warmPlaceWords = []string{
	"miami", "phoenix", "austin", "hawaii", "honolulu", "cancun", "tulum",
	"orlando", "san diego", "new orleans", "palm", "beach", "tropical",
	"desert", "island",
}

var coldPlaceWords = []string{
	"alaska", "anchorage", "aspen", "denver", "reykjavik", "iceland",
	"ski", "snow", "alps", "mountain", "winter",
}

type climate int

const (
	climateUnknown climate = iota
	climateWarm
	climateCold
)

func inferClimate(utterance string, listings []model.Listing) climate {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(utterance))
	for _, l := range listings {
		sb.WriteString(" ")
		sb.WriteString(strings.ToLower(l.Location))
	}
	haystack := sb.String()

	for _, word := range warmPlaceWords {
		if strings.Contains(haystack, word) {
			return climateWarm
		}
	}
	for _, word := range coldPlaceWords {
		if strings.Contains(haystack, word) {
			return climateCold
		}
	}
	return climateUnknown
}

// climateInappropriate suppresses amenity refinements that make no sense
// for the destination: heating in warm places, air conditioning in cold.
func climateInappropriate(amenity string, c climate) bool {
	switch c {
	case climateWarm:
		return amenity == "heating" || amenity == "fireplace"
	case climateCold:
		return amenity == "air conditioning" || amenity == "pool"
	default:
		return false
	}
}
