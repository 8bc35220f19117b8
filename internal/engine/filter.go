package engine

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"stayfinder/internal/model"
	"stayfinder/internal/nlp"
	"stayfinder/internal/utils"
)

// RetentionConfig holds the per-criterion retention thresholds: the minimum
// fraction of the current set a hard filter must keep to be applied. These
// are tunable rather than principled; see config defaults.
type RetentionConfig struct {
	Superhost    float64 // strict structural criterion, any non-empty result
	Rating       float64
	Price        float64
	PropertyType float64
	Amenity      float64 // loose heuristic, needs high retention
	Bedrooms     float64
	Reviews      float64
}

// DefaultRetention returns the stock thresholds.
func DefaultRetention() RetentionConfig {
	return RetentionConfig{
		Superhost:    0.0,
		Rating:       0.30,
		Price:        0.10,
		PropertyType: 0.20,
		Amenity:      0.40,
		Bedrooms:     0.25,
		Reviews:      0.30,
	}
}

// Criterion is one pure filter-or-sort transform: a predicate over a
// listing plus the retention threshold that decides whether the predicate
// becomes a hard filter or a sort key.
type Criterion struct {
	Name      string
	Retention float64
	Match     func(model.Listing) bool
}

// FilterResult reports the surviving set and which criteria were hard
// applied versus relaxed to ordering.
type FilterResult struct {
	Listings []model.Listing
	Applied  []string
	Relaxed  []string
}

// FilterEngine applies a QueryAnalysis and SearchContext to a candidate
// listing set with the filter-or-sort discipline: a criterion is applied as
// a hard filter only when the surviving subset keeps at least the
// criterion's retention fraction of the current set; otherwise matching
// listings are sorted first and the criterion is reported as relaxed. The
// engine is a pure function of its inputs: it never mutates the context or
// the listings and can never produce an empty result from a non-empty one.
type FilterEngine struct {
	retention     RetentionConfig
	defaultNights int
}

// NewFilterEngine creates a filter engine with the given thresholds.
func NewFilterEngine(retention RetentionConfig, defaultNights int) *FilterEngine {
	if defaultNights <= 0 {
		defaultNights = 3
	}
	return &FilterEngine{retention: retention, defaultNights: defaultNights}
}

// Filter applies the analysis to the listing set and returns the filtered,
// re-ordered set.
func (e *FilterEngine) Filter(listings []model.Listing, analysis *model.QueryAnalysis, ctx *model.SearchContext) []model.Listing {
	return e.Apply(listings, analysis, ctx).Listings
}

// Apply runs the full criteria fold and reports which criteria were
// applied versus relaxed.
func (e *FilterEngine) Apply(listings []model.Listing, analysis *model.QueryAnalysis, ctx *model.SearchContext) *FilterResult {
	result := &FilterResult{
		Listings: append([]model.Listing(nil), listings...),
		Applied:  []string{},
		Relaxed:  []string{},
	}
	if len(listings) == 0 {
		return result
	}

	for _, criterion := range e.deriveCriteria(result.Listings, analysis, ctx) {
		subset := matching(result.Listings, criterion.Match)
		if len(subset) >= minKeep(len(result.Listings), criterion.Retention) {
			result.Listings = subset
			result.Applied = append(result.Applied, criterion.Name)
		} else {
			result.Listings = sortMatchingFirst(result.Listings, criterion.Match)
			result.Relaxed = append(result.Relaxed, criterion.Name)
		}
	}
	return result
}

// minKeep converts a retention fraction into a listing count. Every
// criterion requires at least one survivor, which is what guarantees the
// engine can never return an empty set on non-empty input.
func minKeep(current int, retention float64) int {
	need := int(math.Ceil(retention * float64(current)))
	if need < 1 {
		need = 1
	}
	return need
}

func matching(listings []model.Listing, match func(model.Listing) bool) []model.Listing {
	subset := []model.Listing{}
	for _, listing := range listings {
		if match(listing) {
			subset = append(subset, listing)
		}
	}
	return subset
}

// sortMatchingFirst stably reorders so that matching listings come first,
// with rating descending as the secondary key.
func sortMatchingFirst(listings []model.Listing, match func(model.Listing) bool) []model.Listing {
	sorted := append([]model.Listing(nil), listings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		mi, mj := match(sorted[i]), match(sorted[j])
		if mi != mj {
			return mi
		}
		return sorted[i].RatingOrZero() > sorted[j].RatingOrZero()
	})
	return sorted
}

// EffectiveCeiling reports the nightly price ceiling this turn actually
// used, including one derived from the result distribution for a relative
// "cheaper" request. Callers persist it into the search context so the
// next turn starts from the tightened window.
func (e *FilterEngine) EffectiveCeiling(listings []model.Listing, analysis *model.QueryAnalysis, ctx *model.SearchContext) *float64 {
	_, ceiling := e.priceBounds(listings, analysis, ctx)
	return ceiling
}

// Criterion derivation patterns.
var (
	superhostPattern  = regexp.MustCompile(`(?i)\bsuper\s?hosts?\b`)
	highRatedPattern  = regexp.MustCompile(`(?i)highly rated|top rated|best rated|great reviews|highest rated|higher rated|\btop\b`)
	ratingNumPattern  = regexp.MustCompile(`(?i)(\d\.\d)\s?(?:stars?|\+| or (?:higher|better|above))`)
	popularPattern    = regexp.MustCompile(`(?i)\bpopular\b|well[- ]reviewed|lots of reviews|many reviews`)
	totalBudgetHint   = regexp.MustCompile(`(?i)\btotal\b|whole trip|entire (?:trip|stay)|for the (?:whole )?(?:week|trip|stay)|all.?in`)
	largeGroupPattern = regexp.MustCompile(`(?i)large group|big group|whole (?:family|crew)|everyone`)
	entirePlaceTypes  = regexp.MustCompile(`(?i)entire`)
)

var propertyTypeWords = []string{
	"apartment", "condo", "house", "villa", "cabin", "loft", "studio",
	"cottage", "townhouse", "bungalow", "chalet",
}

// deriveCriteria builds the ordered criteria list for one turn. Strict
// structural criteria come first so weak text-match heuristics only ever
// narrow an already-sensible set.
func (e *FilterEngine) deriveCriteria(listings []model.Listing, analysis *model.QueryAnalysis, ctx *model.SearchContext) []Criterion {
	criteria := []Criterion{}
	text := analysis.Query

	if superhostPattern.MatchString(text) {
		criteria = append(criteria, Criterion{
			Name:      "superhost",
			Retention: e.retention.Superhost,
			Match:     func(l model.Listing) bool { return l.Host.IsSuperhost },
		})
	}

	if minRating := e.minRating(text); minRating > 0 {
		threshold := minRating
		criteria = append(criteria, Criterion{
			Name:      fmt.Sprintf("rating %.1f+", threshold),
			Retention: e.retention.Rating,
			Match: func(l model.Listing) bool {
				return l.Rating != nil && *l.Rating >= threshold
			},
		})
	}

	if floor, ceiling := e.priceBounds(listings, analysis, ctx); floor != nil || ceiling != nil {
		criteria = append(criteria, Criterion{
			Name:      "price",
			Retention: e.retention.Price,
			Match: func(l model.Listing) bool {
				rate := l.NightlyRate()
				if rate <= 0 {
					// Missing price is absent, not zero; keep it out of
					// price-constrained sets.
					return false
				}
				if floor != nil && rate < *floor {
					return false
				}
				if ceiling != nil && rate > *ceiling {
					return false
				}
				return true
			},
		})
	}

	if wanted := wantedPropertyType(text); wanted != "" {
		criteria = append(criteria, Criterion{
			Name:      "property type " + wanted,
			Retention: e.retention.PropertyType,
			Match: func(l model.Listing) bool {
				haystack := strings.ToLower(l.PropertyType + " " + l.RoomType + " " + l.Name)
				return strings.Contains(haystack, wanted)
			},
		})
	}

	if needed := e.neededBedrooms(text, ctx); needed > 0 {
		count := needed
		criteria = append(criteria, Criterion{
			Name:      fmt.Sprintf("%d+ bedrooms", count),
			Retention: e.retention.Bedrooms,
			Match:     func(l model.Listing) bool { return sleepsGroup(l, count) },
		})
	}

	if popularPattern.MatchString(text) {
		criteria = append(criteria, Criterion{
			Name:      "review count",
			Retention: e.retention.Reviews,
			Match: func(l model.Listing) bool {
				return l.ReviewsCount != nil && *l.ReviewsCount >= 25
			},
		})
	}

	for _, amenity := range utils.MentionedAmenities(text) {
		key := amenity
		criteria = append(criteria, Criterion{
			Name:      "amenity " + key,
			Retention: e.retention.Amenity,
			Match: func(l model.Listing) bool {
				return utils.ListingHasAmenity(l.Amenities, key)
			},
		})
	}

	return criteria
}

func (e *FilterEngine) minRating(text string) float64 {
	if m := ratingNumPattern.FindStringSubmatch(text); m != nil {
		var value float64
		if _, err := fmt.Sscanf(m[1], "%f", &value); err == nil && value > 0 && value <= 5 {
			return value
		}
	}
	if highRatedPattern.MatchString(text) {
		return 4.5
	}
	return 0
}

// priceBounds resolves the effective nightly price window for this turn.
// A money amount flagged as a trip total is divided by the night count,
// explicit in the conversation or defaulted. A bare "cheaper" with no
// ceiling anywhere derives one from the median of the current set.
func (e *FilterEngine) priceBounds(listings []model.Listing, analysis *model.QueryAnalysis, ctx *model.SearchContext) (floor, ceiling *float64) {
	if ctx != nil {
		floor = ctx.MinPrice
		ceiling = ctx.MaxPrice
	}

	amounts := nlp.ParseMoneyAmounts(analysis.Query)
	if len(amounts) > 0 {
		amount := amounts[0]
		if totalBudgetHint.MatchString(analysis.Query) {
			amount = amount / float64(e.nights(analysis.Query, ctx))
		}
		if floorPattern.MatchString(analysis.Query) && !ceilingPattern.MatchString(analysis.Query) {
			floor = &amount
		} else {
			ceiling = &amount
		}
	}

	if ceiling == nil && cheaperPattern.MatchString(analysis.Query) {
		if median := medianRate(listings); median > 0 {
			ceiling = &median
		}
	}
	return floor, ceiling
}

func (e *FilterEngine) nights(text string, ctx *model.SearchContext) int {
	if n := nlp.ParseNights(text); n != nil {
		return *n
	}
	if ctx != nil && ctx.Nights != nil && *ctx.Nights > 0 {
		return *ctx.Nights
	}
	return e.defaultNights
}

func (e *FilterEngine) neededBedrooms(text string, ctx *model.SearchContext) int {
	if beds := nlp.ParseBedroomCount(text); beds != nil {
		return *beds
	}
	party := ctx.PartySize()
	if largeGroupPattern.MatchString(text) && party < 5 {
		party = 6
	}
	if party >= 5 {
		return (party + 1) / 2
	}
	return 0
}

// sleepsGroup decides whether a listing can host a group needing the given
// bedroom count. A listing that is not an entire place is disqualified
// unless its name carries an explicit bedroom-count token meeting the need.
func sleepsGroup(l model.Listing, needed int) bool {
	if l.Bedrooms != nil {
		return *l.Bedrooms >= needed
	}
	if nameBeds := nlp.ParseBedroomCount(l.Name); nameBeds != nil {
		return *nameBeds >= needed
	}
	return entirePlaceTypes.MatchString(l.RoomType)
}

func wantedPropertyType(text string) string {
	lower := strings.ToLower(text)
	for _, word := range propertyTypeWords {
		if strings.Contains(lower, word) {
			return word
		}
	}
	return ""
}

func medianRate(listings []model.Listing) float64 {
	rates := []float64{}
	for _, l := range listings {
		if rate := l.NightlyRate(); rate > 0 {
			rates = append(rates, rate)
		}
	}
	if len(rates) == 0 {
		return 0
	}
	sort.Float64s(rates)
	mid := len(rates) / 2
	if len(rates)%2 == 0 {
		return (rates[mid-1] + rates[mid]) / 2
	}
	return rates[mid]
}
