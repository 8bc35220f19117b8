package engine

import (
	"testing"

	"stayfinder/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRefinementGenerator() *RefinementGenerator {
	return NewRefinementGenerator(0.40, 6)
}

func TestSuggestEmptyInput(t *testing.T) {
	g := newTestRefinementGenerator()
	assert.Empty(t, g.Suggest(nil, "anything"))
}

func TestPriceBandsPartitionPricedListings(t *testing.T) {
	listings := fixtureListings()
	bands := priceBands(listings)

	require.NotNil(t, bands)
	assert.Equal(t, len(listings), bands.budget+bands.mid+bands.luxury,
		"every priced listing lands in exactly one band")
	assert.Less(t, bands.q1, bands.median)
	assert.Less(t, bands.median, bands.q3)
}

func TestPriceBandsNeedFourPricedListings(t *testing.T) {
	few := fixtureListings()[:3]
	assert.Nil(t, priceBands(few))
}

func TestSuggestIncludesPriceAndRatingBreakdowns(t *testing.T) {
	g := newTestRefinementGenerator()

	suggestions := g.Suggest(fixtureListings(), "a nice spot in austin")

	types := suggestionTypes(suggestions)
	assert.Contains(t, types, model.RefinementPrice)
	assert.Contains(t, types, model.RefinementRating)
}

func TestSuggestHostBreakdownWhenMixed(t *testing.T) {
	g := newTestRefinementGenerator()

	mixed := []model.Listing{
		makeListing(listingSpec{id: "a", name: "A", rate: 80, rating: 4.2, superhost: true}),
		makeListing(listingSpec{id: "b", name: "B", rate: 120, rating: 4.3}),
		makeListing(listingSpec{id: "c", name: "C", rate: 160, rating: 4.4, superhost: true}),
		makeListing(listingSpec{id: "d", name: "D", rate: 240, rating: 4.1}),
	}
	suggestions := g.Suggest(mixed, "a place downtown")

	var host *model.RefinementSuggestion
	for i := range suggestions {
		if suggestions[i].Type == model.RefinementHostType {
			host = &suggestions[i]
		}
	}
	require.NotNil(t, host)
	assert.Equal(t, 2, host.Count)
}

func TestSuggestSkipsCriteriaAlreadyRequested(t *testing.T) {
	g := newTestRefinementGenerator()

	suggestions := g.Suggest(fixtureListings(), "superhost places with wifi in austin")

	for _, s := range suggestions {
		assert.NotEqual(t, "Superhosts only", s.Label, "superhost was already requested")
		assert.NotEqual(t, "Places with wifi", s.Label, "wifi was already requested")
	}
}

func TestSuggestSkipsUnanimousHostBreakdown(t *testing.T) {
	g := newTestRefinementGenerator()

	all := []model.Listing{
		makeListing(listingSpec{id: "a", name: "A", rate: 100, rating: 4.5, superhost: true}),
		makeListing(listingSpec{id: "b", name: "B", rate: 120, rating: 4.6, superhost: true}),
	}
	suggestions := g.Suggest(all, "places downtown")

	for _, s := range suggestions {
		assert.NotEqual(t, model.RefinementHostType, s.Type,
			"a breakdown that matches everything narrows nothing")
	}
}

func TestClimateSuppression(t *testing.T) {
	g := newTestRefinementGenerator()

	warm := []model.Listing{
		makeListing(listingSpec{id: "m1", name: "Beach Flat", rate: 100, rating: 4.5, amenities: []string{"Heating", "Pool"}, location: "Miami, FL"}),
		makeListing(listingSpec{id: "m2", name: "Ocean View", rate: 150, rating: 4.7, amenities: []string{"Heating", "Pool"}, location: "Miami, FL"}),
		makeListing(listingSpec{id: "m3", name: "Palm Court", rate: 120, rating: 4.6, amenities: []string{"Heating"}, location: "Miami, FL"}),
		makeListing(listingSpec{id: "m4", name: "South Beach Pad", rate: 180, rating: 4.8, amenities: []string{"Heating", "Pool"}, location: "Miami, FL"}),
	}

	suggestions := g.Suggest(warm, "somewhere in miami")

	for _, s := range suggestions {
		assert.NotEqual(t, "Places with heating", s.Label,
			"heating is climate-inappropriate for a warm destination")
	}
}

func TestColdDestinationSuppressesAirConditioning(t *testing.T) {
	assert.True(t, climateInappropriate("air conditioning", climateCold))
	assert.True(t, climateInappropriate("pool", climateCold))
	assert.True(t, climateInappropriate("heating", climateWarm))
	assert.True(t, climateInappropriate("fireplace", climateWarm))
	assert.False(t, climateInappropriate("wifi", climateWarm))
	assert.False(t, climateInappropriate("heating", climateUnknown))
}

func TestInferClimateFromUtteranceAndListings(t *testing.T) {
	assert.Equal(t, climateWarm, inferClimate("a week in miami", nil))
	assert.Equal(t, climateCold, inferClimate("ski trip next month", nil))
	assert.Equal(t, climateUnknown, inferClimate("somewhere nice", nil))

	aspen := []model.Listing{makeListing(listingSpec{id: "a", name: "A", rate: 100, location: "Aspen, CO"})}
	assert.Equal(t, climateCold, inferClimate("a cozy place", aspen))
}

func TestSuggestCapAndOrdering(t *testing.T) {
	g := newTestRefinementGenerator()

	suggestions := g.Suggest(fixtureListings(), "a nice spot")

	assert.LessOrEqual(t, len(suggestions), 6)

	// Priority tiers are monotonically non-increasing, counts descend
	// within a tier.
	for i := 1; i < len(suggestions); i++ {
		prev, cur := suggestions[i-1], suggestions[i]
		assert.LessOrEqual(t, priorityRank[prev.Priority], priorityRank[cur.Priority])
		if prev.Priority == cur.Priority {
			assert.GreaterOrEqual(t, prev.Count, cur.Count)
		}
	}
}

func TestPriorityFractions(t *testing.T) {
	assert.Equal(t, model.PriorityHigh, priorityFor(6, 10))
	assert.Equal(t, model.PriorityMedium, priorityFor(3, 10))
	assert.Equal(t, model.PriorityLow, priorityFor(2, 10))
}

func suggestionTypes(suggestions []model.RefinementSuggestion) []string {
	types := make([]string, len(suggestions))
	for i, s := range suggestions {
		types[i] = s.Type
	}
	return types
}
