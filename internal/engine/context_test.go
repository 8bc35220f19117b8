package engine

import (
	"testing"

	"stayfinder/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildContextRequiresLocation(t *testing.T) {
	tracker := NewContextTracker()

	analysis := &model.QueryAnalysis{Query: "2 adults, somewhere warm"}
	assert.Nil(t, tracker.Track(nil, analysis), "no location keeps the conversation uninitialized")
}

func TestBuildContextFromFirstTurn(t *testing.T) {
	tracker := NewContextTracker()

	analysis := &model.QueryAnalysis{
		Query: "a place in Austin for 2 adults and 1 kid, 4 nights, under $200",
		Entities: model.Entities{
			Places: []string{"Austin"},
			Money:  []string{"$200"},
		},
	}
	ctx := tracker.Track(nil, analysis)

	require.NotNil(t, ctx)
	assert.Equal(t, "Austin", ctx.Location)
	assert.Equal(t, 2, ctx.Adults)
	assert.Equal(t, 1, ctx.Children)
	require.NotNil(t, ctx.Nights)
	assert.Equal(t, 4, *ctx.Nights)
	require.NotNil(t, ctx.MaxPrice)
	assert.Equal(t, 200.0, *ctx.MaxPrice)
	assert.Nil(t, ctx.MinPrice)
}

func TestMergePreservesUnmentionedFields(t *testing.T) {
	tracker := NewContextTracker()
	prior := &model.SearchContext{
		Location: "Austin",
		Adults:   2,
		Children: 1,
		Nights:   intPtr(4),
		CheckIn:  strPtr("2026-09-10"),
		MaxPrice: floatPtr(200),
	}

	// A turn that only mentions an amenity must not disturb anything.
	merged := tracker.Track(prior, &model.QueryAnalysis{Query: "only places with a pool"})

	require.NotNil(t, merged)
	assert.Equal(t, "Austin", merged.Location)
	assert.Equal(t, 2, merged.Adults)
	assert.Equal(t, 1, merged.Children)
	assert.Equal(t, 4, *merged.Nights)
	assert.Equal(t, "2026-09-10", *merged.CheckIn)
	assert.Equal(t, 200.0, *merged.MaxPrice)
}

func TestMergeOverwritesOnExplicitSignal(t *testing.T) {
	tracker := NewContextTracker()
	prior := &model.SearchContext{Location: "Austin", Adults: 2, MaxPrice: floatPtr(200)}

	merged := tracker.Track(prior, &model.QueryAnalysis{
		Query:    "actually let's do Denver instead, 4 people",
		Entities: model.Entities{Places: []string{"Denver"}},
	})

	assert.Equal(t, "Denver", merged.Location)
	assert.Equal(t, 4, merged.Adults)
	assert.Equal(t, 200.0, *merged.MaxPrice, "budget was not mentioned, so it carries over")
}

func TestMergeDoesNotMutatePrior(t *testing.T) {
	tracker := NewContextTracker()
	prior := &model.SearchContext{Location: "Austin", MaxPrice: floatPtr(200)}

	_ = tracker.Track(prior, &model.QueryAnalysis{
		Query:    "Denver instead, under $120",
		Entities: model.Entities{Places: []string{"Denver"}, Money: []string{"$120"}},
	})

	assert.Equal(t, "Austin", prior.Location)
	assert.Equal(t, 200.0, *prior.MaxPrice)
}

func TestCheaperLowersExistingCeiling(t *testing.T) {
	tracker := NewContextTracker()
	prior := &model.SearchContext{Location: "Austin", MaxPrice: floatPtr(200)}

	merged := tracker.Track(prior, &model.QueryAnalysis{Query: "can you make it cheaper"})

	require.NotNil(t, merged.MaxPrice)
	assert.InDelta(t, 150.0, *merged.MaxPrice, 0.001)
}

func TestCheaperWithoutCeilingLeavesItToFiltering(t *testing.T) {
	tracker := NewContextTracker()
	prior := &model.SearchContext{Location: "Austin"}

	merged := tracker.Track(prior, &model.QueryAnalysis{Query: "something cheaper please"})

	assert.Nil(t, merged.MaxPrice, "the filter engine derives the ceiling from the result distribution")
}

func TestExplicitAmountBeatsCheaper(t *testing.T) {
	tracker := NewContextTracker()
	prior := &model.SearchContext{Location: "Austin", MaxPrice: floatPtr(400)}

	merged := tracker.Track(prior, &model.QueryAnalysis{
		Query:    "cheaper, say under $90",
		Entities: model.Entities{Money: []string{"$90"}},
	})

	require.NotNil(t, merged.MaxPrice)
	assert.Equal(t, 90.0, *merged.MaxPrice)
}

func TestBudgetRange(t *testing.T) {
	tracker := NewContextTracker()

	ctx := tracker.Track(nil, &model.QueryAnalysis{
		Query:    "Austin between $100 and $250 a night",
		Entities: model.Entities{Places: []string{"Austin"}, Money: []string{"$100", "$250"}},
	})

	require.NotNil(t, ctx)
	require.NotNil(t, ctx.MinPrice)
	require.NotNil(t, ctx.MaxPrice)
	assert.Equal(t, 100.0, *ctx.MinPrice)
	assert.Equal(t, 250.0, *ctx.MaxPrice)
}

func TestBudgetFloor(t *testing.T) {
	tracker := NewContextTracker()
	prior := &model.SearchContext{Location: "Austin"}

	merged := tracker.Track(prior, &model.QueryAnalysis{
		Query:    "at least $150 a night, nothing shabby",
		Entities: model.Entities{Money: []string{"$150"}},
	})

	require.NotNil(t, merged.MinPrice)
	assert.Equal(t, 150.0, *merged.MinPrice)
	assert.Nil(t, merged.MaxPrice)
}

func TestDatesFillCheckInAndOut(t *testing.T) {
	tracker := NewContextTracker()

	ctx := tracker.Track(nil, &model.QueryAnalysis{
		Query: "Austin 2026-09-10 to 2026-09-14",
		Entities: model.Entities{
			Places: []string{"Austin"},
			Dates:  []string{"2026-09-10", "2026-09-14"},
		},
	})

	require.NotNil(t, ctx)
	require.NotNil(t, ctx.CheckIn)
	require.NotNil(t, ctx.CheckOut)
	assert.Equal(t, "2026-09-10", *ctx.CheckIn)
	assert.Equal(t, "2026-09-14", *ctx.CheckOut)
}
