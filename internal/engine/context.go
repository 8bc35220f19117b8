package engine

import (
	"regexp"

	"stayfinder/internal/model"
	"stayfinder/internal/nlp"
)

// ContextTracker is the Uninitialized -> Active state machine for the
// per-conversation SearchContext. A conversation is Uninitialized while no
// turn has produced a location; the first located turn builds the full
// context, and every later turn merges deltas into it. The transition back
// to Uninitialized only happens through an explicit reset by the caller.
type ContextTracker struct{}

// NewContextTracker creates a new search context tracker.
func NewContextTracker() *ContextTracker {
	return &ContextTracker{}
}

var cheaperPattern = regexp.MustCompile(`(?i)\bcheaper\b|\bless expensive\b|\blower price\b|\bcheapest\b`)

// Track advances the state machine by one turn. A nil prior means the
// conversation is Uninitialized: the turn activates it only if it carries a
// location. An Active conversation is merged, never replaced.
func (t *ContextTracker) Track(prior *model.SearchContext, analysis *model.QueryAnalysis) *model.SearchContext {
	if prior == nil {
		return t.BuildContext(analysis)
	}
	return t.MergeContext(prior, analysis)
}

// BuildContext constructs a fresh SearchContext from the first turn of a
// conversation. Returns nil when the turn yields no location.
func (t *ContextTracker) BuildContext(analysis *model.QueryAnalysis) *model.SearchContext {
	if len(analysis.Entities.Places) == 0 {
		return nil
	}

	ctx := &model.SearchContext{
		Location: analysis.Entities.Places[0],
	}

	if adults, children, ok := nlp.ParsePartySize(analysis.Query); ok {
		ctx.Adults = adults
		ctx.Children = children
	}
	ctx.Nights = nlp.ParseNights(analysis.Query)
	applyDates(ctx, analysis)
	applyBudget(ctx, analysis)
	return ctx
}

// MergeContext folds one turn's deltas into an existing context. Each
// field is only overwritten by an explicit new signal; absence of a signal
// preserves the prior value.
func (t *ContextTracker) MergeContext(prior *model.SearchContext, analysis *model.QueryAnalysis) *model.SearchContext {
	merged := *prior

	if len(analysis.Entities.Places) > 0 {
		merged.Location = analysis.Entities.Places[0]
	}
	if adults, children, ok := nlp.ParsePartySize(analysis.Query); ok {
		merged.Adults = adults
		merged.Children = children
	}
	if nights := nlp.ParseNights(analysis.Query); nights != nil {
		merged.Nights = nights
	}
	applyDates(&merged, analysis)
	applyBudget(&merged, analysis)

	// A relative "cheaper" signal tightens an existing ceiling. When no
	// ceiling exists yet the filtering engine derives one from the actual
	// result distribution instead.
	if cheaperPattern.MatchString(analysis.Query) && len(analysis.Entities.Money) == 0 && merged.MaxPrice != nil {
		lowered := *merged.MaxPrice * 0.75
		merged.MaxPrice = &lowered
	}

	return &merged
}

func applyDates(ctx *model.SearchContext, analysis *model.QueryAnalysis) {
	dates := analysis.Entities.Dates
	if len(dates) > 0 {
		checkIn := dates[0]
		ctx.CheckIn = &checkIn
	}
	if len(dates) > 1 {
		checkOut := dates[1]
		ctx.CheckOut = &checkOut
	}
}

var (
	ceilingPattern = regexp.MustCompile(`(?i)\bunder\b|\bbelow\b|less than|\bmax\w*\b|at most|\bup to\b`)
	floorPattern   = regexp.MustCompile(`(?i)at least|more than|\bover\b|\bmin\w*\b|\babove\b`)
)

func applyBudget(ctx *model.SearchContext, analysis *model.QueryAnalysis) {
	amounts := nlp.ParseMoneyAmounts(analysis.Query)
	if len(amounts) == 0 {
		return
	}

	switch {
	case floorPattern.MatchString(analysis.Query) && !ceilingPattern.MatchString(analysis.Query):
		ctx.MinPrice = &amounts[0]
	case len(amounts) >= 2:
		// "between $100 and $250" style range.
		low, high := amounts[0], amounts[1]
		if low > high {
			low, high = high, low
		}
		ctx.MinPrice = &low
		ctx.MaxPrice = &high
	default:
		ctx.MaxPrice = &amounts[0]
	}
}
