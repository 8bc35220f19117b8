package model

// Intent tags produced by the query analyzer.
const (
	IntentSearch   = "search"
	IntentCompare  = "compare"
	IntentFilter   = "filter"
	IntentQuestion = "question"
	IntentBook     = "book"
)

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Entities holds the entity buckets extracted from one utterance. Absent
// entities are empty slices, never an error.
type Entities struct {
	Places        []string `json:"places"`
	Dates         []string `json:"dates"`
	People        []string `json:"people"`
	Money         []string `json:"money"`
	Organizations []string `json:"organizations"`
}

// Sentiment is a lexicon-based sentiment estimate for an utterance.
type Sentiment struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

// Completeness records which of the four search dimensions the conversation
// has pinned down so far. Score is the fraction of true flags.
type Completeness struct {
	HasLocation  bool    `json:"hasLocation"`
	HasDates     bool    `json:"hasDates"`
	HasGroupSize bool    `json:"hasGroupSize"`
	HasBudget    bool    `json:"hasBudget"`
	Score        float64 `json:"score"`
}

// QueryAnalysis is the structured understanding of a single utterance.
// It is recomputed every turn and never mutated after construction.
type QueryAnalysis struct {
	Query        string       `json:"query"`
	Entities     Entities     `json:"entities"`
	Sentiment    Sentiment    `json:"sentiment"`
	Keywords     []string     `json:"keywords"`
	Intents      []string     `json:"intents"`
	Completeness Completeness `json:"completeness"`
	Suggestions  []string     `json:"suggestions"`
}

// HasIntent reports whether the analysis carries the given intent tag.
func (a *QueryAnalysis) HasIntent(intent string) bool {
	for _, tag := range a.Intents {
		if tag == intent {
			return true
		}
	}
	return false
}

// Trip purpose values.
const (
	PurposeBusiness   = "business"
	PurposeRomantic   = "romantic"
	PurposeFamily     = "family_vacation"
	PurposeAdventure  = "adventure"
	PurposeRelaxation = "relaxation"
	PurposeCelebration = "celebration"
)

// Trip urgency values.
const (
	UrgencyFlexible = "flexible"
	UrgencySpecific = "specific"
	UrgencyUrgent   = "urgent"
)

// Group type values.
const (
	GroupSolo     = "solo"
	GroupCouple   = "couple"
	GroupFamily   = "family"
	GroupFriends  = "friends"
	GroupBusiness = "business"
	GroupUnknown  = "unknown"
)

// TripContext is inferred purpose/urgency/group-type metadata, distinct
// from literal search criteria.
type TripContext struct {
	Purpose    *string  `json:"purpose"`
	Urgency    string   `json:"urgency"`
	GroupType  string   `json:"groupType"`
	Priorities []string `json:"priorities"`
}

// SearchContext is the only cross-turn state. It is owned by the caller,
// persisted in an external store, and merged (never replaced) on every
// turn after the first.
type SearchContext struct {
	Location string   `json:"location"`
	Adults   int      `json:"adults"`
	Children int      `json:"children"`
	Nights   *int     `json:"nights,omitempty"`
	CheckIn  *string  `json:"checkIn,omitempty"`
	CheckOut *string  `json:"checkOut,omitempty"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
}

// HasLocation reports whether the context carries a usable location.
func (c *SearchContext) HasLocation() bool {
	return c != nil && c.Location != "" && c.Location != "Unknown"
}

// PartySize returns adults plus children.
func (c *SearchContext) PartySize() int {
	if c == nil {
		return 0
	}
	return c.Adults + c.Children
}

// Refinement suggestion types.
const (
	RefinementPrice        = "price"
	RefinementRating       = "rating"
	RefinementAmenity      = "amenity"
	RefinementPropertyType = "property_type"
	RefinementHostType     = "host_type"
)

// Refinement priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// RefinementSuggestion is a proposed next narrowing step derived from
// statistics over the current filtered set. Recomputed every turn, never
// persisted.
type RefinementSuggestion struct {
	Type     string `json:"type"`
	Label    string `json:"label"`
	Query    string `json:"query"`
	Count    int    `json:"count"`
	Priority string `json:"priority"`
}
