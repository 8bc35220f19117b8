package engine

import (
	"regexp"

	"stayfinder/internal/model"
	"stayfinder/internal/nlp"
)

// TripClassifier assigns trip purpose, urgency and group type from an
// utterance. It is rule-based and independent of the query analyzer.
type TripClassifier struct{}

// NewTripClassifier creates a new trip context classifier.
func NewTripClassifier() *TripClassifier {
	return &TripClassifier{}
}

// purposeRule pairs a predicate pattern with a purpose and the priorities
// that purpose implies. First match wins.
type purposeRule struct {
	pattern    *regexp.Regexp
	purpose    string
	priorities []string
}

var purposeRules = []purposeRule{
	{regexp.MustCompile(`(?i)\bbusiness\b|\bwork trip\b|\bconference\b|\bmeeting\b|\bclient\b`), model.PurposeBusiness, []string{"wifi", "workspace", "location"}},
	{regexp.MustCompile(`(?i)\bromantic\b|\bhoneymoon\b|\banniversary\b|\bgetaway for two\b`), model.PurposeRomantic, []string{"privacy", "view", "hot tub"}},
	{regexp.MustCompile(`(?i)\bbirthday\b|\bbachelor(?:ette)?\b|\bcelebrat\w+\b|\bwedding\b`), model.PurposeCelebration, []string{"space", "location", "pool"}},
	{regexp.MustCompile(`(?i)\bfamily\b|\bkids?\b|\bchildren\b|\btoddlers?\b`), model.PurposeFamily, []string{"space", "kitchen", "safety"}},
	{regexp.MustCompile(`(?i)\bhik\w+\b|\bski\w*\b|\bsurf\w*\b|\bclimb\w+\b|\badventure\b|\bcamping\b`), model.PurposeAdventure, []string{"location", "parking", "gear storage"}},
	{regexp.MustCompile(`(?i)\brelax\w*\b|\bunwind\b|\bquiet\b|\bpeaceful\b|\bspa\b|\bretreat\b`), model.PurposeRelaxation, []string{"quiet", "hot tub", "view"}},
}

type urgencyRule struct {
	pattern *regexp.Regexp
	urgency string
}

var urgencyRules = []urgencyRule{
	{regexp.MustCompile(`(?i)\btonight\b|\bright now\b|\basap\b|\blast minute\b|\btomorrow\b|\burgent\w*\b`), model.UrgencyUrgent},
	{regexp.MustCompile(`(?i)\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}/\d{1,2}\b|\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\b|\bnext week(?:end)?\b|\bthis weekend\b`), model.UrgencySpecific},
}

type groupRule struct {
	pattern   *regexp.Regexp
	groupType string
}

var groupRules = []groupRule{
	{regexp.MustCompile(`(?i)\bbusiness\b|\bcolleagues?\b|\bcoworkers?\b|\bteam\b`), model.GroupBusiness},
	{regexp.MustCompile(`(?i)\bfamily\b|\bkids?\b|\bchildren\b|\btoddlers?\b|\binfants?\b`), model.GroupFamily},
	{regexp.MustCompile(`(?i)\bfriends\b|\bgroup of\b|\bbachelor(?:ette)?\b|\bthe gang\b|\bguys\b`), model.GroupFriends},
	{regexp.MustCompile(`(?i)\bcouple\b|\bromantic\b|\bhoneymoon\b|\banniversary\b|\bmy (?:wife|husband|partner|girlfriend|boyfriend)\b`), model.GroupCouple},
	{regexp.MustCompile(`(?i)\bsolo\b|\bby myself\b|\bjust me\b|\bmyself\b`), model.GroupSolo},
}

// Classify infers the trip context for one utterance. Unknown signals
// yield a nil purpose, flexible urgency and an unknown group type.
func (t *TripClassifier) Classify(utterance string) *model.TripContext {
	trip := &model.TripContext{
		Urgency:    model.UrgencyFlexible,
		GroupType:  model.GroupUnknown,
		Priorities: []string{},
	}

	for _, rule := range purposeRules {
		if rule.pattern.MatchString(utterance) {
			purpose := rule.purpose
			trip.Purpose = &purpose
			trip.Priorities = append(trip.Priorities, rule.priorities...)
			break
		}
	}

	for _, rule := range urgencyRules {
		if rule.pattern.MatchString(utterance) {
			trip.Urgency = rule.urgency
			break
		}
	}

	for _, rule := range groupRules {
		if rule.pattern.MatchString(utterance) {
			trip.GroupType = rule.groupType
			break
		}
	}

	// Party-size arithmetic backstops the keyword rules.
	if trip.GroupType == model.GroupUnknown {
		if adults, children, ok := nlp.ParsePartySize(utterance); ok {
			switch {
			case children > 0:
				trip.GroupType = model.GroupFamily
			case adults == 1:
				trip.GroupType = model.GroupSolo
			case adults == 2:
				trip.GroupType = model.GroupCouple
			case adults > 2:
				trip.GroupType = model.GroupFriends
			}
		}
	}

	return trip
}
