package engine

import (
	"regexp"
	"strings"

	"stayfinder/internal/model"
	"stayfinder/internal/nlp"
)

// Analyzer turns one utterance into a structured QueryAnalysis: entity
// buckets, sentiment, intents, a completeness assessment and clarifying
// suggestions. It never fails on arbitrary text.
type Analyzer struct {
	extractor *nlp.Extractor
}

// NewAnalyzer creates a new query analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{extractor: nlp.NewExtractor()}
}

// intentRule pairs a predicate pattern with the intent it signals. Rules
// are evaluated in order with an accumulate-all-matches discipline.
type intentRule struct {
	pattern *regexp.Regexp
	intent  string
}

var intentRules = []intentRule{
	{regexp.MustCompile(`(?i)\bcompare\b|\bversus\b|\bvs\.?\b|difference between|which (?:one )?is better`), model.IntentCompare},
	{regexp.MustCompile(`(?i)\bbook\b|\breserve\b|\bbooking\b|i'?ll take`), model.IntentBook},
	{regexp.MustCompile(`(?i)^(?:what|which|where|when|how|why|is there|are there|do |does |can )|\?`), model.IntentQuestion},
	{regexp.MustCompile(`(?i)\bonly\b|\bcheaper\b|\bcheapest\b|\bunder\b|\bbelow\b|less than|more than|\bover\b|at least|\bsort\b|\binstead\b|\bwithout\b|\bsuperhost\b|higher rated|\bfilter\b|\bjust\b`), model.IntentFilter},
	{regexp.MustCompile(`(?i)\bfind\b|\bshow\b|looking for|\bneed\b|\bwant\b|\bsearch\b|\bstay\b|\brental\b|\bplace\b`), model.IntentSearch},
}

// Sentiment lexicons. Scoring is (pos-neg)/(pos+neg), clamped to [-1,1].
var positiveWords = []string{
	"love", "loved", "great", "amazing", "perfect", "awesome", "beautiful",
	"wonderful", "excellent", "excited", "nice", "good", "thanks", "thank",
	"fantastic", "ideal",
}

var negativeWords = []string{
	"hate", "bad", "terrible", "awful", "disappointed", "disappointing",
	"horrible", "worse", "worst", "ugly", "dirty", "noisy", "annoying",
	"frustrated", "wrong", "overpriced",
}

var budgetSignalPattern = regexp.MustCompile(`(?i)\bcheap(?:er|est)?\b|\bbudget\b|\baffordable\b|\bunder\b|\bbelow\b|\bexpensive\b|\bluxury\b|\bsplurge\b|\$\d`)

// Analyze produces a QueryAnalysis for one utterance, blending entity
// extraction with the prior search context and light regex fallbacks.
func (a *Analyzer) Analyze(utterance string, prior *model.SearchContext) *model.QueryAnalysis {
	text := strings.TrimSpace(utterance)

	entities, keywords := a.extractor.Extract(text)
	sentiment := scoreSentiment(text)
	intents := classifyIntents(text)
	completeness := a.assessCompleteness(text, entities, prior)
	suggestions := clarifyingSuggestions(completeness, intents)

	return &model.QueryAnalysis{
		Query:        text,
		Entities:     entities,
		Sentiment:    sentiment,
		Keywords:     keywords,
		Intents:      intents,
		Completeness: completeness,
		Suggestions:  suggestions,
	}
}

func classifyIntents(text string) []string {
	intents := []string{}
	for _, rule := range intentRules {
		if rule.pattern.MatchString(text) {
			intents = append(intents, rule.intent)
		}
	}
	if len(intents) == 0 {
		intents = append(intents, model.IntentSearch)
	}
	return intents
}

func scoreSentiment(text string) model.Sentiment {
	lower := strings.ToLower(text)
	pos, neg := 0, 0
	for _, word := range positiveWords {
		pos += strings.Count(lower, word)
	}
	for _, word := range negativeWords {
		neg += strings.Count(lower, word)
	}
	// "too expensive", "not good" style negations flip the signal.
	if strings.Contains(lower, "too expensive") || strings.Contains(lower, "not good") ||
		strings.Contains(lower, "don't like") || strings.Contains(lower, "do not like") {
		neg++
	}

	if pos+neg == 0 {
		return model.Sentiment{Score: 0, Label: model.SentimentNeutral}
	}
	score := float64(pos-neg) / float64(pos+neg)
	label := model.SentimentNeutral
	if score > 0.2 {
		label = model.SentimentPositive
	} else if score < -0.2 {
		label = model.SentimentNegative
	}
	return model.Sentiment{Score: score, Label: label}
}

// assessCompleteness applies the disjunctive rules for each of the four
// search dimensions: entity extraction OR prior context OR regex fallback.
func (a *Analyzer) assessCompleteness(text string, entities model.Entities, prior *model.SearchContext) model.Completeness {
	c := model.Completeness{}

	c.HasLocation = len(entities.Places) > 0 || prior.HasLocation()

	c.HasDates = len(entities.Dates) > 0 ||
		(prior != nil && (prior.CheckIn != nil || prior.Nights != nil)) ||
		nlp.ParseNights(text) != nil

	if _, _, ok := nlp.ParsePartySize(text); ok || len(entities.People) > 0 {
		c.HasGroupSize = true
	} else if prior != nil && prior.Adults > 0 {
		c.HasGroupSize = true
	}

	c.HasBudget = len(entities.Money) > 0 ||
		(prior != nil && (prior.MinPrice != nil || prior.MaxPrice != nil)) ||
		budgetSignalPattern.MatchString(text)

	have := 0
	for _, flag := range []bool{c.HasLocation, c.HasDates, c.HasGroupSize, c.HasBudget} {
		if flag {
			have++
		}
	}
	c.Score = float64(have) / 4.0
	return c
}

// clarifyingSuggestions emits one question per missing dimension in fixed
// order (location, dates, group size, budget), capped to three, then
// appends intent-specific hints.
func clarifyingSuggestions(c model.Completeness, intents []string) []string {
	suggestions := []string{}
	if !c.HasLocation {
		suggestions = append(suggestions, "Which city or neighborhood would you like to stay in?")
	}
	if !c.HasDates {
		suggestions = append(suggestions, "When are you planning to travel?")
	}
	if !c.HasGroupSize {
		suggestions = append(suggestions, "How many adults and children are in your group?")
	}
	if !c.HasBudget {
		suggestions = append(suggestions, "Do you have a nightly budget in mind?")
	}
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}

	for _, intent := range intents {
		switch intent {
		case model.IntentCompare:
			suggestions = append(suggestions, "Which attributes would you like me to compare, like price or rating?")
		case model.IntentBook:
			suggestions = append(suggestions, "Once you pick a listing I can take you to its booking page.")
		}
	}
	return suggestions
}
