package nlp

import (
	"strings"

	"stayfinder/internal/model"

	"github.com/jdkato/prose/v2"
)

// Extractor pulls places, dates, money amounts, people counts and key
// adjectives/nouns out of an utterance. It is stateless and a pure function
// of the input text: unrecognized text yields empty buckets, never an error.
type Extractor struct{}

// NewExtractor creates a new lexical entity extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the entity buckets and keyword list for an utterance.
func (e *Extractor) Extract(text string) (model.Entities, []string) {
	entities := model.Entities{
		Places:        []string{},
		Dates:         []string{},
		People:        []string{},
		Money:         []string{},
		Organizations: []string{},
	}

	entities.Dates = matchAll(datePatterns, text)
	entities.Money = matchAll(moneyPatterns, text)
	entities.People = matchAll(peoplePatterns, text)
	entities.Organizations = knownOrganizations(text)

	keywords := []string{}
	doc, err := prose.NewDocument(text)
	if err == nil {
		for _, ent := range doc.Entities() {
			if ent.Label == "GPE" {
				entities.Places = appendUnique(entities.Places, ent.Text)
			}
		}
		keywords = keywordTokens(doc)
	} else {
		// Tagger failure degrades to plain tokenization, not an error.
		keywords = fallbackKeywords(text)
	}

	// Preposition+noun fallback catches places the tagger missed
	// ("in austin", "near the strip").
	for _, place := range prepositionPlaces(text) {
		entities.Places = appendUnique(entities.Places, place)
	}
	for _, place := range knownPlaces(text) {
		entities.Places = appendUnique(entities.Places, place)
	}

	return entities, keywords
}

// keywordTokens keeps adjectives and nouns, lowercased and deduplicated.
func keywordTokens(doc *prose.Document) []string {
	seen := map[string]bool{}
	keywords := []string{}
	for _, tok := range doc.Tokens() {
		if !strings.HasPrefix(tok.Tag, "JJ") && !strings.HasPrefix(tok.Tag, "NN") {
			continue
		}
		word := strings.ToLower(strings.Trim(tok.Text, ".,!?\"'"))
		if len(word) < 2 || stopwords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}
	return keywords
}

func fallbackKeywords(text string) []string {
	seen := map[string]bool{}
	keywords := []string{}
	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(field, ".,!?\"'$")
		if len(word) < 3 || stopwords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}
	return keywords
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, value) {
			return list
		}
	}
	return append(list, value)
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"i": true, "me": true, "my": true, "we": true, "our": true, "us": true,
	"you": true, "it": true, "its": true, "is": true, "am": true, "are": true,
	"was": true, "be": true, "been": true, "do": true, "does": true,
	"have": true, "has": true, "had": true, "will": true, "would": true,
	"can": true, "could": true, "should": true, "to": true, "of": true,
	"in": true, "on": true, "at": true, "for": true, "with": true,
	"near": true, "from": true, "by": true, "about": true, "into": true,
	"please": true, "want": true, "need": true, "looking": true, "show": true,
	"find": true, "get": true, "like": true, "something": true, "place": true,
	"places": true, "stay": true, "rental": true, "rentals": true,
	"listing": true, "listings": true, "thing": true, "things": true,
	"night": true, "nights": true, "some": true, "more": true, "that": true,
	"this": true, "there": true, "make": true, "actually": true,
}
