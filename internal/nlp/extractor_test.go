package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	extractor := NewExtractor()

	t.Run("typical search utterance", func(t *testing.T) {
		entities, keywords := extractor.Extract("Looking for a place in Austin for 2 adults under $150 a night")

		assert.Contains(t, entities.Places, "Austin")
		require.Len(t, entities.Money, 1)
		assert.Equal(t, "$150", entities.Money[0])
		assert.Contains(t, entities.People, "2 adults")
		assert.NotEmpty(t, keywords)
	})

	t.Run("bare city mention", func(t *testing.T) {
		entities, _ := extractor.Extract("miami, 4 people, pool")
		assert.Contains(t, entities.Places, "Miami")
	})

	t.Run("dates and brands", func(t *testing.T) {
		entities, _ := extractor.Extract("checking Airbnb for next weekend, March 14-16")

		assert.NotEmpty(t, entities.Dates)
		assert.Contains(t, entities.Organizations, "airbnb")
	})

	t.Run("empty input yields empty buckets", func(t *testing.T) {
		entities, keywords := extractor.Extract("")

		assert.Empty(t, entities.Places)
		assert.Empty(t, entities.Dates)
		assert.Empty(t, entities.Money)
		assert.Empty(t, keywords)
	})

	t.Run("keywords exclude stopwords", func(t *testing.T) {
		_, keywords := extractor.Extract("I want a quiet cabin with a fireplace")

		assert.NotContains(t, keywords, "want")
		assert.NotContains(t, keywords, "the")
		assert.Contains(t, keywords, "cabin")
	})
}
