package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"stayfinder/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleBasedComposeCountsResults(t *testing.T) {
	responder := NewRuleBasedResponder(0.75)

	tests := []struct {
		name    string
		results int
		want    string
	}{
		{"no results", 0, "couldn't find a clear match"},
		{"one result", 1, "1 place"},
		{"many results", 5, "5 places"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &ResponseInput{
				Analysis: &model.QueryAnalysis{Completeness: model.Completeness{Score: 1.0}},
				Results:  fixtureListings()[:tt.results],
			}
			msg, err := responder.Compose(context.Background(), in)
			require.NoError(t, err)
			assert.Contains(t, msg.Text, tt.want)
		})
	}
}

func TestRuleBasedComposeMentionsRelaxation(t *testing.T) {
	responder := NewRuleBasedResponder(0.75)

	in := &ResponseInput{
		Analysis: &model.QueryAnalysis{Completeness: model.Completeness{Score: 1.0}},
		Results:  fixtureListings(),
		Relaxed:  []string{"amenity hot tub"},
	}
	msg, err := responder.Compose(context.Background(), in)

	require.NoError(t, err)
	assert.Contains(t, msg.Text, "amenity hot tub")
	assert.Contains(t, msg.Text, "ranked the closest ones first")
}

func TestRuleBasedComposeAsksOneClarifyingQuestion(t *testing.T) {
	responder := NewRuleBasedResponder(0.75)

	in := &ResponseInput{
		Analysis: &model.QueryAnalysis{
			Completeness: model.Completeness{Score: 0.25},
			Suggestions:  []string{"When are you planning to travel?", "How many adults and children are in your group?"},
		},
		Results: fixtureListings()[:3],
	}
	msg, err := responder.Compose(context.Background(), in)

	require.NoError(t, err)
	assert.Contains(t, msg.Text, "When are you planning to travel?")
	assert.NotContains(t, msg.Text, "How many adults", "only one question per turn")
}

func TestAcknowledgmentMatchesTone(t *testing.T) {
	romantic := model.PurposeRomantic

	tests := []struct {
		name string
		in   *ResponseInput
		want string
	}{
		{
			"negative sentiment apologizes",
			&ResponseInput{Analysis: &model.QueryAnalysis{Sentiment: model.Sentiment{Label: model.SentimentNegative}}},
			"Sorry about that",
		},
		{
			"romantic purpose",
			&ResponseInput{
				Analysis: &model.QueryAnalysis{Sentiment: model.Sentiment{Label: model.SentimentNeutral}},
				Trip:     &model.TripContext{Purpose: &romantic},
			},
			"romantic",
		},
		{
			"solo group",
			&ResponseInput{
				Analysis: &model.QueryAnalysis{Sentiment: model.Sentiment{Label: model.SentimentNeutral}},
				Trip:     &model.TripContext{GroupType: model.GroupSolo},
			},
			"Solo travel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, acknowledgment(tt.in), tt.want)
		})
	}
}

// fakeEnhancer scripts the enhancement outcome for decorator tests.
type fakeEnhancer struct {
	enabled bool
	msg     *ResponseMessage
	err     error
	calls   int
}

func (f *fakeEnhancer) IsEnabled() bool { return f.enabled }

func (f *fakeEnhancer) EnhanceResponse(_ context.Context, _ *ResponseInput) (*ResponseMessage, error) {
	f.calls++
	return f.msg, f.err
}

// complexInput is an input that qualifies for enhancement.
func complexInput() *ResponseInput {
	return &ResponseInput{
		Analysis: &model.QueryAnalysis{
			Query:        "somewhere nice",
			Sentiment:    model.Sentiment{Label: model.SentimentNegative},
			Completeness: model.Completeness{Score: 1.0},
		},
		Results: fixtureListings()[:2],
	}
}

func TestEnhancedResponderUsesEnhancement(t *testing.T) {
	enhancer := &fakeEnhancer{enabled: true, msg: &ResponseMessage{Text: "upgraded prose", Insights: []string{"a note"}}}
	responder := NewEnhancedResponder(NewRuleBasedResponder(0.75), enhancer, time.Second, nil)

	msg, err := responder.Compose(context.Background(), complexInput())

	require.NoError(t, err)
	assert.Equal(t, "upgraded prose", msg.Text)
	assert.Equal(t, 1, enhancer.calls)
}

func TestEnhancedResponderFallsBackOnError(t *testing.T) {
	enhancer := &fakeEnhancer{enabled: true, err: errors.New("model unavailable")}
	responder := NewEnhancedResponder(NewRuleBasedResponder(0.75), enhancer, time.Second, nil)

	msg, err := responder.Compose(context.Background(), complexInput())

	require.NoError(t, err, "enhancement failure must never fail the turn")
	assert.Contains(t, msg.Text, "2 places")
}

func TestEnhancedResponderFallsBackOnEmptyMessage(t *testing.T) {
	enhancer := &fakeEnhancer{enabled: true, msg: &ResponseMessage{Text: ""}}
	responder := NewEnhancedResponder(NewRuleBasedResponder(0.75), enhancer, time.Second, nil)

	msg, err := responder.Compose(context.Background(), complexInput())

	require.NoError(t, err)
	assert.Contains(t, msg.Text, "2 places")
}

func TestEnhancedResponderSkipsSimpleTurns(t *testing.T) {
	enhancer := &fakeEnhancer{enabled: true, msg: &ResponseMessage{Text: "should not appear"}}
	responder := NewEnhancedResponder(NewRuleBasedResponder(0.75), enhancer, time.Second, nil)

	simple := &ResponseInput{
		Analysis: &model.QueryAnalysis{
			Query:        "a place in Austin",
			Intents:      []string{model.IntentSearch},
			Sentiment:    model.Sentiment{Label: model.SentimentNeutral},
			Completeness: model.Completeness{Score: 1.0},
		},
		Results: fixtureListings()[:2],
	}
	msg, err := responder.Compose(context.Background(), simple)

	require.NoError(t, err)
	assert.NotEqual(t, "should not appear", msg.Text)
	assert.Zero(t, enhancer.calls)
}

func TestEnhancedResponderSkipsWhenDisabled(t *testing.T) {
	enhancer := &fakeEnhancer{enabled: false, msg: &ResponseMessage{Text: "should not appear"}}
	responder := NewEnhancedResponder(NewRuleBasedResponder(0.75), enhancer, time.Second, nil)

	_, err := responder.Compose(context.Background(), complexInput())

	require.NoError(t, err)
	assert.Zero(t, enhancer.calls)
}

func TestIsComplex(t *testing.T) {
	assert.False(t, isComplex(&ResponseInput{}))
	assert.True(t, isComplex(&ResponseInput{Analysis: &model.QueryAnalysis{
		Intents: []string{model.IntentSearch, model.IntentFilter, model.IntentCompare},
	}}))
	assert.True(t, isComplex(&ResponseInput{Analysis: &model.QueryAnalysis{
		Sentiment: model.Sentiment{Label: model.SentimentNegative},
	}}))
	assert.False(t, isComplex(&ResponseInput{Analysis: &model.QueryAnalysis{
		Query:     "a place in Austin",
		Sentiment: model.Sentiment{Label: model.SentimentNeutral},
	}}))
}
