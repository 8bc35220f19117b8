package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stayfinder/internal/model"

	"go.uber.org/zap"
)

// ResponseInput carries everything one turn produced for the synthesizer.
type ResponseInput struct {
	Analysis    *model.QueryAnalysis
	Trip        *model.TripContext
	Context     *model.SearchContext
	Results     []model.Listing
	Refinements []model.RefinementSuggestion
	Relaxed     []string // criteria the filter engine degraded to ordering
}

// ResponseMessage is the user-facing prose for one turn.
type ResponseMessage struct {
	Text     string
	Insights []string
}

// ResponseStrategy composes the outward message for a turn. The rule-based
// strategy is mandatory and infallible; the LLM-enhanced strategy is an
// optional decorator around it.
type ResponseStrategy interface {
	Compose(ctx context.Context, in *ResponseInput) (*ResponseMessage, error)
}

// RuleBasedResponder builds the message from fixed acknowledgment and
// count templates. It never fails.
type RuleBasedResponder struct {
	goodCompleteness float64
}

// NewRuleBasedResponder creates the mandatory rule-based strategy.
// goodCompleteness is the score above which no clarifying question is
// appended.
func NewRuleBasedResponder(goodCompleteness float64) *RuleBasedResponder {
	if goodCompleteness <= 0 {
		goodCompleteness = 0.75
	}
	return &RuleBasedResponder{goodCompleteness: goodCompleteness}
}

// Compose assembles acknowledgment, result count, relaxation notes and at
// most one clarifying question.
func (r *RuleBasedResponder) Compose(_ context.Context, in *ResponseInput) (*ResponseMessage, error) {
	parts := []string{acknowledgment(in)}

	switch {
	case len(in.Results) == 0:
		parts = append(parts, "I couldn't find a clear match for that, but a small tweak usually helps.")
	case len(in.Results) == 1:
		parts = append(parts, "I found 1 place that fits.")
	default:
		parts = append(parts, fmt.Sprintf("I found %d places that fit.", len(in.Results)))
	}

	if len(in.Relaxed) > 0 {
		parts = append(parts, fmt.Sprintf("Not many matched %s, so I ranked the closest ones first.", strings.Join(in.Relaxed, " and ")))
	}

	if in.Analysis != nil && in.Analysis.Completeness.Score < r.goodCompleteness && len(in.Analysis.Suggestions) > 0 {
		parts = append(parts, in.Analysis.Suggestions[0])
	}

	return &ResponseMessage{Text: strings.Join(parts, " "), Insights: []string{}}, nil
}

func acknowledgment(in *ResponseInput) string {
	sentiment := model.SentimentNeutral
	if in.Analysis != nil {
		sentiment = in.Analysis.Sentiment.Label
	}

	if sentiment == model.SentimentNegative {
		return "Sorry about that, let's adjust."
	}

	if in.Trip != nil {
		if in.Trip.Purpose != nil {
			switch *in.Trip.Purpose {
			case model.PurposeRomantic:
				return "A romantic escape, great choice."
			case model.PurposeBusiness:
				return "Got it, keeping it practical for a work trip."
			case model.PurposeFamily:
				return "Family trip, on it."
			case model.PurposeAdventure:
				return "Sounds like an adventure."
			case model.PurposeRelaxation:
				return "Time to unwind, I hear you."
			case model.PurposeCelebration:
				return "Something worth celebrating!"
			}
		}
		switch in.Trip.GroupType {
		case model.GroupCouple:
			return "A getaway for two, nice."
		case model.GroupFriends:
			return "A trip with the crew, fun."
		case model.GroupSolo:
			return "Solo travel, love it."
		}
	}

	if sentiment == model.SentimentPositive {
		return "Glad to help!"
	}
	return "Alright."
}

// Enhancer is the external LLM collaborator contract: a bounded-time,
// best-effort prose upgrade. Implemented by the llm package.
type Enhancer interface {
	IsEnabled() bool
	EnhanceResponse(ctx context.Context, in *ResponseInput) (*ResponseMessage, error)
}

// EnhancedResponder decorates a mandatory base strategy with a
// timeout-guarded LLM enhancement attempt. Any enhancement failure falls
// back to the base message; result delivery is never blocked on the LLM.
type EnhancedResponder struct {
	base     ResponseStrategy
	enhancer Enhancer
	timeout  time.Duration
	logger   *zap.Logger
}

// NewEnhancedResponder wraps base with the optional enhancement step.
func NewEnhancedResponder(base ResponseStrategy, enhancer Enhancer, timeout time.Duration, logger *zap.Logger) *EnhancedResponder {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnhancedResponder{base: base, enhancer: enhancer, timeout: timeout, logger: logger}
}

// Compose always produces the rule-based message first, then attempts the
// enhancement only for complex utterances.
func (e *EnhancedResponder) Compose(ctx context.Context, in *ResponseInput) (*ResponseMessage, error) {
	fallback, err := e.base.Compose(ctx, in)
	if err != nil {
		return nil, err
	}

	if e.enhancer == nil || !e.enhancer.IsEnabled() || !isComplex(in) {
		return fallback, nil
	}

	enhanceCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	enhanced, err := e.enhancer.EnhanceResponse(enhanceCtx, in)
	if err != nil || enhanced == nil || enhanced.Text == "" {
		e.logger.Warn("response enhancement failed, using rule-based message", zap.Error(err))
		return fallback, nil
	}
	return enhanced, nil
}

// isComplex decides whether an utterance earns the LLM escalation: several
// simultaneous intents, frustration, or long dense phrasing.
func isComplex(in *ResponseInput) bool {
	if in.Analysis == nil {
		return false
	}
	return len(in.Analysis.Intents) > 2 ||
		in.Analysis.Sentiment.Label == model.SentimentNegative ||
		len(in.Analysis.Keywords) > 8 ||
		len(in.Analysis.Query) > 140
}
