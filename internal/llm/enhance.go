package llm

import (
	"context"
	"fmt"
	"strings"

	"stayfinder/internal/engine"
	"stayfinder/internal/model"
	"stayfinder/internal/utils"

	"go.uber.org/zap"
)

const enhanceSystemPrompt = `You are the conversational voice of a short-term rental search assistant.
You receive a structured summary of the user's request, the trip reading, and the current results.
Write a warm, concise reply (2-3 sentences) that acknowledges the trip, states the result count, and nudges toward one useful next step.
Never invent listings, prices, or amenities that are not in the summary. Never promise availability.
Respond with JSON only: {"message": "...", "insights": ["...", "..."]}
insights is 0-3 short observations grounded in the summary (price spread, standout hosts, common amenities).`

// Enhancer upgrades the rule-based response prose via the chat model. It
// satisfies the engine.Enhancer contract: best effort, bounded by the
// caller's context, and safe to fail.
type Enhancer struct {
	client *Client
	logger *zap.Logger
}

// NewEnhancer wraps the client for response enhancement.
func NewEnhancer(client *Client, logger *zap.Logger) *Enhancer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enhancer{client: client, logger: logger}
}

// IsEnabled reports whether enhancement can be attempted at all.
func (e *Enhancer) IsEnabled() bool {
	return e != nil && e.client.IsEnabled()
}

type enhancedPayload struct {
	Message  string   `json:"message"`
	Insights []string `json:"insights"`
}

// EnhanceResponse asks the chat model for upgraded prose over the turn
// summary. Any parse or transport failure is returned to the caller, who
// falls back to the rule-based message.
func (e *Enhancer) EnhanceResponse(ctx context.Context, in *engine.ResponseInput) (*engine.ResponseMessage, error) {
	resp, err := e.client.ChatCompletion(ctx, ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: enhanceSystemPrompt},
			{Role: "user", Content: buildTurnSummary(in)},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	var payload enhancedPayload
	if err := utils.ParseAIJSON(resp.Choices[0].Message.Content, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse enhanced response: %w", err)
	}
	if strings.TrimSpace(payload.Message) == "" {
		return nil, fmt.Errorf("enhanced response has empty message")
	}
	if payload.Insights == nil {
		payload.Insights = []string{}
	}
	return &engine.ResponseMessage{Text: payload.Message, Insights: payload.Insights}, nil
}

// EnhanceResponseStream streams upgraded prose token by token, for the SSE
// chat endpoint. The callback receives answer tokens only; provider
// reasoning streams are dropped.
func (e *Enhancer) EnhanceResponseStream(ctx context.Context, in *engine.ResponseInput, onToken func(token string) error) error {
	return e.client.ChatCompletionStream(ctx, ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: enhanceSystemPrompt + "\nFor this request, respond with the message as plain prose, no JSON."},
			{Role: "user", Content: buildTurnSummary(in)},
		},
	}, func(chunk *StreamChunk) error {
		if chunk.Content == "" {
			return nil
		}
		return onToken(chunk.Content)
	})
}

// buildTurnSummary flattens one turn into the compact plaintext the model
// sees. Only data already shown to the user goes in.
func buildTurnSummary(in *engine.ResponseInput) string {
	var sb strings.Builder

	if in.Analysis != nil {
		fmt.Fprintf(&sb, "User said: %q\n", in.Analysis.Query)
		if len(in.Analysis.Intents) > 0 {
			fmt.Fprintf(&sb, "Intents: %s\n", strings.Join(in.Analysis.Intents, ", "))
		}
		fmt.Fprintf(&sb, "Sentiment: %s\n", in.Analysis.Sentiment.Label)
	}

	if in.Trip != nil {
		if in.Trip.Purpose != nil {
			fmt.Fprintf(&sb, "Trip purpose: %s\n", *in.Trip.Purpose)
		}
		fmt.Fprintf(&sb, "Group: %s, urgency: %s\n", in.Trip.GroupType, in.Trip.Urgency)
	}

	if in.Context != nil {
		if in.Context.HasLocation() {
			fmt.Fprintf(&sb, "Destination: %s\n", in.Context.Location)
		}
		if in.Context.MaxPrice != nil {
			fmt.Fprintf(&sb, "Budget ceiling: $%.0f/night\n", *in.Context.MaxPrice)
		}
		if party := in.Context.PartySize(); party > 0 {
			fmt.Fprintf(&sb, "Party size: %d\n", party)
		}
	}

	fmt.Fprintf(&sb, "Results: %d listings\n", len(in.Results))
	for i, l := range in.Results {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&sb, "- %s ($%.0f/night, rating %.1f, %s)\n",
			l.Name, l.NightlyRate(), l.RatingOrZero(), hostBadge(l))
	}

	if len(in.Relaxed) > 0 {
		fmt.Fprintf(&sb, "Relaxed to ordering (too few matches): %s\n", strings.Join(in.Relaxed, ", "))
	}
	if len(in.Refinements) > 0 {
		labels := make([]string, 0, len(in.Refinements))
		for _, r := range in.Refinements {
			labels = append(labels, r.Label)
		}
		fmt.Fprintf(&sb, "Suggested refinements: %s\n", strings.Join(labels, "; "))
	}

	return sb.String()
}

func hostBadge(l model.Listing) string {
	if l.Host.IsSuperhost {
		return "superhost"
	}
	return "regular host"
}
