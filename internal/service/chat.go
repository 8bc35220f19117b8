package service

import (
	"context"
	"fmt"
	"time"

	"stayfinder/internal/config"
	"stayfinder/internal/contextstore"
	"stayfinder/internal/engine"
	"stayfinder/internal/events"
	"stayfinder/internal/geo"
	"stayfinder/internal/llm"
	"stayfinder/internal/model"
	"stayfinder/internal/repository"

	"go.uber.org/zap"
)

// ListingRepository is the persistence surface the chat service needs.
type ListingRepository interface {
	SearchCandidates(ctx context.Context, location string, keywords []string, limit, offset int) ([]model.Listing, int, error)
	GetListingByID(ctx context.Context, listingID string) (*model.Listing, error)
	BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string)
	LogTurn(ctx context.Context, entry *repository.TurnLog) error
	LogFeedback(ctx context.Context, conversationID, listingID, action string) error
}

// ChatService orchestrates one conversational turn: analyze the utterance,
// carry the search context forward, narrow the candidate set, and compose
// the reply with its refinement suggestions.
type ChatService struct {
	analyzer  *engine.Analyzer
	trips     *engine.TripClassifier
	tracker   *engine.ContextTracker
	filter    *engine.FilterEngine
	refiner   *engine.RefinementGenerator
	responder engine.ResponseStrategy
	enhancer  *llm.Enhancer

	repo      ListingRepository
	store     contextstore.Store
	publisher *events.Publisher
	geocoder  *geo.Client

	cfg    config.EngineConfig
	logger *zap.Logger
}

// NewChatService wires the engine pipeline together.
func NewChatService(
	repo ListingRepository,
	store contextstore.Store,
	publisher *events.Publisher,
	geocoder *geo.Client,
	enhancer *llm.Enhancer,
	cfg config.EngineConfig,
	logger *zap.Logger,
) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}

	retention := engine.RetentionConfig{
		Superhost:    cfg.RetainSuperhost,
		Rating:       cfg.RetainRating,
		Price:        cfg.RetainPrice,
		PropertyType: cfg.RetainPropertyType,
		Amenity:      cfg.RetainAmenity,
		Bedrooms:     cfg.RetainBedrooms,
		Reviews:      cfg.RetainReviews,
	}

	base := engine.NewRuleBasedResponder(cfg.GoodCompleteness)
	var responder engine.ResponseStrategy = base
	if enhancer != nil && enhancer.IsEnabled() {
		responder = engine.NewEnhancedResponder(base, enhancer, 8*time.Second, logger)
	}

	return &ChatService{
		analyzer:  engine.NewAnalyzer(),
		trips:     engine.NewTripClassifier(),
		tracker:   engine.NewContextTracker(),
		filter:    engine.NewFilterEngine(retention, cfg.DefaultNights),
		refiner:   engine.NewRefinementGenerator(cfg.AmenityPopularity, cfg.MaxRefinements),
		responder: responder,
		enhancer:  enhancer,
		repo:      repo,
		store:     store,
		publisher: publisher,
		geocoder:  geocoder,
		cfg:       cfg,
		logger:    logger,
	}
}

// ChatEventCallback receives streaming chat events.
type ChatEventCallback func(event string, data any) error

// Chat handles one conversational turn end to end.
func (s *ChatService) Chat(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	return s.chat(ctx, req, nil)
}

// ChatStream handles one turn while emitting progress events: analysis,
// context, results, and (when enhancement is on) message tokens.
func (s *ChatService) ChatStream(ctx context.Context, req *model.ChatRequest, callback ChatEventCallback) (*model.ChatResponse, error) {
	return s.chat(ctx, req, callback)
}

func (s *ChatService) chat(ctx context.Context, req *model.ChatRequest, callback ChatEventCallback) (*model.ChatResponse, error) {
	startTime := time.Now()

	emit := func(event string, data any) error {
		if callback == nil {
			return nil
		}
		return callback(event, data)
	}

	prior, err := s.store.Load(ctx, req.ConversationID)
	if err != nil {
		// A broken store degrades to a stateless turn.
		s.logger.Warn("failed to load search context", zap.Error(err))
		prior = nil
	}

	analysis := s.analyzer.Analyze(req.Message, prior)
	trip := s.trips.Classify(req.Message)
	if err := emit("analysis", analysis); err != nil {
		return nil, err
	}

	merged := s.tracker.Track(prior, analysis)

	// Too little to search on: ask instead of guessing.
	if merged == nil || (!merged.HasLocation() && analysis.Completeness.Score < s.cfg.ClarifyThreshold) {
		resp := &model.ChatResponse{
			Message:  clarifyMessage(analysis),
			Results:  []model.Listing{},
			Clarify:  analysis.Suggestions,
			Analysis: analysis,
			Trip:     trip,
			Context:  merged,
			Took:     time.Since(startTime).Milliseconds(),
		}
		if err := emit("clarify", resp); err != nil {
			return nil, err
		}
		return resp, nil
	}

	s.validateDestination(ctx, merged.Location)

	if err := emit("context", merged); err != nil {
		return nil, err
	}

	topK, offset := s.pageOptions(req.Options)
	candidates, total, err := s.repo.SearchCandidates(ctx, merged.Location, analysis.Keywords, topK, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	filtered := s.filter.Apply(candidates, analysis, merged)

	// Persist the price window this turn actually used, so a relative
	// "cheaper" keeps tightening across turns.
	if ceiling := s.filter.EffectiveCeiling(candidates, analysis, merged); ceiling != nil {
		merged.MaxPrice = ceiling
	}
	if err := s.store.Save(ctx, req.ConversationID, merged); err != nil {
		s.logger.Warn("failed to save search context", zap.Error(err))
	}

	refinements := s.refiner.Suggest(filtered.Listings, req.Message)

	if err := emit("results", map[string]any{
		"count":   len(filtered.Listings),
		"applied": filtered.Applied,
		"relaxed": filtered.Relaxed,
	}); err != nil {
		return nil, err
	}

	input := &engine.ResponseInput{
		Analysis:    analysis,
		Trip:        trip,
		Context:     merged,
		Results:     filtered.Listings,
		Refinements: refinements,
		Relaxed:     filtered.Relaxed,
	}
	message, err := s.composeMessage(ctx, req, input, emit)
	if err != nil {
		return nil, err
	}

	took := time.Since(startTime).Milliseconds()
	s.recordTurn(req, analysis, merged, filtered, took)

	return &model.ChatResponse{
		Message:     message.Text,
		Insights:    message.Insights,
		Results:     filtered.Listings,
		Total:       total,
		Refinements: refinements,
		Analysis:    analysis,
		Trip:        trip,
		Context:     merged,
		Took:        took,
	}, nil
}

// composeMessage picks between streamed enhancement and the synchronous
// strategy. Stream failures fall back to the composed message.
func (s *ChatService) composeMessage(ctx context.Context, req *model.ChatRequest, input *engine.ResponseInput, emit func(string, any) error) (*engine.ResponseMessage, error) {
	wantStream := req.Options != nil && req.Options.Enhance &&
		s.enhancer != nil && s.enhancer.IsEnabled()

	if wantStream {
		var streamed []byte
		err := s.enhancer.EnhanceResponseStream(ctx, input, func(token string) error {
			streamed = append(streamed, token...)
			return emit("token", map[string]any{"content": token})
		})
		if err == nil && len(streamed) > 0 {
			return &engine.ResponseMessage{Text: string(streamed), Insights: []string{}}, nil
		}
		if err != nil {
			s.logger.Warn("streamed enhancement failed, using composed message", zap.Error(err))
		}
	}

	return s.responder.Compose(ctx, input)
}

func (s *ChatService) pageOptions(opts *model.ChatOptions) (topK, offset int) {
	topK = s.cfg.CandidateLimit
	if opts != nil && opts.TopK > 0 && opts.TopK < topK {
		topK = opts.TopK
	}
	if opts != nil && opts.Offset > 0 {
		offset = opts.Offset
	}
	return topK, offset
}

// validateDestination checks the location against the geocoder when one is
// configured. Failures and unknown places are logged, never fatal.
func (s *ChatService) validateDestination(ctx context.Context, location string) {
	if s.geocoder == nil || location == "" {
		return
	}
	place, err := s.geocoder.Validate(ctx, location)
	if err != nil {
		s.logger.Debug("geocode lookup failed", zap.String("location", location), zap.Error(err))
		return
	}
	if place == nil {
		s.logger.Info("destination not recognized by geocoder", zap.String("location", location))
	}
}

func (s *ChatService) recordTurn(req *model.ChatRequest, analysis *model.QueryAnalysis, merged *model.SearchContext, filtered *engine.FilterResult, took int64) {
	listingIDs := make([]string, len(filtered.Listings))
	for i, l := range filtered.Listings {
		listingIDs[i] = l.ID
	}

	go func() {
		logCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := s.repo.LogTurn(logCtx, &repository.TurnLog{
			ConversationID: req.ConversationID,
			Utterance:      req.Message,
			Intents:        analysis.Intents,
			Keywords:       analysis.Keywords,
			Applied:        filtered.Applied,
			Relaxed:        filtered.Relaxed,
			ResultCount:    len(filtered.Listings),
			ListingIDs:     listingIDs,
			TookMs:         int(took),
		})
		if err != nil {
			s.logger.Warn("failed to log turn", zap.Error(err))
		}

		s.publisher.PublishTurn(&events.TurnEvent{
			ConversationID: req.ConversationID,
			Utterance:      req.Message,
			Intents:        analysis.Intents,
			Location:       merged.Location,
			ResultCount:    len(filtered.Listings),
			Applied:        filtered.Applied,
			Relaxed:        filtered.Relaxed,
			TookMs:         took,
			At:             time.Now(),
		})
	}()
}

func clarifyMessage(analysis *model.QueryAnalysis) string {
	if len(analysis.Suggestions) > 0 {
		return "Happy to help you find a place. " + analysis.Suggestions[0]
	}
	return "Happy to help you find a place. Where are you thinking of going?"
}

// Reset clears the stored context so the next turn starts fresh.
func (s *ChatService) Reset(ctx context.Context, conversationID string) error {
	return s.store.Delete(ctx, conversationID)
}

// GetListing retrieves a single listing by ID.
func (s *ChatService) GetListing(ctx context.Context, listingID string) (*model.Listing, error) {
	return s.repo.GetListingByID(ctx, listingID)
}

// UpdateEmbeddings stores listing embeddings, generating vectors for items
// that carry text but no embedding when the embedding client is available.
func (s *ChatService) UpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem, embedder *llm.Client) (int, []string) {
	var errors []string
	ready := make([]model.EmbeddingItem, 0, len(items))
	pendingTexts := []string{}
	pendingIdx := []int{}

	for i, item := range items {
		if len(item.Embedding) > 0 {
			ready = append(ready, item)
			continue
		}
		if item.Text == "" {
			errors = append(errors, fmt.Sprintf("listing_id %s: no embedding or text", item.ListingID))
			continue
		}
		pendingTexts = append(pendingTexts, item.Text)
		pendingIdx = append(pendingIdx, i)
	}

	if len(pendingTexts) > 0 {
		if embedder == nil || !embedder.IsEnabled() {
			errors = append(errors, fmt.Sprintf("%d items need embedding generation but no embedding client is configured", len(pendingTexts)))
		} else {
			vectors, err := embedder.CreateEmbeddings(ctx, pendingTexts)
			if err != nil {
				errors = append(errors, fmt.Sprintf("embedding generation failed: %v", err))
			} else {
				for j, idx := range pendingIdx {
					item := items[idx]
					item.Embedding = vectors[j]
					ready = append(ready, item)
				}
			}
		}
	}

	success, repoErrors := s.repo.BatchUpdateEmbeddings(ctx, ready)
	return success, append(errors, repoErrors...)
}

// LogFeedback records a user action and publishes the analytics event.
func (s *ChatService) LogFeedback(ctx context.Context, conversationID, listingID, action string) error {
	if err := s.repo.LogFeedback(ctx, conversationID, listingID, action); err != nil {
		return err
	}
	s.publisher.PublishFeedback(&events.FeedbackEvent{
		ConversationID: conversationID,
		ListingID:      listingID,
		Action:         action,
		At:             time.Now(),
	})
	return nil
}
