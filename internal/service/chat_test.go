package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"stayfinder/internal/config"
	"stayfinder/internal/contextstore"
	"stayfinder/internal/model"
	"stayfinder/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo serves a fixed candidate set and records logging calls.
type fakeRepo struct {
	mu        sync.Mutex
	listings  []model.Listing
	turns     []*repository.TurnLog
	feedbacks []string
}

func (f *fakeRepo) SearchCandidates(_ context.Context, location string, _ []string, limit, offset int) ([]model.Listing, int, error) {
	if offset >= len(f.listings) {
		return []model.Listing{}, len(f.listings), nil
	}
	end := offset + limit
	if end > len(f.listings) {
		end = len(f.listings)
	}
	return append([]model.Listing(nil), f.listings[offset:end]...), len(f.listings), nil
}

func (f *fakeRepo) GetListingByID(_ context.Context, listingID string) (*model.Listing, error) {
	for _, l := range f.listings {
		if l.ID == listingID {
			found := l
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) BatchUpdateEmbeddings(_ context.Context, items []model.EmbeddingItem) (int, []string) {
	return len(items), nil
}

func (f *fakeRepo) LogTurn(_ context.Context, entry *repository.TurnLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = append(f.turns, entry)
	return nil
}

func (f *fakeRepo) LogFeedback(_ context.Context, conversationID, listingID, action string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedbacks = append(f.feedbacks, conversationID+"/"+listingID+"/"+action)
	return nil
}

func testListings() []model.Listing {
	superhost := func(v bool) model.Host { return model.Host{IsSuperhost: v} }
	rating := func(v float64) *float64 { return &v }

	return []model.Listing{
		{ID: "l1", Name: "Downtown Loft", Price: model.Price{Rate: 95}, Rating: rating(4.9), Host: superhost(true), RoomType: "Entire loft", Amenities: model.JSONArray{"Wifi"}, Location: "Austin, TX"},
		{ID: "l2", Name: "Lake House", Price: model.Price{Rate: 220}, Rating: rating(4.7), Host: superhost(false), RoomType: "Entire home", Amenities: model.JSONArray{"Pool", "Wifi"}, Location: "Austin, TX"},
		{ID: "l3", Name: "Garden Studio", Price: model.Price{Rate: 70}, Rating: rating(4.4), Host: superhost(false), RoomType: "Entire guest suite", Amenities: model.JSONArray{"Wifi"}, Location: "Austin, TX"},
		{ID: "l4", Name: "Hill Villa", Price: model.Price{Rate: 410}, Rating: rating(4.95), Host: superhost(true), RoomType: "Entire villa", Amenities: model.JSONArray{"Pool", "Hot tub"}, Location: "Austin, TX"},
	}
}

func newTestService(repo *fakeRepo) *ChatService {
	cfg := config.EngineConfig{
		RetainSuperhost:    0.0,
		RetainRating:       0.30,
		RetainPrice:        0.10,
		RetainPropertyType: 0.20,
		RetainAmenity:      0.40,
		RetainBedrooms:     0.25,
		RetainReviews:      0.30,
		AmenityPopularity:  0.40,
		DefaultNights:      3,
		ClarifyThreshold:   0.25,
		GoodCompleteness:   0.75,
		MaxRefinements:     6,
		CandidateLimit:     50,
	}
	store := contextstore.NewMemoryStore(time.Minute)
	return NewChatService(repo, store, nil, nil, nil, cfg, nil)
}

func TestChatClarifiesWhenNothingToSearchOn(t *testing.T) {
	repo := &fakeRepo{listings: testListings()}
	svc := newTestService(repo)

	resp, err := svc.Chat(context.Background(), &model.ChatRequest{
		ConversationID: "conv-1",
		Message:        "hi there",
	})

	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.NotEmpty(t, resp.Clarify, "a contentless turn earns clarifying questions")
	assert.Contains(t, resp.Message, "?")
}

func TestChatSearchesOnceLocated(t *testing.T) {
	repo := &fakeRepo{listings: testListings()}
	svc := newTestService(repo)

	resp, err := svc.Chat(context.Background(), &model.ChatRequest{
		ConversationID: "conv-1",
		Message:        "looking for a place in Austin for 2 adults",
	})

	require.NoError(t, err)
	assert.Len(t, resp.Results, 4)
	assert.Equal(t, 4, resp.Total)
	require.NotNil(t, resp.Context)
	assert.Equal(t, "Austin", resp.Context.Location)
	assert.NotEmpty(t, resp.Message)
	assert.NotEmpty(t, resp.Refinements)
}

func TestChatCarriesContextAcrossTurns(t *testing.T) {
	repo := &fakeRepo{listings: testListings()}
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Chat(ctx, &model.ChatRequest{
		ConversationID: "conv-1",
		Message:        "a place in Austin for 2 adults",
	})
	require.NoError(t, err)

	resp, err := svc.Chat(ctx, &model.ChatRequest{
		ConversationID: "conv-1",
		Message:        "only superhosts please",
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Context)
	assert.Equal(t, "Austin", resp.Context.Location, "the follow-up turn keeps the destination")
	assert.Equal(t, 2, resp.Context.Adults)
	for _, l := range resp.Results {
		assert.True(t, l.Host.IsSuperhost)
	}
}

func TestChatCheaperTightensBudgetAcrossTurns(t *testing.T) {
	repo := &fakeRepo{listings: testListings()}
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Chat(ctx, &model.ChatRequest{
		ConversationID: "conv-1",
		Message:        "a place in Austin",
	})
	require.NoError(t, err)

	resp, err := svc.Chat(ctx, &model.ChatRequest{
		ConversationID: "conv-1",
		Message:        "can you make it cheaper",
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Context.MaxPrice, "the derived ceiling persists for later turns")
	assert.NotEmpty(t, resp.Results)
	for _, l := range resp.Results {
		assert.LessOrEqual(t, l.NightlyRate(), *resp.Context.MaxPrice)
	}
}

func TestChatNeverReturnsEmptyFromNonEmptyCandidates(t *testing.T) {
	repo := &fakeRepo{listings: testListings()}
	svc := newTestService(repo)

	resp, err := svc.Chat(context.Background(), &model.ChatRequest{
		ConversationID: "conv-1",
		Message:        "a place in Austin with an ev charger under $10",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Results, "impossible criteria relax instead of emptying the set")
}

func TestChatStreamEmitsProgressEvents(t *testing.T) {
	repo := &fakeRepo{listings: testListings()}
	svc := newTestService(repo)

	var events []string
	_, err := svc.ChatStream(context.Background(), &model.ChatRequest{
		ConversationID: "conv-1",
		Message:        "a place in Austin",
	}, func(event string, _ any) error {
		events = append(events, event)
		return nil
	})

	require.NoError(t, err)
	assert.Contains(t, events, "analysis")
	assert.Contains(t, events, "context")
	assert.Contains(t, events, "results")
}

func TestReset(t *testing.T) {
	repo := &fakeRepo{listings: testListings()}
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Chat(ctx, &model.ChatRequest{ConversationID: "conv-1", Message: "a place in Austin"})
	require.NoError(t, err)
	require.NoError(t, svc.Reset(ctx, "conv-1"))

	resp, err := svc.Chat(ctx, &model.ChatRequest{ConversationID: "conv-1", Message: "only superhosts please"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results, "after a reset the conversation is uninitialized again")
	assert.NotEmpty(t, resp.Clarify)
}

func TestGetListing(t *testing.T) {
	repo := &fakeRepo{listings: testListings()}
	svc := newTestService(repo)

	listing, err := svc.GetListing(context.Background(), "l2")
	require.NoError(t, err)
	require.NotNil(t, listing)
	assert.Equal(t, "Lake House", listing.Name)

	missing, err := svc.GetListing(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLogFeedback(t *testing.T) {
	repo := &fakeRepo{listings: testListings()}
	svc := newTestService(repo)

	require.NoError(t, svc.LogFeedback(context.Background(), "conv-1", "l1", "click"))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, []string{"conv-1/l1/click"}, repo.feedbacks)
}
