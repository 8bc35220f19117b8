package engine

import (
	"testing"

	"stayfinder/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPurpose(t *testing.T) {
	classifier := NewTripClassifier()

	tests := []struct {
		name       string
		utterance  string
		purpose    string
		priorities []string
	}{
		{"business trip", "work trip to Chicago, need wifi for meetings", model.PurposeBusiness, []string{"wifi", "workspace", "location"}},
		{"romantic", "anniversary weekend with my wife", model.PurposeRomantic, []string{"privacy", "view", "hot tub"}},
		{"celebration", "bachelorette party for 8", model.PurposeCelebration, []string{"space", "location", "pool"}},
		{"family", "family vacation with the kids", model.PurposeFamily, []string{"space", "kitchen", "safety"}},
		{"adventure", "skiing in aspen", model.PurposeAdventure, []string{"location", "parking", "gear storage"}},
		{"relaxation", "somewhere quiet to unwind", model.PurposeRelaxation, []string{"quiet", "hot tub", "view"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := classifier.Classify(tt.utterance)
			require.NotNil(t, trip.Purpose)
			assert.Equal(t, tt.purpose, *trip.Purpose)
			assert.Equal(t, tt.priorities, trip.Priorities)
		})
	}
}

func TestClassifyUnknownPurpose(t *testing.T) {
	classifier := NewTripClassifier()

	trip := classifier.Classify("a place in Austin")

	assert.Nil(t, trip.Purpose)
	assert.Equal(t, model.UrgencyFlexible, trip.Urgency)
	assert.Empty(t, trip.Priorities)
}

func TestClassifyUrgency(t *testing.T) {
	classifier := NewTripClassifier()

	tests := []struct {
		utterance string
		urgency   string
	}{
		{"need a place tonight", model.UrgencyUrgent},
		{"last minute trip, asap", model.UrgencyUrgent},
		{"arriving 2026-09-10", model.UrgencySpecific},
		{"sometime in march maybe", model.UrgencySpecific},
		{"whenever works", model.UrgencyFlexible},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			assert.Equal(t, tt.urgency, classifier.Classify(tt.utterance).Urgency)
		})
	}
}

func TestClassifyGroupType(t *testing.T) {
	classifier := NewTripClassifier()

	tests := []struct {
		utterance string
		groupType string
	}{
		{"trip with friends", model.GroupFriends},
		{"me and my husband", model.GroupCouple},
		{"traveling with my colleagues", model.GroupBusiness},
		{"the kids are coming too", model.GroupFamily},
		{"solo adventure", model.GroupSolo},
		{"a nice stay somewhere", model.GroupUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			assert.Equal(t, tt.groupType, classifier.Classify(tt.utterance).GroupType)
		})
	}
}

func TestGroupTypeFromPartyArithmetic(t *testing.T) {
	classifier := NewTripClassifier()

	tests := []struct {
		utterance string
		groupType string
	}{
		{"2 adults and 2 kids", model.GroupFamily},
		{"1 adult", model.GroupSolo},
		{"2 adults", model.GroupCouple},
		{"6 adults", model.GroupFriends},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			assert.Equal(t, tt.groupType, classifier.Classify(tt.utterance).GroupType)
		})
	}
}
