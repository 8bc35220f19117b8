package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Listing represents a short-term rental listing supplied by an external
// listing source. The engine treats listings as read-only: it reorders and
// subsets them but never mutates fields.
type Listing struct {
	ID           string     `json:"id" validate:"required"`
	Name         string     `json:"name" validate:"required"`
	Price        Price      `json:"price"`
	Rating       *float64   `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	ReviewsCount *int       `json:"reviewsCount,omitempty" validate:"omitempty,gte=0"`
	RoomType     string     `json:"roomType,omitempty"`
	PropertyType string     `json:"propertyType,omitempty"`
	Amenities    JSONArray  `json:"amenities,omitempty"`
	Host         Host       `json:"host"`
	Location     string     `json:"location,omitempty"`
	Bedrooms     *int       `json:"bedrooms,omitempty" validate:"omitempty,gte=0"`
	Bathrooms    *float64   `json:"bathrooms,omitempty" validate:"omitempty,gte=0"`
	TrustScore   *float64   `json:"trustScore,omitempty"`
	URL          string     `json:"url,omitempty"`
	ListedAt     *time.Time `json:"listedAt,omitempty"`
}

// Price holds the nightly rate and optional trip total for a listing.
type Price struct {
	Rate     float64  `json:"rate" validate:"gte=0"`
	Total    *float64 `json:"total,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

// Host holds the host flags the engine cares about.
type Host struct {
	IsSuperhost bool `json:"isSuperhost"`
}

// NightlyRate returns the per-night price, falling back to the trip total
// when no rate is present.
func (l *Listing) NightlyRate() float64 {
	if l.Price.Rate > 0 {
		return l.Price.Rate
	}
	if l.Price.Total != nil {
		return *l.Price.Total
	}
	return 0
}

// RatingOrZero returns the rating for ordering purposes. Filters never
// treat an absent rating as zero; only sorts do.
func (l *Listing) RatingOrZero() float64 {
	if l.Rating == nil {
		return 0
	}
	return *l.Rating
}

// JSONArray represents a JSON array field stored in a jsonb column.
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}
