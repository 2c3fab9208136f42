package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Coordinate is a WGS84 point in degrees. Venues without geometry carry a
// nil *Coordinate rather than a zero value; zero lat/lng is a real location.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Venue is an immutable snapshot of one directory result. Rating and
// PriceTier are pointers because the directory omits them for many venues.
type Venue struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Coordinate *Coordinate `json:"coordinate,omitempty"`
	Rating     *float64    `json:"rating,omitempty"`
	Tags       []string    `json:"tags,omitempty"`
	PriceTier  *int        `json:"price_tier,omitempty"`
	Vicinity   string      `json:"vicinity,omitempty"`
}

// HasTag reports whether the venue carries the given directory tag.
func (v Venue) HasTag(tag string) bool {
	for _, t := range v.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Category is one of the fixed interest categories.
type Category struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsUnhealthy bool   `json:"is_unhealthy"`
}

// Fixed category identifiers.
const (
	CategoryFastFood   = "fast_food"
	CategoryBarPub     = "bar_pub"
	CategoryRestaurant = "restaurant"
	CategoryCafe       = "cafe"
	CategoryGym        = "gym"
)

// Classification is the classifier's verdict for a single venue.
type Classification struct {
	Venue                    Venue    `json:"venue"`
	CategoryID               string   `json:"category_id"`
	CategoryName             string   `json:"category_name"`
	IsUnhealthy              bool     `json:"is_unhealthy"`
	RecommendedCategoryNames []string `json:"recommended_category_names"`
}

// Alternative is a ranked healthier candidate offered in place of the
// trigger venue. DistanceMeters is the sentinel value when the venue's
// coordinate is unknown, so such entries always sort last.
type Alternative struct {
	Venue          Venue  `json:"venue"`
	CategoryLabel  string `json:"category"`
	DistanceMeters int    `json:"distance_meters"`
	DistanceText   string `json:"distance_text"`
}

// RecommendationRequest is the inbound core request.
type RecommendationRequest struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMeters int     `json:"radius_meters"`
	UserContext  string  `json:"user_context,omitempty"`
}

// Validate enforces the caller-side contract before the pipeline runs.
func (r RecommendationRequest) Validate() error {
	if r.Lat < -90 || r.Lat > 90 {
		return fmt.Errorf("%w: lat must be within [-90, 90], got %v", ErrValidation, r.Lat)
	}
	if r.Lng < -180 || r.Lng > 180 {
		return fmt.Errorf("%w: lng must be within [-180, 180], got %v", ErrValidation, r.Lng)
	}
	if r.RadiusMeters < 100 || r.RadiusMeters > 5000 {
		return fmt.Errorf("%w: radius_meters must be within [100, 5000], got %d", ErrValidation, r.RadiusMeters)
	}
	return nil
}

// Origin returns the request coordinate.
func (r RecommendationRequest) Origin() *Coordinate {
	return &Coordinate{Lat: r.Lat, Lng: r.Lng}
}

// Status is the terminal state of one recommendation run.
type Status string

const (
	StatusCompleted     Status = "completed"
	StatusAllHealthy    Status = "all_healthy"
	StatusNoVenuesFound Status = "no_venues_found"
	StatusErrored       Status = "errored"
)

// TriggerVenue is the venue a recommendation is anchored on.
type TriggerVenue struct {
	Venue
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	IsUnhealthy  bool   `json:"is_unhealthy"`
}

// VenueSummary is the trimmed venue shape reported for context on the
// AllHealthy path.
type VenueSummary struct {
	Name   string   `json:"name"`
	Tags   []string `json:"tags,omitempty"`
	Rating *float64 `json:"rating,omitempty"`
}

// RecommendationResult is the outbound response shape. It is always well
// formed; pipeline failures surface as StatusErrored with ErrorDetail set,
// never as a raw error to the transport layer.
type RecommendationResult struct {
	RequestID             uuid.UUID      `json:"request_id"`
	Status                Status         `json:"status"`
	Trigger               *TriggerVenue  `json:"trigger_venue,omitempty"`
	RecommendedCategories []string       `json:"recommended_categories,omitempty"`
	Alternatives          []Alternative  `json:"alternatives,omitempty"`
	Message               string         `json:"message,omitempty"`
	NearbyVenues          []VenueSummary `json:"nearby_venues,omitempty"`
	TotalVenuesFound      int            `json:"total_venues_found"`
	ErrorDetail           string         `json:"error_detail,omitempty"`
}
