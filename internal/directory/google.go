package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"healthnudge/internal/models"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"

// googleMaxRadius is the hard cap the Places API enforces.
const googleMaxRadius = 50000

// GooglePlaces implements Directory against the Places Nearby Search API.
// One HTTP request is issued per requested tag (the API takes a single
// type per call) and results are deduplicated by place id, preserving the
// order in which the directory returned them.
type GooglePlaces struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	maxResults int
	minRating  float64
}

type GooglePlacesOptions struct {
	APIKey     string
	BaseURL    string // defaults to the public Places endpoint
	Timeout    time.Duration
	MaxResults int
	MinRating  float64 // 0 disables the rating filter
}

func NewGooglePlaces(opts GooglePlacesOptions) (*GooglePlaces, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("google places API key is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 20
	}
	return &GooglePlaces{
		apiKey:     opts.APIKey,
		baseURL:    opts.BaseURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		timeout:    opts.Timeout,
		maxResults: opts.MaxResults,
		minRating:  opts.MinRating,
	}, nil
}

// nearbyResponse mirrors the subset of the Places JSON payload we consume.
type nearbyResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID  string `json:"place_id"`
		Name     string `json:"name"`
		Vicinity string `json:"vicinity"`
		Geometry *struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		Rating     *float64 `json:"rating"`
		Types      []string `json:"types"`
		PriceLevel *int     `json:"price_level"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// Search queries the directory. A failure on any per-tag request fails the
// whole search: the contract is a single attempt per request with no
// partial results.
func (g *GooglePlaces) Search(ctx context.Context, params SearchParams) ([]models.Venue, error) {
	seen := make(map[string]struct{})
	var venues []models.Venue

	tags := params.Tags
	if len(tags) == 0 {
		tags = []string{""}
	}

	for _, tag := range tags {
		results, err := g.searchOne(ctx, params, tag)
		if err != nil {
			return nil, err
		}
		for _, v := range results {
			if _, dup := seen[v.ID]; dup && v.ID != "" {
				continue
			}
			seen[v.ID] = struct{}{}
			venues = append(venues, v)
			if len(venues) >= g.maxResults {
				log.Debugf("directory: capping results at %d", g.maxResults)
				return venues, nil
			}
		}
	}

	log.Infof("directory: found %d venues near (%.4f, %.4f) within %dm",
		len(venues), params.Lat, params.Lng, params.RadiusMeters)
	return venues, nil
}

func (g *GooglePlaces) searchOne(ctx context.Context, params SearchParams, placeType string) ([]models.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	radius := params.RadiusMeters
	if radius > googleMaxRadius {
		radius = googleMaxRadius
	}

	q := url.Values{}
	q.Set("location", fmt.Sprintf("%.6f,%.6f", params.Lat, params.Lng))
	q.Set("radius", fmt.Sprintf("%d", radius))
	q.Set("language", "en")
	q.Set("key", g.apiKey)
	if placeType != "" {
		q.Set("type", placeType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", models.ErrDirectoryUnavailable, err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", models.ErrDirectoryUnavailable, resp.StatusCode, string(body))
	}

	var payload nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", models.ErrDirectoryUnavailable, err)
	}
	// ZERO_RESULTS is a normal empty answer, not a failure.
	if payload.Status != "OK" && payload.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("%w: api status %s: %s", models.ErrDirectoryUnavailable, payload.Status, payload.ErrorMessage)
	}

	venues := make([]models.Venue, 0, len(payload.Results))
	for _, r := range payload.Results {
		if g.minRating > 0 && (r.Rating == nil || *r.Rating < g.minRating) {
			continue
		}
		v := models.Venue{
			ID:        r.PlaceID,
			Name:      r.Name,
			Vicinity:  r.Vicinity,
			Tags:      r.Types,
			Rating:    r.Rating,
			PriceTier: r.PriceLevel,
		}
		if r.Geometry != nil {
			v.Coordinate = &models.Coordinate{
				Lat: r.Geometry.Location.Lat,
				Lng: r.Geometry.Location.Lng,
			}
		}
		venues = append(venues, v)
	}
	return venues, nil
}
