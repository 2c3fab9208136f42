package services

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"healthnudge/internal/composer"
	"healthnudge/internal/directory"
	"healthnudge/internal/models"
	"healthnudge/internal/rules"
)

// Broad tag set for the primary search: anything that could be a
// restaurant, cafe, gym or bar.
var primarySearchTags = []string{"restaurant", "cafe", "gym", "bar", "food", "meal_takeaway"}

// Narrower, health-leaning tag set for the alternative searches.
var healthySearchTags = []string{"cafe", "gym", "food"}

// triggerVicinityRadius is the radius for the last-chance lookup scoped to
// the trigger venue's own coordinate.
const triggerVicinityRadius = 500

// RecommendationService sequences the whole pipeline: directory search,
// classification, trigger selection, alternative gathering and message
// composition. It is stateless per request; concurrent requests share
// nothing mutable.
type RecommendationService struct {
	directory  directory.Directory
	classifier *rules.Classifier
	ranker     *AlternativeRanker
	composer   composer.Composer // nil means fallback-only composition
	fallback   *composer.Fallback
	maxVenues  int
}

type RecommendationServiceDeps struct {
	Directory  directory.Directory
	Classifier *rules.Classifier
	Ranker     *AlternativeRanker
	Composer   composer.Composer
	MaxVenues  int
}

func NewRecommendationService(deps RecommendationServiceDeps) *RecommendationService {
	maxVenues := deps.MaxVenues
	if maxVenues <= 0 {
		maxVenues = 20
	}
	return &RecommendationService{
		directory:  deps.Directory,
		classifier: deps.Classifier,
		ranker:     deps.Ranker,
		composer:   deps.Composer,
		fallback:   composer.NewFallback(),
		maxVenues:  maxVenues,
	}
}

// Recommend runs one full pipeline pass. The returned error is non-nil
// only for an invalid request; every pipeline failure is reflected in the
// result's Status so the caller always gets a well-formed response.
func (s *RecommendationService) Recommend(ctx context.Context, req models.RecommendationRequest) (*models.RecommendationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := &models.RecommendationResult{RequestID: uuid.New()}
	logger := log.WithField("request_id", result.RequestID)

	logger.Infof("searching venues near (%.4f, %.4f), radius %dm", req.Lat, req.Lng, req.RadiusMeters)

	// Searching. A directory failure here is fatal for the request; there
	// is no retry and nothing downstream to degrade to.
	venues, err := s.directory.Search(ctx, directory.SearchParams{
		Lat: req.Lat, Lng: req.Lng, RadiusMeters: req.RadiusMeters, Tags: primarySearchTags,
	})
	if err != nil {
		logger.Errorf("primary directory search failed: %v", err)
		result.Status = models.StatusErrored
		result.ErrorDetail = err.Error()
		return result, nil
	}
	if len(venues) > s.maxVenues {
		venues = venues[:s.maxVenues]
	}
	result.TotalVenuesFound = len(venues)

	if len(venues) == 0 {
		result.Status = models.StatusNoVenuesFound
		result.Message = "No restaurants, cafes, or gyms found in this area."
		return result, nil
	}

	// Classifying. Venues that classify to nil simply do not count.
	var unhealthy, classified []*models.Classification
	for _, v := range venues {
		c := s.classifier.Classify(v)
		if c == nil {
			continue
		}
		classified = append(classified, c)
		if c.IsUnhealthy {
			unhealthy = append(unhealthy, c)
		}
	}
	logger.Infof("classified %d of %d venues, %d unhealthy", len(classified), len(venues), len(unhealthy))

	// Trigger selection: first unhealthy in directory order, else first
	// classified. No re-sorting by distance or rating here.
	var trigger *models.Classification
	switch {
	case len(unhealthy) > 0:
		trigger = unhealthy[0]
	case len(classified) > 0:
		trigger = classified[0]
	default:
		result.Status = models.StatusAllHealthy
		result.Message = "No unhealthy restaurants, cafes, or gyms detected nearby."
		result.NearbyVenues = summarizeVenues(venues, 3)
		return result, nil
	}
	logger.Infof("trigger venue: %q (%s)", trigger.Venue.Name, trigger.CategoryID)

	// Everything below the trigger selection degrades gracefully; only the
	// primary search is allowed to fail the request.
	alternatives := s.gatherAlternatives(ctx, req, trigger, logger)

	result.Status = models.StatusCompleted
	result.Trigger = &models.TriggerVenue{
		Venue:        trigger.Venue,
		CategoryID:   trigger.CategoryID,
		CategoryName: trigger.CategoryName,
		IsUnhealthy:  trigger.IsUnhealthy,
	}
	result.RecommendedCategories = trigger.RecommendedCategoryNames
	result.Alternatives = alternatives
	result.Message = s.composeMessage(ctx, req, trigger, alternatives, logger)
	return result, nil
}

// gatherAlternatives runs the alternative search and ranking. On an empty
// ranked result it retries with the minimal pass so the composer has
// something to reference whenever any nearby venue exists.
func (s *RecommendationService) gatherAlternatives(ctx context.Context, req models.RecommendationRequest, trigger *models.Classification, logger *log.Entry) []models.Alternative {
	params := directory.SearchParams{
		Lat: req.Lat, Lng: req.Lng, RadiusMeters: req.RadiusMeters, Tags: healthySearchTags,
	}
	candidates, err := s.directory.Search(ctx, params)
	if err != nil {
		logger.Warnf("alternative search failed, continuing without alternatives: %v", err)
		return nil
	}

	origin := req.Origin()
	alternatives := s.ranker.Rank(origin, candidates, req.RadiusMeters, trigger.Venue.Name)
	if len(alternatives) > 0 {
		return alternatives
	}

	// Minimal fallback: same narrow categories, no health filtering, cap 2.
	candidates, err = s.directory.Search(ctx, params)
	if err != nil {
		logger.Warnf("minimal alternative search failed: %v", err)
		return nil
	}
	return s.ranker.RankMinimal(origin, candidates, trigger.Venue.Name)
}

// composeMessage builds the user-facing sentence. The external composer is
// only consulted with at least two concrete alternatives; its failure is
// always swallowed and substituted with the deterministic fallback.
func (s *RecommendationService) composeMessage(ctx context.Context, req models.RecommendationRequest, trigger *models.Classification, alternatives []models.Alternative, logger *log.Entry) string {
	creq := composer.Request{
		TriggerName:           trigger.Venue.Name,
		TriggerCategory:       trigger.CategoryName,
		RecommendedCategories: trigger.RecommendedCategoryNames,
		UserContext:           req.UserContext,
	}

	refs := toComposerRefs(alternatives)
	if len(refs) >= 2 {
		creq.Alternatives = refs[:2]
	} else if trigger.Venue.Coordinate != nil {
		// One more lookup scoped to the trigger venue's own surroundings.
		candidates, err := s.directory.Search(ctx, directory.SearchParams{
			Lat:          trigger.Venue.Coordinate.Lat,
			Lng:          trigger.Venue.Coordinate.Lng,
			RadiusMeters: triggerVicinityRadius,
			Tags:         healthySearchTags,
		})
		if err != nil {
			logger.Warnf("trigger-vicinity search failed: %v", err)
		} else {
			extra := s.ranker.RankMinimal(trigger.Venue.Coordinate, candidates, trigger.Venue.Name)
			if len(extra) >= 2 {
				creq.Alternatives = toComposerRefs(extra)
			}
		}
	}

	if len(creq.Alternatives) >= 2 {
		if s.composer != nil {
			message, err := s.composer.Generate(ctx, creq)
			if err == nil {
				return message
			}
			logger.Warnf("composer unavailable, substituting fallback message: %v", err)
		}
		return s.fallback.Compose(creq)
	}

	// Without two concrete alternatives the message names only the
	// recommended category kinds, never specific venues.
	creq.Alternatives = nil
	return s.fallback.Compose(creq)
}

func toComposerRefs(alternatives []models.Alternative) []composer.AlternativeRef {
	refs := make([]composer.AlternativeRef, 0, len(alternatives))
	for _, alt := range alternatives {
		refs = append(refs, composer.AlternativeRef{
			Name:         alt.Venue.Name,
			Category:     alt.CategoryLabel,
			DistanceText: alt.DistanceText,
			Rating:       alt.Venue.Rating,
		})
	}
	return refs
}

func summarizeVenues(venues []models.Venue, limit int) []models.VenueSummary {
	if len(venues) > limit {
		venues = venues[:limit]
	}
	summaries := make([]models.VenueSummary, 0, len(venues))
	for _, v := range venues {
		tags := v.Tags
		if len(tags) > 2 {
			tags = tags[:2]
		}
		summaries = append(summaries, models.VenueSummary{Name: v.Name, Tags: tags, Rating: v.Rating})
	}
	return summaries
}
