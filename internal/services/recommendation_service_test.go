package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthnudge/internal/composer"
	"healthnudge/internal/directory"
	"healthnudge/internal/models"
	"healthnudge/internal/rules"
)

// fakeDirectory serves scripted responses in call order and records every
// query it receives.
type fakeDirectory struct {
	responses []fakeResponse
	calls     []directory.SearchParams
}

type fakeResponse struct {
	venues []models.Venue
	err    error
}

func (d *fakeDirectory) Search(ctx context.Context, params directory.SearchParams) ([]models.Venue, error) {
	d.calls = append(d.calls, params)
	if len(d.responses) == 0 {
		return nil, nil
	}
	resp := d.responses[0]
	d.responses = d.responses[1:]
	return resp.venues, resp.err
}

type fakeComposer struct {
	message  string
	err      error
	lastReq  composer.Request
	genCalls int
}

func (c *fakeComposer) Generate(ctx context.Context, req composer.Request) (string, error) {
	c.genCalls++
	c.lastReq = req
	if c.err != nil {
		return "", c.err
	}
	return c.message, nil
}

func newTestService(dir directory.Directory, comp composer.Composer) *RecommendationService {
	return NewRecommendationService(RecommendationServiceDeps{
		Directory:  dir,
		Classifier: rules.NewClassifier(rules.Default()),
		Ranker:     NewAlternativeRanker(1.5, 3),
		Composer:   comp,
	})
}

func testRequest() models.RecommendationRequest {
	return models.RecommendationRequest{Lat: 24.8600, Lng: 67.0000, RadiusMeters: 1000}
}

func TestRecommend_EndToEnd_FastFoodTrigger(t *testing.T) {
	kfc := venueAt("KFC Main St", 50, rating(3.8), "restaurant")
	nearCafe := venueAt("Green Cafe", 300, rating(4.2), "cafe")
	farCafe := venueAt("Juice Hub Cafe", 900, rating(3.9), "cafe")

	dir := &fakeDirectory{responses: []fakeResponse{
		{venues: []models.Venue{kfc}},
		{venues: []models.Venue{farCafe, nearCafe}}, // directory order reversed on purpose
	}}
	comp := &fakeComposer{message: "Skip KFC, Green Cafe is right there!"}

	result, err := newTestService(dir, comp).Recommend(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, result.Status)
	require.NotNil(t, result.Trigger)
	assert.Equal(t, "KFC Main St", result.Trigger.Name)
	assert.Equal(t, models.CategoryFastFood, result.Trigger.CategoryID)
	assert.True(t, result.Trigger.IsUnhealthy)
	assert.Equal(t, 1, result.TotalVenuesFound)

	// Alternatives sorted ascending by distance despite directory order.
	require.Len(t, result.Alternatives, 2)
	assert.Equal(t, "Green Cafe", result.Alternatives[0].Venue.Name)
	assert.Equal(t, "Juice Hub Cafe", result.Alternatives[1].Venue.Name)
	assert.Less(t, result.Alternatives[0].DistanceMeters, result.Alternatives[1].DistanceMeters)

	// Composer got the top two with distance text.
	require.Len(t, comp.lastReq.Alternatives, 2)
	assert.Equal(t, "Green Cafe", comp.lastReq.Alternatives[0].Name)
	assert.Equal(t, "Skip KFC, Green Cafe is right there!", result.Message)
}

func TestRecommend_AllHealthy_NoVenueClassifies(t *testing.T) {
	school := models.Venue{Name: "City Grammar School", Tags: []string{"school"}}
	bank := models.Venue{Name: "Habib Metro Branch", Tags: []string{"bank"}}

	dir := &fakeDirectory{responses: []fakeResponse{
		{venues: []models.Venue{school, bank}},
	}}

	result, err := newTestService(dir, &fakeComposer{}).Recommend(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StatusAllHealthy, result.Status)
	assert.Equal(t, 2, result.TotalVenuesFound)
	require.Len(t, result.NearbyVenues, 2)
	assert.Equal(t, "City Grammar School", result.NearbyVenues[0].Name)
	assert.Empty(t, result.Alternatives)
	// Zero alternatives requested: only the primary search happened.
	assert.Len(t, dir.calls, 1)
}

func TestRecommend_PrimarySearchFailureIsFatal(t *testing.T) {
	dir := &fakeDirectory{responses: []fakeResponse{
		{err: fmt.Errorf("%w: connection refused", models.ErrDirectoryUnavailable)},
	}}

	result, err := newTestService(dir, &fakeComposer{}).Recommend(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StatusErrored, result.Status)
	assert.NotEmpty(t, result.ErrorDetail)
	assert.Nil(t, result.Trigger)
	assert.Empty(t, result.Alternatives)
	assert.Empty(t, result.Message)
}

func TestRecommend_NoVenuesFound(t *testing.T) {
	dir := &fakeDirectory{responses: []fakeResponse{{venues: nil}}}

	result, err := newTestService(dir, &fakeComposer{}).Recommend(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StatusNoVenuesFound, result.Status)
	assert.Equal(t, 0, result.TotalVenuesFound)
	assert.NotEmpty(t, result.Message)
}

func TestRecommend_ComposerFailureNeverSurfaces(t *testing.T) {
	kfc := venueAt("KFC Main St", 50, rating(3.8), "restaurant")
	dir := &fakeDirectory{responses: []fakeResponse{
		{venues: []models.Venue{kfc}},
		{venues: []models.Venue{
			venueAt("Green Cafe", 300, rating(4.2), "cafe"),
			venueAt("Iron Gym", 500, rating(4.6), "gym"),
		}},
	}}
	comp := &fakeComposer{err: fmt.Errorf("%w: timeout", models.ErrComposerUnavailable)}

	result, err := newTestService(dir, comp).Recommend(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, result.Status)
	assert.NotEmpty(t, result.Message)
	// The substituted message still references the best alternative.
	assert.Contains(t, result.Message, "Green Cafe")
	assert.Equal(t, 1, comp.genCalls)
}

func TestRecommend_NilComposerStillNamesAlternatives(t *testing.T) {
	kfc := venueAt("KFC Main St", 50, rating(3.8), "restaurant")
	dir := &fakeDirectory{responses: []fakeResponse{
		{venues: []models.Venue{kfc}},
		{venues: []models.Venue{
			venueAt("Green Cafe", 300, rating(4.2), "cafe"),
			venueAt("Iron Gym", 500, rating(4.6), "gym"),
		}},
	}}

	result, err := newTestService(dir, nil).Recommend(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, result.Status)
	require.Len(t, result.Alternatives, 2)
	// The fallback template references the gathered venues, not just the
	// recommended category kinds.
	assert.Contains(t, result.Message, "Green Cafe")
	assert.Contains(t, result.Message, "Iron Gym")
}

func TestRecommend_TriggerSelectionIsFirstInDirectoryOrder(t *testing.T) {
	lowRatedBar := venueAt("Dusty Pub", 900, rating(2.1), "bar")
	highRatedKFC := venueAt("KFC Deluxe", 100, rating(4.9), "restaurant")

	dir := &fakeDirectory{responses: []fakeResponse{
		{venues: []models.Venue{lowRatedBar, highRatedKFC}},
		{venues: nil},
		{venues: nil},
	}}

	result, err := newTestService(dir, &fakeComposer{message: "m"}).Recommend(context.Background(), testRequest())
	require.NoError(t, err)

	// First unhealthy wins, not the highest rated or the closest.
	require.NotNil(t, result.Trigger)
	assert.Equal(t, "Dusty Pub", result.Trigger.Name)
	assert.Equal(t, models.CategoryBarPub, result.Trigger.CategoryID)
}

func TestRecommend_UnhealthyPreferredOverHealthyClassified(t *testing.T) {
	cafe := venueAt("Morning Cafe", 100, rating(4.5), "cafe")
	pizza := venueAt("Pizza Palace", 800, rating(3.0), "restaurant")

	dir := &fakeDirectory{responses: []fakeResponse{
		{venues: []models.Venue{cafe, pizza}},
		{venues: nil},
		{venues: nil},
	}}

	result, err := newTestService(dir, &fakeComposer{message: "m"}).Recommend(context.Background(), testRequest())
	require.NoError(t, err)

	require.NotNil(t, result.Trigger)
	assert.Equal(t, "Pizza Palace", result.Trigger.Name)
	assert.True(t, result.Trigger.IsUnhealthy)
}

func TestRecommend_MinimalFallbackWhenRankingFiltersEverything(t *testing.T) {
	kfc := venueAt("KFC Main St", 50, rating(3.8), "restaurant")
	// Low-rated, non-healthy-sounding places: the strict pass drops them all.
	plainA := venueAt("Plain Diner", 200, rating(3.0), "food")
	plainB := venueAt("Old Eatery", 400, nil, "food")

	dir := &fakeDirectory{responses: []fakeResponse{
		{venues: []models.Venue{kfc}},
		{venues: []models.Venue{plainA, plainB}}, // strict pass: everything filtered
		{venues: []models.Venue{plainA, plainB}}, // minimal pass
	}}
	comp := &fakeComposer{message: "composed"}

	result, err := newTestService(dir, comp).Recommend(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, result.Status)
	require.Len(t, result.Alternatives, 2)
	assert.Equal(t, "Plain Diner", result.Alternatives[0].Venue.Name)
	assert.Equal(t, "composed", result.Message)
}

func TestRecommend_TriggerVicinityLookupFeedsComposer(t *testing.T) {
	kfc := venueAt("KFC Main St", 50, rating(3.8), "restaurant")
	nearbyA := venueAt("Corner Cafe", 100, rating(4.0), "cafe")
	nearbyB := venueAt("City Gym", 200, rating(4.4), "gym")

	dir := &fakeDirectory{responses: []fakeResponse{
		{venues: []models.Venue{kfc}},
		{venues: nil}, // strict alternative pass: nothing
		{venues: nil}, // minimal pass: still nothing
		{venues: []models.Venue{nearbyA, nearbyB}}, // trigger-vicinity lookup
	}}
	comp := &fakeComposer{message: "composed near trigger"}

	result, err := newTestService(dir, comp).Recommend(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, result.Status)
	assert.Equal(t, "composed near trigger", result.Message)
	require.Len(t, comp.lastReq.Alternatives, 2)

	// The last query was scoped to the trigger's own coordinate.
	last := dir.calls[len(dir.calls)-1]
	assert.Equal(t, 500, last.RadiusMeters)
	assert.InDelta(t, kfc.Coordinate.Lat, last.Lat, 1e-9)
}

func TestRecommend_NoAlternativesFallsBackToCategoryNames(t *testing.T) {
	kfc := venueAt("KFC Main St", 50, rating(3.8), "restaurant")

	dir := &fakeDirectory{responses: []fakeResponse{
		{venues: []models.Venue{kfc}},
		{venues: nil},
		{venues: nil},
		{venues: nil}, // even the vicinity lookup is empty
	}}
	comp := &fakeComposer{message: "should not be used"}

	result, err := newTestService(dir, comp).Recommend(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, result.Status)
	assert.Equal(t, 0, comp.genCalls)
	assert.Contains(t, result.Message, "KFC Main St")
	assert.Contains(t, result.Message, "Healthy Cafe")
}

func TestRecommend_AlternativeSearchFailureDegrades(t *testing.T) {
	kfc := venueAt("KFC Main St", 50, rating(3.8), "restaurant")

	dir := &fakeDirectory{responses: []fakeResponse{
		{venues: []models.Venue{kfc}},
		{err: fmt.Errorf("%w: flaky", models.ErrDirectoryUnavailable)},
		{err: fmt.Errorf("%w: flaky", models.ErrDirectoryUnavailable)},
	}}

	result, err := newTestService(dir, &fakeComposer{}).Recommend(context.Background(), testRequest())
	require.NoError(t, err)

	// Downstream failures never escalate past the trigger selection.
	assert.Equal(t, models.StatusCompleted, result.Status)
	assert.Empty(t, result.Alternatives)
	assert.NotEmpty(t, result.Message)
}

func TestRecommend_InvalidRequest(t *testing.T) {
	svc := newTestService(&fakeDirectory{}, &fakeComposer{})

	cases := []models.RecommendationRequest{
		{Lat: 91, Lng: 0, RadiusMeters: 500},
		{Lat: 0, Lng: -181, RadiusMeters: 500},
		{Lat: 0, Lng: 0, RadiusMeters: 50},
		{Lat: 0, Lng: 0, RadiusMeters: 6000},
	}
	for _, req := range cases {
		_, err := svc.Recommend(context.Background(), req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrValidation))
	}
}

func TestRecommend_CapsProcessedVenues(t *testing.T) {
	var many []models.Venue
	for i := 0; i < 30; i++ {
		many = append(many, models.Venue{Name: fmt.Sprintf("Office Block %d", i), Tags: []string{"office"}})
	}

	dir := &fakeDirectory{responses: []fakeResponse{{venues: many}}}

	result, err := newTestService(dir, &fakeComposer{}).Recommend(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, 20, result.TotalVenuesFound)
}
