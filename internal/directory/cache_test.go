package directory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthnudge/internal/models"
)

// countingDirectory records how often it was queried.
type countingDirectory struct {
	calls  int
	venues []models.Venue
	err    error
}

func (d *countingDirectory) Search(ctx context.Context, params SearchParams) ([]models.Venue, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.venues, nil
}

func testParams(radius int) SearchParams {
	return SearchParams{Lat: 24.86, Lng: 67.00, RadiusMeters: radius, Tags: []string{"cafe", "gym"}}
}

func TestMemoryCache_HitSkipsInner(t *testing.T) {
	inner := &countingDirectory{venues: []models.Venue{{ID: "a", Name: "Green Cafe"}}}
	cache := NewMemoryCache(inner, 10, time.Minute)

	first, err := cache.Search(context.Background(), testParams(500))
	require.NoError(t, err)
	second, err := cache.Search(context.Background(), testParams(500))
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)
}

func TestMemoryCache_DistinctKeysMiss(t *testing.T) {
	inner := &countingDirectory{}
	cache := NewMemoryCache(inner, 10, time.Minute)

	_, err := cache.Search(context.Background(), testParams(500))
	require.NoError(t, err)
	_, err = cache.Search(context.Background(), testParams(800))
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	inner := &countingDirectory{}
	cache := NewMemoryCache(inner, 10, time.Minute)

	current := time.Now()
	cache.now = func() time.Time { return current }

	_, err := cache.Search(context.Background(), testParams(500))
	require.NoError(t, err)

	// Entry past its TTL must never be served.
	current = current.Add(2 * time.Minute)
	_, err = cache.Search(context.Background(), testParams(500))
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestMemoryCache_CapEvictsOldest(t *testing.T) {
	inner := &countingDirectory{}
	cache := NewMemoryCache(inner, 3, time.Minute)

	for i := 0; i < 5; i++ {
		p := testParams(500)
		p.Lat = float64(i)
		_, err := cache.Search(context.Background(), p)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, cache.Len())
}

func TestMemoryCache_ErrorsNotCached(t *testing.T) {
	inner := &countingDirectory{err: fmt.Errorf("%w: boom", models.ErrDirectoryUnavailable)}
	cache := NewMemoryCache(inner, 10, time.Minute)

	_, err := cache.Search(context.Background(), testParams(500))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDirectoryUnavailable))

	inner.err = nil
	_, err = cache.Search(context.Background(), testParams(500))
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}
