// Package directory abstracts the external place directory service. The
// core pipeline only sees the Directory interface; the Google adapter and
// the cache decorators live behind it.
package directory

import (
	"context"
	"fmt"
	"strings"

	"healthnudge/internal/models"
)

// SearchParams describes one nearby-venue query.
type SearchParams struct {
	Lat          float64
	Lng          float64
	RadiusMeters int
	Tags         []string
}

// CacheKey is stable for identical queries and is used by both cache
// backends.
func (p SearchParams) CacheKey() string {
	return fmt.Sprintf("%.6f,%.6f,%d,%s", p.Lat, p.Lng, p.RadiusMeters, strings.Join(p.Tags, ","))
}

// Directory returns venue snapshots near a coordinate. Implementations may
// return an empty slice; an error means the directory itself was
// unreachable and wraps models.ErrDirectoryUnavailable.
type Directory interface {
	Search(ctx context.Context, params SearchParams) ([]models.Venue, error)
}
