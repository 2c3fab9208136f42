package clix

import (
	"fmt"

	"github.com/spf13/pflag"

	"healthnudge/internal/models"
)

// ParseLocation reads the --lat, --lng and --radius flags into a
// recommendation request. Radius falls back to the given default when the
// flag is left at zero.
func ParseLocation(flags *pflag.FlagSet, defaultRadius int) (models.RecommendationRequest, error) {
	lat, _ := flags.GetFloat64("lat")
	lng, _ := flags.GetFloat64("lng")
	radius, _ := flags.GetInt("radius")
	userContext, _ := flags.GetString("context")

	if !flags.Changed("lat") || !flags.Changed("lng") {
		return models.RecommendationRequest{}, fmt.Errorf("both --lat and --lng are required")
	}
	if radius <= 0 {
		radius = defaultRadius
	}

	req := models.RecommendationRequest{
		Lat:          lat,
		Lng:          lng,
		RadiusMeters: radius,
		UserContext:  userContext,
	}
	if err := req.Validate(); err != nil {
		return models.RecommendationRequest{}, err
	}
	return req, nil
}
