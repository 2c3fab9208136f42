package apihandlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"healthnudge/internal/models"
)

// Recommender is the slice of the recommendation service the API needs.
type Recommender interface {
	Recommend(ctx context.Context, req models.RecommendationRequest) (*models.RecommendationResult, error)
}

type APIHandler struct {
	Recommender         Recommender
	DefaultRadiusMeters int
}

// RecommendHandler handles POST /api/v1/recommendations. The pipeline
// reports its own failures through the result status, so the only error
// paths here are malformed input and invalid coordinates.
func (h *APIHandler) RecommendHandler(c *gin.Context) {
	var req models.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if req.RadiusMeters == 0 {
		req.RadiusMeters = h.DefaultRadiusMeters
	}

	result, err := h.Recommender.Recommend(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			BadRequest(c, err.Error())
			return
		}
		Internal(c, "recommendation failed: "+err.Error())
		return
	}

	status := http.StatusOK
	if result.Status == models.StatusErrored {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"data": result})
}

// RegisterRoutes attaches the API routes to the router.
func (h *APIHandler) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	v1.POST("/recommendations", h.RecommendHandler)
}
