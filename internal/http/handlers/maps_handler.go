// README: Maps handler exposing trip distance estimates.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/maps"
	"fleet/internal/types"
)

type DistanceEstimator interface {
	Estimate(ctx context.Context, origin, destination types.Point) (maps.Estimate, error)
}

type MapsHandler struct {
	distance DistanceEstimator
}

func NewMapsHandler(distance DistanceEstimator) *MapsHandler {
	return &MapsHandler{distance: distance}
}

type distanceReq struct {
	Origin      *types.Point `json:"origin"`
	Destination *types.Point `json:"destination"`
}

type distanceResp struct {
	DistanceKm      float64 `json:"distanceKm"`
	DurationMinutes int     `json:"durationMinutes"`
	Method          string  `json:"method"`
}

func (h *MapsHandler) Distance(c *gin.Context) {
	var req distanceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Origin == nil || req.Destination == nil {
		writeError(c, http.StatusBadRequest, "origin and destination are required")
		return
	}
	est, err := h.distance.Estimate(c.Request.Context(), *req.Origin, *req.Destination)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(c, http.StatusOK, distanceResp{
		DistanceKm:      est.DistanceKm,
		DurationMinutes: est.DurationMinutes,
		Method:          est.Method,
	})
}
