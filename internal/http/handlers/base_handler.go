// README: Base handler utilities (JSON helpers, caller identity, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/http/middleware"
	"fleet/internal/modules/ride"
	"fleet/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func actorFrom(c *gin.Context) ride.Actor {
	return ride.Actor{
		ID:   types.ID(middleware.CallerUID(c)),
		Role: ride.Role(middleware.CallerRole(c)),
	}
}

// writeRideError maps ride error kinds to status codes. Messages of unexpected
// errors are not echoed to the client.
func writeRideError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, ride.ErrValidation):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ride.ErrUnauthorized):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ride.ErrInvalidTransition):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, ride.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
