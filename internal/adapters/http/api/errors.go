package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/midwicket/pavilion/internal/adapters/repository/balllog"
	"github.com/midwicket/pavilion/internal/adapters/repository/league"
	service "github.com/midwicket/pavilion/internal/app"
	"github.com/midwicket/pavilion/internal/domain/ranking"
)

// respondError maps service and store error kinds to HTTP responses. The
// message field is part of the wire contract; 5xx responses hide internals
// behind a generic message and carry the cause in detail.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, ranking.ErrPlayerNotFound),
		errors.Is(err, league.ErrNotFound),
		errors.Is(err, balllog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, league.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, balllog.ErrImmutable):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "internal server error",
			"detail":  err.Error(),
		})
	}
}

// badRequest reports a request-shape failure detected in the handler.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msg})
}
