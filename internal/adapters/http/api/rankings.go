package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RankingsHandler serves the leaderboard and per-player profiles.
type RankingsHandler struct {
	deps Dependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps Dependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

// HandleGetRankings serves GET /api/rankings: the full leaderboard sorted
// by total earnings, with the earnings formula attached.
func (h *RankingsHandler) HandleGetRankings(c *gin.Context) {
	rankings, err := h.deps.GetPlayerRankings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rankings)
}

// HandleGetProfile serves GET /api/players/:id/profile.
func (h *RankingsHandler) HandleGetProfile(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "invalid player id")
		return
	}
	profile, err := h.deps.GetPlayerProfile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
