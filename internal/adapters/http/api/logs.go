package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	service "github.com/midwicket/pavilion/internal/app"
	"github.com/midwicket/pavilion/internal/auth"
	"github.com/midwicket/pavilion/internal/domain/model"
	"github.com/midwicket/pavilion/internal/domain/types"
)

// LogsHandler serves match logs, commentary, and ball ingestion.
type LogsHandler struct {
	deps Dependencies
}

// NewLogsHandler creates a new logs handler.
func NewLogsHandler(deps Dependencies) *LogsHandler {
	return &LogsHandler{deps: deps}
}

// HandleGetLogs serves GET /api/logs?matchId=: the full log for one match
// with derived running totals. A missing matchId is rejected before any
// data access.
func (h *LogsHandler) HandleGetLogs(c *gin.Context) {
	logs, err := h.deps.GetLogsByMatch(c.Request.Context(), c.Query("matchId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// HandleGetCommentary serves GET /api/commentary?matchId=&over=&limit=:
// the latest-first commentary feed for one match.
func (h *LogsHandler) HandleGetCommentary(c *gin.Context) {
	var over *int
	if raw := c.Query("over"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "invalid over")
			return
		}
		over = &n
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.deps.GetBallByBallCommentary(c.Request.Context(), c.Query("matchId"), over, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []types.CommentaryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"commentary": entries, "count": len(entries)})
}

// ballRequest mirrors the POST /api/matches/:id/balls body.
type ballRequest struct {
	EventID    string  `json:"eventId"`
	PlayerID   int     `json:"playerId"`
	Over       int     `json:"over"`
	Ball       int     `json:"ball"`
	Runs       int     `json:"runs"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	Balls      int     `json:"balls"`
	Extras     int     `json:"extras"`
	IsOut      bool    `json:"isOut"`
	WicketType *string `json:"wicketType"`
	BallType   string  `json:"ballType"`
	Commentary string  `json:"commentary"`
	BowlerID   *int    `json:"bowlerId"`
	FielderID  *int    `json:"fielderId"`
}

// HandlePostBall serves POST /api/matches/:id/balls. Resubmitting the same
// eventId is absorbed and acknowledged as a duplicate.
func (h *LogsHandler) HandlePostBall(c *gin.Context) {
	var req ballRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	stored, duplicate, err := h.deps.RecordBall(c.Request.Context(), service.BallSubmission{
		EventID:    req.EventID,
		MatchID:    c.Param("id"),
		PlayerID:   req.PlayerID,
		Over:       req.Over,
		Ball:       req.Ball,
		Runs:       req.Runs,
		Fours:      req.Fours,
		Sixes:      req.Sixes,
		Balls:      req.Balls,
		Extras:     req.Extras,
		IsOut:      req.IsOut,
		WicketType: req.WicketType,
		BallType:   req.BallType,
		Commentary: req.Commentary,
		BowlerID:   req.BowlerID,
		FielderID:  req.FielderID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if duplicate {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "duplicate": true})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok", "duplicate": false, "log": stored})
}

// screenshotRequest mirrors the POST /api/matches/:id/screenshots body.
type screenshotRequest struct {
	FileName    string `json:"fileName"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

// HandlePostScreenshot serves POST /api/matches/:id/screenshots.
func (h *LogsHandler) HandlePostScreenshot(c *gin.Context) {
	var req screenshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	stored, err := h.deps.RecordScreenshot(c.Request.Context(), c.Param("id"), auth.UserID(c), model.ScreenshotAttachment{
		FileName:    req.FileName,
		URL:         req.URL,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// HandleDeleteLog serves DELETE /api/logs/:id. Only screenshot documents
// are deletable.
func (h *LogsHandler) HandleDeleteLog(c *gin.Context) {
	if err := h.deps.DeleteLog(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
