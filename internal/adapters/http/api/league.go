package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/midwicket/pavilion/internal/auth"
	"github.com/midwicket/pavilion/internal/domain/model"
)

// LeagueHandler serves the directory and catalog CRUD surface: users,
// teams, matches, and products.
type LeagueHandler struct {
	deps Dependencies
}

// NewLeagueHandler creates a new league handler.
func NewLeagueHandler(deps Dependencies) *LeagueHandler {
	return &LeagueHandler{deps: deps}
}

// HandleListUsers serves GET /api/users.
func (h *LeagueHandler) HandleListUsers(c *gin.Context) {
	users, err := h.deps.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// HandleDeleteUser serves DELETE /api/users/:id.
func (h *LeagueHandler) HandleDeleteUser(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.deps.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type teamRequest struct {
	Name string `json:"name"`
}

// HandleCreateTeam serves POST /api/teams. The caller becomes the captain
// and first member.
func (h *LeagueHandler) HandleCreateTeam(c *gin.Context) {
	var req teamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		badRequest(c, "missing name")
		return
	}

	team, err := h.deps.CreateTeam(c.Request.Context(), model.Team{
		Name:      strings.TrimSpace(req.Name),
		CaptainID: auth.UserID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, team)
}

// HandleListTeams serves GET /api/teams.
func (h *LeagueHandler) HandleListTeams(c *gin.Context) {
	teams, err := h.deps.ListTeams(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if teams == nil {
		teams = []model.Team{}
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams, "count": len(teams)})
}

// HandleJoinTeam serves POST /api/teams/:id/join for the calling user.
func (h *LeagueHandler) HandleJoinTeam(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.deps.JoinTeam(c.Request.Context(), id, auth.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "joined"})
}

// HandleTeamMembers serves GET /api/teams/:id/members.
func (h *LeagueHandler) HandleTeamMembers(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	members, err := h.deps.TeamMembers(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if members == nil {
		members = []int{}
	}
	c.JSON(http.StatusOK, gin.H{"members": members, "count": len(members)})
}

type matchRequest struct {
	Title      string    `json:"title"`
	Venue      string    `json:"venue"`
	Status     string    `json:"status"`
	HomeTeamID int       `json:"homeTeamId"`
	AwayTeamID int       `json:"awayTeamId"`
	StartsAt   time.Time `json:"startsAt"`
}

// HandleCreateMatch serves POST /api/matches.
func (h *LeagueHandler) HandleCreateMatch(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		badRequest(c, "missing title")
		return
	}

	match, err := h.deps.CreateMatch(c.Request.Context(), model.Match{
		Title:      strings.TrimSpace(req.Title),
		Venue:      req.Venue,
		Status:     req.Status,
		HomeTeamID: req.HomeTeamID,
		AwayTeamID: req.AwayTeamID,
		StartsAt:   req.StartsAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, match)
}

// HandleGetMatch serves GET /api/matches/:id.
func (h *LeagueHandler) HandleGetMatch(c *gin.Context) {
	match, err := h.deps.GetMatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

// HandleListMatches serves GET /api/matches?status=.
func (h *LeagueHandler) HandleListMatches(c *gin.Context) {
	matches, err := h.deps.ListMatches(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	if matches == nil {
		matches = []model.Match{}
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

// HandleUpdateMatch serves PUT /api/matches/:id.
func (h *LeagueHandler) HandleUpdateMatch(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	err := h.deps.UpdateMatch(c.Request.Context(), model.Match{
		ID:         c.Param("id"),
		Title:      req.Title,
		Venue:      req.Venue,
		Status:     req.Status,
		HomeTeamID: req.HomeTeamID,
		AwayTeamID: req.AwayTeamID,
		StartsAt:   req.StartsAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

// HandleDeleteMatch serves DELETE /api/matches/:id.
func (h *LeagueHandler) HandleDeleteMatch(c *gin.Context) {
	if err := h.deps.DeleteMatch(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int    `json:"priceCents"`
	Stock       int    `json:"stock"`
}

// HandleCreateProduct serves POST /api/products.
func (h *LeagueHandler) HandleCreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		badRequest(c, "missing name")
		return
	}
	if req.PriceCents < 0 || req.Stock < 0 {
		badRequest(c, "price and stock must be non-negative")
		return
	}

	product, err := h.deps.CreateProduct(c.Request.Context(), model.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// HandleListProducts serves GET /api/products.
func (h *LeagueHandler) HandleListProducts(c *gin.Context) {
	products, err := h.deps.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// HandleUpdateProduct serves PUT /api/products/:id.
func (h *LeagueHandler) HandleUpdateProduct(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.PriceCents < 0 || req.Stock < 0 {
		badRequest(c, "price and stock must be non-negative")
		return
	}

	err := h.deps.UpdateProduct(c.Request.Context(), model.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

// HandleDeleteProduct serves DELETE /api/products/:id.
func (h *LeagueHandler) HandleDeleteProduct(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.deps.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// intParam parses a positive integer path parameter, writing a 400 on
// failure.
func intParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
