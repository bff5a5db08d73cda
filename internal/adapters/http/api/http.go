// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/midwicket/pavilion/internal/app"
	"github.com/midwicket/pavilion/internal/auth"
	"github.com/midwicket/pavilion/internal/domain/model"
	"github.com/midwicket/pavilion/internal/domain/types"
	"github.com/midwicket/pavilion/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Aggregation reads.
	GetPlayerRankings(ctx context.Context) (types.Rankings, error)
	GetPlayerProfile(ctx context.Context, playerID int) (types.PlayerProfile, error)
	GetLogsByMatch(ctx context.Context, matchID string) (types.MatchLogs, error)
	GetBallByBallCommentary(ctx context.Context, matchID string, over *int, limit int) ([]types.CommentaryEntry, error)

	// Log ingestion.
	RecordBall(ctx context.Context, sub service.BallSubmission) (model.Log, bool, error)
	RecordScreenshot(ctx context.Context, matchID string, userID int, shot model.ScreenshotAttachment) (model.Log, error)
	DeleteLog(ctx context.Context, id string) error

	// Directory and catalog operations.
	RegisterUser(ctx context.Context, u model.User) (model.User, error)
	UserByEmail(ctx context.Context, email string) (model.User, error)
	UserByID(ctx context.Context, id int) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, id int) error

	CreateTeam(ctx context.Context, t model.Team) (model.Team, error)
	ListTeams(ctx context.Context) ([]model.Team, error)
	JoinTeam(ctx context.Context, teamID, userID int) error
	TeamMembers(ctx context.Context, teamID int) ([]int, error)

	CreateMatch(ctx context.Context, m model.Match) (model.Match, error)
	GetMatch(ctx context.Context, id string) (model.Match, error)
	ListMatches(ctx context.Context, status string) ([]model.Match, error)
	UpdateMatch(ctx context.Context, m model.Match) error
	DeleteMatch(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, p model.Product) error
	DeleteProduct(ctx context.Context, id int) error

	// Monitoring.
	GetStats(ctx context.Context) map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	jwtSecret    string
	cookieSecure bool

	healthHandler   *HealthHandler
	authHandler     *AuthHandler
	rankingsHandler *RankingsHandler
	logsHandler     *LogsHandler
	leagueHandler   *LeagueHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, jwtSecret string, cookieSecure bool) *Server {
	return &Server{
		jwtSecret:       jwtSecret,
		cookieSecure:    cookieSecure,
		healthHandler:   NewHealthHandler(deps),
		authHandler:     NewAuthHandler(deps, jwtSecret, cookieSecure),
		rankingsHandler: NewRankingsHandler(deps),
		logsHandler:     NewLogsHandler(deps),
		leagueHandler:   NewLeagueHandler(deps),
	}
}

// Register attaches all HTTP routes to the engine.
func (s *Server) Register(r *gin.Engine) {
	r.GET("/healthz", Metrics("healthz"), s.healthHandler.HandleHealth)
	r.GET("/stats", Metrics("stats"), s.healthHandler.HandleStats)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})))

	authed := auth.Middleware(s.jwtSecret)
	admin := auth.RequireAdmin()

	g := r.Group("/api")

	g.POST("/auth/register", Metrics("auth_register"), s.authHandler.HandleRegister)
	g.POST("/auth/login", Metrics("auth_login"), s.authHandler.HandleLogin)
	g.POST("/auth/logout", Metrics("auth_logout"), s.authHandler.HandleLogout)
	g.GET("/me", Metrics("me"), authed, s.authHandler.HandleMe)

	g.GET("/rankings", Metrics("rankings"), s.rankingsHandler.HandleGetRankings)
	g.GET("/players/:id/profile", Metrics("profile"), s.rankingsHandler.HandleGetProfile)

	g.GET("/logs", Metrics("logs"), s.logsHandler.HandleGetLogs)
	g.GET("/commentary", Metrics("commentary"), s.logsHandler.HandleGetCommentary)
	g.DELETE("/logs/:id", Metrics("logs_delete"), authed, admin, s.logsHandler.HandleDeleteLog)

	g.POST("/matches/:id/balls", Metrics("balls"), authed, s.logsHandler.HandlePostBall)
	g.POST("/matches/:id/screenshots", Metrics("screenshots"), authed, s.logsHandler.HandlePostScreenshot)

	g.GET("/users", Metrics("users"), authed, admin, s.leagueHandler.HandleListUsers)
	g.DELETE("/users/:id", Metrics("users_delete"), authed, admin, s.leagueHandler.HandleDeleteUser)

	g.GET("/teams", Metrics("teams"), s.leagueHandler.HandleListTeams)
	g.POST("/teams", Metrics("teams_create"), authed, s.leagueHandler.HandleCreateTeam)
	g.POST("/teams/:id/join", Metrics("teams_join"), authed, s.leagueHandler.HandleJoinTeam)
	g.GET("/teams/:id/members", Metrics("teams_members"), s.leagueHandler.HandleTeamMembers)

	g.GET("/matches", Metrics("matches"), s.leagueHandler.HandleListMatches)
	g.GET("/matches/:id", Metrics("matches_get"), s.leagueHandler.HandleGetMatch)
	g.POST("/matches", Metrics("matches_create"), authed, admin, s.leagueHandler.HandleCreateMatch)
	g.PUT("/matches/:id", Metrics("matches_update"), authed, admin, s.leagueHandler.HandleUpdateMatch)
	g.DELETE("/matches/:id", Metrics("matches_delete"), authed, admin, s.leagueHandler.HandleDeleteMatch)

	g.GET("/products", Metrics("products"), s.leagueHandler.HandleListProducts)
	g.POST("/products", Metrics("products_create"), authed, admin, s.leagueHandler.HandleCreateProduct)
	g.PUT("/products/:id", Metrics("products_update"), authed, admin, s.leagueHandler.HandleUpdateProduct)
	g.DELETE("/products/:id", Metrics("products_delete"), authed, admin, s.leagueHandler.HandleDeleteProduct)
}
