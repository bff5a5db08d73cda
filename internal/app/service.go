// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/midwicket/pavilion/internal/adapters/repository/balllog"
	"github.com/midwicket/pavilion/internal/adapters/repository/league"
	"github.com/midwicket/pavilion/internal/auth"
	"github.com/midwicket/pavilion/internal/domain/dedupe"
	"github.com/midwicket/pavilion/internal/domain/matchlog"
	"github.com/midwicket/pavilion/internal/domain/model"
	"github.com/midwicket/pavilion/internal/domain/ranking"
	"github.com/midwicket/pavilion/internal/domain/types"
	"github.com/midwicket/pavilion/pkg/logger"
	"github.com/midwicket/pavilion/pkg/metrics"
)

// LeagueStore is the relational store surface the service depends on.
// *league.Store implements it; tests substitute fakes.
type LeagueStore interface {
	ranking.ScoreSource
	ranking.UserDirectory

	CreateUser(ctx context.Context, u model.User) (model.User, error)
	FindUserByEmail(ctx context.Context, email string) (model.User, error)
	FindUserByID(ctx context.Context, id int) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, id int) error
	CountPlayers(ctx context.Context) (int, error)

	CreateTeam(ctx context.Context, t model.Team) (model.Team, error)
	ListTeams(ctx context.Context) ([]model.Team, error)
	AddTeamMember(ctx context.Context, teamID, userID int) error
	TeamMemberIDs(ctx context.Context, teamID int) ([]int, error)

	CreateMatch(ctx context.Context, m model.Match) error
	GetMatch(ctx context.Context, id string) (model.Match, error)
	ListMatches(ctx context.Context, status string) ([]model.Match, error)
	UpdateMatch(ctx context.Context, m model.Match) error
	DeleteMatch(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, p model.Product) error
	DeleteProduct(ctx context.Context, id int) error

	InsertScore(ctx context.Context, sc model.Score) error
}

// LogStore is the document store surface the service depends on.
// *balllog.Store implements it.
type LogStore interface {
	Append(ctx context.Context, l model.Log) (model.Log, error)
	ByMatch(ctx context.Context, matchID string, order balllog.SortOrder, over *int, limit int) ([]model.Log, error)
	Get(ctx context.Context, id string) (model.Log, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// Service implements the API dependencies for the league platform.
type Service struct {
	mu sync.RWMutex

	// Core components
	league     LeagueStore
	logs       LogStore
	deduper    dedupe.Deduper
	aggregator *ranking.Aggregator

	// Configuration
	databaseURL   string
	logStorePath  string
	dedupeSize    int
	concurrency   int
	recentLimit   int
	defaultCLimit int
	maxCLimit     int
	adminEmail    string
	adminPassword string
	ownsLeague    bool
	ownsLogs      bool

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDatabaseURL sets the postgres connection string used when no league
// store is injected.
func WithDatabaseURL(url string) Option {
	return func(s *Service) {
		s.databaseURL = url
	}
}

// WithLogStorePath sets the sqlite file used when no log store is injected.
func WithLogStorePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.logStorePath = path
		}
	}
}

// WithDedupeSize sets the size of the ball-event idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithRankingConcurrency bounds concurrent per-player sub-queries during
// leaderboard aggregation.
func WithRankingConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithRecentMatchLimit sets how many recent matches a profile returns.
func WithRecentMatchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentLimit = n
		}
	}
}

// WithCommentaryLimits sets the default and maximum commentary page sizes.
func WithCommentaryLimits(def, max int) Option {
	return func(s *Service) {
		if def > 0 {
			s.defaultCLimit = def
		}
		if max > 0 {
			s.maxCLimit = max
		}
	}
}

// WithAdminBootstrap provisions an admin account at startup when no user
// with the given email exists. Both values empty disables seeding.
func WithAdminBootstrap(email, password string) Option {
	return func(s *Service) {
		s.adminEmail = email
		s.adminPassword = password
	}
}

// WithLeagueStore injects a pre-built league store. The service will not
// manage its lifecycle.
func WithLeagueStore(st LeagueStore) Option {
	return func(s *Service) {
		s.league = st
	}
}

// WithLogStore injects a pre-built log store. The service will not manage
// its lifecycle.
func WithLogStore(st LogStore) Option {
	return func(s *Service) {
		s.logs = st
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		logStorePath:  "pavilion-logs.db",
		dedupeSize:    50_000,
		concurrency:   4,
		recentLimit:   10,
		defaultCLimit: 20,
		maxCLimit:     100,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting league service...")

	if s.league == nil {
		st, err := league.Connect(ctx, s.databaseURL)
		if err != nil {
			return fmt.Errorf("connect league store: %w", err)
		}
		if err := st.EnsureSchema(ctx); err != nil {
			st.Close()
			return fmt.Errorf("ensure schema: %w", err)
		}
		s.league = st
		s.ownsLeague = true
	}
	if s.logs == nil {
		st, err := balllog.Open(ctx, s.logStorePath)
		if err != nil {
			s.closeStores(ctx)
			return fmt.Errorf("open log store: %w", err)
		}
		s.logs = st
		s.ownsLogs = true
	}

	if err := s.seedAdmin(ctx); err != nil {
		s.closeStores(ctx)
		return fmt.Errorf("seed admin: %w", err)
	}

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.aggregator = ranking.New(s.league, s.league,
		ranking.WithConcurrency(s.concurrency),
		ranking.WithRecentMatchLimit(s.recentLimit),
	)

	s.started = true
	s.logger.Info(ctx, "league service started",
		logger.Int("rankingConcurrency", s.concurrency),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("logStorePath", s.logStorePath),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping league service...")
	s.closeStores(ctx)
	s.started = false
	s.logger.Info(ctx, "league service stopped")
}

// seedAdmin creates the configured admin account if it does not exist yet.
// Registration only ever produces player accounts, so the first admin has
// to come from configuration.
func (s *Service) seedAdmin(ctx context.Context) error {
	if s.adminEmail == "" || s.adminPassword == "" {
		return nil
	}

	_, err := s.league.FindUserByEmail(ctx, s.adminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, league.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(s.adminPassword)
	if err != nil {
		return err
	}
	if _, err := s.league.CreateUser(ctx, model.User{
		Name:         "admin",
		Email:        s.adminEmail,
		Role:         auth.RoleAdmin,
		PasswordHash: hash,
	}); err != nil {
		return err
	}
	s.logger.Info(ctx, "admin account provisioned", logger.String("email", s.adminEmail))
	return nil
}

func (s *Service) closeStores(ctx context.Context) {
	if s.ownsLeague {
		if st, ok := s.league.(*league.Store); ok {
			st.Close()
		}
	}
	if s.ownsLogs {
		if st, ok := s.logs.(*balllog.Store); ok {
			if err := st.Close(); err != nil {
				s.logger.Warn(ctx, "close log store", logger.Error(err))
			}
		}
	}
}

// GetPlayerRankings computes the full leaderboard along with the earnings
// formula description. The rankings slice is never nil.
func (s *Service) GetPlayerRankings(ctx context.Context) (types.Rankings, error) {
	start := time.Now()
	entries, err := s.aggregator.Leaderboard(ctx)
	metrics.RecordRankingLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return types.Rankings{}, err
	}
	if entries == nil {
		entries = []types.RankingEntry{}
	}
	return types.Rankings{
		Rankings:        entries,
		EarningsFormula: s.aggregator.Formula(),
	}, nil
}

// GetPlayerProfile computes the single-player profile aggregation.
func (s *Service) GetPlayerProfile(ctx context.Context, playerID int) (types.PlayerProfile, error) {
	return s.aggregator.Profile(ctx, playerID)
}

// GetLogsByMatch returns a match's full log with derived running totals.
// An empty matchID fails validation before any data access; a match with
// zero documents yields zeroed stats and an empty logs slice.
func (s *Service) GetLogsByMatch(ctx context.Context, matchID string) (types.MatchLogs, error) {
	if matchID == "" {
		return types.MatchLogs{}, fmt.Errorf("matchId is required: %w", ErrValidation)
	}

	start := time.Now()
	logs, err := s.logs.ByMatch(ctx, matchID, balllog.Ascending, nil, 0)
	if err != nil {
		return types.MatchLogs{}, err
	}
	if logs == nil {
		logs = []model.Log{}
	}
	stats := matchlog.Stats(logs)
	metrics.RecordMatchLogLatency(float64(time.Since(start).Milliseconds()))

	return types.MatchLogs{
		Stats:     stats,
		Logs:      logs,
		TotalLogs: len(logs),
	}, nil
}

// GetBallByBallCommentary returns the latest-first commentary feed for a
// match, optionally filtered to one over. A non-positive limit falls back
// to the default page size; oversized limits are capped.
func (s *Service) GetBallByBallCommentary(ctx context.Context, matchID string, over *int, limit int) ([]types.CommentaryEntry, error) {
	if matchID == "" {
		return nil, fmt.Errorf("matchId is required: %w", ErrValidation)
	}
	if limit <= 0 {
		limit = s.defaultCLimit
	}
	if limit > s.maxCLimit {
		limit = s.maxCLimit
	}

	logs, err := s.logs.ByMatch(ctx, matchID, balllog.Descending, over, limit)
	if err != nil {
		return nil, err
	}
	return matchlog.Commentary(logs), nil
}

// BallSubmission is one ball-by-ball event submitted for a match.
type BallSubmission struct {
	EventID    string
	MatchID    string
	PlayerID   int
	Over       int
	Ball       int
	Runs       int
	Fours      int
	Sixes      int
	Balls      int
	Extras     int
	IsOut      bool
	WicketType *string
	BallType   string
	Commentary string
	BowlerID   *int
	FielderID  *int
}

func (b BallSubmission) validate() error {
	if b.MatchID == "" {
		return fmt.Errorf("matchId is required: %w", ErrValidation)
	}
	if b.PlayerID <= 0 {
		return fmt.Errorf("playerId is required: %w", ErrValidation)
	}
	for name, v := range map[string]int{
		"runs": b.Runs, "fours": b.Fours, "sixes": b.Sixes,
		"balls": b.Balls, "extras": b.Extras,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative: %w", name, ErrValidation)
		}
	}
	return nil
}

// RecordBall persists one ball event: a score row in the relational store
// and a log document in the document store. Resubmissions with the same
// event id are absorbed; the second return reports whether the event was a
// duplicate. A store failure unrecords the event id so the client can retry.
func (s *Service) RecordBall(ctx context.Context, sub BallSubmission) (model.Log, bool, error) {
	if err := sub.validate(); err != nil {
		return model.Log{}, false, err
	}
	if sub.BallType == "" {
		sub.BallType = model.BallTypeNormal
	}

	// The match must exist before anything is written; both stores key on
	// its id without referential integrity.
	if _, err := s.league.GetMatch(ctx, sub.MatchID); err != nil {
		return model.Log{}, false, err
	}

	eventID := sub.EventID
	if eventID == "" {
		// Deterministic fallback so blind client retries still dedupe.
		eventID = fmt.Sprintf("%s_%d_%d.%d", sub.MatchID, sub.PlayerID, sub.Over, sub.Ball)
	}
	if s.deduper.SeenAndRecord(ctx, eventID) {
		metrics.RecordBallDuplicate()
		s.logger.Debug(ctx, "duplicate ball event absorbed",
			logger.String("eventID", eventID),
			logger.String("matchID", sub.MatchID),
		)
		return model.Log{}, true, nil
	}

	if err := s.league.InsertScore(ctx, model.Score{
		PlayerID:   sub.PlayerID,
		MatchID:    sub.MatchID,
		Runs:       sub.Runs,
		Fours:      sub.Fours,
		Sixes:      sub.Sixes,
		Balls:      sub.Balls,
		Extras:     sub.Extras,
		IsOut:      sub.IsOut,
		WicketType: sub.WicketType,
		BallType:   sub.BallType,
	}); err != nil {
		s.deduper.Unrecord(ctx, eventID)
		return model.Log{}, false, err
	}

	stored, err := s.logs.Append(ctx, model.Log{
		MatchID:    sub.MatchID,
		PlayerID:   sub.PlayerID,
		Action:     model.ActionBall,
		Runs:       sub.Runs,
		Over:       sub.Over,
		Ball:       sub.Ball,
		Commentary: sub.Commentary,
		Extras:     sub.Extras,
		IsWicket:   sub.IsOut,
		WicketType: sub.WicketType,
		BowlerID:   sub.BowlerID,
		FielderID:  sub.FielderID,
		Payload:    model.ScoreEvent{BatterID: sub.PlayerID, BallType: sub.BallType},
	})
	if err != nil {
		s.deduper.Unrecord(ctx, eventID)
		return model.Log{}, false, err
	}

	metrics.RecordBallEvent()
	return stored, false, nil
}

// RecordScreenshot attaches a screenshot document to a match's log.
func (s *Service) RecordScreenshot(ctx context.Context, matchID string, userID int, shot model.ScreenshotAttachment) (model.Log, error) {
	if matchID == "" {
		return model.Log{}, fmt.Errorf("matchId is required: %w", ErrValidation)
	}
	if shot.FileName == "" {
		return model.Log{}, fmt.Errorf("fileName is required: %w", ErrValidation)
	}
	if _, err := s.league.GetMatch(ctx, matchID); err != nil {
		return model.Log{}, err
	}

	stored, err := s.logs.Append(ctx, model.Log{
		MatchID:  matchID,
		PlayerID: userID,
		Action:   model.ActionScreenshot,
		Payload:  shot,
	})
	if err != nil {
		return model.Log{}, err
	}
	metrics.RecordScreenshot()
	return stored, nil
}

// DeleteLog removes a log document. Only screenshots are deletable; the
// store rejects everything else with balllog.ErrImmutable.
func (s *Service) DeleteLog(ctx context.Context, id string) error {
	return s.logs.Delete(ctx, id)
}

// RegisterUser creates a user. The caller supplies the password hash.
func (s *Service) RegisterUser(ctx context.Context, u model.User) (model.User, error) {
	return s.league.CreateUser(ctx, u)
}

// UserByEmail returns a user with its password hash for credential checks.
func (s *Service) UserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.league.FindUserByEmail(ctx, email)
}

// UserByID returns one user.
func (s *Service) UserByID(ctx context.Context, id int) (model.User, error) {
	return s.league.FindUserByID(ctx, id)
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.league.ListUsers(ctx)
}

// DeleteUser removes a user.
func (s *Service) DeleteUser(ctx context.Context, id int) error {
	return s.league.DeleteUser(ctx, id)
}

// CreateTeam creates a team with its captain enrolled.
func (s *Service) CreateTeam(ctx context.Context, t model.Team) (model.Team, error) {
	return s.league.CreateTeam(ctx, t)
}

// ListTeams returns all teams.
func (s *Service) ListTeams(ctx context.Context) ([]model.Team, error) {
	return s.league.ListTeams(ctx)
}

// JoinTeam enrolls a user in a team; joining twice is a no-op.
func (s *Service) JoinTeam(ctx context.Context, teamID, userID int) error {
	return s.league.AddTeamMember(ctx, teamID, userID)
}

// TeamMembers returns the user ids enrolled in a team.
func (s *Service) TeamMembers(ctx context.Context, teamID int) ([]int, error) {
	return s.league.TeamMemberIDs(ctx, teamID)
}

// CreateMatch creates a match, assigning an id when the caller omits one.
func (s *Service) CreateMatch(ctx context.Context, m model.Match) (model.Match, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = "scheduled"
	}
	if m.StartsAt.IsZero() {
		m.StartsAt = time.Now().UTC()
	}
	if err := s.league.CreateMatch(ctx, m); err != nil {
		return model.Match{}, err
	}
	return m, nil
}

// GetMatch returns one match.
func (s *Service) GetMatch(ctx context.Context, id string) (model.Match, error) {
	return s.league.GetMatch(ctx, id)
}

// ListMatches returns matches, optionally filtered by status.
func (s *Service) ListMatches(ctx context.Context, status string) ([]model.Match, error) {
	return s.league.ListMatches(ctx, status)
}

// UpdateMatch updates mutable match fields.
func (s *Service) UpdateMatch(ctx context.Context, m model.Match) error {
	return s.league.UpdateMatch(ctx, m)
}

// DeleteMatch removes a match.
func (s *Service) DeleteMatch(ctx context.Context, id string) error {
	return s.league.DeleteMatch(ctx, id)
}

// CreateProduct creates a product.
func (s *Service) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	return s.league.CreateProduct(ctx, p)
}

// ListProducts returns all products.
func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.league.ListProducts(ctx)
}

// UpdateProduct updates a product.
func (s *Service) UpdateProduct(ctx context.Context, p model.Product) error {
	return s.league.UpdateProduct(ctx, p)
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id int) error {
	return s.league.DeleteProduct(ctx, id)
}

// GetStats returns service statistics for monitoring. Store counts are
// best-effort; a failing count is simply omitted.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":            s.started,
		"rankingConcurrency": s.concurrency,
		"dedupeSize":         s.dedupeSize,
	}
	if !s.started {
		return stats
	}

	stats["dedupeTracked"] = s.deduper.Size()
	if n, err := s.league.CountPlayers(ctx); err == nil {
		stats["totalPlayers"] = n
		metrics.UpdatePlayersTracked(n)
	}
	if n, err := s.logs.Count(ctx); err == nil {
		stats["totalLogs"] = n
		metrics.UpdateLogDocumentsTracked(n)
	}
	return stats
}
