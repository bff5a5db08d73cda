package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/midwicket/pavilion/internal/adapters/repository/balllog"
	"github.com/midwicket/pavilion/internal/adapters/repository/league"
	"github.com/midwicket/pavilion/internal/auth"
	"github.com/midwicket/pavilion/internal/domain/model"
	"github.com/midwicket/pavilion/internal/domain/ranking"
	"github.com/midwicket/pavilion/internal/domain/types"
	"github.com/midwicket/pavilion/pkg/logger"
)

func init() {
	_ = logger.Init()
}

// fakeLeague is an in-memory LeagueStore.
type fakeLeague struct {
	users       map[int]model.User
	matches     map[string]model.Match
	scores      []model.Score
	insertErr   error
	nextScoreID int
}

func newFakeLeague() *fakeLeague {
	return &fakeLeague{
		users:   map[int]model.User{},
		matches: map[string]model.Match{},
	}
}

func (f *fakeLeague) rowsFor(playerID int) []model.Score {
	var out []model.Score
	for _, sc := range f.scores {
		if sc.PlayerID == playerID {
			out = append(out, sc)
		}
	}
	return out
}

func (f *fakeLeague) GroupedByPlayer(context.Context) ([]ranking.PlayerGroup, error) {
	byPlayer := map[int]*ranking.PlayerGroup{}
	for _, sc := range f.scores {
		g, ok := byPlayer[sc.PlayerID]
		if !ok {
			g = &ranking.PlayerGroup{PlayerID: sc.PlayerID}
			byPlayer[sc.PlayerID] = g
		}
		g.Runs += sc.Runs
		g.Fours += sc.Fours
		g.Sixes += sc.Sixes
		g.Balls += sc.Balls
		g.Extras += sc.Extras
		g.Rows++
	}
	var out []ranking.PlayerGroup
	for _, g := range byPlayer {
		out = append(out, *g)
	}
	return out, nil
}

func (f *fakeLeague) PlayerTotals(_ context.Context, playerID int) (ranking.PlayerGroup, error) {
	g := ranking.PlayerGroup{PlayerID: playerID}
	for _, sc := range f.rowsFor(playerID) {
		g.Runs += sc.Runs
		g.Fours += sc.Fours
		g.Sixes += sc.Sixes
		g.Balls += sc.Balls
		g.Extras += sc.Extras
		g.Rows++
	}
	return g, nil
}

func (f *fakeLeague) CountDotBalls(_ context.Context, playerID int, normalOnly bool) (int, error) {
	n := 0
	for _, sc := range f.rowsFor(playerID) {
		if sc.Runs == 0 && sc.Balls > 0 && (!normalOnly || sc.BallType == model.BallTypeNormal) {
			n++
		}
	}
	return n, nil
}

func (f *fakeLeague) CountWickets(_ context.Context, playerID int) (int, error) {
	n := 0
	for _, sc := range f.rowsFor(playerID) {
		if sc.IsOut && sc.WicketType != nil {
			n++
		}
	}
	return n, nil
}

func (f *fakeLeague) DistinctMatchIDs(_ context.Context, playerID int) ([]string, error) {
	seen := map[string]struct{}{}
	for _, sc := range f.rowsFor(playerID) {
		seen[sc.MatchID] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeLeague) RecentMatches(ctx context.Context, playerID, limit int) ([]types.MatchPerformance, error) {
	ids, _ := f.DistinctMatchIDs(ctx, playerID)
	var out []types.MatchPerformance
	for _, id := range ids {
		p := types.MatchPerformance{MatchID: id}
		for _, sc := range f.rowsFor(playerID) {
			if sc.MatchID == id {
				p.Runs += sc.Runs
				p.Balls += sc.Balls
				p.Fours += sc.Fours
				p.Sixes += sc.Sixes
			}
		}
		out = append(out, p)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLeague) FindPlayer(_ context.Context, id int) (*types.Player, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &types.Player{ID: u.ID, Name: u.Name, Email: u.Email}, nil
}

func (f *fakeLeague) CreateUser(_ context.Context, u model.User) (model.User, error) {
	u.ID = len(f.users) + 1
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeLeague) FindUserByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, league.ErrNotFound
}

func (f *fakeLeague) FindUserByID(_ context.Context, id int) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, league.ErrNotFound
	}
	return u, nil
}

func (f *fakeLeague) ListUsers(context.Context) ([]model.User, error) { return nil, nil }
func (f *fakeLeague) DeleteUser(context.Context, int) error           { return nil }

func (f *fakeLeague) CountPlayers(context.Context) (int, error) {
	seen := map[int]struct{}{}
	for _, sc := range f.scores {
		seen[sc.PlayerID] = struct{}{}
	}
	return len(seen), nil
}

func (f *fakeLeague) CreateTeam(_ context.Context, t model.Team) (model.Team, error) {
	return t, nil
}
func (f *fakeLeague) ListTeams(context.Context) ([]model.Team, error) { return nil, nil }
func (f *fakeLeague) AddTeamMember(context.Context, int, int) error   { return nil }
func (f *fakeLeague) TeamMemberIDs(context.Context, int) ([]int, error) {
	return nil, nil
}

func (f *fakeLeague) CreateMatch(_ context.Context, m model.Match) error {
	f.matches[m.ID] = m
	return nil
}

func (f *fakeLeague) GetMatch(_ context.Context, id string) (model.Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return model.Match{}, fmt.Errorf("match %s: %w", id, league.ErrNotFound)
	}
	return m, nil
}

func (f *fakeLeague) ListMatches(context.Context, string) ([]model.Match, error) { return nil, nil }
func (f *fakeLeague) UpdateMatch(context.Context, model.Match) error             { return nil }
func (f *fakeLeague) DeleteMatch(context.Context, string) error                  { return nil }

func (f *fakeLeague) CreateProduct(_ context.Context, p model.Product) (model.Product, error) {
	return p, nil
}
func (f *fakeLeague) ListProducts(context.Context) ([]model.Product, error) { return nil, nil }
func (f *fakeLeague) UpdateProduct(context.Context, model.Product) error    { return nil }
func (f *fakeLeague) DeleteProduct(context.Context, int) error              { return nil }

func (f *fakeLeague) InsertScore(_ context.Context, sc model.Score) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextScoreID++
	sc.ID = f.nextScoreID
	f.scores = append(f.scores, sc)
	return nil
}

// fakeLogs is an in-memory LogStore.
type fakeLogs struct {
	logs      []model.Log
	appendErr error
	nextID    int
}

func (f *fakeLogs) Append(_ context.Context, l model.Log) (model.Log, error) {
	if f.appendErr != nil {
		return model.Log{}, f.appendErr
	}
	f.nextID++
	l.ID = fmt.Sprintf("log-%d", f.nextID)
	f.logs = append(f.logs, l)
	return l, nil
}

func (f *fakeLogs) ByMatch(_ context.Context, matchID string, order balllog.SortOrder, over *int, limit int) ([]model.Log, error) {
	var out []model.Log
	for _, l := range f.logs {
		if l.MatchID != matchID {
			continue
		}
		if over != nil && l.Over != *over {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Over != out[j].Over {
			if order == balllog.Descending {
				return out[i].Over > out[j].Over
			}
			return out[i].Over < out[j].Over
		}
		if order == balllog.Descending {
			return out[i].Ball > out[j].Ball
		}
		return out[i].Ball < out[j].Ball
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLogs) Get(_ context.Context, id string) (model.Log, error) {
	for _, l := range f.logs {
		if l.ID == id {
			return l, nil
		}
	}
	return model.Log{}, fmt.Errorf("log %s: %w", id, balllog.ErrNotFound)
}

func (f *fakeLogs) Delete(_ context.Context, id string) error {
	for i, l := range f.logs {
		if l.ID == id {
			if l.Action != model.ActionScreenshot {
				return fmt.Errorf("log %s: %w", id, balllog.ErrImmutable)
			}
			f.logs = append(f.logs[:i], f.logs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("log %s: %w", id, balllog.ErrNotFound)
}

func (f *fakeLogs) Count(context.Context) (int, error) { return len(f.logs), nil }

func startService(t *testing.T, lg *fakeLeague, logs *fakeLogs, opts ...Option) *Service {
	t.Helper()
	opts = append(opts, WithLeagueStore(lg), WithLogStore(logs))
	s := New(opts...)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func TestGetLogsByMatch(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		lg := newFakeLeague()
		logs := &fakeLogs{}
		s := startService(t, lg, logs)

		Convey("an empty matchID fails validation before data access", func() {
			_, err := s.GetLogsByMatch(ctx, "")
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
		})

		Convey("a match with no documents yields zero stats and an empty slice", func() {
			got, err := s.GetLogsByMatch(ctx, "m1")
			So(err, ShouldBeNil)
			So(got.Logs, ShouldNotBeNil)
			So(got.Logs, ShouldBeEmpty)
			So(got.TotalLogs, ShouldEqual, 0)
			So(got.Stats.LastBall, ShouldBeNil)
		})

		Convey("stats derive from the stored documents", func() {
			lg.matches["m1"] = model.Match{ID: "m1"}
			for i, runs := range []int{4, 0, 6} {
				_, _, err := s.RecordBall(ctx, BallSubmission{
					EventID: fmt.Sprintf("e%d", i), MatchID: "m1", PlayerID: 3,
					Over: 0, Ball: i + 1, Runs: runs, Balls: 1,
				})
				So(err, ShouldBeNil)
			}

			got, err := s.GetLogsByMatch(ctx, "m1")
			So(err, ShouldBeNil)
			So(got.TotalLogs, ShouldEqual, 3)
			So(got.Stats.TotalRuns, ShouldEqual, 10)
			So(got.Stats.Boundaries, ShouldEqual, 1)
			So(got.Stats.Sixes, ShouldEqual, 1)
			So(got.Stats.LastBall, ShouldNotBeNil)
			So(got.Stats.LastBall.Runs, ShouldEqual, 6)
		})
	})
}

func TestRecordBall(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service with one match", t, func() {
		lg := newFakeLeague()
		lg.matches["m1"] = model.Match{ID: "m1"}
		logs := &fakeLogs{}
		s := startService(t, lg, logs)

		sub := BallSubmission{EventID: "e1", MatchID: "m1", PlayerID: 3, Runs: 4, Balls: 1}

		Convey("a ball lands in both stores", func() {
			stored, dup, err := s.RecordBall(ctx, sub)
			So(err, ShouldBeNil)
			So(dup, ShouldBeFalse)
			So(stored.ID, ShouldNotBeEmpty)
			So(lg.scores, ShouldHaveLength, 1)
			So(logs.logs, ShouldHaveLength, 1)

			payload, ok := logs.logs[0].Payload.(model.ScoreEvent)
			So(ok, ShouldBeTrue)
			So(payload.BatterID, ShouldEqual, 3)
			So(payload.BallType, ShouldEqual, model.BallTypeNormal)

			Convey("and resubmitting the same event id is absorbed", func() {
				_, dup, err := s.RecordBall(ctx, sub)
				So(err, ShouldBeNil)
				So(dup, ShouldBeTrue)
				So(lg.scores, ShouldHaveLength, 1)
				So(logs.logs, ShouldHaveLength, 1)
			})
		})

		Convey("an unknown match is rejected before any write", func() {
			bad := sub
			bad.MatchID = "nope"
			_, _, err := s.RecordBall(ctx, bad)
			So(errors.Is(err, league.ErrNotFound), ShouldBeTrue)
			So(lg.scores, ShouldBeEmpty)
		})

		Convey("negative counters fail validation", func() {
			bad := sub
			bad.Runs = -1
			_, _, err := s.RecordBall(ctx, bad)
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
		})

		Convey("a score-store failure unrecords the event id so a retry works", func() {
			lg.insertErr = errors.New("boom")
			_, _, err := s.RecordBall(ctx, sub)
			So(err, ShouldNotBeNil)

			lg.insertErr = nil
			_, dup, err := s.RecordBall(ctx, sub)
			So(err, ShouldBeNil)
			So(dup, ShouldBeFalse)
		})

		Convey("a log-store failure also unrecords the event id", func() {
			logs.appendErr = errors.New("disk full")
			_, _, err := s.RecordBall(ctx, sub)
			So(err, ShouldNotBeNil)

			logs.appendErr = nil
			_, dup, err := s.RecordBall(ctx, sub)
			So(err, ShouldBeNil)
			So(dup, ShouldBeFalse)
		})
	})
}

func TestCommentaryPaging(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a small commentary page size", t, func() {
		lg := newFakeLeague()
		lg.matches["m1"] = model.Match{ID: "m1"}
		logs := &fakeLogs{}
		s := startService(t, lg, logs, WithCommentaryLimits(2, 3))

		for i := 0; i < 5; i++ {
			_, _, err := s.RecordBall(ctx, BallSubmission{
				EventID: fmt.Sprintf("e%d", i), MatchID: "m1", PlayerID: 3,
				Over: i, Ball: 1, Runs: 1, Balls: 1,
			})
			So(err, ShouldBeNil)
		}

		Convey("an empty matchID fails validation", func() {
			_, err := s.GetBallByBallCommentary(ctx, "", nil, 0)
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
		})

		Convey("a zero limit falls back to the default and serves latest first", func() {
			entries, err := s.GetBallByBallCommentary(ctx, "m1", nil, 0)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 2)
			So(entries[0].Over, ShouldEqual, 4)
		})

		Convey("an oversized limit is capped", func() {
			entries, err := s.GetBallByBallCommentary(ctx, "m1", nil, 50)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 3)
		})

		Convey("the over filter narrows the feed", func() {
			over := 2
			entries, err := s.GetBallByBallCommentary(ctx, "m1", &over, 0)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 1)
			So(entries[0].Over, ShouldEqual, 2)
		})
	})
}

func TestScreenshots(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service with one match", t, func() {
		lg := newFakeLeague()
		lg.matches["m1"] = model.Match{ID: "m1"}
		logs := &fakeLogs{}
		s := startService(t, lg, logs)

		Convey("a screenshot needs a file name", func() {
			_, err := s.RecordScreenshot(ctx, "m1", 3, model.ScreenshotAttachment{})
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
		})

		Convey("a recorded screenshot can be deleted, a ball cannot", func() {
			shot, err := s.RecordScreenshot(ctx, "m1", 3, model.ScreenshotAttachment{FileName: "s.png"})
			So(err, ShouldBeNil)

			ball, _, err := s.RecordBall(ctx, BallSubmission{EventID: "e1", MatchID: "m1", PlayerID: 3, Balls: 1})
			So(err, ShouldBeNil)

			So(s.DeleteLog(ctx, shot.ID), ShouldBeNil)
			So(errors.Is(s.DeleteLog(ctx, ball.ID), balllog.ErrImmutable), ShouldBeTrue)
		})
	})
}

func TestRankingsThroughService(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with scores for known players", t, func() {
		lg := newFakeLeague()
		lg.users[3] = model.User{ID: 3, Name: "Asha", Email: "asha@club.example"}
		lg.matches["m1"] = model.Match{ID: "m1"}
		logs := &fakeLogs{}
		s := startService(t, lg, logs)

		Convey("an empty league yields an empty rankings slice, never null", func() {
			got, err := s.GetPlayerRankings(ctx)
			So(err, ShouldBeNil)
			So(got.Rankings, ShouldNotBeNil)
			So(got.Rankings, ShouldBeEmpty)
			So(got.EarningsFormula.RunValue, ShouldEqual, 5)
		})

		Convey("recorded balls surface in the rankings", func() {
			_, _, err := s.RecordBall(ctx, BallSubmission{
				EventID: "e1", MatchID: "m1", PlayerID: 3, Runs: 10, Balls: 10,
			})
			So(err, ShouldBeNil)

			got, err := s.GetPlayerRankings(ctx)
			So(err, ShouldBeNil)
			So(got.Rankings, ShouldHaveLength, 1)
			So(got.Rankings[0].Player.Name, ShouldEqual, "Asha")
			So(got.Rankings[0].Stats.TotalEarnings, ShouldEqual, 50)
		})
	})
}

func TestCreateMatchDefaults(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		lg := newFakeLeague()
		s := startService(t, lg, &fakeLogs{})

		Convey("a match without an id gets one assigned with defaults", func() {
			m, err := s.CreateMatch(ctx, model.Match{Title: "Final"})
			So(err, ShouldBeNil)
			So(m.ID, ShouldNotBeEmpty)
			So(m.Status, ShouldEqual, "scheduled")
			So(m.StartsAt.IsZero(), ShouldBeFalse)
		})
	})
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service with some data", t, func() {
		lg := newFakeLeague()
		lg.matches["m1"] = model.Match{ID: "m1"}
		logs := &fakeLogs{}
		s := startService(t, lg, logs)

		_, _, err := s.RecordBall(ctx, BallSubmission{EventID: "e1", MatchID: "m1", PlayerID: 3, Balls: 1})
		So(err, ShouldBeNil)

		stats := s.GetStats(ctx)
		So(stats["started"], ShouldBeTrue)
		So(stats["totalPlayers"], ShouldEqual, 1)
		So(stats["totalLogs"], ShouldEqual, 1)
	})
}

func TestAdminBootstrap(t *testing.T) {
	ctx := context.Background()

	Convey("Given admin bootstrap configuration", t, func() {
		lg := newFakeLeague()
		startService(t, lg, &fakeLogs{}, WithAdminBootstrap("admin@example.com", "hunter2hunter2"))

		Convey("Then the admin account is provisioned", func() {
			u, err := lg.FindUserByEmail(ctx, "admin@example.com")
			So(err, ShouldBeNil)
			So(u.Role, ShouldEqual, auth.RoleAdmin)
			So(auth.CheckPassword(u.PasswordHash, "hunter2hunter2"), ShouldBeTrue)
		})

		Convey("And a second start does not duplicate it", func() {
			startService(t, lg, &fakeLogs{}, WithAdminBootstrap("admin@example.com", "hunter2hunter2"))
			So(len(lg.users), ShouldEqual, 1)
		})
	})

	Convey("Given no admin configuration", t, func() {
		lg := newFakeLeague()
		startService(t, lg, &fakeLogs{})

		Convey("Then no account is created", func() {
			So(len(lg.users), ShouldEqual, 0)
		})
	})
}
