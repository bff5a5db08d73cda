package ranking_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/midwicket/pavilion/internal/domain/model"
	"github.com/midwicket/pavilion/internal/domain/ranking"
	"github.com/midwicket/pavilion/internal/domain/types"
)

// fakeSource serves the ScoreSource contract from an in-memory row slice,
// mirroring what the relational store computes in SQL.
type fakeSource struct {
	rows []model.Score
	err  error
}

func (f *fakeSource) GroupedByPlayer(ctx context.Context) ([]ranking.PlayerGroup, error) {
	if f.err != nil {
		return nil, f.err
	}
	byPlayer := map[int]*ranking.PlayerGroup{}
	var order []int
	for _, r := range f.rows {
		g, ok := byPlayer[r.PlayerID]
		if !ok {
			g = &ranking.PlayerGroup{PlayerID: r.PlayerID}
			byPlayer[r.PlayerID] = g
			order = append(order, r.PlayerID)
		}
		g.Runs += r.Runs
		g.Fours += r.Fours
		g.Sixes += r.Sixes
		g.Balls += r.Balls
		g.Extras += r.Extras
		g.Rows++
	}
	out := make([]ranking.PlayerGroup, 0, len(order))
	for _, id := range order {
		out = append(out, *byPlayer[id])
	}
	return out, nil
}

func (f *fakeSource) PlayerTotals(ctx context.Context, playerID int) (ranking.PlayerGroup, error) {
	if f.err != nil {
		return ranking.PlayerGroup{}, f.err
	}
	g := ranking.PlayerGroup{PlayerID: playerID}
	for _, r := range f.rows {
		if r.PlayerID != playerID {
			continue
		}
		g.Runs += r.Runs
		g.Fours += r.Fours
		g.Sixes += r.Sixes
		g.Balls += r.Balls
		g.Extras += r.Extras
		g.Rows++
	}
	return g, nil
}

func (f *fakeSource) CountDotBalls(ctx context.Context, playerID int, normalOnly bool) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, r := range f.rows {
		if r.PlayerID != playerID || r.Runs != 0 || r.Balls == 0 {
			continue
		}
		if normalOnly && r.BallType != model.BallTypeNormal {
			continue
		}
		n++
	}
	return n, nil
}

func (f *fakeSource) CountWickets(ctx context.Context, playerID int) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, r := range f.rows {
		if r.PlayerID == playerID && r.IsOut && r.WicketType != nil {
			n++
		}
	}
	return n, nil
}

func (f *fakeSource) DistinctMatchIDs(ctx context.Context, playerID int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	seen := map[string]bool{}
	var ids []string
	for _, r := range f.rows {
		if r.PlayerID == playerID && !seen[r.MatchID] {
			seen[r.MatchID] = true
			ids = append(ids, r.MatchID)
		}
	}
	return ids, nil
}

func (f *fakeSource) RecentMatches(ctx context.Context, playerID, limit int) ([]types.MatchPerformance, error) {
	if f.err != nil {
		return nil, f.err
	}
	byMatch := map[string]*types.MatchPerformance{}
	var order []string
	for _, r := range f.rows {
		if r.PlayerID != playerID {
			continue
		}
		p, ok := byMatch[r.MatchID]
		if !ok {
			p = &types.MatchPerformance{MatchID: r.MatchID}
			byMatch[r.MatchID] = p
			order = append(order, r.MatchID)
		}
		p.Runs += r.Runs
		p.Balls += r.Balls
		p.Fours += r.Fours
		p.Sixes += r.Sixes
	}
	var out []types.MatchPerformance
	for i := len(order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *byMatch[order[i]])
	}
	return out, nil
}

type fakeDirectory struct {
	players map[int]types.Player
	err     error
}

func (f *fakeDirectory) FindPlayer(ctx context.Context, id int) (*types.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.players[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func strPtr(s string) *string { return &s }

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()

	Convey("Given no score rows", t, func() {
		agg := ranking.New(&fakeSource{}, &fakeDirectory{})

		Convey("the leaderboard is empty, not an error", func() {
			entries, err := agg.Leaderboard(ctx)
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)
		})
	})

	Convey("Given one player with 10 runs off 10 balls in one match", t, func() {
		src := &fakeSource{rows: []model.Score{
			{PlayerID: 1, MatchID: "m1", Runs: 10, Balls: 10, BallType: model.BallTypeNormal},
		}}
		dir := &fakeDirectory{players: map[int]types.Player{
			1: {ID: 1, Name: "Asha", Email: "asha@example.com"},
		}}
		agg := ranking.New(src, dir)

		Convey("the derived statistics match the documented formulas", func() {
			entries, err := agg.Leaderboard(ctx)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 1)

			s := entries[0].Stats
			So(s.StrikeRate, ShouldEqual, 100.00)
			So(s.Average, ShouldEqual, 10.00)
			So(s.BatsmanEarnings, ShouldEqual, 50)
			So(s.BowlerEarnings, ShouldEqual, 0)
			So(s.TotalEarnings, ShouldEqual, 50)
			So(s.Matches, ShouldEqual, 1)
			So(s.DotBalls, ShouldEqual, 0)
		})
	})

	Convey("Given dot-ball candidates of different ball types", t, func() {
		src := &fakeSource{rows: []model.Score{
			{PlayerID: 1, MatchID: "m1", Runs: 0, Balls: 1, BallType: model.BallTypeNormal},
			{PlayerID: 1, MatchID: "m1", Runs: 0, Balls: 1, BallType: model.BallTypeWide},
		}}
		dir := &fakeDirectory{players: map[int]types.Player{1: {ID: 1, Name: "Asha"}}}
		agg := ranking.New(src, dir)

		Convey("only the NORMAL delivery counts on the leaderboard", func() {
			entries, err := agg.Leaderboard(ctx)
			So(err, ShouldBeNil)
			So(entries[0].Stats.DotBalls, ShouldEqual, 1)
		})
	})

	Convey("Given wicket rows with and without a wicket type", t, func() {
		src := &fakeSource{rows: []model.Score{
			{PlayerID: 1, MatchID: "m1", Balls: 1, Runs: 1, IsOut: true, WicketType: strPtr("bowled"), BallType: model.BallTypeNormal},
			{PlayerID: 1, MatchID: "m1", Balls: 1, Runs: 1, IsOut: true, BallType: model.BallTypeNormal},
		}}
		dir := &fakeDirectory{players: map[int]types.Player{1: {ID: 1}}}
		agg := ranking.New(src, dir)

		Convey("only rows with a wicket type are credited", func() {
			entries, err := agg.Leaderboard(ctx)
			So(err, ShouldBeNil)
			So(entries[0].Stats.WicketsTaken, ShouldEqual, 1)
			So(entries[0].Stats.BowlerEarnings, ShouldEqual, 50)
		})
	})

	Convey("Given players with different earnings", t, func() {
		src := &fakeSource{rows: []model.Score{
			{PlayerID: 1, MatchID: "m1", Runs: 10, Balls: 10, BallType: model.BallTypeNormal},
			{PlayerID: 2, MatchID: "m1", Runs: 40, Balls: 20, BallType: model.BallTypeNormal},
			{PlayerID: 3, MatchID: "m1", Runs: 20, Balls: 15, BallType: model.BallTypeNormal},
		}}
		dir := &fakeDirectory{players: map[int]types.Player{
			1: {ID: 1}, 2: {ID: 2}, 3: {ID: 3},
		}}
		agg := ranking.New(src, dir)

		Convey("entries are sorted descending by total earnings", func() {
			entries, err := agg.Leaderboard(ctx)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 3)
			So(entries[0].Player.ID, ShouldEqual, 2)
			So(entries[1].Player.ID, ShouldEqual, 3)
			So(entries[2].Player.ID, ShouldEqual, 1)
		})

		Convey("re-running on unchanged data yields the identical order", func() {
			first, err := agg.Leaderboard(ctx)
			So(err, ShouldBeNil)
			second, err := agg.Leaderboard(ctx)
			So(err, ShouldBeNil)
			So(second, ShouldResemble, first)
		})
	})

	Convey("Given score rows for a player with no directory entry", t, func() {
		src := &fakeSource{rows: []model.Score{
			{PlayerID: 1, MatchID: "m1", Runs: 10, Balls: 10, BallType: model.BallTypeNormal},
			{PlayerID: 99, MatchID: "m1", Runs: 50, Balls: 20, BallType: model.BallTypeNormal},
		}}
		dir := &fakeDirectory{players: map[int]types.Player{1: {ID: 1}}}
		agg := ranking.New(src, dir)

		Convey("the orphaned player is dropped silently", func() {
			entries, err := agg.Leaderboard(ctx)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 1)
			So(entries[0].Player.ID, ShouldEqual, 1)
		})
	})

	Convey("Given a failing score source", t, func() {
		boom := errors.New("connection reset")
		agg := ranking.New(&fakeSource{err: boom}, &fakeDirectory{})

		Convey("the whole computation fails with no partial result", func() {
			entries, err := agg.Leaderboard(ctx)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, boom), ShouldBeTrue)
			So(entries, ShouldBeNil)
		})
	})
}

func TestFormula(t *testing.T) {
	Convey("The earnings formula description is static", t, func() {
		agg := ranking.New(&fakeSource{}, &fakeDirectory{})
		f := agg.Formula()
		So(f.RunValue, ShouldEqual, 5)
		So(f.DotBallValue, ShouldEqual, 5)
		So(f.WicketValue, ShouldEqual, 50)
		So(f.Description, ShouldNotBeEmpty)
	})
}

func TestProfile(t *testing.T) {
	ctx := context.Background()

	Convey("Given a player with boundaries and dot balls across matches", t, func() {
		src := &fakeSource{rows: []model.Score{
			{PlayerID: 1, MatchID: "m1", Runs: 4, Fours: 1, Balls: 1, BallType: model.BallTypeNormal},
			{PlayerID: 1, MatchID: "m1", Runs: 6, Sixes: 1, Balls: 1, BallType: model.BallTypeNormal},
			{PlayerID: 1, MatchID: "m2", Runs: 0, Balls: 1, BallType: model.BallTypeWide},
		}}
		dir := &fakeDirectory{players: map[int]types.Player{1: {ID: 1, Name: "Asha"}}}
		agg := ranking.New(src, dir)

		Convey("the profile uses its own earnings formula", func() {
			p, err := agg.Profile(ctx, 1)
			So(err, ShouldBeNil)
			So(p.Stats.Runs, ShouldEqual, 10)
			So(p.Stats.Fours, ShouldEqual, 1)
			So(p.Stats.Sixes, ShouldEqual, 1)
			So(p.Stats.Matches, ShouldEqual, 2)
			// The profile dot-ball count has no ball-type filter, so the
			// wide with zero runs counts here.
			So(p.Stats.DotBalls, ShouldEqual, 1)
			// 10*5 + 1*50 + 1*100 - 1*5
			So(p.Stats.Earnings, ShouldEqual, 195)
		})

		Convey("recent matches are newest first", func() {
			p, err := agg.Profile(ctx, 1)
			So(err, ShouldBeNil)
			So(p.RecentMatches, ShouldHaveLength, 2)
			So(p.RecentMatches[0].MatchID, ShouldEqual, "m2")
		})
	})

	Convey("Given more matches than the recent limit", t, func() {
		var rows []model.Score
		for i := 0; i < 15; i++ {
			rows = append(rows, model.Score{
				PlayerID: 1,
				MatchID:  string(rune('a' + i)),
				Runs:     1, Balls: 1,
				BallType: model.BallTypeNormal,
			})
		}
		src := &fakeSource{rows: rows}
		dir := &fakeDirectory{players: map[int]types.Player{1: {ID: 1}}}
		agg := ranking.New(src, dir)

		Convey("the profile caps the list at 10", func() {
			p, err := agg.Profile(ctx, 1)
			So(err, ShouldBeNil)
			So(p.RecentMatches, ShouldHaveLength, 10)
		})
	})

	Convey("Given an unknown player", t, func() {
		agg := ranking.New(&fakeSource{}, &fakeDirectory{})

		Convey("the profile fails with ErrPlayerNotFound", func() {
			_, err := agg.Profile(ctx, 42)
			So(errors.Is(err, ranking.ErrPlayerNotFound), ShouldBeTrue)
		})
	})
}
