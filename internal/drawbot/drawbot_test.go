package drawbot

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/circularity/internal/adapters/http/api"
	service "github.com/okian/circularity/internal/app"
	"github.com/okian/circularity/internal/domain/geometry"
	"github.com/okian/circularity/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestServer() (*httptest.Server, *service.Service) {
	svc := service.New(service.WithLogger(logger.Nop()))
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	return httptest.NewServer(mux), svc
}

func testConfig(url string) *Config {
	return &Config{
		BaseURL:      url,
		Players:      24,
		Attempts:     3,
		TopN:         10,
		Workers:      4,
		Timeout:      5 * time.Second,
		EventsRatio:  0.25,
		Seed:         42,
		Canvas:       Canvas{Width: 800, Height: 600},
		HealthWait:   time.Second,
		ResubmitLast: true,
	}
}

func TestRun(t *testing.T) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		t.Fatal(err)
	}

	Convey("Given a running circularity server", t, func() {
		srv, svc := newTestServer()
		defer srv.Close()
		ctx := context.Background()

		Convey("When the drawbot plays against it", func() {
			cfg := testConfig(srv.URL)
			cfg.OutputFile = filepath.Join(t.TempDir(), "players.json")
			err := Run(ctx, cfg)

			Convey("Then ranks and the leaderboard verify", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["activeSessions"], ShouldEqual, cfg.Players)
				So(stats["duplicateStrokes"], ShouldBeGreaterThan, 0)
				So(cfg.OutputFile, ShouldNotBeBlank)
			})
		})

		Convey("When cleanup is requested", func() {
			cfg := testConfig(srv.URL)
			cfg.Cleanup = true
			So(Run(ctx, cfg), ShouldBeNil)

			Convey("Then every session is gone", func() {
				So(svc.GetStats()["activeSessions"], ShouldEqual, 0)
				top, err := svc.TopN(ctx, 10)
				So(err, ShouldBeNil)
				So(top, ShouldBeEmpty)
			})
		})
	})

	Convey("Given no server", t, func() {
		cfg := testConfig("http://127.0.0.1:1")
		cfg.HealthWait = 0

		Convey("Then the health check fails", func() {
			So(Run(context.Background(), cfg), ShouldNotBeNil)
		})
	})
}

func TestGeneratePlayers(t *testing.T) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		t.Fatal(err)
	}

	Convey("Given a fixed seed", t, func() {
		cfg := testConfig("")
		a, err := generatePlayers(context.Background(), cfg, &Stats{})
		So(err, ShouldBeNil)
		b, err := generatePlayers(context.Background(), cfg, &Stats{})
		So(err, ShouldBeNil)

		Convey("Then the players are reproducible", func() {
			So(a, ShouldResemble, b)
			So(len(a), ShouldEqual, cfg.Players)
		})
	})

	Convey("Given no players", t, func() {
		cfg := testConfig("")
		cfg.Players = 0
		_, err := generatePlayers(context.Background(), cfg, &Stats{})
		So(err, ShouldNotBeNil)
	})
}

func TestDrawAttempt(t *testing.T) {
	Convey("Given a canvas center", t, func() {
		canvas := Canvas{Width: 800, Height: 600}
		center := geometry.Pt(400, 300)

		Convey("Then skilled strokes enclose the center", func() {
			for _, skill := range []Skill{SkillElite, SkillGood, SkillAverage, SkillPoor} {
				stroke, elapsed := drawAttempt(Player{Skill: skill, Seed: 7}, center, canvas, 0)
				So(len(stroke), ShouldEqual, strokeSamples)
				So(elapsed, ShouldBeGreaterThanOrEqualTo, minDurationMs)
				So(geometry.PointInPolygon(center, stroke), ShouldBeTrue)
			}
		})

		Convey("Then misses leave the center outside", func() {
			stroke, _ := drawAttempt(Player{Skill: SkillMiss, Seed: 7}, center, canvas, 0)
			So(geometry.PointInPolygon(center, stroke), ShouldBeFalse)
		})

		Convey("Then the same attempt is reproducible", func() {
			p := Player{Skill: SkillAverage, Seed: 99}
			a, _ := drawAttempt(p, center, canvas, 2)
			b, _ := drawAttempt(p, center, canvas, 2)
			So(a, ShouldResemble, b)
		})
	})
}

func TestVerifyLeaderboardConsistency(t *testing.T) {
	Convey("Given players sorted by best", t, func() {
		sorted := []Player{{SessionID: "a", Best: 90}, {SessionID: "b", Best: 80}, {SessionID: "c", Best: 80}}

		Convey("Then a competition-ranked board verifies", func() {
			board := []Entry{{1, "a", 90}, {2, "b", 80}, {2, "c", 80}}
			So(verifyLeaderboardConsistency(sorted, board, 10), ShouldBeNil)
		})

		Convey("Then an unsorted board fails", func() {
			board := []Entry{{1, "b", 80}, {2, "a", 90}, {3, "c", 80}}
			So(verifyLeaderboardConsistency(sorted, board, 10), ShouldNotBeNil)
		})

		Convey("Then ties with different ranks fail", func() {
			board := []Entry{{1, "a", 90}, {2, "b", 80}, {3, "c", 80}}
			So(verifyLeaderboardConsistency(sorted, board, 10), ShouldNotBeNil)
		})

		Convey("Then a short board fails", func() {
			So(verifyLeaderboardConsistency(sorted, []Entry{{1, "a", 90}}, 10), ShouldNotBeNil)
		})

		Convey("Then ranks better than possible fail", func() {
			errs := verifyRankings(sorted, map[string]Entry{
				"a": {1, "a", 90}, "b": {1, "b", 80}, "c": {2, "c", 80},
			})
			So(len(errs), ShouldEqual, 1)
		})
	})
}
