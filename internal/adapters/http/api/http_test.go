package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/circularity/internal/adapters/http/api"
	service "github.com/okian/circularity/internal/app"
	"github.com/okian/circularity/internal/domain/geometry"
	"github.com/okian/circularity/internal/domain/scoring"
	"github.com/okian/circularity/internal/domain/types"
	"github.com/okian/circularity/internal/strokegen"
	. "github.com/smartystreets/goconvey/convey"
)

type snapshotBody struct {
	ID         string          `json:"id"`
	State      string          `json:"state"`
	Difficulty scoring.Profile `json:"difficulty"`
	Center     geometry.Point  `json:"center"`
	Best       float64         `json:"best"`
	Attempts   int             `json:"attempts"`
}

type verdictBody struct {
	Outcome   string  `json:"outcome"`
	Accuracy  float64 `json:"accuracy"`
	Final     float64 `json:"final_score"`
	HighScore bool    `json:"high_score"`
	Best      float64 `json:"best"`
	Message   string  `json:"message"`
	Status    string  `json:"status"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newMux(opts ...api.ServerOption) (*http.ServeMux, *service.Service) {
	svc := service.New()
	mux := http.NewServeMux()
	api.NewServer(svc, opts...).Register(context.Background(), mux)
	return mux, svc
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder, v any) {
	So(json.Unmarshal(w.Body.Bytes(), v), ShouldBeNil)
}

func createSession(mux http.Handler, body string) snapshotBody {
	w := do(mux, http.MethodPost, "/sessions", body)
	So(w.Code, ShouldEqual, http.StatusCreated)
	var snap snapshotBody
	decode(w, &snap)
	return snap
}

func strokeBody(id string, pts []geometry.Point, elapsed float64) string {
	raw, _ := json.Marshal(map[string]any{"stroke_id": id, "points": pts, "elapsed_ms": elapsed})
	return string(raw)
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux, _ := newMux()

		Convey("Health returns JSON by default", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Health returns Prometheus text when asked", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("Accept", "text/plain")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "circularity_")
		})

		Convey("Stats are served", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]any
			decode(w, &stats)
			So(stats, ShouldContainKey, "activeSessions")
			So(stats["defaultDifficulty"], ShouldEqual, scoring.Medium)
		})

		Convey("Difficulties are listed from easiest to hardest", func() {
			w := do(mux, http.MethodGet, "/difficulties", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var profiles []scoring.Profile
			decode(w, &profiles)
			So(len(profiles), ShouldEqual, 3)
			So(profiles[0].Name, ShouldEqual, scoring.Easy)
			So(profiles[2].Name, ShouldEqual, scoring.Hard)
		})

		Convey("Unknown paths are not found", func() {
			w := do(mux, http.MethodGet, "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Wrong methods are rejected", func() {
			w := do(mux, http.MethodGet, "/score", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestSessionsHandler(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux, _ := newMux()

		Convey("When a session is created without a body", func() {
			snap := createSession(mux, "")

			Convey("Then it is idle with the defaults", func() {
				So(snap.ID, ShouldNotBeEmpty)
				So(snap.State, ShouldEqual, "idle")
				So(snap.Difficulty.Name, ShouldEqual, scoring.Medium)
			})

			Convey("And it can be fetched", func() {
				w := do(mux, http.MethodGet, "/sessions/"+snap.ID, "")
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And it can be deleted once", func() {
				So(do(mux, http.MethodDelete, "/sessions/"+snap.ID, "").Code, ShouldEqual, http.StatusNoContent)
				So(do(mux, http.MethodDelete, "/sessions/"+snap.ID, "").Code, ShouldEqual, http.StatusNotFound)
				So(do(mux, http.MethodGet, "/sessions/"+snap.ID, "").Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When a session is created with a difficulty and canvas", func() {
			snap := createSession(mux, `{"difficulty":"hard","width":300,"height":200}`)

			Convey("Then the center follows the canvas", func() {
				So(snap.Difficulty.Name, ShouldEqual, scoring.Hard)
				So(snap.Center, ShouldResemble, geometry.Pt(150, 100))
			})

			Convey("And the difficulty can be changed", func() {
				w := do(mux, http.MethodPut, "/sessions/"+snap.ID+"/difficulty", `{"difficulty":"easy"}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				var got snapshotBody
				decode(w, &got)
				So(got.Difficulty.Name, ShouldEqual, scoring.Easy)
			})

			Convey("And an unknown difficulty is a bad request", func() {
				w := do(mux, http.MethodPut, "/sessions/"+snap.ID+"/difficulty", `{"difficulty":"nightmare"}`)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var e errorBody
				decode(w, &e)
				So(e.Code, ShouldEqual, "bad_request")
			})

			Convey("And the canvas can be resized", func() {
				w := do(mux, http.MethodPut, "/sessions/"+snap.ID+"/canvas", `{"width":1000,"height":500}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				var got snapshotBody
				decode(w, &got)
				So(got.Center, ShouldResemble, geometry.Pt(500, 250))
			})

			Convey("And a zero canvas is rejected", func() {
				w := do(mux, http.MethodPut, "/sessions/"+snap.ID+"/canvas", `{"width":0,"height":500}`)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("And it can be reset", func() {
				w := do(mux, http.MethodPost, "/sessions/"+snap.ID+"/reset", "")
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the request body is malformed", func() {
			w := do(mux, http.MethodPost, "/sessions", `{"difficulty":`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the request has unknown fields", func() {
			w := do(mux, http.MethodPost, "/sessions", `{"level":"hard"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the difficulty is unknown", func() {
			w := do(mux, http.MethodPost, "/sessions", `{"difficulty":"extreme"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestEventsHandler(t *testing.T) {
	Convey("Given a session on a 400x400 canvas", t, func() {
		mux, _ := newMux()
		snap := createSession(mux, `{"width":400,"height":400}`)
		path := "/sessions/" + snap.ID + "/events"

		Convey("When a circle is drawn with pointer events", func() {
			samples := strokegen.Timed(strokegen.Circle(snap.Center, 120, 120), 0, 1500)
			first := samples[0]
			w := do(mux, http.MethodPost, path, fmt.Sprintf(`{"type":"down","x":%g,"y":%g,"t":%g}`, first.X, first.Y, first.T))
			So(w.Code, ShouldEqual, http.StatusAccepted)
			for _, s := range samples[1:] {
				w = do(mux, http.MethodPost, path, fmt.Sprintf(`{"type":"move","x":%g,"y":%g,"t":%g}`, s.X, s.Y, s.T))
				So(w.Code, ShouldEqual, http.StatusAccepted)
			}
			w = do(mux, http.MethodPost, path, `{"type":"up","t":1500}`)

			Convey("Then the release carries a verdict", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Status  string      `json:"status"`
					Verdict verdictBody `json:"verdict"`
				}
				decode(w, &resp)
				So(resp.Status, ShouldEqual, "scored")
				So(resp.Verdict.Outcome, ShouldEqual, string(scoring.OutcomeScored))
				So(resp.Verdict.Final, ShouldBeGreaterThan, 0)
				So(resp.Verdict.HighScore, ShouldBeTrue)
			})

			Convey("And the session is ranked", func() {
				w := do(mux, http.MethodGet, "/sessions/"+snap.ID+"/rank", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var e types.Entry
				decode(w, &e)
				So(e.Rank, ShouldEqual, 1)
				So(e.SessionID, ShouldEqual, snap.ID)
			})
		})

		Convey("When the gesture ends without starting", func() {
			w := do(mux, http.MethodPost, path, `{"type":"up","t":10}`)

			Convey("Then the state conflict is reported", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				var e errorBody
				decode(w, &e)
				So(e.Code, ShouldEqual, "wrong_state")
			})
		})

		Convey("When the pointer kind is unknown", func() {
			w := do(mux, http.MethodPost, path, `{"type":"hover","x":1,"y":1,"t":0}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the session does not exist", func() {
			w := do(mux, http.MethodPost, "/sessions/missing/events", `{"type":"down","x":1,"y":1,"t":0}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When a session has never scored", func() {
			w := do(mux, http.MethodGet, "/sessions/"+snap.ID+"/rank", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestStrokesHandler(t *testing.T) {
	Convey("Given a session on a 400x400 canvas", t, func() {
		mux, _ := newMux()
		snap := createSession(mux, `{"width":400,"height":400}`)
		path := "/sessions/" + snap.ID + "/strokes"

		Convey("When a stroke id is submitted twice", func() {
			body := strokeBody("s-1", strokegen.Circle(snap.Center, 100, 90), 1200)
			first := do(mux, http.MethodPost, path, body)
			second := do(mux, http.MethodPost, path, body)

			Convey("Then only the first is scored", func() {
				So(first.Code, ShouldEqual, http.StatusOK)
				var v verdictBody
				decode(first, &v)
				So(v.Outcome, ShouldEqual, string(scoring.OutcomeScored))

				So(second.Code, ShouldEqual, http.StatusOK)
				var dup verdictBody
				decode(second, &dup)
				So(dup.Status, ShouldEqual, "duplicate")
			})
		})

		Convey("When the loop misses the dot", func() {
			body := strokeBody("", strokegen.Circle(geometry.Pt(40, 40), 20, 60), 900)
			w := do(mux, http.MethodPost, path, body)

			Convey("Then the player is told why", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var v verdictBody
				decode(w, &v)
				So(v.Outcome, ShouldEqual, string(scoring.OutcomeNotEnclosed))
				So(v.Final, ShouldEqual, 0)
				So(v.Message, ShouldNotBeEmpty)
			})
		})

		Convey("When the stroke is empty", func() {
			w := do(mux, http.MethodPost, path, `{"stroke_id":"x","points":[],"elapsed_ms":10}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestScoreHandler(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux, _ := newMux()

		Convey("When a circle around the center is scored", func() {
			raw, _ := json.Marshal(map[string]any{
				"points":     strokegen.Circle(geometry.Pt(0, 0), 50, 120),
				"center":     geometry.Pt(0, 0),
				"difficulty": "easy",
				"elapsed_ms": 1000,
			})
			w := do(mux, http.MethodPost, "/score", string(raw))

			Convey("Then a near-perfect accuracy is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var v verdictBody
				decode(w, &v)
				So(v.Outcome, ShouldEqual, string(scoring.OutcomeScored))
				So(v.Accuracy, ShouldBeGreaterThan, 95)
			})
		})

		Convey("When the center is missing", func() {
			w := do(mux, http.MethodPost, "/score", `{"points":[{"x":1,"y":1}],"elapsed_ms":10}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the difficulty is unknown", func() {
			w := do(mux, http.MethodPost, "/score", `{"points":[{"x":1,"y":1}],"center":{"x":0,"y":0},"difficulty":"x"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestLeaderboardHandler(t *testing.T) {
	Convey("Given three sessions with scores", t, func() {
		mux, _ := newMux(api.WithMaxLeaderboardLimit(5))
		for i, r := range []float64{60, 100, 140} {
			snap := createSession(mux, `{"width":400,"height":400}`)
			pts := strokegen.Jitter(strokegen.Circle(snap.Center, r, 120), snap.Center, float64(i*6), int64(i+1))
			w := do(mux, http.MethodPost, "/sessions/"+snap.ID+"/strokes", strokeBody("", pts, 1000))
			So(w.Code, ShouldEqual, http.StatusOK)
		}

		Convey("When no limit is given", func() {
			w := do(mux, http.MethodGet, "/leaderboard", "")

			Convey("Then every entry is returned in rank order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var entries []types.Entry
				decode(w, &entries)
				So(len(entries), ShouldEqual, 3)
				So(entries[0].Rank, ShouldEqual, 1)
				for i := 1; i < len(entries); i++ {
					So(entries[i].Score, ShouldBeLessThanOrEqualTo, entries[i-1].Score)
				}
			})
		})

		Convey("When the limit is smaller than the board", func() {
			w := do(mux, http.MethodGet, "/leaderboard?limit=2", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var entries []types.Entry
			decode(w, &entries)
			So(len(entries), ShouldEqual, 2)
		})

		Convey("When the limit is invalid", func() {
			So(do(mux, http.MethodGet, "/leaderboard?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/leaderboard?limit=abc", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the maximum", func() {
			w := do(mux, http.MethodGet, "/leaderboard?limit=6", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			var e errorBody
			decode(w, &e)
			So(e.Code, ShouldEqual, "limit_exceeded")
		})
	})
}
