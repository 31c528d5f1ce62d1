package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGetErrorType(t *testing.T) {
	Convey("Given error status codes", t, func() {
		Convey("Then each maps to its error type", func() {
			So(getErrorType(http.StatusBadRequest), ShouldEqual, "client_error")
			So(getErrorType(http.StatusNotFound), ShouldEqual, "not_found")
			So(getErrorType(http.StatusMethodNotAllowed), ShouldEqual, "client_error")
			So(getErrorType(http.StatusConflict), ShouldEqual, "wrong_state")
			So(getErrorType(http.StatusTooManyRequests), ShouldEqual, "rate_limit")
			So(getErrorType(http.StatusInternalServerError), ShouldEqual, "server_error")
			So(getErrorType(http.StatusOK), ShouldEqual, "unknown")
		})

		Convey("Then server errors are the most severe", func() {
			So(getErrorSeverity(http.StatusServiceUnavailable), ShouldEqual, "high")
			So(getErrorSeverity(http.StatusConflict), ShouldEqual, "medium")
			So(getErrorSeverity(http.StatusOK), ShouldEqual, "low")
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler that reports a state conflict", t, func() {
		h := MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusConflict, "wrong_state", nil)
		}, "test_conflict")

		Convey("When it is served", func() {
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodPost, "/sessions/x/events", nil))

			Convey("Then the status passes through unchanged", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(w.Body.String(), ShouldContainSubstring, `"code":"wrong_state"`)
			})
		})
	})
}
