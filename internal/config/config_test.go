package config_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/circularity/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.SessionTTL(), convey.ShouldEqual, 30*time.Minute)
			convey.So(cfg.SweepInterval(), convey.ShouldEqual, time.Minute)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a config with several bad values", t, func() {
		cfg := config.New()
		cfg.LogFormat = "xml"
		cfg.DedupeSize = 0
		cfg.MinSampleSpacing = math.NaN()
		cfg.CanvasHeight = -1
		cfg.Difficulties = map[string]config.Difficulty{"hard": {DotRadius: 1}, "insane": {DotRadius: 1, SigmaScale: 1, TimeScale: 1}}

		err := cfg.Validate()

		convey.Convey("Then every violation is reported", func() {
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			for _, key := range []string{"log_format", "dedupe_size", "min_sample_spacing", "canvas", "\"hard\" needs", "insane"} {
				convey.So(err.Error(), convey.ShouldContainSubstring, key)
			}
		})
	})
}
