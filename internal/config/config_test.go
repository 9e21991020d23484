package config_test

import (
	"testing"

	"github.com/fitrate/arena/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
			convey.So(cfg.QueueTTLSeconds, convey.ShouldEqual, 90)
			convey.So(cfg.GhostWaitSeconds, convey.ShouldEqual, 60)
			convey.So(cfg.StatsCacheSeconds, convey.ShouldEqual, 5)
			convey.So(cfg.GhostPoolSize, convey.ShouldEqual, 200)
			convey.So(cfg.GhostMaxAgeHours, convey.ShouldEqual, 24)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.IngestWorkers, convey.ShouldEqual, 4)
			convey.So(cfg.IngestQueueSize, convey.ShouldEqual, 1024)
		})
	})
}
