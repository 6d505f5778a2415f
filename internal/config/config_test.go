package config_test

import (
	"context"
	"testing"

	"github.com/okian/tcxview/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Units, convey.ShouldEqual, "metric")
			convey.So(cfg.CompactPoints, convey.ShouldEqual, 50)
			convey.So(cfg.WarmupSamples, convey.ShouldEqual, 9)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.Validate(context.Background()), convey.ShouldBeNil)
		})
	})
}
