package logger

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInitAndLevels(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Get returns a usable logger", func() {
			l := Get()
			So(l, ShouldNotBeNil)
			// Should not panic.
			l.Info(context.Background(), "hello", String("k", "v"))
			l.Named("sub").Debug(context.Background(), "quiet")
		})

		Convey("SetLevelString accepts known levels", func() {
			for _, lvl := range []string{"debug", "info", "warn", "warning", "error", ""} {
				So(SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("SetLevelString rejects unknown levels", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
		})

		Convey("SetLevel applies directly", func() {
			SetLevel(slog.LevelWarn)
			So(levelVar.Level(), ShouldEqual, slog.LevelWarn)
			SetLevel(slog.LevelInfo)
		})

		Convey("Sync is a no-op", func() {
			So(Sync(), ShouldBeNil)
		})
	})
}

func TestFieldConstructors(t *testing.T) {
	Convey("Field constructors keep keys and values", t, func() {
		So(String("a", "b"), ShouldResemble, Field{Key: "a", Value: "b"})
		So(Int("n", 3).Value, ShouldEqual, 3)
		So(Bool("ok", true).Value, ShouldEqual, true)
		So(Float64("f", 1.5).Value, ShouldEqual, 1.5)

		err := errors.New("boom")
		So(Error(err).Key, ShouldEqual, "error")
		So(Error(err).Value, ShouldEqual, err)
	})
}
