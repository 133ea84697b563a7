package playback

import (
	"errors"
	"testing"

	"github.com/nagare-player/nagare/engine"
	. "github.com/smartystreets/goconvey/convey"
)

func TestControllerAcquire(t *testing.T) {
	Convey("Given a controller on the managed-source pipeline", t, func() {
		ff := &fakeFactory{}
		c := NewController(ff.new, NewBridge(NewBus()), engine.ModeManagedSource)

		Convey("Acquire constructs the engine and binds the bridge", func() {
			So(c.Acquire(), ShouldBeNil)
			So(c.Engine(), ShouldNotBeNil)
			So(ff.last().mode, ShouldEqual, engine.ModeManagedSource)
			So(ff.last().handler, ShouldNotBeNil)
		})

		Convey("A second Acquire reuses the live instance", func() {
			So(c.Acquire(), ShouldBeNil)
			So(c.Acquire(), ShouldBeNil)
			So(len(ff.engines), ShouldEqual, 1)
		})
	})
}

func TestControllerSwitchToFallback(t *testing.T) {
	Convey("Given a live managed-source engine mid-playback", t, func() {
		ff := &fakeFactory{}
		c := NewController(ff.new, NewBridge(NewBus()), engine.ModeManagedSource)
		So(c.Acquire(), ShouldBeNil)

		old := ff.last()
		old.positionMS = 123456

		Convey("The switch preserves position and resumes on the fallback", func() {
			So(c.SwitchToFallback("http://host/stream.mkv"), ShouldBeNil)

			So(old.closed, ShouldBeTrue)
			So(c.Degraded(), ShouldBeTrue)
			So(c.Mode(), ShouldEqual, engine.ModeRawStream)

			fresh := ff.last()
			So(fresh, ShouldNotEqual, old)
			So(fresh.mode, ShouldEqual, engine.ModeRawStream)
			So(fresh.loaded, ShouldEqual, "http://host/stream.mkv")
			So(fresh.count("seek:123456"), ShouldEqual, 1)
			So(fresh.playing, ShouldBeTrue)
		})

		Convey("The fresh instance is observed from the reload onward", func() {
			So(c.SwitchToFallback("http://host/stream.mkv"), ShouldBeNil)

			fresh := ff.last()
			So(fresh.handler, ShouldNotBeNil)
			So(fresh.first("subscribe"), ShouldBeLessThan,
				fresh.first("load:http://host/stream.mkv"))
		})

		Convey("A teardown failure does not block the switch", func() {
			old.closeErr = errors.New("release failed")
			So(c.SwitchToFallback("http://host/stream.mkv"), ShouldBeNil)
			So(c.Mode(), ShouldEqual, engine.ModeRawStream)
		})

		Convey("The downgrade is one-way", func() {
			So(c.SwitchToFallback("http://host/stream.mkv"), ShouldBeNil)

			err := c.SwitchToFallback("http://host/stream.mkv")
			var loadErr *LoadError
			So(errors.As(err, &loadErr), ShouldBeTrue)
		})

		Convey("A reload failure on the fallback is terminal", func() {
			ff.configure = func(e *fakeEngine) {
				e.loadErr = errors.New("demuxer open failed")
			}

			err := c.SwitchToFallback("http://host/stream.mkv")
			var loadErr *LoadError
			So(errors.As(err, &loadErr), ShouldBeTrue)
			So(loadErr.Mode, ShouldEqual, engine.ModeRawStream)
		})
	})
}

func TestControllerClose(t *testing.T) {
	Convey("Close tears the live instance down and tolerates failures", t, func() {
		ff := &fakeFactory{}
		c := NewController(ff.new, NewBridge(NewBus()), engine.ModeManagedSource)
		So(c.Acquire(), ShouldBeNil)

		ff.last().closeErr = errors.New("release failed")
		c.Close()
		So(ff.last().closed, ShouldBeTrue)
		So(c.Engine(), ShouldBeNil)

		// Idempotent.
		c.Close()
	})
}
