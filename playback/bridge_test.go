package playback

import (
	"testing"

	"github.com/nagare-player/nagare/engine"
	"github.com/nagare-player/nagare/media"
	. "github.com/smartystreets/goconvey/convey"
)

func collect(bus *Bus, names ...EventName) *[]EventName {
	var got []EventName
	for _, name := range names {
		name := name
		bus.On(name, func(Payload) {
			got = append(got, name)
		})
	}
	return &got
}

func TestBridgeDeduplication(t *testing.T) {
	Convey("Given a bound bridge", t, func() {
		bus := NewBus()
		br := NewBridge(bus)

		Convey("Repeated resume signals collapse into a single unpause", func() {
			got := collect(bus, EventUnpause)

			br.Handle(engine.Event{Kind: engine.EventUnpause})
			br.Handle(engine.Event{Kind: engine.EventUnpause})
			br.Handle(engine.Event{Kind: engine.EventUnpause})

			So(*got, ShouldHaveLength, 1)
		})

		Convey("Pause and unpause alternate cleanly", func() {
			got := collect(bus, EventPause, EventUnpause)

			br.Handle(engine.Event{Kind: engine.EventUnpause})
			br.Handle(engine.Event{Kind: engine.EventPause})
			br.Handle(engine.Event{Kind: engine.EventPause})
			br.Handle(engine.Event{Kind: engine.EventUnpause})

			So(*got, ShouldResemble, []EventName{EventUnpause, EventPause, EventUnpause})
		})

		Convey("Playback start is reported once per binding", func() {
			got := collect(bus, EventPlaybackStart)

			br.Handle(engine.Event{Kind: engine.EventPlaybackRestart})
			br.Handle(engine.Event{Kind: engine.EventPlaybackRestart})
			So(*got, ShouldHaveLength, 1)

			Convey("And again after a reset for the next instance", func() {
				br.Reset()
				br.Handle(engine.Event{Kind: engine.EventPlaybackRestart})
				So(*got, ShouldHaveLength, 2)
			})
		})

		Convey("Stall recovery only fires after a stall", func() {
			got := collect(bus, EventWaiting, EventPlaying)

			br.Handle(engine.Event{Kind: engine.EventPlaying})
			So(*got, ShouldBeEmpty)

			br.Handle(engine.Event{Kind: engine.EventWaiting})
			br.Handle(engine.Event{Kind: engine.EventWaiting})
			br.Handle(engine.Event{Kind: engine.EventPlaying})
			So(*got, ShouldResemble, []EventName{EventWaiting, EventPlaying})
		})

		Convey("Positions are converted to host ticks at the boundary", func() {
			var ticks int64
			bus.On(EventTimeUpdate, func(p Payload) {
				ticks = p.PositionTicks
			})

			br.Handle(engine.Event{Kind: engine.EventTimePosition, Position: 1500})
			So(ticks, ShouldEqual, int64(1500)*media.TicksPerMillisecond)
		})

		Convey("Buffered ranges are forwarded in host ticks", func() {
			var ticks int64
			bus.On(EventBufferedUpdate, func(p Payload) {
				ticks = p.PositionTicks
			})

			br.Handle(engine.Event{Kind: engine.EventBuffered, Position: 8000})
			So(ticks, ShouldEqual, int64(8000)*media.TicksPerMillisecond)
		})
	})
}
