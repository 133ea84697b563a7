package media

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTicks(t *testing.T) {
	Convey("Tick conversions", t, func() {
		Convey("Should floor to the millisecond boundary", func() {
			So(TicksToMilliseconds(10_000), ShouldEqual, 1)
			So(TicksToMilliseconds(19_999), ShouldEqual, 1)
			So(TicksToMilliseconds(20_000), ShouldEqual, 2)
		})

		Convey("Should round-trip whole milliseconds", func() {
			ms := int64(123_456)
			So(TicksToMilliseconds(MillisecondsToTicks(ms)), ShouldEqual, ms)
		})

		Convey("Should agree with time.Duration conversions", func() {
			So(TicksToDuration(TicksPerSecond), ShouldEqual, time.Second)
			So(DurationToTicks(time.Second), ShouldEqual, TicksPerSecond)
			So(DurationToTicks(1500*time.Millisecond), ShouldEqual, 15_000_000)
		})
	})
}

func TestStreamsOfType(t *testing.T) {
	Convey("Given a source with mixed stream types", t, func() {
		src := Source{
			MediaStreams: []Stream{
				{Index: 0, Type: StreamVideo},
				{Index: 1, Type: StreamAudio, Language: "eng"},
				{Index: 2, Type: StreamAudio, Language: "jpn"},
				{Index: 3, Type: StreamSubtitle, Language: "eng"},
			},
		}

		Convey("StreamsOfType preserves declaration order", func() {
			audio := src.StreamsOfType(StreamAudio)
			So(audio, ShouldHaveLength, 2)
			So(audio[0].Language, ShouldEqual, "eng")
			So(audio[1].Language, ShouldEqual, "jpn")
		})

		Convey("StreamsOfType returns nil for absent types", func() {
			So(src.StreamsOfType("Attachment"), ShouldBeNil)
		})
	})
}
