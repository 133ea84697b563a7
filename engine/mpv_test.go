package engine

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseMode(t *testing.T) {
	Convey("Pipeline mode parsing defaults to managed-source", t, func() {
		So(ParseMode("raw-stream"), ShouldEqual, ModeRawStream)
		So(ParseMode("managed-source"), ShouldEqual, ModeManagedSource)
		So(ParseMode(""), ShouldEqual, ModeManagedSource)
		So(ParseMode("bogus"), ShouldEqual, ModeManagedSource)
	})
}

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("Given media targets of varying trustworthiness", t, func() {
		Convey("Plain http and https URLs pass through", func() {
			for _, u := range []string{
				"http://host/stream.mkv",
				"https://host:8096/Videos/x/stream.mkv?Static=true",
			} {
				got, err := sanitizeMediaTarget(u)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, u)
			}
		})

		Convey("Local paths are cleaned", func() {
			got, err := sanitizeMediaTarget("/media/./movies/../movies/film.mkv")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "/media/movies/film.mkv")
		})

		Convey("Flag-shaped input is rejected", func() {
			_, err := sanitizeMediaTarget("--script=evil.lua")
			So(err, ShouldNotBeNil)
		})

		Convey("Control characters are rejected", func() {
			_, err := sanitizeMediaTarget("http://host/a\nquit")
			So(err, ShouldNotBeNil)
		})

		Convey("Non-http schemes are rejected", func() {
			_, err := sanitizeMediaTarget("ftp://host/film.mkv")
			So(err, ShouldNotBeNil)
		})

		Convey("Empty input is rejected", func() {
			_, err := sanitizeMediaTarget("   ")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestClassifyIPC(t *testing.T) {
	Convey("IPC rejections map to semantic kinds at the boundary", t, func() {
		So(classifyIPC("unsupported"), ShouldEqual, KindUnsupported)
		So(classifyIPC("property unavailable"), ShouldEqual, KindUnsupported)
		So(classifyIPC("property not found"), ShouldEqual, KindUnsupported)
		So(classifyIPC("loading failed"), ShouldEqual, KindLoad)
		So(classifyIPC("no such file or directory"), ShouldEqual, KindLoad)
		So(classifyIPC("something else entirely"), ShouldEqual, KindUnknown)
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Kind predicates unwrap nested errors", t, func() {
		unsupported := &Error{Kind: KindUnsupported, Op: "set aid", Err: errors.New("unsupported")}

		So(IsUnsupported(unsupported), ShouldBeTrue)
		So(IsUnsupported(errors.Join(errors.New("outer"), unsupported)), ShouldBeTrue)
		So(IsUnsupported(errors.New("unsupported")), ShouldBeFalse)

		So(IsLoad(&Error{Kind: KindLoad, Op: "loadfile"}), ShouldBeTrue)
		So(IsLoad(unsupported), ShouldBeFalse)

		So(IsAutoplayBlocked(&Error{Kind: KindAutoplayBlocked, Op: "play"}), ShouldBeTrue)
		So(IsAutoplayBlocked(nil), ShouldBeFalse)
	})
}

func TestTrackKind(t *testing.T) {
	Convey("Track types map onto stream kinds", t, func() {
		for in, want := range map[string]StreamKind{
			"audio": KindAudio,
			"video": KindVideo,
			"sub":   KindSubtitle,
		} {
			kind, ok := trackKind(in)
			So(ok, ShouldBeTrue)
			So(kind, ShouldEqual, want)
		}

		_, ok := trackKind("attachment")
		So(ok, ShouldBeFalse)
	})
}

func TestEventTranslation(t *testing.T) {
	Convey("Given a listener with a captured handler", t, func() {
		var got []Event
		el := &eventListener{handler: func(ev Event) { got = append(got, ev) }}

		Convey("Pause property flips translate to pause and unpause", func() {
			el.processLine(`{"event":"property-change","id":2,"name":"pause","data":true}`)
			el.processLine(`{"event":"property-change","id":2,"name":"pause","data":false}`)

			So(got, ShouldResemble, []Event{
				{Kind: EventPause},
				{Kind: EventUnpause},
			})
		})

		Convey("Positions arrive in milliseconds", func() {
			el.processLine(`{"event":"property-change","id":1,"name":"time-pos","data":12.5}`)

			So(got, ShouldHaveLength, 1)
			So(got[0].Kind, ShouldEqual, EventTimePosition)
			So(got[0].Position, ShouldEqual, 12500)
		})

		Convey("Cache stalls translate to waiting and playing", func() {
			el.processLine(`{"event":"property-change","id":5,"name":"paused-for-cache","data":true}`)
			el.processLine(`{"event":"property-change","id":5,"name":"paused-for-cache","data":false}`)

			So(got, ShouldResemble, []Event{
				{Kind: EventWaiting},
				{Kind: EventPlaying},
			})
		})

		Convey("Lifecycle events pass through", func() {
			el.processLine(`{"event":"playback-restart"}`)
			el.processLine(`{"event":"file-loaded"}`)
			el.processLine(`{"event":"end-file"}`)

			So(got, ShouldResemble, []Event{
				{Kind: EventPlaybackRestart},
				{Kind: EventFileLoaded},
				{Kind: EventEnded},
			})
		})

		Convey("Volume changes carry the integer level", func() {
			el.processLine(`{"event":"property-change","id":6,"name":"volume","data":85.0}`)

			So(got, ShouldResemble, []Event{{Kind: EventVolume, Volume: 85}})
		})

		Convey("Unparseable lines are skipped", func() {
			el.processLine(`{not json`)
			el.processLine(`{"no-event-key":true}`)
			So(got, ShouldBeEmpty)
		})
	})
}
