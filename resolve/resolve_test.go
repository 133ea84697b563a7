package resolve

import (
	"testing"

	"github.com/nagare-player/nagare/media"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolverURLs(t *testing.T) {
	r := &Resolver{BaseURL: "http://srv:8096", Token: "tok"}
	source := media.Source{ID: "abc123", Container: "mkv"}

	Convey("Direct stream URLs carry the container and credentials", t, func() {
		u, err := r.DirectStreamURL(source)
		So(err, ShouldBeNil)
		So(u, ShouldStartWith, "http://srv:8096/Videos/abc123/stream.mkv?")
		So(u, ShouldContainSubstring, "Static=true")
		So(u, ShouldContainSubstring, "MediaSourceId=abc123")
		So(u, ShouldContainSubstring, "api_key=tok")
	})

	Convey("A missing container falls back to mkv", t, func() {
		u, err := r.DirectStreamURL(media.Source{ID: "abc123"})
		So(err, ShouldBeNil)
		So(u, ShouldStartWith, "http://srv:8096/Videos/abc123/stream.mkv?")
	})

	Convey("The declared transcoding path is resolved against the base", t, func() {
		u, err := r.TranscodeURL(media.Source{
			ID:             "abc123",
			TranscodingURL: "/Videos/abc123/master.m3u8?DeviceId=x",
		})
		So(err, ShouldBeNil)
		So(u, ShouldEqual, "http://srv:8096/Videos/abc123/master.m3u8?DeviceId=x")
	})

	Convey("Without a declared path the HLS endpoint is derived", t, func() {
		u, err := r.TranscodeURL(source)
		So(err, ShouldBeNil)
		So(u, ShouldStartWith, "http://srv:8096/Videos/abc123/master.m3u8?")
	})

	Convey("Subtitle URLs prefer the declared delivery URL", t, func() {
		u, err := r.SubtitleURL(source, media.Stream{
			Index:       5,
			DeliveryURL: "https://cdn/subs/5.vtt",
		})
		So(err, ShouldBeNil)
		So(u, ShouldEqual, "https://cdn/subs/5.vtt")
	})

	Convey("Without a delivery URL the subtitle endpoint is derived", t, func() {
		u, err := r.SubtitleURL(source, media.Stream{Index: 5, Codec: "srt"})
		So(err, ShouldBeNil)
		So(u, ShouldStartWith, "http://srv:8096/Videos/abc123/abc123/Subtitles/5/Stream.srt")
	})

	Convey("An anonymous resolver omits credentials", t, func() {
		anon := &Resolver{BaseURL: "http://srv:8096"}
		u, err := anon.DirectStreamURL(source)
		So(err, ShouldBeNil)
		So(u, ShouldNotContainSubstring, "api_key")
	})
}
