package state

import (
	"testing"

	"github.com/nagare-player/nagare/filesystem"
	"github.com/nagare-player/nagare/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.PlayerSavePosition, true)
}

func TestPlayerState(t *testing.T) {
	Convey("Player preferences round-trip through the registry", t, func() {
		_, ok := Volume()
		So(ok, ShouldBeFalse)

		So(SetVolume(70), ShouldBeNil)
		volume, ok := Volume()
		So(ok, ShouldBeTrue)
		So(volume, ShouldEqual, 70)

		So(SetMuted(true), ShouldBeNil)
		muted, ok := Muted()
		So(ok, ShouldBeTrue)
		So(muted, ShouldBeTrue)

		Convey("Saving one preference does not clobber the other", func() {
			So(SetVolume(30), ShouldBeNil)
			muted, ok := Muted()
			So(ok, ShouldBeTrue)
			So(muted, ShouldBeTrue)
		})
	})
}

func TestResumePositions(t *testing.T) {
	Convey("Resume positions are kept per item", t, func() {
		So(SetResume("item-a", 1200), ShouldBeNil)
		So(SetResume("item-b", 3400), ShouldBeNil)

		ticks, ok := Resume("item-a")
		So(ok, ShouldBeTrue)
		So(ticks, ShouldEqual, 1200)

		Convey("A zero position clears the record", func() {
			So(SetResume("item-a", 0), ShouldBeNil)
			_, ok := Resume("item-a")
			So(ok, ShouldBeFalse)

			ticks, ok := Resume("item-b")
			So(ok, ShouldBeTrue)
			So(ticks, ShouldEqual, 3400)
		})
	})

	Convey("Persistence honors the save-position switch", t, func() {
		viper.Set(key.PlayerSavePosition, false)
		defer viper.Set(key.PlayerSavePosition, true)

		So(SetResume("item-c", 500), ShouldBeNil)
		_, ok := Resume("item-c")
		So(ok, ShouldBeFalse)
	})
}
