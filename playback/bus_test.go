package playback

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBus(t *testing.T) {
	Convey("Given a notification bus", t, func() {
		bus := NewBus()

		Convey("Handlers run in registration order", func() {
			var order []int
			bus.On("x", func(Payload) { order = append(order, 1) })
			bus.On("x", func(Payload) { order = append(order, 2) })
			bus.On("x", func(Payload) { order = append(order, 3) })

			bus.Emit("x", Payload{})
			So(order, ShouldResemble, []int{1, 2, 3})
		})

		Convey("Once fires at most one time", func() {
			calls := 0
			bus.Once("x", func(Payload) { calls++ })

			bus.Emit("x", Payload{})
			bus.Emit("x", Payload{})
			So(calls, ShouldEqual, 1)
		})

		Convey("A once handler may re-emit without recursing into itself", func() {
			calls := 0
			bus.Once("x", func(Payload) {
				calls++
				bus.Emit("x", Payload{})
			})

			bus.Emit("x", Payload{})
			So(calls, ShouldEqual, 1)
		})

		Convey("The returned off function removes the registration", func() {
			calls := 0
			off := bus.On("x", func(Payload) { calls++ })

			bus.Emit("x", Payload{})
			off()
			bus.Emit("x", Payload{})
			So(calls, ShouldEqual, 1)
		})

		Convey("Clear drops every registration", func() {
			calls := 0
			bus.On("x", func(Payload) { calls++ })
			bus.On("y", func(Payload) { calls++ })

			bus.Clear()
			bus.Emit("x", Payload{})
			bus.Emit("y", Payload{})
			So(calls, ShouldEqual, 0)
		})
	})
}
