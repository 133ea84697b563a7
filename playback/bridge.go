package playback

import (
	"github.com/nagare-player/nagare/engine"
	"github.com/nagare-player/nagare/media"
)

// Bridge translates the engine's event vocabulary into the host's,
// de-duplicating stateful transitions: the engine may repeat pause/resume
// signals, but the host sees exactly one pause or unpause notification per
// actual state flip. The bridge is re-bound to each fresh engine instance
// after a pipeline switch and reset so the first post-switch resume is
// still collapsed correctly.
type Bridge struct {
	bus *Bus

	started bool
	paused  bool
	stalled bool
}

// NewBridge creates a bridge feeding the given notification bus.
func NewBridge(bus *Bus) *Bridge {
	return &Bridge{bus: bus, paused: true}
}

// Reset clears the de-duplication state; called before re-binding to a
// fresh engine instance.
func (br *Bridge) Reset() {
	br.started = false
	br.paused = true
	br.stalled = false
}

// Bind subscribes the bridge to the engine's event feed, replacing any
// previous binding on that engine.
func (br *Bridge) Bind(e engine.Engine) error {
	return e.Subscribe(br.Handle)
}

// Handle translates a single engine event. Events arrive and are forwarded
// in emission order.
func (br *Bridge) Handle(ev engine.Event) {
	switch ev.Kind {
	case engine.EventPlaybackRestart:
		if !br.started {
			br.started = true
			br.bus.Emit(EventPlaybackStart, Payload{})
		}

	case engine.EventPause:
		if !br.paused {
			br.paused = true
			br.bus.Emit(EventPause, Payload{})
		}

	case engine.EventUnpause:
		// Collapse repeated resume signals into a single unpause.
		if br.paused {
			br.paused = false
			br.bus.Emit(EventUnpause, Payload{})
		}

	case engine.EventWaiting:
		if !br.stalled {
			br.stalled = true
			br.bus.Emit(EventWaiting, Payload{})
		}

	case engine.EventPlaying:
		if br.stalled {
			br.stalled = false
			br.bus.Emit(EventPlaying, Payload{})
		}

	case engine.EventTimePosition:
		br.bus.Emit(EventTimeUpdate, Payload{
			PositionTicks: media.MillisecondsToTicks(ev.Position),
		})

	case engine.EventBuffered:
		br.bus.Emit(EventBufferedUpdate, Payload{
			PositionTicks: media.MillisecondsToTicks(ev.Position),
		})

	case engine.EventVolume:
		br.bus.Emit(EventVolumeChange, Payload{Volume: ev.Volume})

	case engine.EventEnded:
		br.bus.Emit(EventEnded, Payload{})
	}
}
