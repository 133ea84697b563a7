// Package playback implements the core of the adapter: reconciling the
// host's declared stream identities with the engine's enumerated streams,
// owning the decode pipeline and its fallback switch, and orchestrating the
// playback session lifecycle.
package playback

import (
	"errors"
	"fmt"

	"github.com/nagare-player/nagare/engine"
)

// ErrMappingNotFound reports that a host stream index could not be resolved
// to an engine stream identifier (or the inverse). Stream selection treats
// it as a diagnosable no-op; it is never surfaced to the host as a failure.
var ErrMappingNotFound = errors.New("playback: stream mapping not found")

// ErrSessionBusy reports that a session-mutating operation arrived while a
// lifecycle transition (play, stop, pipeline switch) was still in flight.
// Operations are strictly serialized; callers retry after the transition
// completes.
var ErrSessionBusy = errors.New("playback: session transition in progress")

// ErrNoSource reports that no playable source URL could be resolved from
// the play options.
var ErrNoSource = errors.New("playback: no playable source resolved")

// ErrEngineNotLive reports a transport operation issued outside the
// load-to-stop window, when no engine instance is live (before the first
// play, or after a destroying stop).
var ErrEngineNotLive = errors.New("playback: no live engine instance")

// LoadError is the terminal load failure: the source could not be loaded on
// the preferred pipeline and the fallback pipeline retry also failed (or no
// fallback remained). It is the only playback failure propagated to the
// host.
type LoadError struct {
	URL  string
	Mode engine.Mode
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("playback: load %q failed on %s pipeline: %v", e.URL, e.Mode, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
