// Package engine defines the capability contract for an external decode and
// render engine, and provides the reference implementation driving mpv over
// its JSON-IPC interface.
//
// The engine is opaque to the playback core: it can load a source, control
// transport, enumerate and select elementary streams, and report events. Any
// implementation satisfying the Engine interface is substitutable.
package engine

// Mode identifies the decode pipeline an engine instance is configured for.
type Mode string

const (
	// ModeManagedSource is the preferred, buffered pipeline: the engine
	// manages demuxing and feeding into its media sink.
	ModeManagedSource Mode = "managed-source"

	// ModeRawStream is the degraded fallback pipeline rendering into a live
	// stream sink with no managed buffering. Once a session downgrades to
	// raw-stream it never upgrades back.
	ModeRawStream Mode = "raw-stream"
)

// ParseMode maps a configuration string to a Mode, defaulting to the
// managed-source pipeline for unknown values.
func ParseMode(s string) Mode {
	if s == string(ModeRawStream) {
		return ModeRawStream
	}
	return ModeManagedSource
}

// StreamKind classifies an engine-enumerated elementary stream.
type StreamKind string

const (
	KindAudio    StreamKind = "audio"
	KindVideo    StreamKind = "video"
	KindSubtitle StreamKind = "sub"
)

// Stream is an elementary stream as enumerated by the engine. The identifier
// is engine-assigned and only valid for the lifetime of the current engine
// instance; it does not survive a reload or a pipeline switch.
type Stream struct {
	ID       string
	Kind     StreamKind
	Language string
	Title    string
	Codec    string
	External bool
	Selected bool
}

// NoStreamID is the selection identifier that disables a stream kind
// entirely (used to turn subtitle rendering off).
const NoStreamID = "no"

// EventKind names a notification emitted by the engine.
type EventKind string

const (
	// EventFileLoaded fires once a load completes and streams are probed.
	EventFileLoaded EventKind = "file-loaded"
	// EventPlaybackRestart fires when playback (re)starts after a load or seek.
	EventPlaybackRestart EventKind = "playback-restart"
	// EventPause and EventUnpause report suspension state flips. The engine
	// may repeat them; consumers are expected to de-duplicate.
	EventPause   EventKind = "pause"
	EventUnpause EventKind = "unpause"
	// EventSeeking reports an in-progress seek.
	EventSeeking EventKind = "seeking"
	// EventWaiting and EventPlaying report buffering stalls and recovery.
	EventWaiting EventKind = "waiting"
	EventPlaying EventKind = "playing"
	// EventTimePosition carries the current position in milliseconds.
	EventTimePosition EventKind = "time-position"
	// EventBuffered carries the end of the buffered range in milliseconds.
	EventBuffered EventKind = "buffered"
	// EventVolume carries the current volume on the 0-100 scale.
	EventVolume EventKind = "volume"
	// EventEnded fires when the end of the source is reached.
	EventEnded EventKind = "ended"
)

// Event is a single engine notification. Position is populated for
// EventTimePosition and EventBuffered, Volume for EventVolume.
type Event struct {
	Kind     EventKind
	Position int64
	Volume   int
}

// EventHandler receives engine events in emission order.
type EventHandler func(Event)

// Engine is the capability set required from an external playback engine.
// All operations are synchronous from the caller's perspective; callers must
// not issue a dependent operation before the previous one returns.
type Engine interface {
	// Mode reports the pipeline this instance was constructed for.
	Mode() Mode

	// Load makes url the current source, replacing any previous one.
	Load(url string) error

	// Play resumes (or starts) playback. Implementations report a blocked
	// autoplay attempt via an Error of KindAutoplayBlocked.
	Play() error

	// Pause suspends playback.
	Pause() error

	// Stop halts playback and unloads the current source while keeping the
	// instance alive.
	Stop() error

	// Seek moves to an absolute position in milliseconds.
	Seek(positionMS int64) error

	// Position reports the current absolute position in milliseconds.
	Position() (int64, error)

	// Duration reports the total source duration in milliseconds; zero when
	// unknown (live sources).
	Duration() (int64, error)

	// Streams enumerates the currently probed elementary streams.
	Streams() ([]Stream, error)

	// SelectAudio activates the audio stream with the given engine id.
	SelectAudio(id string) error

	// SelectSubtitle activates the subtitle stream with the given engine id;
	// NoStreamID disables subtitle rendering.
	SelectSubtitle(id string) error

	// AddSubtitle ingests an external subtitle from url and returns the
	// engine id assigned to the new stream.
	AddSubtitle(url string) (string, error)

	// Volume reports the current volume on the 0-100 scale.
	Volume() (int, error)

	// SetVolume sets the volume on the 0-100 scale.
	SetVolume(volume int) error

	// SetMuted toggles the mute state.
	SetMuted(muted bool) error

	// SetRate sets the playback rate multiplier.
	SetRate(rate float64) error

	// SetSubtitleDelay shifts subtitle presentation by the given number of
	// milliseconds (negative shifts earlier).
	SetSubtitleDelay(ms int64) error

	// Subscribe binds the handler to the engine's event feed. Only one
	// handler is bound at a time; a subsequent call replaces it.
	Subscribe(handler EventHandler) error

	// Close terminates the engine instance and releases all its resources.
	Close() error
}

// Factory constructs a fresh engine instance for the requested pipeline
// mode. The playback core acquires engines exclusively through a factory so
// that hosts can substitute implementations.
type Factory func(mode Mode) (Engine, error)
