// Package media defines the host-side data model: server-declared items,
// media sources and their elementary streams, play options, and the tick
// time base used by the media server.
package media

// StreamType classifies a server-declared elementary stream.
type StreamType string

const (
	StreamAudio    StreamType = "Audio"
	StreamSubtitle StreamType = "Subtitle"
	StreamVideo    StreamType = "Video"
)

// Stream is a server-declared elementary stream. It is immutable for the
// lifetime of a playback session. Index is stable and unique within its type
// group; external streams are delivered out-of-band and excluded from the
// position-based correspondence with the engine's enumeration.
type Stream struct {
	Index        int        `json:"Index"`
	Type         StreamType `json:"Type"`
	IsExternal   bool       `json:"IsExternal"`
	Language     string     `json:"Language,omitempty"`
	Codec        string     `json:"Codec,omitempty"`
	DisplayTitle string     `json:"DisplayTitle,omitempty"`

	// DeliveryURL carries the server-relative delivery path of an external
	// stream (e.g. a sidecar subtitle); empty for embedded streams.
	DeliveryURL string `json:"DeliveryUrl,omitempty"`
}

// Is reports whether the stream belongs to the given type group.
func (s Stream) Is(t StreamType) bool {
	return s.Type == t
}
