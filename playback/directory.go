package playback

import (
	"sort"

	"github.com/nagare-player/nagare/engine"
	"github.com/nagare-player/nagare/media"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Directory is a read-only view pairing the host's declared streams for the
// session with a live query of the engine's enumerated streams. The host
// side is fixed at play time; the engine side is re-enumerated on every
// call because engine identifiers change across loads and pipeline
// switches.
type Directory struct {
	host      []media.Stream
	enumerate func() ([]engine.Stream, error)
}

// NewDirectory derives a directory from the declared stream list and an
// engine enumeration query.
func NewDirectory(host []media.Stream, enumerate func() ([]engine.Stream, error)) *Directory {
	return &Directory{host: host, enumerate: enumerate}
}

// Host looks up the declared stream with the given index inside its type
// group.
func (d *Directory) Host(index int, t media.StreamType) mo.Option[media.Stream] {
	for _, s := range d.host {
		if s.Index == index && s.Is(t) {
			return mo.Some(s)
		}
	}
	return mo.None[media.Stream]()
}

// Embedded returns the non-external declared streams of the given type,
// sorted ascending by index. External streams are delivered out-of-band and
// never participate in positional correspondence.
func (d *Directory) Embedded(t media.StreamType) []media.Stream {
	embedded := lo.Filter(d.host, func(s media.Stream, _ int) bool {
		return s.Is(t) && !s.IsExternal
	})
	sort.Slice(embedded, func(i, j int) bool {
		return embedded[i].Index < embedded[j].Index
	})
	return embedded
}

// Engine returns the engine's currently enumerated streams of the given
// kind, in enumeration order.
func (d *Directory) Engine(kind engine.StreamKind) ([]engine.Stream, error) {
	streams, err := d.enumerate()
	if err != nil {
		return nil, err
	}
	return lo.Filter(streams, func(s engine.Stream, _ int) bool {
		return s.Kind == kind
	}), nil
}

// KindOf maps a host stream type to the engine's codec-type classification.
func KindOf(t media.StreamType) engine.StreamKind {
	switch t {
	case media.StreamAudio:
		return engine.KindAudio
	case media.StreamVideo:
		return engine.KindVideo
	default:
		return engine.KindSubtitle
	}
}

// TypeOf maps an engine stream kind to the host's stream type.
func TypeOf(kind engine.StreamKind) media.StreamType {
	switch kind {
	case engine.KindAudio:
		return media.StreamAudio
	case engine.KindVideo:
		return media.StreamVideo
	default:
		return media.StreamSubtitle
	}
}
