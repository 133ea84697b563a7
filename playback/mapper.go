package playback

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/nagare-player/nagare/engine"
	"github.com/nagare-player/nagare/log"
	"github.com/nagare-player/nagare/media"
)

// Mapper resolves host stream indices to engine stream identifiers and
// back. Embedded streams of the same kind correspond 1:1 by declaration
// order; metadata heuristics recover correctness when a pipeline switch
// reorders or subsets the enumeration. Externally loaded subtitles are
// matched by identity through an explicit registration table, never by
// position.
//
// A mapping is valid only for the lifetime of the current pipeline
// instance: Invalidate must be called after every reload or pipeline
// switch. The explicit external-subtitle entries are the only state carried
// across an invalidation; the session overwrites them when it re-ingests
// the subtitle into the new instance.
type Mapper struct {
	dir      *Directory
	external map[int]string // host subtitle index -> engine id
}

// NewMapper creates a mapper over the given directory.
func NewMapper(dir *Directory) *Mapper {
	return &Mapper{
		dir:      dir,
		external: make(map[int]string),
	}
}

// Invalidate rebinds the mapper to a freshly derived directory after a
// reload or pipeline switch. Positional and metadata resolution restart
// from the new enumeration; external-subtitle registrations persist
// verbatim.
func (m *Mapper) Invalidate(dir *Directory) {
	m.dir = dir
}

// RegisterExternalSubtitle records the engine id assigned to an externally
// ingested subtitle, keyed by its host index. Registration replaces any
// previous entry for the index.
func (m *Mapper) RegisterExternalSubtitle(hostIndex int, engineID string) {
	m.external[hostIndex] = engineID
}

// EngineID resolves a host stream index of the given kind to the engine
// stream identifier currently backing it. Returns ErrMappingNotFound when
// no correspondence rule applies.
func (m *Mapper) EngineID(hostIndex int, kind engine.StreamKind) (string, error) {
	// Fast path: externally loaded subtitles are matched by identity.
	if kind == engine.KindSubtitle {
		if id, ok := m.external[hostIndex]; ok {
			return id, nil
		}
	}

	streamType := TypeOf(kind)
	host, ok := m.dir.Host(hostIndex, streamType).Get()
	if !ok {
		return "", ErrMappingNotFound
	}

	enumerated, err := m.dir.Engine(kind)
	if err != nil {
		return "", ErrMappingNotFound
	}

	// Primary rule: embedded streams of the same kind correspond 1:1 by
	// declaration order, independent of the opaque engine identifiers.
	if !host.IsExternal {
		if p, ok := m.embeddedPosition(host, streamType); ok && p < len(enumerated) {
			return enumerated[p].ID, nil
		}
	}

	// Fallback: metadata heuristics, in strict priority order. First match
	// wins; ties are not otherwise broken.
	if id, ok := matchByMetadata(host, enumerated); ok {
		return id, nil
	}

	m.logNearestTitle(host, enumerated)
	return "", ErrMappingNotFound
}

// HostIndex resolves an engine stream identifier back to the host index it
// currently backs. Returns ErrMappingNotFound when no correspondence rule
// applies.
func (m *Mapper) HostIndex(engineID string, kind engine.StreamKind) (int, error) {
	// Externally loaded subtitles resolve through the explicit table.
	if kind == engine.KindSubtitle {
		for hostIndex, id := range m.external {
			if id == engineID {
				return hostIndex, nil
			}
		}
	}

	enumerated, err := m.dir.Engine(kind)
	if err != nil {
		return 0, ErrMappingNotFound
	}

	position := -1
	var target engine.Stream
	for p, s := range enumerated {
		if s.ID == engineID {
			position = p
			target = s
			break
		}
	}
	if position < 0 {
		return 0, ErrMappingNotFound
	}

	// Symmetric positional correspondence.
	embedded := m.dir.Embedded(TypeOf(kind))
	if position < len(embedded) {
		return embedded[position].Index, nil
	}

	// Symmetric metadata fallback against the declared streams.
	for _, host := range embedded {
		if languageEqual(host.Language, target.Language) {
			return host.Index, nil
		}
	}
	for _, host := range embedded {
		if titleEqual(host.DisplayTitle, target.Title) {
			return host.Index, nil
		}
	}
	for _, host := range embedded {
		if codecContains(host.Codec, target.Codec) {
			return host.Index, nil
		}
	}

	return 0, ErrMappingNotFound
}

// embeddedPosition locates the host stream's position within the ordered
// embedded list of its type group.
func (m *Mapper) embeddedPosition(host media.Stream, t media.StreamType) (int, bool) {
	for p, s := range m.dir.Embedded(t) {
		if s.Index == host.Index {
			return p, true
		}
	}
	return 0, false
}

// matchByMetadata applies the fallback heuristics: exact language, then
// exact title, then codec-name containment, each scanned in enumeration
// order.
func matchByMetadata(host media.Stream, enumerated []engine.Stream) (string, bool) {
	for _, s := range enumerated {
		if languageEqual(host.Language, s.Language) {
			return s.ID, true
		}
	}
	for _, s := range enumerated {
		if titleEqual(host.DisplayTitle, s.Title) {
			return s.ID, true
		}
	}
	for _, s := range enumerated {
		if codecContains(host.Codec, s.Codec) {
			return s.ID, true
		}
	}
	return "", false
}

func languageEqual(a, b string) bool {
	return a != "" && b != "" && strings.EqualFold(a, b)
}

func titleEqual(a, b string) bool {
	return a != "" && b != "" && strings.EqualFold(a, b)
}

func codecContains(host, engineCodec string) bool {
	if host == "" || engineCodec == "" {
		return false
	}
	h, e := strings.ToLower(host), strings.ToLower(engineCodec)
	return strings.Contains(e, h) || strings.Contains(h, e)
}

// logNearestTitle emits a diagnostic with the fuzzy-ranked closest engine
// stream title when every correspondence rule failed.
func (m *Mapper) logNearestTitle(host media.Stream, enumerated []engine.Stream) {
	if host.DisplayTitle == "" || len(enumerated) == 0 {
		log.Debugf("no engine stream mapping for host index %d (%s)", host.Index, host.Type)
		return
	}

	titles := make([]string, 0, len(enumerated))
	for _, s := range enumerated {
		if s.Title != "" {
			titles = append(titles, s.Title)
		}
	}

	ranks := fuzzy.RankFindFold(host.DisplayTitle, titles)
	if len(ranks) == 0 {
		log.Debugf("no engine stream mapping for host index %d (%s)", host.Index, host.Type)
		return
	}

	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	log.Debugf("no engine stream mapping for host index %d (%s); nearest engine title: %q",
		host.Index, host.Type, best.Target)
}
