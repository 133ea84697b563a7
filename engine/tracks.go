package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// mpvTrack mirrors a single entry of mpv's track-list property.
type mpvTrack struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Lang     string `json:"lang"`
	Title    string `json:"title"`
	Codec    string `json:"codec"`
	External bool   `json:"external"`
	Selected bool   `json:"selected"`
}

// Streams enumerates the elementary streams the engine has probed for the
// current source, in enumeration order. Identifiers are per-kind track ids
// assigned by the engine at probe time; they are not stable across reloads
// or pipeline switches.
func (m *MPV) Streams() ([]Stream, error) {
	data, err := m.command("get_property", "track-list")
	if err != nil {
		return nil, err
	}

	// Round-trip through JSON to decode the generic IPC payload into typed
	// track entries.
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("track-list: %w", err)
	}

	var tracks []mpvTrack
	if err := json.Unmarshal(raw, &tracks); err != nil {
		return nil, fmt.Errorf("track-list: %w", err)
	}

	streams := make([]Stream, 0, len(tracks))
	for _, t := range tracks {
		kind, ok := trackKind(t.Type)
		if !ok {
			continue
		}
		streams = append(streams, Stream{
			ID:       strconv.FormatInt(t.ID, 10),
			Kind:     kind,
			Language: t.Lang,
			Title:    t.Title,
			Codec:    t.Codec,
			External: t.External,
			Selected: t.Selected,
		})
	}

	return streams, nil
}

func trackKind(t string) (StreamKind, bool) {
	switch t {
	case "audio":
		return KindAudio, true
	case "video":
		return KindVideo, true
	case "sub":
		return KindSubtitle, true
	default:
		return "", false
	}
}
