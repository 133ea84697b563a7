package media

// Source is the media source descriptor supplied by the host at play time:
// the container, the declared stream list, the default stream selection, and
// the transcoding capability flags.
type Source struct {
	ID           string   `json:"Id"`
	Container    string   `json:"Container,omitempty"`
	Path         string   `json:"Path,omitempty"`
	MediaStreams []Stream `json:"MediaStreams,omitempty"`

	DefaultAudioStreamIndex    *int `json:"DefaultAudioStreamIndex,omitempty"`
	DefaultSubtitleStreamIndex *int `json:"DefaultSubtitleStreamIndex,omitempty"`

	SupportsDirectPlay  bool   `json:"SupportsDirectPlay,omitempty"`
	SupportsTranscoding bool   `json:"SupportsTranscoding,omitempty"`
	TranscodingURL      string `json:"TranscodingUrl,omitempty"`
}

// StreamsOfType returns the declared streams belonging to the given type
// group, in declaration order.
func (s Source) StreamsOfType(t StreamType) []Stream {
	var out []Stream
	for _, stream := range s.MediaStreams {
		if stream.Is(t) {
			out = append(out, stream)
		}
	}
	return out
}

// Item identifies a playable library item as declared by the media server.
type Item struct {
	ID           string `json:"Id"`
	Name         string `json:"Name,omitempty"`
	Path         string `json:"Path,omitempty"`
	RunTimeTicks int64  `json:"RunTimeTicks,omitempty"`
}
