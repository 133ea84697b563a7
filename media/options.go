package media

// PlayOptions is the host's play request: the selected item, its media
// source descriptor, the requested start position in server ticks, and an
// optional explicit source URL that short-circuits URL resolution.
type PlayOptions struct {
	Item               Item   `json:"Item"`
	Source             Source `json:"MediaSource"`
	StartPositionTicks int64  `json:"StartPositionTicks,omitempty"`
	Fullscreen         bool   `json:"Fullscreen,omitempty"`
	URL                string `json:"Url,omitempty"`

	// Items and StartIndex describe the local playlist when the adapter
	// manages its own queue.
	Items      []Item `json:"Items,omitempty"`
	StartIndex int    `json:"StartIndex,omitempty"`
}
