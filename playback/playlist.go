package playback

import (
	"fmt"

	"github.com/nagare-player/nagare/media"
	"github.com/nagare-player/nagare/util"
	"github.com/samber/mo"
)

// Playlist is the adapter's minimal local queue, used only when the session
// manages its own item list. Previous() walks back through the actually
// visited indices rather than assuming linear order.
type Playlist struct {
	items   []media.Item
	index   int
	visited util.Stack[int]
}

// NewPlaylist creates a playlist positioned at startIndex; an out-of-range
// start is clamped into the list.
func NewPlaylist(items []media.Item, startIndex int) *Playlist {
	p := &Playlist{items: items}
	if len(items) > 0 {
		p.index = util.Clamp(startIndex, 0, len(items)-1)
	}
	return p
}

// Items returns the queued items in order.
func (p *Playlist) Items() []media.Item {
	return p.items
}

// CurrentIndex returns the index of the current item.
func (p *Playlist) CurrentIndex() int {
	return p.index
}

// Current returns the current item, when the playlist is non-empty.
func (p *Playlist) Current() mo.Option[media.Item] {
	if len(p.items) == 0 {
		return mo.None[media.Item]()
	}
	return mo.Some(p.items[p.index])
}

// SetCurrentIndex jumps to the given index, recording the previous position
// in the navigation history.
func (p *Playlist) SetCurrentIndex(index int) error {
	if index < 0 || index >= len(p.items) {
		return fmt.Errorf("playlist index %d out of range [0, %d)", index, len(p.items))
	}
	if index != p.index {
		p.visited.Push(p.index)
		p.index = index
	}
	return nil
}

// Next advances to the following item, if any.
func (p *Playlist) Next() mo.Option[media.Item] {
	if p.index+1 >= len(p.items) {
		return mo.None[media.Item]()
	}
	p.visited.Push(p.index)
	p.index++
	return mo.Some(p.items[p.index])
}

// Previous returns to the most recently visited item; with no history it
// steps linearly backwards.
func (p *Playlist) Previous() mo.Option[media.Item] {
	if len(p.items) == 0 {
		return mo.None[media.Item]()
	}

	if p.visited.Len() > 0 {
		p.index = p.visited.Pop()
		return mo.Some(p.items[p.index])
	}

	if p.index == 0 {
		return mo.None[media.Item]()
	}
	p.index--
	return mo.Some(p.items[p.index])
}
