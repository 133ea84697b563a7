// Package state persists player preferences and per-item resume positions
// across application runs.
package state

import (
	"github.com/metafates/gache"
	"github.com/nagare-player/nagare/filesystem"
	"github.com/nagare-player/nagare/key"
	"github.com/nagare-player/nagare/where"
	"github.com/spf13/viper"
)

// playerState is the persisted shape of the player preferences. Pointer
// fields distinguish "never set" from zero values.
type playerState struct {
	Volume *int  `json:"volume"`
	Muted  *bool `json:"muted"`
}

// playerCacher provides the disk-backed registry for player preferences.
var playerCacher = gache.New[*playerState](
	&gache.Options{
		Path:       where.PlayerState(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// resumeCacher provides the disk-backed registry of per-item resume
// positions, keyed by item identifier, in host ticks.
var resumeCacher = gache.New[map[string]int64](
	&gache.Options{
		Path:       where.Resume(),
		FileSystem: &filesystem.GacheFs{},
	},
)

func player() (*playerState, error) {
	cached, expired, err := playerCacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return &playerState{}, nil
	}
	return cached, nil
}

// Volume returns the persisted volume on the 0-100 scale; the second value
// reports whether one was ever saved.
func Volume() (int, bool) {
	p, err := player()
	if err != nil || p.Volume == nil {
		return 0, false
	}
	return *p.Volume, true
}

// SetVolume persists the volume.
func SetVolume(volume int) error {
	p, err := player()
	if err != nil {
		return err
	}
	p.Volume = &volume
	return playerCacher.Set(p)
}

// Muted returns the persisted mute state; the second value reports whether
// one was ever saved.
func Muted() (bool, bool) {
	p, err := player()
	if err != nil || p.Muted == nil {
		return false, false
	}
	return *p.Muted, true
}

// SetMuted persists the mute state.
func SetMuted(muted bool) error {
	p, err := player()
	if err != nil {
		return err
	}
	p.Muted = &muted
	return playerCacher.Set(p)
}

func resumes() (map[string]int64, error) {
	cached, expired, err := resumeCacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]int64), nil
	}
	return cached, nil
}

// Resume returns the persisted resume position for the item, in host ticks.
func Resume(itemID string) (int64, bool) {
	saved, err := resumes()
	if err != nil {
		return 0, false
	}
	ticks, ok := saved[itemID]
	return ticks, ok
}

// SetResume persists the resume position for the item. Disabled when
// position saving is turned off in the configuration; a zero position
// clears the record instead of keeping a stale entry.
func SetResume(itemID string, positionTicks int64) error {
	if !viper.GetBool(key.PlayerSavePosition) {
		return nil
	}

	saved, err := resumes()
	if err != nil {
		return err
	}

	if positionTicks <= 0 {
		delete(saved, itemID)
	} else {
		saved[itemID] = positionTicks
	}
	return resumeCacher.Set(saved)
}

// Store adapts the package-level registries to the playback session's
// persistence contract.
type Store struct{}

func (Store) Volume() (int, bool)    { return Volume() }
func (Store) SetVolume(v int) error  { return SetVolume(v) }
func (Store) Muted() (bool, bool)    { return Muted() }
func (Store) SetMuted(m bool) error  { return SetMuted(m) }
func (Store) Resume(id string) (int64, bool) {
	return Resume(id)
}
func (Store) SetResume(id string, ticks int64) error {
	return SetResume(id, ticks)
}
