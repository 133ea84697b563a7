package playback

import (
	"fmt"

	"github.com/nagare-player/nagare/engine"
)

// fakeEngine is a scriptable in-memory engine. It records every operation
// in order so tests can assert on exact call sequences.
type fakeEngine struct {
	mode engine.Mode
	ops  []string

	loadErr           error
	selectAudioErr    error
	selectSubtitleErr error
	closeErr          error

	loaded        string
	playing       bool
	closed        bool
	positionMS    int64
	durationMS    int64
	volume        int
	muted         bool
	rate          float64
	subtitleDelay int64
	streams       []engine.Stream
	audioID       string
	subtitleID    string
	nextSubID     int

	handler engine.EventHandler
}

func (f *fakeEngine) record(format string, args ...interface{}) {
	f.ops = append(f.ops, fmt.Sprintf(format, args...))
}

func (f *fakeEngine) first(op string) int {
	for i, o := range f.ops {
		if o == op {
			return i
		}
	}
	return -1
}

func (f *fakeEngine) count(op string) int {
	n := 0
	for _, o := range f.ops {
		if o == op {
			n++
		}
	}
	return n
}

func (f *fakeEngine) Mode() engine.Mode { return f.mode }

func (f *fakeEngine) Load(url string) error {
	f.record("load:%s", url)
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded = url
	return nil
}

func (f *fakeEngine) Play() error {
	f.record("play")
	f.playing = true
	return nil
}

func (f *fakeEngine) Pause() error {
	f.record("pause")
	f.playing = false
	return nil
}

func (f *fakeEngine) Stop() error {
	f.record("stop")
	f.playing = false
	f.loaded = ""
	return nil
}

func (f *fakeEngine) Seek(positionMS int64) error {
	f.record("seek:%d", positionMS)
	f.positionMS = positionMS
	return nil
}

func (f *fakeEngine) Position() (int64, error) { return f.positionMS, nil }
func (f *fakeEngine) Duration() (int64, error) { return f.durationMS, nil }

func (f *fakeEngine) Streams() ([]engine.Stream, error) {
	return f.streams, nil
}

func (f *fakeEngine) SelectAudio(id string) error {
	f.record("select-audio:%s", id)
	if f.selectAudioErr != nil {
		return f.selectAudioErr
	}
	f.audioID = id
	return nil
}

func (f *fakeEngine) SelectSubtitle(id string) error {
	f.record("select-subtitle:%s", id)
	if f.selectSubtitleErr != nil {
		return f.selectSubtitleErr
	}
	f.subtitleID = id
	return nil
}

func (f *fakeEngine) AddSubtitle(url string) (string, error) {
	f.nextSubID++
	id := fmt.Sprintf("ext-%d", f.nextSubID)
	f.record("add-subtitle:%s", url)
	f.streams = append(f.streams, engine.Stream{
		ID:       id,
		Kind:     engine.KindSubtitle,
		External: true,
	})
	return id, nil
}

func (f *fakeEngine) Volume() (int, error) { return f.volume, nil }

func (f *fakeEngine) SetVolume(volume int) error {
	f.record("set-volume:%d", volume)
	f.volume = volume
	return nil
}

func (f *fakeEngine) SetMuted(muted bool) error {
	f.record("set-muted:%t", muted)
	f.muted = muted
	return nil
}

func (f *fakeEngine) SetRate(rate float64) error {
	f.rate = rate
	return nil
}

func (f *fakeEngine) SetSubtitleDelay(ms int64) error {
	f.record("subtitle-delay:%d", ms)
	f.subtitleDelay = ms
	return nil
}

func (f *fakeEngine) Subscribe(handler engine.EventHandler) error {
	f.record("subscribe")
	f.handler = handler
	return nil
}

func (f *fakeEngine) Close() error {
	f.record("close")
	f.closed = true
	return f.closeErr
}

// emit feeds an event through the subscribed handler, as the real engine's
// listener goroutine would.
func (f *fakeEngine) emit(ev engine.Event) {
	if f.handler != nil {
		f.handler(ev)
	}
}

// fakeFactory hands out one fakeEngine per construction and keeps them all
// for inspection. configure, when set, runs on each new instance before it
// is returned.
type fakeFactory struct {
	engines   []*fakeEngine
	configure func(*fakeEngine)
}

func (ff *fakeFactory) new(mode engine.Mode) (engine.Engine, error) {
	e := &fakeEngine{mode: mode}
	if ff.configure != nil {
		ff.configure(e)
	}
	ff.engines = append(ff.engines, e)
	return e, nil
}

func (ff *fakeFactory) last() *fakeEngine {
	return ff.engines[len(ff.engines)-1]
}
