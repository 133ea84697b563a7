package playback

import (
	"sync"
	"time"

	"github.com/nagare-player/nagare/engine"
	"github.com/nagare-player/nagare/log"
	"github.com/nagare-player/nagare/media"
	"github.com/nagare-player/nagare/util"
)

// subtitleOffsetDebounce is how long repeated offset adjustments are
// coalesced before the last value is pushed to the engine.
const subtitleOffsetDebounce = 500 * time.Millisecond

// Resolver produces playable URLs for a media source. Implementations talk
// to the media server; tests substitute a stub.
type Resolver interface {
	DirectStreamURL(source media.Source) (string, error)
	TranscodeURL(source media.Source) (string, error)
	SubtitleURL(source media.Source, stream media.Stream) (string, error)
}

// Store persists playback state across sessions: volume, mute and per-item
// resume positions.
type Store interface {
	Volume() (int, bool)
	SetVolume(volume int) error
	Muted() (bool, bool)
	SetMuted(muted bool) error
	Resume(itemID string) (int64, bool)
	SetResume(itemID string, positionTicks int64) error
}

// Session orchestrates one playback: it resolves the source, drives the
// pipeline controller, owns the index mapping for the current engine
// instance, and mediates every host-issued operation.
//
// Lifecycle transitions are strictly serialized: an operation that arrives
// while a play, stop or pipeline switch is in flight fails with
// ErrSessionBusy instead of interleaving.
type Session struct {
	bus        *Bus
	bridge     *Bridge
	controller *Controller
	resolver   Resolver
	store      Store

	mu   sync.Mutex
	busy bool

	opts      media.PlayOptions
	playlist  *Playlist
	sourceURL string
	mapper    *Mapper

	audioIndex    int
	subtitleIndex int
	active        bool
	muted         bool
	rate          float64

	offsetMu      sync.Mutex
	offsetTimer   *time.Timer
	pendingOffset int64
}

// NewSession creates a session over the given engine factory. The resolver
// and store may be nil; resolution then falls back to explicit URLs and
// state is not persisted.
func NewSession(factory engine.Factory, preferred engine.Mode, resolver Resolver, store Store) *Session {
	bus := NewBus()
	bridge := NewBridge(bus)
	return &Session{
		bus:           bus,
		bridge:        bridge,
		controller:    NewController(factory, bridge, preferred),
		resolver:      resolver,
		store:         store,
		audioIndex:    -1,
		subtitleIndex: -1,
		rate:          1,
	}
}

// SourceURL returns the resolved URL of the current source; empty before
// the first play.
func (s *Session) SourceURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sourceURL
}

// Bus exposes the session's notification bus for host wiring.
func (s *Session) Bus() *Bus {
	return s.bus
}

// Pipeline reports the mode of the live decode pipeline.
func (s *Session) Pipeline() engine.Mode {
	return s.controller.Mode()
}

// Playlist returns the session's item queue; nil before the first play.
func (s *Session) Playlist() *Playlist {
	return s.playlist
}

// CanSwitchStreams reports whether in-session stream selection is
// supported. Always true: unsupported selections degrade the pipeline
// rather than the capability.
func (s *Session) CanSwitchStreams() bool {
	return true
}

// AudioStreamIndex returns the host index of the selected audio stream, or
// -1 when none is selected.
func (s *Session) AudioStreamIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audioIndex
}

// SubtitleStreamIndex returns the host index of the selected subtitle
// stream, or -1 when subtitles are disabled.
func (s *Session) SubtitleStreamIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtitleIndex
}

func (s *Session) beginTransition() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrSessionBusy
	}
	s.busy = true
	return nil
}

func (s *Session) endTransition() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// liveEngine returns the live engine instance, or ErrEngineNotLive when
// the session is outside the load-to-stop window.
func (s *Session) liveEngine() (engine.Engine, error) {
	e := s.controller.Engine()
	if e == nil {
		return nil, ErrEngineNotLive
	}
	return e, nil
}

// Play starts playback for the given options. On a load failure the source
// is retried exactly once on the fallback pipeline; if that also fails the
// resulting LoadError is terminal and reported through the error event.
func (s *Session) Play(opts media.PlayOptions) error {
	if err := s.beginTransition(); err != nil {
		return err
	}
	defer s.endTransition()

	s.opts = opts
	s.playlist = NewPlaylist(opts.Items, opts.StartIndex)
	s.audioIndex = -1
	s.subtitleIndex = -1

	s.bus.Emit(EventBeginFetch, Payload{})

	url, err := s.resolveSource(opts)
	if err != nil {
		s.bus.Emit(EventEndFetch, Payload{})
		s.bus.Emit(EventError, Payload{Message: err.Error()})
		return err
	}
	s.mu.Lock()
	s.sourceURL = url
	s.mu.Unlock()

	if err := s.controller.Acquire(); err != nil {
		s.bus.Emit(EventEndFetch, Payload{})
		s.bus.Emit(EventError, Payload{Message: err.Error()})
		return err
	}

	if err := s.controller.Engine().Load(url); err != nil {
		log.Warnf("load on %s pipeline: %v", s.controller.Mode(), err)
		if serr := s.controller.SwitchToFallback(url); serr != nil {
			s.bus.Emit(EventEndFetch, Payload{})
			s.bus.Emit(EventError, Payload{Message: serr.Error()})
			return serr
		}
		s.bus.Emit(EventPipelineChange, Payload{Message: string(s.controller.Mode())})
	}

	if err := s.controller.Rebind(); err != nil {
		log.Warnf("event bridge bind: %v", err)
	}

	s.rebuildMapping()
	s.bus.Emit(EventEndFetch, Payload{})

	s.applyStoredState()

	if err := s.controller.Engine().Play(); err != nil {
		if engine.IsAutoplayBlocked(err) {
			// Non-fatal: the host unblocks playback with an explicit
			// unpause.
			log.Infof("autoplay blocked, awaiting explicit unpause")
		} else {
			log.Warnf("start playback: %v", err)
		}
	}

	s.active = true
	s.bus.Emit(EventItemStarted, Payload{Item: &opts.Item})
	s.bus.Once(EventActivePlayer, func(Payload) {
		s.bus.Emit(EventUIReady, Payload{})
	})

	if opts.StartPositionTicks > 0 {
		if err := s.controller.Engine().Seek(media.TicksToMilliseconds(opts.StartPositionTicks)); err != nil {
			log.Warnf("seek to start position: %v", err)
		}
	}

	s.applyDefaultSelections(opts.Source)
	return nil
}

// resolveSource picks the playable URL, in priority order: an explicit URL
// in the options, direct play of the source, then server-side transcoding.
func (s *Session) resolveSource(opts media.PlayOptions) (string, error) {
	if opts.URL != "" {
		return opts.URL, nil
	}

	source := opts.Source
	if source.SupportsDirectPlay {
		if source.Path != "" && s.resolver == nil {
			return source.Path, nil
		}
		if s.resolver != nil {
			if url, err := s.resolver.DirectStreamURL(source); err == nil && url != "" {
				return url, nil
			}
		}
	}

	if source.SupportsTranscoding {
		if source.TranscodingURL != "" {
			return source.TranscodingURL, nil
		}
		if s.resolver != nil {
			if url, err := s.resolver.TranscodeURL(source); err == nil && url != "" {
				return url, nil
			}
		}
	}

	return "", ErrNoSource
}

// rebuildMapping derives a fresh directory from the declared streams and
// the live engine's enumeration, and rebinds the mapper to it. Called after
// every load and pipeline switch.
func (s *Session) rebuildMapping() {
	dir := NewDirectory(s.opts.Source.MediaStreams, func() ([]engine.Stream, error) {
		return s.controller.Engine().Streams()
	})
	if s.mapper == nil {
		s.mapper = NewMapper(dir)
	} else {
		s.mapper.Invalidate(dir)
	}
}

// applyStoredState restores persisted volume and mute onto the fresh
// engine instance.
func (s *Session) applyStoredState() {
	if s.store == nil {
		return
	}
	if volume, ok := s.store.Volume(); ok {
		if err := s.controller.Engine().SetVolume(util.Clamp(volume, 0, 100)); err != nil {
			log.Debugf("restore volume: %v", err)
		}
	}
	if muted, ok := s.store.Muted(); ok {
		if err := s.controller.Engine().SetMuted(muted); err != nil {
			log.Debugf("restore mute: %v", err)
		} else {
			s.mu.Lock()
			s.muted = muted
			s.mu.Unlock()
		}
	}
}

// applyDefaultSelections issues the source's declared default audio and
// subtitle selections.
func (s *Session) applyDefaultSelections(source media.Source) {
	if source.DefaultAudioStreamIndex != nil {
		if err := s.applyAudio(*source.DefaultAudioStreamIndex); err != nil {
			log.Warnf("default audio selection: %v", err)
		}
	}
	if source.DefaultSubtitleStreamIndex != nil {
		if err := s.applySubtitle(*source.DefaultSubtitleStreamIndex); err != nil {
			log.Warnf("default subtitle selection: %v", err)
		}
	}
}

// SetAudioStreamIndex selects the audio stream declared at the given host
// index. A missing mapping is a logged no-op; an unsupported selection
// triggers the one-time pipeline fallback and is then retried exactly once.
func (s *Session) SetAudioStreamIndex(index int) error {
	if err := s.beginTransition(); err != nil {
		return err
	}
	defer s.endTransition()
	return s.applyAudio(index)
}

func (s *Session) applyAudio(index int) error {
	if s.mapper == nil || s.controller.Engine() == nil {
		log.Infof("no live engine, audio selection %d skipped", index)
		return nil
	}

	id, err := s.mapper.EngineID(index, engine.KindAudio)
	if err != nil {
		log.Infof("audio stream %d has no engine mapping, selection skipped", index)
		return nil
	}

	if err := s.controller.Engine().SelectAudio(id); err != nil {
		retried, rerr := s.retryAfterFallback(err, func() error {
			rid, merr := s.mapper.EngineID(index, engine.KindAudio)
			if merr != nil {
				log.Infof("audio stream %d unmapped after pipeline switch", index)
				return nil
			}
			return s.controller.Engine().SelectAudio(rid)
		})
		if !retried {
			return err
		}
		if rerr != nil {
			return rerr
		}
	}

	s.audioIndex = index
	return nil
}

// SetSubtitleStreamIndex selects the subtitle stream declared at the given
// host index; -1 disables subtitle rendering. External subtitles are
// ingested into the engine on first selection and matched by identity from
// then on.
func (s *Session) SetSubtitleStreamIndex(index int) error {
	if err := s.beginTransition(); err != nil {
		return err
	}
	defer s.endTransition()
	return s.applySubtitle(index)
}

func (s *Session) applySubtitle(index int) error {
	if s.mapper == nil || s.controller.Engine() == nil {
		log.Infof("no live engine, subtitle selection %d skipped", index)
		return nil
	}

	if index < 0 {
		if err := s.controller.Engine().SelectSubtitle(engine.NoStreamID); err != nil {
			return err
		}
		s.subtitleIndex = -1
		return nil
	}

	id, err := s.subtitleEngineID(index)
	if err != nil {
		log.Infof("subtitle stream %d has no engine mapping, selection skipped", index)
		return nil
	}

	if err := s.controller.Engine().SelectSubtitle(id); err != nil {
		retried, rerr := s.retryAfterFallback(err, func() error {
			rid, merr := s.subtitleEngineID(index)
			if merr != nil {
				log.Infof("subtitle stream %d unmapped after pipeline switch", index)
				return nil
			}
			return s.controller.Engine().SelectSubtitle(rid)
		})
		if !retried {
			return err
		}
		if rerr != nil {
			return rerr
		}
	}

	s.subtitleIndex = index
	return nil
}

// subtitleEngineID resolves a host subtitle index, ingesting external
// subtitles into the engine on first use.
func (s *Session) subtitleEngineID(index int) (string, error) {
	if id, err := s.mapper.EngineID(index, engine.KindSubtitle); err == nil {
		return id, nil
	}

	host, ok := s.streamAt(index, media.StreamSubtitle)
	if !ok || !host.IsExternal {
		return "", ErrMappingNotFound
	}
	return s.ingestExternalSubtitle(host)
}

// ingestExternalSubtitle delivers an out-of-band subtitle to the engine and
// registers the assigned identifier so later lookups match by identity.
func (s *Session) ingestExternalSubtitle(host media.Stream) (string, error) {
	url := host.DeliveryURL
	if url == "" && s.resolver != nil {
		resolved, err := s.resolver.SubtitleURL(s.opts.Source, host)
		if err != nil {
			return "", err
		}
		url = resolved
	}
	if url == "" {
		return "", ErrMappingNotFound
	}

	id, err := s.controller.Engine().AddSubtitle(url)
	if err != nil {
		return "", err
	}
	s.mapper.RegisterExternalSubtitle(host.Index, id)
	return id, nil
}

func (s *Session) streamAt(index int, t media.StreamType) (media.Stream, bool) {
	for _, stream := range s.opts.Source.MediaStreams {
		if stream.Index == index && stream.Is(t) {
			return stream, true
		}
	}
	return media.Stream{}, false
}

// retryAfterFallback handles an unsupported-operation failure by switching
// to the fallback pipeline once and running retry exactly once. Reports
// whether a retry happened; any other error class is left to the caller.
func (s *Session) retryAfterFallback(err error, retry func() error) (bool, error) {
	if !engine.IsUnsupported(err) || s.controller.Degraded() {
		return false, nil
	}

	log.Infof("operation unsupported on %s pipeline, switching to fallback", s.controller.Mode())
	if serr := s.switchToFallback(); serr != nil {
		return true, serr
	}
	return true, retry()
}

// switchToFallback performs the session side of a pipeline downgrade:
// controller switch, mapping rebuild, external subtitle re-ingestion, and
// re-issue of the active selections against the fresh enumeration.
func (s *Session) switchToFallback() error {
	if err := s.controller.SwitchToFallback(s.sourceURL); err != nil {
		s.bus.Emit(EventError, Payload{Message: err.Error()})
		return err
	}
	s.bus.Emit(EventPipelineChange, Payload{Message: string(s.controller.Mode())})

	s.rebuildMapping()

	// External subtitle registrations refer to the torn-down instance;
	// re-ingest before selections are re-issued.
	if s.subtitleIndex >= 0 {
		if host, ok := s.streamAt(s.subtitleIndex, media.StreamSubtitle); ok && host.IsExternal {
			if _, err := s.ingestExternalSubtitle(host); err != nil {
				log.Warnf("re-ingest external subtitle %d: %v", s.subtitleIndex, err)
			}
		}
	}

	if s.audioIndex >= 0 {
		if id, err := s.mapper.EngineID(s.audioIndex, engine.KindAudio); err == nil {
			if serr := s.controller.Engine().SelectAudio(id); serr != nil {
				log.Warnf("re-select audio %d: %v", s.audioIndex, serr)
			}
		}
	}
	if s.subtitleIndex >= 0 {
		if id, err := s.mapper.EngineID(s.subtitleIndex, engine.KindSubtitle); err == nil {
			if serr := s.controller.Engine().SelectSubtitle(id); serr != nil {
				log.Warnf("re-select subtitle %d: %v", s.subtitleIndex, serr)
			}
		}
	}
	return nil
}

// Stop halts playback. With destroy the engine instance is torn down and
// the bus cleared; without it the session can be reused for the next item.
// Stopping an already stopped session is a no-op.
func (s *Session) Stop(destroy bool) error {
	if err := s.beginTransition(); err != nil {
		return err
	}
	defer s.endTransition()

	if !s.active {
		if destroy {
			s.controller.Close()
			s.bus.Clear()
		}
		return nil
	}
	s.active = false

	var positionTicks int64
	if e := s.controller.Engine(); e != nil {
		if pos, err := e.Position(); err == nil {
			positionTicks = media.MillisecondsToTicks(pos)
		}
		if err := e.Stop(); err != nil {
			log.Warnf("engine stop: %v", err)
		}
	}

	if s.store != nil && s.opts.Item.ID != "" {
		if err := s.store.SetResume(s.opts.Item.ID, positionTicks); err != nil {
			log.Debugf("persist resume position: %v", err)
		}
	}

	s.bus.Emit(EventItemStopped, Payload{Item: &s.opts.Item, PositionTicks: positionTicks})
	s.bus.Emit(EventStopped, Payload{PositionTicks: positionTicks})

	if destroy {
		s.offsetMu.Lock()
		if s.offsetTimer != nil {
			s.offsetTimer.Stop()
			s.offsetTimer = nil
		}
		s.offsetMu.Unlock()

		s.controller.Close()
		s.bus.Clear()
	}
	return nil
}

// CurrentTimeTicks reports the playback position in host ticks.
func (s *Session) CurrentTimeTicks() (int64, error) {
	e, err := s.liveEngine()
	if err != nil {
		return 0, err
	}
	positionMS, err := e.Position()
	if err != nil {
		return 0, err
	}
	return media.MillisecondsToTicks(positionMS), nil
}

// SetCurrentTimeTicks seeks to an absolute position given in host ticks.
func (s *Session) SetCurrentTimeTicks(ticks int64) error {
	e, err := s.liveEngine()
	if err != nil {
		return err
	}
	return e.Seek(media.TicksToMilliseconds(ticks))
}

// DurationTicks reports the source duration in host ticks; zero when the
// engine cannot determine it.
func (s *Session) DurationTicks() (int64, error) {
	e, err := s.liveEngine()
	if err != nil {
		return 0, err
	}
	durationMS, err := e.Duration()
	if err != nil {
		return 0, err
	}
	return media.MillisecondsToTicks(durationMS), nil
}

// Volume reports the engine volume on the 0-100 scale.
func (s *Session) Volume() (int, error) {
	e, err := s.liveEngine()
	if err != nil {
		return 0, err
	}
	return e.Volume()
}

// SetVolume sets the engine volume, clamped to the 0-100 scale, and
// persists it.
func (s *Session) SetVolume(volume int) error {
	e, err := s.liveEngine()
	if err != nil {
		return err
	}
	volume = util.Clamp(volume, 0, 100)
	if err := e.SetVolume(volume); err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.SetVolume(volume); err != nil {
			log.Debugf("persist volume: %v", err)
		}
	}
	return nil
}

// Muted reports the last applied mute state.
func (s *Session) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// SetMuted toggles mute and persists it.
func (s *Session) SetMuted(muted bool) error {
	e, err := s.liveEngine()
	if err != nil {
		return err
	}
	if err := e.SetMuted(muted); err != nil {
		return err
	}
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()
	if s.store != nil {
		if err := s.store.SetMuted(muted); err != nil {
			log.Debugf("persist mute: %v", err)
		}
	}
	return nil
}

// Rate reports the last applied playback rate multiplier.
func (s *Session) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// SetRate sets the playback rate multiplier.
func (s *Session) SetRate(rate float64) error {
	e, err := s.liveEngine()
	if err != nil {
		return err
	}
	if err := e.SetRate(rate); err != nil {
		return err
	}
	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()
	return nil
}

// Pause suspends playback.
func (s *Session) Pause() error {
	e, err := s.liveEngine()
	if err != nil {
		return err
	}
	return e.Pause()
}

// Unpause resumes playback.
func (s *Session) Unpause() error {
	e, err := s.liveEngine()
	if err != nil {
		return err
	}
	return e.Play()
}

// SetSubtitleOffsetTicks shifts subtitle presentation by the given number
// of host ticks. Rapid adjustments are debounced; only the last value
// within the window reaches the engine.
func (s *Session) SetSubtitleOffsetTicks(ticks int64) {
	s.offsetMu.Lock()
	defer s.offsetMu.Unlock()

	s.pendingOffset = media.TicksToMilliseconds(ticks)
	if s.offsetTimer != nil {
		s.offsetTimer.Stop()
	}
	s.offsetTimer = time.AfterFunc(subtitleOffsetDebounce, s.flushSubtitleOffset)
}

func (s *Session) flushSubtitleOffset() {
	s.offsetMu.Lock()
	offsetMS := s.pendingOffset
	s.offsetTimer = nil
	s.offsetMu.Unlock()

	e := s.controller.Engine()
	if e == nil {
		return
	}
	if err := e.SetSubtitleDelay(offsetMS); err != nil {
		log.Debugf("subtitle offset: %v", err)
	}
}
