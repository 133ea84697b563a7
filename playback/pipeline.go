package playback

import (
	"github.com/nagare-player/nagare/engine"
	"github.com/nagare-player/nagare/log"
)

// Controller owns the active decode pipeline. Exactly one engine instance
// is live at a time; a switch fully tears the old instance down before
// constructing the new one. The managed-source pipeline is preferred; the
// raw-stream pipeline is the fallback entered when the active instance
// cannot service a requested operation. A downgrade is one-way for the
// session: there is no raw-stream to managed-source transition.
type Controller struct {
	factory  engine.Factory
	bridge   *Bridge
	mode     engine.Mode
	current  engine.Engine
	degraded bool
}

// NewController creates a controller that will construct engines through
// the given factory, starting on the preferred pipeline.
func NewController(factory engine.Factory, bridge *Bridge, preferred engine.Mode) *Controller {
	return &Controller{
		factory:  factory,
		bridge:   bridge,
		mode:     preferred,
		degraded: preferred == engine.ModeRawStream,
	}
}

// Mode reports the pipeline currently live.
func (c *Controller) Mode() engine.Mode {
	return c.mode
}

// Engine returns the live engine instance, or nil before acquisition.
func (c *Controller) Engine() engine.Engine {
	return c.current
}

// Degraded reports whether the session has fallen back to the raw-stream
// pipeline.
func (c *Controller) Degraded() bool {
	return c.degraded
}

// Acquire constructs the engine for the current pipeline mode and binds the
// event bridge to it. Reuses the live instance when one exists.
func (c *Controller) Acquire() error {
	if c.current != nil {
		return nil
	}

	e, err := c.factory(c.mode)
	if err != nil {
		return err
	}

	c.bridge.Reset()
	if err := c.bridge.Bind(e); err != nil {
		// The bridge binds lazily on engines that need a live transport;
		// binding is retried after the first load.
		log.Debugf("event bridge bind deferred: %v", err)
	}

	c.current = e
	return nil
}

// Rebind re-attaches the event bridge; used after the engine's transport
// becomes available post-load.
func (c *Controller) Rebind() error {
	if c.current == nil {
		return nil
	}
	return c.bridge.Bind(c.current)
}

// SwitchToFallback performs the atomic, position-preserving downgrade to
// the raw-stream pipeline and reloads the same source into the fresh
// instance:
//
//	record position -> tear down old instance -> construct raw-stream
//	instance -> re-bind bridge -> reload -> seek back -> resume.
//
// Stream selections are NOT carried over; the session re-issues them
// against the rebuilt mapping. A reload failure here is terminal: no
// further fallback exists.
func (c *Controller) SwitchToFallback(sourceURL string) error {
	if c.degraded {
		return &LoadError{URL: sourceURL, Mode: c.mode, Err: ErrNoSource}
	}

	var positionMS int64
	if c.current != nil {
		if pos, err := c.current.Position(); err == nil {
			positionMS = pos
		}

		// Full teardown before the new instance exists; release failures
		// must never block the switch.
		if err := c.current.Close(); err != nil {
			log.Warnf("pipeline switch: old engine teardown: %v", err)
		}
		c.current = nil
	}

	c.mode = engine.ModeRawStream
	c.degraded = true

	e, err := c.factory(c.mode)
	if err != nil {
		return &LoadError{URL: sourceURL, Mode: c.mode, Err: err}
	}
	c.current = e

	// Bind ahead of the reload so events emitted while the source is
	// probed are observed; engines whose transport only exists post-load
	// reject this early bind and are re-bound below.
	c.bridge.Reset()
	if err := c.bridge.Bind(e); err != nil {
		log.Debugf("pipeline switch: pre-load bridge bind deferred: %v", err)
	}

	if err := e.Load(sourceURL); err != nil {
		return &LoadError{URL: sourceURL, Mode: c.mode, Err: err}
	}

	if err := c.bridge.Bind(e); err != nil {
		log.Warnf("pipeline switch: event bridge bind: %v", err)
	}

	if positionMS > 0 {
		if err := e.Seek(positionMS); err != nil {
			log.Warnf("pipeline switch: seek to %dms: %v", positionMS, err)
		}
	}

	if err := e.Play(); err != nil && !engine.IsAutoplayBlocked(err) {
		log.Warnf("pipeline switch: resume: %v", err)
	}

	log.Infof("pipeline switched to %s at %dms", c.mode, positionMS)
	return nil
}

// Close tears down the live engine instance. Release failures are
// swallowed; teardown must never block.
func (c *Controller) Close() {
	if c.current == nil {
		return
	}
	if err := c.current.Close(); err != nil {
		log.Warnf("engine teardown: %v", err)
	}
	c.current = nil
}
