package engine

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/nagare-player/nagare/log"
)

// eventListener provides real-time engine event monitoring via
// observe_property, translating mpv's property-change vocabulary into the
// engine Event vocabulary before invoking the bound handler.
type eventListener struct {
	socketPath string
	conn       net.Conn
	handler    EventHandler
	stopCh     chan struct{}
	mu         sync.Mutex
	listening  bool
}

func newEventListener(socketPath string, handler EventHandler) *eventListener {
	return &eventListener{
		socketPath: socketPath,
		handler:    handler,
		stopCh:     make(chan struct{}),
	}
}

// start subscribes the property observers and begins the dedicated read
// loop.
func (el *eventListener) start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	// Subscribe to property change events via IPC.
	// observe_property <id> <property> — mpv sends notifications when they change.
	properties := []struct {
		id   int
		name string
	}{
		{1, "time-pos"},
		{2, "pause"},
		{3, "seeking"},
		{4, "eof-reached"},
		{5, "paused-for-cache"},
		{6, "volume"},
		{7, "demuxer-cache-time"},
	}

	for _, prop := range properties {
		_, err := doSendCommand(el.socketPath, []interface{}{"observe_property", prop.id, prop.name})
		if err != nil {
			return fmt.Errorf("observe %s: %w", prop.name, err)
		}
	}

	// Open a persistent connection for the event read loop
	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}
	el.conn = conn
	el.listening = true

	go el.readLoop()

	log.Infof("engine event listener started on %s", el.socketPath)
	return nil
}

// stop terminates the event listener.
func (el *eventListener) stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.listening {
		return
	}

	close(el.stopCh)
	if el.conn != nil {
		el.conn.Close()
	}
	el.listening = false
}

// readLoop continuously reads events from the persistent engine connection.
// mpv sends newline-delimited JSON events when observed properties change.
func (el *eventListener) readLoop() {
	defer func() {
		el.mu.Lock()
		el.listening = false
		el.mu.Unlock()
	}()

	buf := make([]byte, 4096)
	var remainder []byte

	for {
		select {
		case <-el.stopCh:
			return
		default:
		}

		// Set read deadline to avoid blocking forever
		if err := el.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		n, err := el.conn.Read(buf)
		if err != nil {
			if strings.Contains(err.Error(), "timeout") || strings.Contains(err.Error(), "deadline") {
				continue // timeout is normal, keep listening
			}
			log.Warnf("event listener read error: %v", err)
			return
		}

		// mpv sends multiple JSON objects separated by newlines
		data := append(remainder, buf[:n]...)
		remainder = nil

		lines := strings.Split(string(data), "\n")
		for i, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			// Last incomplete line goes to remainder for next read
			if i == len(lines)-1 && !strings.HasSuffix(string(data), "\n") {
				remainder = []byte(line)
				continue
			}

			el.processLine(line)
		}
	}
}

// processLine parses a single engine event JSON line and dispatches its
// translated form.
func (el *eventListener) processLine(line string) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return // Skip unparseable lines
	}

	eventType, ok := raw["event"].(string)
	if !ok {
		return
	}

	switch eventType {
	case "property-change":
		name, _ := raw["name"].(string)
		el.dispatchProperty(name, raw["data"])
	case "playback-restart":
		el.dispatch(Event{Kind: EventPlaybackRestart})
	case "file-loaded":
		el.dispatch(Event{Kind: EventFileLoaded})
	case "end-file":
		el.dispatch(Event{Kind: EventEnded})
	}
}

// dispatchProperty translates a property change into the engine Event
// vocabulary. Repeated flips are forwarded as-is; de-duplication is the
// consumer's concern.
func (el *eventListener) dispatchProperty(name string, data interface{}) {
	switch name {
	case "pause":
		if paused, ok := data.(bool); ok {
			if paused {
				el.dispatch(Event{Kind: EventPause})
			} else {
				el.dispatch(Event{Kind: EventUnpause})
			}
		}
	case "time-pos":
		if secs, ok := data.(float64); ok {
			el.dispatch(Event{Kind: EventTimePosition, Position: int64(secs * 1000)})
		}
	case "seeking":
		if seeking, ok := data.(bool); ok && seeking {
			el.dispatch(Event{Kind: EventSeeking})
		}
	case "eof-reached":
		if eof, ok := data.(bool); ok && eof {
			el.dispatch(Event{Kind: EventEnded})
		}
	case "paused-for-cache":
		if stalled, ok := data.(bool); ok {
			if stalled {
				el.dispatch(Event{Kind: EventWaiting})
			} else {
				el.dispatch(Event{Kind: EventPlaying})
			}
		}
	case "volume":
		if volume, ok := data.(float64); ok {
			el.dispatch(Event{Kind: EventVolume, Volume: int(volume)})
		}
	case "demuxer-cache-time":
		if secs, ok := data.(float64); ok {
			el.dispatch(Event{Kind: EventBuffered, Position: int64(secs * 1000)})
		}
	}
}

func (el *eventListener) dispatch(ev Event) {
	if el.handler != nil {
		el.handler(ev)
	}
}
