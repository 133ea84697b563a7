package engine

import (
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nagare-player/nagare/log"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
)

// MPV implements the Engine interface using mpv's JSON-IPC protocol.
// The process is spawned lazily on the first Load and configured for the
// pipeline mode the instance was constructed with.
type MPV struct {
	binary     string
	mode       Mode
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	listener   *eventListener
	mu         sync.Mutex // protects socket writes
}

// NewMPV creates a new MPV engine instance for the given pipeline mode
// (does not spawn the process).
func NewMPV(binary string, mode Mode) *MPV {
	if binary == "" {
		binary = "mpv"
	}
	return &MPV{
		binary: binary,
		mode:   mode,
		exited: make(chan struct{}),
	}
}

// MPVFactory returns an engine Factory producing MPV instances bound to the
// given binary.
func MPVFactory(binary string) Factory {
	return func(mode Mode) (Engine, error) {
		return NewMPV(binary, mode), nil
	}
}

// Mode reports the pipeline this instance was constructed for.
func (m *MPV) Mode() Mode {
	return m.mode
}

// Load makes url the current source. On the first call it spawns the mpv
// process with mode-specific arguments and waits for the IPC socket; on
// subsequent calls it replaces the current source over IPC.
func (m *MPV) Load(rawURL string) error {
	safeURL, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return &Error{Kind: KindLoad, Op: "load", Err: err}
	}

	if m.cmd == nil {
		if err := m.spawn(); err != nil {
			return &Error{Kind: KindLoad, Op: "load", Err: err}
		}
	}

	if _, err := m.command("loadfile", safeURL, "replace"); err != nil {
		return &Error{Kind: KindLoad, Op: "load", Err: err}
	}

	// loadfile is asynchronous; the file-loaded event confirms the probe.
	// Block until the core can safely enumerate streams.
	if err := m.waitLoaded(); err != nil {
		return &Error{Kind: KindLoad, Op: "load", Err: err}
	}

	return nil
}

// spawn starts the mpv process and waits until its IPC socket accepts
// connections.
func (m *MPV) spawn() error {
	// Generate a random socket path using os.TempDir() for cross-platform
	// support (macOS $TMPDIR is /var/folders/... not /tmp/).
	if m.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("nagare-%x.sock", randomBytes))
	}

	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		"--force-window=yes",
		"--idle=yes",
		"--pause=yes",
	}
	args = append(args, m.modeArgs()...)

	m.cmd = exec.Command(m.binary, args...)

	// Detach from parent process group to prevent cascading shell panics.
	m.cmd.SysProcAttr = sysProcAttr()

	// Disable standard pipes to prevent resource leaks.
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", m.binary, err)
	}

	// Background goroutine to reap the process and prevent zombies.
	m.exited = make(chan struct{})
	cmd := m.cmd
	exited := m.exited
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	if err := m.waitForSocket(); err != nil {
		// If the socket never became ready, kill the orphaned process.
		if m.cmd.Process != nil {
			select {
			case <-m.exited:
				// Already exited
			default:
				log.Warnf("killing %s: socket never became ready", m.binary)
				_ = m.cmd.Process.Kill()
			}
		}
		return fmt.Errorf("engine socket not ready: %w", err)
	}

	return nil
}

// modeArgs translates the pipeline mode into the engine flags that select
// between managed buffered demuxing and the raw live-stream sink.
func (m *MPV) modeArgs() []string {
	switch m.mode {
	case ModeRawStream:
		return []string{
			"--cache=no",
			"--demuxer-readahead-secs=0",
			"--untimed=no",
		}
	default:
		return []string{
			"--cache=yes",
			"--demuxer-max-bytes=64MiB",
		}
	}
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		// Check if process already exited
		select {
		case <-m.exited:
			return fmt.Errorf("engine exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// waitLoaded polls until the demuxer has probed the current source and
// stream enumeration is meaningful.
func (m *MPV) waitLoaded() error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-m.exited:
			return fmt.Errorf("engine exited during load")
		default:
		}

		data, err := m.command("get_property", "track-list/count")
		if err == nil {
			if count, ok := data.(float64); ok && count > 0 {
				return nil
			}
		}
		time.Sleep(socketWaitDelay)
	}
	return fmt.Errorf("source probe timed out")
}

// Play resumes playback.
func (m *MPV) Play() error {
	return m.setProperty("pause", false)
}

// Pause suspends playback.
func (m *MPV) Pause() error {
	return m.setProperty("pause", true)
}

// Stop halts playback and unloads the current source, keeping the process
// alive in idle mode.
func (m *MPV) Stop() error {
	if m.cmd == nil {
		return nil
	}
	_, err := m.command("stop")
	return err
}

// Seek moves playback to the given absolute position in milliseconds.
func (m *MPV) Seek(positionMS int64) error {
	_, err := m.command("seek", float64(positionMS)/1000, "absolute")
	return err
}

// Position returns the current playback position in milliseconds, floored
// to the millisecond boundary.
func (m *MPV) Position() (int64, error) {
	secs, err := m.floatProperty("time-pos")
	if err != nil {
		return 0, err
	}
	return int64(secs * 1000), nil
}

// Duration returns the total duration of the current source in
// milliseconds; zero when the engine cannot determine it.
func (m *MPV) Duration() (int64, error) {
	secs, err := m.floatProperty("duration")
	if err != nil {
		// Duration is unavailable for live sources; report zero.
		return 0, nil
	}
	return int64(secs * 1000), nil
}

// SelectAudio activates the audio track with the given engine id.
func (m *MPV) SelectAudio(id string) error {
	return m.setProperty("aid", id)
}

// SelectSubtitle activates the subtitle track with the given engine id;
// NoStreamID disables subtitle rendering.
func (m *MPV) SelectSubtitle(id string) error {
	return m.setProperty("sid", id)
}

// AddSubtitle ingests an external subtitle file or URL and returns the
// engine id assigned to the newly enumerated track.
func (m *MPV) AddSubtitle(rawURL string) (string, error) {
	if _, err := m.command("sub-add", rawURL, "select"); err != nil {
		return "", err
	}

	// The id is assigned only after ingestion; pick the newest external
	// subtitle track from the fresh enumeration.
	streams, err := m.Streams()
	if err != nil {
		return "", err
	}

	var newest string
	for _, s := range streams {
		if s.Kind == KindSubtitle && s.External {
			newest = s.ID
		}
	}
	if newest == "" {
		return "", fmt.Errorf("external subtitle not enumerated after ingestion")
	}
	return newest, nil
}

// Volume returns the current volume on the 0-100 scale.
func (m *MPV) Volume() (int, error) {
	v, err := m.floatProperty("volume")
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// SetVolume sets the volume on the 0-100 scale.
func (m *MPV) SetVolume(volume int) error {
	return m.setProperty("volume", volume)
}

// SetMuted toggles the mute state.
func (m *MPV) SetMuted(muted bool) error {
	return m.setProperty("mute", muted)
}

// SetRate sets the playback rate multiplier.
func (m *MPV) SetRate(rate float64) error {
	return m.setProperty("speed", rate)
}

// SetSubtitleDelay shifts subtitle presentation by the given number of
// milliseconds.
func (m *MPV) SetSubtitleDelay(ms int64) error {
	return m.setProperty("sub-delay", float64(ms)/1000)
}

// Subscribe binds the handler to the engine's property-change feed,
// replacing any previously bound handler.
func (m *MPV) Subscribe(handler EventHandler) error {
	if m.listener != nil {
		m.listener.stop()
		m.listener = nil
	}
	if handler == nil {
		return nil
	}

	listener := newEventListener(m.socketPath, handler)
	if err := listener.start(); err != nil {
		return err
	}
	m.listener = listener
	return nil
}

// IsRunning reports whether the engine process is responding to IPC.
func (m *MPV) IsRunning() bool {
	if m.socketPath == "" || m.cmd == nil {
		return false
	}

	// Fast check: process already exited?
	select {
	case <-m.exited:
		return false
	default:
	}

	_, err := m.command("get_property", "pid")
	return err == nil
}

// Wait returns a channel that is closed when the engine process exits.
func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

// Close shuts down the engine process and cleans up resources.
func (m *MPV) Close() error {
	if m.listener != nil {
		m.listener.stop()
		m.listener = nil
	}

	if m.socketPath == "" || m.cmd == nil {
		return nil
	}

	// Try graceful quit via IPC
	_, _ = m.command("quit")

	// Wait for process to exit (with timeout)
	select {
	case <-m.exited:
		// Clean exit
	case <-time.After(3 * time.Second):
		// Force kill if graceful quit didn't work
		_ = killProcess(m.cmd)
	}

	// Clean up the socket file
	_ = os.Remove(m.socketPath)
	m.cmd = nil

	return nil
}

// setProperty assigns a property value over IPC.
func (m *MPV) setProperty(property string, value interface{}) error {
	_, err := m.command("set_property", property, value)
	return err
}

// floatProperty is a helper to retrieve a float64 mpv property via IPC.
func (m *MPV) floatProperty(name string) (float64, error) {
	data, err := m.command("get_property", name)
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

// sanitizeMediaTarget validates that a URL is safe to pass to the engine.
// Prevents flag injection from untrusted play options.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	// Reject control characters
	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// Prevent flag injection: URLs must not start with -
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	// If it contains "://", validate as URL
	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	// Treat as local file path
	return filepath.Clean(l), nil
}
