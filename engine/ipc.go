package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command []interface{} `json:"command"`
}

// ipcResponse is the JSON structure received from mpv's IPC socket.
type ipcResponse struct {
	Data  interface{} `json:"data"`
	Error string      `json:"error"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = 1 * time.Second
	readBufSize  = 4096
)

// command sends a JSON-IPC command to the engine via Unix domain socket.
// It implements a retry mechanism for transient connection errors and
// ensures thread safety. Semantic rejections (classified engine errors) are
// never retried; only transport-level failures are.
func (m *MPV) command(args ...interface{}) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		result, err := doSendCommand(m.socketPath, args)
		if err == nil {
			return result, nil
		}

		var classified *Error
		if errors.As(err, &classified) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", maxRetries, lastErr)
}

// doSendCommand performs a single IPC command attempt.
func doSendCommand(socketPath string, command []interface{}) (interface{}, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	// Marshal the command
	payload, err := json.Marshal(ipcCommand{Command: command})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	// Send command + newline (mpv requires newline-delimited JSON)
	_, err = conn.Write(append(payload, '\n'))
	if err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	// Read response with timeout
	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	buf := make([]byte, readBufSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	// Parse response
	var resp ipcResponse
	if err := json.Unmarshal(buf[:n], &resp); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	if resp.Error != "" && resp.Error != "success" {
		return nil, &Error{
			Kind: classifyIPC(resp.Error),
			Op:   fmt.Sprint(command[0]),
			Err:  errors.New(resp.Error),
		}
	}

	return resp.Data, nil
}

// classifyIPC maps the engine's free-text rejection to a semantic error
// kind. The string signatures live here at the boundary so the playback
// core branches on kinds only.
func classifyIPC(message string) Kind {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "unsupported"),
		strings.Contains(msg, "property unavailable"),
		strings.Contains(msg, "property not found"):
		return KindUnsupported
	case strings.Contains(msg, "loading failed"),
		strings.Contains(msg, "no such file"):
		return KindLoad
	default:
		return KindUnknown
	}
}
