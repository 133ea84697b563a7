package engine

import (
	"errors"
	"fmt"
)

// Kind is the semantic classification of an engine failure. The playback
// core branches on kinds only; mapping an engine's free-text diagnostics to
// a kind is the job of the boundary adapter that wraps the real engine.
type Kind int

const (
	// KindUnknown covers failures with no specific classification.
	KindUnknown Kind = iota

	// KindUnsupported marks an operation the engine cannot perform in its
	// current pipeline mode. It is the trigger for a pipeline switch.
	KindUnsupported

	// KindLoad marks a failure to load a source.
	KindLoad

	// KindAutoplayBlocked marks a playback start rejected by the execution
	// environment's autoplay policy. Non-fatal; playback stays paused.
	KindAutoplayBlocked
)

// Error is a classified engine failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("engine: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnsupported reports whether err carries KindUnsupported.
func IsUnsupported(err error) bool {
	return kindOf(err) == KindUnsupported
}

// IsLoad reports whether err carries KindLoad.
func IsLoad(err error) bool {
	return kindOf(err) == KindLoad
}

// IsAutoplayBlocked reports whether err carries KindAutoplayBlocked.
func IsAutoplayBlocked(err error) bool {
	return kindOf(err) == KindAutoplayBlocked
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
