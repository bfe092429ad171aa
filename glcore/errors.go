package glcore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/gl/v4.6-core/gl"
)

// Kind classifies a renderer error per the error taxonomy of the core's
// contract: GPU resource failures are fatal-from-Init, preconditions are
// programmer errors, GL draw errors are logged and the frame continues or
// aborts per caller policy, and arithmetic errors indicate a buggy
// pre-sort stage.
type Kind int

const (
	// KindGpuResource covers shader compile/link failure, framebuffer
	// incompleteness, and unsupported texture formats. Surfaced from Init
	// as a returned error; callers should treat it as fatal.
	KindGpuResource Kind = iota
	// KindPrecondition covers programmer errors: non-Float attribute
	// type, N exceeding uint32 range, a nil cloud.
	KindPrecondition
	// KindGlDraw covers a GL error captured between pipeline stages.
	KindGlDraw
	// KindArithmetic covers sortCount exceeding N, which can only occur
	// if the pre-sort compute shader emits more entries than splats.
	KindArithmetic
)

func (k Kind) String() string {
	switch k {
	case KindGpuResource:
		return "GpuResource"
	case KindPrecondition:
		return "Precondition"
	case KindGlDraw:
		return "GlDraw"
	case KindArithmetic:
		return "Arithmetic"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Error wraps a renderer error with its Kind so callers can distinguish
// fatal GPU-resource failures from recoverable per-frame GL errors.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error of the given kind.
func NewError(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Msg: msg, Err: cause}
}

// maxQueuedGLErrors bounds how many errors Err will drain before assuming
// the context is gone and the queue never empties.
const maxQueuedGLErrors = 64

// ClearErrors drains any pending OpenGL errors, matching the common
// pattern of clearing stale error state before a sequence this package
// wants to attribute cleanly.
func ClearErrors() {
	drained := 0
	for gl.GetError() != gl.NO_ERROR {
		drained++
		if drained > 2000 {
			panic("glcore: GL error queue never empties, is the context terminated?")
		}
	}
}

// Err returns a non-nil error aggregating any OpenGL errors currently
// queued by the driver. After a call to Err no further errors should be
// reported until the next GL call that can raise one.
func Err() error {
	var errs glErrors
	for {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		errs = append(errs, glError(code))
		if len(errs) >= maxQueuedGLErrors {
			return fmt.Errorf("glcore: GL error queue exceeded %d entries, context may be terminated: first=%v last=%v(%d)",
				maxQueuedGLErrors, errs[0], errs[len(errs)-1], uint32(errs[len(errs)-1]))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// glErrors aggregates one or more GL error codes observed in a single
// drain of the error queue.
type glErrors []glError

func (ge glErrors) Error() string {
	parts := make([]string, len(ge))
	for i, e := range ge {
		parts[i] = e.String()
	}
	return strings.Join(parts, "; ")
}

// glError is a single GL error code, per glGetError's enum.
type glError uint32

var glErrorNames = map[uint32]string{
	gl.INVALID_ENUM:                  "invalid enum",
	gl.INVALID_FRAMEBUFFER_OPERATION: "invalid framebuffer operation",
	gl.INVALID_INDEX:                 "invalid index",
	gl.INVALID_OPERATION:             "invalid operation",
	gl.INVALID_VALUE:                 "invalid value",
	gl.OUT_OF_MEMORY:                 "out of memory",
}

func (ge glError) String() string {
	if name, ok := glErrorNames[uint32(ge)]; ok {
		return name
	}
	return "glError(" + strconv.Itoa(int(ge)) + ")"
}
