package arbor

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidHandle is returned by Core.Init when the window or instance
	// handle is nil.
	ErrInvalidHandle = errors.New("arbor: window or instance handle is invalid")

	// ErrNotInitialized is returned when an operation needs a collaborator
	// whose Init has not succeeded.
	ErrNotInitialized = errors.New("arbor: not initialized")

	// ErrDeviceNotReady is returned by entity creation while the rendering
	// device is missing or uninitialized.
	ErrDeviceNotReady = errors.New("arbor: rendering device is not ready")

	// ErrCoreExpired is returned when a weak reference to the Core no longer
	// resolves.
	ErrCoreExpired = errors.New("arbor: core is no longer available")
)

// Subsystem names a startup stage of the Core.
type Subsystem string

const (
	SubsystemHandles  Subsystem = "handles"
	SubsystemDevice   Subsystem = "device"
	SubsystemRenderer Subsystem = "renderer"
	SubsystemRegistry Subsystem = "registry"
)

var subsystemMessages = map[Subsystem]string{
	SubsystemHandles:  "the 'window' or 'instance' argument is invalid",
	SubsystemDevice:   "the rendering device could not be initialized",
	SubsystemRenderer: "the renderer could not be initialized",
	SubsystemRegistry: "the entity registry could not be initialized",
}

// InitError is a fatal Core construction failure naming the subsystem that
// failed. Message is meant to be shown to the user as-is.
type InitError struct {
	Subsystem Subsystem
	Err       error
}

// Message returns the human-readable diagnostic for the failing subsystem.
func (e *InitError) Message() string {
	msg, ok := subsystemMessages[e.Subsystem]
	if !ok {
		msg = string(e.Subsystem) + " failed"
	}
	return "Failed to initialize the core:\n" + msg + "."
}

func (e *InitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("arbor: init %s failed", e.Subsystem)
	}
	return fmt.Sprintf("arbor: init %s: %v", e.Subsystem, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

func initError(sub Subsystem, err error) *InitError {
	return &InitError{Subsystem: sub, Err: err}
}
