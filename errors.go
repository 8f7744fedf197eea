package gralloc

import "github.com/cockroachdb/errors"

// Error is the status vocabulary shared by the Allocator and Mapper services.
// It crosses the service boundary as a value; Go errors produced alongside it
// carry the detail text.
type Error int32

const (
	// ErrorNone indicates the call succeeded
	ErrorNone Error = iota
	// ErrorBadDescriptor indicates a serialized descriptor blob was malformed or unparseable
	ErrorBadDescriptor
	// ErrorBadBuffer indicates a buffer handle argument was nil, structurally invalid,
	// not imported by this service, or in the wrong lock state for the requested operation
	ErrorBadBuffer
	// ErrorBadValue indicates an individually invalid field in an otherwise well-formed request
	ErrorBadValue
	// ErrorNoResources indicates the request could not be satisfied due to resource exhaustion
	ErrorNoResources
	// ErrorUnsupported indicates a structurally valid descriptor that this backend cannot realize
	ErrorUnsupported
)

var errorMapping = make(map[Error]string)

func (e Error) String() string {
	str, ok := errorMapping[e]
	if !ok {
		return "unknown error"
	}
	return str
}

func init() {
	errorMapping[ErrorNone] = "ErrorNone"
	errorMapping[ErrorBadDescriptor] = "ErrorBadDescriptor"
	errorMapping[ErrorBadBuffer] = "ErrorBadBuffer"
	errorMapping[ErrorBadValue] = "ErrorBadValue"
	errorMapping[ErrorNoResources] = "ErrorNoResources"
	errorMapping[ErrorUnsupported] = "ErrorUnsupported"
}

// ToError produces a Go error for this status, or nil for ErrorNone.
func (e Error) ToError() error {
	if e == ErrorNone {
		return nil
	}

	return errors.Newf("gralloc error: %s", e.String())
}
