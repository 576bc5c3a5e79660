// I2S streaming engine
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package i2s

import "errors"

// Configuration errors (§7), raised synchronously from Init/New, never
// during streaming.
var (
	ErrInvalidID         = errors.New("invalid peripheral id")
	ErrInUse             = errors.New("peripheral already in use")
	ErrInvalidMode       = errors.New("invalid mode")
	ErrInvalidBits       = errors.New("invalid bits")
	ErrInvalidFormat     = errors.New("invalid format")
	ErrInvalidBuffers    = errors.New("invalid buffers")
	ErrInvalidRate       = errors.New("invalid rate")
	ErrBits24Unsupported = errors.New("24-bit not supported by this transport")
)

// State errors (§7), raised synchronously from the public API.
var (
	ErrNotInitialized  = errors.New("session not initialized")
	ErrQueueFull       = errors.New("queue full")
	ErrNoBufferToPrime = errors.New("no buffer available to prime DMA")
)

// ErrorKind categorizes an Error into the §7 taxonomy: configuration
// mistakes caught at New/Init, state-machine misuse of the public API,
// driver errors observed while streaming, and runtime callback faults.
type ErrorKind int

const (
	KindConfiguration ErrorKind = iota
	KindState
	KindDriver
	KindCallback
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindState:
		return "state"
	case KindDriver:
		return "driver"
	case KindCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// Error wraps one of the sentinels above (or a driver-supplied error) with
// its §7 category. errors.Is still matches the wrapped sentinel directly
// (Unwrap preserves the chain); errors.As(&Error{}) additionally recovers
// the Kind, so callers don't have to switch on sentinel identity just to
// tell a misconfiguration apart from a state violation or a driver fault.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return "i2s: " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapErr returns nil for a nil err, otherwise an *Error carrying kind.
func wrapErr(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}

	return &Error{Kind: kind, Err: err}
}
