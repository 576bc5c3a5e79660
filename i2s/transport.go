// I2S streaming engine
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package i2s

// EventKind identifies the kind of notification a task-driven Transport
// pushes onto its event channel.
type EventKind int

const (
	EventTXHalfComplete EventKind = iota
	EventTXComplete
	EventRXHalfComplete
	EventRXComplete
	EventDriverError
)

// Event is a single notification from a task-driven (event-queue) backend.
// ISR-driven backends never construct one: they instead invoke
// Session.OnTXEvent/OnRXEvent synchronously from their interrupt
// trampoline.
type Event struct {
	Kind EventKind
	Err  error
}

// Transport is the platform-specific coupling between the engine and a
// hardware I2S/SAI controller (§4.3/§4.4, "Transport Backend
// Abstraction"). It is abstractly a sink that consumes or produces
// half-DMA-buffer-sized chunks of bytes and signals completion, either by
// calling back into the engine directly from an interrupt (circular DMA,
// Events returns nil) or by pushing onto the channel returned by Events
// for a dedicated worker goroutine to drain (blocking driver write/read,
// §4.3 "Variant backend").
type Transport interface {
	// HalfBufferSize returns the size in bytes of one DMA half-buffer.
	// It must be a multiple of the frame size for every (bits, format)
	// pair the transport is configured to support.
	HalfBufferSize() int

	// Supports24Bit reports whether this transport accepts a 24-bit
	// sample width (§6: 24-bit is optional per backend).
	Supports24Bit() bool

	// RequiresHalfWordSwap reports whether 32-bit samples must be
	// passed through HalfWordSwap32 before WriteHalf / after ReadHalf.
	RequiresHalfWordSwap() bool

	// WriteHalf transmits exactly one half-buffer of already-formatted
	// bytes (len(buf) == HalfBufferSize()). n < len(buf) with a nil
	// error means the backend currently has no room for more data (the
	// event-queue backend's "buffer full now" condition, reported as a
	// short, non-blocking write) — this is not an error and the engine
	// must not treat it as one.
	WriteHalf(buf []byte) (n int, err error)

	// ReadHalf captures exactly one half-buffer of raw, not yet
	// reformatted, bytes into buf (len(buf) == HalfBufferSize()).
	ReadHalf(buf []byte) (n int, err error)

	// Events returns the channel this transport pushes completion and
	// error notifications to for the task-driven scheduling model.
	// ISR-driven transports return nil: their completion notifications
	// arrive as direct calls to Session.OnTXEvent/OnRXEvent from an
	// interrupt trampoline instead.
	Events() <-chan Event

	// Start begins DMA/driver activity. Called once by Session.Start.
	Start() error

	// Stop halts DMA/driver activity. Safe to call on an already
	// stopped transport.
	Stop() error
}
