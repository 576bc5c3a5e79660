// I2S streaming engine
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package i2s

// BlockingDriver is the narrow interface a task-driven I2S backend wraps:
// a blocking write (TX) or read (RX) of exactly one half-buffer,
// returning once the underlying peripheral/DMA controller has consumed or
// produced it. This is the shape of ESP-IDF's i2s_write/i2s_read as used
// by original_source/ports/esp32/machine_i2s.c, as opposed to the
// ISR-driven circular DMA model soc/nxp/sai implements directly.
type BlockingDriver interface {
	Write(buf []byte) (int, error)
	Read(buf []byte) (int, error)
}

// QueueTransport adapts a BlockingDriver into an i2s.Transport for the
// task-driven scheduling model (§4.4 "Event-Queue Transport"). Each
// WriteHalf/ReadHalf call performs the blocking driver call and, on
// success, pushes the next completion event itself — the Go analogue of
// the ESP32 DMA-complete ISR pushing onto the driver's event queue that a
// waiting task drains with xQueueReceive. Because engine and worker only
// ever have one half-buffer transfer in flight at a time, the event
// channel never needs more than one slot.
type QueueTransport struct {
	driver     BlockingDriver
	mode       Mode
	halfSize   int
	supports24 bool
	swap       bool

	events chan Event
}

// NewQueueTransport constructs a QueueTransport for driver. halfSize must
// match the half-buffer size the Session is configured with; supports24Bit
// and requiresSwap are forwarded verbatim from Supports24Bit/
// RequiresHalfWordSwap.
func NewQueueTransport(mode Mode, driver BlockingDriver, halfSize int, supports24Bit, requiresSwap bool) *QueueTransport {
	return &QueueTransport{
		driver:     driver,
		mode:       mode,
		halfSize:   halfSize,
		supports24: supports24Bit,
		swap:       requiresSwap,
		events:     make(chan Event, 1),
	}
}

func (t *QueueTransport) HalfBufferSize() int        { return t.halfSize }
func (t *QueueTransport) Supports24Bit() bool        { return t.supports24 }
func (t *QueueTransport) RequiresHalfWordSwap() bool { return t.swap }
func (t *QueueTransport) Events() <-chan Event       { return t.events }

// WriteHalf implements i2s.Transport.
func (t *QueueTransport) WriteHalf(buf []byte) (int, error) {
	n, err := t.driver.Write(buf)
	if err != nil {
		t.push(Event{Kind: EventDriverError, Err: err})
		return n, err
	}

	t.push(Event{Kind: EventTXHalfComplete})

	return n, nil
}

// ReadHalf implements i2s.Transport.
func (t *QueueTransport) ReadHalf(buf []byte) (int, error) {
	n, err := t.driver.Read(buf)
	if err != nil {
		t.push(Event{Kind: EventDriverError, Err: err})
		return n, err
	}

	t.push(Event{Kind: EventRXHalfComplete})

	return n, nil
}

// Start seeds the event loop with the initial event that kicks off the
// first feed/empty cycle, unless the slot already holds one (a TX
// Session.Start primes two halves through WriteHalf first); every
// following cycle is chained by WriteHalf/ReadHalf pushing the next one.
func (t *QueueTransport) Start() error {
	kind := EventRXHalfComplete
	if t.mode == TX {
		kind = EventTXHalfComplete
	}

	t.push(Event{Kind: kind})

	return nil
}

// Stop is a no-op: QueueTransport owns no hardware state of its own, only
// the driver does, and the worker goroutine is torn down by Session.Deinit
// independently of this call.
func (t *QueueTransport) Stop() error {
	return nil
}

func (t *QueueTransport) push(ev Event) {
	select {
	case t.events <- ev:
	default:
		// the single in-flight slot is already occupied, as it is on
		// every TX Session.Start (two priming WriteHalf calls, then
		// Start); drop rather than block, the worker will still make
		// progress off whichever event landed first.
	}
}
