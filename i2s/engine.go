// I2S streaming engine
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package i2s

import (
	"github.com/usbarmory/tamago-i2s/i2s/internal/telemetry"
	"github.com/usbarmory/tamago-i2s/internal/ringqueue"
)

// engine implements the DMA half-buffer feed/empty algorithms (§4.3). It
// is embedded in Session, which adds the public API and state machine
// around it. Splitting it out keeps the hard-real-time copy/reformat path
// (this file) free of the state-machine and validation concerns in
// session.go, mirroring how soc/nxp/enet separates its bufferDescriptorRing
// (dma.go) from the ENET controller (enet.go).
type engine struct {
	id     Peripheral
	mode   Mode
	bits   Bits
	format Format

	transport Transport
	halfSize  int
	scratch   []byte

	active      []byte
	activeIndex int

	idle  ringqueue.Ring
	ready ringqueue.Ring // active queue: TX-ready buffers, or RX-filled buffers

	callback func(*Session)
	stats    Stats
}

func (e *engine) init(mode Mode, bits Bits, format Format, transport Transport, buffers [][]byte, callback func(*Session)) {
	e.mode = mode
	e.bits = bits
	e.format = format
	e.transport = transport
	e.halfSize = transport.HalfBufferSize()
	e.scratch = make([]byte, e.halfSize)
	e.active = nil
	e.activeIndex = 0
	e.callback = callback
	e.stats = Stats{}

	e.idle.Init(ringqueue.Capacity)
	e.ready.Init(ringqueue.Capacity)

	for _, b := range buffers {
		// TX: application-supplied buffers start life ready to be
		// consumed (the "idle queue" of the spec, refilled by the
		// application). RX: they start ready to be filled.
		e.idle.Enqueue(b)
	}
}

// appBytesPerHalf returns how many bytes of the *application* buffer one
// half-DMA-buffer-worth of transport traffic corresponds to. For STEREO it
// equals halfSize (a straight byte copy); for MONO it is halved, since
// every application sample is duplicated into (TX) or recovered from (RX)
// both L and R wire channels (§4.3, §6 buffer size constraint).
func (e *engine) appBytesPerHalf() int {
	if e.format == Mono {
		return e.halfSize / 2
	}
	return e.halfSize
}

// direction renders e.mode the way telemetry tags it.
func (e *engine) direction() string {
	if e.mode == TX {
		return "tx"
	}
	return "rx"
}

// reportDriverError logs a WriteHalf/ReadHalf failure observed while
// streaming (§7 "driver errors ... are logged"). It never stops the
// stream: the caller (feedHalf/emptyHalf) just leaves state untouched and
// the next event retries.
func (e *engine) reportDriverError(err error) {
	if err == nil {
		return
	}

	telemetry.DriverError(int(e.id), e.direction(), wrapErr(KindDriver, err))
}

// primeActive stages one application buffer into the active slot without
// performing any transport I/O (§4.5 "prime the active-buffer slot").
// Used by Session.Start for RX before the transport is enabled, so the
// first captured half-cycle has somewhere real to land instead of being
// discarded. Reports false if no buffer is available.
func (e *engine) primeActive() bool {
	if e.active != nil {
		return true
	}

	buf, ok := e.idle.Dequeue()
	if !ok {
		return false
	}

	e.active = buf
	e.activeIndex = 0

	return true
}

// feedHalf runs one TX feed cycle: §4.3 "Feed (TX) algorithm". It is
// invoked once per half-complete/complete event, whether that event
// arrives as a direct ISR call or from the worker loop.
func (e *engine) feedHalf() {
	if e.active == nil {
		buf, ok := e.ready.Dequeue()
		if !ok {
			// Active queue empty: the audio stream must never stall the
			// hardware mid-cycle. Silence-fill and return (§4.3 Silence
			// policy, §9 resolves TX underrun in favor of zero-fill).
			for i := range e.scratch {
				e.scratch[i] = 0
			}

			n, err := e.transport.WriteHalf(e.scratch)
			if err != nil {
				e.reportDriverError(err)
				return
			}
			if n != len(e.scratch) {
				// Backend has no room right now ("buffer full now", a
				// non-blocking short write per Transport.WriteHalf's
				// contract) — not an error, just retry on the next event.
				return
			}

			e.stats.SilenceFills++
			telemetry.Underrun(int(e.id))

			return
		}

		e.active = buf
		e.activeIndex = 0
	}

	consumed := e.appBytesPerHalf()
	src := e.active[e.activeIndex : e.activeIndex+consumed]

	switch {
	case e.format == Stereo:
		copy(e.scratch, src)
	case e.bits == Bits16:
		duplicateMono16(src, e.scratch)
	default:
		duplicateMono32(src, e.scratch)
	}

	if e.bits == Bits32 && e.transport.RequiresHalfWordSwap() {
		HalfWordSwap32(e.scratch)
	}

	n, err := e.transport.WriteHalf(e.scratch)
	if err != nil {
		e.reportDriverError(err)
		return
	}
	if n != len(e.scratch) {
		// Short, non-blocking write: nothing was actually consumed this
		// cycle, so activeIndex must not advance (property 4 — no sample
		// is skipped or reordered). The same bytes are retried next time.
		return
	}

	e.stats.FramesFed++
	e.activeIndex += consumed

	if e.activeIndex >= len(e.active) {
		done := e.active
		e.active = nil
		e.activeIndex = 0

		e.idle.Enqueue(done)
		e.stats.BuffersToIdle++
		e.fireCallback()
	}
}

// emptyHalf runs one RX empty cycle: §4.3 "Empty (RX) algorithm".
func (e *engine) emptyHalf() {
	n, err := e.transport.ReadHalf(e.scratch)
	if err != nil {
		e.reportDriverError(err)
		return
	}
	if n != len(e.scratch) {
		// No data yet, non-blocking short read: leave state untouched and
		// retry on the next event.
		return
	}

	if e.active == nil {
		buf, ok := e.idle.Dequeue()
		if !ok {
			// No application buffer to receive into: the DMA half already
			// read into scratch above is discarded (§4.3 step 1).
			return
		}

		e.active = buf
		e.activeIndex = 0
	}

	if e.bits == Bits32 && e.transport.RequiresHalfWordSwap() {
		HalfWordSwap32(e.scratch)
	}

	consumed := e.appBytesPerHalf()
	dst := e.active[e.activeIndex : e.activeIndex+consumed]

	switch {
	case e.format == Stereo:
		copy(dst, e.scratch)
	case e.bits == Bits16:
		extractMonoLeft16(e.scratch, dst)
	default:
		extractMonoLeft32(e.scratch, dst)
	}

	e.stats.FramesFed++
	e.activeIndex += consumed

	if e.activeIndex >= len(e.active) {
		done := e.active
		e.active = nil
		e.activeIndex = 0

		e.ready.Enqueue(done)
		e.stats.BuffersToActive++
		e.fireCallback()
	}
}

func (e *engine) fireCallback() {
	if e.callback == nil {
		return
	}

	// The Go analogue of the source's nlr_push/nlr_pop guard around the
	// MicroPython callback: a panicking callback disables itself and is
	// logged rather than taking the stream down with it (§7 runtime
	// callback faults).
	defer func() {
		if r := recover(); r != nil {
			e.callback = nil
			e.stats.CallbackFaults++
			telemetry.CallbackFault(int(e.id), r)
		}
	}()

	e.callback(nil)
}

// duplicateMono16 writes each 16-bit mono sample in src into both the L
// and R slots of dst (§4.3 MONO 16-bit).
func duplicateMono16(src, dst []byte) {
	samples := len(src) / 2

	for i := 0; i < samples; i++ {
		s := src[i*2 : i*2+2]
		copy(dst[i*4:i*4+2], s)
		copy(dst[i*4+2:i*4+4], s)
	}
}

// duplicateMono32 writes each 32-bit mono sample in src into both the L
// and R slots of dst (§4.3 MONO 32-bit).
func duplicateMono32(src, dst []byte) {
	samples := len(src) / 4

	for i := 0; i < samples; i++ {
		s := src[i*4 : i*4+4]
		copy(dst[i*8:i*8+4], s)
		copy(dst[i*8+4:i*8+8], s)
	}
}

// extractMonoLeft16 keeps only the left channel of each 16-bit stereo
// frame in src, writing it into dst (§4.3 RX step 3, MONO).
func extractMonoLeft16(src, dst []byte) {
	frames := len(dst) / 2

	for i := 0; i < frames; i++ {
		copy(dst[i*2:i*2+2], src[i*4:i*4+2])
	}
}

// extractMonoLeft32 is extractMonoLeft16 for 32-bit samples.
func extractMonoLeft32(src, dst []byte) {
	frames := len(dst) / 4

	for i := 0; i < frames; i++ {
		copy(dst[i*4:i*4+4], src[i*8:i*8+4])
	}
}
