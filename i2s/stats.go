// I2S streaming engine
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package i2s

// Stats accumulates per-session runtime counters, read with Session.Stats.
// Grounded on the counter style of soc/nxp/enet's link/frame statistics:
// plain monotonically increasing counts, no rates or windows.
type Stats struct {
	// FramesFed counts half-buffer feed/empty cycles completed, TX or RX.
	FramesFed uint64

	// SilenceFills counts TX cycles where the active queue was empty and
	// a zero-filled half-buffer was written instead (§4.3 Silence policy).
	SilenceFills uint64

	// BuffersToIdle counts application buffers that finished TX playout
	// and were returned to the idle queue.
	BuffersToIdle uint64

	// BuffersToActive counts application buffers that finished RX capture
	// and were moved to the ready/active queue.
	BuffersToActive uint64

	// CallbackFaults counts completion callbacks that panicked and were
	// recovered; the callback is disabled after the first fault.
	CallbackFaults uint64
}
