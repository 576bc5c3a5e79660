// I2S streaming engine
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package i2s implements a bridge between a microcontroller I2S/SAI
// peripheral, driven by DMA, and application-level audio sample buffers.
//
// The package keeps the peripheral's DMA ping-pong region continuously fed
// (TX) or drained (RX) from/to a pair of FIFO queues of application
// buffers, performing the byte-level reformatting a given transport
// requires (channel swap, half-word swap) along the way. See SPEC_FULL.md
// for the full design this package implements.
package i2s

// Mode selects the direction of a session. Only master modes are
// supported, matching the source (MicroPython's I2S driver never
// implements slave mode for either RX or TX).
type Mode int

const (
	// RX configures the session to capture samples from the peripheral
	// into application buffers.
	RX Mode = iota
	// TX configures the session to play out application buffers to the
	// peripheral.
	TX
)

func (m Mode) String() string {
	switch m {
	case RX:
		return "RX"
	case TX:
		return "TX"
	default:
		return "invalid"
	}
}

// Format selects the channel layout of samples moving through a session.
type Format int

const (
	// Mono indicates a single channel; the engine duplicates samples
	// into both L and R channels on TX and keeps only the left channel
	// on RX, since no real I2S hardware transmits a true mono frame.
	Mono Format = iota
	// Stereo indicates interleaved L,R samples.
	Stereo
)

func (f Format) String() string {
	switch f {
	case Mono:
		return "mono"
	case Stereo:
		return "stereo"
	default:
		return "invalid"
	}
}

// Bits is the sample width in bits.
type Bits int

const (
	Bits16 Bits = 16
	Bits32 Bits = 32
	// Bits24 is accepted only by transports whose Supports24Bit reports
	// true (§6 Open Questions: 24-bit is optional per backend).
	Bits24 Bits = 24
)

// Peripheral identifies a physical I2S/SAI instance. The named values for
// the shipped backends are the constants below (1..3 for SAI1..SAI3,
// matching the three-SAI-block i.MX6 family; 0-based I2S0/I2S1 for other
// boards, mirroring the STM32-vs-ESP32 split in the MicroPython source this
// is grounded on).
type Peripheral int

// Peripheral id constants for the concrete backends this module ships.
// soc/nxp/sai uses the SAI1..SAI3 numbering of the i.MX6 family; a board
// exposing only two I2S-capable blocks (the STM32/ESP32 split this engine
// is grounded on) uses I2S0/I2S1 instead.
const (
	SAI1 Peripheral = iota + 1
	SAI2
	SAI3
)

const (
	I2S0 Peripheral = iota
	I2S1
)

// maxPeripherals bounds the static per-peripheral session table (§9 design
// note: retained to match the hardware's finite instance count and to
// avoid dynamic allocation on the audio path).
const maxPeripherals = 8

// frameBytes returns the byte size of one frame (one sample on every
// active channel) for the given (bits, format) pair. A 24-bit sample
// occupies a 32-bit slot, as in the engine's mono duplication path.
func frameBytes(bits Bits, format Format) int {
	channels := 1
	if format == Stereo {
		channels = 2
	}

	sampleBytes := int(bits) / 8
	if bits == Bits24 {
		sampleBytes = 4
	}

	return sampleBytes * channels
}
