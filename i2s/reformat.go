// I2S streaming engine
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package i2s

// ChannelSwap32Stereo swaps adjacent 32-bit sample pairs in place, turning
// a buffer of L,R,L,R... int32 samples into R,L,R,L... (and back, since
// the swap is its own inverse). It suits hardware that reports
// right-before-left framing for 32-bit stereo. Neither the engine nor
// Session.Write/Read applies it: no Transport reports such framing, and
// buffers pass through in the application's channel order.
//
// buf must hold a whole number of stereo frames (len(buf) % 8 == 0);
// partial frames are left untouched.
func ChannelSwap32Stereo(buf []byte) {
	frames := len(buf) / 8

	for i := 0; i < frames; i++ {
		off := i * 8

		var l, r [4]byte
		copy(l[:], buf[off:off+4])
		copy(r[:], buf[off+4:off+8])

		copy(buf[off:off+4], r[:])
		copy(buf[off+4:off+8], l[:])
	}
}

// HalfWordSwap32 exchanges the high and low 16-bit half-words of every
// 32-bit sample in place: little-endian bytes b0 b1 b2 b3 become b2 b3 b0
// b1. This matches a legacy half-word-interleaved I2S frame encoding used
// by some I2S peripherals for 32-bit samples (the STM32 HAL SAI driver
// this is grounded on, see original_source/ports/stm32/machine_i2s.c
// machine_i2s_reformat_32_bit_samples). Applying it twice restores the
// original buffer.
//
// buf must hold a whole number of 32-bit samples (len(buf) % 4 == 0);
// a partial trailing sample is left untouched.
func HalfWordSwap32(buf []byte) {
	samples := len(buf) / 4

	for i := 0; i < samples; i++ {
		off := i * 4

		var b0, b1, b2, b3 byte
		b0, b1, b2, b3 = buf[off], buf[off+1], buf[off+2], buf[off+3]

		buf[off] = b2
		buf[off+1] = b3
		buf[off+2] = b0
		buf[off+3] = b1
	}
}
