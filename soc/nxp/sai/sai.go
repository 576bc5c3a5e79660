// NXP SAI driver
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package sai implements a Transport (i2s.Transport) for NXP SAI
// (Synchronous Audio Interface) controllers, adopting the following
// reference specification:
//   - IMX6ULLRM - i.MX 6ULL Applications Processor Reference Manual - Rev 1 2017/11
//
// This package is only meant to be used with `GOOS=tamago GOARCH=arm` as
// supported by the TamaGo framework for bare metal Go on ARM SoCs, see
// https://github.com/usbarmory/tamago.
//
// It is the ISR-driven transport of the streaming engine: the DMA
// ping-pong region is reserved once at Init and WriteHalf/ReadHalf only
// ever touch the half the hardware is not currently consuming/filling.
// Completion is signalled to i2s.Session.OnTXEvent/OnRXEvent directly from
// board code's interrupt trampoline, not through this package (Events
// always returns nil, see i2s.Transport).
package sai

import (
	"errors"
	"sync"
	"time"

	"github.com/usbarmory/tamago-i2s/dma"
	"github.com/usbarmory/tamago-i2s/i2s"
	"github.com/usbarmory/tamago-i2s/internal/reg"
)

// SAI registers
// (p2208, 51.6 SAI Memory Map/Register Definition, IMX6ULLRM)
const (
	SAIx_TCSR = 0x0000
	TCSR_TE   = 31
	TCSR_FR   = 25
	TCSR_SR   = 24
	TCSR_FRDE = 0

	SAIx_TCR2 = 0x0008
	TCR2_BCP  = 25
	TCR2_DIV  = 0

	SAIx_TCR3 = 0x000c
	SAIx_TCR4 = 0x0010
	TCR4_FRSZ = 8
	TCR4_SYWD = 5
	TCR4_MF   = 4

	SAIx_TCR5 = 0x0014
	TCR5_WNW  = 16
	TCR5_W0W  = 8

	SAIx_TDR0 = 0x0020

	SAIx_RCSR = 0x0080
	RCSR_RE   = 31
	RCSR_FR   = 25
	RCSR_FRDE = 0

	SAIx_RCR2 = 0x0088
	SAIx_RCR3 = 0x008c
	SAIx_RCR4 = 0x0090
	SAIx_RCR5 = 0x0094

	SAIx_RDR0 = 0x00a0
)

// Configuration constants
const (
	// Timeout is the default timeout waiting for the software reset bit
	// to self-clear during Init.
	Timeout = 10 * time.Millisecond

	// pingPongHalves is the number of halves in the DMA ping-pong
	// region: always 2 (the spec's "DMA Ping-Pong Region").
	pingPongHalves = 2
)

// SAI represents a SAI controller instance configured as one direction
// (TX or RX) of an i2s.Session's Transport.
type SAI struct {
	sync.Mutex

	// Controller index
	Index int
	// Base register
	Base uint32
	// Clock gate register
	CCGR uint32
	// Clock gate
	CG int
	// Mode selects TX or RX.
	Mode i2s.Mode
	// HalfSize is the size in bytes of one DMA half-buffer.
	HalfSize int
	// DMA is the region halves are reserved from. If nil, dma.Default()
	// is used.
	DMA *dma.Region

	csr uint32
	cr2 uint32
	cr4 uint32
	cr5 uint32
	dr  uint32

	region  *dma.Region
	addr    uint
	buf     []byte
	active  int // index (0/1) of the half the next WriteHalf/ReadHalf touches, the one hardware is not using
	started bool
}

// Init reserves the ping-pong DMA region and configures the bus/frame
// registers for 16/32-bit stereo I2S master mode. It must be called
// before the SAI is passed to i2s.Session.Init as a Transport.
func (hw *SAI) Init() {
	hw.Lock()
	defer hw.Unlock()

	if hw.Base == 0 || hw.CCGR == 0 {
		panic("invalid SAI controller instance")
	}

	if hw.HalfSize == 0 {
		panic("invalid SAI half-buffer size")
	}

	hw.region = hw.DMA
	if hw.region == nil {
		hw.region = dma.Default()
	}

	if hw.Mode == i2s.TX {
		hw.csr = hw.Base + SAIx_TCSR
		hw.cr2 = hw.Base + SAIx_TCR2
		hw.cr4 = hw.Base + SAIx_TCR4
		hw.cr5 = hw.Base + SAIx_TCR5
		hw.dr = hw.Base + SAIx_TDR0
	} else {
		hw.csr = hw.Base + SAIx_RCSR
		hw.cr2 = hw.Base + SAIx_RCR2
		hw.cr4 = hw.Base + SAIx_RCR4
		hw.cr5 = hw.Base + SAIx_RCR5
		hw.dr = hw.Base + SAIx_RDR0
	}

	// enable clock
	reg.SetN(hw.CCGR, hw.CG, 0b11, 0b11)

	// software reset, self-clearing
	reg.Set(hw.csr, TCSR_SR)
	reg.WaitFor(Timeout, hw.csr, TCSR_SR, 1, 0)

	// bit clock polarity: active low, 32-bit frame sync, MSB first, 32 bits/word
	reg.Set(hw.cr2, TCR2_BCP)
	reg.SetN(hw.cr4, TCR4_SYWD, 0b11111, 31)
	reg.Set(hw.cr4, TCR4_MF)
	reg.SetN(hw.cr5, TCR5_WNW, 0b11111, 31)
	reg.SetN(hw.cr5, TCR5_W0W, 0b11111, 31)

	hw.addr, hw.buf = hw.region.Reserve(hw.HalfSize*pingPongHalves, 0)
	hw.active = 0
}

// HalfBufferSize implements i2s.Transport.
func (hw *SAI) HalfBufferSize() int {
	return hw.HalfSize
}

// Supports24Bit implements i2s.Transport. SAI's 32-bit word slot can carry
// a left-justified 24-bit sample, so this backend accepts it.
func (hw *SAI) Supports24Bit() bool {
	return true
}

// RequiresHalfWordSwap implements i2s.Transport. The i.MX6 SAI FIFO
// presents 32-bit samples MSB-first with no half-word swap needed, unlike
// the STM32 SPI/I2S peripheral this engine was originally grounded on.
func (hw *SAI) RequiresHalfWordSwap() bool {
	return false
}

// WriteHalf copies one already-reformatted half-buffer into the DMA
// ping-pong half not currently claimed by hardware.
func (hw *SAI) WriteHalf(buf []byte) (int, error) {
	hw.Lock()
	defer hw.Unlock()

	if len(buf) != hw.HalfSize {
		return 0, errors.New("sai: invalid half-buffer size")
	}

	off := hw.active * hw.HalfSize
	hw.region.Write(hw.addr, off, buf)
	hw.active = (hw.active + 1) % pingPongHalves

	return len(buf), nil
}

// ReadHalf copies the DMA half most recently filled by hardware into buf.
func (hw *SAI) ReadHalf(buf []byte) (int, error) {
	hw.Lock()
	defer hw.Unlock()

	if len(buf) != hw.HalfSize {
		return 0, errors.New("sai: invalid half-buffer size")
	}

	off := hw.active * hw.HalfSize
	hw.region.Read(hw.addr, off, buf)
	hw.active = (hw.active + 1) % pingPongHalves

	return len(buf), nil
}

// Events implements i2s.Transport: this is an ISR-driven backend, so
// completion is reported by board code calling Session.OnTXEvent /
// Session.OnRXEvent directly from the SAI interrupt vector, not through a
// channel.
func (hw *SAI) Events() <-chan i2s.Event {
	return nil
}

// Start enables the transmitter or receiver and its DMA request line.
func (hw *SAI) Start() error {
	hw.Lock()
	defer hw.Unlock()

	if hw.region == nil {
		return errors.New("sai: not initialized")
	}

	if hw.Mode == i2s.TX {
		reg.Set(hw.csr, TCSR_FRDE)
		reg.Set(hw.csr, TCSR_TE)
	} else {
		reg.Set(hw.csr, RCSR_FRDE)
		reg.Set(hw.csr, RCSR_RE)
	}

	hw.started = true

	return nil
}

// Stop disables the transmitter or receiver. Safe to call when already
// stopped.
func (hw *SAI) Stop() error {
	hw.Lock()
	defer hw.Unlock()

	if !hw.started {
		return nil
	}

	if hw.Mode == i2s.TX {
		reg.Clear(hw.csr, TCSR_TE)
		reg.Clear(hw.csr, TCSR_FRDE)
	} else {
		reg.Clear(hw.csr, RCSR_RE)
		reg.Clear(hw.csr, RCSR_FRDE)
	}

	hw.started = false

	return nil
}
