// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm

// Basic I2S playback example for tamago/arm.

package main

import (
	"fmt"
	"time"

	"github.com/usbarmory/tamago-i2s/dma"
	"github.com/usbarmory/tamago-i2s/i2s"
	"github.com/usbarmory/tamago-i2s/soc/nxp/sai"
)

const (
	saiBase = 0x02028000
	saiCCGR = 0x020c4068
	saiCG   = 12

	halfBufferSize = 4096
	sampleRate     = 48000
)

func main() {
	// reserve a DMA-visible RAM window; board code is responsible for
	// ensuring the Go runtime never touches it (runtime.ramStart/ramSize).
	dma.Init(0x90000000, 0x00100000)

	hw := &sai.SAI{
		Index:    1,
		Base:     saiBase,
		CCGR:     saiCCGR,
		CG:       saiCG,
		Mode:     i2s.TX,
		HalfSize: halfBufferSize,
	}
	hw.Init()

	session, err := i2s.New(i2s.SAI1)
	if err != nil {
		panic(err)
	}

	buffers := make([][]byte, 4)
	for i := range buffers {
		buffers[i] = make([]byte, halfBufferSize*2)
	}

	err = session.Init(i2s.Config{
		Mode:       i2s.TX,
		Bits:       i2s.Bits16,
		Format:     i2s.Stereo,
		SampleRate: sampleRate,
		Transport:  hw,
		Buffers:    buffers,
		Callback: func(*i2s.Session) {
			fmt.Println("buffer played out")
		},
	})
	if err != nil {
		panic(err)
	}

	if err := session.Start(); err != nil {
		panic(err)
	}

	// board interrupt code calls session.OnTXEvent() on every SAI DMA
	// half/complete IRQ; this example has no IRQ wiring, so it queues
	// synthetic silence (standing in for a real PCM source) through the
	// blocking Write convenience method and then calls OnTXEvent itself,
	// once per half-buffer, in place of those IRQs.
	silence := make([]byte, halfBufferSize*2)

	for i := 0; i < 10; i++ {
		if _, err := session.Write(silence); err != nil {
			fmt.Printf("write error: %v\n", err)
		}

		session.OnTXEvent()
		session.OnTXEvent()

		time.Sleep(10 * time.Millisecond)
	}

	stats := session.Stats()
	fmt.Printf("frames fed: %d, silence fills: %d\n", stats.FramesFed, stats.SilenceFills)

	if err := session.Deinit(); err != nil {
		panic(err)
	}
}
