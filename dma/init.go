// First-fit memory allocator for DMA buffers
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dma

import (
	"container/list"
)

// Init initializes a memory region for DMA buffer allocation, the
// application must guarantee that the passed memory range is never used by
// the Go runtime (defining runtime.ramStart and runtime.ramSize
// accordingly).
//
// The SAI transport (soc/nxp/sai) reserves its ping-pong DMA region out of
// a Region in SAI.Init, so board code must call Init (or Region.Init) before
// it.
func (r *Region) Init(start uint, size uint) {
	r.Lock()
	defer r.Unlock()

	r.start = start
	r.size = size

	// initialize a single block to fit all available memory
	b := &block{
		addr: start,
		size: size,
	}

	r.freeBlocks = list.New()
	r.freeBlocks.PushFront(b)

	r.usedBlocks = make(map[uint]*block)
}

// Init initializes the global memory region for DMA buffer allocation, the
// application must guarantee that the passed memory range is never used by
// the Go runtime (defining runtime.ramStart and runtime.ramSize
// accordingly).
//
// The global region is used throughout this module for all DMA allocations
// unless board code creates and uses a dedicated Region instead (e.g. to
// place the I2S ping-pong buffers in external RAM).
func Init(start uint, size uint) {
	dma = &Region{}
	dma.Init(start, size)
}

// Reserve is the equivalent of Region.Reserve() on the global DMA region.
func Reserve(size int, align int) (addr uint, buf []byte) {
	return dma.Reserve(size, align)
}

// Reserved is the equivalent of Region.Reserved() on the global DMA region.
func Reserved(buf []byte) (res bool, addr uint) {
	return dma.Reserved(buf)
}

// Alloc is the equivalent of Region.Alloc() on the global DMA region.
func Alloc(buf []byte, align int) (addr uint) {
	return dma.Alloc(buf, align)
}

// Read is the equivalent of Region.Read() on the global DMA region.
func Read(addr uint, off int, buf []byte) {
	dma.Read(addr, off, buf)
}

// Write is the equivalent of Region.Write() on the global DMA region.
func Write(addr uint, off int, buf []byte) {
	dma.Write(addr, off, buf)
}

// Free is the equivalent of Region.Free() on the global DMA region.
func Free(addr uint) {
	dma.Free(addr)
}

// Release is the equivalent of Region.Release() on the global DMA region.
func Release(addr uint) {
	dma.Release(addr)
}
