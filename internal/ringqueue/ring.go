// Fixed-capacity buffer handle queue for the I2S streaming engine
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package ringqueue implements the fixed-capacity circular FIFO used by the
// I2S engine to hand application buffers between the application context
// and the ISR/worker context that drains or fills the DMA ping-pong region.
//
// Unlike the MicroPython source this is grounded on (a plain array with
// head/tail/size fields touched from both ISR and task context under a
// spinlock), enqueue/dequeue here take a real critical section: on TamaGo
// both contexts are Go goroutines under the cooperative scheduler, so a
// sync.Mutex is sufficient and never held across a DMA or copy operation.
package ringqueue

import "sync"

// Capacity is the default queue capacity, matching QUEUE_CAPACITY in the
// source (machine_i2s.c).
const Capacity = 10

// Ring is a fixed-capacity circular FIFO of application buffer handles.
// The zero value is not ready for use, call Init first.
type Ring struct {
	mu   sync.Mutex
	buf  [][]byte
	head int
	tail int
	size int
}

// Init (re)sets the ring to empty with the given capacity. A capacity of 0
// selects Capacity.
func (r *Ring) Init(capacity int) {
	if capacity == 0 {
		capacity = Capacity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf = make([][]byte, capacity)
	r.head = 0
	r.tail = 0
	r.size = 0
}

// Len returns the number of buffers currently queued.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.size
}

// Cap returns the queue capacity.
func (r *Ring) Cap() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.buf)
}

// IsEmpty reports whether the queue holds no buffers.
func (r *Ring) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.size == 0
}

// IsFull reports whether the queue is at capacity.
func (r *Ring) IsFull() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.size == len(r.buf)
}

// Enqueue appends buf to the tail of the queue. The caller must have
// already checked IsFull — Enqueue on a full queue returns false and
// leaves the queue unmodified.
func (r *Ring) Enqueue(buf []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == len(r.buf) {
		return false
	}

	r.buf[r.tail] = buf
	r.tail = (r.tail + 1) % len(r.buf)
	r.size++

	return true
}

// Dequeue removes and returns the buffer at the head of the queue. The
// caller must have already checked IsEmpty — Dequeue on an empty queue
// returns (nil, false) and leaves the queue unmodified.
func (r *Ring) Dequeue() ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == 0 {
		return nil, false
	}

	buf := r.buf[r.head]
	r.buf[r.head] = nil
	r.head = (r.head + 1) % len(r.buf)
	r.size--

	return buf, true
}
