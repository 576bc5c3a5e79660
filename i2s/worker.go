// I2S streaming engine
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package i2s

// runWorker drains a task-driven Transport's event channel for the
// lifetime of one Start/Deinit cycle (§4.4 "Event-Queue Transport"). It
// is the Go-goroutine-and-channel analogue of the ESP-IDF I2S task
// reading from its DMA event queue with xQueueReceive in
// original_source/ports/esp32/machine_i2s.c: each notification drives
// exactly one feed/empty half-buffer cycle, and a driver error is logged
// without stopping the stream (the transport is expected to recover or
// report further errors; persistent failures are a board-level concern).
func (s *Session) runWorker(events <-chan Event, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return

		case ev, ok := <-events:
			if !ok {
				return
			}

			switch ev.Kind {
			case EventTXHalfComplete, EventTXComplete:
				s.OnTXEvent()

			case EventRXHalfComplete, EventRXComplete:
				s.OnRXEvent()

			case EventDriverError:
				s.reportDriverError(ev.Err)

				// The failed transfer pushed no completion event, so
				// run the next cycle here to keep the stream going.
				if s.cfg.Mode == TX {
					s.OnTXEvent()
				} else {
					s.OnRXEvent()
				}
			}
		}
	}
}
