// Structured logging for the I2S streaming engine
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package telemetry wraps charmbracelet/log with the handful of fields the
// I2S engine needs to report on: driver errors observed during streaming
// and runtime callback faults (spec §7). It exists so the engine never
// calls fmt.Println/print directly for anything other than an unrecoverable
// panic path, matching how this module's sibling drivers (soc/nxp/*) are
// expected to report runtime conditions once logging is wired up by board
// code, instead of tamago's bare println.
package telemetry

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.Mutex
	current = log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "i2s",
	})
)

// SetLogger replaces the package-wide logger, e.g. to redirect output to a
// board-specific UART console writer instead of stderr.
func SetLogger(l *log.Logger) {
	mu.Lock()
	defer mu.Unlock()

	current = l
}

func logger() *log.Logger {
	mu.Lock()
	defer mu.Unlock()

	return current
}

// DriverError logs a driver error observed while streaming (ISR or worker
// context); the stream is not stopped by this call.
func DriverError(peripheral int, direction string, err error) {
	logger().Error("driver error", "peripheral", peripheral, "direction", direction, "err", err)
}

// CallbackFault logs a recovered panic from a user completion callback. The
// engine clears the callback slot after logging and the stream continues.
func CallbackFault(peripheral int, recovered any) {
	logger().Error("callback fault, disabling callback", "peripheral", peripheral, "recovered", recovered)
}

// Underrun logs a TX underrun (active queue empty on a feed event) at debug
// level, since silence-fill is the expected, non-error steady state for a
// lagging producer.
func Underrun(peripheral int) {
	logger().Debug("tx underrun, silence-filled", "peripheral", peripheral)
}
