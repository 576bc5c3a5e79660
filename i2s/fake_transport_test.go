package i2s

// fakeTransport is a minimal, purely in-memory Transport used by the
// tests in this package to exercise the engine without any hardware.
// Grounded on the shape of Transport itself (§4.4); it always operates in
// the ISR-driven style (Events returns nil) since the engine/session
// tests call feedHalf/emptyHalf (and OnTXEvent/OnRXEvent) directly.
type fakeTransport struct {
	halfSize   int
	supports24 bool
	swap       bool

	written [][]byte
	toRead  [][]byte
	readIdx int

	// writeErr/readErr, if set, is returned by the next WriteHalf/ReadHalf
	// call instead of a normal transfer (simulating a driver fault).
	// writeShort/readShort, if > 0, makes the next call report that many
	// fewer bytes transferred than requested with a nil error (simulating
	// the event-queue backend's non-blocking "buffer full now"/"no data
	// yet" condition).
	writeErr   error
	readErr    error
	writeShort int
	readShort  int

	started bool
	stopped bool
}

func newFakeTransport(halfSize int) *fakeTransport {
	return &fakeTransport{halfSize: halfSize}
}

func (f *fakeTransport) HalfBufferSize() int        { return f.halfSize }
func (f *fakeTransport) Supports24Bit() bool        { return f.supports24 }
func (f *fakeTransport) RequiresHalfWordSwap() bool { return f.swap }

func (f *fakeTransport) WriteHalf(buf []byte) (int, error) {
	if f.writeErr != nil {
		err := f.writeErr
		f.writeErr = nil
		return 0, err
	}

	cp := append([]byte(nil), buf...)
	f.written = append(f.written, cp)

	n := len(buf)
	if f.writeShort > 0 {
		n -= f.writeShort
		f.writeShort = 0
	}

	return n, nil
}

func (f *fakeTransport) ReadHalf(buf []byte) (int, error) {
	if f.readErr != nil {
		err := f.readErr
		f.readErr = nil
		return 0, err
	}

	if f.readIdx < len(f.toRead) {
		copy(buf, f.toRead[f.readIdx])
		f.readIdx++
	}

	n := len(buf)
	if f.readShort > 0 {
		n -= f.readShort
		f.readShort = 0
	}

	return n, nil
}

func (f *fakeTransport) Events() <-chan Event { return nil }
func (f *fakeTransport) Start() error         { f.started = true; return nil }
func (f *fakeTransport) Stop() error          { f.stopped = true; return nil }
