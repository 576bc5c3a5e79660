// I2S streaming engine
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package i2s

import (
	"sync"

	"github.com/usbarmory/tamago-i2s/i2s/internal/telemetry"
)

// State is a Session's position in its lifecycle (§4.1 state machine).
type State int

const (
	// StateUnconfigured is the state of a Session returned by New, before
	// Init has succeeded.
	StateUnconfigured State = iota
	// StateIdle is a configured Session, buffers attached, DMA not yet
	// running. Init may be called again from this state to reconfigure.
	StateIdle
	// StateStreaming is a Session whose transport has been Started: the
	// feed/empty cycle is live.
	StateStreaming
	// StateDeinitialized is a terminal state after Deinit; the
	// peripheral slot is released and the Session must be discarded.
	StateDeinitialized
)

func (st State) String() string {
	switch st {
	case StateUnconfigured:
		return "unconfigured"
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateDeinitialized:
		return "deinitialized"
	default:
		return "invalid"
	}
}

// Config holds the parameters of a single Init call (§4.2).
type Config struct {
	// Mode selects RX or TX.
	Mode Mode

	// Bits is the sample width. Bits24 requires Transport.Supports24Bit.
	Bits Bits

	// Format selects Mono or Stereo.
	Format Format

	// SampleRate is the target frame rate in Hz, forwarded to the
	// transport for clock-divider configuration. Must be > 0.
	SampleRate int

	// Transport is the backend that actually moves bytes to/from
	// hardware (§4.4).
	Transport Transport

	// Buffers is the initial pool of application-owned buffers, handed
	// to the engine's idle queue. Each must be sized so that
	// len(buf) % frameBytes(Bits, Format) == 0; at least one is required.
	Buffers [][]byte

	// Callback, if non-nil, is invoked every time a buffer finishes
	// playout (TX) or capture (RX) (§4.3 step 4). It runs on the
	// goroutine or interrupt context driving the engine: it must not
	// block and a panic inside it only disables the callback (§7).
	Callback func(*Session)
}

// Session is a single I2S/SAI peripheral instance bound to a Config. The
// zero value is not usable; obtain one with New. Mirrors the fixed,
// statically-allocated per-peripheral instance table of soc/nxp/i2c and
// soc/nxp/enet: no Session is heap-allocated on demand past New.
type Session struct {
	mu sync.Mutex

	id    Peripheral
	state State
	cfg   Config

	cond   sync.Cond
	engine engine

	stopWorker chan struct{}
	workerDone chan struct{}
}

var (
	sessionsMu sync.Mutex
	sessions   [maxPeripherals]*Session
)

// New allocates the Session for peripheral id, failing if id is out of
// range or already in use (§7 ErrInUse, ErrInvalidID). Callers must
// eventually call Deinit to release the slot.
func New(id Peripheral) (*Session, error) {
	if id < 0 || int(id) >= maxPeripherals {
		return nil, wrapErr(KindConfiguration, ErrInvalidID)
	}

	sessionsMu.Lock()
	defer sessionsMu.Unlock()

	if sessions[id] != nil {
		return nil, wrapErr(KindConfiguration, ErrInUse)
	}

	s := &Session{id: id, state: StateUnconfigured}
	s.cond.L = &s.mu
	sessions[id] = s

	return s, nil
}

// ID returns the peripheral this Session is bound to.
func (s *Session) ID() Peripheral {
	return s.id
}

// State returns the Session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// validateConfig returns the raw §7 sentinels; Init wraps them with
// KindConfiguration, the only category a failed validateConfig can produce.
func validateConfig(cfg Config) error {
	if cfg.Mode != RX && cfg.Mode != TX {
		return ErrInvalidMode
	}

	switch cfg.Bits {
	case Bits16, Bits24, Bits32:
	default:
		return ErrInvalidBits
	}

	if cfg.Format != Mono && cfg.Format != Stereo {
		return ErrInvalidFormat
	}

	if cfg.SampleRate <= 0 {
		return ErrInvalidRate
	}

	if cfg.Transport == nil {
		return ErrInvalidBuffers
	}

	if cfg.Bits == Bits24 && !cfg.Transport.Supports24Bit() {
		return ErrBits24Unsupported
	}

	if len(cfg.Buffers) == 0 {
		return ErrInvalidBuffers
	}

	frame := frameBytes(cfg.Bits, cfg.Format)
	half := cfg.Transport.HalfBufferSize()

	if half <= 0 || half%frameBytes(cfg.Bits, Stereo) != 0 {
		return ErrInvalidBuffers
	}

	for _, b := range cfg.Buffers {
		if len(b) == 0 || len(b)%frame != 0 {
			return ErrInvalidBuffers
		}
	}

	return nil
}

// Init configures or reconfigures the Session (§4.2). It is valid from
// StateUnconfigured or StateIdle; it is invalid once Start has been
// called without an intervening Deinit/re-New.
func (s *Session) Init(cfg Config) error {
	if err := validateConfig(cfg); err != nil {
		return wrapErr(KindConfiguration, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUnconfigured && s.state != StateIdle {
		return wrapErr(KindState, ErrInvalidMode)
	}

	// The engine never holds a back-pointer to its owning Session (§9 "no
	// back-pointer"); instead Session itself supplies the closure that
	// closes over s and forwards to the user callback with the real
	// session handle, the one value engine.fireCallback cannot construct.
	userCallback := cfg.Callback
	callback := func(*Session) {
		if userCallback != nil {
			userCallback(s)
		}
	}

	s.engine.init(cfg.Mode, cfg.Bits, cfg.Format, cfg.Transport, cfg.Buffers, callback)
	s.engine.id = s.id
	s.cfg = cfg
	s.state = StateIdle

	return nil
}

// GetBuffer hands the caller ownership of one buffer out of the engine's
// pools: for a TX session, an idle (empty) buffer ready to be filled with
// new audio and handed back via PutBuffer; for an RX session, a ready
// (filled) buffer to read out. Returns ErrNoBufferToPrime if none is
// currently available.
func (s *Session) GetBuffer() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateUnconfigured || s.state == StateDeinitialized {
		return nil, wrapErr(KindState, ErrNotInitialized)
	}

	var (
		buf []byte
		ok  bool
	)

	if s.cfg.Mode == TX {
		buf, ok = s.engine.idle.Dequeue()
	} else {
		buf, ok = s.engine.ready.Dequeue()
	}

	if !ok {
		return nil, wrapErr(KindState, ErrNoBufferToPrime)
	}

	return buf, nil
}

// PutBuffer returns ownership of buf to the engine: for TX, buf is now
// full and enters the active/ready queue to be played out; for RX, buf
// has been drained by the application and re-enters the idle queue to be
// filled again. Returns ErrQueueFull if the destination queue has no
// room (§7, scenario S5).
func (s *Session) PutBuffer(buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateUnconfigured || s.state == StateDeinitialized {
		return wrapErr(KindState, ErrNotInitialized)
	}

	var ok bool

	if s.cfg.Mode == TX {
		ok = s.engine.ready.Enqueue(buf)
	} else {
		ok = s.engine.idle.Enqueue(buf)
	}

	if !ok {
		return wrapErr(KindState, ErrQueueFull)
	}

	s.cond.Broadcast()

	return nil
}

// Write is a blocking convenience wrapper over GetBuffer/PutBuffer for a
// TX session: it waits for an idle buffer, copies data into it (data must
// fit within one pool buffer's capacity) and queues it for playout.
// Grounded on the ESP-IDF-style blocking i2s_write the MicroPython ESP32
// port wraps (original_source/ports/esp32/machine_i2s.c), exposed here as
// the ergonomic counterpart to the ISR/worker-driven GetBuffer/PutBuffer
// pair.
func (s *Session) Write(data []byte) (int, error) {
	s.mu.Lock()

	if s.state == StateUnconfigured || s.state == StateDeinitialized {
		s.mu.Unlock()
		return 0, wrapErr(KindState, ErrNotInitialized)
	}

	if s.cfg.Mode != TX {
		s.mu.Unlock()
		return 0, wrapErr(KindState, ErrInvalidMode)
	}

	var buf []byte

	for {
		b, ok := s.engine.idle.Dequeue()
		if ok {
			buf = b
			break
		}

		s.cond.Wait()
	}

	s.mu.Unlock()

	n := copy(buf, data)

	if err := s.PutBuffer(buf); err != nil {
		return 0, err
	}

	return n, nil
}

// Read is the RX counterpart of Write: it blocks for a filled buffer and
// copies it into data.
func (s *Session) Read(data []byte) (int, error) {
	s.mu.Lock()

	if s.state == StateUnconfigured || s.state == StateDeinitialized {
		s.mu.Unlock()
		return 0, wrapErr(KindState, ErrNotInitialized)
	}

	if s.cfg.Mode != RX {
		s.mu.Unlock()
		return 0, wrapErr(KindState, ErrInvalidMode)
	}

	var buf []byte

	for {
		b, ok := s.engine.ready.Dequeue()
		if ok {
			buf = b
			break
		}

		s.cond.Wait()
	}

	s.mu.Unlock()

	n := copy(data, buf)

	if err := s.PutBuffer(buf); err != nil {
		return 0, err
	}

	return n, nil
}

// Start primes the DMA half-buffer(s) and transitions the Session into
// StateStreaming (§4.5 "start: prime the active-buffer slot, seed both DMA
// halves (TX)"). §9's Open Questions resolves the priming ambiguity in
// favor of this explicit step rather than the source's no-op: a
// dma.Region.Reserve slab is unzeroed, so the first circular-DMA half-cycle
// would otherwise play or capture into whatever garbage was already in that
// memory. If the transport is task-driven (Events() != nil) a worker
// goroutine is launched to drain it (§4.4).
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return wrapErr(KindState, ErrNotInitialized)
	}

	if s.cfg.Mode == TX {
		// Seed both DMA halves before the transport is live: a ready
		// buffer is fed if the application already queued one, otherwise
		// this silence-fills — either is real, zeroed content, never the
		// reserved region's prior garbage.
		s.engine.feedHalf()
		s.engine.feedHalf()
	} else if !s.engine.primeActive() {
		return wrapErr(KindState, ErrNoBufferToPrime)
	}

	if err := s.cfg.Transport.Start(); err != nil {
		return wrapErr(KindDriver, err)
	}

	s.state = StateStreaming

	if events := s.cfg.Transport.Events(); events != nil {
		s.stopWorker = make(chan struct{})
		s.workerDone = make(chan struct{})

		go s.runWorker(events, s.stopWorker, s.workerDone)
	}

	return nil
}

// Stats returns a snapshot of the Session's runtime counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.engine.stats
}

// OnTXEvent is called synchronously from an ISR-driven transport's
// interrupt trampoline on every TX half-complete/complete interrupt. It
// must not allocate or block.
func (s *Session) OnTXEvent() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStreaming {
		return
	}

	s.engine.feedHalf()
	s.cond.Broadcast()
}

// OnRXEvent is the RX counterpart of OnTXEvent.
func (s *Session) OnRXEvent() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStreaming {
		return
	}

	s.engine.emptyHalf()
	s.cond.Broadcast()
}

// Deinit stops the transport, releases the peripheral slot and moves the
// Session to StateDeinitialized. The Session must not be used afterwards.
func (s *Session) Deinit() error {
	s.mu.Lock()

	if s.state == StateDeinitialized {
		s.mu.Unlock()
		return nil
	}

	if s.state == StateStreaming {
		stop := s.stopWorker
		done := s.workerDone

		s.mu.Unlock()

		if stop != nil {
			close(stop)
			<-done
		}

		s.mu.Lock()
	}

	var err error
	if s.cfg.Transport != nil {
		err = s.cfg.Transport.Stop()
	}

	s.state = StateDeinitialized
	s.cond.Broadcast()
	s.mu.Unlock()

	sessionsMu.Lock()
	sessions[s.id] = nil
	sessionsMu.Unlock()

	return wrapErr(KindDriver, err)
}

func (s *Session) reportDriverError(err error) {
	dir := "rx"
	if s.cfg.Mode == TX {
		dir = "tx"
	}

	telemetry.DriverError(int(s.id), dir, wrapErr(KindDriver, err))
}
