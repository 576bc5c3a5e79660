package i2s

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usbarmory/tamago-i2s/internal/ringqueue"
)

func validConfig(tr Transport) Config {
	return Config{
		Mode:       TX,
		Bits:       Bits16,
		Format:     Stereo,
		SampleRate: 44100,
		Transport:  tr,
		Buffers:    [][]byte{make([]byte, 16), make([]byte, 16)},
	}
}

func TestNewRejectsOutOfRangeID(t *testing.T) {
	_, err := New(-1)
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = New(maxPeripherals)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestNewRejectsDoubleUse(t *testing.T) {
	s, err := New(0)
	require.NoError(t, err)
	defer s.Deinit()

	_, err = New(0)
	assert.ErrorIs(t, err, ErrInUse)
}

func TestDeinitReleasesSlotForReuse(t *testing.T) {
	s, err := New(1)
	require.NoError(t, err)
	require.NoError(t, s.Deinit())

	s2, err := New(1)
	require.NoError(t, err)
	defer s2.Deinit()
}

func TestInitValidation(t *testing.T) {
	tr := newFakeTransport(16)

	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{"bad mode", func() Config { c := validConfig(tr); c.Mode = 99; return c }(), ErrInvalidMode},
		{"bad bits", func() Config { c := validConfig(tr); c.Bits = 17; return c }(), ErrInvalidBits},
		{"bad format", func() Config { c := validConfig(tr); c.Format = 99; return c }(), ErrInvalidFormat},
		{"bad rate", func() Config { c := validConfig(tr); c.SampleRate = 0; return c }(), ErrInvalidRate},
		{"no transport", func() Config { c := validConfig(tr); c.Transport = nil; return c }(), ErrInvalidBuffers},
		{"no buffers", func() Config { c := validConfig(tr); c.Buffers = nil; return c }(), ErrInvalidBuffers},
		{"misaligned buffer", func() Config { c := validConfig(tr); c.Buffers = [][]byte{make([]byte, 3)}; return c }(), ErrInvalidBuffers},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(2)
			require.NoError(t, err)
			defer s.Deinit()

			err = s.Init(tc.cfg)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestInit24BitRequiresSupport(t *testing.T) {
	tr := newFakeTransport(16)
	cfg := validConfig(tr)
	cfg.Bits = Bits24

	s, err := New(3)
	require.NoError(t, err)
	defer s.Deinit()

	err = s.Init(cfg)
	assert.ErrorIs(t, err, ErrBits24Unsupported)

	tr.supports24 = true
	err = s.Init(cfg)
	assert.NoError(t, err)
}

// TestSessionLifecycle walks New -> Init -> Start -> Deinit and checks
// the state machine and transport lifecycle calls at each step (§4.1).
func TestSessionLifecycle(t *testing.T) {
	tr := newFakeTransport(16)

	s, err := New(4)
	require.NoError(t, err)

	assert.Equal(t, StateUnconfigured, s.State())

	require.NoError(t, s.Init(validConfig(tr)))
	assert.Equal(t, StateIdle, s.State())

	require.NoError(t, s.Start())
	assert.Equal(t, StateStreaming, s.State())
	assert.True(t, tr.started)

	require.NoError(t, s.Deinit())
	assert.Equal(t, StateDeinitialized, s.State())
	assert.True(t, tr.stopped)
}

func TestStartRequiresIdle(t *testing.T) {
	s, err := New(5)
	require.NoError(t, err)
	defer s.Deinit()

	err = s.Start()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

// TestStartPrimesTXHalves is the §4.5 priming fix: Start must seed both DMA
// halves before handing control to the transport, so the first circular-DMA
// cycle never plays whatever garbage was already in the reserved memory.
// With no buffer queued yet, both seeded halves are silence.
func TestStartPrimesTXHalves(t *testing.T) {
	tr := newFakeTransport(16)

	s, err := New(0)
	require.NoError(t, err)
	defer s.Deinit()

	require.NoError(t, s.Init(validConfig(tr)))
	require.NoError(t, s.Start())

	require.Len(t, tr.written, 2)
	assert.Equal(t, make([]byte, 16), tr.written[0])
	assert.Equal(t, make([]byte, 16), tr.written[1])
}

// TestStartRXRequiresBufferToPrime confirms ErrNoBufferToPrime is actually
// wired into Start (it previously was defined but never returned there): an
// RX session started with no idle buffer to stage into the active slot
// fails instead of silently starting the transport unprimed.
func TestStartRXRequiresBufferToPrime(t *testing.T) {
	tr := newFakeTransport(16)

	cfg := validConfig(tr)
	cfg.Mode = RX
	cfg.Buffers = [][]byte{make([]byte, 16)}

	s, err := New(0)
	require.NoError(t, err)
	defer s.Deinit()

	require.NoError(t, s.Init(cfg))

	// Drain the only idle buffer so priming has nothing left to stage.
	_, ok := s.engine.idle.Dequeue()
	require.True(t, ok)

	err = s.Start()
	assert.ErrorIs(t, err, ErrNoBufferToPrime)
	assert.False(t, tr.started)
}

// TestCallbackReceivesSession is the fix for engine.fireCallback calling
// the callback with a nil *Session: the application-facing Config.Callback
// must receive the real Session handle it was registered against.
func TestCallbackReceivesSession(t *testing.T) {
	tr := newFakeTransport(8)

	var got *Session

	s, err := New(0)
	require.NoError(t, err)
	defer s.Deinit()

	cfg := validConfig(tr)
	cfg.Buffers = [][]byte{make([]byte, 8)}
	cfg.Callback = func(sess *Session) {
		got = sess
	}

	require.NoError(t, s.Init(cfg))
	require.NoError(t, s.Start())

	buf, err := s.GetBuffer()
	require.NoError(t, err)
	require.NoError(t, s.PutBuffer(buf))

	s.OnTXEvent()

	assert.Same(t, s, got)
}

// TestPutBufferQueueFull is S5: once the active queue reaches capacity,
// a further PutBuffer fails with ErrQueueFull and leaves the queue
// unmodified.
func TestPutBufferQueueFull(t *testing.T) {
	tr := newFakeTransport(16)

	s, err := New(6)
	require.NoError(t, err)
	defer s.Deinit()

	require.NoError(t, s.Init(validConfig(tr)))

	for i := 0; i < ringqueue.Capacity; i++ {
		assert.NoError(t, s.PutBuffer(make([]byte, 16)))
	}

	err = s.PutBuffer(make([]byte, 16))
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestGetBufferEmptyQueue(t *testing.T) {
	tr := newFakeTransport(16)

	s, err := New(7)
	require.NoError(t, err)
	defer s.Deinit()

	cfg := validConfig(tr)
	cfg.Buffers = [][]byte{make([]byte, 16)}
	require.NoError(t, s.Init(cfg))

	_, err = s.GetBuffer()
	require.NoError(t, err)

	_, err = s.GetBuffer()
	assert.ErrorIs(t, err, ErrNoBufferToPrime)
}

func TestGetPutBufferBeforeInit(t *testing.T) {
	s, err := New(0)
	require.NoError(t, err)
	defer s.Deinit()

	_, err = s.GetBuffer()
	assert.ErrorIs(t, err, ErrNotInitialized)

	err = s.PutBuffer(make([]byte, 16))
	assert.ErrorIs(t, err, ErrNotInitialized)
}
