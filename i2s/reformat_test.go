package i2s

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// TestChannelSwap32StereoRoundTrip is S2.
func TestChannelSwap32StereoRoundTrip(t *testing.T) {
	in := []byte{0x44, 0x55, 0xAB, 0x77, 0x99, 0xBB, 0x11, 0x22}
	want := []byte{0x99, 0xBB, 0x11, 0x22, 0x44, 0x55, 0xAB, 0x77}

	buf := append([]byte(nil), in...)
	ChannelSwap32Stereo(buf)
	assert.Equal(t, want, buf)

	ChannelSwap32Stereo(buf)
	assert.Equal(t, in, buf)
}

// TestHalfWordSwap32 is S3.
func TestHalfWordSwap32(t *testing.T) {
	in := []byte{0x44, 0x33, 0x22, 0x11}
	want := []byte{0x22, 0x11, 0x44, 0x33}

	buf := append([]byte(nil), in...)
	HalfWordSwap32(buf)
	assert.Equal(t, want, buf)

	HalfWordSwap32(buf)
	assert.Equal(t, in, buf)
}

// TestChannelSwapInvolution is property 2: applying channel-swap-32-stereo
// twice is the identity, for all input buffers.
func TestChannelSwapInvolution(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		frames := rapid.IntRange(0, 64).Draw(t, "frames")
		buf := rapid.SliceOfN(rapid.Byte(), frames*8, frames*8).Draw(t, "buf")

		orig := append([]byte(nil), buf...)

		ChannelSwap32Stereo(buf)
		ChannelSwap32Stereo(buf)

		assert.Equal(t, orig, buf)
	})
}

// TestHalfWordSwapInvolution is property 3.
func TestHalfWordSwapInvolution(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		samples := rapid.IntRange(0, 64).Draw(t, "samples")
		buf := rapid.SliceOfN(rapid.Byte(), samples*4, samples*4).Draw(t, "buf")

		orig := append([]byte(nil), buf...)

		HalfWordSwap32(buf)
		HalfWordSwap32(buf)

		assert.Equal(t, orig, buf)
	})
}
