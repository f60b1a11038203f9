package mix

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// clip holds decoded PCM audio as per-channel float64 samples in [-1, 1].
type clip struct {
	channels [][]float64
	rate     int
}

// loadClip decodes a WAV file into a clip.
func loadClip(path string) (*clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("decode audio: %s is not a valid WAV file", path)
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read PCM buffer: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("decode audio: %s has no usable format", path)
	}

	numChannels := buf.Format.NumChannels
	frames := len(buf.Data) / numChannels
	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int(1)<<uint(bitDepth-1))

	channels := make([][]float64, numChannels)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}
	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < numChannels; ch++ {
			channels[ch][frame] = float64(buf.Data[frame*numChannels+ch]) * scale
		}
	}
	return &clip{channels: channels, rate: buf.Format.SampleRate}, nil
}

// frames returns the sample count per channel.
func (c *clip) frames() int {
	if len(c.channels) == 0 {
		return 0
	}
	return len(c.channels[0])
}

// duration returns the clip length in seconds.
func (c *clip) duration() float64 {
	if c.rate == 0 {
		return 0
	}
	return float64(c.frames()) / float64(c.rate)
}

// slice extracts [start, end) seconds as a new clip. Bounds are clamped to
// the clip's extent.
func (c *clip) slice(start, end float64) *clip {
	total := c.frames()
	lo := int(math.Round(start * float64(c.rate)))
	hi := int(math.Round(end * float64(c.rate)))
	if lo < 0 {
		lo = 0
	}
	if hi > total {
		hi = total
	}
	if lo >= hi {
		return &clip{channels: make([][]float64, len(c.channels)), rate: c.rate}
	}
	channels := make([][]float64, len(c.channels))
	for ch := range channels {
		channels[ch] = append([]float64(nil), c.channels[ch][lo:hi]...)
	}
	return &clip{channels: channels, rate: c.rate}
}

// gainFactor converts a decibel adjustment to a linear amplitude factor.
func gainFactor(db float64) float64 {
	return math.Pow(10, db/20)
}

// withGain returns a copy of the clip scaled by the given dB adjustment.
// A 0 dB adjustment is a no-op and returns the clip untouched, so no
// artifact is introduced by re-processing.
func (c *clip) withGain(db float64) *clip {
	if db == 0 {
		return c
	}
	factor := gainFactor(db)
	channels := make([][]float64, len(c.channels))
	for ch := range c.channels {
		channels[ch] = make([]float64, len(c.channels[ch]))
		for i, sample := range c.channels[ch] {
			channels[ch][i] = sample * factor
		}
	}
	return &clip{channels: channels, rate: c.rate}
}

// resampled converts the clip to the target sample rate by linear
// interpolation. Returns the clip untouched when rates already match.
func (c *clip) resampled(rate int) *clip {
	if rate == c.rate || c.frames() == 0 {
		return c
	}
	srcFrames := c.frames()
	dstFrames := int(math.Round(float64(srcFrames) * float64(rate) / float64(c.rate)))
	channels := make([][]float64, len(c.channels))
	ratio := float64(srcFrames-1) / float64(max(dstFrames-1, 1))
	for ch := range c.channels {
		src := c.channels[ch]
		dst := make([]float64, dstFrames)
		for i := range dst {
			pos := float64(i) * ratio
			lo := int(pos)
			if lo >= srcFrames-1 {
				dst[i] = src[srcFrames-1]
				continue
			}
			frac := pos - float64(lo)
			dst[i] = src[lo]*(1-frac) + src[lo+1]*frac
		}
		channels[ch] = dst
	}
	return &clip{channels: channels, rate: rate}
}

// release drops the clip's sample buffers so large mixes do not hold every
// intermediate slice until the end of the call.
func (c *clip) release() {
	if c == nil {
		return
	}
	c.channels = nil
}

// writeWAV encodes the clip as 16-bit PCM.
func writeWAV(path string, c *clip) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	numChannels := len(c.channels)
	encoder := wav.NewEncoder(f, c.rate, 16, numChannels, 1)
	frames := c.frames()
	data := make([]int, frames*numChannels)
	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < numChannels; ch++ {
			sample := c.channels[ch][frame]
			if sample > 1 {
				sample = 1
			}
			if sample < -1 {
				sample = -1
			}
			data[frame*numChannels+ch] = int(sample * 32767.0)
		}
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChannels, SampleRate: c.rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("write audio: %w", err)
	}
	if err := encoder.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finalize audio: %w", err)
	}
	return f.Close()
}
