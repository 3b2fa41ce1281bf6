// Package pcm provides primitives for 16-bit PCM audio data.
//
// The agent streams pcm16 audio: little-endian signed 16-bit samples. Format
// describes a sample rate and channel layout, Chunk is one contiguous run of
// samples, and Writer consumes chunks (a playback device, a file, or a
// resampling stage).
package pcm

import (
	"fmt"
	"time"
)

// Format describes a 16-bit PCM audio format.
type Format struct {
	// SampleRate is the number of frames per second.
	SampleRate int

	// Stereo selects two channels instead of one.
	Stereo bool
}

// Common formats.
var (
	// L16Mono24K is the agent's output format: 24kHz mono.
	L16Mono24K = Format{SampleRate: 24000}

	// L16Mono16K is 16kHz mono.
	L16Mono16K = Format{SampleRate: 16000}

	// L16Stereo48K is 48kHz stereo, the usual playback device format.
	L16Stereo48K = Format{SampleRate: 48000, Stereo: true}
)

// Channels returns the number of channels.
func (f Format) Channels() int {
	if f.Stereo {
		return 2
	}
	return 1
}

// FrameBytes returns the number of bytes in one frame (one sample per
// channel).
func (f Format) FrameBytes() int {
	return 2 * f.Channels()
}

// BytesInDuration returns the number of bytes covering d.
func (f Format) BytesInDuration(d time.Duration) int {
	frames := int(d * time.Duration(f.SampleRate) / time.Second)
	return frames * f.FrameBytes()
}

// Duration returns the play time of n bytes.
func (f Format) Duration(n int) time.Duration {
	frames := n / f.FrameBytes()
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// String returns a short description like "pcm16/24000/mono".
func (f Format) String() string {
	layout := "mono"
	if f.Stereo {
		layout = "stereo"
	}
	return fmt.Sprintf("pcm16/%d/%s", f.SampleRate, layout)
}

// Chunk is one contiguous run of audio data in a single format.
type Chunk interface {
	// Format returns the chunk's audio format.
	Format() Format

	// Bytes returns the raw sample data.
	Bytes() []byte

	// Duration returns the chunk's play time.
	Duration() time.Duration
}

// DataChunk wraps raw sample bytes as a Chunk.
func (f Format) DataChunk(data []byte) Chunk {
	return &dataChunk{format: f, data: data}
}

type dataChunk struct {
	format Format
	data   []byte
}

func (c *dataChunk) Format() Format          { return c.format }
func (c *dataChunk) Bytes() []byte           { return c.data }
func (c *dataChunk) Duration() time.Duration { return c.format.Duration(len(c.data)) }
