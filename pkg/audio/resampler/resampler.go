// Package resampler converts PCM chunks between formats.
//
// The agent emits 24kHz mono audio; playback devices usually want 48kHz
// stereo. NewWriter wraps a destination writer with sample rate conversion
// (pure Go, no CGO) and mono/stereo channel conversion.
package resampler

import (
	"fmt"
	"sync"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/jarod-johnson-23/audiobot/pkg/audio/pcm"
)

// Writer converts chunks from srcFmt to dstFmt before forwarding them.
type Writer struct {
	srcFmt pcm.Format
	dstFmt pcm.Format
	dst    pcm.Writer

	mu        sync.Mutex
	resampler resampling.Resampler
}

// NewWriter creates a converting writer. Chunks written to it must be in
// srcFmt; dst receives chunks in dstFmt. Both formats must use 16-bit
// signed samples.
func NewWriter(dst pcm.Writer, srcFmt, dstFmt pcm.Format) (*Writer, error) {
	w := &Writer{
		srcFmt: srcFmt,
		dstFmt: dstFmt,
		dst:    dst,
	}

	if srcFmt.SampleRate != dstFmt.SampleRate {
		config := &resampling.Config{
			InputRate:  float64(srcFmt.SampleRate),
			OutputRate: float64(dstFmt.SampleRate),
			Channels:   srcFmt.Channels(),
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		}
		r, err := resampling.New(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create resampler: %w", err)
		}
		w.resampler = r
	}

	return w, nil
}

// Write converts one chunk and forwards it.
func (w *Writer) Write(c pcm.Chunk) error {
	if c.Format() != w.srcFmt {
		return fmt.Errorf("resampler: chunk format %s, want %s", c.Format(), w.srcFmt)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	data := c.Bytes()

	if w.resampler != nil {
		input := bytesToFloats(data)
		output, err := w.resampler.Process(input)
		if err != nil {
			return fmt.Errorf("resample error: %w", err)
		}
		data = floatsToBytes(output)
	}

	switch {
	case !w.srcFmt.Stereo && w.dstFmt.Stereo:
		data = monoToStereo(data)
	case w.srcFmt.Stereo && !w.dstFmt.Stereo:
		data = stereoToMono(data)
	}

	if len(data) == 0 {
		return nil
	}
	return w.dst.Write(w.dstFmt.DataChunk(data))
}

// bytesToFloats converts little-endian int16 samples to normalized floats.
func bytesToFloats(data []byte) []float64 {
	n := len(data) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		sample := int16(data[i*2]) | int16(data[i*2+1])<<8
		out[i] = float64(sample) / 32768.0
	}
	return out
}

// floatsToBytes converts normalized floats back to little-endian int16,
// clamping out-of-range values.
func floatsToBytes(samples []float64) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		sample := int16(s * 32767.0)
		if s > 1.0 {
			sample = 32767
		} else if s < -1.0 {
			sample = -32768
		}
		out[i*2] = byte(sample)
		out[i*2+1] = byte(sample >> 8)
	}
	return out
}

// monoToStereo duplicates each sample across two channels.
func monoToStereo(data []byte) []byte {
	out := make([]byte, len(data)*2)
	for i := 0; i+1 < len(data); i += 2 {
		out[i*2] = data[i]
		out[i*2+1] = data[i+1]
		out[i*2+2] = data[i]
		out[i*2+3] = data[i+1]
	}
	return out
}

// stereoToMono averages each pair of channel samples.
func stereoToMono(data []byte) []byte {
	frames := len(data) / 4
	out := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		l := int16(data[i*4]) | int16(data[i*4+1])<<8
		r := int16(data[i*4+2]) | int16(data[i*4+3])<<8
		m := int16((int32(l) + int32(r)) / 2)
		out[i*2] = byte(m)
		out[i*2+1] = byte(m >> 8)
	}
	return out
}
