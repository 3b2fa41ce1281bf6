// Package player plays chunked agent audio strictly in sequence.
//
// Audio arrives as discrete encoded chunks over the data channel. The player
// queues them and drains the queue one chunk at a time: a chunk is decoded
// and written to the sink only after the previous chunk's write returned.
// The sink's Write is expected to block for the chunk's playback time, which
// is what serializes playback without overlap.
//
// Decoding is a capability boundary: the decode function is injected and its
// failures are skipped, never allowed to wedge the queue.
package player

import (
	"log/slog"
	"sync"

	"github.com/jarod-johnson-23/audiobot/pkg/audio/pcm"
)

// Decoder decodes one encoded audio chunk into PCM.
type Decoder func(chunk []byte) (pcm.Chunk, error)

// PCM16Decoder returns a pass-through decoder for raw pcm16 chunks in the
// given format.
func PCM16Decoder(format pcm.Format) Decoder {
	return func(chunk []byte) (pcm.Chunk, error) {
		return format.DataChunk(chunk), nil
	}
}

// Player drains a FIFO queue of audio chunks through a decoder into a sink.
type Player struct {
	decode Decoder
	sink   pcm.Writer

	mu        sync.Mutex
	queue     [][]byte
	playing   bool
	finalized bool
}

// New creates a player. Both decode and sink are required.
func New(decode Decoder, sink pcm.Writer) *Player {
	return &Player{decode: decode, sink: sink}
}

// Enqueue adds a chunk to the queue and starts draining if playback is idle.
func (p *Player) Enqueue(chunk []byte) {
	p.mu.Lock()
	p.queue = append(p.queue, chunk)
	p.finalized = false
	start := !p.playing
	if start {
		p.playing = true
	}
	p.mu.Unlock()

	if start {
		go p.drain()
	}
}

// Finalize marks the stream complete: once the queue drains, playback is
// done. Called on the audio-done event.
func (p *Player) Finalize() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finalized = true
}

// Reset drops all buffered chunks. The in-flight chunk, if any, finishes
// playing; nothing further is played until the next Enqueue.
func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = nil
	p.finalized = false
}

// Playing reports whether a drain is in progress.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Done reports whether the stream was finalized and fully played.
func (p *Player) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finalized && !p.playing && len(p.queue) == 0
}

// drain plays queued chunks one at a time until the queue is empty. Exactly
// one drain goroutine runs at a time.
func (p *Player) drain() {
	for {
		p.mu.Lock()
		if len(p.queue) == 0 {
			p.playing = false
			p.mu.Unlock()
			return
		}
		chunk := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		decoded, err := p.decode(chunk)
		if err != nil {
			// A bad chunk must not stop the queue.
			slog.Warn("failed to decode audio chunk", "len", len(chunk), "error", err)
			continue
		}

		if err := p.sink.Write(decoded); err != nil {
			slog.Warn("failed to play audio chunk", "error", err)
		}
	}
}
