package session

import (
	"log"
	"sync"
	"time"

	"github.com/GaryBary/noosa26/internal/service/speech"
)

// AudioChunk is one synthesized speech segment scheduled for playback.
type AudioChunk struct {
	Seq      int           `json:"seq"`
	Data     []byte        `json:"data"`
	StartAt  time.Time     `json:"startAt"`
	Duration time.Duration `json:"duration"`
}

// Playback queues synthesized audio for one session. A monotonically
// advancing next-start cursor guarantees chunk N+1 never begins before
// chunk N finishes, however quickly chunks are enqueued.
type Playback struct {
	mu   sync.Mutex
	next time.Time
	seq  int
	ch   chan AudioChunk
}

func newPlayback() *Playback {
	return &Playback{ch: make(chan AudioChunk, 16)}
}

// Enqueue schedules data for playback at the cursor and advances the
// cursor by the chunk's duration. When no consumer keeps up the chunk is
// dropped; spoken replies are an enhancement, never a backlog.
func (p *Playback) Enqueue(data []byte, now time.Time) AudioChunk {
	p.mu.Lock()
	if p.next.Before(now) {
		p.next = now
	}
	chunk := AudioChunk{
		Seq:      p.seq,
		Data:     data,
		StartAt:  p.next,
		Duration: pcmDuration(len(data)),
	}
	p.seq++
	p.next = p.next.Add(chunk.Duration)
	p.mu.Unlock()

	select {
	case p.ch <- chunk:
	default:
		log.Printf("[playback] dropping chunk seq=%d, no consumer", chunk.Seq)
	}
	return chunk
}

// Chunks exposes the ordered playback stream.
func (p *Playback) Chunks() <-chan AudioChunk {
	return p.ch
}

// pcmDuration computes the play time of 16-bit mono PCM at the TTS
// sample rate.
func pcmDuration(byteLen int) time.Duration {
	samples := byteLen / 2
	return time.Duration(samples) * time.Second / time.Duration(speech.SampleRate)
}
