package audio

import "sync"

// Buffer is the append-only sample store for one recording session. All
// methods hold the lock only for an append, a length read or a copy.
type Buffer struct {
	mu      sync.Mutex
	samples []float32
	gen     uint64
}

func NewBuffer() *Buffer {
	return &Buffer{samples: make([]float32, 0, SampleRate*30)}
}

func (b *Buffer) Append(samples []float32) {
	if len(samples) == 0 {
		return
	}
	b.mu.Lock()
	b.samples = append(b.samples, samples...)
	b.mu.Unlock()
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}

// Slice copies samples [from, to). It returns nil when the range is not
// fully available.
func (b *Buffer) Slice(from, to int) []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if from < 0 || to < from || to > len(b.samples) {
		return nil
	}
	out := make([]float32, to-from)
	copy(out, b.samples[from:to])
	return out
}

func (b *Buffer) Snapshot() []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]float32, len(b.samples))
	copy(out, b.samples)
	return out
}

// Reset clears the buffer for the next session and bumps the generation.
func (b *Buffer) Reset() {
	b.mu.Lock()
	b.samples = b.samples[:0]
	b.gen++
	b.mu.Unlock()
}

func (b *Buffer) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen
}

// Duration reports how many seconds of audio n samples represent.
func Duration(n int) float64 {
	return float64(n) / float64(SampleRate)
}
