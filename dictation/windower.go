package dictation

import "limbo/audio"

// Chunk is a contiguous window of the session buffer. End is the offset the
// next window starts from.
type Chunk struct {
	Seq     int
	Start   int
	End     int
	Samples []float32
}

// Windower cuts fixed-size chunks off the front of the unprocessed part of
// a buffer. It is owned by a single goroutine.
type Windower struct {
	buf  *audio.Buffer
	size int
	next int
	seq  int
}

func NewWindower(buf *audio.Buffer, chunkSamples int) *Windower {
	return &Windower{buf: buf, size: chunkSamples}
}

// Next returns the next complete chunk, or false if fewer than one chunk of
// unprocessed samples is available.
func (w *Windower) Next() (Chunk, bool) {
	if w.buf.Len() < w.next+w.size {
		return Chunk{}, false
	}
	samples := w.buf.Slice(w.next, w.next+w.size)
	if samples == nil {
		return Chunk{}, false
	}
	c := Chunk{Seq: w.seq, Start: w.next, End: w.next + w.size, Samples: samples}
	w.next = c.End
	w.seq++
	return c, true
}

// Offset is the first sample not yet handed out.
func (w *Windower) Offset() int { return w.next }

// Whole returns the entire buffer as a single chunk.
func (w *Windower) Whole() Chunk {
	samples := w.buf.Snapshot()
	return Chunk{Seq: 0, Start: 0, End: len(samples), Samples: samples}
}
