package dictation

import (
	"testing"

	"limbo/audio"
)

func TestWindowerFiveSecondsTwoSecondChunks(t *testing.T) {
	buf := audio.NewBuffer()
	buf.Append(make([]float32, 5*audio.SampleRate))
	w := NewWindower(buf, 2*audio.SampleRate)

	want := [][2]int{{0, 32000}, {32000, 64000}}
	for i, span := range want {
		c, ok := w.Next()
		if !ok {
			t.Fatalf("chunk %d missing", i)
		}
		if c.Seq != i || c.Start != span[0] || c.End != span[1] || len(c.Samples) != 32000 {
			t.Errorf("chunk %d = seq %d [%d,%d) len %d", i, c.Seq, c.Start, c.End, len(c.Samples))
		}
	}
	if _, ok := w.Next(); ok {
		t.Error("1s tail must not form a chunk")
	}
	if w.Offset() != 64000 {
		t.Errorf("Offset = %d, want 64000", w.Offset())
	}

	buf.Append(make([]float32, audio.SampleRate))
	c, ok := w.Next()
	if !ok || c.Start != 64000 || c.End != 96000 {
		t.Errorf("after growth got %v [%d,%d)", ok, c.Start, c.End)
	}
}

func TestWindowerWhole(t *testing.T) {
	buf := audio.NewBuffer()
	buf.Append([]float32{1, 2, 3})
	c := NewWindower(buf, 32000).Whole()
	if c.Start != 0 || c.End != 3 || len(c.Samples) != 3 {
		t.Errorf("Whole = [%d,%d) len %d", c.Start, c.End, len(c.Samples))
	}
}
