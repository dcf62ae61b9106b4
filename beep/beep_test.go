package beep

import "testing"

func TestSynthLength(t *testing.T) {
	s := synth(tones[CueStart])
	if want := int(sampleRate * 0.2); len(s) != want {
		t.Errorf("start cue has %d samples, want %d", len(s), want)
	}
}

func TestSynthRepeatHasGap(t *testing.T) {
	tn := tones[CueError]
	n := int(sampleRate * tn.duration)
	gap := int(sampleRate * repeatGap)
	s := synth(tn)
	if len(s) != 2*n+gap {
		t.Fatalf("len = %d, want %d", len(s), 2*n+gap)
	}
	for i := n; i < n+gap; i++ {
		if s[i] != 0 {
			t.Fatalf("sample %d in gap is %d", i, s[i])
		}
	}
}

func TestSamplesForCaches(t *testing.T) {
	a := samplesFor(CueEnd)
	b := samplesFor(CueEnd)
	if len(a) == 0 || &a[0] != &b[0] {
		t.Error("expected cached samples")
	}
	if samplesFor(Cue(99)) != nil {
		t.Error("unknown cue should have no samples")
	}
}
