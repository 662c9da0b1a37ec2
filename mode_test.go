package orbital

import "testing"

func TestRenderModeString(t *testing.T) {
	tests := []struct {
		mode RenderMode
		want string
	}{
		{ModeOrbital, "orbital"},
		{ModeTurnstile, "turnstile"},
		{RenderMode(7), "RenderMode(7)"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.mode), got, tt.want)
		}
	}
}

func TestRenderModeTables(t *testing.T) {
	if got := ModeOrbital.FrameCount(); got != FrameCount {
		t.Errorf("orbital frame count = %d, want %d", got, FrameCount)
	}
	if got := ModeTurnstile.FrameCount(); got != TurnstileFrameCount {
		t.Errorf("turnstile frame count = %d, want %d", got, TurnstileFrameCount)
	}
	if got := ModeOrbital.AngleStep(); got != AngleStep {
		t.Errorf("orbital angle step = %v, want %v", got, AngleStep)
	}
	if got := ModeTurnstile.AngleStep(); got != TurnstileAngleStep {
		t.Errorf("turnstile angle step = %v, want %v", got, TurnstileAngleStep)
	}
	if got := ModeOrbital.FrameCount(); float64(got)*ModeOrbital.AngleStep() != 360 {
		t.Error("orbital table does not cover a full turn")
	}
	if got := ModeTurnstile.FrameCount(); float64(got)*ModeTurnstile.AngleStep() != 360 {
		t.Error("turnstile table does not cover a full turn")
	}
}

func TestRenderModeSequenceIsCopy(t *testing.T) {
	seq := ModeOrbital.Sequence()
	if len(seq) != FrameCount {
		t.Fatalf("sequence length %d, want %d", len(seq), FrameCount)
	}
	orig := seq[0]
	seq[0] = -1
	if AngularSequence[0] != orig {
		t.Error("mutating the returned sequence changed the package table")
	}
	if again := ModeOrbital.Sequence(); again[0] != orig {
		t.Error("second Sequence() call observed the mutation")
	}
}
