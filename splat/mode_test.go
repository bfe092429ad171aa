package splat

import "testing"

func TestModeNames(t *testing.T) {
	ab := &ABMode{}
	if got := ab.modeName(); got != "AB" {
		t.Errorf("ABMode.modeName: want AB, got %v", got)
	}

	st := &STMode{}
	if got := st.modeName(); got != "ST" {
		t.Errorf("STMode.modeName: want ST, got %v", got)
	}

	stPop := &STMode{Popfree: true}
	if got := stPop.modeName(); got != "ST-popfree" {
		t.Errorf("STMode{Popfree:true}.modeName: want ST-popfree, got %v", got)
	}
}

func TestModeIsMode(t *testing.T) {
	var modes = []Mode{&ABMode{}, &STMode{}, &STMode{Popfree: true}}
	for _, m := range modes {
		m.isMode() // must not panic; purely a sealing method
	}
}
