package queue

import "testing"

func TestRepeatMode_Cycle(t *testing.T) {
	tests := []struct {
		name string
		mode RepeatMode
		want RepeatMode
	}{
		{"off to all", RepeatOff, RepeatAll},
		{"all to one", RepeatAll, RepeatOne},
		{"one to off", RepeatOne, RepeatOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.Cycle(); got != tt.want {
				t.Errorf("Cycle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRepeatMode_CycleThreeTimesIsIdentity(t *testing.T) {
	for _, start := range []RepeatMode{RepeatOff, RepeatAll, RepeatOne} {
		if got := start.Cycle().Cycle().Cycle(); got != start {
			t.Errorf("three cycles from %v = %v, want %v", start, got, start)
		}
	}
}

func TestParseRepeatMode(t *testing.T) {
	tests := []struct {
		input string
		want  RepeatMode
		ok    bool
	}{
		{"off", RepeatOff, true},
		{"all", RepeatAll, true},
		{"one", RepeatOne, true},
		{"shuffle", RepeatOff, false},
		{"", RepeatOff, false},
	}

	for _, tt := range tests {
		got, ok := ParseRepeatMode(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseRepeatMode(%q) = (%v, %v), want (%v, %v)",
				tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRepeatMode_String(t *testing.T) {
	if RepeatAll.String() != "all" || RepeatOne.String() != "one" || RepeatOff.String() != "off" {
		t.Error("String() should return wire names off/all/one")
	}
}
