package models

import (
	"testing"
)

func TestStatusTerminal(t *testing.T) {
	cases := []struct {
		status   Status
		terminal bool
	}{
		{StatusPending, false},
		{StatusProcessing, false},
		{StatusCompleted, true},
		{StatusError, true},
	}
	for _, tc := range cases {
		if got := tc.status.Terminal(); got != tc.terminal {
			t.Errorf("Terminal(%s) = %v, want %v", tc.status, got, tc.terminal)
		}
	}
}

func TestStatusDisplay_CoversAllStates(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusCompleted, StatusError} {
		d := s.Display()
		if d.Label == "" || d.Badge == "" || d.Color == nil {
			t.Errorf("incomplete display mapping for %s: %+v", s, d)
		}
	}
}

func TestStatusDisplay_UnknownFallsBack(t *testing.T) {
	d := Status("canceled").Display()
	if d.Label != "canceled" || d.Color == nil {
		t.Errorf("unexpected fallback display: %+v", d)
	}
}
