package config

import (
	"testing"
	"time"
)

func TestClampFloorConfig(t *testing.T) {
	tests := []struct {
		name string
		in   FloorConfig
		want FloorConfig
	}{
		{
			name: "in range untouched",
			in:   FloorConfig{ReservationBlockHours: 3, AutoPromoteGraceMinutes: 30},
			want: FloorConfig{ReservationBlockHours: 3, AutoPromoteGraceMinutes: 30},
		},
		{
			name: "negative block floors at zero",
			in:   FloorConfig{ReservationBlockHours: -1, AutoPromoteGraceMinutes: 15},
			want: FloorConfig{ReservationBlockHours: 0, AutoPromoteGraceMinutes: 15},
		},
		{
			name: "block capped at a day",
			in:   FloorConfig{ReservationBlockHours: 48, AutoPromoteGraceMinutes: 15},
			want: FloorConfig{ReservationBlockHours: 24, AutoPromoteGraceMinutes: 15},
		},
		{
			name: "grace floors at one minute",
			in:   FloorConfig{ReservationBlockHours: 2, AutoPromoteGraceMinutes: 0},
			want: FloorConfig{ReservationBlockHours: 2, AutoPromoteGraceMinutes: 1},
		},
		{
			name: "grace capped at three hours",
			in:   FloorConfig{ReservationBlockHours: 2, AutoPromoteGraceMinutes: 500},
			want: FloorConfig{ReservationBlockHours: 2, AutoPromoteGraceMinutes: 180},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampFloorConfig(tt.in); got != tt.want {
				t.Fatalf("clampFloorConfig(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStaticHolderClampsAndServesWindows(t *testing.T) {
	holder := NewStaticFloorConfigHolder(FloorConfig{ReservationBlockHours: 48, AutoPromoteGraceMinutes: 0})

	cfg := holder.Get()
	if cfg.BlockWindow() != 24*time.Hour {
		t.Fatalf("expected clamped block window 24h, got %v", cfg.BlockWindow())
	}
	if cfg.GraceWindow() != time.Minute {
		t.Fatalf("expected clamped grace window 1m, got %v", cfg.GraceWindow())
	}
}
