package services

import (
	"testing"
	"time"
)

func TestFixedCadence_Next(t *testing.T) {
	cadence := FixedCadence{}
	now := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{
			name:     "no failures - base interval",
			failures: 0,
			want:     time.Minute,
		},
		{
			name:     "failures ignored - base interval",
			failures: 5,
			want:     time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cadence.Next(time.Minute, tt.failures, now)
			if got != tt.want {
				t.Errorf("FixedCadence.Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBackoffCadence_Next(t *testing.T) {
	cadence := BackoffCadence{Cap: 8 * time.Minute}
	now := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{
			name:     "no failures - base interval",
			failures: 0,
			want:     time.Minute,
		},
		{
			name:     "one failure - doubled",
			failures: 1,
			want:     2 * time.Minute,
		},
		{
			name:     "three failures - capped",
			failures: 3,
			want:     8 * time.Minute,
		},
		{
			name:     "many failures - still capped",
			failures: 10,
			want:     8 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cadence.Next(time.Minute, tt.failures, now)
			if got != tt.want {
				t.Errorf("BackoffCadence.Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBackoffCadence_DefaultCap(t *testing.T) {
	cadence := BackoffCadence{}

	got := cadence.Next(time.Minute, 20, time.Now())
	if got != 10*time.Minute {
		t.Errorf("BackoffCadence.Next() with zero cap = %v, want %v", got, 10*time.Minute)
	}
}

func TestQuietHoursCadence_Next(t *testing.T) {
	cadence := QuietHoursCadence{StartHour: 7, EndHour: 19, QuietMultiplier: 5}

	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{
			name: "office hours - base interval",
			now:  time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC),
			want: time.Minute,
		},
		{
			name: "just before window closes - base interval",
			now:  time.Date(2026, 8, 14, 18, 59, 0, 0, time.UTC),
			want: time.Minute,
		},
		{
			name: "evening - stretched",
			now:  time.Date(2026, 8, 14, 22, 0, 0, 0, time.UTC),
			want: 5 * time.Minute,
		},
		{
			name: "early morning - stretched",
			now:  time.Date(2026, 8, 14, 3, 0, 0, 0, time.UTC),
			want: 5 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cadence.Next(time.Minute, 0, tt.now)
			if got != tt.want {
				t.Errorf("QuietHoursCadence.Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCadence(t *testing.T) {
	tests := []struct {
		mode    string
		wantErr bool
	}{
		{"fixed", false},
		{"backoff", false},
		{"quiet-hours", false},
		{"aggressive", true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			_, err := GetCadence(tt.mode)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetCadence(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
			}
		})
	}
}
