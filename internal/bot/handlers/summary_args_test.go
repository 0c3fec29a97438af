package handlers

import (
	"testing"
	"time"
)

func TestParseSummaryRange(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 7, 15, 13, 45, 12, 0, time.UTC)

	tests := []struct {
		name      string
		args      string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}{
		{
			name:      "no arguments defaults to current UTC day",
			args:      "",
			wantStart: time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "four arguments parsed as UTC pairs",
			args:      "01.07.2025 10:00 01.07.2025 15:00",
			wantStart: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 7, 1, 15, 0, 0, 0, time.UTC),
		},
		{
			name:    "one argument is a format error",
			args:    "01.07.2025",
			wantErr: true,
		},
		{
			name:    "two arguments is a format error",
			args:    "01.07.2025 10:00",
			wantErr: true,
		},
		{
			name:    "five arguments is a format error",
			args:    "01.07.2025 10:00 01.07.2025 15:00 extra",
			wantErr: true,
		},
		{
			name:    "unparsable start date",
			args:    "2025-07-01 10:00 01.07.2025 15:00",
			wantErr: true,
		},
		{
			name:    "unparsable end time",
			args:    "01.07.2025 10:00 01.07.2025 25:99",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			start, end, err := parseSummaryRange(tt.args, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseSummaryRange(%q) expected error, got [%v, %v)", tt.args, start, end)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSummaryRange(%q) unexpected error: %v", tt.args, err)
			}
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

func TestCommandArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "command without arguments", text: "/summary", want: ""},
		{name: "command with arguments", text: "/summary 01.07.2025 10:00 01.07.2025 15:00", want: "01.07.2025 10:00 01.07.2025 15:00"},
		{name: "command with bot suffix", text: "/summary@chatmixbot 01.07.2025 10:00 01.07.2025 15:00", want: "01.07.2025 10:00 01.07.2025 15:00"},
		{name: "extra whitespace trimmed", text: "/summary   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := commandArgs(tt.text); got != tt.want {
				t.Errorf("commandArgs(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
