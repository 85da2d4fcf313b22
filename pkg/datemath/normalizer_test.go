package datemath_test

import (
	"errors"
	"testing"
	"time"

	"calendar-integration/pkg/datemath"
)

func TestNewNormalizer(t *testing.T) {
	n, err := datemath.NewNormalizer(0)
	if err != nil {
		t.Fatalf("unexpected error creating normalizer: %v", err)
	}

	if _, err := n.Location("Asia/Ho_Chi_Minh"); err != nil {
		t.Fatalf("unexpected error resolving valid zone: %v", err)
	}
	if _, err := n.Location("Invalid/Timezone"); !errors.Is(err, datemath.ErrInvalidTimezone) {
		t.Fatalf("expected ErrInvalidTimezone, got %v", err)
	}
}

func TestToUTCInstant(t *testing.T) {
	n, _ := datemath.NewNormalizer(4)

	tests := []struct {
		name     string
		local    string
		timezone string
		want     time.Time
		wantErr  error
	}{
		{
			name:     "LA before spring forward (PST)",
			local:    "2024-03-09T00:00",
			timezone: "America/Los_Angeles",
			want:     time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "LA after spring forward (PDT)",
			local:    "2024-03-11T00:00",
			timezone: "America/Los_Angeles",
			want:     time.Date(2024, 3, 11, 7, 0, 0, 0, time.UTC),
		},
		{
			name:     "Last minute before the gap",
			local:    "2024-03-10T01:59",
			timezone: "America/Los_Angeles",
			want:     time.Date(2024, 3, 10, 9, 59, 0, 0, time.UTC),
		},
		{
			name:     "First minute after the gap",
			local:    "2024-03-10T03:00:00",
			timezone: "America/Los_Angeles",
			want:     time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "Nonexistent local time in the gap",
			local:    "2024-03-10T02:30",
			timezone: "America/Los_Angeles",
			wantErr:  datemath.ErrInvalidTimestamp,
		},
		{
			name:     "Ambiguous fall-back time resolves to daylight instant",
			local:    "2024-11-03T01:30",
			timezone: "America/Los_Angeles",
			want:     time.Date(2024, 11, 3, 8, 30, 0, 0, time.UTC),
		},
		{
			name:     "London BST gap",
			local:    "2024-03-31 01:30",
			timezone: "Europe/London",
			wantErr:  datemath.ErrInvalidTimestamp,
		},
		{
			name:     "Fixed offset zone",
			local:    "2024-05-01 09:00:00",
			timezone: "Asia/Ho_Chi_Minh",
			want:     time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC),
		},
		{
			name:     "Date only is local midnight",
			local:    "2024-03-09",
			timezone: "America/New_York",
			want:     time.Date(2024, 3, 9, 5, 0, 0, 0, time.UTC),
		},
		{
			name:     "Fractional seconds are kept",
			local:    "2024-03-09T00:00:00.900",
			timezone: "America/Los_Angeles",
			want:     time.Date(2024, 3, 9, 8, 0, 0, 900_000_000, time.UTC),
		},
		{
			name:     "Fractional seconds with a space separator",
			local:    "2024-03-09 12:00:00.25",
			timezone: "UTC",
			want:     time.Date(2024, 3, 9, 12, 0, 0, 250_000_000, time.UTC),
		},
		{
			name:     "Date only on a day whose midnight is skipped",
			local:    "2024-09-08",
			timezone: "America/Santiago",
			want:     time.Date(2024, 9, 8, 4, 0, 0, 0, time.UTC),
		},
		{
			name:     "Timed input inside a midnight gap is still rejected",
			local:    "2024-09-08T00:30",
			timezone: "America/Santiago",
			wantErr:  datemath.ErrInvalidTimestamp,
		},
		{
			name:     "First minute after a midnight gap",
			local:    "2024-09-08T01:00",
			timezone: "America/Santiago",
			want:     time.Date(2024, 9, 8, 4, 0, 0, 0, time.UTC),
		},
		{
			name:     "UTC zone",
			local:    "2024-03-09T12:00:00",
			timezone: "UTC",
			want:     time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
		},
		{
			name:     "Explicit offset is not a wall-clock time",
			local:    "2024-03-09T00:00:00Z",
			timezone: "UTC",
			wantErr:  datemath.ErrInvalidTimestamp,
		},
		{
			name:     "Garbage timestamp",
			local:    "next tuesday",
			timezone: "UTC",
			wantErr:  datemath.ErrInvalidTimestamp,
		},
		{
			name:     "Empty timestamp",
			local:    "",
			timezone: "UTC",
			wantErr:  datemath.ErrInvalidTimestamp,
		},
		{
			name:     "Unknown zone",
			local:    "2024-03-09T00:00",
			timezone: "Mars/Olympus_Mons",
			wantErr:  datemath.ErrInvalidTimezone,
		},
		{
			name:     "Empty zone",
			local:    "2024-03-09T00:00",
			timezone: "",
			wantErr:  datemath.ErrInvalidTimezone,
		},
		{
			name:     "Host local zone is rejected",
			local:    "2024-03-09T00:00",
			timezone: "Local",
			wantErr:  datemath.ErrInvalidTimezone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.ToUTCInstant(tt.local, tt.timezone)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ToUTCInstant() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToUTCInstant() unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ToUTCInstant() got = %v, want %v", got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("ToUTCInstant() location = %v, want UTC", got.Location())
			}
		})
	}
}

func TestToUTCInstantDeterministic(t *testing.T) {
	n, _ := datemath.NewNormalizer(0)
	first, err := n.ToUTCInstant("2024-03-10T12:00", "America/Los_Angeles")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := n.ToUTCInstant("2024-03-10T12:00", "America/Los_Angeles")
		if !again.Equal(first) {
			t.Fatalf("run %d got %v, want %v", i, again, first)
		}
	}
}
