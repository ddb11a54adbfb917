package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Clock
		wantErr bool
	}{
		{name: "midnight", input: "00:00", want: Clock{Hour: 0, Minute: 0}},
		{name: "last minute of day", input: "23:59", want: Clock{Hour: 23, Minute: 59}},
		{name: "surrounding whitespace", input: " 09:30 ", want: Clock{Hour: 9, Minute: 30}},
		{name: "missing colon", input: "0930", wantErr: true},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "12:60", wantErr: true},
		{name: "negative hour", input: "-1:00", wantErr: true},
		{name: "not a number", input: "ab:cd", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseClock(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestClock_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "09:05", Clock{Hour: 9, Minute: 5}.String())
	assert.Equal(t, "00:00", Clock{}.String())
}

func TestResolveWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		start           string
		end             string
		wantErr         bool
		errMsg          string
		crossesMidnight bool
		durationMinutes int
	}{
		{
			name:            "same day window",
			start:           "10:00",
			end:             "12:30",
			crossesMidnight: false,
			durationMinutes: 150,
		},
		{
			name:            "crosses midnight",
			start:           "23:00",
			end:             "02:00",
			crossesMidnight: true,
			durationMinutes: 180,
		},
		{
			name:            "one minute around midnight",
			start:           "23:59",
			end:             "00:00",
			crossesMidnight: true,
			durationMinutes: 1,
		},
		{
			name:            "starts at midnight",
			start:           "00:00",
			end:             "23:59",
			crossesMidnight: false,
			durationMinutes: 1439,
		},
		{
			name:    "equal times rejected",
			start:   "10:00",
			end:     "10:00",
			wantErr: true,
			errMsg:  "cannot be the same",
		},
		{
			name:    "bad start",
			start:   "25:00",
			end:     "10:00",
			wantErr: true,
		},
		{
			name:    "bad end",
			start:   "10:00",
			end:     "10:75",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			window, err := ResolveWindowStrings(tt.start, tt.end)
			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, ErrInvalidTimeRange)

				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.crossesMidnight, window.CrossesMidnight)
			assert.Equal(t, tt.durationMinutes, window.DurationMinutes)
		})
	}
}

// The resolved duration must always land in (0, 24h) regardless of the pair,
// and resolving twice must agree with itself.
func TestResolveWindow_DurationBounds(t *testing.T) {
	t.Parallel()

	for startHour := 0; startHour < 24; startHour += 3 {
		for endHour := 0; endHour < 24; endHour += 3 {
			start := Clock{Hour: startHour, Minute: 15}
			end := Clock{Hour: endHour, Minute: 45}

			window, err := ResolveWindow(start, end)
			require.NoError(t, err)

			assert.Greater(t, window.DurationMinutes, 0)
			assert.Less(t, window.DurationMinutes, minutesPerDay)

			again, err := ResolveWindow(start, end)
			require.NoError(t, err)
			assert.Equal(t, window, again)
		}
	}
}
