package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEvent(t *testing.T) {
	t.Parallel()

	capacity := func(n int) *int { return &n }

	tests := []struct {
		name    string
		event   Event
		wantErr bool
		errIs   error
		errMsg  string
	}{
		{
			name: "valid event",
			event: Event{
				Name:      "Salsa Night",
				StartTime: "20:00",
				EndTime:   "23:00",
			},
		},
		{
			name: "valid cross-midnight event",
			event: Event{
				Name:      "Late Session",
				StartTime: "23:00",
				EndTime:   "02:00",
			},
		},
		{
			name:  "valid event without times",
			event: Event{Name: "Sometime"},
		},
		{
			name:    "empty name",
			event:   Event{Name: "   "},
			wantErr: true,
			errMsg:  "name is required",
		},
		{
			name:    "name too long",
			event:   Event{Name: strings.Repeat("x", 101)},
			wantErr: true,
			errMsg:  "name is too long (100 characters tops)",
		},
		{
			name: "start without end",
			event: Event{
				Name:      "Half Window",
				StartTime: "20:00",
			},
			wantErr: true,
			errIs:   ErrInvalidTimeRange,
		},
		{
			name: "equal start and end",
			event: Event{
				Name:      "Zero Duration",
				StartTime: "10:00",
				EndTime:   "10:00",
			},
			wantErr: true,
			errIs:   ErrInvalidTimeRange,
			errMsg:  "cannot be the same",
		},
		{
			name: "malformed time",
			event: Event{
				Name:      "Bad Clock",
				StartTime: "25:00",
				EndTime:   "02:00",
			},
			wantErr: true,
			errIs:   ErrInvalidTimeRange,
		},
		{
			name: "zero capacity",
			event: Event{
				Name:     "Tiny Venue",
				Capacity: capacity(0),
			},
			wantErr: true,
			errIs:   ErrInvalidCapacity,
		},
		{
			name: "negative capacity",
			event: Event{
				Name:     "Tiny Venue",
				Capacity: capacity(-5),
			},
			wantErr: true,
			errIs:   ErrInvalidCapacity,
		},
		{
			name: "positive capacity",
			event: Event{
				Name:     "Tiny Venue",
				Capacity: capacity(1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateEvent(&tt.event)
			if tt.wantErr {
				require.Error(t, err)

				if tt.errIs != nil {
					assert.ErrorIs(t, err, tt.errIs)
				}

				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestValidateEvent_SetsCrossesMidnight(t *testing.T) {
	t.Parallel()

	event := Event{Name: "Late Session", StartTime: "23:00", EndTime: "02:00"}
	require.NoError(t, ValidateEvent(&event))
	assert.True(t, event.CrossesMidnight)

	event = Event{Name: "Matinee", StartTime: "10:00", EndTime: "12:00"}
	require.NoError(t, ValidateEvent(&event))
	assert.False(t, event.CrossesMidnight)
}

func TestValidateRegistration(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateRegistration(RegisterRequest{Username: "alice", Password: "secret"}))

	err := ValidateRegistration(RegisterRequest{Username: "  ", Password: "secret"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username is required")

	err = ValidateRegistration(RegisterRequest{Username: "alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password is required")
}
