package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanMutate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		event     Event
		username  string
		adminUser string
		want      bool
	}{
		{
			name:      "creator may mutate",
			event:     Event{CreatedBy: "alice"},
			username:  "alice",
			adminUser: "admin",
			want:      true,
		},
		{
			name:      "creator match is case-insensitive",
			event:     Event{CreatedBy: "Alice"},
			username:  "ALICE",
			adminUser: "admin",
			want:      true,
		},
		{
			name:      "admin may mutate anything",
			event:     Event{CreatedBy: "alice"},
			username:  "Admin",
			adminUser: "admin",
			want:      true,
		},
		{
			name:      "stranger may not",
			event:     Event{CreatedBy: "alice"},
			username:  "bob",
			adminUser: "admin",
			want:      false,
		},
		{
			name:      "anonymous may not",
			event:     Event{CreatedBy: "alice"},
			username:  "",
			adminUser: "admin",
			want:      false,
		},
		{
			name:      "ownerless event is admin-only",
			event:     Event{},
			username:  "bob",
			adminUser: "admin",
			want:      false,
		},
		{
			name:      "ownerless event, admin",
			event:     Event{},
			username:  "admin",
			adminUser: "admin",
			want:      true,
		},
		{
			name:     "no admin configured",
			event:    Event{CreatedBy: "alice"},
			username: "admin",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, CanMutate(&tt.event, tt.username, tt.adminUser))
		})
	}
}

func TestVisibleTo(t *testing.T) {
	t.Parallel()

	public := Event{IsPublic: true, CreatedBy: "alice"}
	private := Event{IsPublic: false, CreatedBy: "alice"}

	assert.True(t, VisibleTo(&public, "", "admin"))
	assert.True(t, VisibleTo(&public, "bob", "admin"))

	assert.False(t, VisibleTo(&private, "bob", "admin"))
	assert.False(t, VisibleTo(&private, "", "admin"))
	assert.True(t, VisibleTo(&private, "alice", "admin"))
	assert.True(t, VisibleTo(&private, "admin", "admin"))
}
