package core

import "strings"

// CanMutate reports whether username may update, archive or delete the event.
// Only the creator and the designated admin account qualify; an event without
// a creator is mutable by the admin alone. Username comparison is
// case-insensitive, consistent with login.
func CanMutate(event *Event, username, adminUser string) bool {
	if username == "" {
		return false
	}

	if adminUser != "" && strings.EqualFold(username, adminUser) {
		return true
	}

	return event.CreatedBy != "" && strings.EqualFold(username, event.CreatedBy)
}

// VisibleTo reports whether username may fetch the event individually.
// Public events are visible to everyone, private ones to whoever may mutate
// them. Archived events stay individually visible; only listings hide them.
func VisibleTo(event *Event, username, adminUser string) bool {
	if event.IsPublic {
		return true
	}

	return CanMutate(event, username, adminUser)
}
