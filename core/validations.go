package core

import (
	"errors"
	"fmt"
	"strings"
)

// ValidateEvent checks a proposed event and derives its time window. The
// CrossesMidnight flag is set on the event as a side effect so the stored
// shape carries it; re-validating an already validated event is a no-op.
func ValidateEvent(event *Event) error {
	event.Name = strings.TrimSpace(event.Name)
	if len(event.Name) == 0 {
		return errors.New("name is required")
	}

	if len(event.Name) > 100 {
		return errors.New("name is too long (100 characters tops)")
	}

	if event.StartTime != "" || event.EndTime != "" {
		if event.StartTime == "" || event.EndTime == "" {
			return fmt.Errorf("%w: both time and end_time are required when either is set", ErrInvalidTimeRange)
		}

		window, err := ResolveWindowStrings(event.StartTime, event.EndTime)
		if err != nil {
			return err
		}

		event.CrossesMidnight = window.CrossesMidnight
	}

	if event.Capacity != nil && *event.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be a positive number", ErrInvalidCapacity)
	}

	return nil
}

func ValidateRegistration(req RegisterRequest) error {
	if strings.TrimSpace(req.Username) == "" {
		return errors.New("username is required")
	}

	if req.Password == "" {
		return errors.New("password is required")
	}

	return nil
}
