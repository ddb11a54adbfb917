package servers

import (
	"errors"
	"fmt"
)

var (
	ErrFailedToStart = errors.New("failed to start")
	ErrFailedToStop  = errors.New("failed to stop")
)

func errServer(name string, sentinel, cause error) error {
	return fmt.Errorf("server %s %w: %w", name, sentinel, cause)
}
