package library

import (
	"errors"
	"fmt"
)

var (
	ErrDatabaseUnavailable = errors.New("database unavailable")
	ErrQueryFailure        = errors.New("query failure")
	ErrInvalidColumn       = errors.New("invalid column")
)

func unavailable(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDatabaseUnavailable, path, err)
}

// queryError garde le message du moteur tel quel
func queryError(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrQueryFailure, name, err)
}
