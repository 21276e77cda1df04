package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity, or one it references, does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a write collides with an existing entity.
	ErrConflict = errors.New("entity already exists")
)
