package db

import (
	"errors"
	"fmt"
)

// ErrNotFound: запись не найдена (или не удалена, потому что её нет).
var ErrNotFound = errors.New("not found")

// ErrDuplicateUsername: логин уже занят другим администратором.
var ErrDuplicateUsername = errors.New("username already exists")

// ConstraintError: запись нарушила ограничение схемы; транзакция откачена.
type ConstraintError struct {
	Field string
	Err   error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violation on %s: %v", e.Field, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}
