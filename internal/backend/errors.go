package backend

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrNotAuthenticated   = errors.New("user not authenticated")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrConflict           = errors.New("conflict")
	ErrUnknownTable       = errors.New("unknown table")
	ErrUnknownColumn      = errors.New("unknown column")
)

// Error carries the backend's own message for a failed call
type Error struct {
	Op      string
	Table   string
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Table != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Table, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap attaches op/table context to err, keeping sentinels matchable
func Wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return err
	}
	return &Error{Op: op, Table: table, Err: err}
}
