// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types, numeric status codes and error classification
// shared by the allocator, the worker pool and the engine facade.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrLockFailure     = errors.New("lock operation failed")
	ErrQueueFull       = errors.New("task queue is full")
	ErrShutdown        = errors.New("pool is shut down")
	ErrThreadFailure   = errors.New("worker start failed")
	ErrMemory          = errors.New("memory allocation failed")
)

// Status is the stable numeric outcome reported by the engine facade.
type Status int

const (
	StatusSuccess       Status = 0
	StatusInvalid       Status = -1
	StatusLockFailure   Status = -2
	StatusQueueFull     Status = -3
	StatusShutdown      Status = -4
	StatusThreadFailure Status = -5
	StatusMemoryError   Status = -6
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusInvalid:
		return "invalid"
	case StatusLockFailure:
		return "lock failure"
	case StatusQueueFull:
		return "queue full"
	case StatusShutdown:
		return "shutdown"
	case StatusThreadFailure:
		return "thread failure"
	case StatusMemoryError:
		return "memory error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// StatusOf classifies err into a Status. Unknown errors are reported as
// StatusInvalid, a nil error as StatusSuccess.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	switch {
	case errors.Is(err, ErrQueueFull):
		return StatusQueueFull
	case errors.Is(err, ErrShutdown):
		return StatusShutdown
	case errors.Is(err, ErrThreadFailure):
		return StatusThreadFailure
	case errors.Is(err, ErrMemory):
		return StatusMemoryError
	case errors.Is(err, ErrLockFailure):
		return StatusLockFailure
	default:
		return StatusInvalid
	}
}

// Error represents a structured error with a status code and context.
type Error struct {
	Code    Status
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates a new structured error.
func NewError(code Status, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
		Err:     cause,
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
