// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Roster errors.
	ErrNotFound          = errors.New("not found")
	ErrRosterUnavailable = errors.New("roster unavailable")
	ErrRosterEmpty       = errors.New("roster is empty")

	// Rendering and parsing errors.
	ErrRenderIO        = errors.New("receipt could not be written")
	ErrPathExhausted   = errors.New("no free output path")
	ErrInvalidGroupMap = errors.New("invalid group keyword table")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// RenderError reports a receipt that could not be finalized to storage.
type RenderError struct {
	Err  error
	Path string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrRenderIO) match any RenderError.
func (e *RenderError) Is(target error) bool {
	return target == ErrRenderIO
}

// NewRenderError wraps err with the path that was being written.
func NewRenderError(path string, err error) error {
	return &RenderError{Path: path, Err: err}
}
