// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeUnavailable indicates the server could not be reached after retries.
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"
	// ErrCodeServerError indicates the server answered with a non-2xx status.
	ErrCodeServerError ErrorCode = "SERVER_ERROR"
	// ErrCodeRenderFailed indicates a query template could not be rendered.
	ErrCodeRenderFailed ErrorCode = "RENDER_FAILED"
	// ErrCodeCommandFailed indicates a shell command exited with a non-zero status.
	ErrCodeCommandFailed ErrorCode = "COMMAND_FAILED"
	// ErrCodeConfigInvalid indicates the server configuration could not be loaded.
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"
	// ErrCodeTimeout indicates an operation exceeded its time limit.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInvalidRequest indicates malformed or invalid input.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the underlying cause, and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a StructuredError with no cause.
func New(code ErrorCode, message string) *StructuredError {
	return WrapWithContext(code, message, nil, nil)
}

// NewWithContext creates a StructuredError carrying context, such as the
// template variable or server status involved.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return WrapWithContext(code, message, nil, context)
}

// Wrap attaches code and message to cause.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return WrapWithContext(code, message, cause, nil)
}

// WrapWithContext is the general constructor. A nil cause or an empty
// context is left unset.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	e := &StructuredError{Code: code, Message: message, Cause: cause}
	if len(context) > 0 {
		e.Context = context
	}
	return e
}

// IsCode reports whether any StructuredError in err's chain carries code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var se *StructuredError
		if !stderrors.As(err, &se) {
			return false
		}
		if se.Code == code {
			return true
		}
		err = se.Cause
	}
	return false
}
