// Package errors provides structured error types for better observability
// and programmatic error handling across the collector.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeUnavailable,
//	    "failed to connect to clickhouse",
//	    cause,
//	    map[string]any{
//	        "url":      "http://localhost:8123",
//	        "attempts": 5,
//	    },
//	)
package errors
