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

package client

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// Format is a ClickHouse output format name.
type Format string

const (
	FormatJSON                   Format = "JSON"
	FormatJSONCompact            Format = "JSONCompact"
	FormatTSVRaw                 Format = "TSVRaw"
	FormatVertical               Format = "Vertical"
	FormatPrettyCompact          Format = "PrettyCompact"
	FormatPrettyCompactNoEscapes Format = "PrettyCompactNoEscapes"
)

// IsStructured reports whether responses in this format decode as JSON.
func (f Format) IsStructured() bool {
	return f == FormatJSON || f == FormatJSONCompact
}

// ServerError is a non-2xx response. Body holds the raw response text, which
// for ClickHouse carries the exception code and message.
type ServerError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// IsConnectionError reports whether err happened while establishing a
// connection. Only these failures are retried: the request never reached
// the server, so repeating it is safe.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var se *ServerError
	if errors.As(err, &se) {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
