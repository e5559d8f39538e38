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

package systemd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/dbus"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/defaults"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/errors"
)

var (
	// Keys to filter out from unit properties for privacy/security or noise reduction
	filterOutKeys = []string{
		"AllowedCPUs",
		"AllowedMemoryNodes",
		"Asserts",
		"BPFProgram",
		"BusName",
		"Id",
		"Environment*",
		"*Credential*",
		"*Secret*",
		"Invocation*",
	}
)

// Conn is the part of the systemd D-Bus API used to read unit properties.
// *dbus.Conn satisfies it.
type Conn interface {
	GetAllPropertiesContext(ctx context.Context, unit string) (map[string]any, error)
	Close()
}

// Dialer opens a connection to systemd.
type Dialer func(ctx context.Context) (Conn, error)

// DialSystemd connects to the system instance of systemd over D-Bus.
func DialSystemd(ctx context.Context) (Conn, error) {
	conn, err := dbus.NewSystemdConnectionContext(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Reader reads and renders the properties of a systemd unit.
type Reader struct {
	// Dial opens the systemd connection. Defaults to DialSystemd.
	Dial Dialer

	// Timeout bounds one Describe call. Defaults to defaults.UnitPropertiesTimeout.
	Timeout time.Duration
}

// NewReader returns a Reader talking to the system bus.
func NewReader() *Reader {
	return &Reader{Dial: DialSystemd, Timeout: defaults.UnitPropertiesTimeout}
}

// Properties returns the unit's properties as strings, minus noisy and
// sensitive keys.
func (r *Reader) Properties(ctx context.Context, unit string) (map[string]string, error) {
	dial := r.Dial
	if dial == nil {
		dial = DialSystemd
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaults.UnitPropertiesTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	slog.Debug("reading systemd unit properties", "unit", unit)

	conn, err := dial(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to connect to systemd", err)
	}
	defer conn.Close()

	data, err := conn.GetAllPropertiesContext(ctx, unit)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to get unit properties", err,
			map[string]any{"unit": unit})
	}

	props := make(map[string]string, len(data))
	for k, v := range data {
		if filteredOut(k) {
			continue
		}
		props[k] = formatValue(v)
	}
	return props, nil
}

// Describe returns the unit's properties as a YAML document with sorted keys.
func (r *Reader) Describe(ctx context.Context, unit string) (string, error) {
	props, err := r.Properties(ctx, unit)
	if err != nil {
		return "", err
	}
	out, err := yaml.Marshal(props)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to render unit properties", err)
	}
	return string(out), nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, " ")
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

func filteredOut(key string) bool {
	for _, pattern := range filterOutKeys {
		if matchesPattern(key, pattern) {
			return true
		}
	}
	return false
}

// matchesPattern checks if a key matches a wildcard pattern.
// Supports multiple wildcard segments, e.g., "a*b*c" matches "aXbYc".
func matchesPattern(key, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return key == pattern
	}

	segments := strings.Split(pattern, "*")
	pos := 0
	for i, segment := range segments {
		if segment == "" {
			continue
		}

		// First segment is anchored at the start.
		if i == 0 {
			if !strings.HasPrefix(key, segment) {
				return false
			}
			pos = len(segment)
			continue
		}

		// Last segment is anchored at the end.
		if i == len(segments)-1 {
			return strings.HasSuffix(key[pos:], segment)
		}

		idx := strings.Index(key[pos:], segment)
		if idx == -1 {
			return false
		}
		pos += idx + len(segment)
	}

	return true
}
