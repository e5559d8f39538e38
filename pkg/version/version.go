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

// Package version parses and compares dotted numeric version identifiers such
// as the ones reported by ClickHouse ("21.8.10.19").
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error types for version parsing failures
var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrNonNumeric        = errors.New("version component is not numeric")
	ErrNegativeComponent = errors.New("version component cannot be negative")
)

// Version is a dotted numeric identifier. Any number of components is allowed;
// comparisons treat missing trailing components as zero.
type Version struct {
	Components []int `json:"components,omitempty" yaml:"components,omitempty"`

	// Extras stores trailing metadata such as "-lts" or "+build.5".
	Extras string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// NewVersion creates a Version from explicit components.
func NewVersion(components ...int) Version {
	c := make([]int, len(components))
	copy(c, components)
	return Version{Components: c}
}

// String returns the dotted representation without extras.
func (v Version) String() string {
	parts := make([]string, len(v.Components))
	for i, c := range v.Components {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ".")
}

// IsValid reports whether the version has at least one component and no
// negative components.
func (v Version) IsValid() bool {
	if len(v.Components) == 0 {
		return false
	}
	for _, c := range v.Components {
		if c < 0 {
			return false
		}
	}
	return true
}

// ParseVersion parses a version string into a Version.
// Supported formats: "21", "21.8", "21.8.10.19", "v21.8", "22.3.2.2-lts".
// Surrounding whitespace and a "v" prefix are ignored. Metadata after '-' or '+'
// that follows a digit is preserved in Extras.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, ErrEmptyVersion
	}
	s = strings.TrimPrefix(s, "v")

	var v Version
	mainPart := s
	for i, ch := range s {
		if (ch == '-' || ch == '+') && i > 0 {
			prev := s[i-1]
			if prev >= '0' && prev <= '9' {
				mainPart = s[:i]
				v.Extras = s[i:]
				break
			}
		}
	}

	parts := strings.Split(mainPart, ".")
	v.Components = make([]int, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return Version{}, fmt.Errorf("%w: empty component", ErrNonNumeric)
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		if num < 0 {
			return Version{}, fmt.Errorf("%w: %d", ErrNegativeComponent, num)
		}
		v.Components = append(v.Components, num)
	}

	return v, nil
}

// MustParseVersion parses a version string and panics if parsing fails.
//
// Only use this for hardcoded strings or in tests. For server responses
// always use ParseVersion and handle errors explicitly.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(fmt.Sprintf("MustParseVersion: %v", err))
	}
	return v
}

// Compare returns -1, 0 or 1 when v is older than, equal to or newer than
// other. The shorter sequence is padded with zeros, so "21.8" equals "21.8.0".
func (v Version) Compare(other Version) int {
	n := max(len(v.Components), len(other.Components))
	for i := 0; i < n; i++ {
		a, b := component(v.Components, i), component(other.Components, i)
		switch {
		case a > b:
			return 1
		case a < b:
			return -1
		}
	}
	return 0
}

// EqualsOrNewer returns true if v is equal to or newer than other.
func (v Version) EqualsOrNewer(other Version) bool {
	return v.Compare(other) >= 0
}

// IsNewer returns true if v is strictly newer than other.
func (v Version) IsNewer(other Version) bool {
	return v.Compare(other) > 0
}

// GreaterOrEqual parses both strings and reports whether a >= b.
func GreaterOrEqual(a, b string) (bool, error) {
	va, err := ParseVersion(a)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", a, err)
	}
	vb, err := ParseVersion(b)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", b, err)
	}
	return va.EqualsOrNewer(vb), nil
}

func component(c []int, i int) int {
	if i < len(c) {
		return c[i]
	}
	return 0
}
