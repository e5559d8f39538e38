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

package config

import (
	"slices"
	"strings"
)

// Redacted replaces masked values.
const Redacted = "*****"

// DefaultSecretKeys are always masked: user and interserver passwords,
// S3 secret keys, auth headers and identity tokens.
var DefaultSecretKeys = []string{
	"password",
	"secret_access_key",
	"header",
	"identity",
}

// Masker replaces the values of secret keys anywhere in a configuration tree.
type Masker struct {
	keys map[string]struct{}
}

// NewMasker returns a Masker for DefaultSecretKeys plus extra.
// Blank entries are ignored.
func NewMasker(extra ...string) *Masker {
	m := &Masker{keys: make(map[string]struct{}, len(DefaultSecretKeys)+len(extra))}
	for _, k := range append(slices.Clone(DefaultSecretKeys), extra...) {
		if k = strings.TrimSpace(k); k != "" {
			m.keys[k] = struct{}{}
		}
	}
	return m
}

// Keys returns the masked key names in sorted order.
func (m *Masker) Keys() []string {
	out := make([]string, 0, len(m.keys))
	for k := range m.keys {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// IsSecret reports whether values under key are masked. XML attributes,
// stored under "-name", match the same way as elements.
func (m *Masker) IsSecret(key string) bool {
	_, ok := m.keys[strings.TrimPrefix(key, "-")]
	return ok
}

// Mask walks v in place, replacing every value stored under a secret key,
// however deeply nested, including inside repeated elements. It returns v.
func (m *Masker) Mask(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			if m.IsSecret(k) {
				val[k] = maskValue(child)
				continue
			}
			m.Mask(child)
		}
	case []any:
		for _, child := range val {
			m.Mask(child)
		}
	}
	return v
}

// maskValue keeps the shape of repeated secret elements so the dump still
// shows how many were configured.
func maskValue(v any) any {
	if list, ok := v.([]any); ok {
		out := make([]any, len(list))
		for i := range list {
			out[i] = Redacted
		}
		return out
	}
	return Redacted
}
