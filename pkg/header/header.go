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

package header

import (
	"time"

	"github.com/google/uuid"
)

// Kind represents the type of chdiag resource.
type Kind string

// Valid Kind constants.
const (
	KindDiagnosticsReport Kind = "DiagnosticsReport"
)

// Metadata keys populated by Init.
const (
	MetadataID        = "id"
	MetadataTimestamp = "timestamp"
	MetadataVersion   = "version"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid checks if the Kind is one of the recognized kinds.
func (k *Kind) IsValid() bool {
	switch *k {
	case KindDiagnosticsReport:
		return true
	default:
		return false
	}
}

// Header carries kind, schema version and free-form metadata of a report.
type Header struct {
	// Kind is the type of the object.
	Kind Kind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// APIVersion is the schema version of the object.
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`

	// Metadata contains key-value pairs with metadata about the object.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Init sets Kind and APIVersion and resets Metadata to a fresh random id,
// the given timestamp and, when non-empty, the tool version.
func (h *Header) Init(kind Kind, apiVersion, version string, ts time.Time) {
	h.Kind = kind
	h.APIVersion = apiVersion
	h.Metadata = map[string]string{
		MetadataID:        uuid.NewString(),
		MetadataTimestamp: ts.UTC().Format(time.RFC3339),
	}
	if version != "" {
		h.Metadata[MetadataVersion] = version
	}
}
