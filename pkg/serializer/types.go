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

package serializer

import (
	"context"
	"strings"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/diagnostics"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/errors"
)

// Format represents the output format of a report. A ".gz" suffix requests
// gzip framing of the rendered bytes.
type Format string

const (
	// FormatJSON outputs the report as indented JSON.
	FormatJSON Format = "json"
	// FormatYAML outputs the report as block-style YAML.
	FormatYAML Format = "yaml"
	// FormatWiki outputs the report as human-readable markdown.
	FormatWiki Format = "wiki"

	FormatJSONGzip Format = "json.gz"
	FormatYAMLGzip Format = "yaml.gz"
	FormatWikiGzip Format = "wiki.gz"
)

const gzipSuffix = ".gz"

// DefaultFormat is used when no format is requested.
const DefaultFormat = FormatWiki

// Base returns the format without gzip framing.
func (f Format) Base() Format {
	return Format(strings.TrimSuffix(string(f), gzipSuffix))
}

// Compressed reports whether the format requests gzip framing.
func (f Format) Compressed() bool {
	return strings.HasSuffix(string(f), gzipSuffix)
}

// IsUnknown reports whether f is not one of the supported formats.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatWiki, FormatJSONGzip, FormatYAMLGzip, FormatWikiGzip:
		return false
	default:
		return true
	}
}

// Readable reports whether reports in this format can be decoded back.
func (f Format) Readable() bool {
	base := f.Base()
	return !f.IsUnknown() && (base == FormatJSON || base == FormatYAML)
}

// SupportedFormats returns a list of all supported output formats.
func SupportedFormats() []string {
	return []string{
		string(FormatJSON),
		string(FormatYAML),
		string(FormatJSONGzip),
		string(FormatYAMLGzip),
		string(FormatWiki),
		string(FormatWikiGzip),
	}
}

// ParseFormat parses a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f.IsUnknown() {
		return "", errors.NewWithContext(errors.ErrCodeInvalidRequest, "unsupported format",
			map[string]any{"format": s, "supported": strings.Join(SupportedFormats(), ", ")})
	}
	return f, nil
}

// Serializer emits a finalized report.
type Serializer interface {
	Serialize(ctx context.Context, report *diagnostics.Report) error
}

// Closer is an optional interface that Serializers can implement
// if they need to release resources (e.g., close file handles).
type Closer interface {
	Close() error
}
