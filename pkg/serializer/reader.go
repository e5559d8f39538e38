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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/diagnostics"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/errors"
)

// FormatFromPath determines the serialization format based on file extension.
// Supported extensions:
//   - .json → FormatJSON
//   - .yaml, .yml → FormatYAML
//   - .md, .wiki → FormatWiki
//
// A trailing .gz selects the gzip-framed variant. Returns FormatJSON for
// unknown extensions. Extension matching is case-insensitive.
func FormatFromPath(filePath string) Format {
	lowerPath := strings.ToLower(filePath)
	compressed := strings.HasSuffix(lowerPath, gzipSuffix)
	lowerPath = strings.TrimSuffix(lowerPath, gzipSuffix)

	var base Format
	switch {
	case strings.HasSuffix(lowerPath, ".json"):
		base = FormatJSON
	case strings.HasSuffix(lowerPath, ".yaml"), strings.HasSuffix(lowerPath, ".yml"):
		base = FormatYAML
	case strings.HasSuffix(lowerPath, ".md"), strings.HasSuffix(lowerPath, ".wiki"):
		base = FormatWiki
	default:
		slog.Warn("unknown file extension, defaulting to JSON", "filePath", filePath)
		base = FormatJSON
	}
	if compressed {
		return base + gzipSuffix
	}
	return base
}

// Reader decodes previously written reports (JSON or YAML, optionally
// gzip-framed). Close must be called when the Reader was created from a file.
type Reader struct {
	format  Format
	input   io.Reader
	closers []io.Closer
}

// NewReader creates a Reader for input. Wiki reports cannot be decoded.
// If input implements io.Closer, Close closes it.
func NewReader(format Format, input io.Reader) (*Reader, error) {
	if format.IsUnknown() {
		return nil, fmt.Errorf("unknown format: %s", format)
	}
	if !format.Readable() {
		return nil, fmt.Errorf("%s format does not support deserialization", format.Base())
	}
	if input == nil {
		return nil, fmt.Errorf("input source is nil")
	}

	r := &Reader{format: format, input: input}
	if closer, ok := input.(io.Closer); ok {
		r.closers = append(r.closers, closer)
	}

	if format.Compressed() {
		zr, err := gzip.NewReader(input)
		if err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		r.input = zr
		r.closers = append([]io.Closer{zr}, r.closers...)
	}
	return r, nil
}

// NewFileReader opens filePath for decoding in format.
func NewFileReader(format Format, filePath string) (*Reader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	r, err := NewReader(format, file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return r, nil
}

// NewFileReaderAuto opens filePath with the format detected by FormatFromPath.
func NewFileReaderAuto(filePath string) (*Reader, error) {
	return NewFileReader(FormatFromPath(filePath), filePath)
}

// Deserialize reads data from the input source and unmarshals it into v.
func (r *Reader) Deserialize(v any) error {
	if r == nil {
		return fmt.Errorf("reader is nil")
	}

	switch r.format.Base() {
	case FormatJSON:
		if err := json.NewDecoder(r.input).Decode(v); err != nil {
			return fmt.Errorf("failed to decode JSON: %w", err)
		}
		return nil
	case FormatYAML:
		if err := yaml.NewDecoder(r.input).Decode(v); err != nil {
			return fmt.Errorf("failed to decode YAML: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format for deserialization: %s", r.format)
	}
}

// Close releases any resources held by the Reader. Safe to call more than once.
func (r *Reader) Close() error {
	if r == nil {
		return nil
	}
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

// FromFile loads and decodes a file into a new T, detecting the format from
// the file extension.
func FromFile[T any](path string) (*T, error) {
	r, err := NewFileReaderAuto(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var obj T
	if err := r.Deserialize(&obj); err != nil {
		return nil, fmt.Errorf("failed to deserialize %s: %w", path, err)
	}
	return &obj, nil
}

// ReadReport loads a report written in a readable format. Documents of
// any other kind are rejected.
func ReadReport(path string) (*diagnostics.Report, error) {
	r, err := FromFile[diagnostics.Report](path)
	if err != nil {
		return nil, err
	}
	if !r.Kind.IsValid() {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "not a diagnostics report",
			map[string]any{"path": path, "kind": string(r.Kind)})
	}
	return r, nil
}
