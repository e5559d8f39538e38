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
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/diagnostics"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/errors"
)

// Render serializes report in the given format. It only reads the report
// and never contacts the server.
func Render(report *diagnostics.Report, format Format) ([]byte, error) {
	if report == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "report is nil")
	}
	if format.IsUnknown() {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "unsupported format",
			map[string]any{"format": string(format)})
	}

	var (
		body []byte
		err  error
	)
	switch format.Base() {
	case FormatJSON:
		body, err = serializeJSON(report)
	case FormatYAML:
		body, err = serializeYAML(report)
	case FormatWiki:
		body, err = serializeWiki(report)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, err
	}

	if format.Compressed() {
		return compress(body)
	}
	return body, nil
}

func serializeJSON(data any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(data); err != nil {
		return nil, fmt.Errorf("failed to serialize to JSON: %w", err)
	}
	return buf.Bytes(), nil
}

func serializeYAML(data any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return nil, fmt.Errorf("failed to serialize to YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to serialize to YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress report: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress report: %w", err)
	}
	return buf.Bytes(), nil
}
