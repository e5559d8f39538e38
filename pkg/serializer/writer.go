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
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/diagnostics"
)

// Writer renders reports in a fixed format to an output stream.
// Close must be called to release file handles when using NewFileWriterOrStdout.
type Writer struct {
	format Format
	output io.Writer
	closer io.Closer
}

// NewWriter creates a new Writer with the specified format and output destination.
// If output is nil, os.Stdout will be used.
// If format is unknown, defaults to DefaultFormat.
func NewWriter(format Format, output io.Writer) *Writer {
	if output == nil {
		output = os.Stdout
	}
	return &Writer{
		format: checkFormat(format),
		output: output,
	}
}

// NewStdoutWriter creates a new Writer that outputs to stdout in the specified format.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout)
}

// NewFileWriterOrStdout creates a Writer for path, or for stdout when path
// is empty or "-".
func NewFileWriterOrStdout(format Format, path string) (*Writer, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == "-" {
		return NewStdoutWriter(format), nil
	}

	file, err := os.Create(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &Writer{
		format: checkFormat(format),
		output: file,
		closer: file,
	}, nil
}

func checkFormat(format Format) Format {
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to "+string(DefaultFormat), "format", format)
		return DefaultFormat
	}
	return format
}

// Format returns the format used by the Writer.
func (w *Writer) Format() Format {
	return w.format
}

// Close releases any resources associated with the Writer.
// It's safe to call Close multiple times or on stdout-based writers.
func (w *Writer) Close() error {
	if w.closer != nil {
		err := w.closer.Close()
		w.closer = nil
		return err
	}
	return nil
}

// Serialize renders report and writes it in one piece. Context is accepted
// for the Serializer interface; file and stdout writes are not cancelable.
func (w *Writer) Serialize(ctx context.Context, report *diagnostics.Report) error {
	data, err := Render(report, w.format)
	if err != nil {
		return err
	}
	n, err := w.output.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	slog.Info("report written", "format", w.format, "size", humanize.Bytes(uint64(n)))
	return nil
}
