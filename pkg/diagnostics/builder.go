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

package diagnostics

import (
	"log/slog"
	"time"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/header"
)

// Builder accumulates items into ordered sections.
//
// Items added with the same section name as the currently open section are
// merged into it. A different name, including "" for the top-level section,
// closes the open section and appends a new one; earlier sections are never
// reopened.
type Builder struct {
	report   *Report
	current  *Section
	version  string
	metadata map[string]string
}

// Option configures a Builder.
type Option func(*Builder)

// WithTimestamp sets the report collection time. Defaults to time.Now.
func WithTimestamp(ts time.Time) Option {
	return func(b *Builder) {
		b.report.Timestamp = ts
	}
}

// WithToolVersion records the version of the collecting tool in the header.
func WithToolVersion(v string) Option {
	return func(b *Builder) {
		b.version = v
	}
}

// NewBuilder starts a report for host.
func NewBuilder(host string, opts ...Option) *Builder {
	b := &Builder{
		report: &Report{
			Host:      host,
			Timestamp: time.Now(),
			Sections:  make([]*Section, 0),
		},
		metadata: make(map[string]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Timestamp returns the collection time of the report under construction.
func (b *Builder) Timestamp() time.Time {
	if b.report == nil {
		return time.Time{}
	}
	return b.report.Timestamp
}

// SetMetadata adds a key to the report header metadata.
func (b *Builder) SetMetadata(key, value string) *Builder {
	b.metadata[key] = value
	return b
}

// AddString adds a label/value pair. The value may be empty.
func (b *Builder) AddString(section, name, value string) *Builder {
	return b.add(section, name, Item{Type: KindString, Value: value})
}

// AddDocument adds a pre-serialized document rendered as format (e.g. "XML").
func (b *Builder) AddDocument(section, name, value, format string) *Builder {
	return b.add(section, name, Item{Type: KindDocument, Value: value, Format: format})
}

// AddQuery adds the rendered query text and its result or error description.
func (b *Builder) AddQuery(section, name, query, result string) *Builder {
	return b.add(section, name, Item{Type: KindQuery, Query: query, Result: result})
}

// AddCommand adds the exact command line and its output or error description.
func (b *Builder) AddCommand(section, name, command, result string) *Builder {
	return b.add(section, name, Item{Type: KindCommand, Command: command, Result: result})
}

// Add stores an arbitrary item.
func (b *Builder) Add(section, name string, item Item) *Builder {
	return b.add(section, name, item)
}

func (b *Builder) add(section, name string, item Item) *Builder {
	if b.report == nil {
		slog.Warn("item added after report was finalized", "section", section, "item", name)
		return b
	}
	if b.current == nil || b.current.Name != section {
		b.current = &Section{Name: section}
		b.report.Sections = append(b.report.Sections, b.current)
	}
	b.current.set(name, item)
	return b
}

// Finalize stamps the header and hands off the report. The Builder ignores
// further additions.
func (b *Builder) Finalize() *Report {
	r := b.report
	if r == nil {
		return nil
	}
	r.Init(header.KindDiagnosticsReport, APIVersion, b.version, r.Timestamp)
	for k, v := range b.metadata {
		r.Metadata[k] = v
	}
	b.report = nil
	b.current = nil
	return r
}
