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
	"fmt"
	"strings"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/diagnostics"
)

const (
	titleLevel   = "###"
	sectionLevel = "####"
	itemLevel    = "#####"
)

// wikiWriter renders a report as markdown.
type wikiWriter struct {
	buf bytes.Buffer
}

func serializeWiki(report *diagnostics.Report) ([]byte, error) {
	w := &wikiWriter{}
	w.title(titleLevel, "Diagnostics data for host "+report.Host)

	for _, section := range report.Sections {
		heading := sectionLevel
		if section.Name != "" {
			w.title(sectionLevel, section.Name)
			heading = itemLevel
		}
		for _, e := range section.Entries {
			if err := w.item(heading, e.Name, e.Item); err != nil {
				return nil, err
			}
		}
	}
	return w.buf.Bytes(), nil
}

func (w *wikiWriter) title(level, text string) {
	fmt.Fprintf(&w.buf, "%s %s\n", level, text)
}

func (w *wikiWriter) item(heading, name string, item diagnostics.Item) error {
	switch item.Type {
	case diagnostics.KindString:
		if item.Value == "" {
			fmt.Fprintf(&w.buf, "%s:\n", name)
		} else {
			fmt.Fprintf(&w.buf, "%s: **%s**\n", name, item.Value)
		}
	case diagnostics.KindDocument:
		w.title(heading, name)
		w.block("", item.Format, item.Value)
	case diagnostics.KindQuery:
		w.title(heading, name)
		w.block("query", "sql", item.Query)
		w.block("result", "", item.Result)
	case diagnostics.KindCommand:
		w.title(heading, name)
		w.block("command", "", item.Command)
		w.block("result", "", item.Result)
	default:
		// Unknown kinds are dumped verbatim rather than failing the report.
		raw, err := serializeJSON(item)
		if err != nil {
			return err
		}
		w.title(heading, name)
		w.block("", "json", string(raw))
	}
	return nil
}

// block writes an optional bold label followed by a fenced code block.
func (w *wikiWriter) block(label, lang, content string) {
	if label != "" {
		fmt.Fprintf(&w.buf, "**%s**\n", label)
	}
	fence := fenceFor(content)
	fmt.Fprintf(&w.buf, "%s%s\n", fence, lang)
	content = strings.TrimRight(content, "\n")
	if content != "" {
		w.buf.WriteString(content)
		w.buf.WriteByte('\n')
	}
	fmt.Fprintf(&w.buf, "%s\n", fence)
}

// fenceFor returns a backtick fence longer than any backtick run in content.
func fenceFor(content string) string {
	longest, run := 0, 0
	for _, r := range content {
		if r == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	return strings.Repeat("`", max(3, longest+1))
}
