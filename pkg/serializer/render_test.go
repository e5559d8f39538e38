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
	"io"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/diagnostics"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/errors"
)

func testReport() *diagnostics.Report {
	b := diagnostics.NewBuilder("ch-1", diagnostics.WithTimestamp(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	b.AddString("", "Version", "23.8.2.7")
	b.AddString("", "Uptime", "")
	b.AddDocument("", "ClickHouse configuration", "<clickhouse>\n    <path>/var/lib/clickhouse/</path>\n</clickhouse>\n", "XML")
	b.AddQuery("Schema", "Tables", "SELECT name FROM system.tables WHERE total_rows > 0", "hits\nvisits")
	b.AddCommand("Logs", "Error log", "tail -n 2 /var/log/clickhouse-server/clickhouse-server.err.log", "Zürich\n")
	return b.Finalize()
}

func decompress(t *testing.T, data []byte) []byte {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer zr.Close()
	out, err := io.ReadAll(zr)
	require.NoError(t, err)
	return out
}

func TestRender_GzipFraming(t *testing.T) {
	report := testReport()
	for _, base := range []Format{FormatJSON, FormatYAML, FormatWiki} {
		t.Run(string(base), func(t *testing.T) {
			plain, err := Render(report, base)
			require.NoError(t, err)

			framed, err := Render(report, base+gzipSuffix)
			require.NoError(t, err)
			assert.NotEqual(t, plain, framed)
			assert.Equal(t, plain, decompress(t, framed))
		})
	}
}

func TestRender_JSON(t *testing.T) {
	data, err := Render(testReport(), FormatJSON)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "total_rows > 0", "no HTML escaping")
	assert.Contains(t, out, "Zürich", "non-ASCII preserved")
	assert.Contains(t, out, `"section": null`)
	assert.Contains(t, out, `"kind": "DiagnosticsReport"`)

	var got diagnostics.Report
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Sections, 3)
	assert.Equal(t, []string{"Version", "Uptime", "ClickHouse configuration"}, got.Sections[0].Names())
	item, ok := got.Find("Logs", "Error log")
	require.True(t, ok)
	assert.Equal(t, diagnostics.KindCommand, item.Type)
	assert.Equal(t, "Zürich\n", item.Result)
}

func TestRender_YAML(t *testing.T) {
	data, err := Render(testReport(), FormatYAML)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "Zürich")
	assert.Contains(t, out, "section: Schema")

	var got diagnostics.Report
	require.NoError(t, yaml.Unmarshal(data, &got))
	require.Len(t, got.Sections, 3)
	item, ok := got.Find("Schema", "Tables")
	require.True(t, ok)
	assert.Equal(t, "hits\nvisits", item.Result)
}

func TestRender_Wiki(t *testing.T) {
	data, err := Render(testReport(), FormatWiki)
	require.NoError(t, err)

	want := strings.Join([]string{
		"### Diagnostics data for host ch-1",
		"Version: **23.8.2.7**",
		"Uptime:",
		"#### ClickHouse configuration",
		"```XML",
		"<clickhouse>",
		"    <path>/var/lib/clickhouse/</path>",
		"</clickhouse>",
		"```",
		"#### Schema",
		"##### Tables",
		"**query**",
		"```sql",
		"SELECT name FROM system.tables WHERE total_rows > 0",
		"```",
		"**result**",
		"```",
		"hits",
		"visits",
		"```",
		"#### Logs",
		"##### Error log",
		"**command**",
		"```",
		"tail -n 2 /var/log/clickhouse-server/clickhouse-server.err.log",
		"```",
		"**result**",
		"```",
		"Zürich",
		"```",
		"",
	}, "\n")
	assert.Equal(t, want, string(data))
}

func TestRender_WikiUnknownKind(t *testing.T) {
	b := diagnostics.NewBuilder("ch-1")
	b.Add("Extra", "custom", diagnostics.Item{Type: "table", Value: "a|b"})
	data, err := Render(b.Finalize(), FormatWiki)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "##### custom\n```json\n")
	assert.Contains(t, out, `"type": "table"`)
	assert.Contains(t, out, `"value": "a|b"`)
}

func TestRender_WikiFence(t *testing.T) {
	b := diagnostics.NewBuilder("ch-1")
	b.AddCommand("", "cat", "cat README.md", "```go\nx\n```")
	data, err := Render(b.Finalize(), FormatWiki)
	require.NoError(t, err)
	assert.Contains(t, string(data), "**result**\n````\n```go\nx\n```\n````\n")
}

func TestRender_Errors(t *testing.T) {
	_, err := Render(nil, FormatJSON)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))

	_, err = Render(testReport(), Format("xml"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestRender_Deterministic(t *testing.T) {
	report := testReport()
	for _, f := range SupportedFormats() {
		a, err := Render(report, Format(f))
		require.NoError(t, err)
		b, err := Render(report, Format(f))
		require.NoError(t, err)
		assert.Equal(t, a, b, f)
	}
}

func TestFenceFor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "```"},
		{"a ` b", "```"},
		{"``` x", "````"},
		{"`````", "``````"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fenceFor(tt.in), tt.in)
	}
}
