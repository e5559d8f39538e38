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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/header"
)

func sectionNames(r *Report) []string {
	names := make([]string, len(r.Sections))
	for i, s := range r.Sections {
		names[i] = s.Name
	}
	return names
}

func TestBuilder_SectionBoundaries(t *testing.T) {
	b := NewBuilder("ch-1")
	b.AddString("", "one", "1")
	b.AddString("A", "two", "2")
	b.AddString("A", "three", "3")
	b.AddString("", "four", "4")

	r := b.Finalize()
	require.Len(t, r.Sections, 3)
	assert.Equal(t, []string{"", "A", ""}, sectionNames(r))
	assert.Equal(t, []string{"one"}, r.Sections[0].Names())
	assert.Equal(t, []string{"two", "three"}, r.Sections[1].Names())
	assert.Equal(t, []string{"four"}, r.Sections[2].Names())
}

func TestBuilder_NoReopen(t *testing.T) {
	b := NewBuilder("ch-1")
	b.AddString("A", "x", "1").
		AddString("B", "y", "2").
		AddString("A", "z", "3")

	r := b.Finalize()
	assert.Equal(t, []string{"A", "B", "A"}, sectionNames(r))
	assert.Equal(t, []string{"x"}, r.Sections[0].Names())
	assert.Equal(t, []string{"z"}, r.Sections[2].Names())
}

func TestBuilder_LastWriteWins(t *testing.T) {
	b := NewBuilder("ch-1")
	b.AddString("A", "first", "1")
	b.AddString("A", "dup", "old")
	b.AddString("A", "last", "3")
	b.AddString("A", "dup", "new")

	r := b.Finalize()
	require.Len(t, r.Sections, 1)
	assert.Equal(t, []string{"first", "dup", "last"}, r.Sections[0].Names())
	item, ok := r.Find("A", "dup")
	require.True(t, ok)
	assert.Equal(t, "new", item.Value)
}

func TestBuilder_ItemKinds(t *testing.T) {
	b := NewBuilder("ch-1")
	b.AddString("", "empty", "")
	b.AddDocument("", "config", "<clickhouse/>", "XML")
	b.AddQuery("Q", "merges", "SELECT 1", "1")
	b.AddCommand("C", "uname", "uname -a", "Linux")

	r := b.Finalize()

	tests := []struct {
		section, name string
		want          Item
	}{
		{"", "empty", Item{Type: KindString}},
		{"", "config", Item{Type: KindDocument, Value: "<clickhouse/>", Format: "XML"}},
		{"Q", "merges", Item{Type: KindQuery, Query: "SELECT 1", Result: "1"}},
		{"C", "uname", Item{Type: KindCommand, Command: "uname -a", Result: "Linux"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Find(tt.section, tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuilder_Finalize(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	b := NewBuilder("ch-1", WithTimestamp(ts), WithToolVersion("v1.2.3"))
	b.SetMetadata(MetadataServerVersion, "23.8")
	b.AddString("", "Version", "23.8")

	r := b.Finalize()
	require.NotNil(t, r)
	assert.Equal(t, "ch-1", r.Host)
	assert.Equal(t, ts, r.Timestamp)
	assert.Equal(t, header.KindDiagnosticsReport, r.Kind)
	assert.Equal(t, APIVersion, r.APIVersion)
	assert.Equal(t, "v1.2.3", r.Metadata[header.MetadataVersion])
	assert.Equal(t, "23.8", r.Metadata[MetadataServerVersion])
	assert.Equal(t, "2024-03-01T12:00:00Z", r.Metadata[header.MetadataTimestamp])
	assert.NotEmpty(t, r.Metadata[header.MetadataID])

	// Additions after Finalize do not touch the handed-off report.
	b.AddString("", "late", "x")
	_, ok := r.Find("", "late")
	assert.False(t, ok)
	assert.Nil(t, b.Finalize())
}

func TestBuilder_EmptyReport(t *testing.T) {
	r := NewBuilder("ch-1").Finalize()
	require.NotNil(t, r)
	assert.Empty(t, r.Sections)
}

func TestKind_IsKnown(t *testing.T) {
	for _, k := range []Kind{KindString, KindDocument, KindQuery, KindCommand} {
		assert.True(t, k.IsKnown(), k.String())
	}
	assert.False(t, Kind("table").IsKnown())
}
