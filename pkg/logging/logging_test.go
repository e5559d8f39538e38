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

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLogLevel(tt.in), "level %q", tt.in)
	}
}

func TestNewLogger_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "chdiag", "v1.2.3", slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("step completed", "step", "Merges in progress")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "step completed", entry["msg"])
	assert.Equal(t, "chdiag", entry["module"])
	assert.Equal(t, "v1.2.3", entry["version"])
	assert.Equal(t, "Merges in progress", entry["step"])
	assert.NotContains(t, entry, "source")
}

func TestNewLogger_DebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "chdiag", "dev", slog.LevelDebug)
	logger.Debug("rendered query")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Contains(t, entry, "source")
}

func TestSetDefaultStructuredLoggerWithLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	SetDefaultStructuredLoggerWithLevel("chdiag", "dev", "error")
	assert.False(t, slog.Default().Enabled(t.Context(), slog.LevelWarn))
	assert.True(t, slog.Default().Enabled(t.Context(), slog.LevelError))
}
