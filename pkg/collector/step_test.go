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

package collector

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/client"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/shell"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/version"
)

func TestStep_Enabled(t *testing.T) {
	tests := []struct {
		name    string
		step    Step
		version string
		tables  TableSet
		want    bool
	}{
		{name: "no gates", step: Step{}, version: "1.1", want: true},
		{name: "version equal", step: Step{MinVersion: "20.8"}, version: "20.8", want: true},
		{name: "version newer", step: Step{MinVersion: "20.8"}, version: "21.3.2.5", want: true},
		{name: "version older", step: Step{MinVersion: "20.8"}, version: "20.3.19.4", want: false},
		{name: "major beats minor", step: Step{MinVersion: "21.3"}, version: "22.1", want: true},
		{name: "invalid threshold", step: Step{MinVersion: "latest"}, version: "22.1", want: false},
		{name: "table present", step: Step{RequiresTable: CrashLogTable}, version: "22.1", tables: NewTableSet(CrashLogTable), want: true},
		{name: "table absent", step: Step{RequiresTable: CrashLogTable}, version: "22.1", tables: NewTableSet("parts"), want: false},
		{name: "nil table set", step: Step{RequiresTable: CrashLogTable}, version: "22.1", want: false},
		{name: "both gates", step: Step{MinVersion: "21.3", RequiresTable: CrashLogTable}, version: "21.1", tables: NewTableSet(CrashLogTable), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := tt.step.Enabled(version.MustParseVersion(tt.version), tt.tables)
			assert.Equal(t, tt.want, got)
			if got {
				assert.Empty(t, reason)
			} else {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestResult_Text(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want string
	}{
		{name: "value", res: Result{Value: "1"}, want: "1"},
		{name: "empty value", res: Result{}, want: ""},
		{
			name: "command error",
			res:  Result{Err: &shell.CommandError{Command: "false", ExitCode: 2, Stderr: "nope"}},
			want: "failed with exit code 2\nnope",
		},
		{
			name: "wrapped command error",
			res:  Result{Err: fmt.Errorf("step: %w", &shell.CommandError{Command: "false", ExitCode: 1})},
			want: "failed with exit code 1\n",
		},
		{
			name: "server error",
			res:  Result{Err: &client.ServerError{StatusCode: 404, Body: "Code: 60. DB::Exception"}},
			want: "failed: server returned 404: Code: 60. DB::Exception",
		},
		{name: "other error", res: Result{Err: stderrors.New("dial tcp: refused")}, want: "failed: dial tcp: refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.Text())
			assert.Equal(t, tt.res.Err != nil, tt.res.Failed())
		})
	}
}

func TestDefaultSteps(t *testing.T) {
	steps := DefaultSteps()
	assert.NotEmpty(t, steps)

	seen := map[string]bool{}
	for _, s := range steps {
		key := s.Section + "/" + s.Name
		assert.False(t, seen[key], "duplicate step %q", key)
		seen[key] = true

		switch s.Kind {
		case KindQuery:
			assert.NotEmpty(t, s.Query, s.Name)
		case KindCommand:
			assert.NotEmpty(t, s.Command, s.Name)
		case KindUnit:
			assert.NotEmpty(t, s.Unit, s.Name)
		default:
			t.Errorf("step %q has unknown kind %q", s.Name, s.Kind)
		}
		if s.MinVersion != "" {
			_, err := version.ParseVersion(s.MinVersion)
			assert.NoError(t, err, s.Name)
		}
	}

	// a fresh table every call
	steps[0].Name = "changed"
	assert.NotEqual(t, "changed", DefaultSteps()[0].Name)
}

func TestTableSet(t *testing.T) {
	ts := NewTableSet("a", "b")
	assert.True(t, ts.Has("a"))
	assert.False(t, ts.Has("c"))

	var empty TableSet
	assert.False(t, empty.Has("a"))
}
