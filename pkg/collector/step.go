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

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/client"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/shell"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/version"
)

// Kind selects how a Step is executed.
type Kind string

const (
	// KindQuery renders Query and runs it against the server.
	KindQuery Kind = "query"
	// KindCommand renders Command and runs it through the shell.
	KindCommand Kind = "command"
	// KindUnit records the properties of a systemd unit.
	KindUnit Kind = "unit"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// Step is one entry of the declarative collection table.
type Step struct {
	// Name is the item name in the report.
	Name string
	// Section is the report section; "" is the top-level section.
	Section string
	Kind    Kind

	// Query is a query template (KindQuery).
	Query string
	// Format is the server output format for Query. Defaults to
	// PrettyCompactNoEscapes.
	Format client.Format

	// Command is a command line template (KindCommand).
	Command string
	// Input is piped to the command's stdin when non-nil.
	Input []byte

	// Unit is the systemd unit name (KindUnit).
	Unit string

	// MinVersion skips the step on servers older than this version.
	MinVersion string
	// RequiresTable skips the step unless system.<RequiresTable> exists.
	RequiresTable string
}

// Enabled reports whether the step runs against a server of version v that
// exposes tables, and why not when it does not.
func (s Step) Enabled(v version.Version, tables TableSet) (bool, string) {
	if s.MinVersion != "" {
		minVersion, err := version.ParseVersion(s.MinVersion)
		if err != nil {
			return false, fmt.Sprintf("invalid minimum version %q: %v", s.MinVersion, err)
		}
		if v.Compare(minVersion) < 0 {
			return false, fmt.Sprintf("requires server version %s or newer", s.MinVersion)
		}
	}
	if s.RequiresTable != "" && !tables.Has(s.RequiresTable) {
		return false, fmt.Sprintf("table system.%s is not available", s.RequiresTable)
	}
	return true, ""
}

// TableSet holds the names of the tables in the system database.
type TableSet map[string]struct{}

// NewTableSet returns a set of names.
func NewTableSet(names ...string) TableSet {
	ts := make(TableSet, len(names))
	for _, n := range names {
		ts[n] = struct{}{}
	}
	return ts
}

// Has reports whether name is in the set. A nil set contains nothing.
func (ts TableSet) Has(name string) bool {
	_, ok := ts[name]
	return ok
}

// Result is the outcome of one step: a payload or a failure.
type Result struct {
	Value string
	Err   error
}

// Failed reports whether the step failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Text returns the payload, or a description of the failure. Command
// failures read "failed with exit code N" followed by stderr. Server
// errors carry the raw response body.
func (r Result) Text() string {
	if r.Err == nil {
		return r.Value
	}
	var ce *shell.CommandError
	if stderrors.As(r.Err, &ce) {
		return ce.Error()
	}
	var se *client.ServerError
	if stderrors.As(r.Err, &se) {
		return "failed: " + se.Error()
	}
	return "failed: " + r.Err.Error()
}
