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
	"time"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/header"
)

// APIVersion is the schema version stamped on every report.
const APIVersion = "chdiag.nvidia.com/v1alpha1"

// MetadataServerVersion is the header metadata key holding the server version.
const MetadataServerVersion = "server-version"

// Kind identifies the payload carried by an Item.
type Kind string

// Item kinds.
const (
	KindString   Kind = "string"
	KindDocument Kind = "document"
	KindQuery    Kind = "query"
	KindCommand  Kind = "command"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// IsKnown reports whether k is one of the item kinds defined above.
func (k Kind) IsKnown() bool {
	switch k {
	case KindString, KindDocument, KindQuery, KindCommand:
		return true
	default:
		return false
	}
}

// Item is one unit of diagnostic output. Which fields are set depends on Type:
//
//	string   Value
//	document Value, Format
//	query    Query, Result
//	command  Command, Result
type Item struct {
	Type    Kind   `json:"type" yaml:"type"`
	Value   string `json:"value,omitempty" yaml:"value,omitempty"`
	Format  string `json:"format,omitempty" yaml:"format,omitempty"`
	Query   string `json:"query,omitempty" yaml:"query,omitempty"`
	Command string `json:"command,omitempty" yaml:"command,omitempty"`
	Result  string `json:"result,omitempty" yaml:"result,omitempty"`
}

// Entry is a named Item inside a Section.
type Entry struct {
	Name string
	Item Item
}

// Section groups items under an optional name. An empty Name denotes the
// implicit top-level section. Entries keep insertion order and item names
// are unique within a section.
type Section struct {
	Name    string
	Entries []Entry
}

// Get returns the item stored under name.
func (s *Section) Get(name string) (Item, bool) {
	for _, e := range s.Entries {
		if e.Name == name {
			return e.Item, true
		}
	}
	return Item{}, false
}

// Names returns the item names in insertion order.
func (s *Section) Names() []string {
	names := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		names[i] = e.Name
	}
	return names
}

// set stores item under name. A repeated name replaces the earlier value
// in place, keeping its original position.
func (s *Section) set(name string, item Item) {
	for i := range s.Entries {
		if s.Entries[i].Name == name {
			s.Entries[i].Item = item
			return
		}
	}
	s.Entries = append(s.Entries, Entry{Name: name, Item: item})
}

// Report is the root artifact of a collection run.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	Host      string     `json:"host" yaml:"host"`
	Timestamp time.Time  `json:"timestamp" yaml:"timestamp"`
	Sections  []*Section `json:"sections" yaml:"sections"`
}

// Find returns the first item called name in a section called section.
func (r *Report) Find(section, name string) (Item, bool) {
	for _, s := range r.Sections {
		if s.Name != section {
			continue
		}
		if item, ok := s.Get(name); ok {
			return item, true
		}
	}
	return Item{}, false
}
