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

// Package diagnostics holds the report produced by a collection run.
//
// A Report is an ordered list of Sections, each an ordered mapping from item
// name to Item. Items are one of four kinds:
//
//	string    label and value
//	document  pre-serialized document with a sub-format (e.g. XML)
//	query     rendered query text and its result
//	command   exact command line and its result
//
// Reports are built with a Builder and are not modified after Finalize:
//
//	b := diagnostics.NewBuilder("ch-1")
//	b.AddString("", "Version", "23.8.2.7")
//	b.AddQuery("Merges", "merges", "SELECT * FROM system.merges", out)
//	report := b.Finalize()
//
// JSON and YAML encodings keep item order. Each section is encoded as
//
//	{"section": "Merges", "data": {"merges": {"type": "query", ...}}}
//
// with "section" set to null for the top-level section.
package diagnostics
