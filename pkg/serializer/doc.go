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

// Package serializer renders diagnostics reports and reads them back.
//
// # Supported Formats
//
// JSON:
//   - Indented, item order preserved, no HTML escaping
//   - Standard encoding/json package
//
// YAML:
//   - Block style, multi-line results as literal blocks
//   - gopkg.in/yaml.v3 package
//
// Wiki:
//   - Markdown for humans: a title naming the host, a subtitle per named
//     section, fenced blocks for queries, commands and their results
//   - Write-only (no deserialization support)
//
// Any format may be suffixed with ".gz" for gzip framing. Decompressing the
// framed output yields exactly the unframed rendering.
//
// # Usage - Encoding
//
//	w, err := serializer.NewFileWriterOrStdout(serializer.FormatWikiGzip, path)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	err = w.Serialize(ctx, report)
//
// # Usage - Decoding
//
//	report, err := serializer.ReadReport("report.json.gz")
//
// Rendering works only on the finalized report, so a saved JSON or YAML
// report can be re-rendered in another format without the server.
package serializer
