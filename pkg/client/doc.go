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

// Package client talks to the ClickHouse HTTP interface.
//
// Every query is a single POST with the query text in the "query" URL
// parameter. An optional FORMAT clause is appended for the requested output
// format; JSON formats can be decoded with QueryData.
//
//	c := client.New(client.WithHost("ch-1"), client.WithUser("default"))
//	out, err := c.Query(ctx, "SELECT * FROM system.merges", client.WithFormat(client.FormatVertical))
//
// # Retries
//
// Only failures to establish a connection are retried, up to five attempts with
// randomized exponential backoff (0.5s base, 5s cap). Responses with a non-2xx
// status are returned immediately as *ServerError carrying the raw body.
//
// # Version
//
// Version queries "SELECT version()" once and caches the result for the
// lifetime of the client. Render uses it to evaluate version_ge in templates.
package client
