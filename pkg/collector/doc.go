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

// Package collector drives a diagnostics run against a single ClickHouse
// server and assembles the resulting report.
//
// Collection is a fixed table of steps (see DefaultSteps). Each step is a
// query template, a shell command template, or a systemd unit, optionally
// gated on a minimum server version or on the presence of a system table.
// Steps run one at a time in table order and every outcome, success or
// failure, becomes an item in the report:
//
//	c := &collector.Collector{
//	    Host:   hostname,
//	    Client: client.New(client.WithHost("localhost")),
//	}
//	report, err := c.Collect(ctx)
//	if err != nil {
//	    // the server version could not be obtained
//	}
//
// Templates share the variables normalize_queries, data_path, error_log and
// server_log. Paths are read from the server configuration when available.
//
// Prometheus metrics for runs, steps and connection retries are registered
// with the default registry.
package collector
