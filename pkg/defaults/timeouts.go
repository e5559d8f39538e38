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

package defaults

import "time"

// Query timeouts for the ClickHouse HTTP interface.
const (
	// QueryTimeout is the default per-query timeout.
	QueryTimeout = 60 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second
)

// Retry budget for connection-establishment failures.
const (
	// RetryAttempts is the total number of attempts, including the first one.
	RetryAttempts uint = 5

	// RetryBaseDelay is the base of the randomized exponential backoff.
	RetryBaseDelay = 500 * time.Millisecond

	// RetryMaxDelay caps a single backoff interval.
	RetryMaxDelay = 5 * time.Second
)

// Command timeouts for shell diagnostics.
const (
	// CommandTimeout bounds a single shell command.
	CommandTimeout = 60 * time.Second

	// UnitPropertiesTimeout bounds the systemd D-Bus property lookup.
	UnitPropertiesTimeout = 10 * time.Second
)

// Well-known locations and endpoints.
const (
	// HTTPPort is the default ClickHouse HTTP interface port.
	HTTPPort = 8123

	// ConfigPath is the fully-resolved server configuration written by ClickHouse on startup.
	ConfigPath = "/var/lib/clickhouse/preprocessed_configs/config.xml"

	// ServiceUnit is the systemd unit of the server.
	ServiceUnit = "clickhouse-server.service"
)
