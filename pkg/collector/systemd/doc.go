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

// Package systemd reads the properties of the ClickHouse service unit.
//
// Properties come from the systemd D-Bus API rather than `systemctl show`,
// so the step works without a TTY and without parsing command output.
// Environment and credential properties are dropped before rendering.
//
//	r := systemd.NewReader()
//	doc, err := r.Describe(ctx, "clickhouse-server.service")
//
// When D-Bus is unavailable (containers, non-systemd hosts) Describe returns
// an UNAVAILABLE error, which the collector records as the step result.
package systemd
