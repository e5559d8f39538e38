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

// Package defaults provides centralized configuration constants for the collector.
//
// This package defines timeout values, retry parameters, and well-known paths
// used across the codebase.
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.QueryTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
//   - Queries: 60s each, the server may be under heavy load while diagnosed
//   - Retries: only connection failures, 5 attempts, 0.5s base, 5s cap
//   - Commands: 60s each
package defaults
