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

// Package logging configures structured slog logging for chdiag.
//
// Logs are written to stderr in JSON format so that stdout stays reserved for
// the diagnostics report (which may be raw gzip bytes):
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "step completed",
//	    "module": "chdiag",
//	    "version": "v1.0.0",
//	    "step": "Merges in progress"
//	}
//
// Debug logs include source location.
//
// # Usage
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("chdiag", version)
//	    slog.Info("collecting", "host", host)
//	}
//
// Explicit level (e.g. from a --log-level flag):
//
//	logging.SetDefaultStructuredLoggerWithLevel("chdiag", version, "debug")
//
// # Log Levels
//
// Supported levels (case-insensitive): debug, info, warn/warning, error.
// The LOG_LEVEL environment variable is consulted by SetDefaultStructuredLogger;
// unknown or empty values fall back to info.
package logging
