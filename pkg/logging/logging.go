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

package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

// EnvLogLevel is the environment variable consulted for the default level.
const EnvLogLevel = "LOG_LEVEL"

// ParseLogLevel converts a level name into a slog.Level, defaulting to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewStructuredLogger returns a JSON logger on stderr tagged with module and version.
func NewStructuredLogger(module, version, level string) *slog.Logger {
	return newLogger(os.Stderr, module, version, ParseLogLevel(level))
}

// SetDefaultStructuredLogger installs a structured logger as the slog default,
// with the level taken from LOG_LEVEL.
func SetDefaultStructuredLogger(module, version string) {
	SetDefaultStructuredLoggerWithLevel(module, version, os.Getenv(EnvLogLevel))
}

// SetDefaultStructuredLoggerWithLevel installs a structured logger with an
// explicit level as the slog default.
func SetDefaultStructuredLoggerWithLevel(module, version, level string) {
	slog.SetDefault(NewStructuredLogger(module, version, level))
}

// NewLogLogger bridges the standard library log package onto the default slog handler.
func NewLogLogger(level slog.Level) *log.Logger {
	return slog.NewLogLogger(slog.Default().Handler(), level)
}

func newLogger(w io.Writer, module, version string, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: level <= slog.LevelDebug,
		Level:     level,
	})
	return slog.New(h).With(
		slog.String("module", module),
		slog.String("version", version),
	)
}
