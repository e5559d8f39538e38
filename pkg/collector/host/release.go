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

// Package host reads facts about the machine the collector runs on.
package host

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"
)

var (
	filePathReleasePrimary  = "/etc/os-release"
	filePathReleaseFallback = "/usr/lib/os-release"
)

const maxReleaseSize = 1 << 16

// Release parses an os-release file into key/value pairs. Per
// freedesktop.org, /usr/lib/os-release is used when /etc/os-release is
// missing. Surrounding quotes are removed from values.
//
//	NAME="Ubuntu"
//	VERSION_ID="22.04"
//	PRETTY_NAME="Ubuntu 22.04.4 LTS"
func Release() (map[string]string, error) {
	path := filePathReleasePrimary
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = filePathReleaseFallback
	}
	return ParseReleaseFile(path)
}

// PrettyName returns PRETTY_NAME from the os-release file, falling back to
// NAME and VERSION.
func PrettyName() (string, error) {
	params, err := Release()
	if err != nil {
		return "", err
	}
	if v := params["PRETTY_NAME"]; v != "" {
		return v, nil
	}
	return strings.TrimSpace(params["NAME"] + " " + params["VERSION"]), nil
}

// ParseReleaseFile parses the os-release formatted file at path.
func ParseReleaseFile(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read os release from %s: %w", path, err)
	}
	if len(b) > maxReleaseSize {
		return nil, fmt.Errorf("file %q exceeds maximum size of %d bytes", path, maxReleaseSize)
	}
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("content of file %q is not valid UTF-8", path)
	}
	return parseRelease(string(b)), nil
}

func parseRelease(content string) map[string]string {
	result := make(map[string]string, 15)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			slog.Debug("skipping malformed os-release line", "line", line)
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if value == "" {
			continue
		}
		result[strings.TrimSpace(key)] = value
	}
	return result
}
