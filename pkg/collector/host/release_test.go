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

package host

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const ubuntuRelease = `# comment line
NAME="Ubuntu"
VERSION="22.04.4 LTS (Jammy Jellyfish)"
ID=ubuntu
PRETTY_NAME="Ubuntu 22.04.4 LTS"
EMPTY=
malformed line
`

func writeRelease(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "os-release")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func useReleaseFiles(t *testing.T, primary, fallback string) {
	t.Helper()
	oldPrimary, oldFallback := filePathReleasePrimary, filePathReleaseFallback
	filePathReleasePrimary, filePathReleaseFallback = primary, fallback
	t.Cleanup(func() {
		filePathReleasePrimary, filePathReleaseFallback = oldPrimary, oldFallback
	})
}

func TestParseReleaseFile(t *testing.T) {
	params, err := ParseReleaseFile(writeRelease(t, ubuntuRelease))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"NAME":        "Ubuntu",
		"VERSION":     "22.04.4 LTS (Jammy Jellyfish)",
		"ID":          "ubuntu",
		"PRETTY_NAME": "Ubuntu 22.04.4 LTS",
	}
	if len(params) != len(want) {
		t.Errorf("got %d keys, want %d: %v", len(params), len(want), params)
	}
	for k, v := range want {
		if params[k] != v {
			t.Errorf("%s = %q, want %q", k, params[k], v)
		}
	}
}

func TestParseReleaseFile_Errors(t *testing.T) {
	if _, err := ParseReleaseFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := ParseReleaseFile(writeRelease(t, "NAME=\xff\xfe")); err == nil {
		t.Error("expected error for invalid UTF-8")
	}
	big := "NAME=" + strings.Repeat("x", maxReleaseSize)
	if _, err := ParseReleaseFile(writeRelease(t, big)); err == nil {
		t.Error("expected error for oversized file")
	}
}

func TestPrettyName_Fallback(t *testing.T) {
	fallback := writeRelease(t, "NAME=Debian\nVERSION=12\n")
	useReleaseFiles(t, filepath.Join(t.TempDir(), "absent"), fallback)

	got, err := PrettyName()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Debian 12" {
		t.Errorf("PrettyName() = %q, want %q", got, "Debian 12")
	}
}

func TestPrettyName_Primary(t *testing.T) {
	useReleaseFiles(t, writeRelease(t, ubuntuRelease), "/nonexistent")

	got, err := PrettyName()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Ubuntu 22.04.4 LTS" {
		t.Errorf("PrettyName() = %q", got)
	}
}
