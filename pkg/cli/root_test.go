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

package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/client"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/collector"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/diagnostics"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/serializer"
)

func hasName(flag cli.Flag, name string) bool {
	if flag == nil {
		return false
	}
	for _, n := range flag.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func requireFlags(t *testing.T, flags []cli.Flag, names ...string) {
	t.Helper()
	for _, flagName := range names {
		found := false
		for _, flag := range flags {
			if hasName(flag, flagName) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("required flag %q not found", flagName)
		}
	}
}

func TestRootCmd_CommandStructure(t *testing.T) {
	cmd := newRootCmd()

	if cmd.Name != name {
		t.Errorf("Name = %v, want %v", cmd.Name, name)
	}
	if cmd.Usage == "" {
		t.Error("Usage should not be empty")
	}
	if cmd.Action == nil {
		t.Error("Action should not be nil")
	}

	requireFlags(t, cmd.Flags,
		"host", "port", "user", "format", "normalize-queries", "output", "timeout",
		"config-path", "secret-key", "max-qps", "metrics-file", "log-level")

	require.Len(t, cmd.Commands, 1)
	assert.Equal(t, "render", cmd.Commands[0].Name)
}

func TestRenderCmd_CommandStructure(t *testing.T) {
	cmd := renderCmd()

	assert.Equal(t, "render", cmd.Name)
	assert.NotEmpty(t, cmd.Usage)
	assert.NotEmpty(t, cmd.Description)
	assert.NotNil(t, cmd.Action)
	requireFlags(t, cmd.Flags, "input", "output", "format")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitOK},
		{name: "generic", err: stderrors.New("boom"), want: exitError},
		{name: "canceled", err: fmt.Errorf("collect: %w", context.Canceled), want: exitCanceled},
		{name: "deadline", err: context.DeadlineExceeded, want: exitCanceled},
		{name: "exit coder", err: cli.Exit("bad", 3), want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestNewCollector_FromFlags(t *testing.T) {
	var got *collector.Collector
	cmd := &cli.Command{
		Flags: collectFlags(),
		Action: func(_ context.Context, c *cli.Command) error {
			got = newCollector(c)
			return nil
		},
	}

	err := cmd.Run(context.Background(), []string{"test",
		"--host", "db-1",
		"--port", "9000",
		"--normalize-queries",
		"--config-path", "/tmp/config.xml",
		"--secret-key", "access_key_id",
		"--secret-key", "token",
	})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "db-1", got.Host)
	assert.Equal(t, "/tmp/config.xml", got.ConfigPath)
	assert.True(t, got.NormalizeQueries)
	assert.Equal(t, version, got.ToolVersion)
	assert.True(t, got.Masker.IsSecret("access_key_id"))
	assert.True(t, got.Masker.IsSecret("token"))
	assert.True(t, got.Masker.IsSecret("password"))

	c, ok := got.Client.(*client.Client)
	require.True(t, ok)
	assert.Equal(t, "http://db-1:9000", c.URL())
}

func TestNewCollector_URLOverridesPort(t *testing.T) {
	var got *collector.Collector
	cmd := &cli.Command{
		Flags: collectFlags(),
		Action: func(_ context.Context, c *cli.Command) error {
			got = newCollector(c)
			return nil
		},
	}

	err := cmd.Run(context.Background(), []string{"test",
		"--host", "db-1",
		"--url", "https://ch.example.com:8443/",
	})
	require.NoError(t, err)

	c, ok := got.Client.(*client.Client)
	require.True(t, ok)
	assert.Equal(t, "https://ch.example.com:8443", c.URL())
	assert.Equal(t, "db-1", got.Host)
}

func TestCollect_InvalidFormat(t *testing.T) {
	err := newRootCmd().Run(context.Background(), []string{name, "--format", "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --format")
	assert.Equal(t, exitError, exitCode(err))
}

func TestCollect_ServerUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("Code: 516. DB::Exception: default: Authentication failed"))
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)

	dir := t.TempDir()
	out := filepath.Join(dir, "report.json")
	metrics := filepath.Join(dir, "metrics.prom")

	err = newRootCmd().Run(context.Background(), []string{name,
		"--host", host,
		"--port", port,
		"--timeout", (5 * time.Second).String(),
		"--format", "json",
		"--output", out,
		"--metrics-file", metrics,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Authentication failed")
	assert.Equal(t, exitError, exitCode(err))

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no report is written when the server is unreachable")

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "chdiag_collection_total")
}

func TestRender_Roundtrip(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	report := diagnostics.NewBuilder("ch-1", diagnostics.WithTimestamp(ts), diagnostics.WithToolVersion("v1.2.3")).
		AddString("", "Version", "23.8.2.7").
		AddQuery("Schema", "Database engines", "SELECT 1", "1").
		AddCommand("Host", "Memory", "free -h", "failed with exit code 1\nboom").
		Finalize()

	data, err := serializer.Render(report, serializer.FormatJSONGzip)
	require.NoError(t, err)

	dir := t.TempDir()
	in := filepath.Join(dir, "report.json.gz")
	require.NoError(t, os.WriteFile(in, data, 0o600))
	out := filepath.Join(dir, "report.yaml")

	err = newRootCmd().Run(context.Background(), []string{name, "render",
		"--input", in,
		"--format", "yaml",
		"--output", out,
	})
	require.NoError(t, err)

	got, err := serializer.ReadReport(out)
	require.NoError(t, err)
	assert.Equal(t, "ch-1", got.Host)

	item, ok := got.Find("Host", "Memory")
	require.True(t, ok)
	assert.Equal(t, diagnostics.KindCommand, item.Type)
	assert.Equal(t, "failed with exit code 1\nboom", item.Result)
}

func TestRender_MissingInput(t *testing.T) {
	err := newRootCmd().Run(context.Background(), []string{name, "render",
		"--input", filepath.Join(t.TempDir(), "absent.json"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read report")
}
