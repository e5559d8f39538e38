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
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/client"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/collector"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/collector/systemd"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/config"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/defaults"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/serializer"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/shell"
)

func collectFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Usage:   "ClickHouse server host name",
			Sources: cli.EnvVars("CHDIAG_HOST"),
			Value:   defaultHost(),
			Local:   true,
		},
		&cli.IntFlag{
			Name:    "port",
			Usage:   "ClickHouse HTTP interface port",
			Sources: cli.EnvVars("CHDIAG_PORT"),
			Value:   defaults.HTTPPort,
			Local:   true,
		},
		&cli.StringFlag{
			Name:    "url",
			Usage:   "Full HTTP interface endpoint, e.g. https://ch.example.com:8443 (overrides --port)",
			Sources: cli.EnvVars("CHDIAG_URL"),
			Local:   true,
		},
		&cli.StringFlag{
			Name:    "user",
			Usage:   "ClickHouse user name",
			Sources: cli.EnvVars("CLICKHOUSE_USER"),
			Local:   true,
		},
		&cli.BoolFlag{
			Name:    "normalize-queries",
			Usage:   "Elide literals from captured query text",
			Sources: cli.EnvVars("CHDIAG_NORMALIZE_QUERIES"),
			Local:   true,
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "Timeout for each query",
			Sources: cli.EnvVars("CHDIAG_TIMEOUT"),
			Value:   defaults.QueryTimeout,
			Local:   true,
		},
		&cli.StringFlag{
			Name:    "config-path",
			Usage:   "Path of the preprocessed server configuration",
			Sources: cli.EnvVars("CHDIAG_CONFIG_PATH"),
			Value:   defaults.ConfigPath,
			Local:   true,
		},
		&cli.StringSliceFlag{
			Name:  "secret-key",
			Usage: "Additional configuration key to mask (can be repeated)",
		},
		&cli.FloatFlag{
			Name:    "max-qps",
			Usage:   "Maximum queries per second (0 = unlimited)",
			Sources: cli.EnvVars("CHDIAG_MAX_QPS"),
			Local:   true,
		},
		&cli.StringFlag{
			Name:    "metrics-file",
			Usage:   "Write collection metrics in Prometheus text format to this file",
			Sources: cli.EnvVars("CHDIAG_METRICS_FILE"),
			Local:   true,
		},
		outputFlag(),
		formatFlag(),
	}
}

// newCollector builds a collector from the parsed flags.
func newCollector(cmd *cli.Command) *collector.Collector {
	host := cmd.String("host")

	opts := []client.Option{
		client.WithHost(host),
		client.WithPort(int(cmd.Int("port"))),
		client.WithTimeout(cmd.Duration("timeout")),
		client.WithRateLimit(cmd.Float("max-qps")),
		client.WithRetryHook(collector.RecordRetry),
	}
	if endpoint := cmd.String("url"); endpoint != "" {
		opts = append(opts, client.WithURL(endpoint))
	}
	if user := cmd.String("user"); user != "" {
		opts = append(opts, client.WithUser(user))
	}

	return &collector.Collector{
		Host:             host,
		Client:           client.New(opts...),
		Shell:            &shell.Runner{Timeout: defaults.CommandTimeout},
		Units:            systemd.NewReader(),
		ConfigPath:       cmd.String("config-path"),
		Masker:           config.NewMasker(cmd.StringSlice("secret-key")...),
		NormalizeQueries: cmd.Bool("normalize-queries"),
		ToolVersion:      version,
	}
}

func collectAction(ctx context.Context, cmd *cli.Command) error {
	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	if path := cmd.String("metrics-file"); path != "" {
		defer writeMetrics(path)
	}

	c := newCollector(cmd)
	report, err := c.Collect(ctx)
	if err != nil {
		return fmt.Errorf("cannot collect diagnostics from %s: %w", c.Host, err)
	}

	w, err := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			slog.Warn("failed to close output", "error", cerr)
		}
	}()

	return w.Serialize(ctx, report)
}

// writeMetrics exports the default registry. Failures are logged only.
func writeMetrics(path string) {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		slog.Warn("failed to write metrics", "path", path, "error", err)
		return
	}
	slog.Debug("metrics written", "path", path)
}
