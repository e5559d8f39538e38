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

package collector

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/client"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/collector/host"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/collector/systemd"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/config"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/defaults"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/diagnostics"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/errors"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/query"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/shell"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/version"
)

// Names of the top-level items written before the step table runs.
const (
	ItemVersion   = "Version"
	ItemTimestamp = "Timestamp"
	ItemUptime    = "Uptime"
	ItemOS        = "Operating system"
	ItemConfig    = "ClickHouse configuration"
)

const timestampLayout = "2006-01-02 15:04:05"

// QueryRunner executes queries against the server. *client.Client satisfies it.
type QueryRunner interface {
	Query(ctx context.Context, text string, opts ...client.QueryOption) (string, error)
	QueryData(ctx context.Context, text string, format client.Format, opts ...client.QueryOption) (map[string]any, error)
	Version(ctx context.Context) (version.Version, error)
	VersionString(ctx context.Context) (string, error)
	Render(ctx context.Context, tpl string, vars query.Vars) (string, error)
}

// CommandRunner executes shell commands. *shell.Runner satisfies it.
type CommandRunner interface {
	Run(ctx context.Context, command string, input []byte) (string, error)
}

// UnitDescriber renders the properties of a systemd unit.
// *systemd.Reader satisfies it.
type UnitDescriber interface {
	Describe(ctx context.Context, unit string) (string, error)
}

// Collector runs the diagnostic steps against one server and assembles
// the report. Steps run one at a time in table order.
type Collector struct {
	// Host names the server in the report.
	Host string

	// Client runs queries. Required.
	Client QueryRunner

	// Shell runs commands. Defaults to a shell.Runner with defaults.CommandTimeout.
	Shell CommandRunner

	// Units reads systemd unit properties. Defaults to systemd.NewReader().
	Units UnitDescriber

	// ConfigPath is the preprocessed server configuration. Defaults to defaults.ConfigPath.
	ConfigPath string

	// Masker redacts the configuration dump. Defaults to config.NewMasker().
	Masker *config.Masker

	// NormalizeQueries replaces captured query text with normalizeQuery(query).
	NormalizeQueries bool

	// Steps is the collection table. Defaults to DefaultSteps().
	Steps []Step

	// ToolVersion is recorded in the report header.
	ToolVersion string

	// OSName returns the host operating system name. Defaults to host.PrettyName.
	OSName func() (string, error)
}

// Collect runs every step and returns the finalized report. Step failures
// are recorded in the report. An error is returned only when the server
// version cannot be obtained, before any step has run.
func (c *Collector) Collect(ctx context.Context) (*diagnostics.Report, error) {
	if c.Client == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "collector requires a query client")
	}
	c.setDefaults()

	start := time.Now()
	defer func() {
		collectionDuration.Observe(time.Since(start).Seconds())
	}()

	slog.Info("starting diagnostics collection", "host", c.Host, "steps", len(c.Steps))

	v, err := c.Client.Version(ctx)
	if err != nil {
		collectionTotal.WithLabelValues(statusError).Inc()
		return nil, fmt.Errorf("failed to discover server version: %w", err)
	}
	rawVersion, err := c.Client.VersionString(ctx)
	if err != nil {
		rawVersion = v.String()
	}

	b := diagnostics.NewBuilder(c.Host, diagnostics.WithToolVersion(c.ToolVersion))
	b.SetMetadata(diagnostics.MetadataServerVersion, rawVersion)

	b.AddString("", ItemVersion, rawVersion)
	b.AddString("", ItemTimestamp, b.Timestamp().Format(timestampLayout))
	b.AddString("", ItemUptime, c.uptime(ctx).Text())
	if name, err := c.OSName(); err == nil {
		b.AddString("", ItemOS, name)
	} else {
		slog.Debug("failed to read os release", "error", err)
	}

	cfg := c.addConfig(b)
	vars := templateVars(cfg, c.NormalizeQueries)
	tables := c.discoverTables(ctx)

	for _, step := range c.Steps {
		c.runStep(ctx, b, step, v, tables, vars)
	}

	report := b.Finalize()
	reportItems.Set(float64(countItems(report)))
	collectionTotal.WithLabelValues(statusSuccess).Inc()
	slog.Info("diagnostics collection completed",
		"host", c.Host,
		"sections", len(report.Sections),
		"duration", time.Since(start).Round(time.Millisecond).String())
	return report, nil
}

func (c *Collector) setDefaults() {
	if c.Shell == nil {
		c.Shell = &shell.Runner{Timeout: defaults.CommandTimeout}
	}
	if c.Units == nil {
		c.Units = systemd.NewReader()
	}
	if c.ConfigPath == "" {
		c.ConfigPath = defaults.ConfigPath
	}
	if c.Masker == nil {
		c.Masker = config.NewMasker()
	}
	if c.Steps == nil {
		c.Steps = DefaultSteps()
	}
	if c.OSName == nil {
		c.OSName = host.PrettyName
	}
}

// addConfig records the masked configuration, or the load failure.
func (c *Collector) addConfig(b *diagnostics.Builder) *config.Config {
	cfg, err := config.Load(c.ConfigPath)
	if err == nil {
		var dump string
		if dump, err = cfg.DumpWith(c.Masker); err == nil {
			b.AddDocument("", ItemConfig, dump, "XML")
			return cfg
		}
	}
	slog.Warn("server configuration unavailable", "path", c.ConfigPath, "error", err)
	b.AddString("", ItemConfig, Result{Err: err}.Text())
	return cfg
}

// templateVars builds the variables shared by query and command templates.
// Paths fall back to package defaults when the configuration is missing.
func templateVars(cfg *config.Config, normalize bool) query.Vars {
	dataPath, errorLog, serverLog := DefaultDataPath, DefaultErrorLog, DefaultServerLog
	if cfg != nil {
		if p := cfg.String("clickhouse.path"); p != "" {
			dataPath = p
		}
		if p := cfg.String("clickhouse.logger.errorlog"); p != "" {
			errorLog = p
		}
		if p := cfg.String("clickhouse.logger.log"); p != "" {
			serverLog = p
		}
	}
	if !strings.HasSuffix(dataPath, "/") {
		dataPath += "/"
	}
	return query.Vars{
		VarNormalizeQueries: normalize,
		VarDataPath:         dataPath,
		VarErrorLog:         errorLog,
		VarServerLog:        serverLog,
	}
}

// discoverTables lists the tables of the system database. A failure leaves
// the set empty, which disables table-gated steps.
func (c *Collector) discoverTables(ctx context.Context) TableSet {
	data, err := c.Client.QueryData(ctx, selectSystemTables, client.FormatJSONCompact)
	if err != nil {
		slog.Warn("failed to list system tables", "error", err)
		return NewTableSet()
	}
	rows, _ := data["data"].([]any)
	tables := make(TableSet, len(rows))
	for _, row := range rows {
		cols, ok := row.([]any)
		if !ok || len(cols) == 0 {
			continue
		}
		if name, ok := cols[0].(string); ok {
			tables[name] = struct{}{}
		}
	}
	slog.Debug("discovered system tables", "count", len(tables))
	return tables
}

func (c *Collector) runStep(ctx context.Context, b *diagnostics.Builder, step Step, v version.Version, tables TableSet, vars query.Vars) {
	if ok, reason := step.Enabled(v, tables); !ok {
		slog.Debug("skipping step", "step", step.Name, "reason", reason)
		stepTotal.WithLabelValues(step.Kind.String(), statusSkipped).Inc()
		return
	}

	start := time.Now()
	var res Result
	switch step.Kind {
	case KindQuery:
		var text string
		text, res = c.runQuery(ctx, step.Query, step.Format, vars)
		b.AddQuery(step.Section, step.Name, text, res.Text())
	case KindCommand:
		var command string
		command, res = c.runCommand(ctx, step, vars)
		b.AddCommand(step.Section, step.Name, command, res.Text())
	case KindUnit:
		res = c.describeUnit(ctx, step.Unit)
		format := "YAML"
		if res.Failed() {
			format = ""
		}
		b.AddDocument(step.Section, step.Name, res.Text(), format)
	default:
		res = Result{Err: errors.NewWithContext(errors.ErrCodeInvalidRequest, "unknown step kind",
			map[string]any{"kind": string(step.Kind)})}
		b.AddString(step.Section, step.Name, res.Text())
	}
	stepDuration.WithLabelValues(step.Kind.String()).Observe(time.Since(start).Seconds())

	status := statusSuccess
	if res.Failed() {
		status = statusError
		slog.Warn("diagnostic step failed", "step", step.Name, "kind", step.Kind, "error", res.Err)
	}
	stepTotal.WithLabelValues(step.Kind.String(), status).Inc()
}

// uptime reads the formatted server uptime. When the server cannot format
// it, the raw seconds are read and formatted locally.
func (c *Collector) uptime(ctx context.Context) Result {
	_, res := c.runQuery(ctx, selectUptime, client.FormatTSVRaw, nil)
	if !res.Failed() {
		return res
	}
	_, raw := c.runQuery(ctx, selectUptimeSeconds, client.FormatTSVRaw, nil)
	if raw.Failed() {
		return res
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(raw.Value), 64)
	if err != nil {
		slog.Debug("unexpected uptime value", "value", raw.Value, "error", err)
		return res
	}
	now := time.Now()
	since := now.Add(-time.Duration(secs * float64(time.Second)))
	return Result{Value: strings.TrimSpace(humanize.RelTime(since, now, "", ""))}
}

// runQuery renders tpl and executes it. The returned text is the rendered
// query, or the template itself when rendering failed.
func (c *Collector) runQuery(ctx context.Context, tpl string, format client.Format, vars query.Vars) (string, Result) {
	text, err := c.Client.Render(ctx, tpl, vars)
	if err != nil {
		return tpl, Result{Err: err}
	}
	if format == "" {
		format = client.FormatPrettyCompactNoEscapes
	}
	out, err := c.Client.Query(ctx, text, client.WithFormat(format))
	return text, Result{Value: out, Err: err}
}

// runCommand renders the command line and runs it. The returned command is
// the exact line executed.
func (c *Collector) runCommand(ctx context.Context, step Step, vars query.Vars) (string, Result) {
	command, err := c.Client.Render(ctx, step.Command, vars)
	if err != nil {
		return step.Command, Result{Err: err}
	}
	out, err := c.Shell.Run(ctx, command, step.Input)
	return command, Result{Value: out, Err: err}
}

func (c *Collector) describeUnit(ctx context.Context, unit string) Result {
	out, err := c.Units.Describe(ctx, unit)
	return Result{Value: out, Err: err}
}

func countItems(r *diagnostics.Report) int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Entries)
	}
	return n
}
