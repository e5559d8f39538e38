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
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/logging"
)

const (
	name           = "chdiag"
	versionDefault = "dev"
)

// Exit codes.
const (
	exitOK       = 0
	exitError    = 1
	exitCanceled = 2
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Execute runs the CLI with the process arguments and exits on failure.
// This is called by main.main().
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		EnableShellCompletion: true,
		Usage:                 "Collect diagnostics from a ClickHouse server",
		Description: `Runs a fixed sequence of diagnostic queries and host commands against a
ClickHouse server and writes a single report.

Individual query or command failures are recorded in the report and do not
fail the run. The process exits non-zero only when the server cannot be
reached at startup or the arguments are invalid.

# Examples

Wiki report of the local server to stdout:
  chdiag

Compressed JSON report of a remote server, with query literals elided:
  chdiag --host ch-1.example.com --format json.gz --normalize-queries --output ch-1.json.gz

Re-render a saved report as wiki text:
  chdiag render --input ch-1.json.gz --format wiki`,
		Flags: append(collectFlags(), logLevelFlag()),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			initLogger(cmd.String("log-level"))
			return ctx, nil
		},
		Action: collectAction,
		Commands: []*cli.Command{
			renderCmd(),
		},
	}
}

// initLogger configures slog after flags are parsed so overrides like
// --log-level take effect before any command executes.
func initLogger(level string) {
	logging.SetDefaultStructuredLoggerWithLevel(name, version, level)
	slog.Debug("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
		"logLevel", level)
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return exitCanceled
	}
	var ec cli.ExitCoder
	if stderrors.As(err, &ec) {
		return ec.ExitCode()
	}
	return exitError
}
