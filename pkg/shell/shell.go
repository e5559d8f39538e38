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

// Package shell runs diagnostic shell commands on the local host.
package shell

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/defaults"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/errors"
)

// Shell is the interpreter used to run command lines.
var Shell = "/bin/sh"

const waitDelay = 500 * time.Millisecond

// CommandError reports a command that ran but exited with a non-zero status.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("failed with exit code %d\n%s", e.ExitCode, e.Stderr)
}

// Runner executes command lines through the platform shell.
type Runner struct {
	// Timeout bounds each command. Zero uses defaults.CommandTimeout.
	Timeout time.Duration
}

// Run executes command with input piped to its stdin (nil for none) and
// returns the complete stdout once the process has exited. A non-zero exit
// status yields a *CommandError carrying the captured stderr.
func (r *Runner) Run(ctx context.Context, command string, input []byte) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaults.CommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, Shell, "-c", command)
	// Grandchildren may hold the output pipes open after the shell is killed.
	cmd.WaitDelay = waitDelay
	if input != nil {
		cmd.Stdin = bytes.NewReader(input)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running command", "command", command)
	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) && ctx.Err() == nil {
		return "", &CommandError{
			Command:  command,
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimRight(stderr.String(), "\n"),
		}
	}
	if ctx.Err() != nil {
		return "", errors.WrapWithContext(errors.ErrCodeTimeout, "command timed out or was canceled", ctx.Err(),
			map[string]any{"command": command})
	}
	return "", errors.WrapWithContext(errors.ErrCodeCommandFailed, "failed to start command", err,
		map[string]any{"command": command})
}

// Run executes command with the default Runner.
func Run(ctx context.Context, command string, input []byte) (string, error) {
	var r Runner
	return r.Run(ctx, command, input)
}
