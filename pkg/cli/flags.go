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
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/serializer"
)

// Output flags are local so a subcommand can declare its own. They are
// constructed per command because urfave flags keep parse state.

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
		Sources: cli.EnvVars("CHDIAG_OUTPUT"),
		Local:   true,
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Usage:   fmt.Sprintf("Output format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
		Sources: cli.EnvVars("CHDIAG_FORMAT"),
		Value:   string(serializer.DefaultFormat),
		Local:   true,
	}
}

func logLevelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "log-level",
		Usage:   "Log level (debug, info, warn, error)",
		Sources: cli.EnvVars("LOG_LEVEL"),
		Value:   "info",
	}
}

// parseOutputFormat validates the --format flag.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f, err := serializer.ParseFormat(cmd.String("format"))
	if err != nil {
		return "", fmt.Errorf("invalid --format %q: supported formats are %s",
			cmd.String("format"), strings.Join(serializer.SupportedFormats(), ", "))
	}
	return f, nil
}

// defaultHost returns the local host name, or "localhost" when unknown.
func defaultHost() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "localhost"
	}
	return h
}
