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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/serializer"
)

func renderCmd() *cli.Command {
	return &cli.Command{
		Name:                  "render",
		EnableShellCompletion: true,
		Usage:                 "Re-render a saved report in another format",
		Description: `Reads a report previously written in json, yaml or their gzip variants
and writes it again in the requested format. Wiki reports cannot be read back.

The input format is derived from the file extension (.json, .yaml, .yml,
optionally followed by .gz).

# Examples

  chdiag render --input ch-1.json.gz --format wiki --output ch-1.md`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path of the saved report",
				Required: true,
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			report, err := serializer.ReadReport(cmd.String("input"))
			if err != nil {
				return fmt.Errorf("failed to read report: %w", err)
			}

			w, err := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			if err != nil {
				return err
			}
			defer w.Close()

			return w.Serialize(ctx, report)
		},
	}
}
