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

// Package shell runs host commands for the diagnostics report.
//
// Commands run through /bin/sh -c, so pipes and globs in the command line
// work as typed. Stdout and stderr are captured separately and fully drained
// before Run returns. A non-zero exit becomes a *CommandError carrying the
// exit code and stderr:
//
//	out, err := shell.Run(ctx, "df -h", nil)
//	var ce *shell.CommandError
//	if errors.As(err, &ce) {
//	    fmt.Println(ce) // failed with exit code 1\n<stderr>
//	}
package shell
