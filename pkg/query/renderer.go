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

package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/errors"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/version"
)

// VersionGE is the name of the version predicate available to templates.
const VersionGE = "version_ge"

// Vars holds the named values a template may reference.
type Vars map[string]any

// VersionFunc resolves the version of the connected server.
type VersionFunc func(ctx context.Context) (version.Version, error)

// Renderer expands query templates written in jinja syntax.
type Renderer struct {
	// Version is consulted only by templates that call version_ge.
	Version VersionFunc
}

// NewRenderer creates a Renderer backed by the given version source.
func NewRenderer(fn VersionFunc) *Renderer {
	return &Renderer{Version: fn}
}

var (
	outputExpr = regexp.MustCompile(`(?s)\{\{-?(.*?)-?\}\}`)
	branchExpr = regexp.MustCompile(`(?s)\{%-?\s*(?:if|elif)\s(.*?)-?%\}`)

	// names that are never looked up in vars
	keywords = map[string]bool{
		"true": true, "false": true, "True": true, "False": true,
		"none": true, "None": true, "nil": true,
		"not": true, "and": true, "or": true, "in": true, "is": true,
		VersionGE: true,
	}
)

// Render expands tpl against vars. Output is trimmed of surrounding whitespace.
// The result depends only on tpl, vars and the resolved server version.
func (r *Renderer) Render(ctx context.Context, tpl string, vars Vars) (string, error) {
	if err := checkReferences(tpl, vars); err != nil {
		return "", err
	}

	pctx := make(pongo2.Context, len(vars)+1)
	for k, v := range vars {
		pctx[k] = v
	}

	var thresholdErr error
	if strings.Contains(tpl, VersionGE) {
		if r.Version == nil {
			return "", errors.New(errors.ErrCodeRenderFailed, "template uses version_ge but no server version is available")
		}
		current, err := r.Version(ctx)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeRenderFailed, "failed to resolve server version", err)
		}
		pctx[VersionGE] = func(threshold string) bool {
			t, err := version.ParseVersion(threshold)
			if err != nil {
				if thresholdErr == nil {
					thresholdErr = fmt.Errorf("version_ge(%q): %w", threshold, err)
				}
				return false
			}
			return current.EqualsOrNewer(t)
		}
	}

	t, err := pongo2.FromString("{% autoescape off %}" + tpl + "{% endautoescape %}")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRenderFailed, "malformed query template", err)
	}
	out, err := t.Execute(pctx)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRenderFailed, "failed to render query template", err)
	}
	if thresholdErr != nil {
		return "", errors.Wrap(errors.ErrCodeRenderFailed, "invalid version threshold", thresholdErr)
	}

	return strings.TrimSpace(out), nil
}

// checkReferences rejects templates that print or branch on names missing
// from vars. pongo2 silently renders undefined names as empty values.
func checkReferences(tpl string, vars Vars) error {
	for _, re := range []*regexp.Regexp{outputExpr, branchExpr} {
		for _, m := range re.FindAllStringSubmatch(tpl, -1) {
			for _, name := range identifiers(m[1]) {
				if keywords[name] {
					continue
				}
				if _, ok := vars[name]; !ok {
					return errors.NewWithContext(errors.ErrCodeRenderFailed,
						fmt.Sprintf("undefined template variable %q", name),
						map[string]any{"variable": name})
				}
			}
		}
	}
	return nil
}

// identifiers returns the names an expression resolves against the context.
// String and number literals are skipped, as are filter names (after "|")
// and attribute names (after ".").
func identifiers(expr string) []string {
	var (
		names []string
		prev  byte
	)
	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case c == '\'' || c == '"':
			j := i + 1
			for j < len(expr) && expr[j] != c {
				if expr[j] == '\\' {
					j++
				}
				j++
			}
			i, prev = j+1, c
		case isIdentStart(c):
			j := i
			for j < len(expr) && isIdentPart(expr[j]) {
				j++
			}
			if prev != '|' && prev != '.' {
				names = append(names, expr[i:j])
			}
			i, prev = j, 'a'
		case c >= '0' && c <= '9':
			j := i
			for j < len(expr) && (isIdentPart(expr[j]) || expr[j] == '.') {
				j++
			}
			i, prev = j, '0'
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		default:
			i, prev = i+1, c
		}
	}
	return names
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
