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

package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/clbanning/mxj/v2"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/errors"
)

// Config is the server's effective configuration as a tree of nested maps
// and slices, rooted at the top-level XML element.
type Config struct {
	// Path is the file the configuration was loaded from, if any.
	Path string

	tree mxj.Map
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeConfigInvalid, "failed to read server configuration", err,
			map[string]any{"path": path})
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	c.Path = path
	slog.Debug("loaded server configuration", "path", path, "bytes", len(data))
	return c, nil
}

// Parse builds a Config from an XML document.
func Parse(data []byte) (*Config, error) {
	tree, err := mxj.NewMapXml(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to parse server configuration", err)
	}
	if len(tree) == 0 {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "server configuration is empty")
	}
	return &Config{tree: tree}, nil
}

// Dump renders the configuration as indented XML. With maskSecrets the
// values of the default secret keys are replaced by Redacted.
func (c *Config) Dump(maskSecrets bool) (string, error) {
	if !maskSecrets {
		return c.render(c.tree)
	}
	return c.DumpWith(NewMasker())
}

// DumpWith renders a copy of the configuration masked by m.
// The loaded tree is never modified.
func (c *Config) DumpWith(m *Masker) (string, error) {
	masked, ok := m.Mask(deepCopy(map[string]any(c.tree))).(map[string]any)
	if !ok {
		return "", errors.New(errors.ErrCodeInternal, "unexpected configuration root")
	}
	return c.render(mxj.Map(masked))
}

// String returns the value at a dotted element path such as
// "clickhouse.logger.errorlog", or "" when absent or not a scalar.
func (c *Config) String(path string) string {
	v, err := c.tree.ValueForPath(path)
	if err != nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		// Element with attributes; its character data lives under "#text".
		if s, ok := val["#text"].(string); ok {
			return s
		}
	}
	return ""
}

func (c *Config) render(tree mxj.Map) (string, error) {
	out, err := tree.XmlIndent("", "    ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to render server configuration", err)
	}
	return string(out), nil
}

// deepCopy clones the nested map/slice structure produced by mxj.
func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, child := range val {
			m[k] = deepCopy(child)
		}
		return m
	case mxj.Map:
		return deepCopy(map[string]any(val))
	case []any:
		s := make([]any, len(val))
		for i, child := range val {
			s[i] = deepCopy(child)
		}
		return s
	default:
		return val
	}
}

// GoString keeps accidental %#v logging from printing secrets.
func (c *Config) GoString() string {
	return fmt.Sprintf("config.Config{Path: %q}", c.Path)
}
