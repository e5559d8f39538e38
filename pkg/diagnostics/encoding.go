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

package diagnostics

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	keySection = "section"
	keyData    = "data"
)

// MarshalJSON encodes the section as {"section": name|null, "data": {...}}
// with items in insertion order.
func (s Section) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"` + keySection + `":`)
	if s.Name == "" {
		buf.WriteString("null")
	} else if err := encodeJSON(&buf, s.Name); err != nil {
		return nil, err
	}

	buf.WriteString(`,"` + keyData + `":{`)
	for i, e := range s.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeJSON(&buf, e.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeJSON(&buf, e.Item); err != nil {
			return nil, fmt.Errorf("failed to encode item %q: %w", e.Name, err)
		}
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a section, preserving the order of its items.
func (s *Section) UnmarshalJSON(data []byte) error {
	var raw struct {
		Section *string         `json:"section"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Name = ""
	if raw.Section != nil {
		s.Name = *raw.Section
	}
	s.Entries = nil
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw.Data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("section %q: data must be an object", s.Name)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("section %q: unexpected token %v", s.Name, tok)
		}
		var item Item
		if err := dec.Decode(&item); err != nil {
			return fmt.Errorf("section %q: failed to decode item %q: %w", s.Name, name, err)
		}
		s.set(name, item)
	}
	_, err = dec.Token()
	return err
}

// MarshalYAML encodes the section as an ordered mapping node.
func (s Section) MarshalYAML() (any, error) {
	name := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	if s.Name != "" {
		name = stringNode(s.Name)
	}

	data := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range s.Entries {
		value := &yaml.Node{}
		if err := value.Encode(e.Item); err != nil {
			return nil, fmt.Errorf("failed to encode item %q: %w", e.Name, err)
		}
		data.Content = append(data.Content, stringNode(e.Name), value)
	}

	return &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
		Content: []*yaml.Node{
			stringNode(keySection), name,
			stringNode(keyData), data,
		},
	}, nil
}

// UnmarshalYAML decodes a section, preserving the order of its items.
func (s *Section) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: section must be a mapping", node.Line)
	}

	s.Name = ""
	s.Entries = nil
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case keySection:
			if value.ShortTag() != "!!null" {
				s.Name = value.Value
			}
		case keyData:
			if value.Kind != yaml.MappingNode {
				if value.ShortTag() == "!!null" {
					continue
				}
				return fmt.Errorf("line %d: section data must be a mapping", value.Line)
			}
			for j := 0; j+1 < len(value.Content); j += 2 {
				var item Item
				if err := value.Content[j+1].Decode(&item); err != nil {
					return fmt.Errorf("failed to decode item %q: %w", value.Content[j].Value, err)
				}
				s.set(value.Content[j].Value, item)
			}
		}
	}
	return nil
}

func stringNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// encodeJSON writes v without HTML escaping and without the trailing newline.
func encodeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}
