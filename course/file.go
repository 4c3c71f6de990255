// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package course

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func isYAML(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadProblem reads a problem from a JSON file, or a YAML file when the
// name ends in .yaml or .yml.
func LoadProblem(file string) (*Problem, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return DecodeProblem(data, isYAML(file))
}

func DecodeProblem(data []byte, yamlFormat bool) (*Problem, error) {
	var p Problem
	if yamlFormat {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return nil, err
		}
		return &p, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// WriteOutcome writes out as indented JSON, or YAML by file name.
func WriteOutcome(file string, out *Outcome) error {
	var buf bytes.Buffer

	if isYAML(file) {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	} else {
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "   ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	}

	return os.WriteFile(file, buf.Bytes(), 0644)
}
