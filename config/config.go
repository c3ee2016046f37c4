// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads per-deployment overrides to the scan core's
// built-in tables. The configuration directory comes from cmd/colscan's
// --config flag; Load parses a YAML document from that directory
// (gopkg.in/yaml.v3, as doismellburning-samoyed uses throughout its own
// daemon config).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Overrides is the shape of colscan.yaml: deployment-specific knobs for
// C3's small-array-vs-hashset threshold and the Text fast path.
type Overrides struct {
	// SmallArrayThreshold overrides filter.SmallArrayThreshold when > 0.
	SmallArrayThreshold int `yaml:"small_array_threshold"`

	// DisableBinSortFastPath forces the Text kind's collation-aware
	// compare path even when a column's collation reports BinSort+NoPad,
	// useful for isolating a suspected fast-path bug in the field.
	DisableBinSortFastPath bool `yaml:"disable_binsort_fast_path"`
}

// Load reads colscan.yaml from dir. A missing directory or file is not
// an error: the core simply runs with its built-in defaults, matching
// spec.md's description of the catalog as self-contained.
func Load(dir string) (*Overrides, error) {
	if dir == "" {
		return &Overrides{}, nil
	}
	path := filepath.Join(dir, "colscan.yaml")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Overrides{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &o, nil
}
