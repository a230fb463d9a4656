// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package nbtio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"sigs.k8s.io/yaml"

	"github.com/SnellerInc/tagtree/compr"
	"github.com/SnellerInc/tagtree/nbt"
)

// Config holds the settings shared by
// the command-line tool and a Store.
type Config struct {
	// Compression names the codec used
	// for writing documents.
	// See compr.Lookup.
	Compression string `json:"compression,omitempty"`
	// Limits bound decoding.
	Limits nbt.Limits `json:"limits"`
	// Backup keeps the previous version of
	// a stored document next to it.
	Backup bool `json:"backup"`
	// Pretty controls the layout of
	// pretty-printed SNBT.
	Pretty nbt.PrettyOptions `json:"pretty"`
}

// DefaultConfig returns the configuration
// used when no configuration file is given.
func DefaultConfig() *Config {
	return &Config{
		Compression: "gzip",
		Limits:      nbt.Unlimited,
		Backup:      true,
		Pretty:      nbt.DefaultPrettyOptions,
	}
}

// DecodeConfig decodes a configuration from
// src on top of DefaultConfig. The format is
// chosen by the extension of name: .yaml and
// .yml are YAML, everything else is JSON.
// Both formats use the same field names.
func DecodeConfig(name string, src io.Reader) (*Config, error) {
	c := DefaultConfig()
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		buf, err := io.ReadAll(src)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(buf, c); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	default:
		if err := json.NewDecoder(src).Decode(c); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// OpenConfig calls DecodeConfig on
// the file at path.
func OpenConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeConfig(path, f)
}

// Validate checks that c names a known codec
// and has usable limits.
func (c *Config) Validate() error {
	if _, err := compr.Lookup(c.Compression); err != nil {
		return err
	}
	if c.Limits.MaxDepth < 0 {
		return fmt.Errorf("negative max_depth %d", c.Limits.MaxDepth)
	}
	return nil
}

// Codec returns the codec named by c.Compression.
func (c *Config) Codec() (compr.Codec, error) {
	return compr.Lookup(c.Compression)
}

// Options returns the Store options
// equivalent to c.
func (c *Config) Options() ([]Option, error) {
	codec, err := c.Codec()
	if err != nil {
		return nil, err
	}
	return []Option{
		WithCompression(codec),
		WithLimits(c.Limits),
		WithBackup(c.Backup),
	}, nil
}
