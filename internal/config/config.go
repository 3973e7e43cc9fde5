// Package config holds the engine settings shared by the server and the CLI.
package config

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tender-barbarian/go-symlens/internal/symtab"
	"gopkg.in/yaml.v3"
)

// Byte orders accepted by Config.ByteOrder.
const (
	LittleEndian = "little"
	BigEndian    = "big"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config controls sizes and traversal depths.
type Config struct {
	PointerSize   uint64 `toml:"pointer_size" yaml:"pointer_size"`
	EnumSize      uint64 `toml:"enum_size" yaml:"enum_size"`
	ByteOrder     string `toml:"byte_order" yaml:"byte_order"`
	DescribeDepth int    `toml:"describe_depth" yaml:"describe_depth"`
	DecodeDepth   int    `toml:"decode_depth" yaml:"decode_depth"`
}

// Default returns the settings of a 32-bit little endian target.
func Default() Config {
	return Config{
		PointerSize:   4,
		EnumSize:      4,
		ByteOrder:     LittleEndian,
		DescribeDepth: 1,
		DecodeDepth:   2,
	}
}

// ForMachine returns Default adjusted to m's pointer width.
func ForMachine(m symtab.MachineType) Config {
	c := Default()
	if n := m.PointerSize(); n > 0 {
		c.PointerSize = n
	}
	return c
}

// Load reads a TOML or YAML file over base. Keys absent from the file keep
// base's values.
func Load(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	c := base
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&c); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config %s: unsupported extension", path)
	}

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if !validWidth(c.PointerSize) {
		return fmt.Errorf("%w: pointer_size %d not in {1,2,4,8}", ErrInvalid, c.PointerSize)
	}
	if !validWidth(c.EnumSize) {
		return fmt.Errorf("%w: enum_size %d not in {1,2,4,8}", ErrInvalid, c.EnumSize)
	}
	if c.ByteOrder != LittleEndian && c.ByteOrder != BigEndian {
		return fmt.Errorf("%w: byte_order %q", ErrInvalid, c.ByteOrder)
	}
	if c.DescribeDepth < 0 || c.DecodeDepth < 0 {
		return fmt.Errorf("%w: negative depth", ErrInvalid)
	}
	return nil
}

// Order returns the binary.ByteOrder named by ByteOrder.
func (c Config) Order() binary.ByteOrder {
	if c.ByteOrder == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func validWidth(n uint64) bool {
	switch n {
	case 1, 2, 4, 8:
		return true
	}
	return false
}
