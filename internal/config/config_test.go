package config

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tender-barbarian/go-symlens/internal/symtab"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestForMachine(t *testing.T) {
	tests := []struct {
		machine             symtab.MachineType
		expectedPointerSize uint64
	}{
		{symtab.MachineX86, 4},
		{symtab.MachineARM32, 4},
		{symtab.MachineX64, 8},
		{symtab.MachineARM64, 8},
		{symtab.MachineUnknown, 4},
	}

	for _, tc := range tests {
		t.Run(string(tc.machine), func(t *testing.T) {
			c := ForMachine(tc.machine)
			assert.Equal(t, tc.expectedPointerSize, c.PointerSize)
			assert.Equal(t, uint64(4), c.EnumSize)
			require.NoError(t, c.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		expected Config
	}{
		{
			name:    "toml overrides",
			file:    "c.toml",
			content: "pointer_size = 8\nbyte_order = \"big\"\n",
			expected: Config{
				PointerSize: 8, EnumSize: 4, ByteOrder: BigEndian, DescribeDepth: 1, DecodeDepth: 2,
			},
		},
		{
			name:    "yaml overrides",
			file:    "c.yml",
			content: "enum_size: 2\ndecode_depth: 5\n",
			expected: Config{
				PointerSize: 4, EnumSize: 2, ByteOrder: LittleEndian, DescribeDepth: 1, DecodeDepth: 5,
			},
		},
		{name: "empty yaml keeps base", file: "c.yaml", content: "", expected: Default()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Load(writeFile(t, tc.file, tc.content), Default())
			require.NoError(t, err)
			assert.Equal(t, tc.expected, c)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		errHas  string
	}{
		{"unknown toml key", "c.toml", "pointer = 8\n", "parsing config"},
		{"unknown yaml key", "c.yaml", "pointer: 8\n", "parsing config"},
		{"bad pointer size", "c.toml", "pointer_size = 3\n", "pointer_size 3"},
		{"bad byte order", "c.yaml", "byte_order: middle\n", "byte_order"},
		{"negative depth", "c.yaml", "decode_depth: -1\n", "negative depth"},
		{"unsupported extension", "c.json", "{}", "unsupported extension"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.file, tc.content), Default())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errHas)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), Default())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateWrapsErrInvalid(t *testing.T) {
	c := Default()
	c.EnumSize = 0
	assert.ErrorIs(t, c.Validate(), ErrInvalid)
}

func TestOrder(t *testing.T) {
	c := Default()
	assert.Equal(t, binary.LittleEndian, c.Order())
	c.ByteOrder = BigEndian
	assert.Equal(t, binary.BigEndian, c.Order())
}
