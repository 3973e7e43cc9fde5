package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		input       string
		expected    uint64
		expectedErr bool
	}{
		{"0x401000", 0x401000, false},
		{"4096", 4096, false},
		{" 0X10 ", 16, false},
		{"zz", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			addr, err := ParseAddress(tt.input)
			if tt.expectedErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, addr)
		})
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    []byte
		expectedErr bool
	}{
		{"plain", "0102ff", []byte{1, 2, 0xff}, false},
		{"prefixed", "0x0a0b", []byte{0x0a, 0x0b}, false},
		{"spaced", "01 02  03", []byte{1, 2, 3}, false},
		{"empty", "", []byte{}, false},
		{"odd length", "012", nil, true},
		{"not hex", "zz", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := ParseHex(tt.input)
			if tt.expectedErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, buf)
		})
	}
}
