package session

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ParseAddress accepts decimal, 0x-prefixed hex or 0-prefixed octal.
func ParseAddress(s string) (uint64, error) {
	addr, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return addr, nil
}

// ParseHex decodes a buffer given as hex digits, optionally 0x-prefixed and
// separated by spaces.
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.Join(strings.Fields(s), "")
	buf, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex data: %w", err)
	}
	return buf, nil
}
