package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tender-barbarian/go-symlens/internal/finder"
	"github.com/tender-barbarian/go-symlens/internal/loader"
)

const fixtureSymbols = "../../tests/testdata/symbols/app.toml"

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--symbols", fixtureSymbols}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{"search first", []string{"search", "g_*"}, []string{"g_shape", "struct shape 0x00008000"}},
		{"search all", []string{"search", "g_*", "--all"}, []string{"g_shape", "g_count", "g_local", "g_total"}},
		{"addr all", []string{"addr", "0x8020", "--all"}, []string{"g_count", "g_total"}},
		{"addr function", []string{"addr", "0x401084"}, []string{"area", "int app!area(struct shape s); 0x401080"}},
		{"line", []string{"line", "0x401010"}, []string{"main.c:11\n"}},
		{"describe", []string{"describe", "point"}, []string{"+0x004  y", "Type Size: 8 Bytes."}},
		{"describe depth zero", []string{"describe", "point", "--depth", "0"}, []string{"struct point\n"}},
		{"decode", []string{"decode", "point", "0100000002000000"}, []string{": 1\n", ": 2\n", "(8 bytes)"}},
		{"field", []string{"field", "shape", "name"}, []string{"shape.name: bit offset 96, bit size 32"}},
		{"proto", []string{"proto", "main"}, []string{"int app!main(int argc, char* argv); 0x401000\n"}},
		{"sources", []string{"sources"}, []string{"main.c", "util.c"}},
		{"export yaml", []string{"export", "--format", "yaml"}, []string{"module: app", "path: util.c"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(tc.args...)
			require.NoError(t, err)
			for _, want := range tc.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectedErr error
		errorHas    string
	}{
		{name: "no match", args: []string{"search", "nothing*"}, expectedErr: finder.ErrNotFound},
		{name: "no line", args: []string{"line", "0x10"}, expectedErr: finder.ErrNotFound},
		{name: "unknown function", args: []string{"proto", "nope"}, expectedErr: finder.ErrNotFound},
		{name: "bad address", args: []string{"addr", "main"}, errorHas: "invalid address"},
		{name: "bad hex", args: []string{"decode", "point", "zz"}, errorHas: "invalid hex"},
		{name: "bad format", args: []string{"export", "--format", "json"}, expectedErr: loader.ErrUnknownFormat},
		{name: "missing argument", args: []string{"describe"}, errorHas: "accepts 1 arg"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(tc.args...)
			require.Error(t, err)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			}
			if tc.errorHas != "" {
				assert.ErrorContains(t, err, tc.errorHas)
			}
		})
	}
}

func TestRequiresOneSource(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"sources"})
	assert.ErrorContains(t, cmd.Execute(), "exactly one of")
}
