package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"up", "down", "steps", "goto", "version", "force", "drop", "create", "list"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	t.Run("step alias", func(t *testing.T) {
		sub, _, err := cmd.Find([]string{"step"})
		require.NoError(t, err)
		assert.Equal(t, "steps", sub.Name())
	})
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	t.Run("embedded set", func(t *testing.T) {
		out, err := run(t, "list")
		require.NoError(t, err)
		assert.Contains(t, out, "000001  init_schema")
	})

	t.Run("directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "000002_add_coupons.up.sql"), []byte("SELECT 1;"), 0o644))

		out, err := run(t, "list", "--path", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "000002  add_coupons (no down)")
	})

	t.Run("empty directory", func(t *testing.T) {
		out, err := run(t, "list", "--path", t.TempDir())
		require.NoError(t, err)
		assert.Contains(t, out, "No migrations found")
	})
}

func TestCreateCommand(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "create", "Add Coupons", "coupon codes", "--path", dir)
	require.NoError(t, err)

	out, err := run(t, "list", "--path", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "000001  add_coupons")
}

func TestArgumentValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"steps needs a number", []string{"steps", "abc"}, `invalid step count "abc"`},
		{"steps rejects zero", []string{"steps", "0"}, "step count cannot be zero"},
		{"goto needs a version", []string{"goto", "x"}, `invalid version "x"`},
		{"force needs a version", []string{"force", "x"}, `invalid version "x"`},
		{"drop needs confirmation", []string{"drop"}, "pass --confirm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
