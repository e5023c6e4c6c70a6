package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ecomstore/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T) configLoader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.db")
	return func() (*config.Config, error) {
		return &config.Config{Database: config.DatabaseConfig{
			Driver:       "sqlite",
			SQLitePath:   path,
			MaxOpenConns: 1,
			MaxIdleConns: 1,
			AutoMigrate:  true,
		}}, nil
	}
}

func execute(t *testing.T, load configLoader, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(load)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommand_Flags(t *testing.T) {
	run, _, err := newRootCommand(nil).Find([]string{"run"})
	require.NoError(t, err)

	for name, def := range map[string]string{
		"reset":     "true",
		"fake":      "0",
		"fake-seed": "0",
		"fixtures":  "",
	} {
		flag := run.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, def, flag.DefValue, name)
	}
}

func TestRunCommand(t *testing.T) {
	load := sqliteConfig(t)

	out, err := execute(t, load, "run", "--fake", "2", "--fake-seed", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 3 users (0 skipped) and 10 products (2 generated)")
	assert.Contains(t, out, "admin@ecomstore.com / admin123")
	assert.Contains(t, out, "john@example.com / password123")

	t.Run("without reset", func(t *testing.T) {
		out, err := execute(t, load, "run", "--reset=false")
		require.NoError(t, err)
		assert.Contains(t, out, "Seeded 0 users (3 skipped) and 8 products (0 generated)")
	})

	t.Run("custom fixtures", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fixtures.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
users:
  - name: Ops
    email: ops@example.com
    password: secret123
    role: admin
products: []
`), 0o644))

		out, err := execute(t, load, "run", "--fixtures", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Seeded 1 users (0 skipped) and 0 products (0 generated)")
		assert.Contains(t, out, "admin  ops@example.com / secret123")
	})

	t.Run("unknown fixture keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("customers: []\n"), 0o644))

		_, err := execute(t, load, "run", "--fixtures", path)
		assert.Error(t, err)
	})

	t.Run("negative fake count", func(t *testing.T) {
		_, err := execute(t, load, "run", "--fake", "-1")
		assert.Error(t, err)
	})
}
