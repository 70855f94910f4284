package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pozinox/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add users table", "add_users_table"},
		{"Add-Users-Table", "add_users_table"},
		{"add__users__table", "add_users_table"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	t.Run("first migration is 000001", func(t *testing.T) {
		mf, err := CreateMigration(dir, "add product images", "Store image keys")
		require.NoError(t, err)
		assert.Equal(t, uint(1), mf.Version)
		assert.Equal(t, "000001_add_product_images.up.sql", filepath.Base(mf.UpPath))
		assert.Equal(t, "000001_add_product_images.down.sql", filepath.Base(mf.DownPath))

		content, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "Store image keys")
	})

	t.Run("next migration follows the highest version", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "000007_manual.up.sql"), nil, 0o644))

		mf, err := CreateMigration(dir, "orders", "")
		require.NoError(t, err)
		assert.Equal(t, uint(8), mf.Version)
	})

	t.Run("rejects empty names", func(t *testing.T) {
		_, err := CreateMigration(dir, "!!!", "")
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		list, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("sorted by version", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"000010_b.up.sql", "000002_a.up.sql", "000002_a.down.sql", "notes.txt"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
		}
		list, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []Listed{{Version: 2, Name: "a"}, {Version: 10, Name: "b"}}, list)
	})
}

func TestEmbeddedMigrations(t *testing.T) {
	src, err := NewSource(migrations.FS)
	require.NoError(t, err)
	defer src.Close()

	version, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	count := 0
	for {
		up, _, err := src.ReadUp(version)
		require.NoError(t, err)
		up.Close()
		down, _, err := src.ReadDown(version)
		require.NoError(t, err, "version %d has no down migration", version)
		down.Close()
		count++

		version, err = src.Next(version)
		if err != nil {
			break
		}
	}
	assert.Equal(t, 3, count)

	entries, err := migrations.FS.ReadDir(".")
	require.NoError(t, err)
	for _, e := range entries {
		assert.True(t, strings.HasSuffix(e.Name(), ".sql"))
	}
}
