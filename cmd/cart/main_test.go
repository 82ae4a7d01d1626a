package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/nikolayk812/gomarket-cart/internal/repository"
	"github.com/nikolayk812/gomarket-cart/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI(t *testing.T) {
	t.Setenv("CART_STORAGE_DRIVER", "")
	t.Setenv("CART_STORAGE_DSN", "")

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cart.db")
	base := []string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--driver", "sqlite",
		"--dsn", dbPath,
	}

	run := func(args ...string) string {
		t.Helper()

		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(append(append([]string{}, args...), base...))

		require.NoError(t, cmd.ExecuteContext(t.Context()), out.String())
		return out.String()
	}

	assert.Contains(t, run("list"), "cart is empty")

	out := run("add", "--id", "a", "--title", "Widget", "--image-url", "u", "--price", "9.99")
	assert.Contains(t, out, "Widget")
	assert.Contains(t, out, "9.99")

	assert.Equal(t, 1, persistedQuantity(t, dbPath, "a"))

	// state survives between processes
	run("inc", "a")
	assert.Equal(t, 2, persistedQuantity(t, dbPath, "a"))

	out = run("list")
	assert.Contains(t, out, "Widget")

	run("dec", "a")
	assert.Equal(t, 1, persistedQuantity(t, dbPath, "a"))
	assert.Contains(t, run("dec", "a"), "cart is empty")
	assert.Contains(t, run("list"), "cart is empty")
}

func persistedQuantity(t *testing.T, dbPath, id string) int {
	t.Helper()

	kv, err := storage.NewSQLite(t.Context(), dbPath)
	require.NoError(t, err)
	defer func() { require.NoError(t, kv.Close()) }()

	cart, found, err := repository.NewCart(kv).GetCart(t.Context())
	require.NoError(t, err)
	require.True(t, found)

	item, ok := cart.Find(id)
	require.True(t, ok, "item[%s] not persisted", id)
	return item.Quantity
}

func TestCLI_Errors(t *testing.T) {
	t.Setenv("CART_STORAGE_DRIVER", "")
	t.Setenv("CART_STORAGE_DSN", "")

	dir := t.TempDir()

	tests := []struct {
		name      string
		args      []string
		wantError string
	}{
		{
			name:      "add without id: error",
			args:      []string{"add", "--driver", "memory"},
			wantError: `required flag(s) "id" not set`,
		},
		{
			name:      "add with bad price: error",
			args:      []string{"add", "--id", "a", "--price", "cheap", "--driver", "memory"},
			wantError: "price[cheap] is not valid",
		},
		{
			name:      "unknown driver: error",
			args:      []string{"list", "--driver", "mongo"},
			wantError: "storage driver[mongo] is not supported",
		},
		{
			name:      "inc without id: error",
			args:      []string{"inc", "--driver", "memory"},
			wantError: "accepts 1 arg(s), received 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := newRootCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(append(tt.args, "--config", filepath.Join(dir, "missing.yaml")))

			err := cmd.ExecuteContext(t.Context())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}
