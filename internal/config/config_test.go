package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Load_Defaults(t *testing.T) {
	require := require.New(t)
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(err)
	require.Equal(":8080", cfg.Server.Address)
	require.Equal("sqlite", cfg.Storage.Driver)
	require.Equal("./gameshelf.db", cfg.Storage.Path)
	require.Equal(10*time.Second, cfg.Catalog.Timeout)
	require.Equal("gameshelf", cfg.Storage.StorageOptions().RedisNamespace)
}

func Test_Load_FileAndEnv(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "gameshelf.yaml")
	require.NoError(os.WriteFile(path, []byte(`
server:
  address: ":9090"
  allowedOrigins: ["https://shelf.example"]
storage:
  driver: gorm
  path: /tmp/shelf.db
catalog:
  timeout: 3s
`), 0o644))
	t.Setenv("GAMESHELF_STORAGE_DRIVER", "memory")
	t.Setenv("GAMESHELF_CATALOG_APIKEY", "k")

	cfg, err := Load(path)
	require.NoError(err)
	require.Equal(":9090", cfg.Server.Address)
	require.Equal([]string{"https://shelf.example"}, cfg.Server.AllowedOrigins)
	require.Equal("memory", cfg.Storage.Driver)
	require.Equal("/tmp/shelf.db", cfg.Storage.Path)
	require.Equal(3*time.Second, cfg.Catalog.Timeout)
	require.Equal("k", cfg.Catalog.APIKey)
}

func Test_Load_DotEnv(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(os.WriteFile(filepath.Join(dir, ".env"), []byte("GAMESHELF_SERVER_ADDRESS=:7070\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("GAMESHELF_SERVER_ADDRESS") })

	cfg, err := Load("")
	require.NoError(err)
	require.Equal(":7070", cfg.Server.Address)
}

func Test_Load_MissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load("does-not-exist.yaml")
	require.Error(t, err)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir on Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
