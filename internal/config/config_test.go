package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoadFromConfigPathEnv(t *testing.T) {
	yaml := `env: "dev"

storage:
  driver: "jsonfile"
  path: "storage/students.json"

http_server:
  address: "localhost:8082"
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("CONFIG_PATH", path)

	cfg := MustLoad()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, DriverJSONFile, cfg.Storage.Driver)
	assert.Equal(t, "storage/students.json", cfg.Storage.Path)
	assert.Equal(t, "localhost:8082", cfg.HTTPServer.Addr)
}

func TestMustLoadDefaultsDriver(t *testing.T) {
	// storage.driver omitted — cleanenv fills in the jsonfile default.
	yaml := `env: "prod"

storage:
  path: "/var/lib/student-portal/students.json"

http_server:
  address: ":8080"
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("CONFIG_PATH", path)

	cfg := MustLoad()

	assert.Equal(t, DriverJSONFile, cfg.Storage.Driver)
}

func TestMustLoadEnvOverride(t *testing.T) {
	yaml := `env: "dev"

storage:
  driver: "jsonfile"
  path: "storage/students.json"

http_server:
  address: "localhost:8082"
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("STORAGE_DRIVER", DriverSQLite)
	t.Setenv("STORAGE_PATH", "/tmp/students.db")

	cfg := MustLoad()

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/students.db", cfg.Storage.Path)
}
