package materialize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesWithMode(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "influxdb", "meta")

	require.NoError(t, EnsureDir(path, 0o755, ""))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestEnsureDir_Idempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "data")

	require.NoError(t, EnsureDir(path, 0o750, ""))
	require.NoError(t, EnsureDir(path, 0o750, ""))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
}

func TestEnsureDir_RepairsMode(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "loose")
	require.NoError(t, os.MkdirAll(path, 0o777))

	require.NoError(t, EnsureDir(path, 0o755, ""))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestWriteFile_WritesAndVerifies(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "stack.env")
	content := []byte("INFLUXDB_ADMIN_USER=admin\nINFLUXDB_ADMIN_PASSWORD=s3cretpassw0rd\n")

	err := WriteFile(path, content, 0o600, "", "INFLUXDB_ADMIN_USER", "INFLUXDB_ADMIN_PASSWORD")
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteFile_Idempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "compose.yaml")
	content := []byte("services:\n  influxdb:\n    image: influxdb:1.8\n")

	require.NoError(t, WriteFile(path, content, 0o644, ""))
	first, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, WriteFile(path, content, 0o644, ""))
	second, err := os.Stat(path)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, first.Mode(), second.Mode())
	assert.Equal(t, first.Size(), second.Size())
}

func TestWriteFile_OverwritesStaleContent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "telegraf.conf")
	require.NoError(t, os.WriteFile(path, []byte("interval = \"60s\" # manual edit\n"), 0o644))

	fresh := []byte("[agent]\n  interval = \"10s\"\n")
	require.NoError(t, WriteFile(path, fresh, 0o644, ""))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
}

func TestWriteFile_MissingTokenFails(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "compose.yaml")

	err := WriteFile(path, []byte("services: {}\n"), 0o644, "", "INFLUXDB_ADMIN_PASSWORD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing expected token")
	assert.Contains(t, err.Error(), "INFLUXDB_ADMIN_PASSWORD")
}

func TestWriteFile_EmptyContentFails(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "empty.conf")

	err := WriteFile(path, nil, 0o644, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestWriteYAML_RejectsInvalidYAML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "broken.yaml")

	err := WriteYAML(path, []byte("services:\n\tinfluxdb: {}\n"), 0o644, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid YAML")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "invalid YAML must never reach disk")
}

func TestWriteYAML_AcceptsValidYAML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "datasource.yaml")

	err := WriteYAML(path, []byte("apiVersion: 1\ndatasources: []\n"), 0o644, "", "datasources")
	require.NoError(t, err)
}

func TestResolveOwner_NumericID(t *testing.T) {
	t.Parallel()
	uid, gid, err := resolveOwner("472")
	require.NoError(t, err)
	assert.Equal(t, 472, uid)
	assert.Equal(t, 472, gid)
}

func TestResolveOwner_UnknownUser(t *testing.T) {
	t.Parallel()
	_, _, err := resolveOwner("no-such-user-here")
	require.Error(t, err)
}
