package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRecord struct {
	dir     string
	readErr error
	cleared int
}

func (m *memRecord) UpdateTempDir(context.Context) (string, error) { return m.dir, m.readErr }

func (m *memRecord) ClearUpdateTempDir(context.Context) error {
	m.cleared++
	m.dir = ""
	return nil
}

func TestCreateUniqueTempDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested")

	a, err := CreateUniqueTempDir(root)
	require.NoError(t, err)
	b, err := CreateUniqueTempDir(root)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(filepath.Base(a), TempDirPrefix))
	assert.DirExists(t, a)
	assert.DirExists(t, b)
}

func TestCleanLeftovers_RemovesAndForgets(t *testing.T) {
	dir, err := CreateUniqueTempDir(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "setup.exe"), []byte("x"), 0o600))

	rec := &memRecord{dir: dir}
	require.NoError(t, CleanLeftovers(context.Background(), rec))

	assert.NoDirExists(t, dir)
	assert.Empty(t, rec.dir)
	assert.Equal(t, 1, rec.cleared)

	// second run has nothing to do
	require.NoError(t, CleanLeftovers(context.Background(), rec))
	assert.Equal(t, 1, rec.cleared)
}

func TestCleanLeftovers_MissingDirectory(t *testing.T) {
	rec := &memRecord{dir: filepath.Join(t.TempDir(), TempDirPrefix+"gone")}
	require.NoError(t, CleanLeftovers(context.Background(), rec))
	assert.Empty(t, rec.dir)
}

func TestCleanLeftovers_ForeignPathIsNotDeleted(t *testing.T) {
	foreign := t.TempDir()
	rec := &memRecord{dir: foreign}

	require.NoError(t, CleanLeftovers(context.Background(), rec))
	assert.DirExists(t, foreign)
	assert.Empty(t, rec.dir)
}

func TestCleanLeftovers_ReadError(t *testing.T) {
	rec := &memRecord{readErr: errors.New("store offline")}
	assert.Error(t, CleanLeftovers(context.Background(), rec))
}
