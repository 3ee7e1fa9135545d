// internal/loader/worldfile_test.go - Unit tests for world file sidecars
package loader

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/geolayers/pkg/affine"
)

func TestParseWorldFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/ortho.tfw", []byte("10\n0\n0\n-10\n105\n195\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/short.tfw", []byte("10\n0\n0\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/bad.tfw", []byte("10\n0\nzero\n-10\n105\n195\n"), 0o644))

	tr, err := parseWorldFile(fs, "/ortho.tfw")
	require.NoError(t, err)
	assert.Equal(t, affine.New(100, 10, 0, 200, 0, -10), tr)

	_, err = parseWorldFile(fs, "/short.tfw")
	assert.Error(t, err)

	_, err = parseWorldFile(fs, "/bad.tfw")
	assert.Error(t, err)

	_, err = parseWorldFile(fs, "/missing.tfw")
	assert.Error(t, err)
}

func TestFindSidecar(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/a.png", nil, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/data/a.PGW", nil, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/data/b.tif", nil, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/data/b.wld", nil, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/data/b.tfw", nil, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/data/b.prj", []byte("  EPSG:4326\n"), 0o644))

	assert.Equal(t, "/data/a.PGW", findSidecar(fs, "/data/a.png", worldFileExts...))
	assert.Equal(t, "/data/b.tfw", findSidecar(fs, "/data/b.tif", worldFileExts...))
	assert.Equal(t, "", findSidecar(fs, "/data/c.png", worldFileExts...))

	assert.Equal(t, "EPSG:4326", readProjection(fs, "/data/b.tif"))
	assert.Equal(t, "", readProjection(fs, "/data/a.png"))
}
