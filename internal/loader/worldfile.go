// internal/loader/worldfile.go - World file sidecars and projection labels
package loader

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/valpere/geolayers/pkg/affine"
)

var worldFileExts = []string{".tfw", ".tifw", ".wld", ".pgw", ".jgw", ".gfw", ".bpw"}

// findSidecar returns the first existing file that shares path's base name
// and has one of exts, trying lower then upper case.
func findSidecar(fs afero.Fs, path string, exts ...string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	for _, ext := range exts {
		for _, candidate := range []string{base + ext, base + strings.ToUpper(ext)} {
			if ok, _ := afero.Exists(fs, candidate); ok {
				return candidate
			}
		}
	}
	return ""
}

// parseWorldFile reads the six lines of a world file: A, D, B, E, C, F with
// (C, F) the centre of the upper-left pixel. The result is shifted half a
// pixel so its origin is the upper-left corner.
func parseWorldFile(fs afero.Fs, path string) (affine.Transform, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return affine.Transform{}, fmt.Errorf("reading world file %s: %w", path, err)
	}

	lines := strings.Fields(string(data))
	if len(lines) < 6 {
		return affine.Transform{}, fmt.Errorf("world file %s: expected 6 values, got %d", path, len(lines))
	}

	var v [6]float64
	for i := range v {
		v[i], err = strconv.ParseFloat(lines[i], 64)
		if err != nil {
			return affine.Transform{}, fmt.Errorf("world file %s line %d: %w", path, i+1, err)
		}
	}

	a, d, b, e, c, f := v[0], v[1], v[2], v[3], v[4], v[5]
	return affine.New(
		c-0.5*a-0.5*b, a, b,
		f-0.5*d-0.5*e, d, e,
	), nil
}

// readProjection returns the trimmed contents of a .prj sidecar, or "".
func readProjection(fs afero.Fs, path string) string {
	prj := findSidecar(fs, path, ".prj")
	if prj == "" {
		return ""
	}
	data, err := afero.ReadFile(fs, prj)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
