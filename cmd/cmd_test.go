// cmd/cmd_test.go - Unit tests for CLI commands
package cmd

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/geolayers/internal/extent"
	"github.com/valpere/geolayers/internal/registry"
	"github.com/valpere/geolayers/pkg/bounds"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		want    orb.Point
		wantErr bool
	}{
		{"1,2", orb.Point{1, 2}, false},
		{" -73.5 , 40.25 ", orb.Point{-73.5, 40.25}, false},
		{"1e3,0", orb.Point{1000, 0}, false},
		{"1", orb.Point{}, true},
		{"1,2,3", orb.Point{}, true},
		{"a,2", orb.Point{}, true},
		{"NaN,2", orb.Point{}, true},
		{"1,+Inf", orb.Point{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePoint(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePoint() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatProps(t *testing.T) {
	got := formatProps(map[string]any{"width": 4, "format": "png", "has_geotransform": true})
	assert.Equal(t, "format=png has_geotransform=true width=4", got)
	assert.Equal(t, "", formatProps(nil))
}

func TestRenderTable(t *testing.T) {
	reg := registry.New(nil)
	_, err := reg.Add(registry.Layer{Name: "roads", Kind: registry.Vector, Visible: true, Props: map[string]any{"geometry_type": "LineString"}})
	require.NoError(t, err)

	out := renderTable(reg.Snapshot(), extent.Extent{Box: bounds.New(0, 0, 1, 1), Space: extent.SpaceScene})
	assert.Contains(t, out, "Vector Layers")
	assert.Contains(t, out, "roads")
	assert.Contains(t, out, "geometry_type=LineString")
	assert.Contains(t, out, "extent (scene): [0, 0, 1, 1]")
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()

	wkt := filepath.Join(dir, "pt.wkt")
	require.NoError(t, os.WriteFile(wkt, []byte("POINT (1 2)\n"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 2))))
	raster := filepath.Join(dir, "ortho.png")
	require.NoError(t, os.WriteFile(raster, buf.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ortho.pgw"), []byte("10\n0\n0\n-10\n105\n195\n"), 0o644))

	out := execute(t, "extent", wkt, "--pretty=false", "--log-level", "error")
	assert.JSONEq(t, `{"space":"scene","empty":false,"bounds":[100,-200,100,-200],"layers":["pt"]}`, out)

	out = execute(t, "locate", raster, "--geo", "120,190", "--pretty=false", "--log-level", "error")
	assert.JSONEq(t, `{"from":"geographic","input":[120,190],"result":[2,1],"match":"primary"}`, out)

	out = execute(t, "decompose", wkt, "--pretty=false", "--log-level", "error")
	assert.Contains(t, out, `"layer":"pt"`)
	assert.Contains(t, out, `"points":[[100,-200]]`)
}
