package tile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestEntriesBottomLeftOrigin(t *testing.T) {
	g, err := NewGrid(2, 2, 4, 4, false)
	require.NoError(t, err)

	entries := g.ManifestEntries(g.Tiles("beauty.1001.exr", "p/beauty"))

	require.Len(t, entries, 4)
	origins := make(map[[2]int]bool)
	for _, e := range entries {
		assert.Equal(t, 2, e.Width)
		assert.Equal(t, 2, e.Height)
		origins[[2]int{e.X, e.Y}] = true
	}
	assert.Equal(t, map[[2]int]bool{
		{0, 0}: true,
		{2, 0}: true,
		{0, 2}: true,
		{2, 2}: true,
	}, origins)
}

func TestWriteManifest(t *testing.T) {
	g, err := NewGrid(2, 2, 4, 4, false)
	require.NoError(t, err)

	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "beauty.1001_config.txt")
	entries := g.ManifestEntries(g.Tiles("beauty.1001.exr", "p/beauty"))

	require.NoError(t, g.WriteManifest(manifestPath, "beauty.1001.exr", entries))

	raw, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")

	assert.Equal(t, "TileCount=4", lines[0])
	assert.Equal(t, "ImageFileName=beauty.1001.exr", lines[1])
	assert.Equal(t, "ImageWidth=4", lines[2])
	assert.Equal(t, "ImageHeight=4", lines[3])
	assert.Equal(t, "TilesCropped=False", lines[4])

	content := string(raw)
	for i := 0; i < 4; i++ {
		assert.Contains(t, content, "Tile"+itoa(i)+"FileName=")
		assert.Contains(t, content, "Tile"+itoa(i)+"Width=2")
		assert.Contains(t, content, "Tile"+itoa(i)+"Height=2")
	}
}

func itoa(i int) string {
	return string(rune('0' + i))
}

func TestManifestPath(t *testing.T) {
	stamp := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	got := ManifestPath("render/out", "render/out/beauty.1001.exr", stamp)
	assert.Equal(t, "render/out/beauty.1001_config_2025_03_14_15_09_26.txt", got)
}
