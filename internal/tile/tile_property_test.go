// Package tile provides property-based tests for the tile grid geometry.
package tile

import (
	"testing"

	"pgregory.net/rapid"
)

func drawGrid(t *rapid.T, mirrorY bool) *Grid {
	tilesX := rapid.IntRange(1, 8).Draw(t, "tilesX")
	tilesY := rapid.IntRange(1, 8).Draw(t, "tilesY")
	width := rapid.IntRange(tilesX, 128).Draw(t, "width")
	height := rapid.IntRange(tilesY, 128).Draw(t, "height")

	g, err := NewGrid(tilesX, tilesY, width, height, mirrorY)
	if err != nil {
		t.Fatalf("grid rejected valid parameters: %v", err)
	}
	return g
}

// TestTileCoverageProperty checks that tiles exactly cover the truncated
// grid area with no overlap, and that remainder pixels beyond the grid are
// covered by no tile.
func TestTileCoverageProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := drawGrid(t, false)
		specs := g.Tiles("beauty.1001.exr", "p/beauty")

		covered := make(map[[2]int]int)
		for _, s := range specs {
			if s.Region.Top > s.Region.Bottom || s.Region.Left > s.Region.Right {
				t.Fatalf("degenerate region %+v", s.Region)
			}
			for y := s.Region.Top; y <= s.Region.Bottom; y++ {
				for x := s.Region.Left; x <= s.Region.Right; x++ {
					covered[[2]int{x, y}]++
				}
			}
		}

		for pixel, count := range covered {
			if count != 1 {
				t.Fatalf("pixel %v covered %d times", pixel, count)
			}
			if pixel[0] >= g.Width || pixel[1] >= g.Height || pixel[0] < 0 || pixel[1] < 0 {
				t.Fatalf("pixel %v outside the image", pixel)
			}
		}

		wantArea := g.TilesX * g.TilesY * g.TileWidth() * g.TileHeight()
		if len(covered) != wantArea {
			t.Fatalf("covered area %d, want %d", len(covered), wantArea)
		}

		// Remainder columns (right edge) and rows (top edge) stay
		// uncovered, never silently included.
		for _, s := range specs {
			if s.Region.Right >= g.TilesX*g.TileWidth() {
				t.Fatalf("tile %d reaches into remainder columns", s.Index)
			}
			if s.Region.Top < g.Height-g.TilesY*g.TileHeight() {
				t.Fatalf("tile %d reaches into remainder rows", s.Index)
			}
		}
	})
}

// TestTileIndexBijectionProperty checks that row-major indexing is a
// bijection onto [0, tilesX*tilesY).
func TestTileIndexBijectionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := drawGrid(t, rapid.Bool().Draw(t, "mirrorY"))
		specs := g.Tiles("beauty.1001.exr", "p/beauty")

		if len(specs) != g.Count() {
			t.Fatalf("got %d specs, want %d", len(specs), g.Count())
		}
		seen := make(map[int]bool)
		for i, s := range specs {
			if s.Index != i {
				t.Fatalf("spec %d carries index %d", i, s.Index)
			}
			if s.Index < 0 || s.Index >= g.Count() {
				t.Fatalf("index %d out of range", s.Index)
			}
			if seen[s.Index] {
				t.Fatalf("index %d assigned twice", s.Index)
			}
			seen[s.Index] = true
		}
	})
}

// TestMirrorSymmetryProperty checks that mirroring reassigns pixel rows to
// the reversed grid row: the rows emitted as row 1 under mirroring equal
// the rows emitted as row tilesY without it.
func TestMirrorSymmetryProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tilesX := rapid.IntRange(1, 6).Draw(t, "tilesX")
		tilesY := rapid.IntRange(1, 6).Draw(t, "tilesY")
		width := rapid.IntRange(tilesX, 256).Draw(t, "width")
		height := rapid.IntRange(tilesY, 256).Draw(t, "height")

		mirrored, err := NewGrid(tilesX, tilesY, width, height, true)
		if err != nil {
			t.Fatalf("NewGrid: %v", err)
		}
		plain, err := NewGrid(tilesX, tilesY, width, height, false)
		if err != nil {
			t.Fatalf("NewGrid: %v", err)
		}

		rowsByTileY := func(specs []Spec, tileY int) map[int]bool {
			rows := make(map[int]bool)
			for _, s := range specs {
				if s.TileY != tileY {
					continue
				}
				for y := s.Region.Top; y <= s.Region.Bottom; y++ {
					rows[y] = true
				}
			}
			return rows
		}

		mirroredRow1 := rowsByTileY(mirrored.Tiles("f.1.exr", "p/f"), 1)
		plainRowN := rowsByTileY(plain.Tiles("f.1.exr", "p/f"), tilesY)

		if len(mirroredRow1) != len(plainRowN) {
			t.Fatalf("row sets differ in size: %d vs %d", len(mirroredRow1), len(plainRowN))
		}
		for y := range mirroredRow1 {
			if !plainRowN[y] {
				t.Fatalf("row %d only present under mirroring", y)
			}
		}
	})
}

// TestManifestEntriesProperty checks that manifest x/y pairs are unique
// and within the image for any grid.
func TestManifestEntriesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := drawGrid(t, false)
		entries := g.ManifestEntries(g.Tiles("beauty.1001.exr", "p/beauty"))

		seen := make(map[[2]int]bool)
		for _, e := range entries {
			at := [2]int{e.X, e.Y}
			if seen[at] {
				t.Fatalf("duplicate manifest origin %v", at)
			}
			seen[at] = true
			if e.X < 0 || e.Y < 0 || e.X+e.Width > g.Width || e.Y+e.Height > g.Height {
				t.Fatalf("entry %+v outside %dx%d", e, g.Width, g.Height)
			}
		}
	})
}
