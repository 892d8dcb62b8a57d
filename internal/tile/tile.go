// Package tile decomposes a frame's pixel rectangle into an N×M grid of
// independently renderable tiles and builds the dependent assembly jobs
// that stitch the tiles back together.
//
// Two coordinate conventions meet here and stay explicitly separate: job
// region fields use a top-left origin, the assembler manifest a bottom-left
// origin. See Region and manifestY.
package tile

import (
	"crypto/sha256"
	"fmt"
	"path"
)

// Region is one tile's pixel rectangle in top-left-origin image
// coordinates. Bounds are inclusive.
type Region struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// Spec describes one tile of one frame.
type Spec struct {
	// Index is the 0-based tile index, assigned in row-major order
	// (outer loop over X, inner loop over Y). Downstream region fields
	// align with tile output filenames by this position.
	Index int

	// TileX and TileY are the 1-based grid coordinates as emitted to the
	// renderer. With mirrored Y the TileY here is the reversed index while
	// Region keeps the unmirrored pixel rows.
	TileX int
	TileY int

	Region   Region
	Filename string // per-tile output filename
	Prefix   string // per-tile renderer output prefix
}

// Grid is the tile partitioning of a frame.
//
// Tile dimensions use truncating integer division: any remainder pixels on
// the right/bottom edge are covered by no tile. That matches the farm-side
// assembler's expectations and is deliberately not "fixed" here.
type Grid struct {
	TilesX  int
	TilesY  int
	Width   int
	Height  int
	MirrorY bool
}

// NewGrid validates the grid parameters.
func NewGrid(tilesX, tilesY, width, height int, mirrorY bool) (*Grid, error) {
	if tilesX < 1 || tilesY < 1 {
		return nil, fmt.Errorf("tile grid must be at least 1x1, got %dx%d", tilesX, tilesY)
	}
	if width < tilesX || height < tilesY {
		return nil, fmt.Errorf("resolution %dx%d too small for %dx%d tiles",
			width, height, tilesX, tilesY)
	}
	return &Grid{
		TilesX:  tilesX,
		TilesY:  tilesY,
		Width:   width,
		Height:  height,
		MirrorY: mirrorY,
	}, nil
}

// TileWidth returns the width of every tile.
func (g *Grid) TileWidth() int { return g.Width / g.TilesX }

// TileHeight returns the height of every tile.
func (g *Grid) TileHeight() int { return g.Height / g.TilesY }

// Count returns the number of tiles per frame.
func (g *Grid) Count() int { return g.TilesX * g.TilesY }

// TilePrefix is the filename infix identifying one tile of a grid. It is
// reproducible from the grid coordinates alone; the assembly stage
// recomputes it independently.
func TilePrefix(tileX, tileY, tilesX, tilesY int) string {
	return fmt.Sprintf("_tile_%dx%d_%dx%d_", tileX, tileY, tilesX, tilesY)
}

// tileFilename inserts the tile infix immediately before the base
// filename, leaving the directory unchanged.
func tileFilename(filename, infix string) string {
	dir := path.Dir(filename)
	base := path.Base(filename)
	if dir == "." || dir == "/" {
		return infix + base
	}
	return dir + "/" + infix + base
}

// tilePrefixPath inserts the tile infix before the last component of a
// renderer output prefix. Prefixes without a directory part are returned
// unchanged, matching the assembler's expectations.
func tilePrefixPath(prefix, infix string) string {
	dir, base := path.Split(prefix)
	if dir == "" {
		return prefix
	}
	return dir + infix + base
}

// Tiles computes the tile specs for one frame file. Iteration runs the
// outer loop over tileX and the inner loop over tileY, incrementing Index
// once per pair; the order is load-bearing for region/filename alignment.
//
// With MirrorY the pixel rows of iteration row y are emitted under the
// reversed grid coordinate (tilesY-y+1), so the row a worker calls "1"
// maps to row N in the farm's own bookkeeping.
func (g *Grid) Tiles(filename, prefix string) []Spec {
	tileWidth := g.TileWidth()
	tileHeight := g.TileHeight()

	specs := make([]Spec, 0, g.Count())
	index := 0
	for tileX := 1; tileX <= g.TilesX; tileX++ {
		for tileY := 1; tileY <= g.TilesY; tileY++ {
			emitY := tileY
			if g.MirrorY {
				emitY = g.TilesY - tileY + 1
			}

			infix := TilePrefix(tileX, emitY, g.TilesX, g.TilesY)
			specs = append(specs, Spec{
				Index: index,
				TileX: tileX,
				TileY: emitY,
				Region: Region{
					Top:    g.Height - tileY*tileHeight,
					Bottom: g.Height - (tileY-1)*tileHeight - 1,
					Left:   (tileX - 1) * tileWidth,
					Right:  tileX*tileWidth - 1,
				},
				Filename: tileFilename(filename, infix),
				Prefix:   tilePrefixPath(prefix, infix),
			})
			index++
		}
	}
	return specs
}

// Decomposition carries the wire fields derived from one frame's tiles.
type Decomposition struct {
	Specs []Spec

	// JobInfo holds the per-tile output filename fields
	// ("OutputFilename0Tile{i}").
	JobInfo map[string]interface{}

	// PluginInfo holds the renderer region fields
	// ("RegionTop{i}", "RegionPrefix{i}", ...).
	PluginInfo map[string]interface{}
}

// DecomposeFrame partitions one frame file into the grid and derives the
// job-side and plugin-side wire fields.
func (g *Grid) DecomposeFrame(filename, prefix string) *Decomposition {
	specs := g.Tiles(filename, prefix)

	jobInfo := make(map[string]interface{}, len(specs))
	pluginInfo := make(map[string]interface{}, 5*len(specs))
	for _, s := range specs {
		jobInfo[fmt.Sprintf("OutputFilename0Tile%d", s.Index)] = s.Filename

		pluginInfo[fmt.Sprintf("RegionPrefix%d", s.Index)] = s.Prefix
		pluginInfo[fmt.Sprintf("RegionTop%d", s.Index)] = s.Region.Top
		pluginInfo[fmt.Sprintf("RegionBottom%d", s.Index)] = s.Region.Bottom
		pluginInfo[fmt.Sprintf("RegionLeft%d", s.Index)] = s.Region.Left
		pluginInfo[fmt.Sprintf("RegionRight%d", s.Index)] = s.Region.Right
	}

	return &Decomposition{
		Specs:      specs,
		JobInfo:    jobInfo,
		PluginInfo: pluginInfo,
	}
}

// CorrelationToken is the content hash linking a frame's tile job to its
// assembly job. Computed once per frame over the 1-based position of the
// file within the frame sequence and the filename; both jobs store the
// identical token so operators can verify the pairing even though the
// farm's dependency id is the authoritative link.
func CorrelationToken(position int, filename string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d_%s", position, filename)))
	return fmt.Sprintf("%x", sum)
}
