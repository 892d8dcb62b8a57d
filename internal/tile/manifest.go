package tile

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"
)

// ManifestEntry is one tile block of the assembler manifest. X and Y are
// in bottom-left-origin coordinates, the assembler-side convention,
// distinct from the top-left origin of the job region fields.
type ManifestEntry struct {
	FileName string
	X        int
	Y        int
	Width    int
	Height   int
}

// manifestY converts a job-region top edge (top-left origin) into the
// assembler's bottom-left-origin y for a tile of the grid's height.
func (g *Grid) manifestY(top int) int {
	return g.Height - top - g.TileHeight()
}

// ManifestEntries converts tile specs into assembler manifest entries.
func (g *Grid) ManifestEntries(specs []Spec) []ManifestEntry {
	entries := make([]ManifestEntry, 0, len(specs))
	for _, s := range specs {
		entries = append(entries, ManifestEntry{
			FileName: s.Filename,
			X:        s.Region.Left,
			Y:        g.manifestY(s.Region.Top),
			Width:    g.TileWidth(),
			Height:   g.TileHeight(),
		})
	}
	return entries
}

// ManifestPath derives the temporary manifest filename for one frame file,
// stamped so concurrent submissions of the same sequence cannot collide.
func ManifestPath(outputDir, imageFile string, stamp time.Time) string {
	base := path.Base(imageFile)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	name := fmt.Sprintf("%s_config_%s.txt", base, stamp.Format("2006_01_02_15_04_05"))
	return path.Join(outputDir, name)
}

// WriteManifest writes the assembler manifest for one frame. The file is
// attached to the assembly submission as an auxiliary file and removed by
// the orchestrator after a successful submission.
func (g *Grid) WriteManifest(manifestPath, imageFile string, entries []ManifestEntry) error {
	var b strings.Builder
	fmt.Fprintf(&b, "TileCount=%d\n", len(entries))
	fmt.Fprintf(&b, "ImageFileName=%s\n", imageFile)
	fmt.Fprintf(&b, "ImageWidth=%d\n", g.Width)
	fmt.Fprintf(&b, "ImageHeight=%d\n", g.Height)
	b.WriteString("TilesCropped=False\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "Tile%dFileName=%s\n", i, e.FileName)
		fmt.Fprintf(&b, "Tile%dX=%d\n", i, e.X)
		fmt.Fprintf(&b, "Tile%dY=%d\n", i, e.Y)
		fmt.Fprintf(&b, "Tile%dWidth=%d\n", i, e.Width)
		fmt.Fprintf(&b, "Tile%dHeight=%d\n", i, e.Height)
	}

	if err := os.MkdirAll(path.Dir(manifestPath), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	if err := os.WriteFile(manifestPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
