package tile

import (
	"fmt"
	"path"
	"strconv"

	"yqhp/farm-submit/internal/descriptor"
	"yqhp/farm-submit/internal/frames"
)

// Correlation token slots in the job's indexed extra info. Both the tile
// job and its assembly job carry the token at slot 0 and the frame's
// output file at slot 1.
const (
	extraInfoToken = 0
	extraInfoFile  = 1
)

// FrameJob is one frame's tile job, ready for submission.
type FrameJob struct {
	Frame  int
	File   string
	Token  string
	Job    *descriptor.JobDescriptor
	Plugin descriptor.PluginDescriptor
	Specs  []Spec
}

// BuildFrameJob configures a clone of the base descriptor pair as the tile
// job for one frame file. position is the 1-based index of the file within
// the frame sequence, used for the correlation token.
func (g *Grid) BuildFrameJob(
	base *descriptor.JobDescriptor,
	basePlugin descriptor.PluginDescriptor,
	frame int,
	position int,
	file string,
	prefix string,
) *FrameJob {
	dec := g.DecomposeFrame(file, prefix)
	token := CorrelationToken(position, file)

	job := base.Clone()
	job.Name = fmt.Sprintf("%s (Frame %d - %d tiles)", base.Name, frame, g.Count())
	job.Frames = ""
	job.TileJob = true
	job.TileJobFrame = frame
	job.TileJobTilesInX = g.TilesX
	job.TileJobTilesInY = g.TilesY
	job.TileJobTileCount = g.Count()
	for _, s := range dec.Specs {
		job.OutputFilenameTile[s.Index] = s.Filename
	}
	job.ExtraInfo[extraInfoToken] = token
	job.ExtraInfo[extraInfoFile] = file

	plugin := basePlugin.Clone()
	plugin["ImageWidth"] = g.Width
	plugin["ImageHeight"] = g.Height
	plugin["RegionRendering"] = true
	plugin.Merge(dec.PluginInfo)

	return &FrameJob{
		Frame:  frame,
		File:   file,
		Token:  token,
		Job:    job,
		Plugin: plugin,
		Specs:  dec.Specs,
	}
}

// AssemblyConfig parameterizes the dependent assembly jobs.
type AssemblyConfig struct {
	// Plugin is the farm-side assembler plugin name.
	Plugin string

	// Priority overrides the tile job priority when non-negative.
	Priority int

	// CleanupTiles asks the assembler to delete tile files after
	// stitching.
	CleanupTiles bool

	// ErrorOnMissing fails the assembly when a tile file is absent.
	ErrorOnMissing bool

	// Renderer is passed through so the assembler can apply
	// renderer-specific decoding.
	Renderer string
}

// BuildAssemblyJob builds the job that stitches one frame's tiles into the
// final image. It depends on exactly the tile job id and is forced to run
// as a single exclusive task, since it must read every tile file.
func BuildAssemblyJob(
	base *descriptor.JobDescriptor,
	frame int,
	tileJobID string,
	file string,
	token string,
	cfg AssemblyConfig,
) (*descriptor.JobDescriptor, descriptor.PluginDescriptor) {
	job := base.Clone()
	job.Plugin = cfg.Plugin
	job.Name = fmt.Sprintf("%s - Tile Assembly Job (Frame %d)", base.Name, frame)
	job.Frames = strconv.Itoa(frame)
	job.TileJob = false
	job.TileJobFrame = 0
	job.TileJobTilesInX = 0
	job.TileJobTilesInY = 0
	job.TileJobTileCount = 0
	job.OutputFilenameTile = make(descriptor.IndexedVar)
	job.SetMachineLimit(1)
	job.SetChunkSize(descriptor.ChunkSizeSingleTask)
	if cfg.Priority >= 0 {
		job.SetPriority(cfg.Priority)
	}

	job.JobDependencies = nil
	job.AddDependency(tileJobID)

	job.OutputFilename = make(descriptor.IndexedVar)
	job.OutputFilename[0] = frames.PaddedPlaceholder(path.Base(file))
	job.ExtraInfo[extraInfoToken] = token
	job.ExtraInfo[extraInfoFile] = file

	cleanup := 0
	if cfg.CleanupTiles {
		cleanup = 1
	}
	plugin := descriptor.PluginDescriptor{
		"CleanupTiles":   cleanup,
		"ErrorOnMissing": cfg.ErrorOnMissing,
	}
	if cfg.Renderer != "" {
		plugin["Renderer"] = cfg.Renderer
	}
	return job, plugin
}
