package tile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yqhp/farm-submit/internal/descriptor"
)

func baseJob() *descriptor.JobDescriptor {
	d := descriptor.New("MayaBatch")
	d.Name = "scene.ma - renderLayer"
	d.BatchName = "scene.ma"
	d.Pool = "farm"
	d.SetPriority(50)
	return d
}

func TestBuildFrameJob(t *testing.T) {
	g, err := NewGrid(2, 2, 200, 100, false)
	require.NoError(t, err)

	fj := g.BuildFrameJob(baseJob(), descriptor.PluginDescriptor{"Renderer": "arnold"},
		1001, 1, "out/beauty.1001.exr", "scene/beauty")

	assert.Equal(t, "scene.ma - renderLayer (Frame 1001 - 4 tiles)", fj.Job.Name)
	assert.True(t, fj.Job.TileJob)
	assert.Equal(t, 1001, fj.Job.TileJobFrame)
	assert.Equal(t, 2, fj.Job.TileJobTilesInX)
	assert.Equal(t, 2, fj.Job.TileJobTilesInY)
	assert.Equal(t, 4, fj.Job.TileJobTileCount)
	assert.Empty(t, fj.Job.Frames)

	// Correlation token in the reserved extra-info slots.
	assert.Equal(t, fj.Token, fj.Job.ExtraInfo[0])
	assert.Equal(t, "out/beauty.1001.exr", fj.Job.ExtraInfo[1])
	assert.Equal(t, CorrelationToken(1, "out/beauty.1001.exr"), fj.Token)

	// Per-tile filenames align with tile indices.
	assert.Equal(t, "out/_tile_1x1_2x2_beauty.1001.exr", fj.Job.OutputFilenameTile[0])
	assert.Len(t, fj.Job.OutputFilenameTile, 4)

	// Plugin bag: base entries survive, region fields folded in.
	assert.Equal(t, "arnold", fj.Plugin["Renderer"])
	assert.Equal(t, true, fj.Plugin["RegionRendering"])
	assert.Equal(t, 200, fj.Plugin["ImageWidth"])
	assert.Equal(t, 100, fj.Plugin["ImageHeight"])
	assert.Contains(t, fj.Plugin, "RegionTop0")
	assert.Contains(t, fj.Plugin, "RegionPrefix3")
}

func TestBuildFrameJobDoesNotMutateBase(t *testing.T) {
	g, err := NewGrid(2, 2, 200, 100, false)
	require.NoError(t, err)
	base := baseJob()
	basePlugin := descriptor.PluginDescriptor{"Renderer": "vray"}

	g.BuildFrameJob(base, basePlugin, 1, 1, "beauty.0001.exr", "p/beauty")

	assert.False(t, base.TileJob)
	assert.Empty(t, base.ExtraInfo)
	assert.NotContains(t, basePlugin, "RegionRendering")
}

func TestBuildAssemblyJob(t *testing.T) {
	job, plugin := BuildAssemblyJob(baseJob(), 1001, "tile-job-id",
		"out/beauty.1001.exr", "token123", AssemblyConfig{
			Plugin:         "DraftTileAssembler",
			Priority:       30,
			CleanupTiles:   true,
			ErrorOnMissing: true,
			Renderer:       "arnold",
		})

	assert.Equal(t, "DraftTileAssembler", job.Plugin)
	assert.Equal(t, "scene.ma - renderLayer - Tile Assembly Job (Frame 1001)", job.Name)
	assert.Equal(t, "1001", job.Frames)
	assert.False(t, job.TileJob)

	// Single exclusive task: depends on exactly the tile job, one
	// machine, no task splitting.
	assert.Equal(t, []string{"tile-job-id"}, job.JobDependencies)
	assert.Equal(t, 1, *job.MachineLimit)
	assert.Equal(t, descriptor.ChunkSizeSingleTask, *job.ChunkSize)
	assert.Equal(t, 30, *job.Priority)

	assert.Equal(t, "token123", job.ExtraInfo[0])
	assert.Equal(t, "out/beauty.1001.exr", job.ExtraInfo[1])
	assert.Equal(t, "beauty.####.exr", job.OutputFilename[0])

	assert.Equal(t, 1, plugin["CleanupTiles"])
	assert.Equal(t, true, plugin["ErrorOnMissing"])
	assert.Equal(t, "arnold", plugin["Renderer"])
}

func TestBuildAssemblyJobKeepsBasePriorityWhenNegative(t *testing.T) {
	job, _ := BuildAssemblyJob(baseJob(), 1, "id", "beauty.0001.exr", "tok",
		AssemblyConfig{Plugin: "DraftTileAssembler", Priority: -1})

	assert.Equal(t, 50, *job.Priority)
}

func TestAssemblyAndFrameJobShareToken(t *testing.T) {
	g, err := NewGrid(2, 2, 4, 4, false)
	require.NoError(t, err)

	fj := g.BuildFrameJob(baseJob(), descriptor.PluginDescriptor{}, 7, 3,
		"out/beauty.0007.exr", "p/beauty")
	assembly, _ := BuildAssemblyJob(baseJob(), 7, "tile-id",
		fj.File, fj.Token, AssemblyConfig{Plugin: "DraftTileAssembler", Priority: -1})

	assert.Equal(t, fj.Job.ExtraInfo[0], assembly.ExtraInfo[0])
	assert.Equal(t, fj.Job.ExtraInfo[1], assembly.ExtraInfo[1])
}
