package jobfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yqhp/farm-submit/internal/descriptor"
)

const fullJobFile = `
name: "scene.ma - renderLayer"
plugin: MayaBatch
batch_name: scene.ma
comment: nightly
pool: farm
secondary_pool: none
group: gpu
frames: "1001-1004"
priority: 70
chunk_size: 2
job_type: render
limit_groups: [arnold]
env:
  PROJECT: demo
extra_info:
  shot: sh010
plugin_info:
  Renderer: arnold
  SceneFile: /prod/scene.ma
aux_files: [/prod/scene.ma]
export:
  name: "scene.ma - export"
  plugin: MayaExport
tile:
  tiles_x: 2
  tiles_y: 2
  width: 1920
  height: 1080
  output_dir: /prod/out
  file_pattern: "/prod/out/beauty.####.exr"
  prefix: scene/beauty
  assembler: DraftTileAssembler
  assembly_priority: 30
  cleanup_tiles: true
`

func TestParseFullJobFile(t *testing.T) {
	jf, err := Parse([]byte(fullJobFile))
	require.NoError(t, err)

	assert.Equal(t, "scene.ma - renderLayer", jf.Name)
	assert.Equal(t, "MayaBatch", jf.Plugin)
	require.NotNil(t, jf.Priority)
	assert.Equal(t, 70, *jf.Priority)
	require.NotNil(t, jf.Export)
	require.NotNil(t, jf.Tile)
}

func TestDescriptorFromJobFile(t *testing.T) {
	jf, err := Parse([]byte(fullJobFile))
	require.NoError(t, err)

	d, err := jf.Descriptor()
	require.NoError(t, err)

	assert.Equal(t, "scene.ma - renderLayer", d.Name)
	assert.Equal(t, "1001-1004", d.Frames)
	assert.Equal(t, 70, *d.Priority)
	assert.Equal(t, 2, *d.ChunkSize)
	assert.Equal(t, []string{"arnold"}, d.LimitGroups)
	assert.Equal(t, "demo", d.EnvironmentKeyValue["PROJECT"])
	assert.Equal(t, "sh010", d.ExtraInfoKeyValue["shot"])

	// job_type: render stamps the tri-state flags.
	assert.Equal(t, "1", d.EnvironmentKeyValue["RENDER_JOB"])
	assert.Equal(t, "0", d.EnvironmentKeyValue["PUBLISH_JOB"])
}

func TestExportDescriptor(t *testing.T) {
	jf, err := Parse([]byte(fullJobFile))
	require.NoError(t, err)

	export, err := jf.ExportDescriptor()
	require.NoError(t, err)
	require.NotNil(t, export)
	assert.Equal(t, "scene.ma - export", export.Name)
	assert.Equal(t, "MayaExport", export.Plugin)
	assert.Equal(t, "scene.ma", export.BatchName)

	minimal, err := Parse([]byte("name: x\nplugin: Nuke\n"))
	require.NoError(t, err)
	none, err := minimal.ExportDescriptor()
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestGridAndAssemblyConfig(t *testing.T) {
	jf, err := Parse([]byte(fullJobFile))
	require.NoError(t, err)

	grid, err := jf.Grid()
	require.NoError(t, err)
	require.NotNil(t, grid)
	assert.Equal(t, 4, grid.Count())
	assert.Equal(t, 960, grid.TileWidth())

	cfg := jf.AssemblyConfig()
	assert.Equal(t, "DraftTileAssembler", cfg.Plugin)
	assert.Equal(t, 30, cfg.Priority)
	assert.True(t, cfg.CleanupTiles)
	assert.Equal(t, "arnold", cfg.Renderer)
}

func TestFrameFilesFromPattern(t *testing.T) {
	jf, err := Parse([]byte(fullJobFile))
	require.NoError(t, err)

	files, err := jf.FrameFiles()
	require.NoError(t, err)
	require.Len(t, files, 4)
	assert.Equal(t, 1001, files[0].Frame)
	assert.Equal(t, "/prod/out/beauty.1001.exr", files[0].File)
	assert.Equal(t, "scene/beauty", files[0].Prefix)
	assert.Equal(t, "/prod/out/beauty.1004.exr", files[3].File)
}

func TestFrameFilesExplicitList(t *testing.T) {
	jf, err := Parse([]byte(`
name: x
plugin: Nuke
tile:
  tiles_x: 2
  tiles_y: 1
  width: 100
  height: 50
  output_dir: out
  files:
    - frame: 5
      file: out/comp.0005.exr
`))
	require.NoError(t, err)

	files, err := jf.FrameFiles()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, 5, files[0].Frame)
	assert.Equal(t, "out/comp.0005.exr", files[0].File)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("name: x\nplugin: Nuke\nbogus_field: 1\n"))
	require.Error(t, err)
	assert.True(t, IsParseError(err))
}

func TestParseSyntaxErrorCarriesLine(t *testing.T) {
	_, err := Parse([]byte("name: x\n  bad indent: [\n"))
	require.Error(t, err)
	require.True(t, IsParseError(err))
	assert.Greater(t, err.(*ParseError).Line, 0)
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing name", "plugin: Nuke\n"},
		{"missing plugin", "name: x\n"},
		{"bad job type", "name: x\nplugin: Nuke\njob_type: chrome\n"},
		{"bad frames", "name: x\nplugin: Nuke\nframes: 10-1\n"},
		{"export without plugin", "name: x\nplugin: Nuke\nexport:\n  name: y\n"},
		{"tile without files", "name: x\nplugin: Nuke\ntile:\n  tiles_x: 2\n  tiles_y: 2\n  width: 10\n  height: 10\n  output_dir: out\n"},
		{"pattern without placeholder", "name: x\nplugin: Nuke\nframes: 1-2\ntile:\n  tiles_x: 2\n  tiles_y: 2\n  width: 10\n  height: 10\n  output_dir: out\n  file_pattern: beauty.exr\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, descriptor.IsValidationError(err))
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yml")
	require.NoError(t, os.WriteFile(path, []byte(fullJobFile), 0o644))

	jf, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "MayaBatch", jf.Plugin)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.True(t, IsParseError(err))
}
