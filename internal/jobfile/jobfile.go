// Package jobfile reads user-authored YAML job files and turns them
// into submittable descriptors.
package jobfile

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"yqhp/farm-submit/internal/descriptor"
	"yqhp/farm-submit/internal/frames"
	"yqhp/farm-submit/internal/tile"
)

// JobFile is the YAML shape of one submission.
type JobFile struct {
	Name       string `yaml:"name"`
	Plugin     string `yaml:"plugin"`
	BatchName  string `yaml:"batch_name,omitempty"`
	Comment    string `yaml:"comment,omitempty"`
	Department string `yaml:"department,omitempty"`
	UserName   string `yaml:"user_name,omitempty"`
	JobType    string `yaml:"job_type,omitempty"`

	Pool          string `yaml:"pool,omitempty"`
	SecondaryPool string `yaml:"secondary_pool,omitempty"`
	Group         string `yaml:"group,omitempty"`

	Frames          string `yaml:"frames,omitempty"`
	Priority        *int   `yaml:"priority,omitempty"`
	ChunkSize       *int   `yaml:"chunk_size,omitempty"`
	MachineLimit    *int   `yaml:"machine_limit,omitempty"`
	ConcurrentTasks *int   `yaml:"concurrent_tasks,omitempty"`

	Whitelist   []string `yaml:"whitelist,omitempty"`
	Blacklist   []string `yaml:"blacklist,omitempty"`
	LimitGroups []string `yaml:"limit_groups,omitempty"`

	Env       map[string]string `yaml:"env,omitempty"`
	ExtraInfo map[string]string `yaml:"extra_info,omitempty"`

	PluginInfo map[string]interface{} `yaml:"plugin_info,omitempty"`
	AuxFiles   []string               `yaml:"aux_files,omitempty"`

	Export *ExportSection `yaml:"export,omitempty"`
	Tile   *TileSection   `yaml:"tile,omitempty"`
}

// ExportSection describes an optional export job the render job depends
// on, for pipelines that bake a scene before rendering it.
type ExportSection struct {
	Name       string                 `yaml:"name"`
	Plugin     string                 `yaml:"plugin"`
	PluginInfo map[string]interface{} `yaml:"plugin_info,omitempty"`
	AuxFiles   []string               `yaml:"aux_files,omitempty"`
}

// TileSection describes tiled rendering for the job.
type TileSection struct {
	TilesX  int  `yaml:"tiles_x"`
	TilesY  int  `yaml:"tiles_y"`
	Width   int  `yaml:"width"`
	Height  int  `yaml:"height"`
	MirrorY bool `yaml:"mirror_y,omitempty"`

	// OutputDir receives the assembly manifests.
	OutputDir string `yaml:"output_dir"`

	// Files lists the frame outputs explicitly. When empty, FilePattern
	// plus the job's frame expression generates them.
	Files       []TileFile `yaml:"files,omitempty"`
	FilePattern string     `yaml:"file_pattern,omitempty"`
	Prefix      string     `yaml:"prefix,omitempty"`

	Assembler        string `yaml:"assembler,omitempty"`
	AssemblyPriority *int   `yaml:"assembly_priority,omitempty"`
	CleanupTiles     bool   `yaml:"cleanup_tiles,omitempty"`
	ErrorOnMissing   bool   `yaml:"error_on_missing,omitempty"`
}

// TileFile names one frame output.
type TileFile struct {
	Frame  int    `yaml:"frame"`
	File   string `yaml:"file"`
	Prefix string `yaml:"prefix,omitempty"`
}

// DefaultAssembler is the farm-side plugin used when the job file names
// none.
const DefaultAssembler = "DraftTileAssembler"

// Parse decodes a job file, rejecting unknown fields.
func Parse(data []byte) (*JobFile, error) {
	var jf JobFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&jf); err != nil {
		line, column := extractLineColumn(err.Error())
		return nil, NewParseError(line, column, cleanYAMLErrorMessage(err.Error()), err)
	}
	if err := jf.validate(); err != nil {
		return nil, err
	}
	return &jf, nil
}

// ParseFile decodes a job file from disk.
func ParseFile(path string) (*JobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewParseError(0, 0, fmt.Sprintf("read file %s", path), err)
	}
	return Parse(data)
}

func (f *JobFile) validate() error {
	if f.Name == "" {
		return descriptor.NewValidationError("name", "job name is required")
	}
	if f.Plugin == "" {
		return descriptor.NewValidationError("plugin", "plugin is required")
	}
	if f.JobType != "" && descriptor.ParseJobType(f.JobType) == descriptor.JobTypeUndefined {
		return descriptor.NewValidationError("job_type",
			fmt.Sprintf("unknown job type %q", f.JobType))
	}
	if f.Frames != "" {
		if _, err := frames.Parse(f.Frames); err != nil {
			return descriptor.NewValidationError("frames", err.Error())
		}
	}
	if f.Export != nil {
		if f.Export.Name == "" || f.Export.Plugin == "" {
			return descriptor.NewValidationError("export", "export job requires name and plugin")
		}
	}
	if f.Tile != nil {
		if len(f.Tile.Files) == 0 && f.Tile.FilePattern == "" {
			return descriptor.NewValidationError("tile",
				"tile section requires files or file_pattern")
		}
		if f.Tile.FilePattern != "" && !strings.Contains(f.Tile.FilePattern, "#") {
			return descriptor.NewValidationError("tile.file_pattern",
				"file_pattern requires a '#' frame placeholder")
		}
		if len(f.Tile.Files) == 0 && f.Frames == "" {
			return descriptor.NewValidationError("tile",
				"file_pattern needs a frames expression to expand")
		}
		if f.Tile.OutputDir == "" {
			return descriptor.NewValidationError("tile.output_dir",
				"tile section requires output_dir")
		}
	}
	return nil
}

// Descriptor builds the render job descriptor.
func (f *JobFile) Descriptor() (*descriptor.JobDescriptor, error) {
	d := descriptor.New(f.Plugin)
	d.Name = f.Name
	d.BatchName = f.BatchName
	d.Comment = f.Comment
	d.Department = f.Department
	d.UserName = f.UserName
	d.Frames = f.Frames
	d.Pool = f.Pool
	d.SecondaryPool = f.SecondaryPool
	d.Group = f.Group
	if f.Priority != nil {
		d.SetPriority(*f.Priority)
	}
	if f.ChunkSize != nil {
		d.SetChunkSize(*f.ChunkSize)
	}
	if f.MachineLimit != nil {
		d.SetMachineLimit(*f.MachineLimit)
	}
	if f.ConcurrentTasks != nil {
		v := *f.ConcurrentTasks
		d.ConcurrentTasks = &v
	}
	if len(f.Whitelist) > 0 {
		d.SetWhitelist(f.Whitelist)
	}
	if len(f.Blacklist) > 0 {
		d.SetBlacklist(f.Blacklist)
	}
	d.LimitGroups = append([]string(nil), f.LimitGroups...)
	for k, v := range f.Env {
		d.EnvironmentKeyValue[k] = v
	}
	for k, v := range f.ExtraInfo {
		d.ExtraInfoKeyValue[k] = v
	}
	if f.JobType != "" {
		d.ApplyJobTypeEnv(descriptor.ParseJobType(f.JobType))
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// ExportDescriptor builds the optional export job descriptor, nil when
// the job file has no export section.
func (f *JobFile) ExportDescriptor() (*descriptor.JobDescriptor, error) {
	if f.Export == nil {
		return nil, nil
	}
	d := descriptor.New(f.Export.Plugin)
	d.Name = f.Export.Name
	d.BatchName = f.BatchName
	d.Pool = f.Pool
	d.Group = f.Group
	if f.Priority != nil {
		d.SetPriority(*f.Priority)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Grid builds the tile grid, nil when the job file has no tile section.
func (f *JobFile) Grid() (*tile.Grid, error) {
	if f.Tile == nil {
		return nil, nil
	}
	return tile.NewGrid(f.Tile.TilesX, f.Tile.TilesY, f.Tile.Width, f.Tile.Height, f.Tile.MirrorY)
}

// AssemblyConfig builds the assembly settings from the tile section.
func (f *JobFile) AssemblyConfig() tile.AssemblyConfig {
	cfg := tile.AssemblyConfig{
		Plugin:         DefaultAssembler,
		Priority:       -1,
		CleanupTiles:   f.Tile.CleanupTiles,
		ErrorOnMissing: f.Tile.ErrorOnMissing,
	}
	if f.Tile.Assembler != "" {
		cfg.Plugin = f.Tile.Assembler
	}
	if f.Tile.AssemblyPriority != nil {
		cfg.Priority = *f.Tile.AssemblyPriority
	}
	if renderer, ok := f.PluginInfo["Renderer"].(string); ok {
		cfg.Renderer = renderer
	}
	return cfg
}

// FrameFiles resolves the tile section's frame outputs, expanding
// FilePattern over the job's frame expression when no explicit list is
// given.
func (f *JobFile) FrameFiles() ([]TileFile, error) {
	if f.Tile == nil {
		return nil, nil
	}
	if len(f.Tile.Files) > 0 {
		out := make([]TileFile, len(f.Tile.Files))
		copy(out, f.Tile.Files)
		for i := range out {
			if out[i].Prefix == "" {
				out[i].Prefix = f.Tile.Prefix
			}
		}
		return out, nil
	}

	frameList, err := frames.Parse(f.Frames)
	if err != nil {
		return nil, descriptor.NewValidationError("frames", err.Error())
	}
	out := make([]TileFile, 0, len(frameList))
	for _, frame := range frameList {
		file := expandPattern(f.Tile.FilePattern, frame)
		prefix := f.Tile.Prefix
		if prefix == "" {
			prefix = strings.TrimSuffix(path.Base(file), path.Ext(file))
		}
		out = append(out, TileFile{Frame: frame, File: file, Prefix: prefix})
	}
	return out, nil
}

// expandPattern substitutes the '#' run in a sequence pattern with the
// zero-padded frame number.
func expandPattern(pattern string, frame int) string {
	start := strings.IndexByte(pattern, '#')
	end := start
	for end < len(pattern) && pattern[end] == '#' {
		end++
	}
	padded := fmt.Sprintf("%0*d", end-start, frame)
	return pattern[:start] + padded + pattern[end:]
}

// extractLineColumn pulls "line X" / "column Y" out of a yaml error
// message.
func extractLineColumn(errStr string) (int, int) {
	var line, column int
	if idx := strings.Index(errStr, "line "); idx != -1 {
		fmt.Sscanf(errStr[idx:], "line %d", &line)
	}
	if idx := strings.Index(errStr, "column "); idx != -1 {
		fmt.Sscanf(errStr[idx:], "column %d", &column)
	}
	return line, column
}

func cleanYAMLErrorMessage(errStr string) string {
	errStr = strings.TrimPrefix(errStr, "yaml: ")
	if len(errStr) > 0 {
		errStr = strings.ToUpper(errStr[:1]) + errStr[1:]
	}
	return errStr
}
