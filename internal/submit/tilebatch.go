package submit

import (
	"context"
	"fmt"
	"os"
	"time"

	"yqhp/farm-submit/internal/descriptor"
	"yqhp/farm-submit/internal/tile"
	"yqhp/farm-submit/pkg/logger"
)

// FrameFile names one frame of the output sequence.
type FrameFile struct {
	// Frame is the frame number.
	Frame int
	// File is the frame's final output path.
	File string
	// Prefix is the renderer-side output prefix for the frame.
	Prefix string
}

// TileBatch describes a tiled render: every frame becomes one tile job
// plus one dependent assembly job.
type TileBatch struct {
	Grid     *tile.Grid
	Base     *descriptor.JobDescriptor
	Plugin   descriptor.PluginDescriptor
	Assembly tile.AssemblyConfig

	// ManifestDir is where assembly manifests are written before being
	// attached as aux files.
	ManifestDir string

	Files []FrameFile

	// now stamps manifest filenames, overridable in tests.
	now func() time.Time
}

// TileBatchResult maps frames to the jobs created for them. Manifests
// holds paths of manifest files left on disk after a failed assembly
// submission, kept for inspection.
type TileBatchResult struct {
	TileJobIDs     map[int]string
	AssemblyJobIDs map[int]string
	Manifests      []string
}

func (b *TileBatch) validate() error {
	if b.Grid == nil {
		return NewStateError("tile batch requires a grid")
	}
	if b.Base == nil {
		return NewStateError("tile batch requires a base descriptor")
	}
	if len(b.Files) == 0 {
		return NewStateError("tile batch requires at least one frame file")
	}
	if b.ManifestDir == "" {
		return NewStateError("tile batch requires a manifest directory")
	}
	return nil
}

// SubmitTileBatch submits all tile jobs first, then one assembly job
// per frame depending on that frame's tile job. Each manifest is
// written before its assembly job goes out and removed once the farm
// acknowledges it; a failed submission leaves the manifest in place.
// The first failure aborts the batch.
func (o *Orchestrator) SubmitTileBatch(ctx context.Context, batch *TileBatch) (*TileBatchResult, error) {
	if err := batch.validate(); err != nil {
		return nil, err
	}
	now := batch.now
	if now == nil {
		now = time.Now
	}

	result := &TileBatchResult{
		TileJobIDs:     make(map[int]string),
		AssemblyJobIDs: make(map[int]string),
	}

	frameJobs := make([]*tile.FrameJob, 0, len(batch.Files))
	for i, ff := range batch.Files {
		frameJobs = append(frameJobs,
			batch.Grid.BuildFrameJob(batch.Base, batch.Plugin, ff.Frame, i+1, ff.File, ff.Prefix))
	}

	for _, fj := range frameJobs {
		id, err := o.Submit(ctx, NewSubmission(fj.Job, fj.Plugin))
		if err != nil {
			return result, NewChainError(fj.Job.Name, err)
		}
		result.TileJobIDs[fj.Frame] = id
	}
	logger.Info("tile batch: %d tile jobs submitted, %d tiles per frame",
		len(frameJobs), batch.Grid.Count())

	for _, fj := range frameJobs {
		manifestPath := tile.ManifestPath(batch.ManifestDir, fj.File, now())
		entries := batch.Grid.ManifestEntries(fj.Specs)
		if err := batch.Grid.WriteManifest(manifestPath, fj.File, entries); err != nil {
			return result, NewChainError(fj.Job.Name,
				fmt.Errorf("write assembly manifest: %w", err))
		}

		job, plugin := tile.BuildAssemblyJob(
			batch.Base, fj.Frame, result.TileJobIDs[fj.Frame], fj.File, fj.Token, batch.Assembly)
		id, err := o.Submit(ctx, NewSubmission(job, plugin, manifestPath))
		if err != nil {
			result.Manifests = append(result.Manifests, manifestPath)
			logger.Warn("assembly submission failed, manifest kept at %s", manifestPath)
			return result, NewChainError(job.Name, err)
		}
		result.AssemblyJobIDs[fj.Frame] = id
		if err := os.Remove(manifestPath); err != nil {
			logger.Warn("remove manifest %s: %v", manifestPath, err)
		}
	}

	return result, nil
}
