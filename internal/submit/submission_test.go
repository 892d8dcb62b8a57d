package submit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yqhp/farm-submit/internal/descriptor"
)

func renderJob(name string) *descriptor.JobDescriptor {
	d := descriptor.New("MayaBatch")
	d.Name = name
	d.Frames = "1-10"
	d.Pool = "farm"
	return d
}

func TestAssembleBuildsPayload(t *testing.T) {
	sub := NewSubmission(renderJob("scene - layer"),
		descriptor.PluginDescriptor{"Renderer": "arnold"}, "scene.ma")

	require.Equal(t, StateDraft, sub.State())
	require.NoError(t, sub.Assemble())
	assert.Equal(t, StateAssembled, sub.State())

	assert.Equal(t, "scene - layer", sub.Payload.JobInfo["Name"])
	assert.Equal(t, "MayaBatch", sub.Payload.JobInfo["Plugin"])
	assert.Equal(t, "arnold", sub.Payload.PluginInfo["Renderer"])
	assert.Equal(t, []string{"scene.ma"}, sub.Payload.AuxFiles)
}

func TestAssembleTwiceIsStateError(t *testing.T) {
	sub := NewSubmission(renderJob("scene"), nil)
	require.NoError(t, sub.Assemble())

	err := sub.Assemble()
	require.Error(t, err)
	assert.True(t, IsStateError(err))
}

func TestAssembleInvalidDescriptorFails(t *testing.T) {
	job := renderJob("")
	sub := NewSubmission(job, nil)

	err := sub.Assemble()
	require.Error(t, err)
	assert.True(t, descriptor.IsValidationError(err))
	assert.Equal(t, StateFailed, sub.State())
	assert.Equal(t, err, sub.Err)
}

func TestAssembleWithoutAuxFiles(t *testing.T) {
	sub := NewSubmission(renderJob("scene"), nil)
	require.NoError(t, sub.Assemble())

	// Farms expect an array, not null.
	assert.NotNil(t, sub.Payload.AuxFiles)
	assert.Empty(t, sub.Payload.AuxFiles)
	assert.NotNil(t, sub.Payload.PluginInfo)
}
