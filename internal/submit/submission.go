// Package submit orchestrates job submission: payload assembly, the
// submission state machine, dependency chains and tile batches.
package submit

import (
	"fmt"

	"yqhp/farm-submit/internal/descriptor"
	"yqhp/farm-submit/pkg/types"
)

// State tracks one submission through its lifecycle.
type State string

const (
	// StateDraft is the initial state, descriptor still mutable.
	StateDraft State = "draft"
	// StateAssembled means the wire payload has been built and the
	// descriptor validated.
	StateAssembled State = "assembled"
	// StateSubmitted means the payload is on its way to the farm.
	StateSubmitted State = "submitted"
	// StateAcknowledged means the farm returned a job id.
	StateAcknowledged State = "acknowledged"
	// StateFailed is terminal, Err holds the cause.
	StateFailed State = "failed"
)

// Submission carries one job through Draft to Acknowledged or Failed.
type Submission struct {
	Job      *descriptor.JobDescriptor
	Plugin   descriptor.PluginDescriptor
	AuxFiles []string

	Payload *types.SubmissionPayload
	JobID   string
	Err     error

	state State
}

// NewSubmission creates a draft submission for the descriptor pair.
func NewSubmission(job *descriptor.JobDescriptor, plugin descriptor.PluginDescriptor, auxFiles ...string) *Submission {
	return &Submission{
		Job:      job,
		Plugin:   plugin,
		AuxFiles: auxFiles,
		state:    StateDraft,
	}
}

// State returns the current lifecycle state.
func (s *Submission) State() State {
	return s.state
}

// Assemble validates the descriptor and builds the wire payload. The
// descriptor must not be mutated afterwards, later changes would not be
// reflected in the payload.
func (s *Submission) Assemble() error {
	if s.state != StateDraft {
		return NewStateError(fmt.Sprintf("cannot assemble submission in state %q", s.state))
	}
	if err := s.Job.Validate(); err != nil {
		s.fail(err)
		return err
	}

	pluginInfo := map[string]interface{}{}
	if s.Plugin != nil {
		pluginInfo = s.Plugin.Clone()
	}
	aux := s.AuxFiles
	if aux == nil {
		aux = []string{}
	}
	s.Payload = &types.SubmissionPayload{
		JobInfo:    s.Job.Serialize(),
		PluginInfo: pluginInfo,
		AuxFiles:   aux,
	}
	s.state = StateAssembled
	return nil
}

func (s *Submission) markSubmitted() {
	s.state = StateSubmitted
}

func (s *Submission) acknowledge(jobID string) {
	s.JobID = jobID
	s.state = StateAcknowledged
}

func (s *Submission) fail(err error) {
	s.Err = err
	s.state = StateFailed
}
