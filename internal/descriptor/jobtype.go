package descriptor

// JobType classifies a submission for the downstream pipeline. The farm
// workers read the tri-state environment flags to decide which pipeline
// stage a task belongs to.
type JobType string

const (
	JobTypeUndefined JobType = "undefined"
	JobTypeRender    JobType = "render"
	JobTypePublish   JobType = "publish"
	JobTypeRemote    JobType = "remote"
)

// ParseJobType maps a string to a JobType, falling back to undefined.
func ParseJobType(value string) JobType {
	switch JobType(value) {
	case JobTypeRender, JobTypePublish, JobTypeRemote:
		return JobType(value)
	}
	return JobTypeUndefined
}

// EnvVars returns the job environment flags announcing the job type.
// Exactly one flag is "1" for a classified job; all are "0" for undefined.
func (t JobType) EnvVars() map[string]string {
	flag := func(match JobType) string {
		if t == match {
			return "1"
		}
		return "0"
	}
	return map[string]string{
		"PUBLISH_JOB":    flag(JobTypePublish),
		"RENDER_JOB":     flag(JobTypeRender),
		"REMOTE_PUBLISH": flag(JobTypeRemote),
	}
}

// ApplyJobTypeEnv stamps the job-type environment flags onto the
// descriptor's environment collection.
func (d *JobDescriptor) ApplyJobTypeEnv(t JobType) {
	d.EnvironmentKeyValue.Merge(t.EnvVars())
}
