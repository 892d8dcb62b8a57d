// Package descriptor models the farm job descriptor and its wire
// serialization.
//
// A JobDescriptor maps one unit of farm work. Optional scalar fields use
// pointers so that "unset" (inherit the farm default) stays distinct from
// "set to the zero value"; unset fields are omitted from the wire map
// entirely. Collection fields use IndexedVar / KeyValueVar, whose flat
// "{Name}{index}" wire form the farm expects.
package descriptor

// ChunkSizeSingleTask is the ChunkSize sentinel forcing a job to run as a
// single task. Used when the job renders to one output file that cannot be
// partitioned across workers.
const ChunkSizeSingleTask = 1000000

// Priority bounds accepted by the farm.
const (
	MinPriority = 0
	MaxPriority = 100
)

// JobDescriptor describes one unit of farm work.
type JobDescriptor struct {
	// Required
	Plugin string

	// General
	Name          string
	Frames        string
	Comment       string
	Department    string
	BatchName     string
	UserName      string
	Pool          string
	SecondaryPool string
	Group         string
	Priority      *int
	ChunkSize     *int
	InitialStatus string
	OnJobComplete string

	// Behavior toggles
	ForceReloadPlugin *bool
	ConcurrentTasks   *int

	// Machine limit. Whitelist and Blacklist are mutually exclusive; use
	// SetWhitelist / SetBlacklist which clear the opposite list.
	MachineLimit *int
	Whitelist    []string
	Blacklist    []string

	// Limits
	LimitGroups []string

	// Dependencies: farm job ids that must finish before this job runs,
	// in the order they were added.
	JobDependencies []string

	// Tile rendering
	TileJob          bool
	TileJobFrame     int
	TileJobTilesInX  int
	TileJobTilesInY  int
	TileJobTileCount int

	// Indexed collections. OutputFilenameTile carries per-tile filenames
	// for the first output sequence ("OutputFilename0Tile{i}").
	OutputDirectory    IndexedVar
	OutputFilename     IndexedVar
	OutputFilenameTile IndexedVar
	AssetDependency    IndexedVar
	ExtraInfo          IndexedVar

	// Keyed collections
	ExtraInfoKeyValue   KeyValueVar
	EnvironmentKeyValue KeyValueVar

	// AdditionalFields is the escape hatch for fields this model does not
	// name. Merged into the wire map last, overriding anything above.
	AdditionalFields map[string]interface{}
}

// New creates a job descriptor for the given farm plugin with all
// collections initialized.
func New(plugin string) *JobDescriptor {
	return &JobDescriptor{
		Plugin:              plugin,
		OutputDirectory:     make(IndexedVar),
		OutputFilename:      make(IndexedVar),
		OutputFilenameTile:  make(IndexedVar),
		AssetDependency:     make(IndexedVar),
		ExtraInfo:           make(IndexedVar),
		ExtraInfoKeyValue:   make(KeyValueVar),
		EnvironmentKeyValue: make(KeyValueVar),
		AdditionalFields:    make(map[string]interface{}),
	}
}

// Clone returns a deep copy. Submitted descriptors are never mutated in
// place; dependent jobs are built by cloning and overriding.
func (d *JobDescriptor) Clone() *JobDescriptor {
	out := *d
	out.Priority = cloneInt(d.Priority)
	out.ChunkSize = cloneInt(d.ChunkSize)
	out.ConcurrentTasks = cloneInt(d.ConcurrentTasks)
	out.MachineLimit = cloneInt(d.MachineLimit)
	out.ForceReloadPlugin = cloneBool(d.ForceReloadPlugin)
	out.Whitelist = append([]string(nil), d.Whitelist...)
	out.Blacklist = append([]string(nil), d.Blacklist...)
	out.LimitGroups = append([]string(nil), d.LimitGroups...)
	out.JobDependencies = append([]string(nil), d.JobDependencies...)
	out.OutputDirectory = d.OutputDirectory.Clone()
	out.OutputFilename = d.OutputFilename.Clone()
	out.OutputFilenameTile = d.OutputFilenameTile.Clone()
	out.AssetDependency = d.AssetDependency.Clone()
	out.ExtraInfo = d.ExtraInfo.Clone()
	out.ExtraInfoKeyValue = d.ExtraInfoKeyValue.Clone()
	out.EnvironmentKeyValue = d.EnvironmentKeyValue.Clone()
	out.AdditionalFields = make(map[string]interface{}, len(d.AdditionalFields))
	for k, v := range d.AdditionalFields {
		out.AdditionalFields[k] = v
	}
	return &out
}

// SetPriority sets the job priority.
func (d *JobDescriptor) SetPriority(p int) {
	d.Priority = &p
}

// SetChunkSize sets the tasks-per-worker batching size.
func (d *JobDescriptor) SetChunkSize(n int) {
	d.ChunkSize = &n
}

// SetMachineLimit caps the number of workers the job may occupy.
func (d *JobDescriptor) SetMachineLimit(n int) {
	d.MachineLimit = &n
}

// SetWhitelist restricts the job to the named machines and clears any
// blacklist.
func (d *JobDescriptor) SetWhitelist(machines []string) {
	d.Whitelist = append([]string(nil), machines...)
	d.Blacklist = nil
}

// SetBlacklist excludes the named machines and clears any whitelist.
func (d *JobDescriptor) SetBlacklist(machines []string) {
	d.Blacklist = append([]string(nil), machines...)
	d.Whitelist = nil
}

// SetWhitelistString parses a comma-separated machine list. Round-trips
// with WhitelistString.
func (d *JobDescriptor) SetWhitelistString(s string) {
	d.SetWhitelist(SplitList(s))
}

// SetBlacklistString parses a comma-separated machine list.
func (d *JobDescriptor) SetBlacklistString(s string) {
	d.SetBlacklist(SplitList(s))
}

// WhitelistString renders the whitelist in its comma-joined wire form.
func (d *JobDescriptor) WhitelistString() string {
	return JoinList(d.Whitelist)
}

// BlacklistString renders the blacklist in its comma-joined wire form.
func (d *JobDescriptor) BlacklistString() string {
	return JoinList(d.Blacklist)
}

// AddDependency appends a farm job id to the dependency set, keeping
// insertion order and ignoring duplicates.
func (d *JobDescriptor) AddDependency(jobID string) {
	for _, existing := range d.JobDependencies {
		if existing == jobID {
			return
		}
	}
	d.JobDependencies = append(d.JobDependencies, jobID)
}

// Validate checks the descriptor's local contract. It returns a
// *ValidationError before any network call is made; serialization assumes
// a validated descriptor.
func (d *JobDescriptor) Validate() error {
	if d.Plugin == "" {
		return NewValidationError("Plugin", "farm plugin is required")
	}
	if d.Name == "" {
		return NewValidationError("Name", "job name is required")
	}
	if d.Priority != nil {
		if *d.Priority < MinPriority || *d.Priority > MaxPriority {
			return NewValidationError("Priority",
				"must be between 0 and 100 inclusive")
		}
	}
	if len(d.Whitelist) > 0 && len(d.Blacklist) > 0 {
		return NewValidationError("Whitelist",
			"whitelist and blacklist are mutually exclusive")
	}
	if d.TileJob && (d.TileJobTilesInX < 1 || d.TileJobTilesInY < 1) {
		return NewValidationError("TileJobTilesInX",
			"tile jobs need at least a 1x1 grid")
	}
	for _, collection := range []struct {
		name string
		v    IndexedVar
	}{
		{"OutputDirectory", d.OutputDirectory},
		{"OutputFilename", d.OutputFilename},
		{"OutputFilenameTile", d.OutputFilenameTile},
		{"AssetDependency", d.AssetDependency},
		{"ExtraInfo", d.ExtraInfo},
	} {
		for i := range collection.v {
			if i < 0 {
				return NewValidationError(collection.name,
					"indexed keys must be non-negative")
			}
		}
	}
	return nil
}

// Serialize renders the descriptor as the ordered flat key/value map the
// farm consumes. Unset optional fields are omitted entirely: the wire
// protocol distinguishes "unset" from "explicitly empty". Empty lists are
// likewise absent rather than sent as empty strings, which the farm would
// treat as restrictive.
func (d *JobDescriptor) Serialize() map[string]interface{} {
	out := make(map[string]interface{})

	putString(out, "Plugin", d.Plugin)
	putString(out, "Name", d.Name)
	putString(out, "Frames", d.Frames)
	putString(out, "Comment", d.Comment)
	putString(out, "Department", d.Department)
	putString(out, "BatchName", d.BatchName)
	putString(out, "UserName", d.UserName)
	putString(out, "Pool", d.Pool)
	putString(out, "SecondaryPool", d.SecondaryPool)
	putString(out, "Group", d.Group)
	putString(out, "InitialStatus", d.InitialStatus)
	putString(out, "OnJobComplete", d.OnJobComplete)

	putInt(out, "Priority", d.Priority)
	putInt(out, "ChunkSize", d.ChunkSize)
	putInt(out, "ConcurrentTasks", d.ConcurrentTasks)
	putInt(out, "MachineLimit", d.MachineLimit)
	putBool(out, "ForceReloadPlugin", d.ForceReloadPlugin)

	putList(out, "Whitelist", d.Whitelist)
	putList(out, "Blacklist", d.Blacklist)
	putList(out, "LimitGroups", d.LimitGroups)
	putList(out, "JobDependencies", d.JobDependencies)

	if d.TileJob {
		out["TileJob"] = true
		out["TileJobFrame"] = d.TileJobFrame
		out["TileJobTilesInX"] = d.TileJobTilesInX
		out["TileJobTilesInY"] = d.TileJobTilesInY
		out["TileJobTileCount"] = d.TileJobTileCount
	}

	SerializeIndexed("OutputDirectory", d.OutputDirectory, out)
	SerializeIndexed("OutputFilename", d.OutputFilename, out)
	SerializeIndexed("OutputFilename0Tile{}", d.OutputFilenameTile, out)
	SerializeIndexed("AssetDependency", d.AssetDependency, out)
	SerializeIndexed("ExtraInfo", d.ExtraInfo, out)
	SerializeKeyValue("ExtraInfoKeyValue", d.ExtraInfoKeyValue, out)
	SerializeKeyValue("EnvironmentKeyValue", d.EnvironmentKeyValue, out)

	// Escape hatch merged last, never by reflective attribute mutation.
	for key, value := range d.AdditionalFields {
		out[key] = value
	}
	return out
}

func putString(out map[string]interface{}, key, value string) {
	if value != "" {
		out[key] = value
	}
}

func putInt(out map[string]interface{}, key string, value *int) {
	if value != nil {
		out[key] = *value
	}
}

func putBool(out map[string]interface{}, key string, value *bool) {
	if value != nil {
		out[key] = *value
	}
}

func putList(out map[string]interface{}, key string, values []string) {
	if len(values) > 0 {
		out[key] = JoinList(values)
	}
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// PluginDescriptor is the renderer-specific parameter bag attached to a
// job. It is owned by the caller and passed through unmodified.
type PluginDescriptor map[string]interface{}

// Clone returns a shallow copy of the bag.
func (p PluginDescriptor) Clone() PluginDescriptor {
	out := make(PluginDescriptor, len(p))
	for key, value := range p {
		out[key] = value
	}
	return out
}

// Merge copies all entries of m into the bag, overriding existing keys.
func (p PluginDescriptor) Merge(m map[string]interface{}) {
	for key, value := range m {
		p[key] = value
	}
}
