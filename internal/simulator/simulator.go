// Package simulator implements an in-memory stand-in for the farm web
// service. It backs the client and orchestrator tests and the
// `simulator` command for local experimentation.
package simulator

import (
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"yqhp/farm-submit/pkg/types"
)

// Simulator is a fake farm holding submitted jobs in memory.
type Simulator struct {
	mu    sync.Mutex
	jobs  map[string]*types.JobStatus
	order []string

	pools       []string
	groups      []string
	limitGroups []string
	workers     []string

	rejectPlugins map[string]bool

	app *fiber.App
}

// Option customizes a Simulator.
type Option func(*Simulator)

// WithPools sets the pool names the simulator reports.
func WithPools(pools ...string) Option {
	return func(s *Simulator) { s.pools = pools }
}

// WithGroups sets the group names the simulator reports.
func WithGroups(groups ...string) Option {
	return func(s *Simulator) { s.groups = groups }
}

// WithLimitGroups sets the limit group names the simulator reports.
func WithLimitGroups(limitGroups ...string) Option {
	return func(s *Simulator) { s.limitGroups = limitGroups }
}

// WithWorkers sets the worker names the simulator reports.
func WithWorkers(workers ...string) Option {
	return func(s *Simulator) { s.workers = workers }
}

// New creates a simulator with default scheduling classes.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		jobs:          make(map[string]*types.JobStatus),
		pools:         []string{"none"},
		groups:        []string{"none"},
		limitGroups:   []string{},
		workers:       []string{},
		rejectPlugins: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	app := fiber.New(fiber.Config{
		AppName:               "farm-simulator",
		DisableStartupMessage: true,
	})
	app.Post("/api/jobs", s.handleSubmit)
	app.Get("/api/jobs", s.handleQuery)
	app.Get("/api/pools", s.listHandler(&s.pools))
	app.Get("/api/groups", s.listHandler(&s.groups))
	app.Get("/api/limitgroups", s.listHandler(&s.limitGroups))
	app.Get("/api/workers", s.listHandler(&s.workers))
	s.app = app
	return s
}

// App exposes the fiber application for serving.
func (s *Simulator) App() *fiber.App {
	return s.app
}

// RejectPlugin makes submissions for the given plugin fail with a 400.
func (s *Simulator) RejectPlugin(plugin string) {
	s.mu.Lock()
	s.rejectPlugins[plugin] = true
	s.mu.Unlock()
}

// Jobs returns the stored jobs in submission order.
func (s *Simulator) Jobs() []types.JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.JobStatus, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.jobs[id])
	}
	return out
}

// Job returns one stored job by id.
func (s *Simulator) Job(id string) (types.JobStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return types.JobStatus{}, false
	}
	return *job, true
}

// SetStatus updates one job's status, for driving tests.
func (s *Simulator) SetStatus(id, status string) {
	s.mu.Lock()
	if job, ok := s.jobs[id]; ok {
		job.Status = status
	}
	s.mu.Unlock()
}

func (s *Simulator) handleSubmit(c *fiber.Ctx) error {
	var payload types.SubmissionPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "malformed submission body",
		})
	}

	name, _ := payload.JobInfo["Name"].(string)
	plugin, _ := payload.JobInfo["Plugin"].(string)
	if name == "" || plugin == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "JobInfo requires Name and Plugin",
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rejectPlugins[plugin] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "plugin " + plugin + " is not installed on this farm",
		})
	}

	job := &types.JobStatus{
		ID:        uuid.NewString(),
		Name:      name,
		Plugin:    plugin,
		Status:    "Queued",
		BatchName: stringField(payload.JobInfo, "BatchName"),
		Frames:    stringField(payload.JobInfo, "Frames"),
	}
	if deps := stringField(payload.JobInfo, "JobDependencies"); deps != "" {
		for _, dep := range strings.Split(deps, ",") {
			if dep = strings.TrimSpace(dep); dep != "" {
				job.Dependencies = append(job.Dependencies, dep)
			}
		}
	}
	for _, dep := range job.Dependencies {
		if _, ok := s.jobs[dep]; !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown dependency job " + dep,
			})
		}
	}

	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	return c.JSON(fiber.Map{"_id": job.ID})
}

func (s *Simulator) handleQuery(c *fiber.Ctx) error {
	jobID := c.Query("JobID")

	s.mu.Lock()
	defer s.mu.Unlock()
	result := []types.JobStatus{}
	if jobID != "" {
		if job, ok := s.jobs[jobID]; ok {
			result = append(result, *job)
		}
	} else {
		for _, id := range s.order {
			result = append(result, *s.jobs[id])
		}
	}
	return c.JSON(result)
}

func (s *Simulator) listHandler(names *[]string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		out := *names
		if out == nil {
			out = []string{}
		}
		return c.JSON(out)
	}
}

func stringField(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}
