package submit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"yqhp/farm-submit/internal/farm"
	"yqhp/farm-submit/pkg/logger"
)

// Latency histogram bounds in milliseconds. Submissions past the upper
// bound are clamped, not dropped.
const (
	latencyMinMs = 1
	latencyMaxMs = 60_000
)

// Orchestrator drives submissions against one farm.
type Orchestrator struct {
	client *farm.Client
	hook   *Hook

	mu   sync.Mutex
	hist *hdrhistogram.Histogram
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithHook installs a pre-submit hook applied to every JobInfo map.
func WithHook(hook *Hook) Option {
	return func(o *Orchestrator) { o.hook = hook }
}

// NewOrchestrator creates an orchestrator for the given farm client.
func NewOrchestrator(client *farm.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client: client,
		hist:   hdrhistogram.New(latencyMinMs, latencyMaxMs, 3),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit drives one submission to Acknowledged or Failed and returns
// the farm job id.
func (o *Orchestrator) Submit(ctx context.Context, sub *Submission) (string, error) {
	switch sub.State() {
	case StateDraft:
		if err := sub.Assemble(); err != nil {
			return "", err
		}
	case StateAssembled:
	default:
		return "", NewStateError(fmt.Sprintf("cannot submit in state %q", sub.State()))
	}

	if o.hook != nil {
		patched, err := o.hook.Apply(sub.Payload.JobInfo)
		if err != nil {
			sub.fail(err)
			return "", err
		}
		sub.Payload.JobInfo = patched
	}

	sub.markSubmitted()
	start := time.Now()
	jobID, err := o.client.SubmitJob(ctx, sub.Payload)
	if err != nil {
		sub.fail(err)
		return "", err
	}
	o.recordLatency(time.Since(start))

	sub.acknowledge(jobID)
	logger.Info("submitted %q as job %s", sub.Job.Name, jobID)
	return jobID, nil
}

// SubmitChain submits the given submissions in order, wiring each one
// to depend on its predecessor's farm job id. The first failure aborts
// the chain, later submissions stay in Draft.
func (o *Orchestrator) SubmitChain(ctx context.Context, subs ...*Submission) ([]string, error) {
	ids := make([]string, 0, len(subs))
	for i, sub := range subs {
		if i > 0 {
			if sub.State() != StateDraft {
				return ids, NewStateError(
					fmt.Sprintf("chained submission %q already in state %q", sub.Job.Name, sub.State()))
			}
			sub.Job.AddDependency(ids[i-1])
		}
		id, err := o.Submit(ctx, sub)
		if err != nil {
			return ids, NewChainError(sub.Job.Name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (o *Orchestrator) recordLatency(d time.Duration) {
	ms := d.Milliseconds()
	if ms < latencyMinMs {
		ms = latencyMinMs
	}
	if ms > latencyMaxMs {
		ms = latencyMaxMs
	}
	o.mu.Lock()
	// RecordValue only fails outside the histogram bounds, which the
	// clamp above rules out.
	_ = o.hist.RecordValue(ms)
	o.mu.Unlock()
}

// LatencySummary aggregates submission round-trip times in
// milliseconds.
type LatencySummary struct {
	Count int64
	Mean  float64
	P50   int64
	P95   int64
	Max   int64
}

// LatencySummary returns stats over every acknowledged submission so
// far.
func (o *Orchestrator) LatencySummary() LatencySummary {
	o.mu.Lock()
	defer o.mu.Unlock()
	return LatencySummary{
		Count: o.hist.TotalCount(),
		Mean:  o.hist.Mean(),
		P50:   o.hist.ValueAtQuantile(50),
		P95:   o.hist.ValueAtQuantile(95),
		Max:   o.hist.Max(),
	}
}
