// Package pipeline drives the describe and generate-image stages over the
// page registry: a bounded worker pool admits jobs, each job calls a remote
// collaborator, and results are written back only while the session token
// captured at launch is still current.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-slide-deck/internal/registry"
	"github.com/fpang/ai-slide-deck/internal/session"
)

var (
	// ErrBusy is returned when a batch is started while another is running.
	// Batches are rejected rather than queued.
	ErrBusy = errors.New("a batch is already running")

	// ErrInvalidLimit is returned for a non-positive concurrency limit.
	ErrInvalidLimit = errors.New("concurrency limit must be positive")
)

// BatchReport summarizes a settled batch. A failed page never aborts the
// batch; callers inspect Failed and decide whether to surface it.
type BatchReport struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

// Options tunes a Runner. Zero values fall back to defaults.
type Options struct {
	// DescribeTimeout bounds one text-collaborator call. Default 90s.
	DescribeTimeout time.Duration
	// ImageTimeout bounds one image-collaborator call. Default 120s.
	ImageTimeout time.Duration
	// Reference is the optional style template image forwarded to both
	// collaborators.
	Reference *registry.ImagePayload
	// CourseInfo is the formatted course metadata used by cover/ending
	// prompt variants.
	CourseInfo string
}

// Runner owns one registry's pipeline execution: batch admission, the two
// stage executors, and cooperative stop.
type Runner struct {
	reg       *registry.Registry
	guard     *session.Guard
	describer Describer
	generator ImageGenerator
	opts      Options

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	phase   string
}

// NewRunner wires a runner over the shared registry and session guard.
func NewRunner(reg *registry.Registry, guard *session.Guard, describer Describer, generator ImageGenerator, opts Options) *Runner {
	if opts.DescribeTimeout <= 0 {
		opts.DescribeTimeout = 90 * time.Second
	}
	if opts.ImageTimeout <= 0 {
		opts.ImageTimeout = 120 * time.Second
	}
	return &Runner{
		reg:       reg,
		guard:     guard,
		describer: describer,
		generator: generator,
		opts:      opts,
	}
}

// RunBatch submits jobs so that at most limit are executing at any instant
// and returns once every admitted job has settled. A stop request halts
// further admissions; jobs already running finish, but their results are
// discarded by the session guard and any in-flight statuses are swept back
// to pending before returning.
//
// limit <= 0 is rejected at call time. An empty job list returns immediately
// with a zero report. A second batch started while one is running is
// rejected with ErrBusy.
func (r *Runner) RunBatch(ctx context.Context, jobs []Job, limit int) (BatchReport, error) {
	if limit <= 0 {
		return BatchReport{}, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	if len(jobs) == 0 {
		return BatchReport{}, nil
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return BatchReport{}, ErrBusy
	}
	r.running = true
	bctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	defer func() {
		cancel()
		r.mu.Lock()
		r.running = false
		r.cancel = nil
		r.mu.Unlock()
	}()

	contextHint := r.buildContextHint()

	var succeeded, failed, skipped atomic.Int64

	workers := limit
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobCh := make(chan Job)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				// Launch time: the job captures the session token here and
				// may only write results while it is still current.
				token := r.guard.Current()
				switch r.executeJob(bctx, token, job, contextHint) {
				case outcomeSuccess:
					succeeded.Add(1)
				case outcomeFailure:
					failed.Add(1)
				default:
					skipped.Add(1)
				}
			}
		}()
	}

	admitted := 0
admit:
	for _, job := range jobs {
		if r.guard.Stopped() {
			break
		}
		select {
		case jobCh <- job:
			admitted++
		case <-bctx.Done():
			break admit
		}
	}
	close(jobCh)
	wg.Wait()

	if r.guard.Stopped() {
		// A worker may have moved a page into an in-flight status after the
		// stop sweep ran; sweep again now that everything has settled.
		r.reg.ResetInFlight()
	}

	report := BatchReport{
		Total:     len(jobs),
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
		Skipped:   int(skipped.Load()) + (len(jobs) - admitted),
	}

	log.Info().
		Int("total", report.Total).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Int("limit", limit).
		Msg("Batch settled")

	return report, nil
}

// Stop cooperatively cancels the current run: no new admissions, in-flight
// collaborator calls are aborted through their contexts, the session is
// invalidated so any result that still arrives is dropped, and in-progress
// pages return to pending.
func (r *Runner) Stop() {
	r.guard.RequestStop()
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
	r.reg.ResetInFlight()
}

// Busy reports whether a batch is currently running.
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Progress returns completed/total page counts and the current phase label.
func (r *Runner) Progress() (completed, total int, phase string) {
	r.mu.Lock()
	phase = r.phase
	r.mu.Unlock()
	return r.reg.CompletedCount(), r.reg.Len(), phase
}

func (r *Runner) setPhase(phase string) {
	r.mu.Lock()
	r.phase = phase
	r.mu.Unlock()
}

// DescribeJobs lists describe jobs for every page that has no description
// yet and is not already in flight.
func (r *Runner) DescribeJobs() []Job {
	var jobs []Job
	for _, p := range r.reg.Snapshot() {
		if p.Description != "" {
			continue
		}
		if p.Status == registry.StatusDescribing || p.Status == registry.StatusGeneratingImage {
			continue
		}
		jobs = append(jobs, Job{PageIndex: p.Index, Kind: StageDescribe})
	}
	return jobs
}

// ImageJobs lists generate-image jobs for every page without a selected
// image that is not already in flight.
func (r *Runner) ImageJobs() []Job {
	var jobs []Job
	for _, p := range r.reg.Snapshot() {
		if _, ok := p.CurrentImage(); ok {
			continue
		}
		if p.Status == registry.StatusDescribing || p.Status == registry.StatusGeneratingImage {
			continue
		}
		jobs = append(jobs, Job{PageIndex: p.Index, Kind: StageGenerateImage})
	}
	return jobs
}

// DescribeAll runs the describe stage over every page still missing a
// description.
func (r *Runner) DescribeAll(ctx context.Context, limit int) (BatchReport, error) {
	r.setPhase("generating descriptions")
	return r.RunBatch(ctx, r.DescribeJobs(), limit)
}

// GenerateAll runs the image stage over every page without a selected image.
func (r *Runner) GenerateAll(ctx context.Context, limit int) (BatchReport, error) {
	r.setPhase("generating images")
	return r.RunBatch(ctx, r.ImageJobs(), limit)
}

// RegeneratePage re-runs a single stage for one page. Regeneration is always
// an explicit user action and may re-enter a terminal state; it appends to
// the page's version history rather than replacing it.
func (r *Runner) RegeneratePage(ctx context.Context, pageIndex int, kind StageKind) (BatchReport, error) {
	return r.RunBatch(ctx, []Job{{PageIndex: pageIndex, Kind: kind}}, 1)
}

// buildContextHint renders the whole script as numbered pages so the
// describe collaborator can keep each slide consistent with its neighbors.
func (r *Runner) buildContextHint() string {
	pages := r.reg.Snapshot()
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		var sb strings.Builder
		fmt.Fprintf(&sb, "[Page %d]", p.Index+1)
		if p.Segment != "" {
			fmt.Fprintf(&sb, " (%s)", p.Segment)
		}
		sb.WriteString(" ")
		sb.WriteString(p.Narration)
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, "\n\n")
}
