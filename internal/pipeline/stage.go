package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-slide-deck/internal/registry"
	"github.com/fpang/ai-slide-deck/internal/session"
)

// outcome classifies a settled job for the batch report.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeFailure
	outcomeSkipped
)

// executeJob runs one stage for one page. The registry admission check keeps
// a page from carrying two jobs at once; the session token check keeps a
// stale result from ever touching the registry.
func (r *Runner) executeJob(ctx context.Context, token session.Token, job Job, contextHint string) outcome {
	page, ok := r.reg.Page(job.PageIndex)
	if !ok {
		log.Warn().Int("page", job.PageIndex).Msg("Job references a page that no longer exists")
		return outcomeSkipped
	}

	switch job.Kind {
	case StageDescribe:
		return r.runDescribe(ctx, token, page, contextHint)
	case StageGenerateImage:
		return r.runGenerateImage(ctx, token, page)
	default:
		log.Warn().Str("kind", string(job.Kind)).Msg("Unknown stage kind")
		return outcomeSkipped
	}
}

func (r *Runner) runDescribe(ctx context.Context, token session.Token, page registry.PageRecord, contextHint string) outcome {
	if !r.reg.BeginStage(page.Index, registry.StatusDescribing) {
		return outcomeSkipped
	}

	cctx, cancel := context.WithTimeout(ctx, r.opts.DescribeTimeout)
	defer cancel()

	description, err := r.describer.Describe(cctx, DescribeRequest{
		Narration:   page.Narration,
		Segment:     page.Segment,
		VisualHint:  page.VisualHint,
		ContextHint: contextHint,
		CourseInfo:  r.opts.CourseInfo,
		Kind:        page.Kind,
		Reference:   r.opts.Reference,
	})

	// The token check runs under the registry lock together with the write,
	// so an invalidation can never slip in between them.
	current := func() bool { return r.guard.IsCurrent(token) }
	if err != nil {
		if !r.reg.SetErrorIf(page.Index, err.Error(), current) {
			log.Debug().Int("page", page.Index).Msg("Discarding stale description result")
			return outcomeSkipped
		}
		log.Error().Err(err).Int("page", page.Index).Msg("Describe stage failed")
		return outcomeFailure
	}

	if !r.reg.SetDescriptionIf(page.Index, description, current) {
		log.Debug().Int("page", page.Index).Msg("Discarding stale description result")
		return outcomeSkipped
	}
	log.Debug().Int("page", page.Index).Int("chars", len(description)).Msg("Description stored")
	return outcomeSuccess
}

func (r *Runner) runGenerateImage(ctx context.Context, token session.Token, page registry.PageRecord) outcome {
	if !r.reg.BeginStage(page.Index, registry.StatusGeneratingImage) {
		return outcomeSkipped
	}

	// Pages may skip the describe stage entirely; the narration itself is an
	// acceptable prompt.
	prompt := page.Description
	if prompt == "" {
		prompt = page.Narration
	}

	cctx, cancel := context.WithTimeout(ctx, r.opts.ImageTimeout)
	defer cancel()

	payload, err := r.generator.GenerateImage(cctx, ImageRequest{
		Prompt:     prompt,
		CourseInfo: r.opts.CourseInfo,
		Kind:       page.Kind,
		Reference:  r.opts.Reference,
	})

	current := func() bool { return r.guard.IsCurrent(token) }
	if err != nil {
		if !r.reg.SetErrorIf(page.Index, err.Error(), current) {
			log.Debug().Int("page", page.Index).Msg("Discarding stale image result")
			return outcomeSkipped
		}
		log.Error().Err(err).Int("page", page.Index).Msg("Image stage failed")
		return outcomeFailure
	}

	if !r.reg.AppendVersionIf(page.Index, payload, current) {
		log.Debug().Int("page", page.Index).Msg("Discarding stale image result")
		return outcomeSkipped
	}
	log.Debug().Int("page", page.Index).Str("mime", payload.MIMEType).Int("bytes", len(payload.Data)).Msg("Image stored")
	return outcomeSuccess
}
