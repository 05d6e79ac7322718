package pipeline

import (
	"context"

	"github.com/fpang/ai-slide-deck/internal/registry"
)

// StageKind identifies which pipeline stage a job runs.
type StageKind string

const (
	StageDescribe      StageKind = "describe"
	StageGenerateImage StageKind = "generateImage"
)

// Job is a stateless work descriptor: one page, one stage. All mutable state
// lives in the page registry.
type Job struct {
	PageIndex int
	Kind      StageKind
}

// DescribeRequest carries everything the text collaborator needs to design
// one slide: the page's narration, the whole-script context, optional course
// metadata, the page kind (which selects the prompt variant), and an optional
// style reference image.
type DescribeRequest struct {
	Narration   string
	Segment     string
	VisualHint  string
	ContextHint string
	CourseInfo  string
	Kind        registry.PageKind
	Reference   *registry.ImagePayload
}

// Describer is the text-generation collaborator. Implementations are treated
// as black-box, possibly slow, possibly failing remote calls; they must honor
// ctx cancellation.
type Describer interface {
	Describe(ctx context.Context, req DescribeRequest) (string, error)
}

// ImageRequest carries the prompt for one slide image plus an optional style
// reference image.
type ImageRequest struct {
	Prompt     string
	CourseInfo string
	Kind       registry.PageKind
	Reference  *registry.ImagePayload
}

// ImageGenerator is the image-generation collaborator.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (registry.ImagePayload, error)
}
