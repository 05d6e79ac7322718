package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/ai-slide-deck/internal/assets"
	"github.com/fpang/ai-slide-deck/internal/pipeline"
	"github.com/fpang/ai-slide-deck/internal/registry"
)

// GeminiDescriber turns one page's narration into a slide design description
// using a Gemini text model. It satisfies the pipeline's Describer contract.
type GeminiDescriber struct {
	client *genai.Client
	model  string
}

// NewDescriber creates a describer over an authenticated client. An empty
// model falls back to the environment-resolved text model.
func NewDescriber(client *genai.Client, model string) *GeminiDescriber {
	if model == "" {
		model = GetModelName()
	}
	return &GeminiDescriber{client: client, model: model}
}

// Describe sends the page narration (plus the optional style template image)
// to Gemini and returns the slide design text.
func (d *GeminiDescriber) Describe(ctx context.Context, req pipeline.DescribeRequest) (string, error) {
	prompt := buildDescribePrompt(req)

	// Reference image first, then the text prompt, mirroring how the model
	// expects multimodal input ordered.
	var parts []*genai.Part
	if req.Reference != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: req.Reference.MIMEType,
				Data:     req.Reference.Data,
			},
		})
	}
	parts = append(parts, &genai.Part{Text: prompt})
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	callStart := time.Now()
	log.Debug().
		Str("model", d.model).
		Str("kind", string(req.Kind)).
		Int("prompt_length", len(prompt)).
		Bool("has_reference", req.Reference != nil).
		Msg("Starting Gemini API call for slide description")

	resp, err := d.client.Models.GenerateContent(ctx, d.model, contents, nil)
	duration := time.Since(callStart)
	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("Failed to generate slide description")
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("received empty response from Gemini API")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("received empty description from Gemini API")
	}

	log.Debug().
		Int("response_length", len(text)).
		Dur("duration", duration).
		Msg("Slide description received")

	return text, nil
}

// buildDescribePrompt selects the prompt variant for the page kind.
func buildDescribePrompt(req pipeline.DescribeRequest) string {
	data := assets.DescribeData{
		Narration:     req.Narration,
		Segment:       req.Segment,
		VisualHint:    req.VisualHint,
		CourseInfo:    req.CourseInfo,
		ScriptContext: req.ContextHint,
	}
	switch req.Kind {
	case registry.KindCover:
		return assets.RenderDescribeCoverPrompt(data)
	case registry.KindEnding:
		return assets.RenderDescribeEndingPrompt(data)
	default:
		return assets.RenderDescribeContentPrompt(data, req.Reference != nil)
	}
}
