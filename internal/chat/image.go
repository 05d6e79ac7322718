package chat

// image.go provides a REST client for Gemini image-output models. Direct
// HTTP keeps the request shape under our control where the SDK's image
// output support lags the API, and makes the client trivial to fake in
// tests. It satisfies the pipeline's ImageGenerator contract.

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-slide-deck/internal/assets"
	"github.com/fpang/ai-slide-deck/internal/pipeline"
	"github.com/fpang/ai-slide-deck/internal/registry"
)

// geminiBaseURL is the Gemini REST API base URL.
const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// ImageClient calls a Gemini image-output model over REST to render slides.
type ImageClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewImageClient creates a client for slide image generation. An empty model
// falls back to the environment-resolved image model.
func NewImageClient(apiKey, model string) *ImageClient {
	if model == "" {
		model = GetImageModelName()
	}
	return &ImageClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // image generation can take 10-30s
		},
	}
}

// --- REST API request/response types ---

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *geminiBlobData `json:"inlineData,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiBlobData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// GenerateImage renders one slide image from its design description. The
// optional style template is attached inline before the prompt so the model
// can copy its background and frame.
func (c *ImageClient) GenerateImage(ctx context.Context, req pipeline.ImageRequest) (registry.ImagePayload, error) {
	prompt := buildImagePrompt(req)

	var parts []geminiPart
	if req.Reference != nil {
		parts = append(parts, geminiPart{
			InlineData: &geminiBlobData{
				MIMEType: req.Reference.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(req.Reference.Data),
			},
		})
	}
	parts = append(parts, geminiPart{Text: prompt})

	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}

	startTime := time.Now()
	log.Info().
		Str("model", c.model).
		Str("kind", string(req.Kind)).
		Bool("has_reference", req.Reference != nil).
		Msg("Requesting slide image from Gemini")

	payload, text, err := c.generate(ctx, c.model, body)
	if err != nil {
		return registry.ImagePayload{}, err
	}
	if payload.Data == nil {
		return registry.ImagePayload{}, fmt.Errorf("no image returned in response (text: %s)", truncateString(text, 200))
	}

	log.Info().
		Int("output_bytes", len(payload.Data)).
		Str("output_mime", payload.MIMEType).
		Dur("duration", time.Since(startTime)).
		Msg("Slide image generation complete")

	return payload, nil
}

// ExtractIllustration regenerates a standalone illustration from a cropped
// slide region, with all text stripped.
func (c *ImageClient) ExtractIllustration(ctx context.Context, region registry.ImagePayload) (registry.ImagePayload, error) {
	body := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{
					InlineData: &geminiBlobData{
						MIMEType: region.MIMEType,
						Data:     base64.StdEncoding.EncodeToString(region.Data),
					},
				},
				{Text: assets.ExtractIllustrationPrompt},
			},
		}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}

	payload, text, err := c.generate(ctx, c.model, body)
	if err != nil {
		return registry.ImagePayload{}, err
	}
	if payload.Data == nil {
		return registry.ImagePayload{}, fmt.Errorf("no image returned in response (text: %s)", truncateString(text, 200))
	}
	return payload, nil
}

// generate executes one REST call and extracts the first inline image plus
// any accompanying text from the response.
func (c *ImageClient) generate(ctx context.Context, model string, reqBody geminiRequest) (registry.ImagePayload, string, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return registry.ImagePayload{}, "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return registry.ImagePayload{}, "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return registry.ImagePayload{}, "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return registry.ImagePayload{}, "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", truncateString(string(respBody), 500)).
			Msg("Gemini image API returned error")
		return registry.ImagePayload{}, "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncateString(string(respBody), 200))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return registry.ImagePayload{}, "", fmt.Errorf("failed to parse response: %w", err)
	}
	if geminiResp.Error != nil {
		return registry.ImagePayload{}, "", fmt.Errorf("API error: %s (code: %d)", geminiResp.Error.Message, geminiResp.Error.Code)
	}

	var payload registry.ImagePayload
	var text string
	for _, candidate := range geminiResp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && payload.Data == nil {
				decoded, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return registry.ImagePayload{}, "", fmt.Errorf("failed to decode image data: %w", err)
				}
				payload = registry.ImagePayload{Data: decoded, MIMEType: part.InlineData.MIMEType}
			}
			if part.Text != "" {
				text += part.Text
			}
		}
	}
	return payload, text, nil
}

// buildImagePrompt selects the image prompt variant for the page kind.
func buildImagePrompt(req pipeline.ImageRequest) string {
	data := assets.ImageData{Description: req.Prompt, CourseInfo: req.CourseInfo}
	switch req.Kind {
	case registry.KindCover:
		return assets.RenderImageCoverPrompt(data)
	case registry.KindEnding:
		return assets.ImageEndingPrompt
	default:
		return assets.RenderImageContentPrompt(data, req.Reference != nil)
	}
}

// truncateString truncates a string to maxLen, appending "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
