package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/ai-slide-deck/internal/assets"
	"github.com/fpang/ai-slide-deck/internal/jsonutil"
)

// CourseMetadata is the course information extracted from the script. Fields
// the model cannot identify are empty strings.
type CourseMetadata struct {
	CourseName   string `json:"courseName"`
	TextbookName string `json:"textbookName"`
	ChapterName  string `json:"chapterName"`
	UnitName     string `json:"unitName"`
	School       string `json:"school"`
	Major        string `json:"major"`
	Teacher      string `json:"teacher"`
	ExtraInfo    string `json:"extraInfo"`
}

// Format renders the metadata as labeled lines for prompt injection, skipping
// empty fields.
func (m CourseMetadata) Format() string {
	var sb strings.Builder
	add := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "%s: %s\n", label, value)
		}
	}
	add("Course", m.CourseName)
	add("Textbook", m.TextbookName)
	add("Chapter", m.ChapterName)
	add("Unit", m.UnitName)
	add("School", m.School)
	add("Major", m.Major)
	add("Teacher", m.Teacher)
	add("Notes", m.ExtraInfo)
	return strings.TrimRight(sb.String(), "\n")
}

// AnalyzedPage is one page produced by whole-script analysis.
type AnalyzedPage struct {
	Segment     string `json:"segment"`
	Narration   string `json:"narration"`
	Description string `json:"description"`
	VisualHint  string `json:"visualHint"`
	PageType    string `json:"pageType"`
}

// ScriptAnalysis is the structured result of analyzing the narration script
// as a whole: course metadata plus the page split with per-page designs.
type ScriptAnalysis struct {
	CourseMetadata CourseMetadata `json:"courseMetadata"`
	Pages          []AnalyzedPage `json:"pages"`
}

// AnalyzeScript sends the full narration script to Gemini in a single call
// and returns the page split with per-page visual designs. Analyzing the
// whole script at once lets the model keep adjacent pages visually coherent,
// which per-page analysis cannot do.
func AnalyzeScript(ctx context.Context, client *genai.Client, scriptContent string) (*ScriptAnalysis, error) {
	if strings.TrimSpace(scriptContent) == "" {
		return nil, fmt.Errorf("script content is empty")
	}

	prompt := assets.RenderAnalyzeScriptPrompt(scriptContent)
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}}

	modelName := GetModelName()
	callStart := time.Now()
	log.Info().
		Str("model", modelName).
		Int("script_length", len(scriptContent)).
		Msg("Analyzing full script")

	resp, err := client.Models.GenerateContent(ctx, modelName, contents, nil)
	duration := time.Since(callStart)
	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("Failed to analyze script")
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("received empty response from Gemini API")
	}

	analysis, err := jsonutil.Decode[ScriptAnalysis](resp.Text())
	if err != nil {
		return nil, fmt.Errorf("script analysis response: %w", err)
	}
	if len(analysis.Pages) == 0 {
		return nil, fmt.Errorf("script analysis returned no pages")
	}

	log.Info().
		Int("pages", len(analysis.Pages)).
		Str("course", analysis.CourseMetadata.CourseName).
		Dur("duration", duration).
		Msg("Script analysis complete")

	return &analysis, nil
}
