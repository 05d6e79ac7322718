// Package assets provides embedded static assets for the application.
//
// Prompt templates are stored as text files under prompts/ and embedded at
// compile time, so the binary is self-contained and prompt wording can be
// reviewed and diffed like any other source.
package assets

import (
	"bytes"
	_ "embed"
	"text/template"
)

// --- Static prompts (no dynamic data) ---

// ExtractIllustrationPrompt regenerates a standalone illustration from a
// cropped slide region, stripping any text.
//
//go:embed prompts/extract-illustration.txt
var ExtractIllustrationPrompt string

// ImageEndingPrompt generates the closing slide. The ending design is fully
// specified by the prompt itself.
//
//go:embed prompts/image-ending.txt
var ImageEndingPrompt string

// --- Dynamic prompt templates ---

//go:embed prompts/analyze-script.txt
var analyzeScriptTemplate string

//go:embed prompts/describe-content.txt
var describeContentTemplate string

//go:embed prompts/describe-content-template.txt
var describeContentWithTemplateTemplate string

//go:embed prompts/describe-cover.txt
var describeCoverTemplate string

//go:embed prompts/describe-ending.txt
var describeEndingTemplate string

//go:embed prompts/image-content.txt
var imageContentTemplate string

//go:embed prompts/image-content-no-template.txt
var imageContentNoTemplateTemplate string

//go:embed prompts/image-cover.txt
var imageCoverTemplate string

// Pre-parsed templates. template.Must panics on malformed templates, catching
// errors at program startup rather than at call time.
var (
	analyzeScriptTmpl      = template.Must(template.New("analyze").Parse(analyzeScriptTemplate))
	describeContentTmpl    = template.Must(template.New("describe").Parse(describeContentTemplate))
	describeContentRefTmpl = template.Must(template.New("describe-ref").Parse(describeContentWithTemplateTemplate))
	describeCoverTmpl      = template.Must(template.New("describe-cover").Parse(describeCoverTemplate))
	describeEndingTmpl     = template.Must(template.New("describe-ending").Parse(describeEndingTemplate))
	imageContentTmpl       = template.Must(template.New("image").Parse(imageContentTemplate))
	imageContentNoRefTmpl  = template.Must(template.New("image-noref").Parse(imageContentNoTemplateTemplate))
	imageCoverTmpl         = template.Must(template.New("image-cover").Parse(imageCoverTemplate))
)

// DescribeData holds the dynamic data injected into the describe prompt
// templates. Unused fields render as empty sections.
type DescribeData struct {
	Narration     string
	Segment       string
	VisualHint    string
	CourseInfo    string
	ScriptContext string
}

// ImageData holds the dynamic data injected into the image prompt templates.
type ImageData struct {
	Description string
	CourseInfo  string
}

// RenderAnalyzeScriptPrompt renders the whole-script analysis prompt with the
// raw script text.
func RenderAnalyzeScriptPrompt(scriptContent string) string {
	return render(analyzeScriptTmpl, struct{ ScriptContent string }{scriptContent})
}

// RenderDescribeContentPrompt renders the content-slide design prompt.
// withReference selects the variant that instructs the model to follow the
// attached template image's style.
func RenderDescribeContentPrompt(data DescribeData, withReference bool) string {
	if withReference {
		return render(describeContentRefTmpl, data)
	}
	return render(describeContentTmpl, data)
}

// RenderDescribeCoverPrompt renders the cover-slide design prompt.
func RenderDescribeCoverPrompt(data DescribeData) string {
	return render(describeCoverTmpl, data)
}

// RenderDescribeEndingPrompt renders the closing-slide design prompt.
func RenderDescribeEndingPrompt(data DescribeData) string {
	return render(describeEndingTmpl, data)
}

// RenderImageContentPrompt renders the content-slide image prompt.
// withReference selects the variant that demands an exact copy of the
// template's background and frame.
func RenderImageContentPrompt(data ImageData, withReference bool) string {
	if withReference {
		return render(imageContentTmpl, data)
	}
	return render(imageContentNoRefTmpl, data)
}

// RenderImageCoverPrompt renders the cover-slide image prompt.
func RenderImageCoverPrompt(data ImageData) string {
	return render(imageCoverTmpl, data)
}

// render executes a pre-parsed template. Execution errors are not expected
// with these simple templates; whatever rendered is returned.
func render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}
