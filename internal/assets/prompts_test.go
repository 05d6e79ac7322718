package assets

import (
	"strings"
	"testing"
)

func TestRenderAnalyzeScriptPromptInjectsScript(t *testing.T) {
	got := RenderAnalyzeScriptPrompt("Page one narration.\nPage two narration.")
	if !strings.Contains(got, "Page one narration.") {
		t.Error("rendered prompt missing script content")
	}
	if strings.Contains(got, "{{") {
		t.Error("rendered prompt still contains template markers")
	}
}

func TestRenderDescribeContentPromptVariants(t *testing.T) {
	data := DescribeData{Narration: "how caching works"}

	plain := RenderDescribeContentPrompt(data, false)
	withRef := RenderDescribeContentPrompt(data, true)

	for name, p := range map[string]string{"plain": plain, "withRef": withRef} {
		if !strings.Contains(p, "how caching works") {
			t.Errorf("%s: missing narration", name)
		}
	}
	if !strings.Contains(withRef, "template image") {
		t.Error("reference variant does not mention the template image")
	}
	if strings.Contains(plain, "template image") {
		t.Error("plain variant mentions a template image")
	}
}

func TestRenderDescribeContentPromptOmitsEmptyContext(t *testing.T) {
	without := RenderDescribeContentPrompt(DescribeData{Narration: "n"}, false)
	if strings.Contains(without, "Full script for context") {
		t.Error("context section rendered without context data")
	}

	with := RenderDescribeContentPrompt(DescribeData{Narration: "n", ScriptContext: "[Page 1] n"}, false)
	if !strings.Contains(with, "[Page 1] n") {
		t.Error("context data not rendered")
	}
}

func TestRenderDescribeContentPromptIncludesStyleKeywords(t *testing.T) {
	without := RenderDescribeContentPrompt(DescribeData{Narration: "n"}, false)
	if strings.Contains(without, "Style keywords") {
		t.Error("style keywords section rendered without a hint")
	}

	with := RenderDescribeContentPrompt(DescribeData{Narration: "n", VisualHint: "warm palette, flat illustration"}, false)
	if !strings.Contains(with, "warm palette, flat illustration") {
		t.Error("visual hint not rendered")
	}
}

func TestRenderCoverAndEndingPrompts(t *testing.T) {
	cover := RenderDescribeCoverPrompt(DescribeData{CourseInfo: "Course: Databases 101", Segment: "opening"})
	if !strings.Contains(cover, "Databases 101") || !strings.Contains(cover, "opening") {
		t.Error("cover prompt missing course info or segment")
	}

	ending := RenderDescribeEndingPrompt(DescribeData{CourseInfo: "Course: Databases 101"})
	if !strings.Contains(ending, "Databases 101") {
		t.Error("ending prompt missing course info")
	}
}

func TestRenderImagePrompts(t *testing.T) {
	data := ImageData{Description: "a flow diagram of the request path"}

	if got := RenderImageContentPrompt(data, true); !strings.Contains(got, data.Description) {
		t.Error("template image prompt missing description")
	}
	if got := RenderImageContentPrompt(data, false); !strings.Contains(got, data.Description) {
		t.Error("no-template image prompt missing description")
	}
	if got := RenderImageCoverPrompt(ImageData{CourseInfo: "Course: Go"}); !strings.Contains(got, "Course: Go") {
		t.Error("cover image prompt missing course info")
	}
	if ImageEndingPrompt == "" || ExtractIllustrationPrompt == "" {
		t.Error("static prompts are empty")
	}
}
