package script

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-slide-deck/internal/chat"
	"github.com/fpang/ai-slide-deck/internal/registry"
)

// BuildOptions controls how analyzed pages become the working page set.
type BuildOptions struct {
	// IncludeCover prepends a dedicated cover page unless the analysis
	// already produced one.
	IncludeCover bool
	// IncludeEnding appends a dedicated closing page unless the analysis
	// already produced one.
	IncludeEnding bool
	// CoverTitle and CoverSubtitle fill the synthesized cover page. An empty
	// title falls back to the course name from the analysis metadata.
	CoverTitle    string
	CoverSubtitle string
	// EndingTitle fills the synthesized closing page. Defaults to a
	// thank-you line.
	EndingTitle string
}

// BuildPages converts a script analysis into page records, optionally
// splicing in synthesized cover and closing pages. Pages with empty or
// placeholder narration are dropped.
func BuildPages(analysis *chat.ScriptAnalysis, opts BuildOptions) []registry.PageRecord {
	var pages []registry.PageRecord
	for _, p := range analysis.Pages {
		narration := strings.TrimSpace(p.Narration)
		if narration == "" || narration == "/" {
			continue
		}
		pages = append(pages, registry.PageRecord{
			Segment:     p.Segment,
			Narration:   p.Narration,
			Description: p.Description,
			VisualHint:  p.VisualHint,
			Kind:        detectPageKind(p, len(pages)),
		})
	}

	if opts.IncludeCover && !hasKind(pages, registry.KindCover) {
		title := opts.CoverTitle
		if title == "" {
			title = analysis.CourseMetadata.CourseName
		}
		cover := registry.PageRecord{
			Segment:     "opening",
			Narration:   "Cover: " + title,
			Description: opts.CoverSubtitle,
			Kind:        registry.KindCover,
		}
		pages = append([]registry.PageRecord{cover}, pages...)
	}

	if opts.IncludeEnding && !hasKind(pages, registry.KindEnding) {
		title := opts.EndingTitle
		if title == "" {
			title = "Thank you for watching"
		}
		pages = append(pages, registry.PageRecord{
			Segment:   "closing",
			Narration: title,
			Kind:      registry.KindEnding,
		})
	}

	log.Info().
		Int("pages", len(pages)).
		Bool("cover", hasKind(pages, registry.KindCover)).
		Bool("ending", hasKind(pages, registry.KindEnding)).
		Msg("Page set built")

	return pages
}

func hasKind(pages []registry.PageRecord, kind registry.PageKind) bool {
	for _, p := range pages {
		if p.Kind == kind {
			return true
		}
	}
	return false
}

// coverSegments and endingSegments are segment-name keywords used when the
// analysis did not label the page type explicitly.
var (
	coverSegments  = []string{"cover", "opening", "intro", "title"}
	endingSegments = []string{"ending", "closing", "thanks", "outro"}
)

// detectPageKind resolves a page's kind: the explicit analysis label wins,
// otherwise the segment name is matched against known cover/ending keywords.
// Only the first page can be a cover and the detected kind for any other
// position falls back to content.
func detectPageKind(p chat.AnalyzedPage, position int) registry.PageKind {
	switch strings.ToLower(strings.TrimSpace(p.PageType)) {
	case "cover":
		if position == 0 {
			return registry.KindCover
		}
		return registry.KindContent
	case "ending":
		return registry.KindEnding
	case "content":
		return registry.KindContent
	}

	segment := strings.ToLower(p.Segment)
	if position == 0 {
		for _, kw := range coverSegments {
			if strings.Contains(segment, kw) {
				return registry.KindCover
			}
		}
	}
	for _, kw := range endingSegments {
		if strings.Contains(segment, kw) {
			return registry.KindEnding
		}
	}
	return registry.KindContent
}
