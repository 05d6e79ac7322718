// Package registry holds the ordered collection of page records that is the
// single source of truth for pipeline state. All mutation goes through typed
// entry points that re-read the latest record under the lock, so concurrently
// settling jobs can never clobber a sibling page's result with a stale copy.
package registry

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Status is the lifecycle state of a single page.
type Status string

const (
	StatusPending         Status = "pending"
	StatusDescribing      Status = "describing"
	StatusGeneratingImage Status = "generatingImage"
	StatusCompleted       Status = "completed"
	StatusError           Status = "error"
)

// PageKind selects which prompt variant a page uses. It does not change
// how the pipeline schedules the page.
type PageKind string

const (
	KindCover   PageKind = "cover"
	KindContent PageKind = "content"
	KindEnding  PageKind = "ending"
)

// ImagePayload is one accepted image result: raw bytes plus the MIME type
// the generator declared for them.
type ImagePayload struct {
	Data     []byte
	MIMEType string
}

// PageRecord is one slide's unit of work, tracked through
// describe -> generate-image.
type PageRecord struct {
	ID          string
	Index       int
	Segment     string
	Narration   string
	VisualHint  string
	Description string

	// ImageVersions is append-only: regeneration must never destroy a
	// previously accepted result. SelectedVersion points into it and is
	// only valid while the slice is non-empty.
	ImageVersions   []ImagePayload
	SelectedVersion int

	Status       Status
	ErrorMessage string
	Kind         PageKind
}

// clone returns a deep enough copy for callers outside the lock: the
// versions slice header is duplicated so later appends cannot alias it.
// Payload bytes are shared because they are never mutated after acceptance.
func (p PageRecord) clone() PageRecord {
	out := p
	if p.ImageVersions != nil {
		out.ImageVersions = make([]ImagePayload, len(p.ImageVersions))
		copy(out.ImageVersions, p.ImageVersions)
	}
	return out
}

// CurrentImage returns the selected image payload, if any.
func (p PageRecord) CurrentImage() (ImagePayload, bool) {
	if len(p.ImageVersions) == 0 {
		return ImagePayload{}, false
	}
	if p.SelectedVersion < 0 || p.SelectedVersion >= len(p.ImageVersions) {
		return ImagePayload{}, false
	}
	return p.ImageVersions[p.SelectedVersion], true
}

// Registry is the shared mutable store of page records. Records are created
// in bulk when a script is parsed and are never deleted individually; a new
// upload replaces the whole set.
type Registry struct {
	mu    sync.RWMutex
	pages []PageRecord
}

// New creates a registry over the given records. Records without an ID get
// a fresh one, and Index is normalized to the slice position.
func New(pages []PageRecord) *Registry {
	r := &Registry{}
	r.Replace(pages)
	return r
}

// Replace swaps in a new page set. Callers must rotate the session token
// alongside so in-flight jobs from the old set cannot write into the new one.
func (r *Registry) Replace(pages []PageRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pages = make([]PageRecord, len(pages))
	for i, p := range pages {
		rec := p.clone()
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		rec.Index = i
		if rec.Status == "" {
			rec.Status = StatusPending
		}
		if rec.Kind == "" {
			rec.Kind = KindContent
		}
		// Supplied records may carry an arbitrary selection pointer; clamp it
		// so len(ImageVersions) > 0 implies 0 <= SelectedVersion < len.
		if rec.SelectedVersion < 0 || len(rec.ImageVersions) == 0 {
			rec.SelectedVersion = 0
		} else if rec.SelectedVersion >= len(rec.ImageVersions) {
			rec.SelectedVersion = len(rec.ImageVersions) - 1
		}
		r.pages[i] = rec
	}
}

// Len returns the number of pages.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pages)
}

// Page returns a copy of the record at index i.
func (r *Registry) Page(i int) (PageRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.pages) {
		return PageRecord{}, false
	}
	return r.pages[i].clone(), true
}

// Snapshot returns a copy of every record in index order. The assembler and
// progress reporting consume this; mutation must still go through Apply.
func (r *Registry) Snapshot() []PageRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PageRecord, len(r.pages))
	for i, p := range r.pages {
		out[i] = p.clone()
	}
	return out
}

// Apply runs fn against the latest record at index i under the write lock.
// This is the single mutation entry point: fn always sees current state,
// never a snapshot captured when the job was launched.
func (r *Registry) Apply(i int, fn func(*PageRecord)) bool {
	return r.ApplyIf(i, nil, fn)
}

// ApplyIf runs fn only when cond holds, with both evaluated under the write
// lock as one critical section. A session-token check passed as cond can
// therefore never race the write it gates: an invalidation lands either
// before the check (write refused) or after the write has completed. A nil
// cond always passes.
func (r *Registry) ApplyIf(i int, cond func() bool, fn func(*PageRecord)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.pages) {
		return false
	}
	if cond != nil && !cond() {
		return false
	}
	fn(&r.pages[i])
	return true
}

// BeginStage transitions page i into an in-flight status. It refuses when the
// page is already describing or generating, so a page can never have two jobs
// targeting it concurrently.
func (r *Registry) BeginStage(i int, s Status) bool {
	ok := false
	r.Apply(i, func(p *PageRecord) {
		if p.Status == StatusDescribing || p.Status == StatusGeneratingImage {
			return
		}
		p.Status = s
		p.ErrorMessage = ""
		ok = true
	})
	return ok
}

// SetDescription records a completed describe stage: the page returns to
// pending, ready for the image stage.
func (r *Registry) SetDescription(i int, desc string) bool {
	return r.SetDescriptionIf(i, desc, nil)
}

// SetDescriptionIf is SetDescription gated by cond, evaluated atomically
// with the write.
func (r *Registry) SetDescriptionIf(i int, desc string, cond func() bool) bool {
	return r.ApplyIf(i, cond, func(p *PageRecord) {
		p.Description = desc
		p.Status = StatusPending
		p.ErrorMessage = ""
	})
}

// SetError marks page i failed. The page keeps its description and any
// previously accepted image versions.
func (r *Registry) SetError(i int, msg string) bool {
	return r.SetErrorIf(i, msg, nil)
}

// SetErrorIf is SetError gated by cond, evaluated atomically with the write.
func (r *Registry) SetErrorIf(i int, msg string, cond func() bool) bool {
	return r.ApplyIf(i, cond, func(p *PageRecord) {
		p.Status = StatusError
		p.ErrorMessage = msg
	})
}

// AppendVersion records an accepted image result: the payload is appended to
// the page's history, becomes the selected version, and the page completes.
// Prior versions are never overwritten.
func (r *Registry) AppendVersion(i int, payload ImagePayload) bool {
	return r.AppendVersionIf(i, payload, nil)
}

// AppendVersionIf is AppendVersion gated by cond, evaluated atomically with
// the write.
func (r *Registry) AppendVersionIf(i int, payload ImagePayload, cond func() bool) bool {
	return r.ApplyIf(i, cond, func(p *PageRecord) {
		p.ImageVersions = append(p.ImageVersions, payload)
		p.SelectedVersion = len(p.ImageVersions) - 1
		p.Status = StatusCompleted
		p.ErrorMessage = ""
	})
}

// SelectVersion moves the selected pointer for page i. Out-of-range indices
// are a no-op, matching how the version switcher behaves at the edges.
func (r *Registry) SelectVersion(i, version int) bool {
	changed := false
	r.Apply(i, func(p *PageRecord) {
		if version < 0 || version >= len(p.ImageVersions) {
			return
		}
		p.SelectedVersion = version
		changed = true
	})
	return changed
}

// CurrentPayload returns the selected image for page i, if one exists.
func (r *Registry) CurrentPayload(i int) (ImagePayload, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.pages) {
		return ImagePayload{}, false
	}
	return r.pages[i].CurrentImage()
}

// ResetInFlight returns every describing/generatingImage page to pending and
// reports how many were reset. Called on stop so no page is left showing an
// in-progress status with no job behind it.
func (r *Registry) ResetInFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for i := range r.pages {
		switch r.pages[i].Status {
		case StatusDescribing, StatusGeneratingImage:
			r.pages[i].Status = StatusPending
			n++
		}
	}
	if n > 0 {
		log.Debug().Int("pages", n).Msg("Reset in-flight pages to pending")
	}
	return n
}

// CompletedCount returns how many pages are in the completed status.
func (r *Registry) CompletedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for i := range r.pages {
		if r.pages[i].Status == StatusCompleted {
			n++
		}
	}
	return n
}

// CountWithImage returns how many pages currently have a selected image.
func (r *Registry) CountWithImage() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for i := range r.pages {
		if _, ok := r.pages[i].CurrentImage(); ok {
			n++
		}
	}
	return n
}
