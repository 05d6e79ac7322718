package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
)

// Manifest summarizes an assembled deck for verification.
type Manifest struct {
	// SlideCount is the number of slide parts in the package.
	SlideCount int
	// PartNames lists every entry in archive order.
	PartNames []string
	// MediaNames lists the media entries in slide order.
	MediaNames []string
}

var (
	slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	mediaPartRe = regexp.MustCompile(`^ppt/media/image(\d+)\.\w+$`)
)

// Inspect reads an assembled deck and returns its manifest.
func Inspect(data []byte) (Manifest, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to open package: %w", err)
	}

	var m Manifest
	type numbered struct {
		n    int
		name string
	}
	var media []numbered
	for _, f := range zr.File {
		m.PartNames = append(m.PartNames, f.Name)
		if slidePartRe.MatchString(f.Name) {
			m.SlideCount++
		}
		if match := mediaPartRe.FindStringSubmatch(f.Name); match != nil {
			n, _ := strconv.Atoi(match[1])
			media = append(media, numbered{n: n, name: f.Name})
		}
	}
	sort.Slice(media, func(i, j int) bool { return media[i].n < media[j].n })
	for _, mn := range media {
		m.MediaNames = append(m.MediaNames, mn.name)
	}
	return m, nil
}

// ExtractMedia reads an assembled deck and returns the media bytes keyed by
// part name.
func ExtractMedia(data []byte) (map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open package: %w", err)
	}

	media := make(map[string][]byte)
	for _, f := range zr.File {
		if !mediaPartRe.MatchString(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		media[f.Name] = content
	}
	return media, nil
}
