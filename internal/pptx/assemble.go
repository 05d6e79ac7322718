// Package pptx packages generated slide images into a PresentationML deck.
// The output is byte-for-byte deterministic for a given input: fixed part
// order, zero timestamps, and a fixed compression level, so re-exporting an
// unchanged deck produces an identical file.
package pptx

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-slide-deck/internal/registry"
)

// ErrEmptyInput is returned when there are no slide images to package.
var ErrEmptyInput = errors.New("no slide images to package")

// SlideImage is one exported slide in deck order.
type SlideImage struct {
	Data     []byte
	MIMEType string
}

// FromPages collects the currently selected image of every page, in page
// order. Pages without an image are skipped.
func FromPages(pages []registry.PageRecord) []SlideImage {
	var slides []SlideImage
	for _, p := range pages {
		if img, ok := p.CurrentImage(); ok {
			slides = append(slides, SlideImage{Data: img.Data, MIMEType: img.MIMEType})
		}
	}
	return slides
}

// Assemble writes a complete .pptx package containing one full-bleed slide
// per image, in input order. Returns ErrEmptyInput for an empty slide list.
func Assemble(w io.Writer, slides []SlideImage) error {
	if len(slides) == 0 {
		return ErrEmptyInput
	}

	zw := zip.NewWriter(w)
	// Deflate at best compression via klauspost/compress; XML parts shrink
	// well and the cost is paid once per export.
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	n := len(slides)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", contentTypesPart(n)},
		{"_rels/.rels", rootRelsPart()},
		{"ppt/presentation.xml", presentationPart(n)},
		{"ppt/_rels/presentation.xml.rels", presentationRelsPart(n)},
		{"ppt/slideMasters/slideMaster1.xml", []byte(slideMasterPart)},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", masterRelsPart()},
		{"ppt/slideLayouts/slideLayout1.xml", []byte(slideLayoutPart)},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", layoutRelsPart()},
		{"ppt/theme/theme1.xml", []byte(themePart)},
	}
	for _, part := range parts {
		if err := addPart(zw, part.name, part.data); err != nil {
			return err
		}
	}

	for i, slide := range slides {
		idx := i + 1
		ext := mediaExtension(slide.MIMEType)
		if err := addPart(zw, fmt.Sprintf("ppt/media/image%d.%s", idx, ext), slide.Data); err != nil {
			return err
		}
		if err := addPart(zw, fmt.Sprintf("ppt/slides/slide%d.xml", idx), slidePart(idx)); err != nil {
			return err
		}
		if err := addPart(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", idx), slideRelsPart(idx, ext)); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize package: %w", err)
	}

	log.Info().Int("slides", n).Msg("Deck assembled")
	return nil
}

// addPart writes one zip entry with a zero timestamp so the archive bytes
// depend only on the content.
func addPart(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("failed to create part %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("failed to write part %s: %w", name, err)
	}
	return nil
}

// mediaExtension maps an image MIME type to the media part extension.
// Unknown types fall back to png, matching the package manifest defaults.
func mediaExtension(mimeType string) string {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return "jpeg"
	default:
		return "png"
	}
}

// WriteImageFiles exports the slides as numbered image files in dir, for the
// images-only export mode. The directory is created if needed.
func WriteImageFiles(dir string, slides []SlideImage) error {
	if len(slides) == 0 {
		return ErrEmptyInput
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	for i, slide := range slides {
		name := fmt.Sprintf("slide%03d.%s", i+1, mediaExtension(slide.MIMEType))
		if err := os.WriteFile(filepath.Join(dir, name), slide.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	log.Info().Int("images", len(slides)).Str("dir", dir).Msg("Slide images written")
	return nil
}
