// Package imaging resizes template reference images before they are attached
// to every model call. A full-resolution template inflates each request by
// megabytes for no quality gain, so references are capped at a maximum
// dimension once, up front.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"

	"github.com/fpang/ai-slide-deck/internal/registry"
)

// DefaultMaxDimension is the maximum width or height for a reference image.
const DefaultMaxDimension = 1024

// jpegQuality for re-encoded references. 85 keeps style detail legible to the
// model at a fraction of the original size.
const jpegQuality = 85

// Downscale resizes the payload so neither dimension exceeds maxDimension,
// preserving aspect ratio. Images already within bounds are returned
// unchanged. Only PNG and JPEG payloads are resized; other formats pass
// through untouched.
func Downscale(payload registry.ImagePayload, maxDimension int) (registry.ImagePayload, error) {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}

	var img image.Image
	var err error
	switch payload.MIMEType {
	case "image/png":
		img, err = png.Decode(bytes.NewReader(payload.Data))
	case "image/jpeg", "image/jpg":
		img, err = jpeg.Decode(bytes.NewReader(payload.Data))
	default:
		log.Debug().Str("mime", payload.MIMEType).Msg("Skipping downscale for unsupported format")
		return payload, nil
	}
	if err != nil {
		return registry.ImagePayload{}, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()
	if origWidth <= maxDimension && origHeight <= maxDimension {
		return payload, nil
	}

	newWidth, newHeight := fitDimensions(origWidth, origHeight, maxDimension)
	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	outMIME := payload.MIMEType
	switch payload.MIMEType {
	case "image/png":
		err = png.Encode(&buf, resized)
	default:
		outMIME = "image/jpeg"
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return registry.ImagePayload{}, fmt.Errorf("failed to encode resized image: %w", err)
	}

	log.Debug().
		Int("orig_width", origWidth).
		Int("orig_height", origHeight).
		Int("new_width", newWidth).
		Int("new_height", newHeight).
		Int("orig_bytes", len(payload.Data)).
		Int("new_bytes", buf.Len()).
		Msg("Reference image downscaled")

	return registry.ImagePayload{Data: buf.Bytes(), MIMEType: outMIME}, nil
}

// fitDimensions scales (width, height) down so the larger side equals
// maxDimension, preserving aspect ratio. Both results are at least 1.
func fitDimensions(width, height, maxDimension int) (int, int) {
	if width >= height {
		newWidth := maxDimension
		newHeight := height * maxDimension / width
		if newHeight < 1 {
			newHeight = 1
		}
		return newWidth, newHeight
	}
	newHeight := maxDimension
	newWidth := width * maxDimension / height
	if newWidth < 1 {
		newWidth = 1
	}
	return newWidth, newHeight
}
