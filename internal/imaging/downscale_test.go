package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/fpang/ai-slide-deck/internal/registry"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(x % 256), A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return buf.Bytes()
}

func decodeSize(t *testing.T, payload registry.ImagePayload) (int, int) {
	t.Helper()
	var img image.Image
	var err error
	switch payload.MIMEType {
	case "image/png":
		img, err = png.Decode(bytes.NewReader(payload.Data))
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(payload.Data))
	default:
		t.Fatalf("unexpected MIME type %q", payload.MIMEType)
	}
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestDownscaleShrinksLargeImage(t *testing.T) {
	payload := registry.ImagePayload{Data: encodePNG(t, 2048, 1024), MIMEType: "image/png"}

	got, err := Downscale(payload, 512)
	if err != nil {
		t.Fatalf("Downscale() error = %v", err)
	}
	w, h := decodeSize(t, got)
	if w != 512 || h != 256 {
		t.Errorf("resized to %dx%d, want 512x256", w, h)
	}
	if got.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q, want image/png preserved", got.MIMEType)
	}
}

func TestDownscalePreservesAspectForTallImage(t *testing.T) {
	payload := registry.ImagePayload{Data: encodePNG(t, 500, 1000), MIMEType: "image/png"}

	got, err := Downscale(payload, 200)
	if err != nil {
		t.Fatalf("Downscale() error = %v", err)
	}
	w, h := decodeSize(t, got)
	if w != 100 || h != 200 {
		t.Errorf("resized to %dx%d, want 100x200", w, h)
	}
}

func TestDownscaleSkipsSmallImage(t *testing.T) {
	data := encodePNG(t, 100, 80)
	payload := registry.ImagePayload{Data: data, MIMEType: "image/png"}

	got, err := Downscale(payload, 1024)
	if err != nil {
		t.Fatalf("Downscale() error = %v", err)
	}
	if !bytes.Equal(got.Data, data) {
		t.Error("small image was re-encoded instead of passed through")
	}
}

func TestDownscalePassesThroughUnsupportedFormat(t *testing.T) {
	payload := registry.ImagePayload{Data: []byte{1, 2, 3}, MIMEType: "image/webp"}

	got, err := Downscale(payload, 100)
	if err != nil {
		t.Fatalf("Downscale() error = %v", err)
	}
	if !bytes.Equal(got.Data, payload.Data) || got.MIMEType != "image/webp" {
		t.Error("unsupported format was modified")
	}
}

func TestDownscaleRejectsCorruptData(t *testing.T) {
	payload := registry.ImagePayload{Data: []byte("not a png"), MIMEType: "image/png"}

	if _, err := Downscale(payload, 100); err == nil {
		t.Error("Downscale() accepted corrupt PNG data")
	}
}

func TestFitDimensionsNeverZero(t *testing.T) {
	w, h := fitDimensions(10000, 1, 100)
	if w != 100 || h != 1 {
		t.Errorf("fitDimensions(10000, 1, 100) = %dx%d, want 100x1", w, h)
	}
}
