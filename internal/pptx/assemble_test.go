package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fpang/ai-slide-deck/internal/registry"
)

func testSlides(n int) []SlideImage {
	slides := make([]SlideImage, n)
	for i := range slides {
		slides[i] = SlideImage{
			Data:     []byte(fmt.Sprintf("image-bytes-%d", i)),
			MIMEType: "image/png",
		}
	}
	return slides
}

func assemble(t *testing.T, slides []SlideImage) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Assemble(&buf, slides); err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	return buf.Bytes()
}

func readPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("opening package: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", name, err)
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		return string(content)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func TestAssembleEmptyInput(t *testing.T) {
	var buf bytes.Buffer
	if err := Assemble(&buf, nil); err != ErrEmptyInput {
		t.Errorf("Assemble(nil) error = %v, want ErrEmptyInput", err)
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	slides := testSlides(3)

	first := assemble(t, slides)
	second := assemble(t, slides)

	if !bytes.Equal(first, second) {
		t.Error("two assemblies of the same input differ")
	}
}

func TestAssembleRoundTripPreservesImagesAndOrder(t *testing.T) {
	const n = 5
	slides := testSlides(n)
	data := assemble(t, slides)

	m, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if m.SlideCount != n {
		t.Errorf("SlideCount = %d, want %d", m.SlideCount, n)
	}
	if len(m.MediaNames) != n {
		t.Fatalf("media parts = %d, want %d", len(m.MediaNames), n)
	}

	media, err := ExtractMedia(data)
	if err != nil {
		t.Fatalf("ExtractMedia() error = %v", err)
	}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("ppt/media/image%d.png", i+1)
		if !bytes.Equal(media[name], slides[i].Data) {
			t.Errorf("%s does not match input slide %d", name, i)
		}
	}
}

func TestAssemblePartOrderIsFixed(t *testing.T) {
	data := assemble(t, testSlides(2))

	m, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	want := []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"ppt/presentation.xml",
		"ppt/_rels/presentation.xml.rels",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideMasters/_rels/slideMaster1.xml.rels",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/slideLayouts/_rels/slideLayout1.xml.rels",
		"ppt/theme/theme1.xml",
		"ppt/media/image1.png",
		"ppt/slides/slide1.xml",
		"ppt/slides/_rels/slide1.xml.rels",
		"ppt/media/image2.png",
		"ppt/slides/slide2.xml",
		"ppt/slides/_rels/slide2.xml.rels",
	}
	if len(m.PartNames) != len(want) {
		t.Fatalf("parts = %d, want %d:\n%v", len(m.PartNames), len(want), m.PartNames)
	}
	for i, name := range want {
		if m.PartNames[i] != name {
			t.Errorf("part[%d] = %s, want %s", i, m.PartNames[i], name)
		}
	}
}

func TestAssembleManifestAndRelationships(t *testing.T) {
	data := assemble(t, []SlideImage{
		{Data: []byte("a"), MIMEType: "image/png"},
		{Data: []byte("b"), MIMEType: "image/jpeg"},
	})

	contentTypes := readPart(t, data, "[Content_Types].xml")
	for _, want := range []string{
		`Extension="png"`,
		`Extension="jpeg"`,
		`PartName="/ppt/slides/slide1.xml"`,
		`PartName="/ppt/slides/slide2.xml"`,
	} {
		if !strings.Contains(contentTypes, want) {
			t.Errorf("[Content_Types].xml missing %s", want)
		}
	}

	presentation := readPart(t, data, "ppt/presentation.xml")
	for _, want := range []string{
		`<p:sldId id="256" r:id="rId2"/>`,
		`<p:sldId id="257" r:id="rId3"/>`,
		`<p:sldSz cx="9144000" cy="5143500" type="screen16x9"/>`,
	} {
		if !strings.Contains(presentation, want) {
			t.Errorf("presentation.xml missing %s", want)
		}
	}

	slide2Rels := readPart(t, data, "ppt/slides/_rels/slide2.xml.rels")
	if !strings.Contains(slide2Rels, `Target="../media/image2.jpeg"`) {
		t.Error("slide2 rels does not reference its jpeg media part")
	}

	slide1 := readPart(t, data, "ppt/slides/slide1.xml")
	if !strings.Contains(slide1, `<a:ext cx="9144000" cy="5143500"/>`) {
		t.Error("slide picture does not cover the full slide area")
	}
	if !strings.Contains(slide1, `r:embed="rId2"`) {
		t.Error("slide picture does not reference rId2")
	}
}

func TestFromPagesSkipsPagesWithoutImages(t *testing.T) {
	reg := registry.New([]registry.PageRecord{
		{Narration: "one"},
		{Narration: "two"},
		{Narration: "three"},
	})
	reg.AppendVersion(0, registry.ImagePayload{Data: []byte("first"), MIMEType: "image/png"})
	reg.AppendVersion(2, registry.ImagePayload{Data: []byte("third"), MIMEType: "image/jpeg"})

	slides := FromPages(reg.Snapshot())
	if len(slides) != 2 {
		t.Fatalf("slides = %d, want 2", len(slides))
	}
	if string(slides[0].Data) != "first" || string(slides[1].Data) != "third" {
		t.Error("slides are not in page order")
	}
}

func TestFromPagesUsesSelectedVersion(t *testing.T) {
	reg := registry.New([]registry.PageRecord{{Narration: "one"}})
	reg.AppendVersion(0, registry.ImagePayload{Data: []byte("v0"), MIMEType: "image/png"})
	reg.AppendVersion(0, registry.ImagePayload{Data: []byte("v1"), MIMEType: "image/png"})
	reg.SelectVersion(0, 0)

	slides := FromPages(reg.Snapshot())
	if len(slides) != 1 || string(slides[0].Data) != "v0" {
		t.Errorf("exported %q, want the selected version v0", slides[0].Data)
	}
}

func TestWriteImageFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	slides := []SlideImage{
		{Data: []byte("a"), MIMEType: "image/png"},
		{Data: []byte("b"), MIMEType: "image/jpeg"},
	}

	if err := WriteImageFiles(dir, slides); err != nil {
		t.Fatalf("WriteImageFiles() error = %v", err)
	}

	for i, want := range []string{"slide001.png", "slide002.jpeg"} {
		content, err := os.ReadFile(filepath.Join(dir, want))
		if err != nil {
			t.Fatalf("reading %s: %v", want, err)
		}
		if !bytes.Equal(content, slides[i].Data) {
			t.Errorf("%s content mismatch", want)
		}
	}

	if err := WriteImageFiles(dir, nil); err != ErrEmptyInput {
		t.Errorf("WriteImageFiles(nil) error = %v, want ErrEmptyInput", err)
	}
}
