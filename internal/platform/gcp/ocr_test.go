package gcp

import (
	"context"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/ocr"
)

func visionWord(text string, x0, y0, x1, y1 int32) *visionpb.Word {
	syms := make([]*visionpb.Symbol, 0, len(text))
	for _, r := range text {
		syms = append(syms, &visionpb.Symbol{Text: string(r)})
	}
	return &visionpb.Word{
		Symbols: syms,
		BoundingBox: &visionpb.BoundingPoly{Vertices: []*visionpb.Vertex{
			{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
		}},
	}
}

func TestOutputFromAnnotationWords(t *testing.T) {
	fta := &visionpb.TextAnnotation{
		Text: "Monday Art",
		Pages: []*visionpb.Page{{
			Width: 800, Height: 600,
			Blocks: []*visionpb.Block{{Paragraphs: []*visionpb.Paragraph{{Words: []*visionpb.Word{
				visionWord("Monday", 10, 20, 80, 40),
				visionWord("Art", 90, 22, 120, 41),
			}}}}},
		}, {
			Width: 800, Height: 600,
			Blocks: []*visionpb.Block{{Paragraphs: []*visionpb.Paragraph{{Words: []*visionpb.Word{
				{
					Symbols: []*visionpb.Symbol{{Text: "P"}, {Text: "2"}},
					BoundingBox: &visionpb.BoundingPoly{NormalizedVertices: []*visionpb.NormalizedVertex{
						{X: 0.5, Y: 0.5}, {X: 0.25, Y: 0.25},
					}},
				},
			}}}}},
		}},
	}
	out, ok := outputFromAnnotation(fta).(ocr.Positioned)
	if !ok {
		t.Fatalf("want positioned output")
	}
	if len(out) != 3 {
		t.Fatalf("words: want=3 got=%d", len(out))
	}
	if out[0].Text != "Monday" || out[0].BBox != (ocr.BBox{X0: 10, Y0: 20, X1: 80, Y1: 40}) {
		t.Fatalf("word 0: got=%+v", out[0])
	}
	want := ocr.BBox{X0: 200, Y0: 750, X1: 400, Y1: 900}
	if out[2].Text != "P2" || out[2].BBox != want {
		t.Fatalf("second page word: want=%+v got=%+v", want, out[2])
	}
}

func TestOutputFromAnnotationTextOnly(t *testing.T) {
	out := outputFromAnnotation(&visionpb.TextAnnotation{Text: " Monday\nArt "})
	if pt, ok := out.(ocr.PlainText); !ok || string(pt) != "Monday\nArt" {
		t.Fatalf("got=%#v", out)
	}
	if !ocr.IsEmpty(outputFromAnnotation(nil)) {
		t.Fatalf("nil annotation must be empty")
	}
}

func TestOutputFromDocument(t *testing.T) {
	text := "Tuesday Math\n"
	doc := &documentaipb.Document{
		Text: text,
		Pages: []*documentaipb.Document_Page{{
			Dimension: &documentaipb.Document_Page_Dimension{Width: 1000, Height: 500},
			Tokens: []*documentaipb.Document_Page_Token{
				{Layout: &documentaipb.Document_Page_Layout{
					TextAnchor: &documentaipb.Document_TextAnchor{TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: 0, EndIndex: 8}}},
					BoundingPoly: &documentaipb.BoundingPoly{NormalizedVertices: []*documentaipb.NormalizedVertex{
						{X: 0.125, Y: 0.25}, {X: 0.25, Y: 0.25}, {X: 0.25, Y: 0.5}, {X: 0.125, Y: 0.5},
					}},
				}},
				{Layout: &documentaipb.Document_Page_Layout{
					TextAnchor: &documentaipb.Document_TextAnchor{TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: 8, EndIndex: 13}}},
					BoundingPoly: &documentaipb.BoundingPoly{Vertices: []*documentaipb.Vertex{
						{X: 300, Y: 50}, {X: 360, Y: 100},
					}},
				}},
				{Layout: &documentaipb.Document_Page_Layout{
					TextAnchor: &documentaipb.Document_TextAnchor{TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: 12, EndIndex: 13}}},
				}},
			},
		}},
	}
	out, ok := outputFromDocument(doc).(ocr.Positioned)
	if !ok || len(out) != 2 {
		t.Fatalf("want 2 positioned tokens got=%#v", outputFromDocument(doc))
	}
	if out[0].Text != "Tuesday" || out[0].BBox != (ocr.BBox{X0: 125, Y0: 125, X1: 250, Y1: 250}) {
		t.Fatalf("token 0: got=%+v", out[0])
	}
	if out[1].Text != "Math" || out[1].BBox != (ocr.BBox{X0: 300, Y0: 50, X1: 360, Y1: 100}) {
		t.Fatalf("token 1: got=%+v", out[1])
	}

	if pt, ok := outputFromDocument(&documentaipb.Document{Text: "plain"}).(ocr.PlainText); !ok || pt != "plain" {
		t.Fatalf("text fallback: got=%#v", pt)
	}
}

func TestProcessorName(t *testing.T) {
	if got := processorName("p", "us", "abc", ""); got != "projects/p/locations/us/processors/abc" {
		t.Fatalf("got=%q", got)
	}
	if got := processorName("p", "eu", "abc", "v2"); got != "projects/p/locations/eu/processors/abc/processorVersions/v2" {
		t.Fatalf("got=%q", got)
	}
	if got := processorName("", "us", "abc", ""); got != "" {
		t.Fatalf("missing project: got=%q", got)
	}
}

type fakeOCR struct {
	out  ocr.Output
	mime string
}

func (f *fakeOCR) Recognize(_ context.Context, _ []byte, mimeType string) (ocr.Output, error) {
	f.mime = mimeType
	return f.out, nil
}

func TestRecognizerRoutesByMime(t *testing.T) {
	img := &fakeOCR{out: ocr.PlainText("image")}
	doc := &fakeOCR{out: ocr.PlainText("pdf")}
	r := &Recognizer{Images: img, Documents: doc}

	out, err := r.Recognize(context.Background(), []byte("x"), "Application/PDF")
	if err != nil || out != ocr.PlainText("pdf") {
		t.Fatalf("pdf: out=%v err=%v", out, err)
	}
	out, err = r.Recognize(context.Background(), []byte("x"), "image/png")
	if err != nil || out != ocr.PlainText("image") || img.mime != "image/png" {
		t.Fatalf("image: out=%v err=%v", out, err)
	}

	r = &Recognizer{Images: img}
	if _, err := r.Recognize(context.Background(), []byte("x"), "application/pdf"); err == nil {
		t.Fatalf("pdf without document ai must fail")
	}
}
