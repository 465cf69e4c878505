package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/ocr"
	"github.com/yungbote/lessonplan-backend/internal/platform/ctxutil"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

type Vision struct {
	log     *logger.Logger
	client  *vision.ImageAnnotatorClient
	timeout time.Duration
}

// NewVision builds an image OCR client over DOCUMENT_TEXT_DETECTION.
func NewVision(log *logger.Logger) (*Vision, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	c, err := vision.NewImageAnnotatorClient(context.Background(), ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &Vision{log: log.With("service", "gcp.Vision"), client: c, timeout: 60 * time.Second}, nil
}

func (s *Vision) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *Vision) Recognize(ctx context.Context, img []byte, mimeType string) (ocr.Output, error) {
	if len(img) == 0 {
		return ocr.PlainText(""), nil
	}
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := &visionpb.BatchAnnotateImagesRequest{Requests: []*visionpb.AnnotateImageRequest{{
		Image:    &visionpb.Image{Content: img},
		Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
	}}}
	resp, err := s.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return ocr.PlainText(""), nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}
	out := outputFromAnnotation(r0.FullTextAnnotation)
	s.log.Debug("Vision OCR done", "mime_type", mimeType, "kind", ocr.Kind(out))
	return out, nil
}

// outputFromAnnotation prefers word boxes and falls back to the flat text.
func outputFromAnnotation(fta *visionpb.TextAnnotation) ocr.Output {
	if fta == nil {
		return ocr.PlainText("")
	}
	if words := wordsFromAnnotation(fta); len(words) > 0 {
		return words
	}
	return ocr.PlainText(strings.TrimSpace(fta.Text))
}

// wordsFromAnnotation flattens pages into one coordinate space; each page is
// stacked below the previous one.
func wordsFromAnnotation(fta *visionpb.TextAnnotation) ocr.Positioned {
	var out ocr.Positioned
	yOffset := 0.0
	for _, pg := range fta.GetPages() {
		if pg == nil {
			continue
		}
		w, h := float64(pg.GetWidth()), float64(pg.GetHeight())
		for _, b := range pg.GetBlocks() {
			for _, p := range b.GetParagraphs() {
				for _, word := range p.GetWords() {
					var sb strings.Builder
					for _, sym := range word.GetSymbols() {
						sb.WriteString(sym.GetText())
					}
					text := strings.TrimSpace(sb.String())
					if text == "" {
						continue
					}
					box, ok := visionBox(word.GetBoundingBox(), w, h)
					if !ok {
						continue
					}
					box.Y0 += yOffset
					box.Y1 += yOffset
					out = append(out, ocr.WordToken{Text: text, BBox: box})
				}
			}
		}
		yOffset += h
	}
	return out
}

func visionBox(bp *visionpb.BoundingPoly, w, h float64) (ocr.BBox, bool) {
	var s spanBox
	if len(bp.GetVertices()) > 0 {
		for _, v := range bp.GetVertices() {
			s.add(float64(v.GetX()), float64(v.GetY()))
		}
		return s.box()
	}
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	for _, v := range bp.GetNormalizedVertices() {
		s.add(float64(v.GetX())*w, float64(v.GetY())*h)
	}
	return s.box()
}
