package gcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/ocr"
)

// OCR turns an uploaded image or document into OCR output.
type OCR interface {
	Recognize(ctx context.Context, data []byte, mimeType string) (ocr.Output, error)
}

// Recognizer sends PDFs to Document AI and everything else to Vision.
type Recognizer struct {
	Images    OCR
	Documents OCR
}

func (r *Recognizer) Recognize(ctx context.Context, data []byte, mimeType string) (ocr.Output, error) {
	if r == nil {
		return nil, fmt.Errorf("ocr not configured")
	}
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if mt == "application/pdf" {
		if r.Documents == nil {
			return nil, fmt.Errorf("pdf ocr requires DOCUMENTAI_PROCESSOR_ID")
		}
		return r.Documents.Recognize(ctx, data, mt)
	}
	if r.Images == nil {
		return nil, fmt.Errorf("image ocr not configured")
	}
	return r.Images.Recognize(ctx, data, mt)
}

func orderBox(x0, y0, x1, y1 float64) ocr.BBox {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return ocr.BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// spanBox is the axis-aligned box around a set of points.
type spanBox struct {
	minX, minY, maxX, maxY float64
	n                      int
}

func (s *spanBox) add(x, y float64) {
	if s.n == 0 || x < s.minX {
		s.minX = x
	}
	if s.n == 0 || y < s.minY {
		s.minY = y
	}
	if s.n == 0 || x > s.maxX {
		s.maxX = x
	}
	if s.n == 0 || y > s.maxY {
		s.maxY = y
	}
	s.n++
}

func (s spanBox) box() (ocr.BBox, bool) {
	if s.n == 0 {
		return ocr.BBox{}, false
	}
	return orderBox(s.minX, s.minY, s.maxX, s.maxY), true
}
