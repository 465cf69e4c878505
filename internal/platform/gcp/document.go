package gcp

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/ocr"
	"github.com/yungbote/lessonplan-backend/internal/platform/ctxutil"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

type Document struct {
	log       *logger.Logger
	client    *documentai.DocumentProcessorClient
	processor string
	timeout   time.Duration
}

// NewDocument builds a Document AI OCR client from DOCUMENTAI_* env.
func NewDocument(log *logger.Logger) (*Document, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	location := strings.TrimSpace(os.Getenv("DOCUMENTAI_LOCATION"))
	if location == "" {
		location = "us"
	}
	name := processorName(
		os.Getenv("DOCUMENTAI_PROJECT_ID"),
		location,
		os.Getenv("DOCUMENTAI_PROCESSOR_ID"),
		os.Getenv("DOCUMENTAI_PROCESSOR_VERSION"),
	)
	if name == "" {
		return nil, fmt.Errorf("missing DOCUMENTAI_PROJECT_ID or DOCUMENTAI_PROCESSOR_ID")
	}

	// Document AI needs the regional endpoint.
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)
	opts := append([]option.ClientOption{option.WithEndpoint(endpoint)}, ClientOptionsFromEnv()...)
	c, err := documentai.NewDocumentProcessorClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}
	slog := log.With("service", "gcp.Document")
	slog.Info("Document AI initialized", "endpoint", endpoint)
	return &Document{log: slog, client: c, processor: name, timeout: 3 * time.Minute}, nil
}

func (s *Document) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *Document) Recognize(ctx context.Context, data []byte, mimeType string) (ocr.Output, error) {
	if len(data) == 0 {
		return ocr.PlainText(""), nil
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: s.processor,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{Content: data, MimeType: mimeType},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	out := outputFromDocument(resp.GetDocument())
	s.log.Debug("Document AI OCR done", "mime_type", mimeType, "kind", ocr.Kind(out))
	return out, nil
}

func outputFromDocument(doc *documentaipb.Document) ocr.Output {
	if doc == nil {
		return ocr.PlainText("")
	}
	if words := tokensFromDocument(doc); len(words) > 0 {
		return words
	}
	return ocr.PlainText(strings.TrimSpace(doc.GetText()))
}

// tokensFromDocument maps page tokens to words. Normalized vertices are
// scaled by the page dimension and pages are stacked vertically.
func tokensFromDocument(doc *documentaipb.Document) ocr.Positioned {
	var out ocr.Positioned
	yOffset := 0.0
	for _, p := range doc.GetPages() {
		if p == nil {
			continue
		}
		w := float64(p.GetDimension().GetWidth())
		h := float64(p.GetDimension().GetHeight())
		for _, tok := range p.GetTokens() {
			layout := tok.GetLayout()
			text := strings.TrimSpace(textFromAnchor(doc.GetText(), layout.GetTextAnchor()))
			if text == "" {
				continue
			}
			box, ok := documentBox(layout.GetBoundingPoly(), w, h)
			if !ok {
				continue
			}
			box.Y0 += yOffset
			box.Y1 += yOffset
			out = append(out, ocr.WordToken{Text: text, BBox: box})
		}
		yOffset += h
	}
	return out
}

func documentBox(bp *documentaipb.BoundingPoly, w, h float64) (ocr.BBox, bool) {
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

func textFromAnchor(full string, anchor *documentaipb.Document_TextAnchor) string {
	if anchor == nil || len(anchor.TextSegments) == 0 || full == "" {
		return ""
	}
	var b strings.Builder
	for _, seg := range anchor.TextSegments {
		if seg == nil {
			continue
		}
		start := int(seg.StartIndex)
		end := int(seg.EndIndex)
		if start < 0 {
			start = 0
		}
		if end > len(full) {
			end = len(full)
		}
		if start >= end {
			continue
		}
		b.WriteString(full[start:end])
	}
	return b.String()
}

func processorName(project, location, processorID, version string) string {
	project = strings.TrimSpace(project)
	location = strings.TrimSpace(location)
	processorID = strings.TrimSpace(processorID)
	version = strings.TrimSpace(version)
	if project == "" || location == "" || processorID == "" {
		return ""
	}
	base := fmt.Sprintf("projects/%s/locations/%s/processors/%s", project, location, processorID)
	if version != "" {
		return base + "/processorVersions/" + version
	}
	return base
}
