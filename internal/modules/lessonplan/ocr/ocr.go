// Package ocr holds the shapes OCR collaborators hand to the layout engine.
//
// An OCR call produces either plain multi-line text or a list of recognized
// words with page-space bounding boxes. Output models both as a sealed sum
// type so consumers dispatch on the variant instead of probing structure.
package ocr

import "strings"

// BBox is a pixel-space box; (X0,Y0) is the top-left corner.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

func (b BBox) MidX() float64 { return (b.X0 + b.X1) / 2 }
func (b BBox) MidY() float64 { return (b.Y0 + b.Y1) / 2 }

// WordToken is one recognized word.
type WordToken struct {
	Text string `json:"text"`
	BBox BBox   `json:"bbox"`
}

// Output is PlainText or Positioned.
type Output interface {
	isOutput()
}

// PlainText is OCR output without position data.
type PlainText string

// Positioned is OCR output as individual words with boxes.
type Positioned []WordToken

func (PlainText) isOutput()  {}
func (Positioned) isOutput() {}

// IsEmpty reports whether out carries no recognizable text.
func IsEmpty(out Output) bool {
	switch v := out.(type) {
	case PlainText:
		return strings.TrimSpace(string(v)) == ""
	case Positioned:
		for _, w := range v {
			if strings.TrimSpace(w.Text) != "" {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Kind names the variant for logs.
func Kind(out Output) string {
	switch out.(type) {
	case PlainText:
		return "plain_text"
	case Positioned:
		return "positioned"
	default:
		return "none"
	}
}
