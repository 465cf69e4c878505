package calendar

import (
	"sort"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/ocr"
)

// ClusterRows groups words into horizontal rows in one greedy pass.
//
// Words are visited by ascending Y0; each joins the first row whose band
// contains its vertical midpoint and widens that band, or seeds a new row.
// A single very tall word can bridge two visual rows; that is accepted.
// Rows come back ordered by YMin and each row's words by X0.
func ClusterRows(words []ocr.WordToken) []Row {
	if len(words) == 0 {
		return nil
	}
	sorted := make([]ocr.WordToken, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].BBox.Y0 < sorted[j].BBox.Y0 })

	rows := make([]*Row, 0, 16)
	for _, w := range sorted {
		mid := w.BBox.MidY()
		var hit *Row
		for _, r := range rows {
			if mid >= r.YMin && mid <= r.YMax {
				hit = r
				break
			}
		}
		if hit == nil {
			rows = append(rows, &Row{Words: []ocr.WordToken{w}, YMin: w.BBox.Y0, YMax: w.BBox.Y1})
			continue
		}
		hit.Words = append(hit.Words, w)
		if w.BBox.Y0 < hit.YMin {
			hit.YMin = w.BBox.Y0
		}
		if w.BBox.Y1 > hit.YMax {
			hit.YMax = w.BBox.Y1
		}
	}

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		ws := r.Words
		sort.SliceStable(ws, func(i, j int) bool { return ws[i].BBox.X0 < ws[j].BBox.X0 })
		out = append(out, *r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].YMin < out[j].YMin })
	return out
}

func rowLines(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if t := r.Text(); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func rowTokens(rows []Row) []string {
	var out []string
	for _, r := range rows {
		for _, w := range r.Words {
			out = append(out, w.Text)
		}
	}
	return out
}
