package docfill

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := io.WriteString(w, body); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.Bytes()
}

func readDocx(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read filled archive: %v", err)
	}
	out := map[string]string{}
	for _, f := range zr.File {
		s, err := readPart(f)
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		out[f.Name] = s
	}
	return out
}

const body = `<w:document><w:body>` +
	`<w:p><w:r><w:t>Day: {{day}}</w:t></w:r></w:p>` +
	`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>{{activity</w:t></w:r><w:r><w:t>Name}}</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>{</w:t></w:r><w:r><w:t>{closure}</w:t></w:r><w:r><w:t>}</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>{{unknown}}</w:t></w:r></w:p>` +
	`</w:body></w:document>`

func TestFillDocx(t *testing.T) {
	in := buildDocx(t, map[string]string{
		"word/document.xml": body,
		"word/header1.xml":  `<w:hdr><w:p><w:r><w:t>{{TEACHER}}</w:t></w:r></w:p></w:hdr>`,
		"word/styles.xml":   `<w:styles>{{day}}</w:styles>`,
	})
	out, err := Fill(in, map[string]string{
		"day":          "Monday",
		"activityName": "Bees & <Flowers>",
		"closure":      "line one\nline two",
		"teacher":      "Ms. Rivera",
	})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if out.Format != FormatDocx {
		t.Fatalf("format: want=%q got=%q", FormatDocx, out.Format)
	}
	parts := readDocx(t, out.Data)
	doc := parts["word/document.xml"]
	for _, want := range []string{
		"Day: Monday",
		"Bees &amp; &lt;Flowers&gt;",
		`line one</w:t><w:br/><w:t xml:space="preserve">line two`,
		"<w:b/>",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document: want %q in %s", want, doc)
		}
	}
	if strings.Contains(doc, "{{activity") {
		t.Fatalf("document: split placeholder left behind: %s", doc)
	}
	if !strings.Contains(parts["word/header1.xml"], "Ms. Rivera") {
		t.Fatalf("header: want teacher got=%s", parts["word/header1.xml"])
	}
	if parts["word/styles.xml"] != `<w:styles>{{day}}</w:styles>` {
		t.Fatalf("styles: want untouched got=%s", parts["word/styles.xml"])
	}
	if len(out.Unresolved) != 1 || out.Unresolved[0] != "unknown" {
		t.Fatalf("unresolved: want=[unknown] got=%v", out.Unresolved)
	}
}

func TestFillDocxMissingDocument(t *testing.T) {
	in := buildDocx(t, map[string]string{"content.xml": "<x/>"})
	_, err := Fill(in, map[string]string{"day": "Monday"})
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("err: want ErrInvalidTemplate got=%v", err)
	}
}

func TestFillCorruptArchive(t *testing.T) {
	_, err := Fill([]byte("PK\x03\x04garbage"), nil)
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("err: want ErrInvalidTemplate got=%v", err)
	}
}

func TestFillTextAliases(t *testing.T) {
	tmpl := "{{activityName}} / {{activityname}} / {{ACTIVITYNAME}} / {{ActivityName}} / {{activity_name}} / {{ day }}"
	out, err := Fill([]byte(tmpl), map[string]string{"activityName": "Bee Hunt", "day": "Friday"})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	want := "Bee Hunt / Bee Hunt / Bee Hunt / Bee Hunt / Bee Hunt / Friday"
	if string(out.Data) != want {
		t.Fatalf("text: want=%q got=%q", want, string(out.Data))
	}
	if out.Format != FormatText {
		t.Fatalf("format: want=%q got=%q", FormatText, out.Format)
	}
}

func TestFillExactKeyWinsOverAlias(t *testing.T) {
	out, err := Fill([]byte("{{day}} {{Day}}"), map[string]string{"Day": "upper", "day": "lower"})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if string(out.Data) != "lower upper" {
		t.Fatalf("text: want=%q got=%q", "lower upper", string(out.Data))
	}
}

func TestFillIdempotent(t *testing.T) {
	values := map[string]string{"day": "Monday", "game": "bee hunt", "closure": "wave goodbye"}
	tmpl := []byte("{{day}}: {{game}} then {{closure}}. {{missing}}")
	once, err := Fill(tmpl, values)
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	twice, err := Fill(once.Data, values)
	if err != nil {
		t.Fatalf("Fill twice: %v", err)
	}
	if !bytes.Equal(once.Data, twice.Data) {
		t.Fatalf("idempotence: want=%q got=%q", once.Data, twice.Data)
	}

	docOnce, err := Fill(buildDocx(t, map[string]string{"word/document.xml": body}), values)
	if err != nil {
		t.Fatalf("Fill docx: %v", err)
	}
	docTwice, err := Fill(docOnce.Data, values)
	if err != nil {
		t.Fatalf("Fill docx twice: %v", err)
	}
	a := readDocx(t, docOnce.Data)["word/document.xml"]
	b := readDocx(t, docTwice.Data)["word/document.xml"]
	if a != b {
		t.Fatalf("docx idempotence: want=%s got=%s", a, b)
	}
}

func TestFillRejectsBinary(t *testing.T) {
	_, err := Fill([]byte{0xff, 0xfe, 0x00, 0x81}, nil)
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("err: want ErrInvalidTemplate got=%v", err)
	}
	if _, err := Fill(nil, nil); !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("empty: want ErrInvalidTemplate got=%v", err)
	}
}

func TestAliases(t *testing.T) {
	got := strings.Join(Aliases("spiralOldest"), ",")
	want := "spiralOldest,spiraloldest,SPIRALOLDEST,SpiralOldest,spiral_oldest"
	if got != want {
		t.Fatalf("Aliases: want=%q got=%q", want, got)
	}
	if got := strings.Join(Aliases("day"), ","); got != "day,DAY,Day" {
		t.Fatalf("Aliases(day): want=%q got=%q", "day,DAY,Day", got)
	}
}
