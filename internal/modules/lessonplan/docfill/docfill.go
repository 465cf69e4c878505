// Package docfill substitutes {{key}} placeholders in a lesson template.
//
// A template is either a Word document (a ZIP holding word/document.xml)
// or plain UTF-8 text. Substitution is a single pass, so values that contain
// no placeholders are never substituted again.
package docfill

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	FormatDocx = "docx"
	FormatText = "txt"

	documentPart = "word/document.xml"
)

var (
	// ErrInvalidTemplate is returned for buffers that are neither a document
	// archive nor text.
	ErrInvalidTemplate = errors.New("invalid template")

	partRe        = regexp.MustCompile(`^word/(document|header\d*|footer\d*)\.xml$`)
	placeholderRe = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)
	zipMagic      = []byte("PK\x03\x04")
)

// Filled is a substituted template.
type Filled struct {
	Data   []byte
	Format string
	// Placeholders still present after substitution, sorted and unique.
	Unresolved []string
}

// Extension is the file extension matching Format.
func (f *Filled) Extension() string {
	if f == nil {
		return ""
	}
	return "." + f.Format
}

// ContentType is the MIME type matching Format.
func (f *Filled) ContentType() string {
	if f != nil && f.Format == FormatDocx {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "text/plain; charset=utf-8"
}

// Fill substitutes values into buf.
func Fill(buf []byte, values map[string]string) (*Filled, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrInvalidTemplate)
	}
	if bytes.HasPrefix(buf, zipMagic) {
		return fillDocx(buf, values)
	}
	if !utf8.Valid(buf) {
		return nil, fmt.Errorf("%w: not a document archive or UTF-8 text", ErrInvalidTemplate)
	}
	out := newReplacer(values, false).Replace(string(buf))
	return &Filled{Data: []byte(out), Format: FormatText, Unresolved: unresolved(out)}, nil
}

// Validate checks that buf can be used as a template without filling it.
func Validate(buf []byte) (string, error) {
	f, err := Fill(buf, nil)
	if err != nil {
		return "", err
	}
	return f.Format, nil
}

func fillDocx(buf []byte, values map[string]string) (*Filled, error) {
	zr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, fmt.Errorf("%w: read archive: %v", ErrInvalidTemplate, err)
	}
	found := false
	for _, f := range zr.File {
		if f.Name == documentPart {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: archive has no %s", ErrInvalidTemplate, documentPart)
	}

	rep := newReplacer(values, true)
	left := map[string]struct{}{}
	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, f := range zr.File {
		if !partRe.MatchString(f.Name) {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		raw, err := readPart(f)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidTemplate, f.Name, err)
		}
		filled := rep.Replace(joinSplitRuns(raw))
		for _, p := range unresolved(filled) {
			left[p] = struct{}{}
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate, Modified: f.Modified})
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
		if _, err := io.WriteString(w, filled); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return &Filled{Data: out.Bytes(), Format: FormatDocx, Unresolved: sortedKeys(left)}, nil
}

func readPart(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unresolved(s string) []string {
	set := map[string]struct{}{}
	for _, m := range placeholderRe.FindAllStringSubmatch(s, -1) {
		set[m[1]] = struct{}{}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Aliases lists the spellings a key is reachable under, exact form first.
func Aliases(key string) []string {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	forms := []string{key, strings.ToLower(key), strings.ToUpper(key), titleCase(key), snakeCase(key)}
	seen := map[string]bool{}
	out := make([]string, 0, len(forms))
	for _, f := range forms {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func titleCase(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}

func snakeCase(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return b.String()
}

// newReplacer builds one replacer over every alias of every key. Exact keys
// win over aliases of other keys; ties between aliases go to the key that
// sorts first.
func newReplacer(values map[string]string, xmlEscape bool) *strings.Replacer {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	resolved := map[string]string{}
	var order []string
	add := func(name, val string) {
		if _, ok := resolved[name]; ok {
			return
		}
		resolved[name] = val
		order = append(order, name)
	}
	for _, k := range keys {
		if strings.TrimSpace(k) != "" {
			add(strings.TrimSpace(k), values[k])
		}
	}
	for _, k := range keys {
		for _, a := range Aliases(k) {
			add(a, values[k])
		}
	}

	pairs := make([]string, 0, len(order)*4)
	for _, name := range order {
		val := resolved[name]
		if xmlEscape {
			val = xmlValue(val)
		}
		pairs = append(pairs, "{{"+name+"}}", val, "{{ "+name+" }}", val)
	}
	return strings.NewReplacer(pairs...)
}

// xmlValue escapes v for a w:t element; newlines become Word line breaks.
func xmlValue(v string) string {
	var b bytes.Buffer
	lines := strings.Split(strings.ReplaceAll(v, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if i > 0 {
			b.WriteString(`</w:t><w:br/><w:t xml:space="preserve">`)
		}
		escapeXML(&b, line)
	}
	return b.String()
}

func escapeXML(b *bytes.Buffer, s string) {
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		case '\t':
			b.WriteString(`</w:t><w:tab/><w:t xml:space="preserve">`)
		default:
			if r == utf8.RuneError || (r < 0x20 && r != '\n') {
				continue
			}
			b.WriteRune(r)
		}
	}
}
