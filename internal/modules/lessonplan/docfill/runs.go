package docfill

import (
	"regexp"
	"strings"
)

var (
	paragraphRe = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	textRunRe   = regexp.MustCompile(`(?s)(<w:t(?:\s[^>]*)?>)([^<]*)</w:t>`)
)

const preserveOpen = `<w:t xml:space="preserve">`

// joinSplitRuns moves placeholders that Word split across several w:t
// elements of one paragraph into the first of them. The emptied elements
// stay in place so run formatting is untouched.
func joinSplitRuns(xml string) string {
	if !strings.Contains(xml, "{") {
		return xml
	}
	return paragraphRe.ReplaceAllStringFunc(xml, joinParagraph)
}

func joinParagraph(p string) string {
	locs := textRunRe.FindAllStringSubmatchIndex(p, -1)
	if len(locs) < 2 {
		return p
	}
	texts := make([]string, len(locs))
	opens := make([]string, len(locs))
	for i, m := range locs {
		opens[i] = p[m[2]:m[3]]
		texts[i] = p[m[4]:m[5]]
	}

	changed := false
	for i := 0; i < len(texts); i++ {
		if !pending(texts[i]) {
			continue
		}
		combined := texts[i]
		j := i
		for pending(combined) && j+1 < len(texts) {
			j++
			combined += texts[j]
		}
		if pending(combined) || j == i {
			continue
		}
		texts[i] = combined
		opens[i] = preserveOpen
		for k := i + 1; k <= j; k++ {
			texts[k] = ""
		}
		changed = true
		i = j
	}
	if !changed {
		return p
	}

	var b strings.Builder
	last := 0
	for i, m := range locs {
		b.WriteString(p[last:m[0]])
		b.WriteString(opens[i])
		b.WriteString(texts[i])
		b.WriteString("</w:t>")
		last = m[1]
	}
	b.WriteString(p[last:])
	return b.String()
}

// pending reports whether s ends inside a placeholder.
func pending(s string) bool {
	if i := strings.LastIndex(s, "{{"); i >= 0 && !strings.Contains(s[i:], "}}") {
		return true
	}
	return strings.HasSuffix(s, "{")
}
