package envelope

import (
	"strings"
)

// MaxHeaderWidth is the maximum rendered header line length. Vectors are
// meant to be pasted into formatted documents, so header lines are folded
// at parameter boundaries to stay narrow.
const MaxHeaderWidth = 76

// Render serializes the part tree to its canonical textual form: CRLF line
// endings, folded headers, and deterministic multipart delimiters. Rendering
// the same tree always yields the same bytes.
func Render(p *Part) string {
	var b strings.Builder
	renderTo(&b, p)
	return b.String()
}

func renderTo(b *strings.Builder, p *Part) {
	for _, h := range p.Headers {
		writeFolded(b, h.Name+": "+h.Value)
	}
	writeContentType(b, p)
	if p.Encoding != "" {
		writeFolded(b, "Content-Transfer-Encoding: "+p.Encoding)
	}
	if p.Disposition != "" {
		line := "Content-Disposition: " + p.Disposition
		if p.FileName != "" {
			line += `; filename="` + p.FileName + `"`
		}
		writeFolded(b, line)
	}
	b.WriteString(CRLF)

	if len(p.Subparts) == 0 {
		b.WriteString(asCRLF(p.Body))
		return
	}

	boundary := p.Boundary()
	for _, c := range p.Subparts {
		b.WriteString("--" + boundary + CRLF)
		renderTo(b, c)
		// the CRLF preceding a delimiter belongs to the delimiter, so a
		// parser hands back the child's rendered bytes intact
		b.WriteString(CRLF)
	}
	b.WriteString("--" + boundary + "--" + CRLF)
}

// writeContentType emits the Content-Type header with each parameter quoted,
// breaking the line before any parameter that would push it past
// MaxHeaderWidth.
func writeContentType(b *strings.Builder, p *Part) {
	segments := []string{"Content-Type: " + p.Type}
	if p.Charset != "" {
		segments = append(segments, `charset="`+p.Charset+`"`)
	}
	for _, pr := range p.Params {
		segments = append(segments, pr.Name+`="`+pr.Value+`"`)
	}

	line := segments[0]
	for _, seg := range segments[1:] {
		if len(line)+2+len(seg) <= MaxHeaderWidth {
			line += "; " + seg
			continue
		}
		b.WriteString(line + ";" + CRLF)
		line = " " + seg
	}
	b.WriteString(line + CRLF)
}

// writeFolded emits one header line, folding on whitespace when it exceeds
// MaxHeaderWidth.
func writeFolded(b *strings.Builder, line string) {
	for len(line) > MaxHeaderWidth {
		cut := strings.LastIndex(line[:MaxHeaderWidth], " ")
		if cut <= 0 {
			break
		}
		b.WriteString(line[:cut] + CRLF)
		line = " " + strings.TrimLeft(line[cut:], " ")
	}
	b.WriteString(line + CRLF)
}

// asCRLF normalizes bare LF line endings to CRLF and guarantees a trailing
// line ending.
func asCRLF(s string) string {
	s = strings.ReplaceAll(s, CRLF, "\n")
	s = strings.ReplaceAll(s, "\n", CRLF)
	if !strings.HasSuffix(s, CRLF) {
		s += CRLF
	}
	return s
}
